package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tutien/tutienbot/internal/domain"
	"github.com/tutien/tutienbot/internal/repository"
)

// UserRepository implements the user repository for PostgreSQL
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const recordColumns = `user_id, exp, level_name, message_count, voice_seconds, last_farm_at, created_at, updated_at`

func scanRecord(row pgx.Row) (*domain.CultivationRecord, error) {
	var rec domain.CultivationRecord
	err := row.Scan(
		&rec.UserID,
		&rec.Exp,
		&rec.LevelName,
		&rec.MessageCount,
		&rec.VoiceSeconds,
		&rec.LastFarmAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotInitialized
		}
		return nil, fmt.Errorf("failed to scan cultivation record: %w", err)
	}
	return &rec, nil
}

// GetRecord fetches a user's cultivation record.
// Returns domain.ErrUserNotInitialized when no record exists.
func (r *UserRepository) GetRecord(ctx context.Context, userID string) (*domain.CultivationRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM cultivation_records WHERE user_id = $1`
	return scanRecord(r.db.QueryRow(ctx, query, userID))
}

// InsertRecord creates a new cultivation record. The caller supplies the
// initialization invariants (exp=0, first ladder tier).
func (r *UserRepository) InsertRecord(ctx context.Context, record *domain.CultivationRecord) error {
	query := `
		INSERT INTO cultivation_records (user_id, exp, level_name, message_count, voice_seconds, last_farm_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query,
		record.UserID, record.Exp, record.LevelName, record.MessageCount, record.VoiceSeconds, record.LastFarmAt)
	if err != nil {
		return fmt.Errorf("failed to insert cultivation record: %w", err)
	}
	return nil
}

// GetInventory fetches all ledger rows for a user. Zero-quantity rows are
// returned as stored; callers treat them as absent.
func (r *UserRepository) GetInventory(ctx context.Context, userID string) (*domain.Inventory, error) {
	query := `
		SELECT user_id, category, item_id, quantity
		FROM inventory_entries
		WHERE user_id = $1
		ORDER BY category, item_id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	inv := &domain.Inventory{UserID: userID}
	for rows.Next() {
		var e domain.InventoryEntry
		if err := rows.Scan(&e.UserID, &e.Category, &e.ItemID, &e.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan inventory entry: %w", err)
		}
		inv.Entries = append(inv.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read inventory rows: %w", err)
	}
	return inv, nil
}

// GetLeaderboard returns the top records ranked by exp.
func (r *UserRepository) GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	query := `
		SELECT user_id, level_name, exp
		FROM cultivation_records
		ORDER BY exp DESC, updated_at ASC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	rank := 0
	for rows.Next() {
		rank++
		e := domain.LeaderboardEntry{Rank: rank}
		if err := rows.Scan(&e.UserID, &e.LevelName, &e.Exp); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard rows: %w", err)
	}
	return entries, nil
}

// BeginTx starts a transaction for a multi-step read-modify-write sequence.
func (r *UserRepository) BeginTx(ctx context.Context) (repository.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &userTx{tx: tx}, nil
}
