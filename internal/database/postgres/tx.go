package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tutien/tutienbot/internal/domain"
)

// userTx implements repository.Tx over a pgx transaction
type userTx struct {
	tx pgx.Tx
}

// GetRecordForUpdate fetches the record with a row lock (FOR UPDATE), so
// the per-user serialization holds even across bot instances.
func (t *userTx) GetRecordForUpdate(ctx context.Context, userID string) (*domain.CultivationRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM cultivation_records WHERE user_id = $1 FOR UPDATE`
	return scanRecord(t.tx.QueryRow(ctx, query, userID))
}

// UpdateRecord writes the mutated record back.
func (t *userTx) UpdateRecord(ctx context.Context, record domain.CultivationRecord) error {
	query := `
		UPDATE cultivation_records
		SET exp = $2, level_name = $3, message_count = $4, voice_seconds = $5, last_farm_at = $6, updated_at = NOW()
		WHERE user_id = $1
	`
	_, err := t.tx.Exec(ctx, query,
		record.UserID, record.Exp, record.LevelName, record.MessageCount, record.VoiceSeconds, record.LastFarmAt)
	if err != nil {
		return fmt.Errorf("failed to update cultivation record: %w", err)
	}
	return nil
}

// GetInventoryForUpdate fetches all ledger rows with row locks.
func (t *userTx) GetInventoryForUpdate(ctx context.Context, userID string) (*domain.Inventory, error) {
	query := `
		SELECT user_id, category, item_id, quantity
		FROM inventory_entries
		WHERE user_id = $1
		ORDER BY category, item_id
		FOR UPDATE
	`
	rows, err := t.tx.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory for update: %w", err)
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

// AddItemQuantity upserts a ledger row, incrementing by delta.
func (t *userTx) AddItemQuantity(ctx context.Context, userID string, category domain.ItemCategory, itemID string, delta int) error {
	query := `
		INSERT INTO inventory_entries (user_id, category, item_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, category, item_id) DO UPDATE
		SET quantity = inventory_entries.quantity + EXCLUDED.quantity
	`
	_, err := t.tx.Exec(ctx, query, userID, category, itemID, delta)
	if err != nil {
		return fmt.Errorf("failed to add item quantity: %w", err)
	}
	return nil
}

// SetItemQuantity writes an absolute quantity for a ledger row.
func (t *userTx) SetItemQuantity(ctx context.Context, userID string, category domain.ItemCategory, itemID string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: cannot set %s/%s to %d", domain.ErrInsufficientQuantity, category, itemID, quantity)
	}
	query := `
		INSERT INTO inventory_entries (user_id, category, item_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, category, item_id) DO UPDATE
		SET quantity = EXCLUDED.quantity
	`
	_, err := t.tx.Exec(ctx, query, userID, category, itemID, quantity)
	if err != nil {
		return fmt.Errorf("failed to set item quantity: %w", err)
	}
	return nil
}

// Commit commits the transaction
func (t *userTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback rolls back the transaction
func (t *userTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil {
		if err == pgx.ErrTxClosed {
			return fmt.Errorf("%s", domain.ErrMsgTxClosed)
		}
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}
