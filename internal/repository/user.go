package repository

import (
	"context"

	"github.com/tutien/tutienbot/internal/domain"
)

// User defines the interface for cultivation record and inventory
// persistence. GetRecord returns domain.ErrUserNotInitialized when no
// record exists; lazy creation is the user service's job, not the store's.
type User interface {
	GetRecord(ctx context.Context, userID string) (*domain.CultivationRecord, error)
	InsertRecord(ctx context.Context, record *domain.CultivationRecord) error

	GetInventory(ctx context.Context, userID string) (*domain.Inventory, error)
	GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)

	BeginTx(ctx context.Context) (Tx, error)
}
