package repository

import (
	"context"

	"github.com/tutien/tutienbot/internal/domain"
)

// Tx defines the interface for transactional operations. Multi-step
// sequences (consume-then-produce, deduct-then-grant) run entirely inside
// one Tx so they either complete or leave state unchanged.
type Tx interface {
	GetRecordForUpdate(ctx context.Context, userID string) (*domain.CultivationRecord, error)
	UpdateRecord(ctx context.Context, record domain.CultivationRecord) error

	GetInventoryForUpdate(ctx context.Context, userID string) (*domain.Inventory, error)
	// AddItemQuantity upserts the ledger row, incrementing by delta.
	AddItemQuantity(ctx context.Context, userID string, category domain.ItemCategory, itemID string, delta int) error
	// SetItemQuantity writes an absolute quantity. The caller has already
	// checked sufficiency; quantity must be >= 0.
	SetItemQuantity(ctx context.Context, userID string, category domain.ItemCategory, itemID string, quantity int) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
