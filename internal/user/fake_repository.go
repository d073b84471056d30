package user

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tutien/tutienbot/internal/domain"
	"github.com/tutien/tutienbot/internal/repository"
)

// FakeRepository is an in-memory repository.User implementation for tests.
// Transactions snapshot state at BeginTx and restore it on Rollback, so
// the commit-all-or-nothing behavior of the real store is observable.
type FakeRepository struct {
	mu          sync.Mutex
	Records     map[string]*domain.CultivationRecord
	Inventories map[string]map[string]int // userID -> category|itemID -> quantity

	// Error injection
	FailGetRecord    error
	FailInsertRecord error
	FailBeginTx      error
	FailCommit       error
	FailAddItem      error
}

// NewFakeRepository creates an empty fake repository
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		Records:     make(map[string]*domain.CultivationRecord),
		Inventories: make(map[string]map[string]int),
	}
}

func ledgerKey(category domain.ItemCategory, itemID string) string {
	return string(category) + "|" + itemID
}

// SeedRecord installs a record directly (test setup helper).
func (f *FakeRepository) SeedRecord(rec *domain.CultivationRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *rec
	f.Records[rec.UserID] = &cp
}

// SeedItem installs an inventory quantity directly (test setup helper).
func (f *FakeRepository) SeedItem(userID string, category domain.ItemCategory, itemID string, qty int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Inventories[userID] == nil {
		f.Inventories[userID] = make(map[string]int)
	}
	f.Inventories[userID][ledgerKey(category, itemID)] = qty
}

// ItemQuantity reads a quantity directly (test assertion helper).
func (f *FakeRepository) ItemQuantity(userID string, category domain.ItemCategory, itemID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Inventories[userID][ledgerKey(category, itemID)]
}

func (f *FakeRepository) GetRecord(ctx context.Context, userID string) (*domain.CultivationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailGetRecord != nil {
		return nil, f.FailGetRecord
	}
	rec, ok := f.Records[userID]
	if !ok {
		return nil, domain.ErrUserNotInitialized
	}
	cp := *rec
	return &cp, nil
}

func (f *FakeRepository) InsertRecord(ctx context.Context, record *domain.CultivationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailInsertRecord != nil {
		return f.FailInsertRecord
	}
	if _, exists := f.Records[record.UserID]; exists {
		return nil // ON CONFLICT DO NOTHING
	}
	cp := *record
	now := time.Now()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	f.Records[record.UserID] = &cp
	return nil
}

func (f *FakeRepository) GetInventory(ctx context.Context, userID string) (*domain.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inventoryLocked(userID), nil
}

func (f *FakeRepository) inventoryLocked(userID string) *domain.Inventory {
	inv := &domain.Inventory{UserID: userID}
	for key, qty := range f.Inventories[userID] {
		var category, itemID string
		for i := 0; i < len(key); i++ {
			if key[i] == '|' {
				category, itemID = key[:i], key[i+1:]
				break
			}
		}
		inv.Entries = append(inv.Entries, domain.InventoryEntry{
			UserID:   userID,
			Category: domain.ItemCategory(category),
			ItemID:   itemID,
			Quantity: qty,
		})
	}
	return inv
}

func (f *FakeRepository) GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := make([]domain.LeaderboardEntry, 0, len(f.Records))
	for _, rec := range f.Records {
		entries = append(entries, domain.LeaderboardEntry{
			UserID:    rec.UserID,
			LevelName: rec.LevelName,
			Exp:       rec.Exp,
		})
	}
	// insertion sort by exp descending, small n in tests
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].Exp > entries[j-1].Exp; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (f *FakeRepository) BeginTx(ctx context.Context) (repository.Tx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailBeginTx != nil {
		return nil, f.FailBeginTx
	}
	return &fakeTx{repo: f, snapshot: f.snapshotLocked()}, nil
}

type fakeSnapshot struct {
	records     map[string]*domain.CultivationRecord
	inventories map[string]map[string]int
}

func (f *FakeRepository) snapshotLocked() fakeSnapshot {
	snap := fakeSnapshot{
		records:     make(map[string]*domain.CultivationRecord, len(f.Records)),
		inventories: make(map[string]map[string]int, len(f.Inventories)),
	}
	for id, rec := range f.Records {
		cp := *rec
		snap.records[id] = &cp
	}
	for id, inv := range f.Inventories {
		cp := make(map[string]int, len(inv))
		for k, v := range inv {
			cp[k] = v
		}
		snap.inventories[id] = cp
	}
	return snap
}

type fakeTx struct {
	repo     *FakeRepository
	snapshot fakeSnapshot
	closed   bool
}

func (t *fakeTx) GetRecordForUpdate(ctx context.Context, userID string) (*domain.CultivationRecord, error) {
	return t.repo.GetRecord(ctx, userID)
}

func (t *fakeTx) UpdateRecord(ctx context.Context, record domain.CultivationRecord) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	cp := record
	cp.UpdatedAt = time.Now()
	t.repo.Records[record.UserID] = &cp
	return nil
}

func (t *fakeTx) GetInventoryForUpdate(ctx context.Context, userID string) (*domain.Inventory, error) {
	return t.repo.GetInventory(ctx, userID)
}

func (t *fakeTx) AddItemQuantity(ctx context.Context, userID string, category domain.ItemCategory, itemID string, delta int) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	if t.repo.FailAddItem != nil {
		return t.repo.FailAddItem
	}
	if t.repo.Inventories[userID] == nil {
		t.repo.Inventories[userID] = make(map[string]int)
	}
	t.repo.Inventories[userID][ledgerKey(category, itemID)] += delta
	return nil
}

func (t *fakeTx) SetItemQuantity(ctx context.Context, userID string, category domain.ItemCategory, itemID string, quantity int) error {
	if quantity < 0 {
		return domain.ErrInsufficientQuantity
	}
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	if t.repo.Inventories[userID] == nil {
		t.repo.Inventories[userID] = make(map[string]int)
	}
	t.repo.Inventories[userID][ledgerKey(category, itemID)] = quantity
	return nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	if t.closed {
		return errors.New(domain.ErrMsgTxClosed)
	}
	if t.repo.FailCommit != nil {
		// restore the snapshot so the failed commit leaves no partial state
		t.repo.Records = t.snapshot.records
		t.repo.Inventories = t.snapshot.inventories
		t.closed = true
		return t.repo.FailCommit
	}
	t.closed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	if t.closed {
		return errors.New(domain.ErrMsgTxClosed)
	}
	t.repo.Records = t.snapshot.records
	t.repo.Inventories = t.snapshot.inventories
	t.closed = true
	return nil
}
