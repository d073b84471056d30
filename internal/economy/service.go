// Package economy implements the spirit stone shop. Prices are quoted in
// low-grade spirit stones; an item is buyable iff its catalog base value is
// positive.
package economy

import (
	"context"
	"fmt"
	"sort"

	"github.com/tutien/tutienbot/internal/catalog"
	"github.com/tutien/tutienbot/internal/concurrency"
	"github.com/tutien/tutienbot/internal/domain"
	"github.com/tutien/tutienbot/internal/logger"
	"github.com/tutien/tutienbot/internal/metrics"
	"github.com/tutien/tutienbot/internal/repository"
	"github.com/tutien/tutienbot/internal/user"
)

// currencyItemID is the spirit stone grade all prices are quoted in.
const currencyItemID = "lt1"

// Service defines shop operations
type Service interface {
	// ListShop returns the buyable items sorted by price ascending.
	ListShop() []domain.Item

	// Buy spends spirit stones on quantity copies of an item. The funds
	// check and the transfer are one atomic step.
	Buy(ctx context.Context, userID, itemID string, quantity int) (*domain.PurchaseResult, error)

	// GetBalance reports the user's low-grade spirit stone holdings.
	GetBalance(ctx context.Context, userID string) (int, error)
}

type service struct {
	repo    repository.User
	users   user.Service
	catalog *catalog.Catalog
	locks   *concurrency.LockManager
}

// NewService creates a new economy service
func NewService(repo repository.User, users user.Service, c *catalog.Catalog, locks *concurrency.LockManager) Service {
	return &service{
		repo:    repo,
		users:   users,
		catalog: c,
		locks:   locks,
	}
}

func (s *service) ListShop() []domain.Item {
	items := s.catalog.ShopItems()
	sort.Slice(items, func(i, j int) bool {
		if items[i].BaseValue != items[j].BaseValue {
			return items[i].BaseValue < items[j].BaseValue
		}
		return items[i].ID < items[j].ID
	})
	return items
}

func (s *service) Buy(ctx context.Context, userID, itemID string, quantity int) (*domain.PurchaseResult, error) {
	log := logger.FromContext(ctx)

	if quantity <= 0 {
		quantity = 1
	}

	item, ok := s.catalog.Item(itemID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, itemID)
	}
	if item.BaseValue <= 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotBuyable, itemID)
	}
	cost := item.BaseValue * quantity

	if _, err := s.users.GetOrCreateRecord(ctx, userID); err != nil {
		return nil, err
	}

	currency := s.catalog.ResolveStorageInfo(currencyItemID)

	var result *domain.PurchaseResult

	err := s.locks.WithLock(userID, func() error {
		tx, err := s.repo.BeginTx(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer repository.SafeRollback(ctx, tx)

		inv, err := tx.GetInventoryForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		held := inv.Quantity(currency.Category, currency.CanonicalID)
		if held < cost {
			return fmt.Errorf("%w: need %d, have %d", domain.ErrInsufficientFunds, cost, held)
		}

		if err := tx.SetItemQuantity(ctx, userID, currency.Category, currency.CanonicalID, held-cost); err != nil {
			return err
		}
		if err := tx.AddItemQuantity(ctx, userID, item.Category, item.ID, quantity); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}

		result = &domain.PurchaseResult{
			Item: domain.ItemStack{
				ItemID:   item.ID,
				Category: item.Category,
				Quantity: quantity,
			},
			Cost: domain.ItemStack{
				ItemID:   currency.CanonicalID,
				Category: currency.Category,
				Quantity: cost,
			},
			StonesLeft: held - cost,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.users.Invalidate(userID)
	metrics.PurchasesTotal.WithLabelValues(item.ID).Inc()

	log.Info("Purchase completed", "userID", userID, "item", item.ID, "quantity", quantity, "cost", cost)
	return result, nil
}

func (s *service) GetBalance(ctx context.Context, userID string) (int, error) {
	inv, err := s.users.GetInventory(ctx, userID)
	if err != nil {
		return 0, err
	}
	currency := s.catalog.ResolveStorageInfo(currencyItemID)
	return inv.Quantity(currency.Category, currency.CanonicalID), nil
}
