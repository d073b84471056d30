package cultivation

import (
	"context"
	"fmt"
	"time"

	"github.com/tutien/tutienbot/internal/cooldown"
	"github.com/tutien/tutienbot/internal/domain"
	"github.com/tutien/tutienbot/internal/event"
	"github.com/tutien/tutienbot/internal/logger"
	"github.com/tutien/tutienbot/internal/metrics"
	"github.com/tutien/tutienbot/internal/repository"
)

// Farm performs one cooldown-gated gathering action: a random farmable
// material, a handful of spirit stones, and an EXP grant, each rolled on
// its base range and then boosted by the caller's bonus percent. On a
// cooldown fail nothing is mutated.
func (s *service) Farm(ctx context.Context, userID string, bonusPercent int) (*domain.FarmResult, error) {
	log := logger.FromContext(ctx)

	if _, err := s.users.GetOrCreateRecord(ctx, userID); err != nil {
		return nil, err
	}

	pool := s.farmableMaterialIDs()
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: no farmable materials configured", domain.ErrItemNotFound)
	}

	var result *domain.FarmResult

	err := s.locks.WithLock(userID, func() error {
		tx, err := s.repo.BeginTx(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer repository.SafeRollback(ctx, tx)

		rec, err := tx.GetRecordForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := cooldown.Check(cooldown.ActionFarm, rec.LastFarmAt, cooldown.FarmWindow, now); err != nil {
			return err
		}

		material := pool[s.randRange(0, len(pool)-1)]
		materialQty := applyBonus(s.randRange(farmMaterialMin, farmMaterialMax), bonusPercent)
		stoneQty := applyBonus(s.randRange(farmStoneMin, farmStoneMax), bonusPercent)
		expGain := applyBonus(s.randRange(farmExpMin, farmExpMax), bonusPercent)

		if err := tx.AddItemQuantity(ctx, userID, material.Category, material.ID, materialQty); err != nil {
			return err
		}
		stoneInfo := s.catalog.ResolveStorageInfo(farmStoneItemID)
		if err := tx.AddItemQuantity(ctx, userID, stoneInfo.Category, stoneInfo.CanonicalID, stoneQty); err != nil {
			return err
		}

		rec.Exp += expGain
		rec.LastFarmAt = &now
		if err := tx.UpdateRecord(ctx, *rec); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}

		result = &domain.FarmResult{
			Material: domain.ItemStack{
				ItemID:   material.ID,
				Category: material.Category,
				Quantity: materialQty,
			},
			SpiritStones: domain.ItemStack{
				ItemID:   stoneInfo.CanonicalID,
				Category: stoneInfo.Category,
				Quantity: stoneQty,
			},
			ExpGained:  expGain,
			NextFarmAt: now.Add(cooldown.FarmWindow),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.users.Invalidate(userID)
	metrics.FarmsTotal.Inc()

	log.Info("Farm completed", "userID", userID,
		"material", result.Material.ItemID, "quantity", result.Material.Quantity,
		"stones", result.SpiritStones.Quantity, "expGained", result.ExpGained)
	s.publish(ctx, event.NewFarmEvent(userID, result.Material.ItemID, result.Material.Quantity, result.SpiritStones.Quantity, result.ExpGained))

	return result, nil
}

// GetFarmCooldownRemaining reports how long until the user may farm again.
// Zero means the action is available now.
func (s *service) GetFarmCooldownRemaining(ctx context.Context, userID string) (time.Duration, error) {
	rec, err := s.users.GetRecord(ctx, userID)
	if err != nil {
		return 0, err
	}
	return cooldown.Remaining(rec.LastFarmAt, cooldown.FarmWindow, time.Now().UTC()), nil
}
