package cultivation

import (
	"context"
	"fmt"
	"math"

	"github.com/tutien/tutienbot/internal/domain"
	"github.com/tutien/tutienbot/internal/event"
	"github.com/tutien/tutienbot/internal/logger"
	"github.com/tutien/tutienbot/internal/metrics"
	"github.com/tutien/tutienbot/internal/repository"
)

// AttemptBreakthrough performs one atomic breakthrough attempt: a single
// uniform roll in [0,100) against the current tier's rate, then either the
// advance-and-reward path or the penalty path. The two paths are disjoint;
// within the failure path the exp penalty is computed against the
// pre-penalty balance before any item loss.
func (s *service) AttemptBreakthrough(ctx context.Context, userID string) (*domain.BreakthroughResult, error) {
	log := logger.FromContext(ctx)
	log.Info("AttemptBreakthrough called", "userID", userID)

	if _, err := s.users.GetOrCreateRecord(ctx, userID); err != nil {
		return nil, err
	}

	var result *domain.BreakthroughResult

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
		entry, err := s.ladder.ByName(rec.LevelName)
		if err != nil {
			return err
		}

		if !s.eligible(rec, entry) {
			return fmt.Errorf("%w: %s at %d/%d exp", domain.ErrNotEligible, rec.LevelName, rec.Exp, entry.ExpThreshold)
		}

		roll := s.roll()
		if roll < entry.BreakthroughRate {
			result, err = s.applySuccess(ctx, tx, rec, roll)
		} else {
			result, err = s.applyFailure(ctx, tx, rec, entry, roll)
		}
		if err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.users.Invalidate(userID)

	if result.Succeeded {
		metrics.BreakthroughAttempts.WithLabelValues(metrics.OutcomeSuccess).Inc()
		log.Info("Breakthrough succeeded", "userID", userID, "newLevel", result.NewLevel, "roll", result.Roll)
	} else {
		metrics.BreakthroughAttempts.WithLabelValues(metrics.OutcomeFailure).Inc()
		log.Info("Breakthrough failed", "userID", userID, "level", result.PreviousLevel, "expLost", result.ExpLost, "roll", result.Roll)
	}
	s.publish(ctx, event.NewBreakthroughEvent(userID, result.PreviousLevel, result.NewLevel, result.Succeeded, result.ExpLost))

	return result, nil
}

// applySuccess advances the tier and grants the new tier's rewards.
// EXP is not reset or consumed on success.
func (s *service) applySuccess(ctx context.Context, tx repository.Tx, rec *domain.CultivationRecord, roll int) (*domain.BreakthroughResult, error) {
	next, ok := s.ladder.Next(rec.LevelName)
	if !ok {
		// eligibility check already excluded the terminal tier
		return nil, fmt.Errorf("%w: no tier above %s", domain.ErrNotEligible, rec.LevelName)
	}

	previous := rec.LevelName
	rec.LevelName = next.Name
	if err := tx.UpdateRecord(ctx, *rec); err != nil {
		return nil, err
	}

	granted := make([]domain.ItemStack, 0, len(next.Rewards))
	for _, reward := range next.Rewards {
		info := s.catalog.ResolveStorageInfo(reward.ItemID)
		if err := tx.AddItemQuantity(ctx, rec.UserID, info.Category, info.CanonicalID, reward.Quantity); err != nil {
			return nil, err
		}
		granted = append(granted, domain.ItemStack{
			ItemID:   info.CanonicalID,
			Category: info.Category,
			Quantity: reward.Quantity,
		})
	}

	return &domain.BreakthroughResult{
		Succeeded:      true,
		Roll:           roll,
		PreviousLevel:  previous,
		NewLevel:       next.Name,
		RewardsGranted: granted,
	}, nil
}

// applyFailure deducts the exp penalty from the pre-attempt balance, then
// decrements up to ItemPenaltyCount distinct non-empty inventory rows by a
// random amount each. The tier does not change.
func (s *service) applyFailure(ctx context.Context, tx repository.Tx, rec *domain.CultivationRecord, entry domain.LadderEntry, roll int) (*domain.BreakthroughResult, error) {
	expLost := int(math.Round(float64(rec.Exp) * float64(entry.ExpPenaltyPercent) / 100))
	if expLost > rec.Exp {
		expLost = rec.Exp
	}
	rec.Exp -= expLost
	if err := tx.UpdateRecord(ctx, *rec); err != nil {
		return nil, err
	}

	var itemsLost []domain.ItemStack
	if entry.ItemPenaltyCount > 0 {
		inv, err := tx.GetInventoryForUpdate(ctx, rec.UserID)
		if err != nil {
			return nil, err
		}
		rows := inv.NonEmpty()
		s.shuffleEntries(rows)

		count := entry.ItemPenaltyCount
		if count > len(rows) {
			count = len(rows)
		}
		for _, row := range rows[:count] {
			loss := s.randRange(itemLossMin, itemLossMax)
			if loss > row.Quantity {
				loss = row.Quantity
			}
			if err := tx.SetItemQuantity(ctx, rec.UserID, row.Category, row.ItemID, row.Quantity-loss); err != nil {
				return nil, err
			}
			itemsLost = append(itemsLost, domain.ItemStack{
				ItemID:   row.ItemID,
				Category: row.Category,
				Quantity: loss,
			})
		}
	}

	return &domain.BreakthroughResult{
		Succeeded:     false,
		Roll:          roll,
		PreviousLevel: rec.LevelName,
		ExpLost:       expLost,
		ItemsLost:     itemsLost,
	}, nil
}
