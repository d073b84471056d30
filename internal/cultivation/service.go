// Package cultivation implements the progression engine: EXP accrual from
// activity, breakthrough attempts, and the cooldown-gated farm action.
package cultivation

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/tutien/tutienbot/internal/catalog"
	"github.com/tutien/tutienbot/internal/concurrency"
	"github.com/tutien/tutienbot/internal/domain"
	"github.com/tutien/tutienbot/internal/event"
	"github.com/tutien/tutienbot/internal/ladder"
	"github.com/tutien/tutienbot/internal/logger"
	"github.com/tutien/tutienbot/internal/metrics"
	"github.com/tutien/tutienbot/internal/repository"
	"github.com/tutien/tutienbot/internal/user"
)

// Service defines the progression engine operations
type Service interface {
	// AccrueActivity applies one activity increment and returns the
	// updated status. bonusPercent is the caller-derived additive role
	// bonus; the engine knows nothing about roles.
	AccrueActivity(ctx context.Context, userID string, delta domain.ActivityDelta, bonusPercent int) (*domain.CultivationStatus, error)

	// GetStatus returns a read-only snapshot. Never mutates.
	GetStatus(ctx context.Context, userID string) (*domain.CultivationStatus, error)

	// IsEligibleForBreakthrough reports eligibility without mutating.
	IsEligibleForBreakthrough(ctx context.Context, userID string) (bool, error)

	// AttemptBreakthrough rolls once against the current tier's rate and
	// applies the success advance or the failure penalties.
	AttemptBreakthrough(ctx context.Context, userID string) (*domain.BreakthroughResult, error)

	// Farm performs the cooldown-gated gathering action.
	Farm(ctx context.Context, userID string, bonusPercent int) (*domain.FarmResult, error)

	// GetFarmCooldownRemaining reports the wait before the next farm.
	GetFarmCooldownRemaining(ctx context.Context, userID string) (time.Duration, error)

	GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

type service struct {
	repo    repository.User
	users   user.Service
	ladder  *ladder.Ladder
	catalog *catalog.Catalog
	bus     event.Bus
	locks   *concurrency.LockManager

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewService creates a new cultivation service. The rng seed is injected
// so tests can pin outcomes.
func NewService(repo repository.User, users user.Service, l *ladder.Ladder, c *catalog.Catalog, bus event.Bus, locks *concurrency.LockManager, seed int64) Service {
	//nolint:gosec // G404: math/rand is acceptable for game mechanics, not for cryptographic purposes
	return &service{
		repo:    repo,
		users:   users,
		ladder:  l,
		catalog: c,
		bus:     bus,
		locks:   locks,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// roll draws one uniform sample in [0,100)
func (s *service) roll() int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(100)
}

// randRange draws a uniform sample in [min,max]
func (s *service) randRange(min, max int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return min + s.rng.Intn(max-min+1)
}

// shuffleEntries permutes inventory rows for the failure item penalty draw
func (s *service) shuffleEntries(entries []domain.InventoryEntry) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng.Shuffle(len(entries), func(i, j int) {
		entries[i], entries[j] = entries[j], entries[i]
	})
}

// applyBonus adds the additive role bonus: base + floor(base*percent/100).
func applyBonus(base, bonusPercent int) int {
	if bonusPercent <= 0 {
		return base
	}
	return base + base*bonusPercent/100
}

func (s *service) eligible(rec *domain.CultivationRecord, entry domain.LadderEntry) bool {
	return rec.Exp >= entry.ExpThreshold && !s.ladder.IsTerminal(rec.LevelName)
}

func (s *service) statusFor(rec *domain.CultivationRecord) (*domain.CultivationStatus, error) {
	entry, err := s.ladder.ByName(rec.LevelName)
	if err != nil {
		return nil, err
	}
	idx, err := s.ladder.Index(rec.LevelName)
	if err != nil {
		return nil, err
	}
	return &domain.CultivationStatus{
		UserID:           rec.UserID,
		LevelName:        rec.LevelName,
		LevelIndex:       idx,
		Exp:              rec.Exp,
		ExpThreshold:     entry.ExpThreshold,
		BreakthroughRate: entry.BreakthroughRate,
		Eligible:         s.eligible(rec, entry),
		Terminal:         s.ladder.IsTerminal(rec.LevelName),
	}, nil
}

// AccrueActivity recomputes the exp delta for this increment and applies
// the bonus. Voice exp is granted per full block crossed on the cumulative
// counter so remainders are never lost.
func (s *service) AccrueActivity(ctx context.Context, userID string, delta domain.ActivityDelta, bonusPercent int) (*domain.CultivationStatus, error) {
	log := logger.FromContext(ctx)

	if _, err := s.users.GetOrCreateRecord(ctx, userID); err != nil {
		return nil, err
	}

	var status *domain.CultivationStatus
	var becameEligible bool

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
		eligibleBefore := s.eligible(rec, entry)

		prevBlocks := rec.VoiceSeconds / voiceBlockSeconds
		rec.MessageCount += delta.Messages
		rec.VoiceSeconds += delta.VoiceSeconds
		newBlocks := rec.VoiceSeconds / voiceBlockSeconds

		base := delta.Messages*expPerMessage + int(newBlocks-prevBlocks)*expPerVoiceBlock
		gain := applyBonus(base, bonusPercent)
		rec.Exp += gain

		if err := tx.UpdateRecord(ctx, *rec); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}

		becameEligible = !eligibleBefore && s.eligible(rec, entry)
		status, err = s.statusFor(rec)
		if err != nil {
			return err
		}

		metrics.ActivityExpGranted.Add(float64(gain))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.users.Invalidate(userID)

	// Edge-triggered: fires only on the transition into eligibility,
	// never again on subsequent activity.
	if becameEligible {
		s.publish(ctx, event.NewEligibleEvent(userID, status.LevelName, status.Exp, status.ExpThreshold))
	}

	log.Debug("Activity accrued", "userID", userID, "messages", delta.Messages, "voiceSeconds", delta.VoiceSeconds, "exp", status.Exp)
	return status, nil
}

// GetStatus returns a read-only snapshot of the user's progression.
func (s *service) GetStatus(ctx context.Context, userID string) (*domain.CultivationStatus, error) {
	rec, err := s.users.GetRecord(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.statusFor(rec)
}

// IsEligibleForBreakthrough reports whether the user can attempt a
// breakthrough right now.
func (s *service) IsEligibleForBreakthrough(ctx context.Context, userID string) (bool, error) {
	status, err := s.GetStatus(ctx, userID)
	if err != nil {
		return false, err
	}
	return status.Eligible, nil
}

// GetLeaderboard returns the top exp holders.
func (s *service) GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	return s.repo.GetLeaderboard(ctx, limit)
}

// farmableMaterialIDs returns the farm drop pool in a stable order, so
// the rng index draw is reproducible under a fixed seed.
func (s *service) farmableMaterialIDs() []domain.Item {
	items := s.catalog.FarmableMaterials()
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (s *service) publish(ctx context.Context, e event.Event) {
	metrics.EventsPublished.WithLabelValues(string(e.Type)).Inc()
	if err := s.bus.Publish(ctx, e); err != nil {
		metrics.EventHandlerErrors.WithLabelValues(string(e.Type)).Inc()
		logger.FromContext(ctx).Warn("Event handlers reported errors", "type", e.Type, "error", err)
	}
}
