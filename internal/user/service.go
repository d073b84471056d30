// Package user centralizes cultivation record access. Lazy creation lives
// here and nowhere else, so the initialization invariants (exp=0, first
// ladder tier) are applied exactly once and consistently.
package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/tutien/tutienbot/internal/domain"
	"github.com/tutien/tutienbot/internal/ladder"
	"github.com/tutien/tutienbot/internal/logger"
	"github.com/tutien/tutienbot/internal/repository"
)

// Service defines cultivation record and inventory access
type Service interface {
	// GetOrCreateRecord fetches the user's record, creating it lazily at
	// the ladder's first tier with zero exp.
	GetOrCreateRecord(ctx context.Context, userID string) (*domain.CultivationRecord, error)

	// GetRecord fetches without creating; returns domain.ErrUserNotInitialized.
	GetRecord(ctx context.Context, userID string) (*domain.CultivationRecord, error)

	GetInventory(ctx context.Context, userID string) (*domain.Inventory, error)

	// Invalidate drops the user's cached record. Mutating services call
	// this after every committed change.
	Invalidate(userID string)
}

type service struct {
	repo   repository.User
	ladder *ladder.Ladder
	cache  *recordCache
}

// NewService creates a new user service
func NewService(repo repository.User, l *ladder.Ladder) Service {
	return &service{
		repo:   repo,
		ladder: l,
		cache:  newRecordCache(defaultCacheSize, defaultCacheTTL),
	}
}

func (s *service) GetOrCreateRecord(ctx context.Context, userID string) (*domain.CultivationRecord, error) {
	if rec, ok := s.cache.Get(userID); ok {
		return rec, nil
	}

	rec, err := s.repo.GetRecord(ctx, userID)
	if err == nil {
		s.cache.Set(userID, rec)
		return rec, nil
	}
	if !errors.Is(err, domain.ErrUserNotInitialized) {
		return nil, fmt.Errorf("failed to get cultivation record: %w", err)
	}

	logger.FromContext(ctx).Info("Creating cultivation record", "userID", userID, "level", s.ladder.First().Name)

	fresh := &domain.CultivationRecord{
		UserID:    userID,
		Exp:       0,
		LevelName: s.ladder.First().Name,
	}
	if err := s.repo.InsertRecord(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to create cultivation record: %w", err)
	}

	// Re-read: a concurrent creator may have won the insert race.
	rec, err = s.repo.GetRecord(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get newly created record: %w", err)
	}
	s.cache.Set(userID, rec)
	return rec, nil
}

func (s *service) GetRecord(ctx context.Context, userID string) (*domain.CultivationRecord, error) {
	if rec, ok := s.cache.Get(userID); ok {
		return rec, nil
	}
	rec, err := s.repo.GetRecord(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(userID, rec)
	return rec, nil
}

func (s *service) GetInventory(ctx context.Context, userID string) (*domain.Inventory, error) {
	inv, err := s.repo.GetInventory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	return inv, nil
}

func (s *service) Invalidate(userID string) {
	s.cache.Invalidate(userID)
}
