package cooldown

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutien/tutienbot/internal/domain"
)

func TestRemaining(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		lastUsed *time.Time
		want     time.Duration
	}{
		{name: "never used", lastUsed: nil, want: 0},
		{name: "window elapsed", lastUsed: timePtr(now.Add(-2 * time.Hour)), want: 0},
		{name: "exactly at boundary", lastUsed: timePtr(now.Add(-time.Hour)), want: 0},
		{name: "mid window", lastUsed: timePtr(now.Add(-20 * time.Minute)), want: 40 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Remaining(tt.lastUsed, FarmWindow, now))
		})
	}
}

func TestCheckReturnsTypedError(t *testing.T) {
	now := time.Now()
	last := now.Add(-10 * time.Minute)

	err := Check(ActionFarm, &last, FarmWindow, now)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOnCooldown)

	var cdErr *domain.CooldownError
	require.True(t, errors.As(err, &cdErr))
	assert.Equal(t, ActionFarm, cdErr.Action)
	assert.InDelta(t, (50 * time.Minute).Seconds(), cdErr.Remaining.Seconds(), 1)
}

func TestCheckAllowsWhenClear(t *testing.T) {
	assert.NoError(t, Check(ActionFarm, nil, FarmWindow, time.Now()))
}

func timePtr(t time.Time) *time.Time { return &t }
