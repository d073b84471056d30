// Package cooldown implements wall-clock action gating. A cooldown here is
// a business-rule timer (comparison against a stored timestamp), not a
// scheduling primitive; nothing sleeps or fires.
package cooldown

import (
	"time"

	"github.com/tutien/tutienbot/internal/domain"
)

// Gated actions and their windows
const (
	ActionFarm = "farm"

	FarmWindow = time.Hour
)

// Remaining returns how long until the action is allowed again.
// A nil last-use timestamp means the action has never run; remaining is 0.
func Remaining(lastUsed *time.Time, window time.Duration, now time.Time) time.Duration {
	if lastUsed == nil {
		return 0
	}
	remaining := window - now.Sub(*lastUsed)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Check returns a *domain.CooldownError when the action is still gated,
// nil when it may proceed.
func Check(action string, lastUsed *time.Time, window time.Duration, now time.Time) error {
	if remaining := Remaining(lastUsed, window, now); remaining > 0 {
		return &domain.CooldownError{Action: action, Remaining: remaining}
	}
	return nil
}
