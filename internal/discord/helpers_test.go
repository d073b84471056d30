package discord

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tutien/tutienbot/internal/domain"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45s", formatDuration(45*time.Second))
	assert.Equal(t, "12m 30s", formatDuration(12*time.Minute+30*time.Second))
	assert.Equal(t, "1h 5m", formatDuration(time.Hour+5*time.Minute))
	assert.Equal(t, "0s", formatDuration(0))
}

func TestFriendlyError_Cooldown(t *testing.T) {
	err := &domain.CooldownError{Action: "farm", Remaining: 30 * time.Minute}
	msg := friendlyError(err)
	assert.Contains(t, msg, "30m")
}

func TestFriendlyError_WrappedDomainErrors(t *testing.T) {
	assert.Contains(t, friendlyError(fmt.Errorf("context: %w", domain.ErrNotEligible)), "đột phá")
	assert.Contains(t, friendlyError(fmt.Errorf("context: %w", domain.ErrInsufficientFunds)), "linh thạch")
	assert.Contains(t, friendlyError(fmt.Errorf("context: %w", domain.ErrRecipeNotFound)), "công thức")
}

func TestFriendlyError_Shortfall(t *testing.T) {
	err := &domain.InsufficientMaterialsError{
		TargetItemID: "d1",
		Missing: []domain.Shortfall{
			{ItemID: "1", Required: 5, Have: 0},
			{ItemID: "2", Required: 3, Have: 1},
		},
	}
	assert.Contains(t, friendlyError(err), "2 loại")
}

func TestFriendlyError_Unknown(t *testing.T) {
	assert.Contains(t, friendlyError(fmt.Errorf("boom")), "lỗi")
}
