package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error message string constants - single source of truth for error messages.
// Use these in assert.Contains() checks when testing error messages.
const (
	ErrMsgUserNotInitialized = "user not initialized"

	ErrMsgItemNotFound = "item not found"

	ErrMsgInsufficientQuantity  = "insufficient quantity"
	ErrMsgInsufficientMaterials = "insufficient materials"

	ErrMsgNotEligible = "not eligible for breakthrough"

	ErrMsgOnCooldown = "action on cooldown"

	ErrMsgRecipeNotFound = "recipe not found"

	ErrMsgInsufficientFunds = "insufficient spirit stones"
	ErrMsgNotBuyable        = "item is not buyable"

	ErrMsgTxClosed = "tx is closed"
)

// Common domain errors.
// Wrap these with fmt.Errorf("%w: %s", domain.ErrXxx, details) for context
// and test with errors.Is.
var (
	ErrUserNotInitialized = errors.New(ErrMsgUserNotInitialized)

	ErrItemNotFound = errors.New(ErrMsgItemNotFound)

	ErrInsufficientQuantity = errors.New(ErrMsgInsufficientQuantity)

	ErrNotEligible = errors.New(ErrMsgNotEligible)

	ErrOnCooldown = errors.New(ErrMsgOnCooldown)

	ErrRecipeNotFound = errors.New(ErrMsgRecipeNotFound)

	ErrInsufficientFunds = errors.New(ErrMsgInsufficientFunds)
	ErrNotBuyable        = errors.New(ErrMsgNotBuyable)

	ErrInsufficientMaterials = errors.New(ErrMsgInsufficientMaterials)
)

// CooldownError reports a refused action together with the remaining wait.
// It matches ErrOnCooldown under errors.Is.
type CooldownError struct {
	Action    string
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	minutes := int(e.Remaining.Minutes())
	seconds := int(e.Remaining.Seconds()) % 60
	if minutes > 0 {
		return fmt.Sprintf("%s: '%s' %dm %ds remaining", ErrMsgOnCooldown, e.Action, minutes, seconds)
	}
	return fmt.Sprintf("%s: '%s' %ds remaining", ErrMsgOnCooldown, e.Action, seconds)
}

// Is allows errors.Is(err, domain.ErrOnCooldown).
func (e *CooldownError) Is(target error) bool {
	return target == ErrOnCooldown
}

// Shortfall is one missing recipe requirement.
type Shortfall struct {
	ItemID   string       `json:"item_id"`
	Category ItemCategory `json:"category"`
	Required int          `json:"required"`
	Have     int          `json:"have"`
}

// InsufficientMaterialsError carries the full shortfall list for a refused
// craft attempt. It matches ErrInsufficientMaterials under errors.Is.
type InsufficientMaterialsError struct {
	TargetItemID string
	Missing      []Shortfall
}

func (e *InsufficientMaterialsError) Error() string {
	return fmt.Sprintf("%s: crafting %s missing %d requirement(s)",
		ErrMsgInsufficientMaterials, e.TargetItemID, len(e.Missing))
}

// Is allows errors.Is(err, domain.ErrInsufficientMaterials).
func (e *InsufficientMaterialsError) Is(target error) bool {
	return target == ErrInsufficientMaterials
}
