package domain

import "time"

// CultivationStatus is a read-only snapshot of a user's progression state.
// Producing it never mutates anything.
type CultivationStatus struct {
	UserID           string `json:"user_id"`
	LevelName        string `json:"level_name"`
	LevelIndex       int    `json:"level_index"`
	Exp              int    `json:"exp"`
	ExpThreshold     int    `json:"exp_threshold"`
	BreakthroughRate int    `json:"breakthrough_rate"`
	Eligible         bool   `json:"eligible"`
	Terminal         bool   `json:"terminal"`
}

// BreakthroughResult is the outcome of a single breakthrough attempt.
// Success and failure are disjoint: RewardsGranted is set only on success,
// ExpLost/ItemsLost only on failure.
type BreakthroughResult struct {
	Succeeded      bool        `json:"succeeded"`
	Roll           int         `json:"roll"`
	PreviousLevel  string      `json:"previous_level"`
	NewLevel       string      `json:"new_level,omitempty"`
	RewardsGranted []ItemStack `json:"rewards_granted,omitempty"`
	ExpLost        int         `json:"exp_lost,omitempty"`
	ItemsLost      []ItemStack `json:"items_lost,omitempty"`
}

// CraftResult is the outcome of a craft or fusion attempt. Consumed lists
// the inputs spent on the attempt; they are spent even when the roll fails.
type CraftResult struct {
	Succeeded bool        `json:"succeeded"`
	Roll      int         `json:"roll"`
	Consumed  []ItemStack `json:"consumed"`
	Produced  *ItemStack  `json:"produced,omitempty"`
}

// FarmResult is the outcome of a successful farm action.
type FarmResult struct {
	Material     ItemStack `json:"material"`
	SpiritStones ItemStack `json:"spirit_stones"`
	ExpGained    int       `json:"exp_gained"`
	NextFarmAt   time.Time `json:"next_farm_at"`
}

// PurchaseResult is the outcome of a shop purchase.
type PurchaseResult struct {
	Item       ItemStack `json:"item"`
	Cost       ItemStack `json:"cost"`
	StonesLeft int       `json:"stones_left"`
}
