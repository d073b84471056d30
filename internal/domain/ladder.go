package domain

// RewardGrant is one item grant attached to a ladder tier, applied on a
// successful breakthrough into that tier.
type RewardGrant struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// LadderEntry is one cultivation tier. ExpThreshold is the exp required to
// become eligible to attempt a breakthrough from this tier;
// BreakthroughRate is the success probability of that attempt. The terminal
// tier carries rate 0.
type LadderEntry struct {
	Name              string        `json:"name"`
	ExpThreshold      int           `json:"exp_threshold"`
	BreakthroughRate  int           `json:"breakthrough_rate"`
	ExpPenaltyPercent int           `json:"exp_penalty_percent"`
	ItemPenaltyCount  int           `json:"item_penalty_count"`
	Rewards           []RewardGrant `json:"rewards,omitempty"`
}
