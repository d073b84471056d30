package domain

import "time"

// CultivationRecord is a user's progression state. One record per user,
// global across guilds. Created lazily with zero exp at the ladder's first
// tier; never deleted in normal operation.
type CultivationRecord struct {
	UserID       string     `json:"user_id"`
	Exp          int        `json:"exp"`
	LevelName    string     `json:"level_name"`
	MessageCount int        `json:"message_count"`
	VoiceSeconds int64      `json:"voice_seconds"`
	LastFarmAt   *time.Time `json:"last_farm_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ActivityDelta is one increment of chat or voice activity, reported by the
// presentation layer.
type ActivityDelta struct {
	Messages     int
	VoiceSeconds int64
}

// LeaderboardEntry is one row of the exp ranking.
type LeaderboardEntry struct {
	UserID    string `json:"user_id"`
	LevelName string `json:"level_name"`
	Exp       int    `json:"exp"`
	Rank      int    `json:"rank"`
}
