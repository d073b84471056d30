package event

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// EventSchemaVersion is the current event schema version
const EventSchemaVersion = "1.0"

// Type represents the type of an event
type Type string

// Common event types
const (
	// BreakthroughEligible fires once when a user crosses the exp
	// threshold of their current tier (edge-triggered, not re-fired on
	// every subsequent message).
	BreakthroughEligible Type = "cultivation.breakthrough_eligible"

	BreakthroughSucceeded Type = "cultivation.breakthrough_succeeded"
	BreakthroughFailed    Type = "cultivation.breakthrough_failed"

	CraftCompleted Type = "crafting.completed"
	FarmCompleted  Type = "farm.completed"
)

// Event represents a generic event in the system
type Event struct {
	Version string      `json:"version"` // Event schema version (e.g., "1.0")
	Type    Type        `json:"type"`
	Payload interface{} `json:"payload"`
}

// Typed event payloads for type safety

// EligiblePayloadV1 is the typed payload for the edge-triggered eligibility event
type EligiblePayloadV1 struct {
	UserID       string `json:"user_id"`
	LevelName    string `json:"level_name"`
	Exp          int    `json:"exp"`
	ExpThreshold int    `json:"exp_threshold"`
	Timestamp    int64  `json:"timestamp"`
}

// BreakthroughPayloadV1 is the typed payload for breakthrough outcome events
type BreakthroughPayloadV1 struct {
	UserID        string `json:"user_id"`
	PreviousLevel string `json:"previous_level"`
	NewLevel      string `json:"new_level,omitempty"`
	Succeeded     bool   `json:"succeeded"`
	ExpLost       int    `json:"exp_lost,omitempty"`
	Timestamp     int64  `json:"timestamp"`
}

// CraftPayloadV1 is the typed payload for craft/fusion completion events
type CraftPayloadV1 struct {
	UserID       string `json:"user_id"`
	TargetItemID string `json:"target_item_id"`
	Succeeded    bool   `json:"succeeded"`
	Timestamp    int64  `json:"timestamp"`
}

// NewEligibleEvent creates a new eligibility event with type-safe payload
func NewEligibleEvent(userID, levelName string, exp, threshold int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    BreakthroughEligible,
		Payload: EligiblePayloadV1{
			UserID:       userID,
			LevelName:    levelName,
			Exp:          exp,
			ExpThreshold: threshold,
			Timestamp:    time.Now().Unix(),
		},
	}
}

// NewBreakthroughEvent creates a breakthrough outcome event
func NewBreakthroughEvent(userID, previousLevel, newLevel string, succeeded bool, expLost int) Event {
	t := BreakthroughSucceeded
	if !succeeded {
		t = BreakthroughFailed
	}
	return Event{
		Version: EventSchemaVersion,
		Type:    t,
		Payload: BreakthroughPayloadV1{
			UserID:        userID,
			PreviousLevel: previousLevel,
			NewLevel:      newLevel,
			Succeeded:     succeeded,
			ExpLost:       expLost,
			Timestamp:     time.Now().Unix(),
		},
	}
}

// FarmPayloadV1 is the typed payload for farm completion events
type FarmPayloadV1 struct {
	UserID    string `json:"user_id"`
	ItemID    string `json:"item_id"`
	Quantity  int    `json:"quantity"`
	Stones    int    `json:"stones"`
	ExpGained int    `json:"exp_gained"`
	Timestamp int64  `json:"timestamp"`
}

// NewFarmEvent creates a farm completion event
func NewFarmEvent(userID, itemID string, quantity, stones, expGained int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    FarmCompleted,
		Payload: FarmPayloadV1{
			UserID:    userID,
			ItemID:    itemID,
			Quantity:  quantity,
			Stones:    stones,
			ExpGained: expGained,
			Timestamp: time.Now().Unix(),
		},
	}
}

// NewCraftEvent creates a craft completion event
func NewCraftEvent(userID, targetItemID string, succeeded bool) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    CraftCompleted,
		Payload: CraftPayloadV1{
			UserID:       userID,
			TargetItemID: targetItemID,
			Succeeded:    succeeded,
			Timestamp:    time.Now().Unix(),
		},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers. Handlers run
// synchronously; their errors are aggregated, never fatal to the caller's
// operation.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("encountered %d errors while handling event %s: %v", len(errs), event.Type, errs)
	}
	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
