// Package ladder holds the ordered cultivation tiers. Like the catalog it
// is loaded once from embedded config and never mutated.
package ladder

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/tutien/tutienbot/internal/domain"
)

// Sentinel errors for ladder loading and lookups
var (
	ErrInvalidConfig   = errors.New("invalid ladder configuration")
	ErrUnknownLevel    = errors.New("unknown cultivation level")
	ErrDuplicateLevel  = errors.New("duplicate level name")
	ErrThresholdOrder  = errors.New("exp thresholds must be non-decreasing")
	ErrTerminalNotLast = errors.New("last level must have breakthrough rate 0")
)

// Config represents the JSON ladder configuration
type Config struct {
	Version     string               `json:"version" validate:"required"`
	Description string               `json:"description"`
	Levels      []domain.LadderEntry `json:"levels" validate:"required,min=2"`
}

// Ladder is the ordered tier sequence with name lookups.
type Ladder struct {
	entries []domain.LadderEntry
	index   map[string]int
}

// Load parses and validates the ladder config.
func Load(data []byte) (*Ladder, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return New(cfg.Levels)
}

// New builds a ladder from entries, enforcing the structural invariants:
// unique names, non-decreasing thresholds, terminal last entry.
func New(entries []domain.LadderEntry) (*Ladder, error) {
	if len(entries) < 2 {
		return nil, fmt.Errorf("%w: need at least two levels", ErrInvalidConfig)
	}

	index := make(map[string]int, len(entries))
	for i, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("%w: empty name at index %d", ErrInvalidConfig, i)
		}
		if _, exists := index[e.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLevel, e.Name)
		}
		if e.BreakthroughRate < 0 || e.BreakthroughRate > 100 {
			return nil, fmt.Errorf("%w: %s breakthrough rate %d", ErrInvalidConfig, e.Name, e.BreakthroughRate)
		}
		if i > 0 && e.ExpThreshold < entries[i-1].ExpThreshold {
			return nil, fmt.Errorf("%w: %s", ErrThresholdOrder, e.Name)
		}
		index[e.Name] = i
	}

	if entries[len(entries)-1].BreakthroughRate != 0 {
		return nil, ErrTerminalNotLast
	}

	return &Ladder{entries: entries, index: index}, nil
}

// First returns the initial tier every new record starts at.
func (l *Ladder) First() domain.LadderEntry {
	return l.entries[0]
}

// ByName returns the entry for a level name.
func (l *Ladder) ByName(name string) (domain.LadderEntry, error) {
	i, ok := l.index[name]
	if !ok {
		return domain.LadderEntry{}, fmt.Errorf("%w: %s", ErrUnknownLevel, name)
	}
	return l.entries[i], nil
}

// Index returns the ordinal tier position for a level name.
func (l *Ladder) Index(name string) (int, error) {
	i, ok := l.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownLevel, name)
	}
	return i, nil
}

// Next returns the entry after the named one. ok is false at the terminal
// tier.
func (l *Ladder) Next(name string) (domain.LadderEntry, bool) {
	i, exists := l.index[name]
	if !exists || i+1 >= len(l.entries) {
		return domain.LadderEntry{}, false
	}
	return l.entries[i+1], true
}

// IsTerminal reports whether the named tier has no further advancement.
func (l *Ladder) IsTerminal(name string) bool {
	i, ok := l.index[name]
	return ok && i == len(l.entries)-1
}

// All returns the full ordered tier list.
func (l *Ladder) All() []domain.LadderEntry {
	out := make([]domain.LadderEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
