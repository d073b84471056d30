package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tutien/tutienbot/internal/domain"
)

// Sentinel errors for the catalog loader
var (
	ErrDuplicateItemID = errors.New("duplicate item id")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

// Config represents the JSON configuration for items
type Config struct {
	Version     string `json:"version" validate:"required"`
	Description string `json:"description"`

	Items []Def `json:"items" validate:"required,min=1,dive"`
}

// Def represents a single item definition in the JSON
type Def struct {
	ID          string `json:"id" validate:"required"`
	Category    string `json:"category" validate:"required,oneof=material medicine spirit_stone book"`
	DisplayName string `json:"display_name" validate:"required"`
	Tier        int    `json:"tier,omitempty" validate:"gte=0"`
	BaseValue   int    `json:"base_value,omitempty" validate:"gte=0"`
	Farmable    bool   `json:"farmable,omitempty"`
}

// Load parses and validates the item config and builds the catalog.
func Load(data []byte) (*Catalog, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	c := &Catalog{
		items:  make(map[string]domain.Item, len(cfg.Items)),
		byName: make(map[string]string, len(cfg.Items)),
	}
	for _, def := range cfg.Items {
		if _, exists := c.items[def.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateItemID, def.ID)
		}
		item := domain.Item{
			ID:          def.ID,
			Category:    domain.ItemCategory(def.Category),
			DisplayName: def.DisplayName,
			Tier:        def.Tier,
			BaseValue:   def.BaseValue,
			Farmable:    def.Farmable,
		}
		c.items[item.ID] = item
		c.byName[strings.ToLower(item.DisplayName)] = item.ID
	}
	return c, nil
}
