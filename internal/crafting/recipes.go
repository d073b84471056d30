// Package crafting implements recipe-based item production: alchemy-style
// crafting (materials + medicines -> medicine) and spirit stone fusion
// (N low-grade -> 1 higher grade). Both are pay-to-try: inputs are consumed
// on every attempt, the roll only decides whether the product appears.
package crafting

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/tutien/tutienbot/internal/catalog"
	"github.com/tutien/tutienbot/internal/domain"
)

var (
	ErrInvalidRecipeConfig = errors.New("invalid recipe configuration")
	ErrDuplicateRecipe     = errors.New("duplicate recipe target")
)

// RecipeBook is the immutable set of craft and fusion recipes, keyed by
// target item id. Loaded once at startup and validated against the catalog
// so a recipe can never reference an item the catalog does not know.
type RecipeBook struct {
	craft  map[string]domain.Recipe
	fusion map[string]domain.FusionRecipe
}

type recipeFile struct {
	Version string               `json:"version" validate:"required"`
	Craft   []craftRecipeConfig  `json:"craft" validate:"required,min=1,dive"`
	Fusion  []fusionRecipeConfig `json:"fusion" validate:"dive"`
}

type craftRecipeConfig struct {
	TargetItem  string         `json:"target_item" validate:"required"`
	Materials   map[string]int `json:"materials" validate:"dive,gt=0"`
	Medicines   map[string]int `json:"medicines" validate:"dive,gt=0"`
	SuccessRate int            `json:"success_rate" validate:"gte=0,lte=100"`
}

type fusionRecipeConfig struct {
	TargetItem     string `json:"target_item" validate:"required"`
	SourceItem     string `json:"source_item" validate:"required"`
	SourceQuantity int    `json:"source_quantity" validate:"gt=0"`
	SuccessRate    int    `json:"success_rate" validate:"gte=0,lte=100"`
}

// LoadRecipes parses and validates the embedded recipe configuration.
func LoadRecipes(data []byte, cat *catalog.Catalog) (*RecipeBook, error) {
	var file recipeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse recipe config: %w", err)
	}
	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecipeConfig, err)
	}

	book := &RecipeBook{
		craft:  make(map[string]domain.Recipe, len(file.Craft)),
		fusion: make(map[string]domain.FusionRecipe, len(file.Fusion)),
	}

	for _, rc := range file.Craft {
		if _, exists := book.craft[rc.TargetItem]; exists {
			return nil, fmt.Errorf("%w: craft %s", ErrDuplicateRecipe, rc.TargetItem)
		}
		if len(rc.Materials)+len(rc.Medicines) == 0 {
			return nil, fmt.Errorf("%w: craft %s has no inputs", ErrInvalidRecipeConfig, rc.TargetItem)
		}
		ids := []string{rc.TargetItem}
		for id := range rc.Materials {
			ids = append(ids, id)
		}
		for id := range rc.Medicines {
			ids = append(ids, id)
		}
		if err := requireCatalogued(cat, ids); err != nil {
			return nil, fmt.Errorf("craft %s: %w", rc.TargetItem, err)
		}
		book.craft[rc.TargetItem] = domain.Recipe{
			TargetItemID: rc.TargetItem,
			Materials:    rc.Materials,
			Medicines:    rc.Medicines,
			SuccessRate:  rc.SuccessRate,
		}
	}

	for _, fc := range file.Fusion {
		if _, exists := book.fusion[fc.TargetItem]; exists {
			return nil, fmt.Errorf("%w: fusion %s", ErrDuplicateRecipe, fc.TargetItem)
		}
		if err := requireCatalogued(cat, []string{fc.TargetItem, fc.SourceItem}); err != nil {
			return nil, fmt.Errorf("fusion %s: %w", fc.TargetItem, err)
		}
		book.fusion[fc.TargetItem] = domain.FusionRecipe{
			TargetItemID:   fc.TargetItem,
			SourceItemID:   fc.SourceItem,
			SourceQuantity: fc.SourceQuantity,
			SuccessRate:    fc.SuccessRate,
		}
	}

	return book, nil
}

func requireCatalogued(cat *catalog.Catalog, ids []string) error {
	for _, id := range ids {
		if _, ok := cat.Item(id); !ok {
			return fmt.Errorf("%w: unknown item %s", ErrInvalidRecipeConfig, id)
		}
	}
	return nil
}

// Craft returns the craft recipe for the target item id.
func (b *RecipeBook) Craft(targetItemID string) (domain.Recipe, bool) {
	r, ok := b.craft[targetItemID]
	return r, ok
}

// Fusion returns the fusion recipe for the target item id.
func (b *RecipeBook) Fusion(targetItemID string) (domain.FusionRecipe, bool) {
	r, ok := b.fusion[targetItemID]
	return r, ok
}

// CraftTargets lists all craftable target ids.
func (b *RecipeBook) CraftTargets() []string {
	out := make([]string, 0, len(b.craft))
	for id := range b.craft {
		out = append(out, id)
	}
	return out
}

// FusionTargets lists all fusable target ids.
func (b *RecipeBook) FusionTargets() []string {
	out := make([]string, 0, len(b.fusion))
	for id := range b.fusion {
		out = append(out, id)
	}
	return out
}
