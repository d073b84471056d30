// Package catalog holds the immutable item registry. It is built once at
// startup from the embedded item config and is safe for concurrent reads
// with no locking; there is no mutation API.
package catalog

import (
	"strings"

	"github.com/tutien/tutienbot/internal/domain"
)

// Catalog is the read-only item registry.
type Catalog struct {
	items  map[string]domain.Item // canonical id -> item
	byName map[string]string      // lowercased display name -> canonical id
}

// ResolveStorageInfo returns the canonical ledger address for any item
// identifier, including aliased/prefixed forms. Several id spaces overlap
// (farm material "1" vs spirit stone "lt1"); this lookup is the single
// place that disambiguation happens. Unknown ids resolve to
// CategoryUnknown rather than erroring so inventory display stays robust
// against catalog drift.
func (c *Catalog) ResolveStorageInfo(itemID string) domain.StorageInfo {
	if item, ok := c.items[itemID]; ok {
		return domain.StorageInfo{
			Category:    item.Category,
			CanonicalID: item.ID,
			DisplayName: item.DisplayName,
		}
	}
	return domain.StorageInfo{
		Category:    domain.CategoryUnknown,
		CanonicalID: itemID,
		DisplayName: itemID,
	}
}

// ResolveByName resolves a user-facing display name to storage info.
// Falls back to treating the input as an item id.
func (c *Catalog) ResolveByName(name string) domain.StorageInfo {
	if id, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c.ResolveStorageInfo(id)
	}
	return c.ResolveStorageInfo(name)
}

// Item returns the catalog entry for a canonical id.
func (c *Catalog) Item(id string) (domain.Item, bool) {
	item, ok := c.items[id]
	return item, ok
}

// FarmableMaterials returns the materials that can drop from farming.
func (c *Catalog) FarmableMaterials() []domain.Item {
	out := make([]domain.Item, 0)
	for _, item := range c.items {
		if item.Category == domain.CategoryMaterial && item.Farmable {
			out = append(out, item)
		}
	}
	return out
}

// ShopItems returns the buyable items (base value > 0).
func (c *Catalog) ShopItems() []domain.Item {
	out := make([]domain.Item, 0)
	for _, item := range c.items {
		if item.BaseValue > 0 {
			out = append(out, item)
		}
	}
	return out
}

// Len returns the number of catalogued items.
func (c *Catalog) Len() int {
	return len(c.items)
}
