package domain

// ItemCategory partitions the inventory ledger. It is resolved once by the
// catalog at load time; downstream logic must never re-derive a category
// from the shape of an item id string.
type ItemCategory string

const (
	CategoryMaterial    ItemCategory = "material"
	CategoryMedicine    ItemCategory = "medicine"
	CategorySpiritStone ItemCategory = "spirit_stone"
	CategoryBook        ItemCategory = "book"
	CategoryUnknown     ItemCategory = "unknown"
)

// Item represents a catalog entry. The ID is the canonical ledger key
// within the item's category (e.g. "7" for a farm material, "d1" for a
// medicine, "lt2" for a spirit stone).
type Item struct {
	ID          string       `json:"id"`
	Category    ItemCategory `json:"category"`
	DisplayName string       `json:"display_name"`
	Tier        int          `json:"tier,omitempty"`
	BaseValue   int          `json:"base_value,omitempty"` // shop price in low-grade spirit stones, 0 = not buyable
	Farmable    bool         `json:"farmable,omitempty"`
}

// StorageInfo is the canonical ledger address of an item id, returned by
// the catalog's ResolveStorageInfo. Unknown ids resolve to CategoryUnknown
// rather than an error so inventory display stays robust against catalog
// drift.
type StorageInfo struct {
	Category    ItemCategory
	CanonicalID string
	DisplayName string
}

// ItemStack is a quantity of a single catalogued item, used in results
// (rewards granted, materials consumed, items lost).
type ItemStack struct {
	ItemID   string       `json:"item_id"`
	Category ItemCategory `json:"category"`
	Quantity int          `json:"quantity"`
}
