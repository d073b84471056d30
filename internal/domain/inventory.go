package domain

// InventoryEntry is a single ledger row, keyed by (user, category, item id).
// Quantity never goes below zero; a zero-quantity row may remain in storage
// and is treated as absent.
type InventoryEntry struct {
	UserID   string       `json:"user_id"`
	Category ItemCategory `json:"category"`
	ItemID   string       `json:"item_id"`
	Quantity int          `json:"quantity"`
}

// Inventory is a user's full set of ledger rows.
type Inventory struct {
	UserID  string           `json:"user_id"`
	Entries []InventoryEntry `json:"entries"`
}

// FindEntry returns the index of the row for (category, itemID), or -1.
func (inv *Inventory) FindEntry(category ItemCategory, itemID string) int {
	for i := range inv.Entries {
		if inv.Entries[i].Category == category && inv.Entries[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

// Quantity returns the held quantity for (category, itemID). Missing and
// zero-quantity rows both report 0.
func (inv *Inventory) Quantity(category ItemCategory, itemID string) int {
	if i := inv.FindEntry(category, itemID); i != -1 {
		return inv.Entries[i].Quantity
	}
	return 0
}

// Add increments the row for (category, itemID), creating it on first grant.
func (inv *Inventory) Add(category ItemCategory, itemID string, quantity int) {
	if i := inv.FindEntry(category, itemID); i != -1 {
		inv.Entries[i].Quantity += quantity
		return
	}
	inv.Entries = append(inv.Entries, InventoryEntry{
		UserID:   inv.UserID,
		Category: category,
		ItemID:   itemID,
		Quantity: quantity,
	})
}

// Remove decrements the row for (category, itemID). The caller must have
// checked sufficiency; Remove returns ErrInsufficientQuantity otherwise and
// leaves the row untouched.
func (inv *Inventory) Remove(category ItemCategory, itemID string, quantity int) error {
	i := inv.FindEntry(category, itemID)
	if i == -1 || inv.Entries[i].Quantity < quantity {
		return ErrInsufficientQuantity
	}
	inv.Entries[i].Quantity -= quantity
	return nil
}

// NonEmpty returns the rows with quantity > 0.
func (inv *Inventory) NonEmpty() []InventoryEntry {
	out := make([]InventoryEntry, 0, len(inv.Entries))
	for _, e := range inv.Entries {
		if e.Quantity > 0 {
			out = append(out, e)
		}
	}
	return out
}
