package domain

// Recipe is a craft recipe: materials plus medicines consumed on attempt,
// producing one target item on a successful roll. Inputs are consumed
// whether or not the roll succeeds.
type Recipe struct {
	TargetItemID string         `json:"target_item"`
	Materials    map[string]int `json:"materials"` // material item id -> required quantity
	Medicines    map[string]int `json:"medicines"` // medicine item id -> required quantity
	SuccessRate  int            `json:"success_rate"`
}

// FusionRecipe converts N copies of a lower-tier item into one higher-tier
// item, with the same consume-on-attempt semantics as crafting.
type FusionRecipe struct {
	TargetItemID   string `json:"target_item"`
	SourceItemID   string `json:"source_item"`
	SourceQuantity int    `json:"source_quantity"`
	SuccessRate    int    `json:"success_rate"`
}
