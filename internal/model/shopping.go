package model

// Ingredient is one recipe line as supplied by a caller.
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

// UsageMethod names the path the usage calculator took.
type UsageMethod string

const (
	UsageSameCategory  UsageMethod = "same_category"
	UsageCountToWeight UsageMethod = "count_to_weight"
	UsageFallbackHalf  UsageMethod = "fallback_half"
)

// UsageResult is the fraction of one package a recipe consumes.
type UsageResult struct {
	PercentUsed  float64     `json:"percent_used"`
	PackagePrice float64     `json:"package_price"`
	UsedCost     float64     `json:"used_cost"`
	PackageSize  string      `json:"package_size"`
	Method       UsageMethod `json:"method"`
}

// IngredientLine is the per-ingredient row of a shopping summary.
type IngredientLine struct {
	Name         string        `json:"name"`
	Quantity     string        `json:"quantity"`
	PackageSize  string        `json:"package_size,omitempty"`
	PackagePrice float64       `json:"package_price"`
	PercentUsed  float64       `json:"percent_used"`
	CostInRecipe float64       `json:"cost_in_recipe"`
	APICost      float64       `json:"api_cost"`
	Source       ProvenanceTag `json:"source"`
	Degraded     bool          `json:"degraded,omitempty"`
}

// ShoppingSummary totals the package spend for a recipe.
type ShoppingSummary struct {
	Ingredients       []IngredientLine `json:"ingredients"`
	TotalPackagePrice float64          `json:"total_package_price"`
	TotalRecipeCost   float64          `json:"total_recipe_cost"`
	LeftoverValue     float64          `json:"leftover_value"`
}

// IngredientPrice is a unit price quote. A nil Price means no data.
type IngredientPrice struct {
	Price  *float64 `json:"price"`
	Unit   string   `json:"unit"`
	Source string   `json:"source"`
}

// IngredientCost is the API-priced cost of one recipe line.
type IngredientCost struct {
	Name      string   `json:"name"`
	Quantity  string   `json:"quantity"`
	Price     *float64 `json:"price"`
	PriceUnit string   `json:"price_unit"`
	Total     float64  `json:"total"`
	Source    string   `json:"source"`
}
