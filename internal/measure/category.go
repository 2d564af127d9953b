package measure

import "strings"

// Category is the coarse family a unit token belongs to.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryWeight
	CategoryVolume
	CategoryCount
)

func (c Category) String() string {
	switch c {
	case CategoryWeight:
		return "weight"
	case CategoryVolume:
		return "volume"
	case CategoryCount:
		return "count"
	default:
		return "unknown"
	}
}

// Membership is by substring and checked in weight, volume, count order, so
// "lb" wins over the "l" in the volume list and "fl oz" counts as weight.
var categoryTokens = []struct {
	cat    Category
	tokens []string
}{
	{CategoryWeight, []string{"g", "kg", "oz", "lb"}},
	{CategoryVolume, []string{"ml", "l", "tbsp", "tsp", "cup"}},
	{CategoryCount, []string{"piece", "unit", "pack", "bunch"}},
}

// Classify returns the category of a unit token.
func Classify(unit string) Category {
	u := strings.ToLower(unit)
	if u == "" {
		return CategoryUnknown
	}
	for _, ct := range categoryTokens {
		for _, tok := range ct.tokens {
			if strings.Contains(u, tok) {
				return ct.cat
			}
		}
	}
	return CategoryUnknown
}
