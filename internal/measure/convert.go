package measure

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

type family int

const (
	familyWeight family = iota + 1
	familyVolume
)

type baseFactor struct {
	family family
	factor float64 // units -> base (grams or millilitres)
}

var baseFactors = map[string]baseFactor{
	"g":    {familyWeight, 1},
	"kg":   {familyWeight, 1000},
	"oz":   {familyWeight, 28.3495},
	"lb":   {familyWeight, 453.592},
	"ml":   {familyVolume, 1},
	"l":    {familyVolume, 1000},
	"tbsp": {familyVolume, 15},
	"tsp":  {familyVolume, 5},
	"cup":  {familyVolume, 240},
}

var unitAliases = map[string]string{
	"gram": "g", "grams": "g", "gr": "g",
	"kilogram": "kg", "kilograms": "kg", "kgs": "kg",
	"ounce": "oz", "ounces": "oz",
	"pound": "lb", "pounds": "lb", "lbs": "lb",
	"milliliter": "ml", "milliliters": "ml", "millilitre": "ml", "millilitres": "ml",
	"liter": "l", "liters": "l", "litre": "l", "litres": "l",
	"tablespoon": "tbsp", "tablespoons": "tbsp", "tbs": "tbsp",
	"teaspoon": "tsp", "teaspoons": "tsp",
	"cups": "cup",
	"pieces": "piece", "pcs": "piece", "pc": "piece", "whole": "piece",
	"bulbs": "bulb", "head": "bulb", "heads": "bulb",
}

// CanonicalUnit maps spelled-out and plural unit names onto the symbols used
// by the conversion tables. Unknown units are returned lower-cased.
func CanonicalUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if c, ok := unitAliases[u]; ok {
		return c
	}
	return u
}

const (
	// DefaultPieceGrams is used for a piece of an ingredient missing from the table.
	DefaultPieceGrams = 100.0
	// DefaultBulbGrams is used for a bulb of an ingredient missing from the table.
	DefaultBulbGrams = 45.0
)

// DefaultPieceWeights returns grams per piece for common ingredients.
func DefaultPieceWeights() map[string]float64 {
	return map[string]float64{
		"egg":            50,
		"onion":          150,
		"shallot":        40,
		"tomato":         120,
		"potato":         170,
		"carrot":         60,
		"lemon":          100,
		"lime":           65,
		"apple":          180,
		"banana":         120,
		"orange":         150,
		"avocado":        200,
		"bell pepper":    150,
		"jalapeno":       15,
		"cucumber":       300,
		"zucchini":       200,
		"mushroom":       20,
		"chicken breast": 250,
		"chicken thigh":  120,
	}
}

// DefaultBulbWeights returns grams per bulb for ingredients sold by the bulb.
func DefaultBulbWeights() map[string]float64 {
	return map[string]float64{
		"garlic":  45,
		"fennel":  250,
		"shallot": 40,
		"onion":   150,
	}
}

// Converter converts quantities between units. Piece and bulb conversions
// depend on the ingredient and use per-ingredient gram tables.
type Converter struct {
	pieceGrams map[string]float64
	bulbGrams  map[string]float64
}

// Option configures a Converter.
type Option func(*Converter)

// WithPieceWeights replaces the grams-per-piece table.
func WithPieceWeights(w map[string]float64) Option {
	return func(c *Converter) { c.pieceGrams = w }
}

// WithBulbWeights replaces the grams-per-bulb table.
func WithBulbWeights(w map[string]float64) Option {
	return func(c *Converter) { c.bulbGrams = w }
}

// NewConverter creates a Converter with the default gram tables.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		pieceGrams: DefaultPieceWeights(),
		bulbGrams:  DefaultBulbWeights(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert converts value from one unit to another. When no rule bridges the
// two units the value is returned unchanged and a warning is logged; callers
// comparing across units must treat such a result as unreliable.
func (c *Converter) Convert(value float64, from, to, ingredient string) float64 {
	if from == to {
		return value
	}
	f, t := CanonicalUnit(from), CanonicalUnit(to)
	if f == t {
		return value
	}

	fb, fromOK := baseFactors[f]
	tb, toOK := baseFactors[t]
	if fromOK && toOK && fb.family == tb.family {
		return value * fb.factor / tb.factor
	}

	if toOK && tb.family == familyWeight {
		switch f {
		case "piece":
			return value * c.PieceGrams(ingredient) / tb.factor
		case "bulb":
			return value * c.BulbGrams(ingredient) / tb.factor
		}
	}

	zap.L().Warn("measure: no conversion rule",
		zap.String("from", from),
		zap.String("to", to),
		zap.String("ingredient", ingredient),
		zap.Float64("value", value),
	)
	return value
}

// CanConvert reports whether Convert has a rule bridging from and to.
func (c *Converter) CanConvert(from, to string) bool {
	f, t := CanonicalUnit(from), CanonicalUnit(to)
	if from == to || f == t {
		return true
	}
	fb, fromOK := baseFactors[f]
	tb, toOK := baseFactors[t]
	if fromOK && toOK {
		return fb.family == tb.family
	}
	return toOK && tb.family == familyWeight && (f == "piece" || f == "bulb")
}

// PieceGrams returns the weight of one piece of the ingredient.
func (c *Converter) PieceGrams(ingredient string) float64 {
	return lookupGrams(c.pieceGrams, ingredient, DefaultPieceGrams)
}

// BulbGrams returns the weight of one bulb of the ingredient.
func (c *Converter) BulbGrams(ingredient string) float64 {
	return lookupGrams(c.bulbGrams, ingredient, DefaultBulbGrams)
}

// lookupGrams tries an exact match first, then the longest table key
// contained in the name ("red onion" -> "onion").
func lookupGrams(table map[string]float64, ingredient string, def float64) float64 {
	name := strings.ToLower(strings.TrimSpace(ingredient))
	if g, ok := table[name]; ok {
		return g
	}

	keys := make([]string, 0, len(table))
	for k := range table {
		if strings.Contains(name, k) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return def
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return table[keys[0]]
}
