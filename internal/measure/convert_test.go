package measure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvert_Identity(t *testing.T) {
	t.Parallel()
	c := NewConverter()

	for _, u := range []string{"g", "kg", "cup", "piece", "handful", ""} {
		for _, v := range []float64{0, 1, 2.5, 1234.5} {
			assert.InDelta(t, v, c.Convert(v, u, u, "anything"), 0)
		}
	}
}

func TestConvert_RoundTripGramsKilograms(t *testing.T) {
	t.Parallel()
	c := NewConverter()

	for _, v := range []float64{0.001, 1, 250, 999.9, 12345} {
		kg := c.Convert(v, "g", "kg", "flour")
		assert.InDelta(t, v, c.Convert(kg, "kg", "g", "flour"), 1e-9)
	}
}

func TestConvert_FixedFactors(t *testing.T) {
	t.Parallel()
	c := NewConverter()

	tests := []struct {
		name     string
		value    float64
		from, to string
		want     float64
	}{
		{"g to kg", 500, "g", "kg", 0.5},
		{"kg to g", 1.5, "kg", "g", 1500},
		{"ml to l", 250, "ml", "l", 0.25},
		{"l to ml", 2, "l", "ml", 2000},
		{"tbsp to ml", 2, "tbsp", "ml", 30},
		{"tsp to ml", 1, "tsp", "ml", 5},
		{"cup to ml", 1, "cup", "ml", 240},
		{"cups alias", 2, "cups", "ml", 480},
		{"grams alias", 1000, "grams", "kg", 1},
		{"lb to g", 1, "lb", "g", 453.592},
		{"tsp to tbsp", 3, "tsp", "tbsp", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, c.Convert(tt.value, tt.from, tt.to, "water"), 1e-6)
		})
	}
}

func TestConvert_PieceAndBulb(t *testing.T) {
	t.Parallel()
	c := NewConverter()

	assert.InDelta(t, 300.0, c.Convert(2, "piece", "g", "onion"), 1e-9)
	assert.InDelta(t, 0.15, c.Convert(1, "piece", "kg", "red onion"), 1e-9)
	assert.InDelta(t, 100.0, c.Convert(1, "piece", "g", "dragon fruit"), 1e-9)
	assert.InDelta(t, 90.0, c.Convert(2, "bulb", "g", "garlic"), 1e-9)
	assert.InDelta(t, 45.0, c.Convert(1, "bulb", "g", "kohlrabi"), 1e-9)
	assert.InDelta(t, 0.5, c.Convert(2, "pieces", "kg", "chicken breast"), 1e-9)
}

func TestConvert_NoRuleIsNoOp(t *testing.T) {
	t.Parallel()
	c := NewConverter()

	assert.InDelta(t, 3.0, c.Convert(3, "cup", "g", "flour"), 0)
	assert.InDelta(t, 2.0, c.Convert(2, "g", "piece", "onion"), 0)
	assert.InDelta(t, 7.0, c.Convert(7, "pinch", "ml", "salt"), 0)
}

func TestConverter_CanConvert(t *testing.T) {
	t.Parallel()
	c := NewConverter()

	assert.True(t, c.CanConvert("g", "kg"))
	assert.True(t, c.CanConvert("piece", "g"))
	assert.True(t, c.CanConvert("bulbs", "kg"))
	assert.True(t, c.CanConvert("pinch", "pinch"))
	assert.False(t, c.CanConvert("cup", "g"))
	assert.False(t, c.CanConvert("piece", "ml"))
}

func TestConverter_CustomTables(t *testing.T) {
	t.Parallel()
	c := NewConverter(
		WithPieceWeights(map[string]float64{"egg": 60}),
		WithBulbWeights(map[string]float64{}),
	)

	assert.InDelta(t, 120.0, c.Convert(2, "piece", "g", "egg"), 1e-9)
	assert.InDelta(t, DefaultBulbGrams, c.BulbGrams("garlic"), 1e-9)
}

func TestCanonicalUnit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "g", CanonicalUnit(" Grams "))
	assert.Equal(t, "tbsp", CanonicalUnit("tablespoons"))
	assert.Equal(t, "piece", CanonicalUnit("pcs"))
	assert.Equal(t, "handful", CanonicalUnit("handful"))
}
