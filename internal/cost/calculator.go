// Package cost computes how much of a retail package a recipe consumes.
package cost

import (
	"go.uber.org/zap"

	"github.com/sells-group/recipe-cost/internal/measure"
	"github.com/sells-group/recipe-cost/internal/model"
)

// FallbackPercent is assumed when recipe and package units cannot be compared.
const FallbackPercent = 0.5

// Calculator computes package usage for recipe quantities.
type Calculator struct {
	conv *measure.Converter
}

// NewCalculator creates a Calculator. A nil converter uses the default tables.
func NewCalculator(conv *measure.Converter) *Calculator {
	if conv == nil {
		conv = measure.NewConverter()
	}
	return &Calculator{conv: conv}
}

// Usage returns the fraction of pkg consumed by quantity of ingredient. The
// fraction is clamped to [0,1]; a recipe needing more than one package still
// reports one.
func (c *Calculator) Usage(quantity string, pkg model.PackageDescriptor, ingredient string) model.UsageResult {
	rq := measure.Parse(quantity)
	pq := measure.Parse(pkg.Size)
	rc, pc := measure.Classify(rq.Unit), measure.Classify(pq.Unit)

	var (
		percent float64
		method  model.UsageMethod
	)
	switch {
	case rc != measure.CategoryUnknown && rc == pc:
		method = model.UsageSameCategory
		percent = ratio(c.canonical(rq, rc, ingredient), c.canonical(pq, pc, ingredient))
	case rc == measure.CategoryCount && pc == measure.CategoryWeight:
		method = model.UsageCountToWeight
		recipeGrams := c.conv.Convert(rq.Value, "piece", "g", ingredient)
		percent = ratio(recipeGrams, c.conv.Convert(pq.Value, pq.Unit, "g", ingredient))
	default:
		method = model.UsageFallbackHalf
		percent = FallbackPercent
		zap.L().Warn("cost: no conversion path, assuming half package",
			zap.String("ingredient", ingredient),
			zap.String("quantity", quantity),
			zap.String("package_size", pkg.Size),
			zap.Stringer("recipe_category", rc),
			zap.Stringer("package_category", pc),
		)
	}

	percent = clamp(percent)
	return model.UsageResult{
		PercentUsed:  percent,
		PackagePrice: pkg.Price,
		UsedCost:     pkg.Price * percent,
		PackageSize:  pkg.Size,
		Method:       method,
	}
}

// canonical expresses q in grams, millilitres or a raw count.
func (c *Calculator) canonical(q measure.Quantity, cat measure.Category, ingredient string) float64 {
	switch cat {
	case measure.CategoryWeight:
		return c.conv.Convert(q.Value, q.Unit, "g", ingredient)
	case measure.CategoryVolume:
		return c.conv.Convert(q.Value, q.Unit, "ml", ingredient)
	default:
		return q.Value
	}
}

// ratio treats an empty or negative package as fully used.
func ratio(recipe, pkg float64) float64 {
	if pkg <= 0 {
		return 1
	}
	return recipe / pkg
}

func clamp(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
