// Package shopping totals what a recipe costs when every ingredient has to be
// bought as a whole retail package.
package shopping

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/recipe-cost/internal/cost"
	"github.com/sells-group/recipe-cost/internal/measure"
	"github.com/sells-group/recipe-cost/internal/model"
)

// DefaultMaxConcurrency bounds how many ingredients are priced at once.
const DefaultMaxConcurrency = 8

// PackageResolver resolves an ingredient name to its retail package.
type PackageResolver interface {
	Resolve(ctx context.Context, name string) model.PackageDescriptor
}

// PriceLookup prices a recipe line from per-unit ingredient prices.
type PriceLookup interface {
	CalculateIngredientCost(ctx context.Context, ing model.Ingredient) model.IngredientCost
}

// Aggregator builds shopping summaries.
type Aggregator struct {
	resolver       PackageResolver
	prices         PriceLookup
	calc           *cost.Calculator
	maxConcurrency int
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithMaxConcurrency bounds the number of ingredients processed at once.
func WithMaxConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxConcurrency = n
		}
	}
}

// WithCalculator sets the usage calculator.
func WithCalculator(c *cost.Calculator) Option {
	return func(a *Aggregator) { a.calc = c }
}

// NewAggregator creates an Aggregator. prices may be nil, in which case
// every API cost is zero.
func NewAggregator(resolver PackageResolver, prices PriceLookup, opts ...Option) *Aggregator {
	a := &Aggregator{
		resolver:       resolver,
		prices:         prices,
		calc:           cost.NewCalculator(nil),
		maxConcurrency: DefaultMaxConcurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Validate rejects an empty ingredient list or a line without a name.
func Validate(ingredients []model.Ingredient) error {
	if len(ingredients) == 0 {
		return eris.New("shopping: no ingredients")
	}
	for i, ing := range ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return eris.Errorf("shopping: ingredient %d has no name", i+1)
		}
	}
	return nil
}

// Calculate prices every ingredient concurrently and totals the result.
// Lines are returned in input order. No ingredient can fail the summary.
func (a *Aggregator) Calculate(ctx context.Context, ingredients []model.Ingredient) model.ShoppingSummary {
	lines := make([]model.IngredientLine, len(ingredients))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxConcurrency)
	for i, ing := range ingredients {
		g.Go(func() error {
			lines[i] = a.line(gctx, ing)
			return nil
		})
	}
	_ = g.Wait()

	summary := model.ShoppingSummary{Ingredients: lines}
	for _, l := range lines {
		summary.TotalPackagePrice += l.PackagePrice
		summary.TotalRecipeCost += l.CostInRecipe
	}
	summary.LeftoverValue = summary.TotalPackagePrice - summary.TotalRecipeCost

	zap.L().Debug("shopping: summary computed",
		zap.Int("ingredients", len(lines)),
		zap.Float64("total_package_price", summary.TotalPackagePrice),
		zap.Float64("total_recipe_cost", summary.TotalRecipeCost),
	)
	return summary
}

func (a *Aggregator) line(ctx context.Context, ing model.Ingredient) model.IngredientLine {
	apiCost := 0.0
	if a.prices != nil {
		if c := a.prices.CalculateIngredientCost(ctx, ing); c.Price != nil {
			apiCost = c.Total
		}
	}

	pkg := a.resolver.Resolve(ctx, ing.Name)
	if !usable(pkg) {
		zap.L().Debug("shopping: package unusable, using api cost",
			zap.String("ingredient", ing.Name),
			zap.String("size", pkg.Size),
			zap.Float64("price", pkg.Price),
		)
		return model.IngredientLine{
			Name:         ing.Name,
			Quantity:     ing.Quantity,
			PackagePrice: apiCost,
			PercentUsed:  1,
			CostInRecipe: apiCost,
			APICost:      apiCost,
			Source:       model.SourceAPIFallback,
			Degraded:     pkg.Degraded,
		}
	}

	u := a.calc.Usage(ing.Quantity, pkg, ing.Name)
	return model.IngredientLine{
		Name:         ing.Name,
		Quantity:     ing.Quantity,
		PackageSize:  u.PackageSize,
		PackagePrice: u.PackagePrice,
		PercentUsed:  u.PercentUsed,
		CostInRecipe: u.UsedCost,
		APICost:      apiCost,
		Source:       pkg.Source,
		Degraded:     pkg.Degraded,
	}
}

func usable(pkg model.PackageDescriptor) bool {
	return pkg.Price > 0 && measure.Parse(pkg.Size).Parsed
}
