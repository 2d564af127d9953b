// Package pricing answers per-unit ingredient price questions for the
// shopping aggregator. Prices come from the price API and are cached.
package pricing

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/recipe-cost/internal/cache"
	"github.com/sells-group/recipe-cost/internal/measure"
	"github.com/sells-group/recipe-cost/internal/model"
	"github.com/sells-group/recipe-cost/internal/resilience"
	"github.com/sells-group/recipe-cost/pkg/priceapi"
)

// SourceUnavailable tags a price the service could not obtain.
const SourceUnavailable = "unavailable"

// Service looks up ingredient prices and prices recipe quantities.
type Service struct {
	client priceapi.Client
	guard  *resilience.Guard
	cache  *cache.Cache[model.IngredientPrice]
	conv   *measure.Converter
}

// Option configures a Service.
type Option func(*Service)

// WithGuard wraps every price API call in retry and circuit breaking.
func WithGuard(g *resilience.Guard) Option {
	return func(s *Service) { s.guard = g }
}

// WithConverter sets the unit converter used to express quantities in the
// unit a price is quoted in.
func WithConverter(c *measure.Converter) Option {
	return func(s *Service) { s.conv = c }
}

// NewService creates a price service. A nil client disables remote lookups;
// a nil cache disables caching.
func NewService(client priceapi.Client, c *cache.Cache[model.IngredientPrice], opts ...Option) *Service {
	s := &Service{
		client: client,
		cache:  c,
		conv:   measure.NewConverter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngredientPrice returns the unit price for name. A nil Price means no data.
func (s *Service) IngredientPrice(ctx context.Context, name string) model.IngredientPrice {
	key := strings.ToLower(strings.TrimSpace(name))
	unavailable := model.IngredientPrice{Source: SourceUnavailable}
	if key == "" {
		return unavailable
	}

	if s.cache != nil {
		if p, ok := s.cache.Get(key); ok {
			p.Source = string(model.SourceCache)
			return p
		}
	}

	if s.client == nil {
		return unavailable
	}

	q, err := resilience.Call(ctx, s.guard, func(ctx context.Context) (*priceapi.Quote, error) {
		return s.client.Price(ctx, key)
	})
	if err != nil {
		zap.L().Warn("pricing: price lookup failed",
			zap.String("ingredient", key),
			zap.Error(err),
		)
		return unavailable
	}
	if q == nil || q.Price == nil {
		return unavailable
	}

	p := model.IngredientPrice{Price: q.Price, Unit: q.Unit, Source: q.Source}
	if s.cache != nil {
		s.cache.Set(key, p)
	}
	return p
}

// CalculateIngredientCost prices the recipe quantity of ing. The quantity is
// converted into the unit the price is quoted in; without a price the total
// is zero.
func (s *Service) CalculateIngredientCost(ctx context.Context, ing model.Ingredient) model.IngredientCost {
	p := s.IngredientPrice(ctx, ing.Name)
	out := model.IngredientCost{
		Name:      ing.Name,
		Quantity:  ing.Quantity,
		Price:     p.Price,
		PriceUnit: p.Unit,
		Source:    p.Source,
	}
	if p.Price == nil {
		return out
	}

	q := measure.Parse(ing.Quantity)
	amount := q.Value
	if q.Parsed && q.Unit != "" && p.Unit != "" {
		if s.conv.CanConvert(q.Unit, p.Unit) {
			amount = s.conv.Convert(q.Value, q.Unit, p.Unit, ing.Name)
		} else {
			zap.L().Debug("pricing: quantity unit differs from price unit",
				zap.String("ingredient", ing.Name),
				zap.String("quantity_unit", q.Unit),
				zap.String("price_unit", p.Unit),
			)
		}
	}
	out.Total = *p.Price * amount
	return out
}
