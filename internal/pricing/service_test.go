package pricing

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/recipe-cost/internal/cache"
	"github.com/sells-group/recipe-cost/internal/model"
	"github.com/sells-group/recipe-cost/pkg/priceapi"
)

type stubClient struct {
	quotes map[string]*priceapi.Quote
	err    error
	calls  atomic.Int32
}

func (s *stubClient) Price(_ context.Context, name string) (*priceapi.Quote, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	if q, ok := s.quotes[name]; ok {
		return q, nil
	}
	return &priceapi.Quote{}, nil
}

func ptr(v float64) *float64 { return &v }

func newCache() *cache.Cache[model.IngredientPrice] {
	return cache.New[model.IngredientPrice]("prices", nil, time.Hour)
}

func TestIngredientPrice_RemoteThenCache(t *testing.T) {
	t.Parallel()

	client := &stubClient{quotes: map[string]*priceapi.Quote{
		"flour": {Price: ptr(2.0), Unit: "kg", Source: "grocer"},
	}}
	svc := NewService(client, newCache())

	first := svc.IngredientPrice(context.Background(), "  Flour ")
	require.NotNil(t, first.Price)
	assert.InDelta(t, 2.0, *first.Price, 1e-9)
	assert.Equal(t, "grocer", first.Source)

	second := svc.IngredientPrice(context.Background(), "flour")
	require.NotNil(t, second.Price)
	assert.Equal(t, "cache", second.Source)
	assert.Equal(t, "kg", second.Unit)
	assert.Equal(t, int32(1), client.calls.Load())
}

func TestIngredientPrice_NoData(t *testing.T) {
	t.Parallel()

	client := &stubClient{}
	c := newCache()
	svc := NewService(client, c)

	p := svc.IngredientPrice(context.Background(), "unobtainium")
	assert.Nil(t, p.Price)
	assert.Equal(t, SourceUnavailable, p.Source)
	assert.Equal(t, 0, c.Len())
}

func TestIngredientPrice_ErrorIsUnavailable(t *testing.T) {
	t.Parallel()

	svc := NewService(&stubClient{err: errors.New("boom")}, newCache())
	p := svc.IngredientPrice(context.Background(), "flour")
	assert.Nil(t, p.Price)
	assert.Equal(t, SourceUnavailable, p.Source)
}

func TestIngredientPrice_NoClient(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, nil)
	p := svc.IngredientPrice(context.Background(), "flour")
	assert.Nil(t, p.Price)
}

func TestCalculateIngredientCost(t *testing.T) {
	t.Parallel()

	client := &stubClient{quotes: map[string]*priceapi.Quote{
		"flour": {Price: ptr(2.0), Unit: "kg"},
		"eggs":  {Price: ptr(0.25), Unit: ""},
		"milk":  {Price: ptr(1.2), Unit: "l"},
	}}
	svc := NewService(client, newCache())

	tests := []struct {
		name     string
		ing      model.Ingredient
		expected float64
	}{
		{"converted to price unit", model.Ingredient{Name: "flour", Quantity: "500g"}, 1.0},
		{"unitless price", model.Ingredient{Name: "eggs", Quantity: "4"}, 1.0},
		{"volume", model.Ingredient{Name: "milk", Quantity: "250 ml"}, 0.3},
		{"no price", model.Ingredient{Name: "saffron", Quantity: "1g"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.CalculateIngredientCost(context.Background(), tt.ing)
			assert.Equal(t, tt.ing.Name, got.Name)
			assert.Equal(t, tt.ing.Quantity, got.Quantity)
			assert.InDelta(t, tt.expected, got.Total, 1e-9)
		})
	}
}
