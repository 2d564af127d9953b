// Package packaging maps ingredient names onto the retail package a store
// sells them in. Resolution tries a static table, then a durable cache, then
// a remote product lookup, and finally a category estimate.
package packaging

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/recipe-cost/internal/cache"
	"github.com/sells-group/recipe-cost/internal/measure"
	"github.com/sells-group/recipe-cost/internal/model"
	"github.com/sells-group/recipe-cost/internal/resilience"
	"github.com/sells-group/recipe-cost/pkg/catalog"
)

// DefaultTTL is how long resolved packages stay cached.
const DefaultTTL = 30 * 24 * time.Hour

// ProductLookup finds retail product data for an ingredient. A nil product
// with a nil error means nothing was found.
type ProductLookup interface {
	Lookup(ctx context.Context, name string) (*catalog.Product, error)
}

// Resolver resolves ingredient names to package descriptors.
type Resolver struct {
	table  *Table
	cache  *cache.Cache[model.PackageDescriptor]
	remote ProductLookup
	guard  *resilience.Guard
	flight singleflight.Group
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRemote enables the remote lookup tier. The guard may be nil.
func WithRemote(lookup ProductLookup, guard *resilience.Guard) Option {
	return func(r *Resolver) {
		r.remote = lookup
		r.guard = guard
	}
}

// NewResolver creates a Resolver. A nil table uses the built-in table and a
// nil cache keeps resolutions in memory for DefaultTTL.
func NewResolver(table *Table, c *cache.Cache[model.PackageDescriptor], opts ...Option) *Resolver {
	if table == nil {
		table = DefaultTable()
	}
	if c == nil {
		c = cache.New[model.PackageDescriptor]("packages", nil, DefaultTTL)
	}
	r := &Resolver{table: table, cache: c}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the package for name. It never fails; an ingredient no
// tier knows gets an estimate.
func (r *Resolver) Resolve(ctx context.Context, name string) model.PackageDescriptor {
	key := normalizeName(name)
	if key == "" {
		d, _ := Estimate(key)
		return d
	}

	if d, ok := r.table.Lookup(key); ok {
		return d
	}
	if d, ok := r.cache.Get(key); ok {
		return d.WithSource(model.SourceCache)
	}

	// The flight outlives any single caller: it runs detached from the
	// starting caller's cancellation so co-waiters and the cache only ever
	// see the remote tier's own outcome.
	ch := r.flight.DoChan(key, func() (any, error) {
		return r.resolveUncached(context.WithoutCancel(ctx), key), nil
	})
	select {
	case res := <-ch:
		if res.Shared {
			zap.L().Debug("packaging: shared in-flight resolution", zap.String("ingredient", key))
		}
		return res.Val.(model.PackageDescriptor)
	case <-ctx.Done():
		d, _ := Estimate(key)
		zap.L().Debug("packaging: caller gave up on in-flight resolution",
			zap.String("ingredient", key),
			zap.Error(ctx.Err()),
		)
		return d
	}
}

func (r *Resolver) resolveUncached(ctx context.Context, key string) model.PackageDescriptor {
	// A concurrent flight for the same key may have finished since the
	// caller's cache check.
	if d, ok := r.cache.Get(key); ok {
		return d.WithSource(model.SourceCache)
	}

	d, found, degraded := r.lookupRemote(ctx, key)
	if found {
		return r.cache.Set(key, d)
	}

	d, category := Estimate(key)
	d.Degraded = degraded
	zap.L().Debug("packaging: estimated package",
		zap.String("ingredient", key),
		zap.String("category", category),
		zap.String("size", d.Size),
		zap.Bool("degraded", degraded),
	)
	return r.cache.Set(key, d)
}

// lookupRemote reports found when the remote tier produced a usable package
// and degraded when it failed rather than simply finding nothing.
func (r *Resolver) lookupRemote(ctx context.Context, key string) (d model.PackageDescriptor, found, degraded bool) {
	if r.remote == nil {
		return d, false, false
	}

	product, err := resilience.Call(ctx, r.guard, func(ctx context.Context) (*catalog.Product, error) {
		return r.safeLookup(ctx, key)
	})
	if err != nil {
		zap.L().Warn("packaging: remote lookup failed",
			zap.String("ingredient", key),
			zap.Error(err),
		)
		return d, false, true
	}
	if product == nil {
		return d, false, false
	}

	size := measure.NormalizeSize(product.PackageSize)
	if size == "" {
		size = measure.NormalizeSize(product.ServingSize)
	}
	if size == "" || measure.Classify(measure.Parse(size).Unit) == measure.CategoryUnknown {
		zap.L().Warn("packaging: remote lookup failed",
			zap.String("ingredient", key),
			zap.String("package_size", product.PackageSize),
			zap.String("serving_size", product.ServingSize),
			zap.Error(eris.New("packaging: unusable product size")),
		)
		return d, false, true
	}

	price := 0.0
	if product.Price != nil && *product.Price > 0 {
		price = *product.Price
	} else {
		est, _ := Estimate(key)
		price = est.Price
	}
	return model.PackageDescriptor{Size: size, Price: price, Source: model.SourceRemote}, true, false
}

func (r *Resolver) safeLookup(ctx context.Context, key string) (p *catalog.Product, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			p = nil
			err = eris.Errorf("packaging: remote lookup panicked: %v", rec)
		}
	}()
	return r.remote.Lookup(ctx, key)
}

// KnownPackages returns every hardcoded package plus every unexpired cached
// one. Hardcoded rows win when both know a name.
func (r *Resolver) KnownPackages() map[string]model.PackageDescriptor {
	out := r.cache.Entries()
	for _, name := range r.table.Names() {
		d, _ := r.table.Lookup(name)
		out[name] = d
	}
	return out
}

// ClearCache drops every cached resolution. The static table is unaffected.
func (r *Resolver) ClearCache() {
	r.cache.Clear()
}
