package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/recipe-cost/internal/cache"
	"github.com/sells-group/recipe-cost/internal/config"
	"github.com/sells-group/recipe-cost/internal/cost"
	"github.com/sells-group/recipe-cost/internal/measure"
	"github.com/sells-group/recipe-cost/internal/model"
	"github.com/sells-group/recipe-cost/internal/packaging"
	"github.com/sells-group/recipe-cost/internal/pricing"
	"github.com/sells-group/recipe-cost/internal/resilience"
	"github.com/sells-group/recipe-cost/internal/shopping"
	"github.com/sells-group/recipe-cost/pkg/catalog"
	"github.com/sells-group/recipe-cost/pkg/priceapi"
)

const (
	packageCacheName = "packages"
	priceCacheName   = "prices"
)

// appEnv holds the wired resolver, price service and aggregator used by
// every command.
type appEnv struct {
	Resolver    *packaging.Resolver
	Prices      *pricing.Service
	Aggregator  *shopping.Aggregator
	PriceCache  *cache.Cache[model.IngredientPrice]
	closeStores func() error
}

// Close releases the cache database, if any.
func (e *appEnv) Close() {
	if e.closeStores != nil {
		if err := e.closeStores(); err != nil {
			zap.L().Warn("close cache store", zap.Error(err))
		}
	}
}

// initEnv builds the cache backends, remote clients and core services from
// cfg. Callers should defer env.Close().
func initEnv(ctx context.Context, c *config.Config, mode string) (*appEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	pkgBackend, priceBackend, closeStores, err := openBackends(ctx, c.Cache)
	if err != nil {
		return nil, err
	}

	table, err := packaging.LoadTable(c.Packages.TablePath)
	if err != nil {
		if closeStores != nil {
			_ = closeStores()
		}
		return nil, err
	}

	pkgCache := cache.New[model.PackageDescriptor](packageCacheName, pkgBackend,
		time.Duration(c.Cache.PackageTTLHours)*time.Hour)
	priceCache := cache.New[model.IngredientPrice](priceCacheName, priceBackend,
		time.Duration(c.Cache.PriceTTLHours)*time.Hour)

	retry := resilience.FromRetryConfig(c.Retry.MaxAttempts, c.Retry.InitialBackoffMs, c.Retry.MaxBackoffMs)
	breaker := resilience.FromCircuitConfig(c.Circuit.FailureThreshold, c.Circuit.ResetTimeoutSecs)

	var resolverOpts []packaging.Option
	if c.Catalog.BaseURL != "" {
		client := catalog.NewClient(c.Catalog.Key,
			catalog.WithBaseURL(c.Catalog.BaseURL),
			catalog.WithHTTPClient(&http.Client{Timeout: time.Duration(c.Catalog.TimeoutSecs) * time.Second}),
			catalog.WithRateLimit(c.Catalog.RatePerSec, max(1, int(c.Catalog.RatePerSec))),
		)
		resolverOpts = append(resolverOpts, packaging.WithRemote(client, resilience.NewGuard("catalog", retry, breaker)))
	}
	resolver := packaging.NewResolver(table, pkgCache, resolverOpts...)

	conv := measure.NewConverter()
	var priceClient priceapi.Client
	var priceOpts []pricing.Option
	priceOpts = append(priceOpts, pricing.WithConverter(conv))
	if c.Prices.BaseURL != "" {
		priceClient = priceapi.NewClient(c.Prices.Key,
			priceapi.WithBaseURL(c.Prices.BaseURL),
			priceapi.WithHTTPClient(&http.Client{Timeout: time.Duration(c.Prices.TimeoutSecs) * time.Second}),
		)
		priceOpts = append(priceOpts, pricing.WithGuard(resilience.NewGuard("priceapi", retry, breaker)))
	}
	prices := pricing.NewService(priceClient, priceCache, priceOpts...)

	agg := shopping.NewAggregator(resolver, prices,
		shopping.WithCalculator(cost.NewCalculator(conv)),
		shopping.WithMaxConcurrency(c.Shopping.MaxConcurrency),
	)

	zap.L().Debug("environment ready",
		zap.String("cache_driver", c.Cache.Driver),
		zap.Int("static_packages", table.Len()),
		zap.Duration("package_ttl", pkgCache.TTL()),
		zap.Duration("price_ttl", priceCache.TTL()),
		zap.Bool("catalog", c.Catalog.BaseURL != ""),
		zap.Bool("prices", c.Prices.BaseURL != ""),
	)

	return &appEnv{
		Resolver:    resolver,
		Prices:      prices,
		Aggregator:  agg,
		PriceCache:  priceCache,
		closeStores: closeStores,
	}, nil
}

// openBackends returns the package and price cache backends for the
// configured driver. The close func is nil when nothing needs closing.
func openBackends(ctx context.Context, c config.CacheConfig) (pkg, price cache.Backend, closeFn func() error, err error) {
	switch c.Driver {
	case "memory":
		return nil, nil, nil, nil
	case "file":
		return cache.NewFileBackend(c.Dir, packageCacheName), cache.NewFileBackend(c.Dir, priceCacheName), nil, nil
	case "sqlite":
		db, err := cache.OpenSQLite(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		return db.Backend(packageCacheName), db.Backend(priceCacheName), db.Close, nil
	case "postgres":
		db, err := cache.OpenPostgres(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		return db.Backend(packageCacheName), db.Backend(priceCacheName), db.Close, nil
	default:
		return nil, nil, nil, eris.Errorf("unsupported cache driver: %s", c.Driver)
	}
}
