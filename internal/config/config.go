package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Catalog  CatalogConfig  `yaml:"catalog" mapstructure:"catalog"`
	Prices   PricesConfig   `yaml:"prices" mapstructure:"prices"`
	Packages PackagesConfig `yaml:"packages" mapstructure:"packages"`
	Shopping ShoppingConfig `yaml:"shopping" mapstructure:"shopping"`
	Retry    RetryConfig    `yaml:"retry" mapstructure:"retry"`
	Circuit  CircuitConfig  `yaml:"circuit" mapstructure:"circuit"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// CacheConfig selects and configures the durable cache backend.
type CacheConfig struct {
	Driver          string `yaml:"driver" mapstructure:"driver"` // file, sqlite, postgres, memory
	Dir             string `yaml:"dir" mapstructure:"dir"`
	DatabaseURL     string `yaml:"database_url" mapstructure:"database_url"`
	PackageTTLHours int    `yaml:"package_ttl_hours" mapstructure:"package_ttl_hours"`
	PriceTTLHours   int    `yaml:"price_ttl_hours" mapstructure:"price_ttl_hours"`
}

// CatalogConfig configures the remote product catalog. An empty BaseURL
// disables the remote package tier.
type CatalogConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Key         string  `yaml:"key" mapstructure:"key"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// PricesConfig configures the ingredient price API. An empty BaseURL
// disables price lookups.
type PricesConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Key         string `yaml:"key" mapstructure:"key"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// PackagesConfig configures the static package table.
type PackagesConfig struct {
	TablePath string `yaml:"table_path" mapstructure:"table_path"`
}

// ShoppingConfig configures shopping-cost aggregation.
type ShoppingConfig struct {
	MaxConcurrency int `yaml:"max_concurrency" mapstructure:"max_concurrency"`
}

// RetryConfig configures retries for remote calls.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// CircuitConfig configures the circuit breaker in front of each remote service.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RECIPECOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("cache.driver", "file")
	v.SetDefault("cache.dir", ".cache")
	v.SetDefault("cache.database_url", "")
	v.SetDefault("cache.package_ttl_hours", 720)
	v.SetDefault("cache.price_ttl_hours", 168)
	v.SetDefault("catalog.base_url", "")
	v.SetDefault("catalog.key", "")
	v.SetDefault("catalog.rate_per_sec", 5)
	v.SetDefault("catalog.timeout_secs", 10)
	v.SetDefault("prices.base_url", "")
	v.SetDefault("prices.key", "")
	v.SetDefault("prices.timeout_secs", 10)
	v.SetDefault("packages.table_path", "")
	v.SetDefault("shopping.max_concurrency", 8)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 5000)
	v.SetDefault("circuit.failure_threshold", 5)
	v.SetDefault("circuit.reset_timeout_secs", 30)
	v.SetDefault("server.port", 8080)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command depends on. mode is "cli" for the
// one-shot commands or "serve" for the HTTP server.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Cache.Driver {
	case "file":
		if c.Cache.Dir == "" {
			errs = append(errs, "cache.dir is required for the file driver")
		}
	case "sqlite", "postgres":
		if c.Cache.DatabaseURL == "" {
			errs = append(errs, fmt.Sprintf("cache.database_url is required for the %s driver", c.Cache.Driver))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Sprintf("cache.driver %q must be one of file, sqlite, postgres, memory", c.Cache.Driver))
	}

	if c.Cache.PackageTTLHours <= 0 || c.Cache.PriceTTLHours <= 0 {
		errs = append(errs, "cache ttl hours must be > 0")
	}
	if c.Shopping.MaxConcurrency < 1 || c.Shopping.MaxConcurrency > 64 {
		errs = append(errs, "shopping.max_concurrency must be between 1 and 64")
	}
	if c.Catalog.BaseURL != "" && c.Catalog.RatePerSec <= 0 {
		errs = append(errs, "catalog.rate_per_sec must be > 0")
	}

	switch mode {
	case "cli":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
