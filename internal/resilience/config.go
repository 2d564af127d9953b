package resilience

import (
	"context"
	"time"
)

// FromRetryConfig converts config values to a RetryConfig.
func FromRetryConfig(maxAttempts, initialBackoffMs, maxBackoffMs int) RetryConfig {
	cfg := DefaultRetryConfig()
	if maxAttempts > 0 {
		cfg.MaxAttempts = maxAttempts
	}
	if initialBackoffMs > 0 {
		cfg.InitialBackoff = time.Duration(initialBackoffMs) * time.Millisecond
	}
	if maxBackoffMs > 0 {
		cfg.MaxBackoff = time.Duration(maxBackoffMs) * time.Millisecond
	}
	return cfg
}

// FromCircuitConfig converts config values to a CircuitBreakerConfig.
func FromCircuitConfig(failureThreshold, resetTimeoutSecs int) CircuitBreakerConfig {
	cfg := DefaultCircuitBreakerConfig()
	if failureThreshold > 0 {
		cfg.FailureThreshold = failureThreshold
	}
	if resetTimeoutSecs > 0 {
		cfg.ResetTimeout = time.Duration(resetTimeoutSecs) * time.Second
	}
	return cfg
}

// Guard combines a retry policy with a circuit breaker for one remote service.
// Each guarded call is retried as a unit and counts once against the breaker.
type Guard struct {
	Retry   RetryConfig
	Breaker *CircuitBreaker
}

// NewGuard creates a Guard for the named service.
func NewGuard(service string, retry RetryConfig, breaker CircuitBreakerConfig) *Guard {
	if retry.OnRetry == nil {
		retry.OnRetry = RetryLogger(service, "lookup")
	}
	return &Guard{Retry: retry, Breaker: NewCircuitBreaker(service, breaker)}
}

// Call runs fn under the guard. A nil guard calls fn directly.
func Call[T any](ctx context.Context, g *Guard, fn func(ctx context.Context) (T, error)) (T, error) {
	if g == nil {
		return fn(ctx)
	}
	return ExecuteVal(ctx, g.Breaker, func(ctx context.Context) (T, error) {
		return DoVal(ctx, g.Retry, fn)
	})
}
