// Package cache provides a generic key-value cache with TTL expiry whose
// contents are mirrored to a durable backend as a full snapshot on every
// mutation.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Backend persists and restores a serialized cache snapshot.
type Backend interface {
	// Load returns the stored snapshot, or nil with no error when none exists.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the stored snapshot.
	Save(ctx context.Context, data []byte) error
}

type entry[T any] struct {
	Value  T     `json:"value"`
	Expiry int64 `json:"expiry"` // epoch millis
}

// Cache is a TTL cache owned by one component. Expired entries are purged
// lazily by Get, never by a background sweep.
type Cache[T any] struct {
	name    string
	backend Backend
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]entry[T]
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now func() time.Time
}

// backendTimeout bounds each backend load or save.
const backendTimeout = 5 * time.Second

// WithNow sets the clock (for testing).
func WithNow(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a cache and restores any snapshot held by backend. A nil
// backend keeps the cache in memory only. Unreadable or corrupt snapshots
// start the cache empty; a corrupt one is overwritten with an empty snapshot.
func New[T any](name string, backend Backend, ttl time.Duration, opts ...Option) *Cache[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Cache[T]{
		name:    name,
		backend: backend,
		ttl:     ttl,
		now:     o.now,
		entries: make(map[string]entry[T]),
	}
	c.load()
	return c
}

func (c *Cache[T]) load() {
	if c.backend == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
	defer cancel()

	data, err := c.backend.Load(ctx)
	if err != nil {
		zap.L().Warn("cache: unreadable snapshot, resetting",
			zap.String("cache", c.name),
			zap.Error(err),
		)
		c.mu.Lock()
		c.persistLocked()
		c.mu.Unlock()
		return
	}
	if len(data) == 0 {
		return
	}

	var stored map[string]entry[T]
	if err := json.Unmarshal(data, &stored); err != nil {
		zap.L().Warn("cache: corrupt snapshot, resetting",
			zap.String("cache", c.name),
			zap.Error(err),
		)
		c.mu.Lock()
		c.persistLocked()
		c.mu.Unlock()
		return
	}

	nowMs := c.now().UnixMilli()
	for k, e := range stored {
		if e.Expiry > nowMs {
			c.entries[k] = e
		}
	}
	zap.L().Debug("cache: loaded snapshot",
		zap.String("cache", c.name),
		zap.Int("stored", len(stored)),
		zap.Int("admitted", len(c.entries)),
	)
}

// Get returns the value for key if it is present and unexpired. An expired
// entry is evicted as a side effect.
func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.now().UnixMilli() >= e.Expiry {
		delete(c.entries, key)
		c.persistLocked()
		return zero, false
	}
	return e.Value, true
}

// Set stores value under key until now+ttl and returns value.
func (c *Cache[T]) Set(key string, value T) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[T]{
		Value:  value,
		Expiry: c.now().Add(c.ttl).UnixMilli(),
	}
	c.persistLocked()
	return value
}

// Clear drops every entry.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry[T])
	c.persistLocked()
}

// Entries returns a copy of all unexpired values. It does not evict.
func (c *Cache[T]) Entries() map[string]T {
	c.mu.Lock()
	defer c.mu.Unlock()

	nowMs := c.now().UnixMilli()
	out := make(map[string]T, len(c.entries))
	for k, e := range c.entries {
		if nowMs < e.Expiry {
			out[k] = e.Value
		}
	}
	return out
}

// Len returns the number of resident entries, expired ones included.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// TTL returns the lifetime given to new entries.
func (c *Cache[T]) TTL() time.Duration {
	return c.ttl
}

// persistLocked writes the full snapshot. Failures are logged and the
// in-memory state stays authoritative. Callers must hold c.mu.
func (c *Cache[T]) persistLocked() {
	if c.backend == nil {
		return
	}
	if err := c.save(c.entries); err != nil {
		zap.L().Warn("cache: persist snapshot",
			zap.String("cache", c.name),
			zap.Int("entries", len(c.entries)),
			zap.Error(err),
		)
	}
}

func (c *Cache[T]) save(snapshot map[string]entry[T]) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return eris.Wrap(err, "cache: marshal snapshot")
	}

	ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
	defer cancel()

	if err := c.backend.Save(ctx, data); err != nil {
		return eris.Wrapf(err, "cache: save %s", c.name)
	}
	return nil
}
