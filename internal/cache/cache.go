package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Entry is a cached result set with the block it is complete up to.
type Entry[T any] struct {
	Items       []T    `json:"items"`
	LatestBlock uint64 `json:"latestBlock"`
	// UpdatedAt is unix milliseconds.
	UpdatedAt int64 `json:"updatedAt"`
}

// Updated returns UpdatedAt as a time.
func (e Entry[T]) Updated() time.Time {
	return time.UnixMilli(e.UpdatedAt)
}

// Cache is a best-effort, namespaced result cache. Store failures are logged and treated
// as a miss on read and as a no-op on write.
type Cache[T any] struct {
	store     Store
	namespace string
	logger    *zap.Logger
	now       func() time.Time
}

func New[T any](store Store, namespace string, logger *zap.Logger) *Cache[T] {
	if store == nil {
		store = NopStore{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache[T]{store: store, namespace: namespace, logger: logger, now: time.Now}
}

func (c *Cache[T]) key(key string) string {
	if c.namespace == "" {
		return key
	}
	return c.namespace + ":" + key
}

// Read returns the entry under key. Missing or malformed data yields ok=false.
func (c *Cache[T]) Read(ctx context.Context, key string) (Entry[T], bool) {
	data, ok, err := c.store.Get(ctx, c.key(key))
	if err != nil {
		c.logger.Warn("cache read failed", zap.String("key", c.key(key)), zap.Error(err))
		return Entry[T]{}, false
	}
	if !ok {
		return Entry[T]{}, false
	}
	var entry Entry[T]
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Debug("cache entry malformed", zap.String("key", c.key(key)), zap.Error(err))
		return Entry[T]{}, false
	}
	return entry, true
}

// Write stores entry, stamping UpdatedAt with the current time when it is zero.
func (c *Cache[T]) Write(ctx context.Context, key string, entry Entry[T]) {
	if entry.UpdatedAt == 0 {
		entry.UpdatedAt = c.now().UnixMilli()
	}
	if entry.Items == nil {
		entry.Items = []T{}
	}
	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", c.key(key)), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, c.key(key), data); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", c.key(key)), zap.Error(err))
	}
}

// Clear removes the entry under key.
func (c *Cache[T]) Clear(ctx context.Context, key string) {
	if err := c.store.Remove(ctx, c.key(key)); err != nil {
		c.logger.Warn("cache clear failed", zap.String("key", c.key(key)), zap.Error(err))
	}
}

// IsStale reports whether updatedAt is older than ttl. A non-positive ttl disables expiry.
func (c *Cache[T]) IsStale(updatedAt time.Time, ttl time.Duration) bool {
	return IsStale(updatedAt, ttl, c.now())
}

// IsStale reports whether updatedAt is older than ttl at now.
func IsStale(updatedAt time.Time, ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(updatedAt) > ttl
}
