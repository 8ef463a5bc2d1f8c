package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ViewCache is a generic JSON-backed Redis cache for immutable read views
// (transfers and customers never change after creation, so cached copies can
// never go stale). A nil *ViewCache disables caching, which keeps the cache
// strictly optional for callers and tests.
type ViewCache[T any] struct {
	client *goredis.Client
	log    logrus.FieldLogger
	ttl    time.Duration
}

// NewViewCache creates a ViewCache backed by the provided Redis client.
// Pass ttl 0 for keys that should not expire.
func NewViewCache[T any](client *goredis.Client, log logrus.FieldLogger, ttl time.Duration) *ViewCache[T] {
	return &ViewCache[T]{client: client, log: log, ttl: ttl}
}

// Get retrieves and unmarshals a value.
// Returns (nil, false) on a disabled cache, a miss, or a decode error.
func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, false
	}
	return &v, true
}

// Set marshals value and stores it under key.
// Errors are logged rather than returned — a lost cache write is non-fatal.
func (c *ViewCache[T]) Set(ctx context.Context, key string, value *T) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.log.WithField("key", key).WithError(err).Warn("view cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.WithField("key", key).WithError(err).Warn("view cache write failed")
	}
}
