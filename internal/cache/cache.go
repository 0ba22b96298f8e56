package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Analytics overview cache: analytics:overview:{scope} where scope is
	// a company ID or "all".
	KeyAnalyticsOverview = "analytics:overview:%s"
)

var TTLAnalyticsOverview = 5 * time.Minute

// New returns a redis client, or nil when no address is configured.
// Every helper below treats a nil client as a cache miss.
func New(addr string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr})
}

// GetJSON loads a cached value into out. ok is false on miss or error.
func GetJSON(ctx context.Context, rdb *redis.Client, key string, out any) bool {
	if rdb == nil {
		return false
	}
	raw, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil and transport errors are both treated as a miss.
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// SetJSON stores a value with a TTL; failures are ignored, the cache is
// best effort.
func SetJSON(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) {
	if rdb == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	rdb.Set(ctx, key, raw, ttl)
}
