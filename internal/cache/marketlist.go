// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// marketlist.go provides the Redis-backed market-list item cache.
// A resolved market list is stored as its serialized JSON payload so a
// cache hit skips the database lookup and any recomputation entirely.
// Entries expire purely by TTL; writes to a market list do NOT invalidate
// its cached payload, so a static list can serve briefly stale items
// until the TTL lapses.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// itemKeyPrefix namespaces market-list item keys in Redis.
const itemKeyPrefix = "marketlist:"

// ItemCache memoizes resolved market-list payloads in Redis.
type ItemCache struct {
	client *redis.Client
}

// NewItemCache creates an item cache backed by the given Redis client.
func NewItemCache(client *redis.Client) *ItemCache {
	return &ItemCache{client: client}
}

// itemKey returns the Redis key for a market list's resolved items.
func itemKey(slug string) string {
	return fmt.Sprintf("%s%s:items", itemKeyPrefix, slug)
}

// Get retrieves the cached payload for a market-list slug.
// Returns false on miss; cache errors are logged and treated as misses.
func (c *ItemCache) Get(ctx context.Context, slug string) ([]byte, bool) {
	val, err := c.client.Get(ctx, itemKey(slug)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("market-list cache get error", "slug", slug, "error", err)
		return nil, false
	}
	slog.Debug("market-list cache hit", "slug", slug)
	return val, true
}

// Set stores a resolved payload for a market-list slug with the given TTL.
// A non-positive TTL skips caching; the list would be recomputed on every
// request anyway.
func (c *ItemCache) Set(ctx context.Context, slug string, payload []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := c.client.Set(ctx, itemKey(slug), payload, ttl).Err(); err != nil {
		slog.Warn("market-list cache set error", "slug", slug, "error", err)
	}
}
