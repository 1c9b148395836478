// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// refdata.go keeps the category and sub-category snapshot of each seller in
// Valkey so the product, sub-category and video screens do not refetch the
// same lists on every request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"sellerconsole/internal/catalog"
)

const (
	// refKeyPrefix is the Valkey key prefix for cached reference data.
	refKeyPrefix = "refdata:"

	// DefaultRefTTL is how long a reference data snapshot stays cached.
	DefaultRefTTL = 2 * time.Minute
)

// RefCache caches catalog.RefData per seller.
type RefCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRefCache creates a reference data cache backed by the given Valkey client.
func NewRefCache(client *redis.Client, ttl time.Duration) *RefCache {
	if ttl == 0 {
		ttl = DefaultRefTTL
	}
	return &RefCache{client: client, ttl: ttl}
}

// Get returns the cached snapshot for a seller.
func (rc *RefCache) Get(ctx context.Context, sellerID string) (*catalog.RefData, bool) {
	val, err := rc.client.Get(ctx, refKeyPrefix+sellerID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("refdata cache get error", "seller", sellerID, "error", err)
		return nil, false
	}

	var rd catalog.RefData
	if err := json.Unmarshal(val, &rd); err != nil {
		slog.Warn("refdata cache decode error", "seller", sellerID, "error", err)
		return nil, false
	}
	return &rd, true
}

// Set stores a snapshot for a seller with the configured TTL.
func (rc *RefCache) Set(ctx context.Context, sellerID string, rd *catalog.RefData) {
	payload, err := json.Marshal(rd)
	if err != nil {
		slog.Warn("refdata cache encode error", "seller", sellerID, "error", err)
		return
	}
	if err := rc.client.Set(ctx, refKeyPrefix+sellerID, payload, rc.ttl).Err(); err != nil {
		slog.Warn("refdata cache set error", "seller", sellerID, "error", err)
	}
}

// Load returns the cached snapshot or fetches a fresh one from src.
// Cache failures degrade to a direct fetch.
func (rc *RefCache) Load(ctx context.Context, sellerID string, src catalog.RefSource) (*catalog.RefData, error) {
	if rd, ok := rc.Get(ctx, sellerID); ok {
		slog.Debug("refdata cache hit", "seller", sellerID)
		return rd, nil
	}
	rd, err := catalog.LoadRefData(ctx, src)
	if err != nil {
		return nil, err
	}
	rc.Set(ctx, sellerID, rd)
	return rd, nil
}

// Invalidate drops the snapshot of one seller.
func (rc *RefCache) Invalidate(ctx context.Context, sellerID string) {
	if err := rc.client.Del(ctx, refKeyPrefix+sellerID).Err(); err != nil {
		slog.Warn("refdata cache invalidate error", "seller", sellerID, "error", err)
	}
}

// InvalidateAll removes every cached snapshot. Sub-categories are shared
// across sellers, so any sub-category change clears the whole cache.
func (rc *RefCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := rc.client.Scan(ctx, cursor, refKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("refdata cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("refdata cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("refdata cache cleared", "deleted", deleted)
	}
}
