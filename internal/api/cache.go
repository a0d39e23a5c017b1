package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cache is an optional Redis read-through cache for the room
// availability calendar. Balances are never cached; they are always
// recomputed from source rows.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCache wraps a Redis client with a TTL for availability entries.
func NewCache(rdb *redis.Client, ttl time.Duration, logger zerolog.Logger) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, logger: logger}
}

func availabilityKey(roomID int64, from, to string) string {
	return fmt.Sprintf("availability:%d:%s:%s", roomID, from, to)
}

// Get loads a cached value into v. A miss or any Redis error reads as
// a miss; the caller falls through to the database.
func (c *Cache) Get(ctx context.Context, key string, v any) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// Set stores v under key with the configured TTL. Failures are logged
// and ignored.
func (c *Cache) Set(ctx context.Context, key string, v any) {
	if c == nil || c.rdb == nil || c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// InvalidateRoom drops all cached availability entries for a room.
// Called after any reservation write touching the room.
func (c *Cache) InvalidateRoom(ctx context.Context, roomID int64) {
	if c == nil || c.rdb == nil {
		return
	}
	pattern := fmt.Sprintf("availability:%d:*", roomID)
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Debug().Err(err).Str("key", iter.Val()).Msg("cache invalidation failed")
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Debug().Err(err).Int64("room_id", roomID).Msg("cache scan failed")
	}
}
