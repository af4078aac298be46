package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPattern = "dedup:payment:%s"

// RedisDeduper remembers processed payment notification ids in Redis.
type RedisDeduper struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisDeduper creates deduper keeping marks for ttl.
func NewRedisDeduper(rdb *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{rdb: rdb, ttl: ttl}
}

// Seen reports whether eventID has already been marked.
func (d *RedisDeduper) Seen(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, nil
	}
	n, err := d.rdb.Exists(ctx, key(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("check dedup mark: %w", err)
	}
	return n > 0, nil
}

// Mark records eventID as processed.
func (d *RedisDeduper) Mark(ctx context.Context, eventID string) error {
	if eventID == "" {
		return nil
	}
	if err := d.rdb.Set(ctx, key(eventID), "1", d.ttl).Err(); err != nil {
		return fmt.Errorf("set dedup mark: %w", err)
	}
	return nil
}

func key(eventID string) string {
	return fmt.Sprintf(keyPattern, eventID)
}

// NopDeduper never reports duplicates. Replays are still absorbed by the
// conditional status transition.
type NopDeduper struct{}

func (NopDeduper) Seen(context.Context, string) (bool, error) { return false, nil }
func (NopDeduper) Mark(context.Context, string) error         { return nil }
