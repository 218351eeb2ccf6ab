package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const cooldownPrefix = "rentall:"

// keyMissing is what go-redis reports from PTTL for a key that does not exist.
const keyMissing = -2 * time.Nanosecond

// cmdable is the subset of go-redis commands the cooldown uses.
type cmdable interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd
	PTTL(ctx context.Context, key string) *goredis.DurationCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

// NewClient parses a redis:// URL and pings the server.
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Cooldown holds per-key windows with SET NX PX, so every API instance
// shares them.
type Cooldown struct {
	client cmdable
}

func NewCooldown(client cmdable) *Cooldown {
	return &Cooldown{client: client}
}

func (c *Cooldown) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, time.Duration, error) {
	k := cooldownPrefix + key
	for attempt := 0; ; attempt++ {
		ok, err := c.client.SetNX(ctx, k, "1", ttl).Result()
		if err != nil {
			return false, 0, fmt.Errorf("set cooldown: %w", err)
		}
		if ok {
			return true, 0, nil
		}
		remaining, err := c.client.PTTL(ctx, k).Result()
		if err != nil {
			return false, 0, fmt.Errorf("read cooldown ttl: %w", err)
		}
		// -2: the key expired after SETNX saw it, so try once more
		if remaining == keyMissing && attempt == 0 {
			continue
		}
		// -1 (no expiry) or a second miss; report the full window
		if remaining <= 0 {
			remaining = ttl
		}
		return false, remaining, nil
	}
}

func (c *Cooldown) Release(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, cooldownPrefix+key).Err(); err != nil {
		return fmt.Errorf("release cooldown: %w", err)
	}
	return nil
}
