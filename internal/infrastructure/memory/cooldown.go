package memory

import (
	"context"
	"sync"
	"time"
)

const cooldownSweepEvery = time.Minute

// Cooldown is the in-process fallback used when no Redis is configured.
// Windows are per instance. Expired keys are dropped on Acquire, at most
// once per cooldownSweepEvery.
type Cooldown struct {
	mu        sync.Mutex
	until     map[string]time.Time
	lastSweep time.Time
	now       func() time.Time
}

func NewCooldown(clock func() time.Time) *Cooldown {
	if clock == nil {
		clock = time.Now
	}
	return &Cooldown{until: make(map[string]time.Time), now: clock}
}

func (c *Cooldown) Acquire(_ context.Context, key string, ttl time.Duration) (bool, time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if now.Sub(c.lastSweep) >= cooldownSweepEvery {
		c.sweep(now)
	}
	if until, ok := c.until[key]; ok && until.After(now) {
		return false, until.Sub(now), nil
	}
	c.until[key] = now.Add(ttl)
	return true, 0, nil
}

func (c *Cooldown) Release(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.until, key)
	return nil
}

// sweep requires c.mu.
func (c *Cooldown) sweep(now time.Time) {
	for k, until := range c.until {
		if !until.After(now) {
			delete(c.until, k)
		}
	}
	c.lastSweep = now
}
