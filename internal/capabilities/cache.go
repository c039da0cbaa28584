package capabilities

import (
	"context"
	"sync"
	"time"
)

// Cache wraps a Prober with a time-bounded snapshot cache so the daemon can
// serve frequent capability requests without re-probing binaries each time.
type Cache struct {
	prober  *Prober
	ttl     time.Duration
	onProbe func()

	mu        sync.Mutex
	snapshot  Capabilities
	fetchedAt time.Time
}

// NewCache builds a cache around the prober. A non-positive ttl disables
// caching and every Get probes fresh.
func NewCache(prober *Prober, ttl time.Duration) *Cache {
	return &Cache{prober: prober, ttl: ttl}
}

// SetProbeHook registers a callback fired on every real probe. Used for
// instrumentation.
func (c *Cache) SetProbeHook(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onProbe = fn
}

// Get returns the cached snapshot, probing first when the cache is empty or
// stale.
func (c *Cache) Get(ctx context.Context) Capabilities {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ttl > 0 && !c.fetchedAt.IsZero() && time.Since(c.fetchedAt) < c.ttl {
		return c.snapshot
	}

	if c.onProbe != nil {
		c.onProbe()
	}
	c.snapshot = c.prober.Probe(ctx)
	c.fetchedAt = time.Now()
	return c.snapshot
}

// Invalidate drops the cached snapshot so the next Get probes fresh.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchedAt = time.Time{}
}
