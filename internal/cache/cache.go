// Package cache provides the TTL-based store that mediates every
// upstream fetch. A hit is served without touching the rate limiter;
// a miss consumes a limiter slot before the producer runs.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rift-insights/internal/logger"
	"rift-insights/internal/ratelimit"
)

// ErrRateLimited signals that admission was denied. Use errors.Is to
// detect it and errors.As with *RateLimitedError to read RetryAfter.
var ErrRateLimited = errors.New("upstream quota exhausted")

// RateLimitedError carries the duration after which a retry could be
// admitted.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("upstream quota exhausted, retry after %s", e.RetryAfter)
}

func (e *RateLimitedError) Unwrap() error { return ErrRateLimited }

// Producer performs the actual upstream call on a cache miss.
type Producer func(ctx context.Context) ([]byte, error)

type entry struct {
	payload   []byte
	createdAt time.Time
	ttl       time.Duration
}

// expired is inclusive: an entry inserted at T with ttl D is dead for
// any read at or after T+D.
func (e *entry) expired(now time.Time) bool {
	return now.Sub(e.createdAt) >= e.ttl
}

// Cache is a bounded key/value store with per-entry TTL. Eviction at
// capacity is insertion-order (oldest insert goes first, not LRU);
// expired entries are also dropped by a periodic background sweep so
// memory stays bounded even for keys that are never re-read.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	order      []string
	maxEntries int
	limiter    *ratelimit.Limiter
	log        *logger.Entry

	// now is swappable for tests
	now func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

// New creates a cache holding at most maxEntries live entries, gating
// all producer calls through limiter.
func New(limiter *ratelimit.Limiter, maxEntries int, log *logger.Entry) *Cache {
	return &Cache{
		entries:    make(map[string]*entry),
		order:      make([]string, 0, maxEntries),
		maxEntries: maxEntries,
		limiter:    limiter,
		log:        log,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
}

// Fetch returns the cached payload for key if live, otherwise asks the
// limiter for admission and invokes producer. Denied admission fails
// fast with *RateLimitedError rather than blocking; callers that want
// to wait can sleep for RetryAfter and call again. A failed producer
// does not refund the consumed quota slot: the attempt counted against
// the upstream budget regardless of outcome.
//
// Two goroutines missing the same key concurrently may both invoke
// producer; per-key calls in this system are independent and the
// result is idempotent, so the only cost is a quota slot.
func (c *Cache) Fetch(ctx context.Context, key string, ttl time.Duration, produce Producer) ([]byte, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && !e.expired(c.now()) {
		payload := e.payload
		c.mu.Unlock()
		return payload, nil
	}
	c.mu.Unlock()

	if !c.limiter.TryAcquire() {
		retry := c.limiter.TimeUntilNextSlot()
		c.log.WithFields(logger.Fields{"key": key, "retry_after": retry.String()}).
			Warn("fetch denied by rate limiter")
		return nil, &RateLimitedError{RetryAfter: retry}
	}

	payload, err := produce(ctx)
	if err != nil {
		// No cache write on failure; the slot stays consumed.
		return nil, fmt.Errorf("upstream fetch for %s failed: %w", key, err)
	}

	c.mu.Lock()
	c.put(key, payload, ttl)
	c.mu.Unlock()

	return payload, nil
}

// put inserts an entry, evicting the oldest insert if at capacity.
// Caller must hold mu.
func (c *Cache) put(key string, payload []byte, ttl time.Duration) {
	if _, exists := c.entries[key]; !exists {
		for len(c.entries) >= c.maxEntries {
			c.evictOldestLocked()
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = &entry{
		payload:   payload,
		createdAt: c.now(),
		ttl:       ttl,
	}
}

func (c *Cache) evictOldestLocked() {
	for len(c.order) > 0 {
		key := c.order[0]
		c.order = c.order[1:]
		if _, ok := c.entries[key]; ok {
			delete(c.entries, key)
			return
		}
		// Stale order slot from a sweep; keep scanning.
	}
}

// Len reports the number of live (possibly expired, not yet swept)
// entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep removes every expired entry. It runs in the background via
// StartSweeper but is exported so tests and shutdown paths can force a
// pass.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}

	if removed > 0 {
		kept := c.order[:0]
		for _, key := range c.order {
			if _, ok := c.entries[key]; ok {
				kept = append(kept, key)
			}
		}
		c.order = kept
	}
	return removed
}

// StartSweeper launches the periodic expiry sweep. Stop terminates it.
func (c *Cache) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := c.Sweep(); n > 0 {
					c.log.WithFields(logger.Fields{"removed": n}).Debug("cache sweep")
				}
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop terminates the background sweeper.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}
