// Package cache memoizes derived record sets per session. Entries are keyed
// by (variant, operation, parameters); values are immutable once stored, so
// a hit hands out the same pointer every time.
package cache

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/singleflight"

	"parceldash/internal/metrics"
	"parceldash/internal/types"
)

// Key identifies one cached computation. Params must be a canonical
// rendering of the operation's arguments (for filters, FilterSpec.Key).
type Key struct {
	Variant types.Variant
	Op      string
	Params  string
}

func (k Key) String() string {
	return k.Variant.String() + "|" + k.Op + "|" + k.Params
}

type entry struct {
	key   string
	value any
}

// Cache is safe for concurrent use. The zero value is not usable; call New.
type Cache struct {
	// MaxEntries bounds the cache; reaching it clears every entry before the
	// next store. Zero means unbounded.
	MaxEntries int
	Metrics    *metrics.Metrics

	mu      sync.Mutex
	buckets map[uint64][]entry
	size    int
	gen     uint64
	group   singleflight.Group
	hash    func(string) uint64
}

// New returns an empty cache. m may be nil.
func New(maxEntries int, m *metrics.Metrics) *Cache {
	return &Cache{
		MaxEntries: maxEntries,
		Metrics:    m,
		buckets:    make(map[uint64][]entry),
		hash:       xxh3.HashString,
	}
}

// Get returns the cached value for key.
func (c *Cache) Get(key Key) (any, bool) {
	s := key.String()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookupLocked(c.hash(s), s)
}

func (c *Cache) lookupLocked(h uint64, s string) (any, bool) {
	for _, e := range c.buckets[h] {
		if e.key == s {
			return e.value, true
		}
	}
	return nil, false
}

// Do returns the cached value for key, computing it with fn on a miss.
// Concurrent misses on the same key share one call of fn. Errors are
// returned to every waiter and never stored. A value computed across a
// Flush is returned to its callers but not stored.
func (c *Cache) Do(key Key, fn func() (any, error)) (any, error) {
	s := key.String()
	h := c.hash(s)

	c.mu.Lock()
	if v, ok := c.lookupLocked(h, s); ok {
		c.mu.Unlock()
		c.Metrics.CacheHit(key.Op)
		return v, nil
	}
	gen := c.gen
	c.mu.Unlock()
	c.Metrics.CacheMiss(key.Op)

	v, err, _ := c.group.Do(strconv.FormatUint(gen, 10)+"/"+s, func() (any, error) {
		c.mu.Lock()
		if v, ok := c.lookupLocked(h, s); ok {
			c.mu.Unlock()
			return v, nil
		}
		c.mu.Unlock()

		start := time.Now()
		v, err := fn()
		c.Metrics.ObserveOp(key.Op, err, time.Since(start))
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gen != gen {
			return v, nil
		}
		if c.MaxEntries > 0 && c.size >= c.MaxEntries {
			c.clearLocked()
			c.Metrics.CacheFlush()
		}
		c.buckets[h] = append(c.buckets[h], entry{key: s, value: v})
		c.size++
		return v, nil
	})
	return v, err
}

// Flush drops every entry. Computations already running when Flush is
// called will not store their results.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.clearLocked()
	c.gen++
	c.mu.Unlock()
	c.Metrics.CacheFlush()
}

func (c *Cache) clearLocked() {
	c.buckets = make(map[uint64][]entry)
	c.size = 0
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Generation counts Flush calls.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Memo is the typed form of Do. A nil cache computes without memoizing.
func Memo[T any](c *Cache, key Key, fn func() (T, error)) (T, error) {
	var zero T
	if c == nil {
		return fn()
	}
	v, err := c.Do(key, func() (any, error) { return fn() })
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: %s holds %T, want %T", key, v, zero)
	}
	return t, nil
}
