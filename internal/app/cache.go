package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/devilmatch/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL is how long a loaded dataset is served before reloading.
const DefaultCacheTTL = time.Hour

// Cache holds one lazily loaded value for a fixed time. Concurrent loads
// while the cache is cold are collapsed into a single call.
type Cache[T any] struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	group    singleflight.Group
	value    T
	loadedAt time.Time
	valid    bool
	// gen changes on Invalidate; a load that started under an older
	// generation does not overwrite a newer state.
	gen uint64
}

// NewCache creates a cache. A non-positive ttl uses DefaultCacheTTL and a nil
// clock uses time.Now.
func NewCache[T any](ttl time.Duration, now func() time.Time) *Cache[T] {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache[T]{ttl: ttl, now: now}
}

// TTL returns the validity duration of a loaded value.
func (c *Cache[T]) TTL() time.Duration { return c.ttl }

// GetOrLoad returns the cached value while it is fresh; otherwise it calls
// load and caches the result. Errors from load are returned and not cached.
func (c *Cache[T]) GetOrLoad(ctx context.Context, load func(context.Context) (T, error)) (T, error) {
	if v, ok := c.fresh(); ok {
		metrics.RecordCacheHit()
		return v, nil
	}

	ch := c.group.DoChan("load", func() (interface{}, error) {
		// Another caller may have filled the cache while we queued.
		if v, ok := c.fresh(); ok {
			return v, nil
		}
		metrics.RecordCacheMiss()

		c.mu.Lock()
		gen := c.gen
		c.mu.Unlock()

		// The load outlives a single caller's cancellation.
		v, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return v, err
		}

		c.mu.Lock()
		if c.gen == gen {
			c.value, c.loadedAt, c.valid = v, c.now(), true
		}
		c.mu.Unlock()
		return v, nil
	})

	select {
	case res := <-ch:
		v, _ := res.Val.(T)
		return v, res.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Peek returns the cached value and its load time without loading.
func (c *Cache[T]) Peek() (T, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.loadedAt, c.valid
}

// Invalidate drops the cached value; the next GetOrLoad reloads.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	var zero T
	c.value, c.loadedAt, c.valid = zero, time.Time{}, false
	c.gen++
	c.mu.Unlock()
	c.group.Forget("load")
	metrics.RecordCacheInvalidation()
}

func (c *Cache[T]) fresh() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid && c.now().Sub(c.loadedAt) < c.ttl {
		return c.value, true
	}
	var zero T
	return zero, false
}
