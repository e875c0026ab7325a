package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type box struct{ n int64 }

func TestCache(t *testing.T) {
	ctx := context.Background()

	Convey("Given a cache with a one hour TTL", t, func() {
		clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
		cache := NewCache[*box](time.Hour, clock.Now)
		var loads int64
		load := func(context.Context) (*box, error) {
			return &box{n: atomic.AddInt64(&loads, 1)}, nil
		}

		first, err := cache.GetOrLoad(ctx, load)
		So(err, ShouldBeNil)

		Convey("When read again within the TTL", func() {
			clock.Advance(59 * time.Minute)
			again, err := cache.GetOrLoad(ctx, load)

			Convey("Then the same instance is returned without loading", func() {
				So(err, ShouldBeNil)
				So(again, ShouldPointTo, first)
				So(atomic.LoadInt64(&loads), ShouldEqual, 1)
			})
		})

		Convey("When the TTL has passed", func() {
			clock.Advance(time.Hour)
			again, _ := cache.GetOrLoad(ctx, load)

			Convey("Then the value is reloaded", func() {
				So(again, ShouldNotPointTo, first)
				So(again.n, ShouldEqual, 2)
			})
		})

		Convey("When invalidated", func() {
			cache.Invalidate()
			_, _, ok := cache.Peek()
			So(ok, ShouldBeFalse)

			again, _ := cache.GetOrLoad(ctx, load)
			So(again.n, ShouldEqual, 2)
		})

		Convey("When a reload fails", func() {
			cache.Invalidate()
			boom := errors.New("boom")
			_, err := cache.GetOrLoad(ctx, func(context.Context) (*box, error) { return nil, boom })

			Convey("Then the error is returned and not cached", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
				again, err := cache.GetOrLoad(ctx, load)
				So(err, ShouldBeNil)
				So(again.n, ShouldEqual, 2)
			})
		})
	})

	Convey("Given concurrent readers of a cold cache", t, func() {
		cache := NewCache[*box](time.Hour, nil)
		var loads int64
		release := make(chan struct{})
		load := func(context.Context) (*box, error) {
			<-release
			return &box{n: atomic.AddInt64(&loads, 1)}, nil
		}

		var wg sync.WaitGroup
		results := make([]*box, 8)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], _ = cache.GetOrLoad(ctx, load)
			}(i)
		}
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		Convey("Then a single load serves them all", func() {
			So(atomic.LoadInt64(&loads), ShouldEqual, 1)
			for _, r := range results {
				So(r, ShouldPointTo, results[0])
			}
		})
	})

	Convey("Given a caller that gives up", t, func() {
		cache := NewCache[*box](time.Hour, nil)
		release := make(chan struct{})
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := cache.GetOrLoad(cctx, func(context.Context) (*box, error) {
			<-release
			return &box{n: 1}, nil
		})
		close(release)

		Convey("Then it returns the context error", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
