package ratelimiter

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move time by hand.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newWithClock(rate, capacity float64) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	l := New(rate, capacity, time.Minute)
	l.now = clock.Now
	return l, clock
}

func TestAllow(t *testing.T) {
	t.Run("burst then deny", func(t *testing.T) {
		l, _ := newWithClock(1, 3)
		defer l.Stop()

		for i := 0; i < 3; i++ {
			assert.True(t, l.Allow("1.2.3.4"), "request %d", i)
		}
		assert.False(t, l.Allow("1.2.3.4"))
	})

	t.Run("refills over time", func(t *testing.T) {
		l, clock := newWithClock(1, 1)
		defer l.Stop()

		require.True(t, l.Allow("ip"))
		require.False(t, l.Allow("ip"))

		clock.Advance(1500 * time.Millisecond)
		assert.True(t, l.Allow("ip"))
		assert.False(t, l.Allow("ip"))
	})

	t.Run("never exceeds capacity", func(t *testing.T) {
		l, clock := newWithClock(10, 2)
		defer l.Stop()

		clock.Advance(time.Hour)
		assert.True(t, l.Allow("ip"))
		assert.True(t, l.Allow("ip"))
		assert.False(t, l.Allow("ip"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		l, _ := newWithClock(1, 1)
		defer l.Stop()

		assert.True(t, l.Allow("a"))
		assert.False(t, l.Allow("a"))
		assert.True(t, l.Allow("b"))
		assert.Equal(t, 2, l.Len())
	})

	t.Run("capacity below one still admits", func(t *testing.T) {
		l, _ := newWithClock(1, 0)
		defer l.Stop()

		assert.True(t, l.Allow("ip"))
	})
}

func TestConcurrentAllow(t *testing.T) {
	l, _ := newWithClock(1, 10)
	defer l.Stop()

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("ip") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), allowed.Load())
}

func TestExpiration(t *testing.T) {
	l := New(1, 1, 20*time.Millisecond)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		l.Allow(fmt.Sprintf("10.0.0.%d", i))
	}
	require.Equal(t, 5, l.Len())

	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestPerMinute(t *testing.T) {
	l := PerMinute(6, 2)
	defer l.Stop()

	assert.InDelta(t, 0.1, l.rate, 1e-9)
	assert.Equal(t, 2.0, l.capacity)
}
