package memorycache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

type countingMetrics struct {
	hits, misses, evictions, expirations atomic.Int64
}

func (m *countingMetrics) Hit()      { m.hits.Add(1) }
func (m *countingMetrics) Miss()     { m.misses.Add(1) }
func (m *countingMetrics) Eviction() { m.evictions.Add(1) }
func (m *countingMetrics) Expire()   { m.expirations.Add(1) }

func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("Default", func(t *testing.T) {
		t.Parallel()
		s := New[int]()
		assert.Equal(t, defaultMaxSize, s.maxSize)
		assert.Equal(t, defaultTTL, s.ttl)
	})

	t.Run("WithMaxSize and WithTTL", func(t *testing.T) {
		t.Parallel()
		s := New[int](WithMaxSize(2), WithTTL(time.Second))
		assert.Equal(t, 2, s.maxSize)
		assert.Equal(t, time.Second, s.ttl)
	})

	t.Run("Non-positive values keep defaults", func(t *testing.T) {
		t.Parallel()
		s := New[int](WithMaxSize(0), WithTTL(-time.Second))
		assert.Equal(t, defaultMaxSize, s.maxSize)
		assert.Equal(t, defaultTTL, s.ttl)
	})
}

func TestStoreEvictsLeastRecentlyInserted(t *testing.T) {
	t.Parallel()
	s := New[int](WithMaxSize(2), WithTTL(1000*time.Millisecond))
	s.Set("a", 1)
	s.Set("b", 2)
	s.Set("c", 3)

	_, ok := s.Get("a")
	assert.False(t, ok)
	v, ok := s.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	v, ok = s.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestStoreBoundedSize(t *testing.T) {
	t.Parallel()
	const maxSize = 10
	m := &countingMetrics{}
	s := New[int](WithMaxSize(maxSize), WithMetrics(m))
	for i := 0; i <= maxSize; i++ {
		s.Set(fmt.Sprintf("k%d", i), i)
	}

	assert.Equal(t, maxSize, s.Len())
	assert.False(t, s.Has("k0"))
	for i := 1; i <= maxSize; i++ {
		assert.True(t, s.Has(fmt.Sprintf("k%d", i)))
	}
	assert.Equal(t, int64(1), m.evictions.Load())
}

func TestStoreGetRefreshesRecency(t *testing.T) {
	t.Parallel()
	s := New[int](WithMaxSize(2))
	s.Set("a", 1)
	s.Set("b", 2)
	_, _ = s.Get("a")
	s.Set("c", 3)

	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("b"))
	assert.True(t, s.Has("c"))
}

func TestStoreHasDoesNotRefreshRecency(t *testing.T) {
	t.Parallel()
	s := New[int](WithMaxSize(2))
	s.Set("a", 1)
	s.Set("b", 2)
	assert.True(t, s.Has("a"))
	s.Set("c", 3)

	assert.False(t, s.Has("a"))
	assert.True(t, s.Has("b"))
}

func TestStoreOverwriteDoesNotEvict(t *testing.T) {
	t.Parallel()
	m := &countingMetrics{}
	s := New[int](WithMaxSize(2), WithMetrics(m))
	s.Set("a", 1)
	s.Set("b", 2)
	s.Set("a", 10)

	assert.Equal(t, 2, s.Len())
	v, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 10, v)
	assert.True(t, s.Has("b"))
	assert.Equal(t, int64(0), m.evictions.Load())
}

func TestStoreTTL(t *testing.T) {
	t.Parallel()
	const ttl = 1000 * time.Millisecond

	t.Run("Get", func(t *testing.T) {
		t.Parallel()
		clock := clockwork.NewFakeClock()
		m := &countingMetrics{}
		s := New[string](WithTTL(ttl), WithClock(clock), WithMetrics(m))
		s.Set("k", "v")

		clock.Advance(ttl - time.Millisecond)
		v, ok := s.Get("k")
		assert.True(t, ok)
		assert.Equal(t, "v", v)

		clock.Advance(time.Millisecond)
		_, ok = s.Get("k")
		assert.False(t, ok)
		assert.Equal(t, 0, s.Len())
		assert.Equal(t, int64(1), m.hits.Load())
		assert.Equal(t, int64(1), m.misses.Load())
		assert.Equal(t, int64(1), m.expirations.Load())
	})

	t.Run("Has", func(t *testing.T) {
		t.Parallel()
		clock := clockwork.NewFakeClock()
		s := New[string](WithTTL(ttl), WithClock(clock))
		s.Set("k", "v")

		clock.Advance(ttl - time.Millisecond)
		assert.True(t, s.Has("k"))
		clock.Advance(time.Millisecond)
		assert.False(t, s.Has("k"))
		assert.Equal(t, 0, s.Len())
	})

	t.Run("Reading does not extend the TTL", func(t *testing.T) {
		t.Parallel()
		clock := clockwork.NewFakeClock()
		s := New[string](WithTTL(ttl), WithClock(clock))
		s.Set("k", "v")

		clock.Advance(ttl / 2)
		_, ok := s.Get("k")
		assert.True(t, ok)
		clock.Advance(ttl / 2)
		_, ok = s.Get("k")
		assert.False(t, ok)
	})

	t.Run("Set restarts the TTL", func(t *testing.T) {
		t.Parallel()
		clock := clockwork.NewFakeClock()
		s := New[string](WithTTL(ttl), WithClock(clock))
		s.Set("k", "v1")
		clock.Advance(ttl / 2)
		s.Set("k", "v2")
		clock.Advance(ttl / 2)

		v, ok := s.Get("k")
		assert.True(t, ok)
		assert.Equal(t, "v2", v)
	})
}

func TestStoreDeleteAndClear(t *testing.T) {
	t.Parallel()
	s := New[int]()
	s.Set("a", 1)
	s.Set("b", 2)

	assert.True(t, s.Delete("a"))
	assert.False(t, s.Delete("a"))
	assert.False(t, s.Has("a"))
	assert.True(t, s.Has("b"))

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Has("b"))

	s.Set("c", 3)
	assert.True(t, s.Has("c"))
}

func TestStoreConcurrentAccess(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClock()
	s := New[int](WithMaxSize(8), WithTTL(time.Second), WithClock(clock))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				k := fmt.Sprintf("k%d", (i+j)%16)
				s.Set(k, j)
				_, _ = s.Get(k)
				_ = s.Has(k)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, s.Len(), 8)

	clock.Advance(time.Second)
	for i := 0; i < 16; i++ {
		_, ok := s.Get(fmt.Sprintf("k%d", i))
		assert.False(t, ok)
	}
}
