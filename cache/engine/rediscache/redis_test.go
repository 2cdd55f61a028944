package rediscache

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reqcache "github.com/Arthur1/request-cache/cache"
	"github.com/Arthur1/request-cache/cache/key"
)

type testKeyGenerator struct{}

func (g *testKeyGenerator) Key(_ string, _ key.Params) string {
	return "test"
}

func newTestEngine(t *testing.T, opts ...Option) (*CacheEngine, *miniredis.Miniredis) {
	t.Helper()
	rs, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(rs.Close)
	redisCli := redis.NewClient(&redis.Options{Addr: rs.Addr(), DB: 0})
	e, err := New(redisCli, opts...)
	require.NoError(t, err)
	return e, rs
}

func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("Default", func(t *testing.T) {
		t.Parallel()
		redisCli := redis.NewClient(&redis.Options{})
		e, err := New(redisCli)
		require.NoError(t, err)
		assert.IsType(t, &key.DefaultKeyGenerator{}, e.keyGenerator)
		assert.NotEmpty(t, e.redisCache)
		assert.Nil(t, e.local)
		assert.Equal(t, defaultPrefix, e.prefix)
		assert.Equal(t, defaultTTL, e.ttl)
	})

	t.Run("WithKeyGenerator", func(t *testing.T) {
		t.Parallel()
		redisCli := redis.NewClient(&redis.Options{})
		keyGenerator := &testKeyGenerator{}
		e, err := New(redisCli, WithKeyGenerator(keyGenerator))
		require.NoError(t, err)
		assert.Equal(t, keyGenerator, e.keyGenerator)
	})

	t.Run("WithLocalCache", func(t *testing.T) {
		t.Parallel()
		redisCli := redis.NewClient(&redis.Options{})
		e, err := New(redisCli, WithLocalCache(10, 30*time.Second))
		require.NoError(t, err)
		require.NotNil(t, e.local)
		assert.Equal(t, 30*time.Second, e.local.ttl)
	})

	t.Run("local TTL is capped at the engine TTL", func(t *testing.T) {
		t.Parallel()
		redisCli := redis.NewClient(&redis.Options{})
		e, err := New(redisCli, WithTTL(2*time.Second), WithLocalCache(10, time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, e.local.ttl)
	})

	t.Run("WithPrefix and WithTTL", func(t *testing.T) {
		t.Parallel()
		redisCli := redis.NewClient(&redis.Options{})
		e, err := New(redisCli, WithPrefix("jobs:"), WithTTL(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "jobs:", e.prefix)
		assert.Equal(t, time.Hour, e.ttl)
	})

	t.Run("TTL below one second", func(t *testing.T) {
		t.Parallel()
		redisCli := redis.NewClient(&redis.Options{})
		for _, ttl := range []time.Duration{500 * time.Millisecond, 0, -time.Second} {
			_, err := New(redisCli, WithTTL(ttl))
			assert.ErrorIs(t, err, ErrTTLTooShort, ttl)
		}
	})
}

func TestLocalTTL(t *testing.T) {
	t.Parallel()
	assert.Equal(t, time.Minute, LocalTTL(0, time.Minute))
	assert.Equal(t, time.Minute, LocalTTL(-time.Second, time.Minute))
	assert.Equal(t, 10*time.Second, LocalTTL(10*time.Second, time.Minute))
	assert.Equal(t, time.Minute, LocalTTL(time.Hour, time.Minute))
}

func TestCacheEngineKey(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(t, WithKeyGenerator(&testKeyGenerator{}))
	assert.Equal(t, "test", e.Key("https://example.com", nil))
}

func TestCacheEngineGetAndSet(t *testing.T) {
	t.Parallel()
	res := &reqcache.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       []byte(`{"jobs":[]}`),
	}

	t.Run("cache miss", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestEngine(t)
		_, ok, err := e.Get(context.Background(), "key1")
		assert.False(t, ok)
		assert.NoError(t, err)
	})

	for name, opts := range map[string][]Option{
		"redis only":  nil,
		"local cache": {WithLocalCache(10, 0)},
	} {
		t.Run("set and cache hit/"+name, func(t *testing.T) {
			t.Parallel()
			e, rs := newTestEngine(t, opts...)
			ctx := context.Background()

			err := e.Set(ctx, "key1", res)
			assert.NoError(t, err)
			assert.True(t, rs.Exists("requestcache:key1"))

			got, ok, err := e.Get(ctx, "key1")
			assert.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, http.StatusOK, got.StatusCode)
			assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
			assert.Equal(t, `{"jobs":[]}`, string(got.Body))
		})
	}

	t.Run("entries expire after the TTL", func(t *testing.T) {
		t.Parallel()
		e, rs := newTestEngine(t, WithTTL(time.Minute))
		ctx := context.Background()
		assert.NoError(t, e.Set(ctx, "key1", res))

		rs.FastForward(time.Minute)
		_, ok, err := e.Get(ctx, "key1")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("local tier does not outlive the TTL", func(t *testing.T) {
		t.Parallel()
		e, rs := newTestEngine(t, WithTTL(time.Second), WithLocalCache(10, time.Minute))
		ctx := context.Background()
		assert.NoError(t, e.Set(ctx, "key1", res))
		_, ok, _ := e.Get(ctx, "key1")
		require.True(t, ok)

		time.Sleep(1100 * time.Millisecond)
		rs.FastForward(1100 * time.Millisecond)
		assert.False(t, rs.Exists("requestcache:key1"))
		_, ok, err := e.Get(ctx, "key1")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("reads do not fill the local tier", func(t *testing.T) {
		t.Parallel()
		e, rs := newTestEngine(t, WithLocalCache(10, 0))
		ctx := context.Background()
		b, err := e.redisCache.Marshal(res)
		require.NoError(t, err)
		require.NoError(t, rs.Set("requestcache:key1", string(b)))

		_, ok, err := e.Get(ctx, "key1")
		require.NoError(t, err)
		require.True(t, ok)
		_, ok = e.local.get("requestcache:key1")
		assert.False(t, ok)
	})
}

func TestCacheEngineDeleteAndClear(t *testing.T) {
	t.Parallel()
	e, rs := newTestEngine(t, WithPrefix("jobs:"), WithLocalCache(10, 0))
	ctx := context.Background()
	assert.NoError(t, rs.Set("other:key", "kept"))
	for _, k := range []string{"a", "b", "c"} {
		assert.NoError(t, e.Set(ctx, k, &reqcache.Response{StatusCode: http.StatusOK}))
	}

	assert.NoError(t, e.Delete(ctx, "a"))
	assert.NoError(t, e.Delete(ctx, "a"))
	_, ok, _ := e.Get(ctx, "a")
	assert.False(t, ok)

	// gone from redis but still held locally
	rs.Del("jobs:c")

	assert.NoError(t, e.Clear(ctx))
	assert.False(t, rs.Exists("jobs:b"))
	assert.True(t, rs.Exists("other:key"))
	for _, k := range []string{"b", "c"} {
		_, ok, err := e.Get(ctx, k)
		assert.NoError(t, err)
		assert.False(t, ok, k)
	}
}
