package requestcache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arthur1/request-cache/cache/engine/rediscache"
)

func TestTransportWithRedisEngine(t *testing.T) {
	t.Parallel()
	var counter int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&counter, 1)
		fmt.Fprintln(w, "OK")
	}))
	defer ts.Close()

	rs, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	defer rs.Close()
	redisCli := redis.NewClient(&redis.Options{
		Addr: rs.Addr(),
		DB:   0,
	})

	engine, err := rediscache.New(redisCli)
	require.NoError(t, err)
	transport := NewTransport(NewFetcher(engine, WithLogger(discardLogger)))
	client := &http.Client{Timeout: 3 * time.Second, Transport: transport}

	get := func(url string) string {
		t.Helper()
		req, _ := http.NewRequest(http.MethodGet, url, nil)
		res, err := client.Do(req)
		if !assert.NoError(t, err) {
			return ""
		}
		defer res.Body.Close()
		resb, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		return string(resb)
	}

	// access origin
	assert.Equal(t, "OK\n", get(ts.URL+"?a=1&b=2"))
	assert.Equal(t, int64(1), atomic.LoadInt64(&counter))

	// fetch from cache, query order does not matter
	assert.Equal(t, "OK\n", get(ts.URL+"?b=2&a=1"))
	assert.Equal(t, int64(1), atomic.LoadInt64(&counter))

	// access origin because another url
	assert.Equal(t, "OK\n", get(ts.URL+"/hoge"))
	assert.Equal(t, int64(2), atomic.LoadInt64(&counter))

	rs.FlushDB()

	// access origin because cache db has flushed
	assert.Equal(t, "OK\n", get(ts.URL+"?a=1&b=2"))
	assert.Equal(t, int64(3), atomic.LoadInt64(&counter))
}

func TestFetcherWithRedisEngine(t *testing.T) {
	t.Parallel()
	var counter int64
	ts := newCountingServer(t, &counter, http.StatusOK, `{"jobs":[]}`)

	rs := miniredis.RunT(t)
	redisCli := redis.NewClient(&redis.Options{Addr: rs.Addr()})
	t.Cleanup(func() { redisCli.Close() })

	engine, err := rediscache.New(redisCli,
		rediscache.WithPrefix("jobs:"),
		rediscache.WithTTL(time.Minute),
		rediscache.WithLocalCache(10, time.Minute),
	)
	require.NoError(t, err)
	f := NewFetcher(engine, WithLogger(discardLogger))
	ctx := context.Background()
	fetch := func(q string) {
		t.Helper()
		res, err := f.Fetch(ctx, ts.URL, nil, map[string]any{"search": q})
		require.NoError(t, err)
		assert.Equal(t, `{"jobs":[]}`, string(res.Body))
	}

	fetch("go")
	fetch("go")
	assert.Equal(t, int64(1), atomic.LoadInt64(&counter))
	assert.Len(t, rs.Keys(), 1)

	require.NoError(t, f.InvalidateCache(ctx, ts.URL, map[string]any{"search": "go"}))
	assert.Empty(t, rs.Keys())
	fetch("go")
	assert.Equal(t, int64(2), atomic.LoadInt64(&counter))

	fetch("rust")
	assert.Equal(t, int64(3), atomic.LoadInt64(&counter))
	require.NoError(t, rs.Set("unrelated", "value"))

	require.NoError(t, f.ClearCache(ctx))
	assert.Equal(t, []string{"unrelated"}, rs.Keys())
	fetch("go")
	fetch("rust")
	assert.Equal(t, int64(5), atomic.LoadInt64(&counter))
}
