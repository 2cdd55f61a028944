package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"

	reqcache "github.com/Arthur1/request-cache/cache"
	"github.com/Arthur1/request-cache/cache/key"
	"github.com/Arthur1/request-cache/metrics"
)

type CacheEngine struct {
	redisCli     RedisClient
	redisCache   *cache.Cache
	local        *localTier
	keyGenerator key.KeyGenerator
	prefix       string
	ttl          time.Duration
	metrics      metrics.Metrics
}

var _ reqcache.CacheEngine = (*CacheEngine)(nil)

// ErrTTLTooShort is returned by New for a TTL below one second, which
// go-redis/cache would silently replace with one hour.
var ErrTTLTooShort = errors.New("rediscache: ttl must be at least 1s")

const MinTTL = time.Second

type RedisClient interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	SetXX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

var (
	defaultPrefix = "requestcache:"
	defaultTTL    = 5 * time.Minute
)

type Option interface {
	apply(opts *options)
}

var (
	_ Option = keyGeneratorOption{}
	_ Option = localCacheOption{}
	_ Option = prefixOption("")
	_ Option = ttlOption(0)
	_ Option = metricsOption{}
)

type options struct {
	keyGenerator   key.KeyGenerator
	localCacheSize int
	localCacheTTL  time.Duration
	prefix         string
	ttl            time.Duration
	metrics        metrics.Metrics
}

type keyGeneratorOption struct {
	keyGenerator key.KeyGenerator
}

func (o keyGeneratorOption) apply(opts *options) {
	opts.keyGenerator = o.keyGenerator
}

func WithKeyGenerator(keyGenerator key.KeyGenerator) keyGeneratorOption {
	return keyGeneratorOption{keyGenerator}
}

type localCacheOption struct {
	size int
	ttl  time.Duration
}

func (o localCacheOption) apply(opts *options) {
	opts.localCacheSize = o.size
	opts.localCacheTTL = o.ttl
}

// WithLocalCache adds an in-process TinyLFU tier of size entries in front of
// redis. Entries stay in it for ttl, capped at the engine TTL; a
// non-positive ttl means the engine TTL.
func WithLocalCache(size int, ttl time.Duration) localCacheOption {
	return localCacheOption{size, ttl}
}

type prefixOption string

func (o prefixOption) apply(opts *options) {
	opts.prefix = string(o)
}

// WithPrefix namespaces the redis keys written by the engine. Clear only
// removes keys under this prefix.
func WithPrefix(prefix string) prefixOption {
	return prefixOption(prefix)
}

type ttlOption time.Duration

func (o ttlOption) apply(opts *options) {
	opts.ttl = time.Duration(o)
}

func WithTTL(ttl time.Duration) ttlOption {
	return ttlOption(ttl)
}

type metricsOption struct {
	metrics metrics.Metrics
}

func (o metricsOption) apply(opts *options) {
	opts.metrics = o.metrics
}

func WithMetrics(m metrics.Metrics) metricsOption {
	return metricsOption{m}
}

func New(redisCli RedisClient, opts ...Option) (*CacheEngine, error) {
	options := &options{
		keyGenerator: key.NewKeyGenerator(""),
		prefix:       defaultPrefix,
		ttl:          defaultTTL,
		metrics:      metrics.Noop{},
	}
	for _, o := range opts {
		o.apply(options)
	}
	if options.ttl < MinTTL {
		return nil, fmt.Errorf("%w, got %s", ErrTTLTooShort, options.ttl)
	}

	e := &CacheEngine{
		redisCli:     redisCli,
		redisCache:   cache.New(&cache.Options{Redis: redisCli}),
		keyGenerator: options.keyGenerator,
		prefix:       options.prefix,
		ttl:          options.ttl,
		metrics:      options.metrics,
	}
	if options.localCacheSize > 0 {
		e.local = newLocalTier(options.localCacheSize, LocalTTL(options.localCacheTTL, options.ttl))
	}
	return e, nil
}

// LocalTTL is how long the local tier keeps an entry: localTTL capped at
// ttl, or ttl when localTTL is not positive.
func LocalTTL(localTTL, ttl time.Duration) time.Duration {
	if localTTL <= 0 || localTTL > ttl {
		return ttl
	}
	return localTTL
}

func (e *CacheEngine) Key(url string, params key.Params) string {
	return e.keyGenerator.Key(url, params)
}

func (e *CacheEngine) Get(ctx context.Context, key string) (*reqcache.Response, bool, error) {
	k := e.prefix + key
	var res reqcache.Response
	if e.local != nil {
		if b, ok := e.local.get(k); ok {
			if err := e.redisCache.Unmarshal(b, &res); err != nil {
				return nil, false, err
			}
			e.metrics.Hit()
			return &res, true, nil
		}
	}
	// Reads never populate the local tier: the remaining redis TTL of the
	// entry is unknown here.
	if err := e.redisCache.Get(ctx, k, &res); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			e.metrics.Miss()
			return nil, false, nil
		}
		return nil, false, err
	}
	e.metrics.Hit()
	return &res, true, nil
}

func (e *CacheEngine) Set(ctx context.Context, key string, res *reqcache.Response) error {
	k := e.prefix + key
	if e.local == nil {
		return e.redisCache.Set(&cache.Item{Ctx: ctx, Key: k, Value: res, TTL: e.ttl})
	}

	b, err := e.redisCache.Marshal(res)
	if err != nil {
		return err
	}
	// local first, so its entry expires no later than the redis one
	e.local.set(k, b)
	if err := e.redisCache.Set(&cache.Item{Ctx: ctx, Key: k, Value: b, TTL: e.ttl}); err != nil {
		e.local.del(k)
		return err
	}
	return nil
}

func (e *CacheEngine) Delete(ctx context.Context, key string) error {
	k := e.prefix + key
	if e.local != nil {
		e.local.del(k)
	}
	return e.redisCache.Delete(ctx, k)
}

// Clear removes every key under the engine prefix and empties the local tier.
func (e *CacheEngine) Clear(ctx context.Context) error {
	if e.local != nil {
		e.local.reset()
	}
	var cursor uint64
	for {
		keys, next, err := e.redisCli.Scan(ctx, cursor, e.prefix+"*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := e.redisCli.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
