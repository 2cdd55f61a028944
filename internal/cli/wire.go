package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	requestcache "github.com/Arthur1/request-cache"
	"github.com/Arthur1/request-cache/cache"
	"github.com/Arthur1/request-cache/cache/engine/memorycache"
	"github.com/Arthur1/request-cache/cache/engine/rediscache"
	"github.com/Arthur1/request-cache/cache/key"
	"github.com/Arthur1/request-cache/internal/config"
	"github.com/Arthur1/request-cache/jobs"
	"github.com/Arthur1/request-cache/metrics"
)

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// newCacheEngine builds the configured engine. The returned closer is nil
// for the memory engine.
func newCacheEngine(cfg config.CacheConfig, m metrics.Metrics) (cache.CacheEngine, io.Closer, error) {
	keyGenerator := key.NewKeyGenerator(cfg.Partition)
	switch cfg.Engine {
	case "memory":
		return memorycache.NewEngine(
			memorycache.WithMaxSize(cfg.MaxSize),
			memorycache.WithTTL(cfg.TTL),
			memorycache.WithMetrics(m),
			memorycache.WithKeyGenerator(keyGenerator),
		), nil, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		opts := []rediscache.Option{
			rediscache.WithPrefix(cfg.Redis.Prefix),
			rediscache.WithTTL(cfg.TTL),
			rediscache.WithMetrics(m),
			rediscache.WithKeyGenerator(keyGenerator),
		}
		if cfg.Redis.LocalCacheSize > 0 {
			opts = append(opts, rediscache.WithLocalCache(cfg.Redis.LocalCacheSize, cfg.Redis.LocalCacheTTL))
		}
		engine, err := rediscache.New(rdb, opts...)
		if err != nil {
			rdb.Close()
			return nil, nil, err
		}
		return engine, rdb, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache engine %q", cfg.Engine)
	}
}

func newUpstreamTransport(cfg config.UpstreamConfig, logger *slog.Logger) http.RoundTripper {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.ResponseHeaderTimeout = cfg.Timeout

	traced := otelhttp.NewTransport(base)

	var limiter *rate.Limiter
	if cfg.RateLimit.Enabled {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	}
	if !cfg.CircuitBreaker.Enabled {
		return jobs.NewGuardedTransport(traced, limiter, nil)
	}
	breaker := jobs.NewBreaker("jobs-upstream", jobs.BreakerConfig{
		MaxRequests:      cfg.CircuitBreaker.MaxRequests,
		Interval:         cfg.CircuitBreaker.Interval,
		Timeout:          cfg.CircuitBreaker.Timeout,
		MinRequests:      cfg.CircuitBreaker.MinRequests,
		FailureThreshold: cfg.CircuitBreaker.FailureThreshold,
	}, logger)
	return jobs.NewGuardedTransport(traced, limiter, breaker)
}

// fetcher builds the cached fetcher for the loaded config and registers the
// cache counters on the app registry.
func (a *app) fetcher() (*requestcache.Fetcher, error) {
	m, err := metrics.NewPrometheus(a.registry, a.cfg.Cache.Engine)
	if err != nil {
		return nil, fmt.Errorf("register cache metrics: %w", err)
	}
	engine, closer, err := newCacheEngine(a.cfg.Cache, m)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	return requestcache.NewFetcher(engine,
		requestcache.WithChild(newUpstreamTransport(a.cfg.Upstream, a.logger)),
		requestcache.WithLogger(a.logger),
	), nil
}

func (a *app) jobsClient() (*jobs.Client, error) {
	fetcher, err := a.fetcher()
	if err != nil {
		return nil, err
	}
	return jobs.NewClient(fetcher,
		jobs.WithBaseURL(a.cfg.Upstream.BaseURL),
		jobs.WithLogger(a.logger),
	), nil
}

func (a *app) savedJobs() (*jobs.SavedJobs, error) {
	if a.cfg.Upstream.SavedJobsURL == "" {
		return nil, errors.New("upstream.savedJobsURL is required for saved jobs")
	}
	fetcher, err := a.fetcher()
	if err != nil {
		return nil, err
	}
	return jobs.NewSavedJobs(fetcher, a.cfg.Upstream.SavedJobsURL), nil
}
