package config

import (
	"time"

	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Cache
	v.SetDefault("cache.engine", "memory")
	v.SetDefault("cache.maxSize", 50)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.partition", "")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.prefix", "requestcache:")
	v.SetDefault("cache.redis.localCacheSize", 0)
	v.SetDefault("cache.redis.localCacheTTL", 0)

	// Upstream
	v.SetDefault("upstream.baseURL", "https://remotive.com/api/remote-jobs")
	v.SetDefault("upstream.savedJobsURL", "")
	v.SetDefault("upstream.timeout", 15*time.Second)
	v.SetDefault("upstream.rateLimit.enabled", true)
	v.SetDefault("upstream.rateLimit.requestsPerSecond", 2.0)
	v.SetDefault("upstream.rateLimit.burst", 4)
	v.SetDefault("upstream.circuitBreaker.enabled", true)
	v.SetDefault("upstream.circuitBreaker.maxRequests", 3)
	v.SetDefault("upstream.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("upstream.circuitBreaker.timeout", 30*time.Second)
	v.SetDefault("upstream.circuitBreaker.minRequests", 3)
	v.SetDefault("upstream.circuitBreaker.failureThreshold", 0.6)

	// Server
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
}
