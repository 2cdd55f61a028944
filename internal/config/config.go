package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "JOBSEARCH"

// Config holds all application configuration. Values are resolved in this
// order: flags bound to the viper instance, environment variables
// (JOBSEARCH_CACHE_ENGINE, ...), the config file, defaults.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Server   ServerConfig   `mapstructure:"server"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

// CacheConfig selects and sizes the response cache.
type CacheConfig struct {
	Engine    string        `mapstructure:"engine"` // memory, redis
	MaxSize   int           `mapstructure:"maxSize"`
	TTL       time.Duration `mapstructure:"ttl"`
	Partition string        `mapstructure:"partition"`
	Redis     RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
	// LocalCacheSize enables an in-process TinyLFU tier in front of redis
	// when positive.
	LocalCacheSize int `mapstructure:"localCacheSize"`
	// LocalCacheTTL may not exceed cache.ttl. Zero means cache.ttl.
	LocalCacheTTL time.Duration `mapstructure:"localCacheTTL"`
}

// UpstreamConfig describes the job listings API and how hard we may hit it.
type UpstreamConfig struct {
	BaseURL        string               `mapstructure:"baseURL"`
	SavedJobsURL   string               `mapstructure:"savedJobsURL"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	RateLimit      RateLimitConfig      `mapstructure:"rateLimit"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requestsPerSecond"`
	Burst             int     `mapstructure:"burst"`
}

type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Time spent open before half-open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`
}

func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// New returns a viper instance with defaults and environment handling set
// up. Callers bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/jobsearch/")
	v.AddConfigPath("$HOME/.jobsearch")
	v.AddConfigPath(".")
	return v
}

// Load reads the config file, if any, and unmarshals v. A non-empty
// configFile replaces the search paths and must exist.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level: %s", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format: %s", c.Log.Format))
	}

	switch c.Cache.Engine {
	case "memory":
		if c.Cache.MaxSize <= 0 {
			errs = append(errs, fmt.Errorf("cache.maxSize must be positive, got %d", c.Cache.MaxSize))
		}
	case "redis":
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("cache.redis.addr is required for the redis engine"))
		}
		// go-redis/cache turns anything shorter into one hour
		if c.Cache.TTL > 0 && c.Cache.TTL < time.Second {
			errs = append(errs, fmt.Errorf("cache.ttl must be at least 1s for the redis engine, got %s", c.Cache.TTL))
		}
		if r := c.Cache.Redis; r.LocalCacheSize > 0 && r.LocalCacheTTL > c.Cache.TTL {
			errs = append(errs, fmt.Errorf("cache.redis.localCacheTTL %s exceeds cache.ttl %s", r.LocalCacheTTL, c.Cache.TTL))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid cache engine: %s", c.Cache.Engine))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL))
	}

	if c.Upstream.BaseURL == "" {
		errs = append(errs, errors.New("upstream.baseURL is required"))
	}
	if rl := c.Upstream.RateLimit; rl.Enabled && (rl.RequestsPerSecond <= 0 || rl.Burst <= 0) {
		errs = append(errs, errors.New("upstream.rateLimit needs positive requestsPerSecond and burst"))
	}
	if cb := c.Upstream.CircuitBreaker; cb.Enabled && (cb.FailureThreshold <= 0 || cb.FailureThreshold > 1) {
		errs = append(errs, fmt.Errorf("upstream.circuitBreaker.failureThreshold must be in (0, 1], got %v", cb.FailureThreshold))
	}
	return errors.Join(errs...)
}
