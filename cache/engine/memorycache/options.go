package memorycache

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Arthur1/request-cache/cache/key"
	"github.com/Arthur1/request-cache/metrics"
)

var (
	defaultMaxSize = 50
	defaultTTL     = 5 * time.Minute
)

type Option interface {
	apply(opts *options)
}

var (
	_ Option = maxSizeOption(0)
	_ Option = ttlOption(0)
	_ Option = clockOption{}
	_ Option = metricsOption{}
	_ Option = keyGeneratorOption{}
)

type options struct {
	maxSize      int
	ttl          time.Duration
	clock        clockwork.Clock
	metrics      metrics.Metrics
	keyGenerator key.KeyGenerator
}

func newOptions(opts []Option) *options {
	options := &options{
		maxSize:      defaultMaxSize,
		ttl:          defaultTTL,
		clock:        clockwork.NewRealClock(),
		metrics:      metrics.Noop{},
		keyGenerator: key.NewKeyGenerator(""),
	}
	for _, o := range opts {
		o.apply(options)
	}
	return options
}

type maxSizeOption int

func (o maxSizeOption) apply(opts *options) {
	if o > 0 {
		opts.maxSize = int(o)
	}
}

// WithMaxSize bounds the number of entries held. Non-positive values keep the default.
func WithMaxSize(maxSize int) maxSizeOption {
	return maxSizeOption(maxSize)
}

type ttlOption time.Duration

func (o ttlOption) apply(opts *options) {
	if o > 0 {
		opts.ttl = time.Duration(o)
	}
}

// WithTTL sets the maximum age of a valid entry. Non-positive values keep the default.
func WithTTL(ttl time.Duration) ttlOption {
	return ttlOption(ttl)
}

type clockOption struct {
	clock clockwork.Clock
}

func (o clockOption) apply(opts *options) {
	opts.clock = o.clock
}

func WithClock(clock clockwork.Clock) clockOption {
	return clockOption{clock}
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

type keyGeneratorOption struct {
	keyGenerator key.KeyGenerator
}

func (o keyGeneratorOption) apply(opts *options) {
	opts.keyGenerator = o.keyGenerator
}

// WithKeyGenerator is only used by Engine.
func WithKeyGenerator(keyGenerator key.KeyGenerator) keyGeneratorOption {
	return keyGeneratorOption{keyGenerator}
}
