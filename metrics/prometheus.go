package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "requestcache"

// Prometheus counts cache events, labelled by cache name.
type Prometheus struct {
	hits        prometheus.Counter
	misses      prometheus.Counter
	evictions   prometheus.Counter
	expirations prometheus.Counter
}

var _ Metrics = (*Prometheus)(nil)

type collectors struct {
	hits        *prometheus.CounterVec
	misses      *prometheus.CounterVec
	evictions   *prometheus.CounterVec
	expirations *prometheus.CounterVec
}

func newCollectors() *collectors {
	counter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, []string{"cache"})
	}
	return &collectors{
		hits:        counter("hits_total", "Number of cache lookups served from the cache."),
		misses:      counter("misses_total", "Number of cache lookups that found no valid entry."),
		evictions:   counter("evictions_total", "Number of entries evicted to respect the size bound."),
		expirations: counter("expirations_total", "Number of entries dropped after their TTL elapsed."),
	}
}

// NewPrometheus registers the cache counters on reg and returns the recorder
// for the cache called name. Registering the same collectors twice on one
// registry reuses the already registered ones.
func NewPrometheus(reg prometheus.Registerer, name string) (*Prometheus, error) {
	c := newCollectors()
	vecs := []**prometheus.CounterVec{&c.hits, &c.misses, &c.evictions, &c.expirations}
	for _, vec := range vecs {
		if err := reg.Register(*vec); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			*vec = are.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	return &Prometheus{
		hits:        c.hits.WithLabelValues(name),
		misses:      c.misses.WithLabelValues(name),
		evictions:   c.evictions.WithLabelValues(name),
		expirations: c.expirations.WithLabelValues(name),
	}, nil
}

func (p *Prometheus) Hit()      { p.hits.Inc() }
func (p *Prometheus) Miss()     { p.misses.Inc() }
func (p *Prometheus) Eviction() { p.evictions.Inc() }
func (p *Prometheus) Expire()   { p.expirations.Inc() }
