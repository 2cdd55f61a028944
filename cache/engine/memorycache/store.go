// Package memorycache is an in-process cache engine: a size-bounded,
// TTL-expiring map that evicts the least recently used entry first.
package memorycache

import (
	"container/list"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Arthur1/request-cache/metrics"
)

type entry[V any] struct {
	key        string
	value      V
	insertedAt time.Time
}

// Store holds at most maxSize entries. An entry is valid while its age is
// below ttl; expired entries are removed lazily when they are looked up.
// Store is safe for concurrent use.
type Store[V any] struct {
	mu sync.Mutex
	// front is the least recently used entry.
	order   *list.List
	items   map[string]*list.Element
	maxSize int
	ttl     time.Duration
	clock   clockwork.Clock
	metrics metrics.Metrics
}

func New[V any](opts ...Option) *Store[V] {
	return newStore[V](newOptions(opts))
}

func newStore[V any](options *options) *Store[V] {
	return &Store[V]{
		order:   list.New(),
		items:   make(map[string]*list.Element, options.maxSize),
		maxSize: options.maxSize,
		ttl:     options.ttl,
		clock:   options.clock,
		metrics: options.metrics,
	}
}

// Get returns the value stored under key if it has not expired, and marks
// it as the most recently used entry.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	el, ok := s.lookup(key)
	if !ok {
		s.metrics.Miss()
		return zero, false
	}
	s.order.MoveToBack(el)
	s.metrics.Hit()
	return el.Value.(*entry[V]).value, true
}

// Has reports whether a valid entry exists for key without touching its
// recency. An expired entry is removed.
func (s *Store[V]) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.lookup(key)
	return ok
}

// Set stores value under key with the current time. Inserting a new key
// into a full store evicts the least recently used entry first.
func (s *Store[V]) Set(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if el, ok := s.items[key]; ok {
		ent := el.Value.(*entry[V])
		ent.value = value
		ent.insertedAt = now
		s.order.MoveToBack(el)
		return
	}

	if len(s.items) >= s.maxSize {
		if oldest := s.order.Front(); oldest != nil {
			s.remove(oldest)
			s.metrics.Eviction()
		}
	}
	s.items[key] = s.order.PushBack(&entry[V]{
		key:        key,
		value:      value,
		insertedAt: now,
	})
}

// Delete removes key and reports whether it was present.
func (s *Store[V]) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[key]
	if !ok {
		return false
	}
	s.remove(el)
	return true
}

func (s *Store[V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order.Init()
	clear(s.items)
}

// Len counts stored entries, including expired ones not yet removed.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

// lookup must be called with s.mu held.
func (s *Store[V]) lookup(key string) (*list.Element, bool) {
	el, ok := s.items[key]
	if !ok {
		return nil, false
	}
	if s.clock.Now().Sub(el.Value.(*entry[V]).insertedAt) >= s.ttl {
		s.remove(el)
		s.metrics.Expire()
		return nil, false
	}
	return el, true
}

func (s *Store[V]) remove(el *list.Element) {
	s.order.Remove(el)
	delete(s.items, el.Value.(*entry[V]).key)
}
