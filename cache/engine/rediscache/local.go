package rediscache

import (
	"sync"
	"time"

	"github.com/go-redis/cache/v9"
)

// localTier is an in-process TinyLFU in front of redis. It only holds
// entries written through the engine, each for no longer than the engine
// TTL, and reset drops everything at once.
type localTier struct {
	size int
	ttl  time.Duration

	mu  sync.RWMutex
	lfu *cache.TinyLFU
}

func newLocalTier(size int, ttl time.Duration) *localTier {
	l := &localTier{size: size, ttl: ttl}
	l.reset()
	return l
}

func (l *localTier) get(key string) ([]byte, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lfu.Get(key)
}

func (l *localTier) set(key string, b []byte) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.lfu.Set(key, b)
}

func (l *localTier) del(key string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.lfu.Del(key)
}

func (l *localTier) reset() {
	lfu := cache.NewTinyLFU(l.size, l.ttl)
	// the randomized offset would keep entries past ttl
	lfu.UseRandomizedTTL(0)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.lfu = lfu
}
