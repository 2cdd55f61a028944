package memorycache

import (
	"context"

	"github.com/Arthur1/request-cache/cache"
	"github.com/Arthur1/request-cache/cache/key"
)

type CacheEngine struct {
	store        *Store[*cache.Response]
	keyGenerator key.KeyGenerator
}

var _ cache.CacheEngine = (*CacheEngine)(nil)

func NewEngine(opts ...Option) *CacheEngine {
	options := newOptions(opts)
	return &CacheEngine{
		store:        newStore[*cache.Response](options),
		keyGenerator: options.keyGenerator,
	}
}

func (e *CacheEngine) Key(url string, params key.Params) string {
	return e.keyGenerator.Key(url, params)
}

func (e *CacheEngine) Get(_ context.Context, key string) (*cache.Response, bool, error) {
	res, ok := e.store.Get(key)
	return res, ok, nil
}

func (e *CacheEngine) Set(_ context.Context, key string, res *cache.Response) error {
	e.store.Set(key, res)
	return nil
}

func (e *CacheEngine) Delete(_ context.Context, key string) error {
	e.store.Delete(key)
	return nil
}

func (e *CacheEngine) Clear(_ context.Context) error {
	e.store.Clear()
	return nil
}

func (e *CacheEngine) Len() int {
	return e.store.Len()
}
