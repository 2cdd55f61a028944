package requestcache

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/Arthur1/request-cache/cache"
	"github.com/Arthur1/request-cache/cache/key"
)

// Fetcher issues HTTP requests through a cache engine. A response with a
// cacheable status is stored under the request signature and served from the
// cache until it expires or is invalidated. Concurrent calls with the same
// signature share one request to the origin.
type Fetcher struct {
	cacheEngine          cache.CacheEngine
	child                http.RoundTripper
	cacheableStatusCodes map[int]struct{}
	logger               *slog.Logger
	group                singleflight.Group
}

var (
	defaultChild  = http.DefaultTransport
	defaultLogger = slog.Default()
)

type options struct {
	child                http.RoundTripper
	cacheableStatusCodes map[int]struct{}
	logger               *slog.Logger
}

type Option interface {
	apply(opts *options)
}

var (
	_ Option = childOption{}
	_ Option = cacheableStatusCodesOption{}
	_ Option = loggerOption{}
)

type childOption struct {
	child http.RoundTripper
}

func (o childOption) apply(opts *options) {
	opts.child = o.child
}

func WithChild(child http.RoundTripper) childOption {
	return childOption{child}
}

type cacheableStatusCodesOption []int

func (o cacheableStatusCodesOption) apply(opts *options) {
	opts.cacheableStatusCodes = map[int]struct{}{}
	for _, statusCode := range o {
		opts.cacheableStatusCodes[statusCode] = struct{}{}
	}
}

// WithCacheableStatusCodes replaces the default rule that every 2xx
// response is cacheable.
func WithCacheableStatusCodes(statusCodes []int) cacheableStatusCodesOption {
	return cacheableStatusCodesOption(statusCodes)
}

type loggerOption struct {
	logger *slog.Logger
}

func (o loggerOption) apply(opts *options) {
	opts.logger = o.logger
}

func WithLogger(logger *slog.Logger) loggerOption {
	return loggerOption{logger}
}

func NewFetcher(cacheEngine cache.CacheEngine, opts ...Option) *Fetcher {
	options := &options{
		child:  defaultChild,
		logger: defaultLogger,
	}
	for _, o := range opts {
		o.apply(options)
	}

	return &Fetcher{
		cacheEngine:          cacheEngine,
		child:                options.child,
		cacheableStatusCodes: options.cacheableStatusCodes,
		logger:               options.logger,
	}
}

// RequestOptions describes the request sent to the origin. The zero value
// is a GET without headers or body. Only the URL and params passed to Fetch
// make up the cache key.
type RequestOptions struct {
	Method string
	Header http.Header
	Body   []byte
}

func (o *RequestOptions) newRequest(ctx context.Context, url string) (*http.Request, error) {
	method := http.MethodGet
	var (
		body   io.Reader
		header http.Header
	)
	if o != nil {
		if o.Method != "" {
			method = o.Method
		}
		if o.Body != nil {
			body = bytes.NewReader(o.Body)
		}
		header = o.Header
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

type requestFunc func(ctx context.Context) (*http.Request, error)

// Fetch returns the cached response for url and params if one is valid.
// Otherwise it joins the request already in flight for the same signature,
// or sends a new one. Transport errors are returned to every caller sharing
// the request; responses with a non-cacheable status are returned without
// error but are not stored.
//
// If ctx is done before the shared request settles, Fetch returns ctx.Err()
// and the request keeps running for the other callers.
func (f *Fetcher) Fetch(ctx context.Context, url string, reqOpts *RequestOptions, params key.Params) (*cache.Response, error) {
	k := f.cacheEngine.Key(url, params)
	return f.fetch(ctx, k, func(ctx context.Context) (*http.Request, error) {
		return reqOpts.newRequest(ctx, url)
	})
}

func (f *Fetcher) fetch(ctx context.Context, key string, newRequest requestFunc) (*cache.Response, error) {
	cachedRes, ok, err := f.cacheEngine.Get(ctx, key)
	if err != nil {
		f.logger.ErrorContext(ctx, "through request-cache because failed to get from cache", slog.String("key", key), slog.Any("error", err))
	} else if ok {
		// cache hit
		return cachedRes, nil
	}

	ch := f.group.DoChan(key, func() (any, error) {
		// the shared request must outlive any single caller
		ctx := context.WithoutCancel(ctx)
		req, err := newRequest(ctx)
		if err != nil {
			return nil, err
		}
		res, err := f.roundTrip(req)
		if err != nil {
			return nil, err
		}
		if f.isCacheable(res.StatusCode) {
			if err := f.cacheEngine.Set(ctx, key, res); err != nil {
				f.logger.ErrorContext(ctx, "through request-cache because failed to set to cache", slog.String("key", key), slog.Any("error", err))
			}
		}
		return res, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*cache.Response), nil
	}
}

// Do sends the request without consulting or populating the cache.
func (f *Fetcher) Do(ctx context.Context, url string, reqOpts *RequestOptions) (*cache.Response, error) {
	req, err := reqOpts.newRequest(ctx, url)
	if err != nil {
		return nil, err
	}
	return f.roundTrip(req)
}

// ClearCache removes every entry from the cache engine.
func (f *Fetcher) ClearCache(ctx context.Context) error {
	return f.cacheEngine.Clear(ctx)
}

// InvalidateCache removes the entry for url and params, so the next Fetch
// with that signature goes to the origin.
func (f *Fetcher) InvalidateCache(ctx context.Context, url string, params key.Params) error {
	return f.cacheEngine.Delete(ctx, f.cacheEngine.Key(url, params))
}

func (f *Fetcher) roundTrip(req *http.Request) (*cache.Response, error) {
	res, err := f.child.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return &cache.Response{
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       body,
	}, nil
}

func (f *Fetcher) isCacheable(statusCode int) bool {
	if f.cacheableStatusCodes == nil {
		return statusCode >= 200 && statusCode < 300
	}
	_, ok := f.cacheableStatusCodes[statusCode]
	return ok
}
