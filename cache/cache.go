package cache

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Arthur1/request-cache/cache/key"
)

//go:generate mockgen -source=cache.go -destination=mock/cache.go -package=mock_cache

type CacheEngine interface {
	Key(url string, params key.Params) string
	Get(ctx context.Context, key string) (res *Response, ok bool, err error)
	Set(ctx context.Context, key string, res *Response) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Response is the cached form of an origin response. A cached *Response is
// shared between callers and must be treated as read-only.
type Response struct {
	StatusCode int         `msgpack:"status_code"`
	Header     http.Header `msgpack:"header"`
	Body       []byte      `msgpack:"body"`
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}
