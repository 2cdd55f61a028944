package requestcache

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Arthur1/request-cache/cache/key"
)

// Transport is an http.RoundTripper that serves GET requests through a
// Fetcher. The cache key is the request URL without its query, plus the
// query parameters. Names and values are query-escaped and repeated values
// are joined with ",", so distinct queries never share a key. Other requests
// go straight to the fetcher's child transport.
type Transport struct {
	fetcher *Fetcher
}

func NewTransport(fetcher *Fetcher) http.RoundTripper {
	return &Transport{fetcher: fetcher}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || (req.Body != nil && req.Body != http.NoBody) {
		return t.fetcher.child.RoundTrip(req)
	}

	base := *req.URL
	base.RawQuery = ""
	base.Fragment = ""
	params := key.Params{}
	for name, values := range req.URL.Query() {
		escaped := make([]string, len(values))
		for i, v := range values {
			escaped[i] = url.QueryEscape(v)
		}
		params[url.QueryEscape(name)] = strings.Join(escaped, ",")
	}

	k := t.fetcher.cacheEngine.Key(base.String(), params)
	res, err := t.fetcher.fetch(req.Context(), k, func(ctx context.Context) (*http.Request, error) {
		return req.Clone(ctx), nil
	})
	if err != nil {
		return nil, err
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", res.StatusCode, http.StatusText(res.StatusCode)),
		StatusCode:    res.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        res.Header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(res.Body)),
		ContentLength: int64(len(res.Body)),
		Request:       req,
	}, nil
}
