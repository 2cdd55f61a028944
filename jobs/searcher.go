package jobs

import (
	"context"
	"time"

	"github.com/Arthur1/request-cache/search"
)

const (
	searchDebounce       = 800 * time.Millisecond
	searchMinQueryLength = 2
)

// NewSearcher returns a debounced searcher that runs template with its
// Search field replaced by the settled query. Options given here override
// the defaults of 800ms and a minimum query length of 2.
func NewSearcher(client *Client, template Query, opts ...search.Option) *search.Searcher[Job] {
	fn := func(ctx context.Context, q string) ([]Job, error) {
		query := template
		query.Search = q
		return client.Search(ctx, query)
	}
	opts = append([]search.Option{
		search.WithDebounce(searchDebounce),
		search.WithMinQueryLength(searchMinQueryLength),
	}, opts...)
	return search.New(fn, opts...)
}
