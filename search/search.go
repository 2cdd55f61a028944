// Package search runs a search function against a debounced query, keeping
// only the outcome of the latest search.
package search

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"

	"github.com/Arthur1/request-cache/debounce"
)

type SearchFunc[R any] func(ctx context.Context, query string) ([]R, error)

// State is a snapshot of a Searcher.
type State[R any] struct {
	// Query is the latest query passed to SetQuery, settled or not.
	Query string
	// Searched is the query Results and Err belong to. It is empty while
	// nothing has been searched or after the results were cleared.
	Searched string
	Results  []R
	Loading  bool
	Err      error
}

var (
	defaultDebounce       = 500 * time.Millisecond
	defaultMinQueryLength = 1
	defaultLogger         = slog.Default()
)

type Option interface {
	apply(opts *options)
}

var (
	_ Option = debounceOption(0)
	_ Option = minQueryLengthOption(0)
	_ Option = clockOption{}
	_ Option = loggerOption{}
)

type options struct {
	debounce       time.Duration
	minQueryLength int
	clock          clockwork.Clock
	logger         *slog.Logger
}

type debounceOption time.Duration

func (o debounceOption) apply(opts *options) {
	opts.debounce = time.Duration(o)
}

func WithDebounce(d time.Duration) debounceOption {
	return debounceOption(d)
}

type minQueryLengthOption int

func (o minQueryLengthOption) apply(opts *options) {
	opts.minQueryLength = int(o)
}

// WithMinQueryLength sets the number of characters below which a query
// clears the results instead of searching.
func WithMinQueryLength(n int) minQueryLengthOption {
	return minQueryLengthOption(n)
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

type loggerOption struct {
	logger *slog.Logger
}

func (o loggerOption) apply(opts *options) {
	opts.logger = o.logger
}

func WithLogger(logger *slog.Logger) loggerOption {
	return loggerOption{logger}
}

type Searcher[R any] struct {
	search         SearchFunc[R]
	minQueryLength int
	logger         *slog.Logger
	debouncer      *debounce.Debouncer[string]

	// ctx bounds every search started by the debouncer; Close cancels it.
	ctx  context.Context
	stop context.CancelFunc

	mu        sync.Mutex
	state     State[R]
	cancel    context.CancelFunc
	seq       uint64
	listeners []func(State[R])
}

func New[R any](fn SearchFunc[R], opts ...Option) *Searcher[R] {
	options := &options{
		debounce:       defaultDebounce,
		minQueryLength: defaultMinQueryLength,
		clock:          clockwork.NewRealClock(),
		logger:         defaultLogger,
	}
	for _, o := range opts {
		o.apply(options)
	}

	ctx, stop := context.WithCancel(context.Background())
	s := &Searcher[R]{
		search:         fn,
		minQueryLength: options.minQueryLength,
		logger:         options.logger,
		ctx:            ctx,
		stop:           stop,
	}
	s.debouncer = debounce.New("", options.debounce, func(q string) {
		s.Search(s.ctx, q)
	}, debounce.WithClock(options.clock))
	return s
}

// Subscribe registers fn to be called with a snapshot after every state change.
func (s *Searcher[R]) Subscribe(fn func(State[R])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// SetQuery records q and searches for it once it has been stable for the
// debounce period.
func (s *Searcher[R]) SetQuery(q string) {
	s.mu.Lock()
	s.state.Query = q
	s.mu.Unlock()

	s.debouncer.Update(q)
}

// Search runs the search immediately, cancelling the one in flight. The
// outcome of a search that has been superseded is discarded.
func (s *Searcher[R]) Search(ctx context.Context, query string) {
	s.mu.Lock()
	s.cancelLocked()
	s.seq++
	seq := s.seq

	if query == "" || utf8.RuneCountInString(query) < s.minQueryLength {
		s.state.Searched = ""
		s.state.Results = nil
		s.state.Loading = false
		s.state.Err = nil
		s.unlockAndNotify()
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state.Loading = true
	s.state.Err = nil
	s.unlockAndNotify()

	results, err := s.search(ctx, query)

	s.mu.Lock()
	cancel()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.cancel = nil
	s.state.Loading = false
	s.state.Searched = query
	if err != nil {
		s.logger.WarnContext(ctx, "search failed", slog.String("query", query), slog.Any("error", err))
		s.state.Results = nil
		s.state.Err = err
	} else {
		s.state.Results = results
	}
	s.unlockAndNotify()
}

func (s *Searcher[R]) State() State[R] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Clear drops the query, the results and any pending or running search.
func (s *Searcher[R]) Clear() {
	s.debouncer.Update("")

	s.mu.Lock()
	s.cancelLocked()
	s.seq++
	s.state = State[R]{}
	s.unlockAndNotify()
}

// Close stops the debouncer and cancels the running search.
func (s *Searcher[R]) Close() {
	s.debouncer.Close()
	s.stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

func (s *Searcher[R]) cancelLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Searcher[R]) snapshotLocked() State[R] {
	st := s.state
	st.Results = append([]R(nil), s.state.Results...)
	return st
}

// unlockAndNotify must be called with s.mu held; it releases it before
// calling the listeners.
func (s *Searcher[R]) unlockAndNotify() {
	st := s.snapshotLocked()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(st)
	}
}
