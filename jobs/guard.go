package jobs

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// ErrOpenCircuit is returned while the breaker rejects requests to the
// upstream API.
var ErrOpenCircuit = gobreaker.ErrOpenState

var errServerError = errors.New("upstream server error")

type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

// NewBreaker trips once at least MinRequests were seen in the current
// interval and the failure ratio reaches FailureThreshold.
func NewBreaker(name string, cfg BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[*http.Response] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests &&
				failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}
	return gobreaker.NewCircuitBreaker[*http.Response](settings)
}

// GuardedTransport throttles outbound requests and stops sending them while
// the upstream keeps failing. A 5xx response counts as a failure for the
// breaker but is still handed back to the caller.
type GuardedTransport struct {
	child   http.RoundTripper
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// NewGuardedTransport returns a transport over child. A nil limiter or
// breaker disables that guard.
func NewGuardedTransport(child http.RoundTripper, limiter *rate.Limiter, breaker *gobreaker.CircuitBreaker[*http.Response]) *GuardedTransport {
	if child == nil {
		child = http.DefaultTransport
	}
	return &GuardedTransport{
		child:   child,
		limiter: limiter,
		breaker: breaker,
	}
}

func (t *GuardedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}
	if t.breaker == nil {
		return t.child.RoundTrip(req)
	}

	res, err := t.breaker.Execute(func() (*http.Response, error) {
		res, err := t.child.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if res.StatusCode >= http.StatusInternalServerError {
			return res, errServerError
		}
		return res, nil
	})
	if errors.Is(err, errServerError) {
		return res, nil
	}
	return res, err
}
