package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Arthur1/request-cache/internal/config"
	"github.com/Arthur1/request-cache/jobs"
)

const shutdownTimeout = 10 * time.Second

// Server exposes the job search over HTTP.
type Server struct {
	jobs     *jobs.Client
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	version  string
}

type options struct {
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	version  string
}

type Option interface {
	apply(opts *options)
}

var (
	_ Option = gathererOption{}
	_ Option = loggerOption{}
	_ Option = versionOption("")
)

type gathererOption struct {
	gatherer prometheus.Gatherer
}

func (o gathererOption) apply(opts *options) {
	opts.gatherer = o.gatherer
}

// WithGatherer sets the registry served on /metrics.
func WithGatherer(gatherer prometheus.Gatherer) gathererOption {
	return gathererOption{gatherer}
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

type versionOption string

func (o versionOption) apply(opts *options) {
	opts.version = string(o)
}

func WithVersion(version string) versionOption {
	return versionOption(version)
}

func New(client *jobs.Client, opts ...Option) *Server {
	options := &options{
		gatherer: prometheus.DefaultGatherer,
		logger:   slog.Default(),
		version:  "dev",
	}
	for _, o := range opts {
		o.apply(options)
	}
	return &Server{
		jobs:     client,
		gatherer: options.gatherer,
		logger:   options.logger,
		version:  options.version,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/jobs", s.jobsHandler)
	mux.HandleFunc("GET /healthz", s.healthHandler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return otelhttp.NewHandler(s.loggingMiddleware(mux), "jobsearch",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, cfg config.ServerConfig) error {
	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.String("addr", httpServer.Addr), slog.String("version", s.version))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
