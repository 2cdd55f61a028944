package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Arthur1/request-cache/jobs"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) jobsHandler(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := jobs.Query{
		Search:     params.Get("query"),
		Location:   params.Get("location"),
		Categories: params["category"],
		JobTypes:   params["job_type"],
	}
	if limit := params.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		q.Limit = n
	}

	results, err := s.jobs.Search(r.Context(), q)
	if err != nil {
		var apiErr *jobs.APIError
		switch {
		case errors.As(err, &apiErr):
			s.writeJSON(w, r, apiErr.StatusCode, errorResponse{Error: fmt.Sprintf("API request failed: %d", apiErr.StatusCode)})
		case errors.Is(err, jobs.ErrOpenCircuit):
			s.writeJSON(w, r, http.StatusServiceUnavailable, errorResponse{Error: "Job search is temporarily unavailable."})
		default:
			s.logger.ErrorContext(r.Context(), "failed to search jobs", slog.Any("error", err))
			s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "Failed to fetch jobs."})
		}
		return
	}
	if results == nil {
		results = []jobs.Job{}
	}
	s.writeJSON(w, r, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": s.version,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to encode response", slog.Any("error", err))
	}
}

// responseWrapper captures the status code for the access log.
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)
		s.logger.InfoContext(r.Context(), "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", wrapper.statusCode),
			slog.Duration("duration", time.Since(start)))
	})
}
