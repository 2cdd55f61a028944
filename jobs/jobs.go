// Package jobs searches remote job listings through a cached fetcher.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	requestcache "github.com/Arthur1/request-cache"
)

const (
	DefaultBaseURL = "https://remotive.com/api/remote-jobs"
	DefaultLimit   = 20

	descriptionLength = 200
)

// Job is a listing reduced to the fields shown in search results.
type Job struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	URL         string `json:"url"`
	JobType     string `json:"job_type"`
}

// Query selects listings. Search, Limit and Categories are sent upstream;
// Location and JobTypes filter the upstream results locally, so queries
// differing only in those share a cache entry.
type Query struct {
	Search     string
	Location   string
	Limit      int
	Categories []string
	JobTypes   []string
}

type remotiveResponse struct {
	Jobs []remotiveJob `json:"jobs"`
}

type remotiveJob struct {
	Title                     string `json:"title"`
	CompanyName               string `json:"company_name"`
	CandidateRequiredLocation string `json:"candidate_required_location"`
	Description               string `json:"description"`
	URL                       string `json:"url"`
	JobType                   string `json:"job_type"`
}

// APIError is returned when the upstream API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("jobs api: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("jobs api: status %d", e.StatusCode)
}

type Client struct {
	fetcher *requestcache.Fetcher
	baseURL string
	logger  *slog.Logger
}

var defaultLogger = slog.Default()

type Option interface {
	apply(c *Client)
}

var (
	_ Option = baseURLOption("")
	_ Option = loggerOption{}
)

type baseURLOption string

func (o baseURLOption) apply(c *Client) {
	c.baseURL = string(o)
}

func WithBaseURL(baseURL string) baseURLOption {
	return baseURLOption(baseURL)
}

type loggerOption struct {
	logger *slog.Logger
}

func (o loggerOption) apply(c *Client) {
	c.logger = o.logger
}

func WithLogger(logger *slog.Logger) loggerOption {
	return loggerOption{logger}
}

func NewClient(fetcher *requestcache.Fetcher, opts ...Option) *Client {
	c := &Client{
		fetcher: fetcher,
		baseURL: DefaultBaseURL,
		logger:  defaultLogger,
	}
	for _, o := range opts {
		o.apply(c)
	}
	return c
}

// Search fetches listings matching q.Search and applies the local filters.
func (c *Client) Search(ctx context.Context, q Query) ([]Job, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	v := url.Values{}
	v.Set("search", q.Search)
	v.Set("limit", strconv.Itoa(limit))
	for _, category := range q.Categories {
		v.Add("category", category)
	}
	// Encode sorts by name, so the URL alone is a stable cache key.
	reqURL := c.baseURL + "?" + v.Encode()

	res, err := c.fetcher.Fetch(ctx, reqURL, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch jobs: %w", err)
	}
	if !res.OK() {
		c.logger.WarnContext(ctx, "jobs api returned an error status", slog.Int("status", res.StatusCode), slog.String("url", reqURL))
		return nil, newAPIError(res.StatusCode, res.Body)
	}

	var body remotiveResponse
	if err := res.JSON(&body); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}

	jobs := make([]Job, 0, len(body.Jobs))
	for _, rj := range filterByLocation(body.Jobs, q.Location) {
		jobs = append(jobs, Job{
			Title:       rj.Title,
			Company:     rj.CompanyName,
			Location:    rj.CandidateRequiredLocation,
			Description: Summarize(rj.Description, descriptionLength),
			URL:         rj.URL,
			JobType:     rj.JobType,
		})
	}
	jobs = filterByJobType(jobs, q.JobTypes)
	c.logger.DebugContext(ctx, "jobs fetched", slog.Int("upstream", len(body.Jobs)), slog.Int("results", len(jobs)))
	return jobs, nil
}

func newAPIError(statusCode int, body []byte) *APIError {
	e := &APIError{StatusCode: statusCode}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		e.Message = payload.Error
	}
	return e
}

func filterByLocation(jobs []remotiveJob, location string) []remotiveJob {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return jobs
	}
	filtered := jobs[:0:0]
	for _, j := range jobs {
		if j.CandidateRequiredLocation != "" && strings.Contains(strings.ToLower(j.CandidateRequiredLocation), loc) {
			filtered = append(filtered, j)
		}
	}
	return filtered
}

func filterByJobType(jobs []Job, jobTypes []string) []Job {
	if len(jobTypes) == 0 {
		return jobs
	}
	allowed := make(map[string]struct{}, len(jobTypes))
	for _, t := range jobTypes {
		allowed[strings.ToLower(t)] = struct{}{}
	}
	filtered := jobs[:0]
	for _, j := range jobs {
		if _, ok := allowed[strings.ToLower(j.JobType)]; ok {
			filtered = append(filtered, j)
		}
	}
	return filtered
}
