package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	requestcache "github.com/Arthur1/request-cache"
)

var ErrAlreadySaved = errors.New("job already saved")

type SavedJob struct {
	ID           string            `json:"id"`
	Job          Job               `json:"job_data"`
	SearchParams map[string]string `json:"search_params,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// SavedJobs talks to a saved-jobs endpoint. The list is served through the
// cache; Save and Remove bypass it and invalidate the cached list.
type SavedJobs struct {
	fetcher  *requestcache.Fetcher
	endpoint string
}

func NewSavedJobs(fetcher *requestcache.Fetcher, endpoint string) *SavedJobs {
	return &SavedJobs{
		fetcher:  fetcher,
		endpoint: endpoint,
	}
}

func (s *SavedJobs) List(ctx context.Context) ([]SavedJob, error) {
	res, err := s.fetcher.Fetch(ctx, s.endpoint, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch saved jobs: %w", err)
	}
	if !res.OK() {
		return nil, newAPIError(res.StatusCode, res.Body)
	}
	var body struct {
		Data []SavedJob `json:"data"`
	}
	if err := res.JSON(&body); err != nil {
		return nil, fmt.Errorf("decode saved jobs: %w", err)
	}
	return body.Data, nil
}

func (s *SavedJobs) Save(ctx context.Context, job Job, searchParams map[string]string) error {
	payload, err := json.Marshal(struct {
		Job          Job               `json:"job_data"`
		SearchParams map[string]string `json:"search_params,omitempty"`
	}{job, searchParams})
	if err != nil {
		return err
	}
	res, err := s.fetcher.Do(ctx, s.endpoint, &requestcache.RequestOptions{
		Method: http.MethodPost,
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   payload,
	})
	if err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	if res.StatusCode == http.StatusConflict {
		return ErrAlreadySaved
	}
	if !res.OK() {
		return newAPIError(res.StatusCode, res.Body)
	}
	return s.invalidate(ctx)
}

func (s *SavedJobs) Remove(ctx context.Context, jobURL string) error {
	payload, err := json.Marshal(struct {
		JobURL string `json:"jobUrl"`
	}{jobURL})
	if err != nil {
		return err
	}
	res, err := s.fetcher.Do(ctx, s.endpoint, &requestcache.RequestOptions{
		Method: http.MethodDelete,
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   payload,
	})
	if err != nil {
		return fmt.Errorf("remove job: %w", err)
	}
	if !res.OK() {
		return newAPIError(res.StatusCode, res.Body)
	}
	return s.invalidate(ctx)
}

func (s *SavedJobs) invalidate(ctx context.Context) error {
	if err := s.fetcher.InvalidateCache(ctx, s.endpoint, nil); err != nil {
		return fmt.Errorf("invalidate saved jobs: %w", err)
	}
	return nil
}
