package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"signal-sniper/internal/domain"
)

// Collector retrieves at most limit recent posts from one source.
type Collector interface {
	Collect(ctx context.Context, sourceID string, limit int) ([]domain.Post, error)
}

// CollectorFunc adapts a function to Collector.
type CollectorFunc func(ctx context.Context, sourceID string, limit int) ([]domain.Post, error)

func (f CollectorFunc) Collect(ctx context.Context, sourceID string, limit int) ([]domain.Post, error) {
	return f(ctx, sourceID, limit)
}

// StatusError is returned for non-200 upstream responses.
type StatusError struct {
	Source     string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Source, e.StatusCode, e.Body)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func isTemporary(err error) bool {
	if errors.Is(err, ErrInvalidSource) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return true
}
