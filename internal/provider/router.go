package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"signal-sniper/internal/domain"
)

// ErrInvalidSource marks a source id that no collector can serve. It is
// never retried.
var ErrInvalidSource = errors.New("invalid source id")

const (
	prefixReddit = "reddit:"
	prefixRSS    = "rss:"
)

// Router dispatches a source id to the backend it names: "rss:<url>" goes
// to the feed reader, "reddit:<sub>" or a bare name to Reddit.
type Router struct {
	reddit Collector
	rss    Collector
}

func NewRouter(reddit, rss Collector) *Router {
	return &Router{reddit: reddit, rss: rss}
}

func (r *Router) Collect(ctx context.Context, sourceID string, limit int) ([]domain.Post, error) {
	kind, target, err := ParseSourceID(sourceID)
	if err != nil {
		return nil, err
	}
	var backend Collector
	switch kind {
	case "rss":
		backend = r.rss
	default:
		backend = r.reddit
	}
	if backend == nil {
		return nil, fmt.Errorf("%w: no %s collector configured for %q", ErrInvalidSource, kind, sourceID)
	}

	posts, err := backend.Collect(ctx, target, limit)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Source = sourceLabel(kind, target)
	}
	return posts, nil
}

// ParseSourceID splits a configured source id into its kind and target.
func ParseSourceID(sourceID string) (kind string, target string, err error) {
	sourceID = strings.TrimSpace(sourceID)
	switch {
	case sourceID == "":
		return "", "", fmt.Errorf("%w: empty", ErrInvalidSource)
	case strings.HasPrefix(sourceID, prefixRSS):
		target = strings.TrimSpace(strings.TrimPrefix(sourceID, prefixRSS))
		kind = "rss"
	case strings.HasPrefix(sourceID, prefixReddit):
		target = strings.TrimSpace(strings.TrimPrefix(sourceID, prefixReddit))
		kind = "reddit"
	case strings.Contains(sourceID, ":"), strings.Contains(strings.TrimPrefix(sourceID, "r/"), "/"):
		return "", "", fmt.Errorf("%w: unrecognized %q", ErrInvalidSource, sourceID)
	default:
		target = strings.TrimPrefix(sourceID, "r/")
		kind = "reddit"
	}
	if target == "" {
		return "", "", fmt.Errorf("%w: %q has no target", ErrInvalidSource, sourceID)
	}
	return kind, target, nil
}

func sourceLabel(kind, target string) string {
	if kind == "reddit" {
		return target
	}
	return kind + ":" + target
}
