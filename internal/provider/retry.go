package provider

import (
	"context"
	"time"

	"signal-sniper/internal/domain"
	"signal-sniper/pkg/logger"

	"github.com/cenkalti/backoff/v5"
)

type RetryConfig struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Retrying retries transient collection failures with exponential backoff.
// Permanent upstream errors (4xx other than 429) return immediately.
type Retrying struct {
	next Collector
	cfg  RetryConfig
	log  *logger.Logger
}

func NewRetrying(next Collector, cfg RetryConfig, log *logger.Logger) *Retrying {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 10 * time.Second
	}
	return &Retrying{next: next, cfg: cfg, log: logger.OrDefault(log).With("component", "collector-retry")}
}

func (r *Retrying) Collect(ctx context.Context, sourceID string, limit int) ([]domain.Post, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialInterval
	b.MaxInterval = r.cfg.MaxInterval

	attempt := 0
	operation := func() ([]domain.Post, error) {
		attempt++
		posts, err := r.next.Collect(ctx, sourceID, limit)
		if err == nil {
			return posts, nil
		}
		if ctx.Err() != nil || !isTemporary(err) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(r.cfg.MaxAttempts),
		backoff.WithNotify(func(err error, wait time.Duration) {
			r.log.Warnw("source collection failed, retrying",
				"source", sourceID,
				"attempt", attempt,
				"wait", wait,
				"error", err,
			)
		}),
	)
}
