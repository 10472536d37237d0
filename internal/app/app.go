// Package app wires configuration into the ingestion and query components
// shared by the server and the CLI.
package app

import (
	"context"
	"fmt"

	"signal-sniper/internal/aggregate"
	"signal-sniper/internal/cache"
	"signal-sniper/internal/config"
	"signal-sniper/internal/ingest"
	"signal-sniper/internal/provider"
	"signal-sniper/internal/sentiment"
	"signal-sniper/internal/service"
	"signal-sniper/internal/ticker"
	"signal-sniper/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

type Components struct {
	Store    *aggregate.Store
	Ranker   *aggregate.Ranker
	Pipeline *ingest.Pipeline
	Query    *service.QueryService
	Redis    *redis.Client
}

var connectRedisFunc = cache.Connect

// Build validates cfg and constructs the pipeline and query service. A Redis
// connection failure disables the classification cache instead of failing.
func Build(ctx context.Context, cfg *config.Config, tracer trace.Tracer, log *logger.Logger) (*Components, error) {
	log = logger.OrDefault(log)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mode, err := ticker.ParseMatchMode(cfg.TickerMatchMode)
	if err != nil {
		return nil, err
	}

	classifier, err := sentiment.New(sentiment.Options{
		Backend:      sentiment.Backend(cfg.Classifier),
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		OpenAIModel:  cfg.OpenAIModel,
		HFAPIURL:     cfg.HFAPIURL,
		HFAPIToken:   cfg.HFAPIToken,
	})
	if err != nil {
		return nil, fmt.Errorf("build classifier: %w", err)
	}

	c := &Components{}
	if cfg.RedisURL != "" {
		client, err := connectRedisFunc(ctx, cfg.RedisURL)
		if err != nil {
			log.Warnw("redis unavailable, classification cache disabled", "error", err)
		} else if client != nil {
			c.Redis = client
			classifier = sentiment.NewCached(classifier, client, cfg.ClassifyCacheTTL(), cacheNamespace(cfg), log)
		}
	}

	reddit := provider.NewRedditProvider(tracer, provider.RedditConfig{
		ClientID:     cfg.RedditClientID,
		ClientSecret: cfg.RedditClientSecret,
		UserAgent:    cfg.RedditUserAgent,
		Limiter:      provider.NewPerMinuteLimiter(cfg.RedditRequestsPerMin),
	})
	rss := provider.NewRSSProvider(tracer, cfg.RedditUserAgent)
	collector := provider.NewRetrying(provider.NewRouter(reddit, rss), provider.RetryConfig{
		MaxAttempts: uint(cfg.SourceRetryAttempts),
	}, log)

	c.Store = aggregate.NewStore(cfg.HistoryLimit)
	c.Ranker = aggregate.NewRanker(c.Store)
	c.Pipeline = ingest.NewPipeline(tracer, collector, ticker.NewMatcher(mode), classifier, c.Store, ingest.Config{
		Tickers:              cfg.Tickers,
		Sources:              cfg.Sources,
		PostLimit:            cfg.PostLimit,
		CycleTimeout:         cfg.CycleTimeout(),
		SourceTimeout:        cfg.SourceTimeout(),
		MaxConcurrentSources: cfg.MaxConcurrentSrc,
	}, log)
	c.Query = service.NewQueryService(tracer, c.Store, c.Ranker, c.Pipeline)

	log.Infow("ingestion configured",
		"tickers", cfg.Tickers,
		"sources", cfg.Sources,
		"classifier", cfg.Classifier,
		"match_mode", string(mode),
		"history_limit", cfg.HistoryLimit,
		"cache", c.Redis != nil,
	)
	return c, nil
}

// Close releases the Redis connection, if any.
func (c *Components) Close() error {
	if c == nil || c.Redis == nil {
		return nil
	}
	return c.Redis.Close()
}

// cacheNamespace keeps entries from different backends or models apart.
func cacheNamespace(cfg *config.Config) string {
	switch cfg.Classifier {
	case "openai":
		return "openai:" + cfg.OpenAIModel
	case "huggingface":
		return "hf:" + cfg.HFAPIURL
	default:
		return cfg.Classifier
	}
}
