package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"signal-sniper/internal/aggregate"
	"signal-sniper/internal/domain"
	"signal-sniper/internal/metrics"
	"signal-sniper/internal/provider"
	"signal-sniper/internal/sentiment"
	"signal-sniper/internal/ticker"
	"signal-sniper/pkg/logger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Tickers              []string
	Sources              []string
	PostLimit            int
	CycleTimeout         time.Duration
	SourceTimeout        time.Duration
	MaxConcurrentSources int
}

// Pipeline runs refresh cycles: collect, match, classify, append.
type Pipeline struct {
	tracer     trace.Tracer
	collector  provider.Collector
	matcher    *ticker.Matcher
	classifier sentiment.Classifier
	store      *aggregate.Store
	cfg        Config
	log        *logger.Logger
	now        func() time.Time

	cycleMu sync.Mutex

	statusMu sync.RWMutex
	status   domain.IngestStatus
}

func NewPipeline(
	tracer trace.Tracer,
	collector provider.Collector,
	matcher *ticker.Matcher,
	classifier sentiment.Classifier,
	store *aggregate.Store,
	cfg Config,
	log *logger.Logger,
) *Pipeline {
	if matcher == nil {
		matcher = ticker.NewMatcher(ticker.ModeSubstring)
	}
	if classifier == nil {
		classifier = sentiment.NewHeuristic()
	}
	if cfg.PostLimit <= 0 {
		cfg.PostLimit = 100
	}
	if cfg.CycleTimeout <= 0 {
		cfg.CycleTimeout = 5 * time.Minute
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = time.Minute
	}
	if cfg.MaxConcurrentSources <= 0 {
		cfg.MaxConcurrentSources = 4
	}
	tickers := make([]string, 0, len(cfg.Tickers))
	for _, t := range cfg.Tickers {
		if c := domain.CanonicalTicker(t); c != "" {
			tickers = append(tickers, c)
		}
	}
	cfg.Tickers = dedupe(tickers)

	sources := make([]string, 0, len(cfg.Sources))
	for _, s := range cfg.Sources {
		if s = strings.TrimSpace(s); s != "" {
			sources = append(sources, s)
		}
	}
	cfg.Sources = dedupe(sources)

	return &Pipeline{
		tracer:     tracer,
		collector:  collector,
		matcher:    matcher,
		classifier: classifier,
		store:      store,
		cfg:        cfg,
		log:        logger.OrDefault(log).With("component", "ingest"),
		now:        time.Now,
	}
}

// dedupe keeps the first occurrence of each value.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

type collected struct {
	posts []domain.Post
	err   error
}

// RunCycle executes one refresh cycle. Concurrent calls serialize on the
// cycle mutex. Per-source and per-entry failures are recorded in the
// result; the returned error is non-nil only when the cycle could not do
// any useful work (no dependencies, every source failed, or the deadline
// expired).
func (p *Pipeline) RunCycle(ctx context.Context) (domain.CycleResult, error) {
	p.cycleMu.Lock()
	defer p.cycleMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, p.cfg.CycleTimeout)
	defer cancel()

	ctx, span := p.tracer.Start(ctx, "ingest.run-cycle")
	defer span.End()

	result := domain.CycleResult{StartedAt: p.now().UTC(), Sources: len(p.cfg.Sources)}
	if p.collector == nil || p.store == nil {
		err := fmt.Errorf("ingest pipeline dependencies are not initialized")
		return p.finish(span, result, err)
	}

	batches := p.collectAll(ctx)

	var cycleErr error
process:
	for i, source := range p.cfg.Sources {
		batch := batches[i]
		if batch.err != nil {
			result.SourcesFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", source, batch.err))
			continue
		}
		for _, post := range batch.posts {
			if err := ctx.Err(); err != nil {
				cycleErr = fmt.Errorf("cycle: %w", err)
				break process
			}
			result.PostsScanned++
			p.processPost(ctx, source, post, &result)
		}
	}

	if cycleErr == nil && ctx.Err() != nil && result.PostsScanned == 0 {
		cycleErr = fmt.Errorf("cycle: %w", ctx.Err())
	}
	if cycleErr != nil {
		result.Errors = append(result.Errors, cycleErr.Error())
	} else if len(p.cfg.Sources) > 0 && result.SourcesFailed == len(p.cfg.Sources) {
		cycleErr = fmt.Errorf("all %d sources failed: %w", result.SourcesFailed, domain.ErrSourceUnavailable)
	}

	return p.finish(span, result, cycleErr)
}

// collectAll fetches every configured source concurrently. The returned
// slice is indexed like cfg.Sources.
func (p *Pipeline) collectAll(ctx context.Context) []collected {
	out := make([]collected, len(p.cfg.Sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxConcurrentSources)
	for i, source := range p.cfg.Sources {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(gctx, p.cfg.SourceTimeout)
			defer cancel()

			started := time.Now()
			posts, err := p.collector.Collect(sctx, source, p.cfg.PostLimit)
			metrics.RecordSourceFetch(source, time.Since(started), len(posts), err)
			if err != nil {
				err = fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
				p.log.Warnw("source collection failed", "source", source, "error", err)
				out[i] = collected{err: err}
				return nil
			}
			if len(posts) > p.cfg.PostLimit {
				posts = posts[:p.cfg.PostLimit]
			}
			p.log.Debugw("source collected", "source", source, "posts", len(posts))
			out[i] = collected{posts: posts}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (p *Pipeline) processPost(ctx context.Context, source string, post domain.Post, result *domain.CycleResult) {
	text := ticker.PostText(post.Title, post.Body)
	for _, symbol := range p.cfg.Tickers {
		if !p.matcher.Matches(text, symbol) {
			continue
		}
		result.Matches++

		res, err := p.classify(ctx, text)
		if err != nil {
			result.ClassifyFailures++
			result.Errors = append(result.Errors, fmt.Sprintf("%s/%s: %v", symbol, post.ID, err))
			metrics.RecordClassifyFailure()
			p.log.Warnw("classification failed", "ticker", symbol, "post", post.ID, "error", err)
			continue
		}

		p.store.Append(symbol, domain.SentimentEntry{
			Ticker:     symbol,
			Label:      res.Label,
			Score:      res.Score,
			ObservedAt: p.now().UTC(),
			Subreddit:  source,
			Excerpt:    domain.Excerpt(ticker.Normalize(post.Title)),
		})
		result.EntriesAdded++
		metrics.RecordEntry(symbol, res.Label)
	}
}

func (p *Pipeline) classify(ctx context.Context, text string) (res sentiment.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", domain.ErrClassification, r)
		}
	}()

	res, err = p.classifier.Classify(ctx, text)
	if err != nil {
		if errors.Is(err, domain.ErrClassification) {
			return sentiment.Result{}, err
		}
		return sentiment.Result{}, fmt.Errorf("%w: %v", domain.ErrClassification, err)
	}
	res.Label = sentiment.NormalizeLabel(res.Label)
	if res.Score < 0 {
		res.Score = 0
	} else if res.Score > 1 {
		res.Score = 1
	}
	return res, nil
}

func (p *Pipeline) finish(span trace.Span, result domain.CycleResult, err error) (domain.CycleResult, error) {
	result.FinishedAt = p.now().UTC()
	total := 0
	if p.store != nil {
		total = p.store.Len()
	}

	span.SetAttributes(
		attribute.Int("ingest.sources", result.Sources),
		attribute.Int("ingest.sources_failed", result.SourcesFailed),
		attribute.Int("ingest.posts", result.PostsScanned),
		attribute.Int("ingest.entries", result.EntriesAdded),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	metrics.RecordCycle(result.FinishedAt.Sub(result.StartedAt), result.FinishedAt, total, err)

	p.statusMu.Lock()
	p.status.Cycles++
	last := result
	last.Errors = append([]string(nil), result.Errors...)
	p.status.LastCycle = &last
	p.status.LastError = ""
	if err != nil {
		p.status.LastError = err.Error()
	}
	p.status.TotalItems = total
	p.statusMu.Unlock()

	if err != nil {
		p.log.Errorw("refresh cycle failed", "error", err, "sources_failed", result.SourcesFailed)
	} else {
		p.log.Infow("refresh cycle complete",
			"sources", result.Sources,
			"sources_failed", result.SourcesFailed,
			"posts", result.PostsScanned,
			"matches", result.Matches,
			"entries", result.EntriesAdded,
			"warnings", len(result.Errors),
		)
	}
	return result, err
}

// Status returns a snapshot of the most recent cycle.
func (p *Pipeline) Status() domain.IngestStatus {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()

	status := p.status
	if status.LastCycle != nil {
		last := *status.LastCycle
		last.Errors = append([]string(nil), last.Errors...)
		status.LastCycle = &last
	}
	return status
}

// Tickers returns the canonical configured ticker list.
func (p *Pipeline) Tickers() []string {
	return append([]string(nil), p.cfg.Tickers...)
}

// Sources returns the configured source ids.
func (p *Pipeline) Sources() []string {
	return append([]string(nil), p.cfg.Sources...)
}

func (c Config) String() string {
	return fmt.Sprintf("tickers=%s sources=%s limit=%d", strings.Join(c.Tickers, ","), strings.Join(c.Sources, ","), c.PostLimit)
}
