package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"signal-sniper/internal/aggregate"
	"signal-sniper/internal/domain"
	"signal-sniper/internal/provider"
	"signal-sniper/internal/sentiment"
	"signal-sniper/internal/ticker"
	"signal-sniper/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func noopTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("test")
}

func staticCollector(bySource map[string][]domain.Post, failing map[string]error) provider.Collector {
	return provider.CollectorFunc(func(ctx context.Context, sourceID string, limit int) ([]domain.Post, error) {
		if err, ok := failing[sourceID]; ok {
			return nil, err
		}
		return append([]domain.Post(nil), bySource[sourceID]...), nil
	})
}

func fixedClassifier(label string, score float64) sentiment.Classifier {
	return sentiment.ClassifierFunc(func(ctx context.Context, text string) (sentiment.Result, error) {
		return sentiment.Result{Label: label, Score: score}, nil
	})
}

func newTestPipeline(collector provider.Collector, classifier sentiment.Classifier, store *aggregate.Store, cfg Config) *Pipeline {
	p := NewPipeline(noopTracer(), collector, ticker.NewMatcher(ticker.ModeSubstring), classifier, store, cfg, logger.NewNop())
	return p
}

func TestRunCycleCashtagScenario(t *testing.T) {
	store := aggregate.NewStore(0)
	collector := staticCollector(map[string][]domain.Post{
		"wallstreetbets": {{ID: "p1", Title: "$GME to the moon", Body: ""}},
	}, nil)
	p := newTestPipeline(collector, fixedClassifier("POSITIVE", 0.97), store, Config{
		Tickers: []string{"GME"},
		Sources: []string{"wallstreetbets"},
	})
	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("EST", -5*3600))
	p.now = func() time.Time { return fixed }

	result, err := p.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.EntriesAdded)
	assert.Empty(t, result.Errors)

	entries := store.Get("GME")
	require.Len(t, entries, 1)
	assert.Equal(t, domain.SentimentEntry{
		Ticker:     "GME",
		Label:      domain.LabelPositive,
		Score:      0.97,
		ObservedAt: fixed.UTC(),
		Subreddit:  "wallstreetbets",
		Excerpt:    "$GME to the moon",
	}, entries[0])
}

func TestRunCycleTrendingOrder(t *testing.T) {
	var posts []domain.Post
	for i := 0; i < 5; i++ {
		posts = append(posts, domain.Post{ID: fmt.Sprintf("g%d", i), Title: "GME squeeze"})
	}
	for i := 0; i < 3; i++ {
		posts = append(posts, domain.Post{ID: fmt.Sprintf("a%d", i), Title: "$amc holding"})
	}
	posts = append(posts, domain.Post{ID: "none", Title: "index funds only"})

	store := aggregate.NewStore(0)
	p := newTestPipeline(staticCollector(map[string][]domain.Post{"stocks": posts}, nil),
		fixedClassifier("NEUTRAL", 0.5), store, Config{
			Tickers: []string{"AMC", "GME", "TSLA"},
			Sources: []string{"stocks"},
		})

	result, err := p.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, result.PostsScanned)
	assert.Equal(t, 8, result.Matches)

	top := aggregate.NewRanker(store).Top(10)
	assert.Equal(t, []domain.TickerMention{{Ticker: "GME", Mentions: 5}, {Ticker: "AMC", Mentions: 3}}, top)
}

func TestRunCycleMultipleTickersPerPost(t *testing.T) {
	store := aggregate.NewStore(0)
	p := newTestPipeline(staticCollector(map[string][]domain.Post{
		"wallstreetbets": {{ID: "p1", Title: "GME and TSLA", Body: "both\nup"}},
	}, nil), fixedClassifier("bullish", 0.8), store, Config{
		Tickers: []string{"gme", "$tsla", "NVDA"},
		Sources: []string{"wallstreetbets"},
	})

	result, err := p.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.EntriesAdded)
	assert.Len(t, store.Get("GME"), 1)
	assert.Len(t, store.Get("TSLA"), 1)
	assert.Equal(t, domain.LabelPositive, store.Get("TSLA")[0].Label)
	assert.Empty(t, store.Get("NVDA"))
}

func TestRunCycleIsolatesFailingSource(t *testing.T) {
	store := aggregate.NewStore(0)
	collector := staticCollector(
		map[string][]domain.Post{"stocks": {{ID: "p1", Title: "TSLA earnings"}}},
		map[string]error{"wallstreetbets": errors.New("503 service unavailable")},
	)
	p := newTestPipeline(collector, fixedClassifier("POSITIVE", 0.9), store, Config{
		Tickers: []string{"TSLA"},
		Sources: []string{"wallstreetbets", "stocks"},
	})

	result, err := p.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.SourcesFailed)
	require.Len(t, result.Errors, 1)
	assert.True(t, strings.HasPrefix(result.Errors[0], "wallstreetbets:"))
	assert.Contains(t, result.Errors[0], domain.ErrSourceUnavailable.Error())

	entries := store.Get("TSLA")
	require.Len(t, entries, 1)
	assert.Equal(t, "stocks", entries[0].Subreddit)
}

func TestRunCycleAllSourcesFailing(t *testing.T) {
	store := aggregate.NewStore(0)
	collector := staticCollector(nil, map[string]error{
		"a": errors.New("down"),
		"b": errors.New("down"),
	})
	p := newTestPipeline(collector, fixedClassifier("POSITIVE", 0.9), store, Config{
		Tickers: []string{"TSLA"},
		Sources: []string{"a", "b"},
	})

	result, err := p.RunCycle(context.Background())
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.Equal(t, 2, result.SourcesFailed)
	assert.Equal(t, 0, store.Len())
	assert.NotEmpty(t, p.Status().LastError)
}

func TestRunCycleSkipsClassifierFailures(t *testing.T) {
	store := aggregate.NewStore(0)
	calls := 0
	classifier := sentiment.ClassifierFunc(func(ctx context.Context, text string) (sentiment.Result, error) {
		calls++
		switch calls {
		case 2:
			return sentiment.Result{}, errors.New("model overloaded")
		case 3:
			panic("nil model")
		}
		return sentiment.Result{Label: "NEGATIVE", Score: 0.7}, nil
	})
	p := newTestPipeline(staticCollector(map[string][]domain.Post{
		"stocks": {
			{ID: "1", Title: "AAPL one"},
			{ID: "2", Title: "AAPL two"},
			{ID: "3", Title: "AAPL three"},
			{ID: "4", Title: "AAPL four"},
		},
	}, nil), classifier, store, Config{Tickers: []string{"AAPL"}, Sources: []string{"stocks"}})

	result, err := p.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.ClassifyFailures)
	assert.Equal(t, 2, result.EntriesAdded)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], domain.ErrClassification.Error())

	entries := store.Get("AAPL")
	require.Len(t, entries, 2)
	assert.Equal(t, "AAPL one", entries[0].Excerpt)
	assert.Equal(t, "AAPL four", entries[1].Excerpt)
}

func TestRunCycleClampsScoreAndBoundsExcerpt(t *testing.T) {
	store := aggregate.NewStore(0)
	long := "NVDA " + strings.Repeat("x", 400)
	p := newTestPipeline(staticCollector(map[string][]domain.Post{
		"stocks": {{ID: "1", Title: long + "\n"}},
	}, nil), fixedClassifier("weird", 3.5), store, Config{Tickers: []string{"NVDA"}, Sources: []string{"stocks"}})

	_, err := p.RunCycle(context.Background())
	require.NoError(t, err)
	entry := store.Get("NVDA")[0]
	assert.Equal(t, domain.LabelNeutral, entry.Label)
	assert.Equal(t, 1.0, entry.Score)
	assert.Len(t, entry.Excerpt, domain.MaxExcerptLen)
}

func TestRunCycleRespectsCycleTimeout(t *testing.T) {
	store := aggregate.NewStore(0)
	collector := provider.CollectorFunc(func(ctx context.Context, sourceID string, limit int) ([]domain.Post, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	p := newTestPipeline(collector, fixedClassifier("POSITIVE", 0.9), store, Config{
		Tickers:      []string{"GME"},
		Sources:      []string{"wallstreetbets"},
		CycleTimeout: 20 * time.Millisecond,
	})

	started := time.Now()
	result, err := p.RunCycle(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(started), 2*time.Second)
	assert.Equal(t, 1, result.SourcesFailed)
	assert.Contains(t, result.Errors[len(result.Errors)-1], "cycle:")
}

func TestRunCycleKeepsPartialWorkOnDeadline(t *testing.T) {
	store := aggregate.NewStore(0)
	posts := []domain.Post{{ID: "1", Title: "GME"}, {ID: "2", Title: "GME"}, {ID: "3", Title: "GME"}}
	ctx, cancel := context.WithCancel(context.Background())
	classifier := sentiment.ClassifierFunc(func(context.Context, string) (sentiment.Result, error) {
		cancel()
		return sentiment.Result{Label: "POSITIVE", Score: 0.6}, nil
	})
	p := newTestPipeline(staticCollector(map[string][]domain.Post{"s": posts}, nil), classifier, store,
		Config{Tickers: []string{"GME"}, Sources: []string{"s"}})

	result, err := p.RunCycle(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, result.EntriesAdded)
	assert.Len(t, store.Get("GME"), 1)
}

func TestRunCycleDoesNotInterleave(t *testing.T) {
	store := aggregate.NewStore(0)
	var active, maxActive int32
	collector := provider.CollectorFunc(func(ctx context.Context, sourceID string, limit int) ([]domain.Post, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			m := atomic.LoadInt32(&maxActive)
			if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return []domain.Post{{ID: "x", Title: "PLTR"}}, nil
	})
	p := newTestPipeline(collector, fixedClassifier("POSITIVE", 0.9), store, Config{
		Tickers: []string{"PLTR"},
		Sources: []string{"one"},
	})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.RunCycle(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxActive))
	assert.Len(t, store.Get("PLTR"), 4)
	assert.Equal(t, 4, p.Status().Cycles)
}

func TestRunCycleCollectsSourcesConcurrently(t *testing.T) {
	store := aggregate.NewStore(0)
	release := make(chan struct{})
	var started int32
	collector := provider.CollectorFunc(func(ctx context.Context, sourceID string, limit int) ([]domain.Post, error) {
		if atomic.AddInt32(&started, 1) == 3 {
			close(release)
		}
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return []domain.Post{{ID: sourceID, Title: "AMC " + sourceID}}, nil
	})
	p := newTestPipeline(collector, fixedClassifier("POSITIVE", 0.9), store, Config{
		Tickers:       []string{"AMC"},
		Sources:       []string{"a", "b", "c"},
		SourceTimeout: 2 * time.Second,
	})

	_, err := p.RunCycle(context.Background())
	require.NoError(t, err)

	entries := store.Get("AMC")
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].Subreddit)
	assert.Equal(t, "b", entries[1].Subreddit)
	assert.Equal(t, "c", entries[2].Subreddit)
}

func TestStatusReflectsLastCycle(t *testing.T) {
	store := aggregate.NewStore(0)
	p := newTestPipeline(staticCollector(map[string][]domain.Post{"s": {{ID: "1", Title: "GME"}}}, nil),
		fixedClassifier("POSITIVE", 0.9), store, Config{Tickers: []string{"GME"}, Sources: []string{"s"}})

	assert.Nil(t, p.Status().LastCycle)
	_, err := p.RunCycle(context.Background())
	require.NoError(t, err)

	status := p.Status()
	assert.Equal(t, 1, status.Cycles)
	require.NotNil(t, status.LastCycle)
	assert.Equal(t, 1, status.LastCycle.EntriesAdded)
	assert.Equal(t, 1, status.TotalItems)
	assert.Empty(t, status.LastError)
}

func TestRunCycleWithoutCollector(t *testing.T) {
	p := NewPipeline(noopTracer(), nil, nil, nil, aggregate.NewStore(0), Config{}, logger.NewNop())
	_, err := p.RunCycle(context.Background())
	assert.Error(t, err)
}

func TestRunCycleAttributesEntriesToConfiguredSource(t *testing.T) {
	store := aggregate.NewStore(0)
	collector := provider.CollectorFunc(func(ctx context.Context, sourceID string, limit int) ([]domain.Post, error) {
		return []domain.Post{{ID: "1", Title: "$GME up", Source: "somewhere-else"}}, nil
	})
	p := newTestPipeline(collector, fixedClassifier("POSITIVE", 0.9), store, Config{
		Tickers: []string{"GME"},
		Sources: []string{"wallstreetbets"},
	})

	_, err := p.RunCycle(context.Background())
	require.NoError(t, err)

	entries := store.Get("GME")
	require.Len(t, entries, 1)
	assert.Equal(t, "wallstreetbets", entries[0].Subreddit)
}

func TestNewPipelineDeduplicatesTickersAndSources(t *testing.T) {
	store := aggregate.NewStore(0)
	var calls int32
	collector := provider.CollectorFunc(func(ctx context.Context, sourceID string, limit int) ([]domain.Post, error) {
		atomic.AddInt32(&calls, 1)
		return []domain.Post{{ID: "1", Title: "GME squeeze"}}, nil
	})
	p := newTestPipeline(collector, fixedClassifier("POSITIVE", 0.9), store, Config{
		Tickers: []string{"GME", "$gme", "AMC", " gme "},
		Sources: []string{"s", "s", "t", " s"},
	})
	assert.Equal(t, []string{"GME", "AMC"}, p.Tickers())
	assert.Equal(t, []string{"s", "t"}, p.Sources())

	result, err := p.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 2, result.EntriesAdded)
	assert.Len(t, store.Get("GME"), 2)
}
