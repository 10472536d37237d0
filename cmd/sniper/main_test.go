package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"signal-sniper/internal/app"
	"signal-sniper/internal/config"
	"signal-sniper/internal/domain"
	"signal-sniper/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "sniper ")
}

func TestOnceRejectsInvalidConfig(t *testing.T) {
	origLoadEnv, origLoadConfig := loadEnvFunc, loadConfigFunc
	t.Cleanup(func() { loadEnvFunc, loadConfigFunc = origLoadEnv, origLoadConfig })
	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{PostLimit: 1, RefreshIntervalSecs: 1, TickerMatchMode: "substring", Classifier: "heuristic", LogLevel: "error"}
	}

	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"once"})
	err := cmd.Execute()
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestRunOnceReportsCounts(t *testing.T) {
	origBuild := buildAppFunc
	t.Cleanup(func() { buildAppFunc = origBuild })
	buildAppFunc = func(ctx context.Context, cfg *config.Config, tracer trace.Tracer, log *logger.Logger) (*app.Components, error) {
		c, err := app.Build(ctx, cfg, tracer, logger.NewNop())
		if err != nil {
			return nil, err
		}
		c.Store.Append("GME", domain.SentimentEntry{Label: domain.LabelPositive, Score: 0.9})
		return c, nil
	}

	cfg := &config.Config{
		Tickers:             []string{"GME", "AMC"},
		Sources:             []string{"rss:http://127.0.0.1:1/feed.xml"},
		PostLimit:           5,
		RefreshIntervalSecs: 60,
		CycleTimeoutSecs:    2,
		SourceTimeoutSecs:   1,
		SourceRetryAttempts: 1,
		TickerMatchMode:     "substring",
		Classifier:          "heuristic",
	}

	var out bytes.Buffer
	err := runOnce(context.Background(), cfg, &out)
	require.ErrorIs(t, err, domain.ErrSourceUnavailable)

	var report onceReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, map[string]int{"GME": 1, "AMC": 0}, report.Counts)
	assert.Equal(t, []domain.TickerMention{{Ticker: "GME", Mentions: 1}}, report.Trending)
	assert.Equal(t, 1, report.Cycle.SourcesFailed)
}
