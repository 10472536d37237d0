package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"signal-sniper/internal/app"
	"signal-sniper/internal/config"
	"signal-sniper/internal/domain"
	"signal-sniper/pkg/logger"
	"signal-sniper/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	buildAppFunc   = app.Build
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sniper",
		Short:         "Ticker sentiment from Reddit and RSS discussion",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(onceCmd())
	root.AddCommand(versionCmd())
	return root
}

func onceCmd() *cobra.Command {
	var (
		tickers []string
		sources []string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run a single refresh cycle and print the trending tickers as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = loadEnvFunc()
			cfg := loadConfigFunc()
			if len(tickers) > 0 {
				cfg.Tickers = tickers
			}
			if len(sources) > 0 {
				cfg.Sources = sources
			}
			if limit > 0 {
				cfg.PostLimit = limit
			}
			if err := logger.Init(cfg.LogLevel, cfg.AppEnv); err != nil {
				return err
			}
			defer logger.Sync()
			return runOnce(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringSliceVar(&tickers, "ticker", nil, "tickers to track (overrides TICKERS)")
	cmd.Flags().StringSliceVar(&sources, "source", nil, "sources to read, rss:<url> for feeds (overrides SOURCES)")
	cmd.Flags().IntVar(&limit, "limit", 0, "posts per source (overrides POST_LIMIT)")
	return cmd
}

type onceReport struct {
	Cycle    domain.CycleResult     `json:"cycle"`
	Trending []domain.TickerMention `json:"trending"`
	Counts   map[string]int         `json:"counts"`
}

func runOnce(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	tracer := trace.NewNoopTracerProvider().Tracer("sniper-cli")
	components, err := buildAppFunc(ctx, cfg, tracer, logger.Get())
	if err != nil {
		return err
	}
	defer components.Close()

	result, err := components.Pipeline.RunCycle(ctx)
	if err != nil {
		logger.Get().Warnw("cycle finished with error", "error", err)
	}

	counts := make(map[string]int)
	for _, t := range components.Pipeline.Tickers() {
		counts[t] = 0
	}
	for t, n := range components.Store.TickerCounts() {
		counts[t] = n
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(onceReport{
		Cycle:    result,
		Trending: components.Query.GetTrending(ctx),
		Counts:   counts,
	}); encErr != nil {
		return encErr
	}
	return err
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sniper %s\n", strings.TrimSpace(tracing.Version))
		},
	}
}
