package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"signal-sniper/internal/app"
	"signal-sniper/internal/bot"
	"signal-sniper/internal/config"
	"signal-sniper/internal/handler"
	"signal-sniper/internal/job"
	"signal-sniper/internal/mcpserver"
	"signal-sniper/internal/metrics"
	"signal-sniper/pkg/logger"
	"signal-sniper/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	tele "gopkg.in/telebot.v3"

	_ "signal-sniper/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initLoggerFunc         = logger.Init
	initTracerFunc         = tracing.InitTracer
	buildAppFunc           = app.Build
	startJobFunc           = func(j *job.RefreshJob, ctx context.Context) { go j.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	exitFunc               = os.Exit
)

// @title           Signal Sniper API
// @version         1.0
// @description     Ticker mention sentiment aggregated from Reddit and RSS feeds.

// @host      localhost:8000
// @BasePath  /
func main() {
	_ = loadEnvFunc()

	cfg := loadConfigFunc()
	if err := initLoggerFunc(cfg.LogLevel, cfg.AppEnv); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
	}
	log := logger.Get()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Errorw("failed to initialize tracer", "error", err)
		exitFunc(1)
		return
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warnw("error shutting down tracer provider", "error", err)
		}
	}()

	metrics.Init()

	components, err := buildAppFunc(ctx, cfg, tracer, log)
	if err != nil {
		log.Errorw("invalid configuration", "error", err)
		exitFunc(1)
		return
	}
	defer components.Close()

	// Start the refresh job (stopped on shutdown)
	refresh := job.NewRefreshJob(tracer, components.Pipeline, cfg.RefreshInterval(), log)
	startJobFunc(refresh, ctx)

	// Start Telegram bot
	telegram, err := startTelegramBotFunc(cfg.TelegramBotToken, components.Query)
	if err != nil {
		log.Errorw("Telegram bot disabled", "error", err)
	}

	// Create handlers and routes
	h := handler.New(tracer, components.Query)
	h.SetCycleRunner(components.Pipeline)

	r := newRouterFunc()
	setupRouter(r, h, cfg, mcpserver.New(components.Query, tracing.Version))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		log.Infow("HTTP server listening", "addr", srv.Addr)
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalw("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info("Shutting down server...")

	refresh.Stop()
	stopTelegram(telegram)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("Server exiting")
}

func setupRouter(r *gin.Engine, h *handler.Handler, cfg *config.Config, mcpSrv *mcp.Server) {
	r.Use(otelgin.Middleware("signal-sniper"))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		MaxAge:          12 * time.Hour,
	}))

	h.RegisterRoutes(r, cfg.APIKey)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if cfg.MCPHTTPEnabled && mcpSrv != nil {
		r.Any("/mcp", gin.WrapH(mcpserver.Handler(mcpSrv)))
	}
}

func stopTelegram(b *tele.Bot) {
	if b != nil {
		b.Stop()
	}
}
