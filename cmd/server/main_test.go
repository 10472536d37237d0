package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"signal-sniper/internal/app"
	"signal-sniper/internal/bot"
	"signal-sniper/internal/config"
	"signal-sniper/internal/handler"
	"signal-sniper/internal/job"
	"signal-sniper/internal/mcpserver"
	"signal-sniper/pkg/logger"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tele "gopkg.in/telebot.v3"
)

func testConfig() *config.Config {
	return &config.Config{
		Tickers:             []string{"GME"},
		Sources:             []string{"wallstreetbets"},
		PostLimit:           10,
		RefreshIntervalSecs: 60,
		CycleTimeoutSecs:    5,
		SourceTimeoutSecs:   5,
		SourceRetryAttempts: 1,
		TickerMatchMode:     "substring",
		Classifier:          "heuristic",
		HTTPPort:            8000,
		LogLevel:            "error",
	}
}

func TestMainBootstrap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps()
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}

func TestMainExitsOnInvalidConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps()
	defer restore()

	loadConfigFunc = func() *config.Config {
		cfg := testConfig()
		cfg.Tickers = nil
		return cfg
	}
	var code int
	exitFunc = func(c int) { code = c }

	main()
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestSetupRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	components, err := app.Build(context.Background(), testConfig(), tracer, logger.NewNop())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	cfg := testConfig()
	cfg.MCPHTTPEnabled = true
	r := gin.New()
	setupRouter(r, handler.New(tracer, components.Query), cfg, mcpserver.New(components.Query, "test"))

	for _, path := range []string{"/health", "/trending", "/sentiment/GME", "/metrics"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, w.Code)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/trending", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected permissive CORS header, got %q", w.Header().Get("Access-Control-Allow-Origin"))
	}

	found := false
	for _, route := range r.Routes() {
		if route.Path == "/mcp" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected /mcp route when MCP is enabled")
	}
}

func stubServerDeps() func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitLogger := initLoggerFunc
	origInitTracer := initTracerFunc
	origBuild := buildAppFunc
	origStartJob := startJobFunc
	origStartTelegram := startTelegramBotFunc
	origNewRouter := newRouterFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc
	origStartHTTP := startHTTPServerFunc
	origShutdownHTTP := shutdownHTTPServerFunc
	origExit := exitFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = testConfig
	initLoggerFunc = func(string, string) error { return nil }
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	startJobFunc = func(*job.RefreshJob, context.Context) {}
	startTelegramBotFunc = func(string, bot.Querier) (*tele.Bot, error) { return nil, nil }
	newRouterFunc = func(...gin.OptionFunc) *gin.Engine { return gin.New() }
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}
	startHTTPServerFunc = func(*http.Server) error { return http.ErrServerClosed }
	shutdownHTTPServerFunc = func(*http.Server, context.Context) error { return nil }
	exitFunc = func(int) {}

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initLoggerFunc = origInitLogger
		initTracerFunc = origInitTracer
		buildAppFunc = origBuild
		startJobFunc = origStartJob
		startTelegramBotFunc = origStartTelegram
		newRouterFunc = origNewRouter
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
		startHTTPServerFunc = origStartHTTP
		shutdownHTTPServerFunc = origShutdownHTTP
		exitFunc = origExit
	}
}
