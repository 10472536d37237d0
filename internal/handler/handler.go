package handler

import (
	"context"

	"signal-sniper/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// SentimentQuerier is the read side served over HTTP. Implemented by
// service.QueryService.
type SentimentQuerier interface {
	GetSentiment(ctx context.Context, ticker string) []domain.SentimentEntry
	GetTrending(ctx context.Context) []domain.TickerMention
	Status(ctx context.Context) domain.IngestStatus
}

type CycleRunner interface {
	RunCycle(ctx context.Context) (domain.CycleResult, error)
}

type Handler struct {
	tracer trace.Tracer
	query  SentimentQuerier
	runner CycleRunner
}

func New(tracer trace.Tracer, query SentimentQuerier) *Handler {
	return &Handler{
		tracer: tracer,
		query:  query,
	}
}

func (h *Handler) SetCycleRunner(runner CycleRunner) {
	h.runner = runner
}

func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)
	r.GET("/sentiment/:ticker", h.GetSentiment)
	r.GET("/trending", h.GetTrending)

	api := r.Group("/api", APIKeyAuth(apiKey))
	api.POST("/ingest/run", h.TriggerIngestRun)
}
