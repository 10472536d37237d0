package service

import (
	"context"

	"signal-sniper/internal/aggregate"
	"signal-sniper/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// StatusReader exposes the ingestion status. Implemented by ingest.Pipeline.
type StatusReader interface {
	Status() domain.IngestStatus
}

// QueryService serves read-only views over the aggregation store.
type QueryService struct {
	tracer trace.Tracer
	store  *aggregate.Store
	ranker *aggregate.Ranker
	status StatusReader
}

func NewQueryService(tracer trace.Tracer, store *aggregate.Store, ranker *aggregate.Ranker, status StatusReader) *QueryService {
	if ranker == nil && store != nil {
		ranker = aggregate.NewRanker(store)
	}
	return &QueryService{tracer: tracer, store: store, ranker: ranker, status: status}
}

// GetSentiment returns every stored entry for the ticker in arrival order.
// Unknown or empty tickers yield an empty slice.
func (s *QueryService) GetSentiment(ctx context.Context, symbol string) []domain.SentimentEntry {
	_, span := s.tracer.Start(ctx, "query-service.get-sentiment")
	defer span.End()

	symbol = domain.CanonicalTicker(symbol)
	span.SetAttributes(attribute.String("ticker", symbol))
	if symbol == "" || s.store == nil {
		return []domain.SentimentEntry{}
	}
	entries := s.store.Get(symbol)
	span.SetAttributes(attribute.Int("entries", len(entries)))
	return entries
}

// GetTrending returns at most ten tickers ordered by mention count.
func (s *QueryService) GetTrending(ctx context.Context) []domain.TickerMention {
	_, span := s.tracer.Start(ctx, "query-service.get-trending")
	defer span.End()

	if s.ranker == nil {
		return []domain.TickerMention{}
	}
	return s.ranker.Top(domain.DefaultTrendingLimit)
}

func (s *QueryService) Status(ctx context.Context) domain.IngestStatus {
	_, span := s.tracer.Start(ctx, "query-service.status")
	defer span.End()

	var status domain.IngestStatus
	if s.status != nil {
		status = s.status.Status()
	}
	if s.store != nil {
		status.TotalItems = s.store.Len()
	}
	return status
}
