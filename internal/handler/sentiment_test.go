package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"signal-sniper/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func newTestRouter(h *Handler, apiKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r, apiKey)
	return r
}

func TestGetSentimentJSONShape(t *testing.T) {
	at := time.Date(2026, 4, 2, 14, 30, 0, 0, time.UTC)
	stub := &querierStub{entries: map[string][]domain.SentimentEntry{
		"GME": {{Ticker: "GME", Label: domain.LabelPositive, Score: 0.97, ObservedAt: at, Subreddit: "wallstreetbets", Excerpt: "$GME to the moon"}},
	}}
	r := newTestRouter(New(trace.NewNoopTracerProvider().Tracer("test"), stub), "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sentiment/gme", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"ticker":"GME","sentiment":"POSITIVE","score":0.97,"time":"2026-04-02T14:30:00Z","subreddit":"wallstreetbets","text":"$GME to the moon"}]`, w.Body.String())
	assert.Equal(t, []string{"gme"}, stub.asked)
}

func TestGetSentimentUnknownTicker(t *testing.T) {
	r := newTestRouter(New(trace.NewNoopTracerProvider().Tracer("test"), &querierStub{}), "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sentiment/ZZZZ", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetSentimentWithoutService(t *testing.T) {
	r := newTestRouter(New(trace.NewNoopTracerProvider().Tracer("test"), nil), "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sentiment/GME", nil))
	assert.JSONEq(t, `[]`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/trending", nil))
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetTrending(t *testing.T) {
	stub := &querierStub{trending: []domain.TickerMention{{Ticker: "GME", Mentions: 5}, {Ticker: "AMC", Mentions: 3}}}
	r := newTestRouter(New(trace.NewNoopTracerProvider().Tracer("test"), stub), "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/trending", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"ticker":"GME","mentions":5},{"ticker":"AMC","mentions":3}]`, w.Body.String())
}
