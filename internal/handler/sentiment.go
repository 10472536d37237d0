package handler

import (
	"net/http"

	"signal-sniper/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetSentiment godoc
// @Summary      Sentiment history for a ticker
// @Description  Returns every scored mention of the ticker in arrival order. Unknown tickers return an empty array.
// @Tags         sentiment
// @Produce      json
// @Param        ticker  path  string  true  "Ticker symbol (case-insensitive, optional leading $)"
// @Success      200  {array}  domain.SentimentEntry
// @Router       /sentiment/{ticker} [get]
func (h *Handler) GetSentiment(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-sentiment")
	defer span.End()

	ticker := c.Param("ticker")
	span.SetAttributes(attribute.String("ticker", ticker))

	entries := []domain.SentimentEntry{}
	if h.query != nil {
		entries = h.query.GetSentiment(ctx, ticker)
	}
	c.JSON(http.StatusOK, entries)
}

// GetTrending godoc
// @Summary      Trending tickers
// @Description  Returns up to 10 tickers ordered by mention count, descending
// @Tags         sentiment
// @Produce      json
// @Success      200  {array}  domain.TickerMention
// @Router       /trending [get]
func (h *Handler) GetTrending(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-trending")
	defer span.End()

	mentions := []domain.TickerMention{}
	if h.query != nil {
		mentions = h.query.GetTrending(ctx)
	}
	c.JSON(http.StatusOK, mentions)
}
