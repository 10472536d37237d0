package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TriggerIngestRun godoc
// @Summary      Trigger one ingestion cycle manually
// @Description  Runs one refresh cycle over every configured source and returns its counters
// @Tags         ingest
// @Produce      json
// @Param        X-API-Key  header  string  false  "API key, required when API_KEY is configured"
// @Success      200  {object}  domain.CycleResult
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/ingest/run [post]
func (h *Handler) TriggerIngestRun(c *gin.Context) {
	if h.runner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ingest pipeline unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.trigger-ingest-run")
	defer span.End()

	result, err := h.runner.RunCycle(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "result": result})
		return
	}
	c.JSON(http.StatusOK, result)
}
