package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary      Health check
// @Description  Returns the health status of the service and the last refresh cycle summary
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	body := gin.H{"status": "healthy"}
	if h.query != nil {
		status := h.query.Status(c.Request.Context())
		body["cycles"] = status.Cycles
		body["total_entries"] = status.TotalItems
		if status.LastCycle != nil {
			body["last_cycle"] = status.LastCycle
		}
		if status.LastError != "" {
			body["last_error"] = status.LastError
		}
	}
	c.JSON(http.StatusOK, body)
}
