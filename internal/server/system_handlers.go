package server

import (
	"context"
	"net/http"

	"rowmatch/internal/api"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// QueueReporter exposes the pending email count.
type QueueReporter interface {
	QueueLength(ctx context.Context) int64
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Router       /health [get]
func Health(queue QueueReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := api.HealthResponse{Status: "ok"}
		if queue != nil {
			resp.EmailQueue = queue.QueueLength(c.Request.Context())
		}
		c.JSON(http.StatusOK, resp)
	}
}

// @Summary      Prometheus metrics
// @Description  Exposes Prometheus metrics in text format
// @Tags         system
// @Produce      text/plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
