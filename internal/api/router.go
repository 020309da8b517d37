package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/EvgeniyGal/hr-agency/internal/api/middleware"
	"github.com/EvgeniyGal/hr-agency/internal/config"
	"github.com/EvgeniyGal/hr-agency/internal/metrics"
)

// NewRouter builds the Gin engine with the ambient middleware chain plus
// the health and metrics endpoints. Routes are registered separately.
func NewRouter(cfg *config.Config, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.CorrelationIDMiddleware(),
		middleware.SlogLoggerMiddleware(logger),
		metrics.GinMiddleware(),
		gin.Recovery(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	metricsGroup := router.Group("/metrics")
	metricsGroup.Use(middleware.InternalSecretMiddleware(cfg.API.InternalSecret))
	metricsGroup.GET("", gin.WrapH(promhttp.Handler()))

	return router
}
