package http

import (
	"github.com/gin-gonic/gin"

	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/config"
	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/infrastructure/metrics"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, reg *metrics.Registry) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(reg.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		receipts := v1.Group("/receipts")
		{
			receipts.POST("/scan", handler.ScanReceipt)
			receipts.POST("", handler.IngestReceipt)
		}

		v1.GET("/offers", handler.CompareOffers)

		maintenance := v1.Group("/maintenance")
		{
			maintenance.POST("/dedupe", handler.Dedupe)
		}
	}

	return router
}
