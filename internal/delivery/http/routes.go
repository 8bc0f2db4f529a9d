package http

import (
	"github.com/gin-gonic/gin"

	"github.com/shelfwatch/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", handler.ListProducts)
			products.POST("", handler.ReplaceProducts)
		}

		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("", handler.GetDashboard)
			dashboard.POST("/refresh", handler.RefreshDashboard)
		}

		cache := v1.Group("/cache")
		{
			cache.GET("/stats", handler.CacheStats)
			cache.DELETE("", handler.ClearCache)
		}

		v1.GET("/notifications", handler.ListNotifications)
	}

	return router
}
