package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfwatch/backend/internal/domain"
	"github.com/shelfwatch/backend/internal/infrastructure/notify"
	"github.com/shelfwatch/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	dashboard *usecase.DashboardService
	catalog   domain.ProductCatalog
	cache     domain.RecommendationCache
	recorder  *notify.Recorder
}

// NewHandler creates a new HTTP handler
func NewHandler(
	dashboard *usecase.DashboardService,
	catalog domain.ProductCatalog,
	cache domain.RecommendationCache,
	recorder *notify.Recorder,
) *Handler {
	return &Handler{
		dashboard: dashboard,
		catalog:   catalog,
		cache:     cache,
		recorder:  recorder,
	}
}

// refreshRequest is the optional body for the refresh endpoint
type refreshRequest struct {
	Force bool `json:"force"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "shelfwatch-backend",
		"version": "1.0.0",
	})
}

// ListProducts returns the currently tracked product list
func (h *Handler) ListProducts(c *gin.Context) {
	products := h.catalog.List()

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// ReplaceProducts swaps the tracked product list and schedules a
// recommendation cycle. Bursts of updates collapse into a single cycle.
func (h *Handler) ReplaceProducts(c *gin.Context) {
	var products []domain.Product
	if err := c.ShouldBindJSON(&products); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid product payload: " + err.Error(),
		})
		return
	}

	for i, p := range products {
		if err := p.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("product %d: %v", i, err),
			})
			return
		}
	}

	h.dashboard.SetProducts(products)

	c.JSON(http.StatusAccepted, gin.H{
		"accepted": len(products),
	})
}

// GetDashboard returns the latest published dashboard snapshot
func (h *Handler) GetDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.Snapshot())
}

// RefreshDashboard starts a generation cycle immediately, skipping the
// debounce window. With {"force": true} the cache is cleared first and
// lookups are bypassed for that cycle. The cycle runs detached from the
// request; poll the dashboard endpoint for progress.
func (h *Handler) RefreshDashboard(c *gin.Context) {
	var req refreshRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "invalid refresh payload: " + err.Error(),
			})
			return
		}
	}

	go h.dashboard.Generate(context.Background(), req.Force)

	c.JSON(http.StatusAccepted, gin.H{
		"status": "refresh started",
		"force":  req.Force,
	})
}

// CacheStats returns valid and expired entry counts for the
// recommendation cache
func (h *Handler) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.cache.Stats(c.Request.Context()))
}

// ClearCache removes all cached recommendations
func (h *Handler) ClearCache(c *gin.Context) {
	h.cache.Clear(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"message": "recommendation cache cleared",
	})
}

// ListNotifications returns retained cycle notifications, newest first
func (h *Handler) ListNotifications(c *gin.Context) {
	notifications := h.recorder.Recent()

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
	})
}
