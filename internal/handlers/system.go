package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront-catalog-api/internal/middleware"
)

// CacheAdmin is the part of the page cache exposed over HTTP.
type CacheAdmin interface {
	IsAvailable() bool
	GetStats(ctx context.Context) map[string]interface{}
	GetAllKeys(ctx context.Context) []string
	GetKeyTTL(ctx context.Context, key string) time.Duration
	FlushCache(ctx context.Context) error
}

type SystemHandler struct {
	cache   CacheAdmin
	limiter *middleware.IPRateLimiter
	version string
}

func NewSystemHandler(cache CacheAdmin, limiter *middleware.IPRateLimiter, version string) *SystemHandler {
	return &SystemHandler{cache: cache, limiter: limiter, version: version}
}

func (h *SystemHandler) cacheAvailable() bool {
	return h.cache != nil && h.cache.IsAvailable()
}

func (h *SystemHandler) Health(c *gin.Context) {
	health := gin.H{
		"status":  "healthy",
		"service": "storefront-catalog-api",
		"version": h.version,
	}
	if h.cacheAvailable() {
		health["cache"] = "redis connected"
	} else {
		health["cache"] = "redis unavailable"
	}
	c.JSON(http.StatusOK, health)
}

func (h *SystemHandler) RateLimitStatus(c *gin.Context) {
	if h.limiter == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "rate limiting disabled"})
		return
	}
	c.JSON(http.StatusOK, h.limiter.Status(c.ClientIP()))
}

func (h *SystemHandler) CacheStats(c *gin.Context) {
	if !h.cacheAvailable() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not available"})
		return
	}
	c.JSON(http.StatusOK, h.cache.GetStats(c.Request.Context()))
}

func (h *SystemHandler) CacheDebug(c *gin.Context) {
	if !h.cacheAvailable() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not available"})
		return
	}

	ctx := c.Request.Context()
	keys := h.cache.GetAllKeys(ctx)
	keyDetails := make([]gin.H, 0, len(keys))
	for _, key := range keys {
		ttl := h.cache.GetKeyTTL(ctx, key)
		keyDetails = append(keyDetails, gin.H{
			"key":         key,
			"ttl_seconds": int(ttl.Seconds()),
			"expires_in":  ttl.String(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"total_keys": len(keys),
		"cache_keys": keyDetails,
		"timestamp":  time.Now().Format(time.RFC3339),
	})
}

func (h *SystemHandler) CacheFlush(c *gin.Context) {
	if !h.cacheAvailable() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not available"})
		return
	}
	if err := h.cache.FlushCache(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to flush cache",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "cache flushed successfully",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *SystemHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "Storefront Catalog API",
		"version":     h.version,
		"description": "Product listing and search with filtering, URL state and pagination",
		"features":    []string{"Listing and search modes", "Client-side filters", "URL state sync", "Pagination", "Redis caching", "Facets"},
		"endpoints": map[string]string{
			"GET /catalog":           "Catalog view for a page query string",
			"POST /catalog/navigate": "Apply a catalog action to a query string",
			"GET /health":            "Health check",
			"GET /cache/stats":       "Cache statistics",
			"GET /cache/debug":       "Cached page keys",
			"DELETE /cache/flush":    "Drop cached pages",
			"GET /rate-limit/status": "Rate limit bucket for the caller",
			"GET /metrics":           "Prometheus metrics",
			"GET /api/info":          "API information",
		},
	})
}
