package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-catalog-api/internal/middleware"
	"storefront-catalog-api/internal/services"
)

const Version = "1.0.0"

type RouterDeps struct {
	Catalog     *services.CatalogService
	Cache       CacheAdmin
	Limiter     *middleware.IPRateLimiter
	Metrics     http.Handler
	Counter     middleware.RequestCounter
	CORSOrigins []string
	Logger      *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(deps.CORSOrigins))
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(logger, deps.Counter))

	system := NewSystemHandler(deps.Cache, deps.Limiter, Version)
	r.GET("/health", system.Health)
	r.GET("/api/info", system.Info)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	api := r.Group("")
	if deps.Limiter != nil {
		api.Use(deps.Limiter.Middleware())
	}
	catalog := NewCatalogHandler(deps.Catalog, logger)
	api.GET("/catalog", catalog.Browse)
	api.POST("/catalog/navigate", catalog.Navigate)
	api.GET("/rate-limit/status", system.RateLimitStatus)
	api.GET("/cache/stats", system.CacheStats)
	api.GET("/cache/debug", system.CacheDebug)
	api.DELETE("/cache/flush", system.CacheFlush)

	return r
}
