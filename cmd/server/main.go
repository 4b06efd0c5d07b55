package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-catalog-api/internal/config"
	"storefront-catalog-api/internal/handlers"
	"storefront-catalog-api/internal/middleware"
	"storefront-catalog-api/internal/services"
	"storefront-catalog-api/internal/sources"
	"storefront-catalog-api/pkg/cache"
	"storefront-catalog-api/pkg/logger"
	"storefront-catalog-api/pkg/metrics"
)

func main() {
	cfg := config.MustLoad()

	log := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	defer func() { _ = log.Sync() }()

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
	}

	client, err := sources.NewClient(sources.ClientConfig{
		Endpoint: cfg.GraphQL.Endpoint,
		Token:    cfg.GraphQL.Token,
		Timeout:  cfg.GraphQL.Timeout,
	}, log)
	if err != nil {
		log.Fatal("invalid graphql configuration", zap.Error(err))
	}

	var (
		pageCache  sources.PageCache
		cacheAdmin handlers.CacheAdmin
		redisCache *cache.RedisCache
	)
	if cfg.Redis.Enabled {
		redisCache = cache.NewRedisCache(context.Background(), cache.Options{
			URL: cfg.Redis.URL,
			DB:  cfg.Redis.DB,
			TTL: cfg.Redis.TTL,
		}, log)
		if redisCache != nil {
			pageCache = redisCache
			cacheAdmin = redisCache
			defer func() { _ = redisCache.Close() }()
		}
	}

	adapters := sources.Adapters{
		Listing: sources.NewCachedSource(sources.NewListingAdapter(client, cfg.GraphQL.Timeout, log), pageCache, m, log),
		Search:  sources.NewCachedSource(sources.NewSearchAdapter(client, cfg.GraphQL.Timeout, log), pageCache, m, log),
	}
	catalog := services.NewCatalogService(adapters, services.CatalogOptions{
		ListingWindow: cfg.Catalog.ListingWindow,
		PerPage:       cfg.Catalog.PerPage,
	}, m, log)

	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go limiter.Run(janitorCtx, time.Minute, 10*time.Minute)

	deps := handlers.RouterDeps{
		Catalog:     catalog,
		Cache:       cacheAdmin,
		Limiter:     limiter,
		Counter:     m,
		CORSOrigins: cfg.CORS.AllowOrigins,
		Logger:      log,
	}
	if m != nil {
		deps.Metrics = m.Handler()
	}

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      handlers.NewRouter(deps),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	log.Info("starting catalog server",
		zap.String("addr", server.Addr),
		zap.String("graphql", cfg.GraphQL.Endpoint),
		zap.Bool("cache", redisCache != nil),
		zap.Bool("metrics", m != nil),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server failed", zap.Error(err))
	}
	log.Info("server stopped")
}
