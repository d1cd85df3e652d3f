package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"promofeed/internal/logger"
	"promofeed/pkg/health"
	"promofeed/pkg/middleware"
	"promofeed/pkg/ratelimit"
	"promofeed/pkg/tracing"
)

type RouterOptions struct {
	// ServiceName enables otelgin spans when non-empty.
	ServiceName string
	RateLimit   *ratelimit.Store
	Health      *health.CheckerRegistry
}

func NewRouter(h *Handler, log logger.Logger, opts RouterOptions) *gin.Engine {
	router := gin.New()

	if opts.ServiceName != "" {
		router.Use(tracing.GinMiddleware(opts.ServiceName))
	}
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))

	router.GET("/health", healthHandler(opts.Health))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if opts.RateLimit != nil {
		router.Use(ratelimit.RateLimitMiddleware(opts.RateLimit))
	}
	h.RegisterRoutes(router)

	return router
}

func healthHandler(registry *health.CheckerRegistry) gin.HandlerFunc {
	if registry == nil {
		registry = health.NewCheckerRegistry()
	}
	return func(c *gin.Context) {
		h := registry.Check(c.Request.Context())
		status := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, h)
	}
}
