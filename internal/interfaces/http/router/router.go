// Package router assembles the gin engine, wires middleware and routes, and
// owns the HTTP server lifecycle.
package router

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/affgate/affgate/internal/config"
	"github.com/affgate/affgate/internal/interfaces/http/handlers"
	"github.com/affgate/affgate/pkg/logger"
)

// Router is the HTTP router and server.
type Router struct {
	engine         *gin.Engine
	config         *config.Config
	logger         logger.Logger
	gatewayHandler *handlers.GatewayHandler
	healthHandler  *handlers.HealthHandler
	adminHandler   *handlers.AdminHandler
	promGatherer   prometheus.Gatherer
	server         *http.Server
}

// New creates a Router.
func New(
	cfg *config.Config,
	log logger.Logger,
	gatewayHandler *handlers.GatewayHandler,
	healthHandler *handlers.HealthHandler,
	adminHandler *handlers.AdminHandler,
	promGatherer prometheus.Gatherer,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	return &Router{
		engine:         gin.New(),
		config:         cfg,
		logger:         log,
		gatewayHandler: gatewayHandler,
		healthHandler:  healthHandler,
		adminHandler:   adminHandler,
		promGatherer:   promGatherer,
	}
}

// SetupRoutes registers middleware and routes.
func (r *Router) SetupRoutes() {
	r.engine.Use(handlers.RecoveryMiddleware(r.logger))
	r.engine.Use(handlers.RequestIDMiddleware())
	r.engine.Use(handlers.LoggingMiddleware(r.logger))

	corsConfig := cors.Config{
		AllowOrigins:  r.config.CORS.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	r.engine.Use(cors.New(corsConfig))

	r.engine.GET("/health/live", r.healthHandler.LivenessCheck)
	r.engine.GET("/health/ready", r.healthHandler.ReadinessCheck)

	r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.promGatherer, promhttp.HandlerOpts{})))

	if r.config.Monitoring.PprofEnabled {
		pprof.Register(r.engine)
	}

	apiKeyAuth := handlers.APIKeyAuthMiddleware(r.config.Auth.APIKeys)

	v1 := r.engine.Group("/api/v1")
	v1.Use(apiKeyAuth)
	{
		products := v1.Group("/products")
		{
			products.POST("/search", r.gatewayHandler.SearchProducts)
			products.GET("/hot", r.gatewayHandler.HotProducts)
			products.GET("/:product_id", r.gatewayHandler.GetProduct)
		}
		v1.GET("/categories", r.gatewayHandler.ListCategories)
		v1.POST("/affiliate/links", r.gatewayHandler.GenerateLinks)
	}

	admin := r.engine.Group("/admin")
	admin.Use(apiKeyAuth)
	{
		admin.POST("/cache/clear", r.adminHandler.ClearCache)
		admin.GET("/cache/stats", r.adminHandler.CacheStats)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "The requested resource was not found",
		})
	})
}

// Start runs the HTTP server until it is shut down.
func (r *Router) Start() error {
	r.SetupRoutes()

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	r.server = &http.Server{
		Addr:           addr,
		Handler:        r.engine,
		ReadTimeout:    r.config.Server.ReadTimeout,
		WriteTimeout:   r.config.Server.WriteTimeout,
		IdleTimeout:    r.config.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	r.logger.Info(context.Background(), "starting HTTP server", logger.Fields{"address": addr})

	go r.gracefulShutdown()

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (r *Router) gracefulShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	r.logger.Info(context.Background(), "shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := r.server.Shutdown(ctx); err != nil {
		r.logger.Error(context.Background(), "server forced to shutdown", err)
	}
}

// Stop shuts the server down.
func (r *Router) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	return r.server.Shutdown(ctx)
}

// Engine exposes the gin engine for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
