package main

import (
	"context"
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/affgate/affgate/internal/application/service"
	"github.com/affgate/affgate/internal/cache"
	"github.com/affgate/affgate/internal/config"
	"github.com/affgate/affgate/internal/infrastructure/monitoring"
	"github.com/affgate/affgate/internal/interfaces/http/handlers"
	"github.com/affgate/affgate/internal/interfaces/http/router"
	"github.com/affgate/affgate/internal/mock"
	"github.com/affgate/affgate/internal/signer"
	"github.com/affgate/affgate/internal/upstream"
	"github.com/affgate/affgate/pkg/constants"
	"github.com/affgate/affgate/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, v, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	runtime := config.NewRuntime(cfg)
	runtime.Watch(v, appLogger)

	// Cache tiers. Redis is optional: when it is unreachable the gateway
	// runs on the in-process tier alone.
	memory := cache.NewMemory(cfg.Cache.MemoryMaxEntries)
	var redisTier cache.Store
	var redisConn *cache.Redis
	if len(cfg.Cache.RedisAddresses) > 0 {
		redisConn, err = cache.Connect(ctx, cfg.Cache.RedisAddresses, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, appLogger)
		if err != nil {
			appLogger.Warn(ctx, "redis unavailable, continuing with memory cache only", logger.Fields{
				"reason": err.Error(),
			})
		} else {
			redisTier = redisConn
			defer redisConn.Close()
		}
	}
	tiered := cache.NewTiered(memory, redisTier)

	creds := signer.Credentials{
		AppKey:     cfg.Upstream.AppKey,
		AppSecret:  cfg.Upstream.AppSecret,
		TrackingID: cfg.Upstream.TrackingID,
	}
	if !cfg.Upstream.HasCredentials() {
		appLogger.Warn(ctx, "upstream credentials not configured, all responses will be mock data")
	}
	sgn := signer.New(creds, constants.SignMethod(cfg.Upstream.SignMethod))

	caller := upstream.NewClient(cfg.Upstream.GatewayURL, cfg.Upstream.Timeout, appLogger)
	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	gateway := service.NewGateway(
		sgn,
		caller,
		tiered,
		mock.NewProvider(),
		runtime,
		cfg.Cache,
		metrics,
		appLogger,
	)

	gatewayHandler := handlers.NewGatewayHandler(gateway)
	healthHandler := handlers.NewHealthHandler(redisConn, appLogger)
	adminHandler := handlers.NewAdminHandler(tiered, appLogger)

	r := router.New(cfg, appLogger, gatewayHandler, healthHandler, adminHandler, prometheus.DefaultGatherer)
	if err := r.Start(); err != nil {
		appLogger.Fatal(ctx, "HTTP server failed", err)
	}
}
