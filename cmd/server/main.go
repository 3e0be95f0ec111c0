package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	commissionapp "github.com/marketplace/backend/internal/application/commission"
	disputeapp "github.com/marketplace/backend/internal/application/dispute"
	fulfillmentapp "github.com/marketplace/backend/internal/application/fulfillment"
	slaapp "github.com/marketplace/backend/internal/application/sla"
	"github.com/marketplace/backend/internal/infrastructure/cache"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/event"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/infrastructure/persistence"
	"github.com/marketplace/backend/internal/infrastructure/scheduler"
	"github.com/marketplace/backend/internal/interfaces/http/handler"
	"github.com/marketplace/backend/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting marketplace backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connected and migrated")

	// Initialize repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	subOrderRepo := persistence.NewGormSubOrderRepository(db.DB)
	caseRepo := persistence.NewGormCaseRepository(db.DB)
	slaConfigRepo := persistence.NewGormSlaConfigurationRepository(db.DB)
	slaTrackingRepo := persistence.NewGormSlaTrackingRepository(db.DB)
	commissionRepo := persistence.NewGormCommissionRepository(db.DB)

	// Initialize store directory cache. The Redis instance is optional;
	// summaries fall back to "Unknown Seller" without it.
	var storeDirectory cache.StoreDirectory
	redisDirectory, err := cache.NewRedisStoreDirectory(cache.RedisDirectoryConfig{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, log)
	if err != nil {
		log.Warn("Redis unavailable, store names will not resolve", zap.Error(err))
		storeDirectory = cache.NopStoreDirectory{}
	} else {
		storeDirectory = redisDirectory
		defer func() {
			if err := redisDirectory.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
	}

	commissionRate, err := decimal.NewFromString(cfg.Commission.Rate)
	if err != nil {
		log.Fatal("Invalid commission rate", zap.String("rate", cfg.Commission.Rate), zap.Error(err))
	}

	// Initialize application services
	orderService := fulfillmentapp.NewOrderService(orderRepo, subOrderRepo)
	subOrderService := fulfillmentapp.NewSubOrderService(subOrderRepo)
	caseService := disputeapp.NewCaseService(
		caseRepo, subOrderRepo, orderRepo, slaConfigRepo, slaTrackingRepo,
		cfg.Fulfillment.ReturnWindowDays,
	)
	slaService := slaapp.NewSlaService(slaConfigRepo, slaTrackingRepo, log)
	commissionService := commissionapp.NewCommissionService(commissionRepo, commissionRate)

	// Wire the event bus: payment capture opens ledger lines, case
	// approvals apply refunds and move items, SLA timestamps follow the
	// case lifecycle.
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(commissionapp.NewSubOrderPaidHandler(commissionService, subOrderRepo, log))
	eventBus.Subscribe(commissionapp.NewCaseApprovedHandler(commissionService, log))
	eventBus.Subscribe(fulfillmentapp.NewCaseApprovedHandler(subOrderRepo, log))
	eventBus.Subscribe(slaapp.NewCaseFirstRespondedHandler(slaService, log))
	eventBus.Subscribe(slaapp.NewCaseClosedHandler(slaService, log))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	orderService.SetEventPublisher(eventBus)
	subOrderService.SetEventPublisher(eventBus)
	caseService.SetEventPublisher(eventBus)
	commissionService.SetEventPublisher(eventBus)

	// Start the SLA sweep scheduler
	sweep := scheduler.NewSlaSweepScheduler(scheduler.SweepConfig{
		Enabled:   cfg.Sla.SweepEnabled,
		Interval:  cfg.Sla.SweepInterval,
		BatchSize: cfg.Sla.SweepBatch,
	}, slaService, log)
	if err := sweep.Start(context.Background()); err != nil {
		log.Fatal("Failed to start SLA sweep scheduler", zap.Error(err))
	}

	// Build handlers and router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.New(log, router.Handlers{
		Order:      handler.NewOrderHandler(orderService),
		SubOrder:   handler.NewSubOrderHandler(subOrderService, storeDirectory),
		Case:       handler.NewCaseHandler(caseService),
		Sla:        handler.NewSlaHandler(slaService),
		Commission: handler.NewCommissionHandler(commissionService, storeDirectory),
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := sweep.Stop(ctx); err != nil {
		log.Error("Error stopping SLA sweep scheduler", zap.Error(err))
	}
	if err := eventBus.Stop(ctx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
}
