// Package main provides the main entry point for the EventDesk event management service
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eventdesk/eventdesk/app/handlers"
	"github.com/eventdesk/eventdesk/app/middleware"
	"github.com/eventdesk/eventdesk/app/router"
	"github.com/eventdesk/eventdesk/app/services"
	businessflow "github.com/eventdesk/eventdesk/business_flow"
	"github.com/eventdesk/eventdesk/config"
	"github.com/eventdesk/eventdesk/models"
	"github.com/eventdesk/eventdesk/repository"
	"github.com/eventdesk/eventdesk/storage"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application holds the wired components
type Application struct {
	router    router.Router
	config    *config.Config
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting EventDesk application...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)
		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down gracefully...")

	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging points the standard logger at a rotating file when configured
func setupLogging(cfg config.LoggingConfig) {
	if cfg.Output != "file" {
		return
	}
	log.SetOutput(&lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	})
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.AutoMigrate(&models.Event{}, &models.Property{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	rc := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisAddr, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor periodically pings Redis to surface connectivity
// issues in the logs. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeAssetProvisioner selects the object-storage or static provisioner
func initializeAssetProvisioner(cfg *config.Config) (services.AssetProvisioner, error) {
	if !cfg.Assets.Enabled {
		log.Println("Asset provisioning disabled, using static page URLs")
		return &services.StaticAssetProvisioner{PublicBaseURL: cfg.Assets.PublicBaseURL}, nil
	}
	return services.NewMinIOAssetProvisioner(&cfg.Assets)
}

// initializeApplication wires repositories, flows, services, and the router
func initializeApplication(cfg *config.Config) (*Application, error) {
	var stopFuncs []func()

	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	cancel := startCacheHealthMonitor(context.Background(), rc, 30*time.Second)
	stopFuncs = append(stopFuncs, cancel)

	// Storage scopes
	cache := storage.NewRedisCache(rc, cfg.Cache.RedisPrefix)
	props := storage.NewPostgresProperties(db)

	// Repositories
	eventRepo := repository.NewEventRepository(db)
	shortLinkRepo := repository.NewShortLinkRepository(props)

	// Services
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, err
	}

	assetProvisioner, err := initializeAssetProvisioner(cfg)
	if err != nil {
		return nil, err
	}

	rateLimiter := services.NewRateLimiter(cache, map[string]services.RateLimitPolicy{
		"event_create":   {Window: cfg.RateLimit.EventCreateWindow, Max: cfg.RateLimit.EventCreateMax},
		"short_link_set": {Window: cfg.RateLimit.ShortLinkSetWindow, Max: cfg.RateLimit.ShortLinkSetMax},
	}, services.RateLimitPolicy{Window: cfg.RateLimit.DefaultWindow, Max: cfg.RateLimit.DefaultMax})

	// Business flows
	shortLinkFlow := businessflow.NewShortLinkFlow(shortLinkRepo, cfg.ShortLink.BaseURL)
	eventFlow := businessflow.NewEventFlow(eventRepo, shortLinkFlow, assetProvisioner, cfg.ShortLink.BaseURL)
	reportFlow := businessflow.NewEventReportFlow(eventRepo, shortLinkRepo)

	// Handlers and middleware
	eventHandler := handlers.NewEventHandler(eventFlow, reportFlow)
	shortLinkHandler := handlers.NewShortLinkHandler(shortLinkFlow)
	rateLimitHandler := handlers.NewRateLimitHandler(rateLimiter)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	limitMiddleware := middleware.NewRateLimitMiddleware(rateLimiter)

	appRouter := router.NewFiberRouter(cfg, eventHandler, shortLinkHandler, rateLimitHandler, authMiddleware, limitMiddleware)

	return &Application{
		router:    appRouter,
		config:    cfg,
		server:    appRouter.GetApp(),
		stopFuncs: stopFuncs,
	}, nil
}
