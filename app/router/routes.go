// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/eventdesk/eventdesk/app/dto"
	"github.com/eventdesk/eventdesk/app/handlers"
	"github.com/eventdesk/eventdesk/app/middleware"
	"github.com/eventdesk/eventdesk/config"
	"github.com/eventdesk/eventdesk/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app              *fiber.App
	cfg              *config.Config
	eventHandler     handlers.EventHandlerInterface
	shortLinkHandler handlers.ShortLinkHandlerInterface
	rateLimitHandler handlers.RateLimitHandlerInterface
	authMiddleware   *middleware.AuthMiddleware
	limitMiddleware  *middleware.RateLimitMiddleware
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	cfg *config.Config,
	eventHandler handlers.EventHandlerInterface,
	shortLinkHandler handlers.ShortLinkHandlerInterface,
	rateLimitHandler handlers.RateLimitHandlerInterface,
	authMiddleware *middleware.AuthMiddleware,
	limitMiddleware *middleware.RateLimitMiddleware,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      "EventDesk API",
		ServerHeader: "EventDesk",
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ProxyHeader:  cfg.Server.ProxyHeader,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:              app,
		cfg:              cfg,
		eventHandler:     eventHandler,
		shortLinkHandler: shortLinkHandler,
		rateLimitHandler: rateLimitHandler,
		authMiddleware:   authMiddleware,
		limitMiddleware:  limitMiddleware,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	// Public redirect surface. No auth, no coarse limiter; redirects are the
	// hot path and the flow tolerates analytics loss.
	r.app.Get("/s/:token", r.shortLinkHandler.Visit)

	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := r.app.Group("/api/v1")
	api.Get("/health", r.healthCheck)

	// Coarse per-IP ceiling in front of everything under /api/v1
	api.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Security.GlobalRateLimit,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	// Limiter probe endpoint, open so other services can meter themselves
	api.Post("/rate-limit/check", r.rateLimitHandler.Check)

	// Management API behind admin JWT
	events := api.Group("/events", r.authMiddleware.AdminAuthenticate())
	events.Post("/", r.eventHandler.Create, r.limitMiddleware.Limit("event_create"))
	events.Get("/", r.eventHandler.List)
	events.Get("/:uuid", r.eventHandler.Get)
	events.Post("/:uuid/default", r.eventHandler.SetDefault)
	events.Post("/:uuid/archive", r.eventHandler.Archive)
	events.Get("/:uuid/clicks.csv", r.eventHandler.DownloadClicksCSV)
	events.Get("/:uuid/clicks.xlsx", r.eventHandler.DownloadClicksExcel)

	links := api.Group("/shortlinks", r.authMiddleware.AdminAuthenticate())
	links.Post("/", r.shortLinkHandler.Set, r.limitMiddleware.Limit("short_link_set"))
	links.Get("/:key", r.shortLinkHandler.GetByKey)
	links.Get("/verify/:token", r.shortLinkHandler.Verify)
	links.Post("/expire", r.shortLinkHandler.Expire)

	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware comes first so every log line can carry it
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins:     r.cfg.Security.AllowedOrigins,
		AllowMethods:     r.cfg.Security.AllowedMethods,
		AllowHeaders:     r.cfg.Security.AllowedHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: r.cfg.Security.AllowCredentials,
		MaxAge:           r.cfg.Security.CORSMaxAge,
	}))

	if r.cfg.Server.EnableCompression {
		r.app.Use(compress.New(compress.Config{
			Level: compress.LevelBestSpeed,
		}))
	}

	if r.cfg.Metrics.Enabled {
		r.app.Use(middleware.Metrics())
	}

	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","request_id":"${locals:requestid}","method":"${method}","path":"${path}","ip":"${ip}","status":${status},"latency":"${latency}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "healthy",
			"timestamp": utils.UTCNow().Unix(),
		},
	})
}

func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": c.Locals("requestid"),
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error %d: %v", code, err)

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": c.Locals("requestid"),
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
