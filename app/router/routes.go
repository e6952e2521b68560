// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/amirphl/referral-hub/app/dto"
	"github.com/amirphl/referral-hub/app/handlers"
	"github.com/amirphl/referral-hub/app/middleware"
	_ "github.com/amirphl/referral-hub/docs"
	"github.com/amirphl/referral-hub/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cache"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
)

// IntakePath is served outside /api/v1 for compatibility with existing form clients
const IntakePath = "/api/referral-requests"

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Config holds the HTTP settings the router needs
type Config struct {
	AppName         string
	Version         string
	AllowOrigins    []string
	BodyLimit       int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RateLimit       int // requests per minute per IP on /api/v1
	IntakeRateLimit int // requests per minute per IP on the intake endpoint
	CacheExpiration time.Duration
	EnableDocs      bool
	EnableMetrics   bool
	MetricsPath     string
	AccessLog       io.Writer // nil writes access logs to stdout
}

// DefaultConfig returns settings suitable for tests and local runs
func DefaultConfig() Config {
	return Config{
		AppName:         "Referral Hub API",
		Version:         "1.0.0",
		AllowOrigins:    []string{"*"},
		BodyLimit:       1 * 1024 * 1024,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     60 * time.Second,
		RateLimit:       2000,
		IntakeRateLimit: 20,
		CacheExpiration: 30 * time.Second,
		EnableMetrics:   true,
		MetricsPath:     "/metrics",
	}
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app                    *fiber.App
	cfg                    Config
	catalogHandler         handlers.CatalogHandlerInterface
	referralRequestHandler handlers.ReferralRequestHandlerInterface
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	cfg Config,
	catalogHandler handlers.CatalogHandlerInterface,
	referralRequestHandler handlers.ReferralRequestHandlerInterface,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: "Referral-Hub",
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.BodyLimit,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:                    app,
		cfg:                    cfg,
		catalogHandler:         catalogHandler,
		referralRequestHandler: referralRequestHandler,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	// Global middleware
	r.setupMiddleware()

	if r.cfg.EnableMetrics {
		path := r.cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	// API routes
	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	// API documentation route (development only)
	if r.cfg.EnableDocs {
		api.Get("/swagger.json", r.serveSwaggerJSON)
		log.Println("API documentation enabled for development")
	}

	api.Use(newLimiter(r.cfg.RateLimit, func(c fiber.Ctx) error {
		return c.Status(fiber.StatusTooManyRequests).JSON(dto.Failure("Too many requests. Please try again later.", "RATE_LIMIT_EXCEEDED", nil))
	}, func(c fiber.Ctx) bool {
		return c.Path() == "/api/v1/health"
	}))

	referrals := api.Group("/referrals")
	referrals.Get("/", r.catalogHandler.List)
	referrals.Get("/export", r.catalogHandler.Export)
	referrals.Get("/:id", r.catalogHandler.Get)
	referrals.Get("/:id/requests", r.referralRequestHandler.ListByReferral)

	api.Get("/filters", r.catalogHandler.FilterOptions)
	api.Get("/tags/popular", r.catalogHandler.PopularTags)
	api.Get("/companies/top", r.catalogHandler.TopCompanies)

	users := api.Group("/users")
	users.Get("/:id/referrals", r.catalogHandler.ByAuthor)
	users.Get("/:id/referral-requests", r.referralRequestHandler.ListByRequester)

	// Intake keeps its own body shape, including when rate limited
	r.app.Post(IntakePath, newLimiter(r.cfg.IntakeRateLimit, func(c fiber.Ctx) error {
		return c.Status(fiber.StatusTooManyRequests).JSON(dto.IntakeErrorResponse{
			Error: "Too many requests. Please try again later.",
		})
	}, nil), r.referralRequestHandler.Submit)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

func newLimiter(maxPerMinute int, limitReached fiber.Handler, next func(c fiber.Ctx) bool) fiber.Handler {
	if maxPerMinute <= 0 {
		return func(c fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        maxPerMinute,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP() // Rate limit by IP
		},
		LimitReached: limitReached,
		Next:         next,
	})
}

// SetupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Recovery sits right after the request id so panics anywhere below are caught
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				requestid.FromContext(c),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000, // 1 year
		ContentSecurityPolicy:     "default-src 'self'; img-src 'self' data: https:; connect-src 'self' https:; frame-ancestors 'none';",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginResourcePolicy: "cross-origin",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	origins := r.cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"X-Response-Time",
			"Content-Disposition",
		},
		MaxAge: utils.CORSMaxAge,
	}))

	// Compression middleware for performance
	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Lookup endpoints change only when the catalog is refreshed
	if r.cfg.CacheExpiration > 0 {
		r.app.Use(cache.New(cache.Config{
			Next: func(c fiber.Ctx) bool {
				if c.Method() != fiber.MethodGet {
					return true
				}
				path := c.Path()
				return path != "/api/v1/filters" && path != "/api/v1/tags/popular" && path != "/api/v1/companies/top"
			},
			// limit changes the body, so the query string is part of the key
			KeyGenerator: func(c fiber.Ctx) string {
				return c.OriginalURL()
			},
			Expiration: r.cfg.CacheExpiration,
		}))
	}

	// Access log
	loggerCfg := logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${respHeader:X-Request-ID}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health" || c.Path() == r.cfg.MetricsPath
		},
	}
	if r.cfg.AccessLog != nil {
		loggerCfg.Stream = r.cfg.AccessLog
	} else {
		loggerCfg.Stream = os.Stdout
	}
	r.app.Use(logger.New(loggerCfg))

	if r.cfg.EnableMetrics {
		r.app.Use(middleware.Metrics(r.cfg.MetricsPath, "/api/v1/health"))
	}

	r.app.Use(r.securityMiddleware)
}

// Custom security middleware
func (r *FiberRouter) securityMiddleware(c fiber.Ctx) error {
	c.Set("X-Response-Time", utils.UTCNow().Format(time.RFC3339))
	return c.Next()
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

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.Success("Service is healthy", fiber.Map{
		"status":    "ok",
		"timestamp": utils.UTCNow().Unix(),
		"version":   r.cfg.Version,
		"service":   "referral-hub-api",
	}))
}

// Serve the Swagger document registered by the docs package
func (r *FiberRouter) serveSwaggerJSON(c fiber.Ctx) error {
	doc, err := swag.ReadDoc()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Failure("Failed to load Swagger documentation", "SWAGGER_LOAD_ERROR", nil))
	}

	c.Set("Content-Type", "application/json")
	return c.SendString(doc)
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.Failure("The requested resource was not found", "NOT_FOUND", fiber.Map{
		"path":      c.Path(),
		"method":    c.Method(),
		"requestId": requestid.FromContext(c),
	}))
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Retrieve the custom status code if it's a fiber.*Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf(`{"level":"error","event":"request_error","status":%d,"path":"%s","error":"%v"}`, code, c.Path(), err)

	if strings.HasPrefix(c.Path(), IntakePath) && code >= fiber.StatusInternalServerError {
		return c.Status(code).JSON(dto.IntakeErrorResponse{Error: "Failed to process request"})
	}

	return c.Status(code).JSON(dto.Failure("An internal server error occurred", "INTERNAL_ERROR", fiber.Map{
		"timestamp": utils.UTCNow().Unix(),
		"requestId": requestid.FromContext(c),
	}))
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
