package bootstrap

import (
	"strings"

	"lead_server/adapter/in/http"
	"lead_server/config"
	"lead_server/infra/middleware"
	"lead_server/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func NewAPI(cfg *config.Config, deps *Dependencies) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		Prefork:               false,
		StrictRouting:         false,
		CaseSensitive:         false,

		ReadBufferSize:  16384,
		WriteBufferSize: 16384,

		// go-json over encoding/json for serialization throughput
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		// Lead submissions and error reports are small payloads
		BodyLimit: 1 * 1024 * 1024,

		ServerHeader:       "",
		DisableDefaultDate: true,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.RouteMetrics(deps.Metrics))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// CORS: credentials require explicit origins
	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	allowCredentials := true
	if allowOrigins == "" || allowOrigins == "*" {
		if cfg.IsProduction() {
			allowOrigins = ""
			allowCredentials = false
		} else {
			allowOrigins = "http://localhost:3000,http://localhost:5173"
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders:    "X-Request-ID,X-RateLimit-Limit,X-RateLimit-Remaining,X-RateLimit-Reset",
		AllowCredentials: allowCredentials,
		MaxAge:           86400,
	}))

	// Health checks (no auth required)
	healthHandler := http.NewHealthHandler(deps.MongoDB, deps.Redis)
	healthHandler.Register(app)

	// Public routes, with the submission endpoint throttled per client IP
	api := app.Group("/api/v1")
	submitLimiter := middleware.NewSubmitRateLimiter(deps.Redis, cfg.SubmitRateLimit, cfg.SubmitRateWindow)

	// Admin routes behind the bearer token
	admin := app.Group("/api/v1", middleware.AdminAuth(cfg.AdminJWTSecret))

	leadHandler := http.NewLeadHandler(deps.LeadService, deps.SearchService)
	leadHandler.Register(api, admin, submitLimiter.Handler())

	errorHandler := http.NewErrorReportHandler(deps.ErrorService)
	errorHandler.Register(api, admin)

	analyticsHandler := http.NewAnalyticsHandler(deps.AnalyticsService)
	analyticsHandler.Register(admin)

	metricsHandler := http.NewMetricsHandler(deps.Metrics)
	metricsHandler.Register(admin)

	logger.Info("API server initialized successfully")

	return app, nil
}
