package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/taskpilot/taskpilot/docs"
	"github.com/taskpilot/taskpilot/internal/api/handler"
	"github.com/taskpilot/taskpilot/internal/api/middleware"
	"github.com/taskpilot/taskpilot/internal/core/ports"
	"github.com/taskpilot/taskpilot/pkg/logger"
)

// Services are the use cases the HTTP layer exposes.
type Services struct {
	Guard       ports.AccessGuard
	Auth        ports.AuthService
	Projects    ports.ProjectService
	Tasks       ports.TaskService
	Forecasts   ports.ForecastService
	Simulations ports.SimulationService
	Admin       ports.AdminService
	Automation  ports.AutomationFeedService
}

type Options struct {
	Logger       zerolog.Logger
	HealthChecks map[string]handler.Check
	// AuthRateLimit throttles login and register per client IP. Zero disables it.
	AuthRateLimit rate.Limit
	AuthBurst     int
	// DisableSwagger leaves /swagger/* unregistered.
	DisableSwagger bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	// HTTP metrics get their own registry so several routers can coexist in
	// one process; /metrics serves them together with the default registry.
	httpMetrics := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(opts.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "taskpilot",
		Registerer: httpMetrics,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	authenticated := middleware.Authenticate(svc.Guard)

	// --- Auth ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	auth := e.Group("/api/auth")
	throttle := authRateLimiter(opts)
	auth.POST("/register", authHandler.Register, throttle...)
	auth.POST("/login", authHandler.Login, throttle...)
	auth.GET("/me", authHandler.Me, authenticated)
	auth.POST("/logout", authHandler.Logout)

	// --- Projects ---
	projectHandler := handler.NewProjectHandler(svc.Projects)
	projects := e.Group("/api/projects", authenticated)
	projects.GET("", projectHandler.List)
	projects.POST("", projectHandler.Create)
	projects.GET("/:id", projectHandler.Get)
	projects.PUT("/:id", projectHandler.Update)
	projects.DELETE("/:id", projectHandler.Delete)

	// --- Tasks ---
	taskHandler := handler.NewTaskHandler(svc.Tasks)
	tasks := e.Group("/api/tasks", authenticated)
	tasks.GET("", taskHandler.List)
	tasks.POST("", taskHandler.Create)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.PATCH("/:id/progress", taskHandler.UpdateProgress)
	tasks.DELETE("/:id", taskHandler.Delete)

	// --- Forecasts and simulations ---
	forecastHandler := handler.NewForecastHandler(svc.Forecasts, svc.Simulations)
	e.GET("/api/forecasts", forecastHandler.ListForecasts, authenticated)
	e.GET("/api/forecasts/latest", forecastHandler.LatestForecasts, authenticated)
	e.GET("/api/simulations", forecastHandler.ListSimulations, authenticated)

	// --- Admin ---
	adminHandler := handler.NewAdminHandler(svc.Admin)
	admin := e.Group("/api/admin", middleware.RequireAdmin(svc.Guard))
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/users/:id", adminHandler.GetUser)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)

	// --- Automation engine feed (no auth) ---
	automationHandler := handler.NewAutomationHandler(svc.Automation)
	feed := e.Group("/api/webhooks/n8n")
	feed.GET("/projects", automationHandler.Projects)
	feed.GET("/tasks", automationHandler.Tasks)
	feed.GET("/forecasts/latest", automationHandler.LatestForecasts)
	feed.GET("/project-owner-email/:id", automationHandler.ProjectOwner)
	feed.GET("/task-owner-email/:id", automationHandler.TaskOwner)

	// --- Operations ---
	healthHandler := handler.NewHealthHandler(opts.HealthChecks)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{httpMetrics, prometheus.DefaultGatherer},
	}))
	if !opts.DisableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	return e
}

func authRateLimiter(opts Options) []echo.MiddlewareFunc {
	if opts.AuthRateLimit <= 0 {
		return nil
	}
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      opts.AuthRateLimit,
		Burst:     opts.AuthBurst,
		ExpiresIn: 3 * time.Minute,
	})
	return []echo.MiddlewareFunc{echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
	})}
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	log = logger.Component(log, "http")
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= 500 {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
