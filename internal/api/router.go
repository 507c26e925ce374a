package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/ahorrat/weekly-planner/docs"
	"github.com/ahorrat/weekly-planner/internal/api/handler"
	"github.com/ahorrat/weekly-planner/internal/api/metrics"
	"github.com/ahorrat/weekly-planner/internal/api/middleware"
	"github.com/ahorrat/weekly-planner/internal/core/ports"
)

// Planner is what the router needs from the planner service.
type Planner interface {
	handler.Workspaces
	Open() int
}

// Deps are the collaborators the HTTP layer is wired to.
type Deps struct {
	Log       zerolog.Logger
	JWTSecret string
	Auth      ports.AuthService
	Planner   Planner
	Exporter  handler.WeekExporter
	// Pingers are checked by the readiness probe, keyed by dependency name.
	Pingers map[string]ports.Pinger

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "planner",
		Subsystem:  "http",
		Registerer: d.Registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	plannerHandler := handler.NewPlannerHandler(d.Planner)
	exportHandler := handler.NewExportHandler(d.Planner, d.Exporter)
	metrics.RegisterOpenWorkspaces(d.Planner.Open)

	authed := []echo.MiddlewareFunc{middleware.Auth(d.JWTSecret), middleware.Session(d.Auth)}

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/guest", authHandler.Guest)
	e.GET("/auth/session", authHandler.Session, authed...)
	e.POST("/auth/logout", authHandler.Logout, authed...)

	// --- Planner routes ---
	v1 := e.Group("/v1", authed...)
	v1.GET("/planner", plannerHandler.Planner)
	v1.GET("/week", plannerHandler.Week)
	v1.GET("/week/:day", plannerHandler.Day)
	v1.GET("/advisories", plannerHandler.Advisories)

	v1.POST("/roles", plannerHandler.CreateRole)
	v1.PUT("/roles/:id", plannerHandler.UpdateRole)
	v1.DELETE("/roles/:id", plannerHandler.DeleteRole)

	v1.POST("/objectives", plannerHandler.CreateObjective)
	v1.PUT("/objectives/:id", plannerHandler.UpdateObjective)
	v1.DELETE("/objectives/:id", plannerHandler.DeleteObjective)

	v1.POST("/activities", plannerHandler.CreateActivity)
	v1.PUT("/activities/:id", plannerHandler.UpdateActivity)
	v1.POST("/activities/:id/toggle", plannerHandler.ToggleActivity)
	v1.DELETE("/activities/:id", plannerHandler.DeleteActivity)

	v1.GET("/export/pdf", exportHandler.PDF)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Pingers)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

