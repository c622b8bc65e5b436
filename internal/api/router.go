package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/film-catalog/internal/api/handler"
	"github.com/99minutos/film-catalog/internal/api/middleware"
	"github.com/99minutos/film-catalog/internal/core/domain"
	"github.com/99minutos/film-catalog/internal/core/ports"
	"github.com/99minutos/film-catalog/internal/infrastructure/http/handlers"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Auth   ports.AuthService
	Films  ports.FilmService
	Sync   ports.SyncService
	Tokens ports.TokenVerifier

	APIKey       middleware.APIKeyConfig
	HealthChecks map[string]handlers.Check

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "films",
		Subsystem:  "http",
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || strings.HasPrefix(c.Path(), "/health")
		},
	}))
	e.Use(middleware.APIKey(deps.APIKey))

	// --- Health probes (no key required) and metrics (key required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.HealthChecks)

	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))

	authn := middleware.Authenticate(deps.Tokens)
	userOnly := middleware.RBAC(domain.RoleUser)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	authHandler := handler.NewAuthHandler(deps.Auth)
	filmHandler := handler.NewFilmHandler(deps.Films, deps.Logger)
	adminHandler := handler.NewAdminHandler(deps.Sync, deps.Logger)

	api := e.Group("/api")

	// --- Auth routes ---
	api.POST("/auth/signup", authHandler.SignUp)
	api.POST("/auth/login", authHandler.Login)

	// --- Film routes ---
	api.GET("/movies", filmHandler.List)
	api.GET("/movies/:id", filmHandler.Get, authn, userOnly)
	api.POST("/movies", filmHandler.Create, authn, adminOnly)
	api.PUT("/movies/:id", filmHandler.Update, authn, adminOnly)
	api.DELETE("/movies/:id", filmHandler.Delete, authn, adminOnly)

	// --- Admin routes ---
	admin := api.Group("/admin", authn, adminOnly)
	admin.POST("/sync-films", adminHandler.SyncFilms)

	return e
}
