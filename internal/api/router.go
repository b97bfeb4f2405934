package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/sirpyerre/transactions-api/docs"
	"github.com/sirpyerre/transactions-api/internal/api/handler"
	"github.com/sirpyerre/transactions-api/internal/api/middleware"
	"github.com/sirpyerre/transactions-api/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	AuthService        ports.AuthService
	TransactionService ports.TransactionService
	Tokens             ports.TokenService
	ReadinessChecks    map[string]handler.CheckFunc
	AllowedOrigins     []string
	Logger             zerolog.Logger

	// Registry receives the HTTP request metrics. A fresh registry is
	// created when nil.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.BodyLimit("1M"))
	if len(deps.AllowedOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     deps.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType},
			AllowCredentials: true,
		}))
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: reg,
	}))

	// --- Operational routes ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.ReadinessChecks)

	e.GET("/", healthHandler.Liveness)                  // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)

	// --- Authenticated routes ---
	// Middleware is attached per route; an empty-prefix group would also
	// answer unknown paths with 401 instead of 404. Every role may use every
	// route below, ownership is decided per transaction by the service.
	authed := middleware.Auth(deps.Tokens, deps.AuthService)

	e.GET("/me", authHandler.Me, authed)

	txHandler := handler.NewTransactionHandler(deps.TransactionService)
	e.POST("/transactions", txHandler.Create, authed)
	e.GET("/transactions", txHandler.List, authed)
	e.GET("/transactions/:id", txHandler.Get, authed)
	e.PUT("/transactions/:id", txHandler.Update, authed)
	e.DELETE("/transactions/:id", txHandler.Delete, authed)

	return e
}
