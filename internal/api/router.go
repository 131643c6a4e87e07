package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/huertohogar/storefront-api/docs"
	"github.com/huertohogar/storefront-api/internal/api/handler"
	"github.com/huertohogar/storefront-api/internal/api/middleware"
	"github.com/huertohogar/storefront-api/internal/core/ports"
	"github.com/huertohogar/storefront-api/internal/infrastructure/http/handlers"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Logger zerolog.Logger

	Users    ports.UserRepository
	Tokens   middleware.TokenVerifier
	Auth     ports.AuthService
	Products ports.ProductService
	Cart     ports.CartService

	// Idempotency is optional; nil disables Idempotency-Key handling.
	Idempotency handler.IdempotencyGuard
	// Health lists the dependencies checked by /health/ready.
	Health map[string]handlers.Pinger
	// Policy defaults to middleware.DefaultPolicy.
	Policy *middleware.Policy

	CORSOrigins []string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	policy := d.Policy
	if policy == nil {
		policy = middleware.DefaultPolicy()
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: origins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Idempotency-Key"},
	}))
	e.Use(middleware.RequestMetrics())
	e.Use(middleware.Authenticate(d.Tokens, d.Users, policy, d.Logger))
	e.Use(middleware.Authorize(policy))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login)
	e.POST("/api/auth/signin", authHandler.Login)
	e.GET("/api/auth/me", authHandler.Me)

	// --- Catalog ---
	productHandler := handler.NewProductHandler(d.Products)
	e.GET("/api/products", productHandler.List)
	e.GET("/api/products/:id", productHandler.Get)
	e.POST("/api/products", productHandler.Create)
	e.PUT("/api/products/:id", productHandler.Update)
	e.DELETE("/api/products/:id", productHandler.Delete)

	// --- Cart ---
	cartHandler := handler.NewCartHandler(d.Cart, d.Idempotency, d.Logger)
	e.GET("/api/cart", cartHandler.List)
	e.GET("/api/cart/total", cartHandler.Total)
	e.POST("/api/cart/add", cartHandler.Add)
	e.DELETE("/api/cart/clear", cartHandler.Clear)
	e.DELETE("/api/cart/:id", cartHandler.Remove)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Health)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
