package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/caredesk/user-directory/internal/api/handler"
	"github.com/caredesk/user-directory/internal/api/middleware"
	"github.com/caredesk/user-directory/internal/core/ports"
	"github.com/caredesk/user-directory/internal/infrastructure/http/handlers"
)

// Dependencies carries the wired services the router exposes over HTTP.
type Dependencies struct {
	Directory ports.DirectoryService
	Accounts  ports.AccountService
	Verifier  middleware.TokenVerifier
	Mongo     *mongo.Database
	Redis     *redis.Client // nil when the cursor cache is in-process
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("directory"))

	// --- Handlers ---
	directoryHandler := handler.NewDirectoryHandler(deps.Directory)
	accountHandler := handler.NewAccountHandler(deps.Accounts)
	auth := middleware.Auth(deps.Verifier)
	adminOnly := middleware.RBAC()

	// --- Public routes ---
	e.POST("/v1/auth/login", accountHandler.Login)

	// --- Directory routes ---
	e.GET("/v1/users", directoryHandler.List, auth)
	e.POST("/v1/users/lookup", directoryHandler.Lookup, auth, adminOnly)

	// --- Account routes (admin only) ---
	e.POST("/v1/users", accountHandler.Create, auth, adminOnly)
	e.PATCH("/v1/users/:id", accountHandler.Update, auth, adminOnly)
	e.POST("/v1/users/:id/enable", accountHandler.Enable, auth, adminOnly)
	e.POST("/v1/users/:id/disable", accountHandler.Disable, auth, adminOnly)
	e.DELETE("/v1/users", accountHandler.Delete, auth, adminOnly)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
