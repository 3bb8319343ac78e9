package api

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/velora-dev/auth-core/internal/api/cookie"
	"github.com/velora-dev/auth-core/internal/api/handler"
	"github.com/velora-dev/auth-core/internal/api/middleware"
	"github.com/velora-dev/auth-core/internal/core/domain"
	"github.com/velora-dev/auth-core/internal/core/ports"
	"github.com/velora-dev/auth-core/internal/infrastructure/config"
	"github.com/velora-dev/auth-core/internal/realtime"
)

// Deps bundles the collaborators the HTTP layer wires together. The raw
// datastore handles are only used by the readiness probe.
type Deps struct {
	Config    *config.Config
	Auth      ports.AuthService
	Users     ports.UserService
	Audit     handler.AuditRecorder
	RateStore middleware.LoginRateStore
	Hub       *realtime.Hub
	Postgres  *pgxpool.Pool
	Redis     *redis.Client
	Mongo     *mongo.Database
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     d.Config.Cookie.AllowOrigins,
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddleware("auth"))

	// --- Dependencies ---
	policy := cookie.NewPolicy(d.Config.Cookie.AllowOrigins, d.Config.Cookie.Domain)
	authHandler := handler.NewAuthHandler(d.Auth, d.Users, policy, d.Audit)
	userHandler := handler.NewUserHandler(d.Users, d.Audit)
	wsHandler := handler.NewWSHandler(d.Hub, d.Config.Cookie.AllowOrigins, d.Log)

	authRequired := middleware.Auth(d.Auth, policy, d.Log)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	loginLimit := middleware.LoginRateLimit(d.Config.RateLimit, d.RateStore, d.Log)

	// --- Auth routes ---
	// Logout and refresh stay outside the Auth middleware: both must work
	// when the access token is already expired.
	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login, loginLimit)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/register", authHandler.Register, authRequired, adminOnly)
	auth.GET("/me", authHandler.Me, authRequired)
	auth.PUT("/me", authHandler.UpdateMe, authRequired)

	// --- User administration (admin only) ---
	users := e.Group("/users", authRequired, adminOnly)
	users.GET("", userHandler.List)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	// --- Realtime notices ---
	e.GET("/ws", wsHandler.Serve, authRequired)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Postgres, d.Redis, d.Mongo)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Operational surface ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
