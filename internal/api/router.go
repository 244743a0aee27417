package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/peoplehub/accounts-api/docs"
	"github.com/peoplehub/accounts-api/internal/api/handler"
	"github.com/peoplehub/accounts-api/internal/api/middleware"
	"github.com/peoplehub/accounts-api/internal/core/domain"
	"github.com/peoplehub/accounts-api/internal/core/service"
	"github.com/peoplehub/accounts-api/internal/infrastructure/config"
	mongodb "github.com/peoplehub/accounts-api/internal/infrastructure/db/mongo"
	redisdb "github.com/peoplehub/accounts-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// recorder feeds the async registration audit pipeline; it may be nil.
func NewRouter(db *mongo.Database, rdb *redis.Client, recorder service.RegistrationRecorder, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("accounts"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	roleRepo := mongodb.NewRoleRepository(db)
	resolver := service.NewRoleResolver(roleRepo, log)
	tokenCache := redisdb.NewTokenPairCache(rdb)
	issuer := service.NewJWTTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, tokenCache, log)

	registration := service.NewRegistrationService(userRepo, resolver, issuer, recorder, service.RegistrationConfig{
		BaseURL:     cfg.BaseURL,
		BcryptCost:  cfg.BcryptCost,
		CallTimeout: cfg.DependencyTimeout,
	}, log)
	authHandler := handler.NewAuthHandler(registration)

	userHandler := handler.NewUserHandler(service.NewUserService(userRepo, log))
	authMiddleware := middleware.Auth(cfg.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)

	// --- User routes (token required) ---
	users := e.Group("/users", authMiddleware)
	users.GET("/get_users", userHandler.GetUsers, middleware.RBAC(domain.RoleAdmin))
	users.GET("/get_single_user", userHandler.GetSingleUser)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
