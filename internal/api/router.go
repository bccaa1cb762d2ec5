package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/investbank/deal-pipeline/docs"
	"github.com/investbank/deal-pipeline/internal/api/handler"
	"github.com/investbank/deal-pipeline/internal/api/middleware"
	"github.com/investbank/deal-pipeline/internal/core/domain"
	"github.com/investbank/deal-pipeline/internal/core/ports"
	"github.com/investbank/deal-pipeline/internal/core/service"
	"github.com/investbank/deal-pipeline/internal/core/token"
	mongostore "github.com/investbank/deal-pipeline/internal/infrastructure/db/mongo"
	redisstore "github.com/investbank/deal-pipeline/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The audit sink is passed in because its worker lifecycle belongs to main.
func NewRouter(db *mongo.Database, rdb *redis.Client, tokens *token.Service, audit ports.AuditSink, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("dealpipeline"))

	// --- Dependencies ---
	accountRepo := mongostore.NewAccountRepository(db)
	dealRepo := mongostore.NewDealRepository(db)
	limiter := redisstore.NewLoginLimiter(rdb, log)

	authService := service.NewAuthService(accountRepo, tokens, audit, log)
	dealService := service.NewDealService(dealRepo, audit, log)
	userService := service.NewUserService(accountRepo, audit, log)

	authHandler := handler.NewAuthHandler(authService, limiter)
	dealHandler := handler.NewDealHandler(dealService)
	userHandler := handler.NewUserHandler(userService)
	adminHandler := handler.NewAdminHandler(userService)
	tokenHandler := handler.NewTokenHandler(tokens)

	resolve := middleware.ResolveIdentity(tokens, accountRepo, audit, log)

	// --- Auth routes (public) ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// --- Token diagnostics ---
	tok := e.Group("/api/token", resolve)
	tok.GET("/verify", tokenHandler.Verify)
	tok.POST("/decode", tokenHandler.Decode)
	tok.GET("/me", tokenHandler.Me)

	// --- Current user ---
	users := e.Group("/api/users", resolve, middleware.RequireAuth())
	users.GET("/me", userHandler.Me)

	// --- Deals (authentication required; per-deal rules live in the policy engine) ---
	deals := e.Group("/api/deals", resolve, middleware.RequireAuth())
	deals.POST("", dealHandler.Create)
	deals.GET("", dealHandler.List)
	deals.GET("/:id", dealHandler.Get)
	deals.PUT("/:id", dealHandler.Update)
	deals.PUT("/:id/stage", dealHandler.UpdateStage)
	deals.PUT("/:id/value", dealHandler.UpdateValue)
	deals.POST("/:id/notes", dealHandler.AddNote)
	deals.DELETE("/:id", dealHandler.Delete)

	// --- Admin user management ---
	admin := e.Group("/api/admin/users", resolve, middleware.RequireAuth(), middleware.RequireRole(domain.RoleAdmin))
	admin.POST("", adminHandler.CreateUser)
	admin.GET("", adminHandler.ListUsers)
	admin.GET("/:id", adminHandler.GetUser)
	admin.PUT("/:id/status", adminHandler.UpdateUserStatus)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Operational surfaces ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
