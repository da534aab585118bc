package router

import (
	"time"

	"tillpoint/internal/config"
	"tillpoint/internal/handler"
	"tillpoint/internal/ledger"
	"tillpoint/internal/middleware"
	"tillpoint/internal/repository"
	"tillpoint/internal/service"
	"tillpoint/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	registerRepo := repository.NewRegisterRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	saleRepo := repository.NewSaleRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	thresholds := ledger.Thresholds{
		Minor: cfg.MinorThreshold(),
		Major: cfg.MajorThreshold(),
	}
	authSvc := service.NewAuthService(userRepo, cfg)
	registerSvc := service.NewRegisterService(registerRepo, sessionRepo)
	sessionSvc := service.NewSessionService(sessionRepo, registerRepo, thresholds, dispatcher)
	saleSvc := service.NewSaleService(saleRepo, sessionRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	registersH := handler.NewRegisterHandler(registerSvc)
	sessionsH := handler.NewSessionHandler(sessionSvc)
	salesH := handler.NewSaleHandler(saleSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		anyRole := middleware.RequireRole(middleware.RoleOperator, middleware.RoleSupervisor, middleware.RoleAdmin)
		backOffice := middleware.RequireRole(middleware.RoleSupervisor, middleware.RoleAdmin)
		adminOnly := middleware.RequireRole(middleware.RoleAdmin)

		sessions := v1.Group("/sessions")
		{
			sessions.POST("/open", anyRole, sessionsH.Open)
			sessions.POST("/close", anyRole, sessionsH.Close)
			sessions.POST("/movements", anyRole, sessionsH.AddMovement)
			sessions.GET("/active", anyRole, sessionsH.GetActive)
			sessions.GET("/history", backOffice, sessionsH.History)
			sessions.POST("/archive", adminOnly, sessionsH.Archive)
			sessions.GET("/:id", anyRole, sessionsH.Get)
			sessions.GET("/:id/movements", anyRole, sessionsH.ListMovements)
		}

		sales := v1.Group("/sales")
		{
			sales.POST("", anyRole, salesH.Record)
			sales.GET("/:id", anyRole, salesH.Get)
			sales.POST("/:id/refund", backOffice, salesH.Refund)
		}

		// Registers — everyone can read, admins manage
		v1.GET("/registers", anyRole, registersH.List)
		registers := v1.Group("/registers", adminOnly)
		{
			registers.POST("", registersH.Create)
			registers.PUT("/:id", registersH.Update)
			registers.DELETE("/:id", registersH.Deactivate)
			registers.PATCH("/:id/reactivate", registersH.Reactivate)
		}

		users := v1.Group("/users", adminOnly)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
