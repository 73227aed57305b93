package app

import (
	"log/slog"
	"time"

	"github.com/arcadia/loyalty/internal/auth"
	"github.com/arcadia/loyalty/internal/guard"
	"github.com/arcadia/loyalty/internal/handler"
	adminhandler "github.com/arcadia/loyalty/internal/handler/admin"
	"github.com/arcadia/loyalty/internal/ledger"
	"github.com/arcadia/loyalty/internal/repository"
	"github.com/arcadia/loyalty/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool   *pgxpool.Pool
	JWTMgr *auth.JWTManager
	Logger *slog.Logger
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	pool := deps.Pool
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	// Repositories
	userRepo := repository.NewUserRepository()
	txRepo := repository.NewTransactionRepository()
	promoRepo := repository.NewPromotionRepository()
	rewardRepo := repository.NewRewardRepository()
	actionRepo := repository.NewAdminActionRepository()
	analyticsRepo := repository.NewAnalyticsRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Ledger engine
	engine := ledger.NewEngine(userRepo, txRepo, promoRepo, rewardRepo, outboxRepo)

	// Services
	authSvc := service.NewAuthService(pool, userRepo, outboxRepo, jwtMgr)
	userSvc := service.NewUserService(pool, userRepo, txRepo)
	promoSvc := service.NewPromotionService(pool, promoRepo, engine, logger)
	rewardSvc := service.NewRewardService(pool, rewardRepo, actionRepo, outboxRepo, engine, logger)
	topUpSvc := service.NewTopUpService(pool, actionRepo, engine, logger)
	reportSvc := service.NewReportService(pool, analyticsRepo, txRepo, actionRepo)

	// Handlers
	healthHandler := handler.NewHealthHandler(pool)
	authHandler := handler.NewAuthHandler(authSvc)
	promoHandler := handler.NewPromotionHandler(promoSvc)
	rewardHandler := handler.NewRewardHandler(rewardSvc)
	userHandler := handler.NewUserHandler(userSvc, promoSvc, rewardSvc)

	// Admin handlers
	promoAdmin := adminhandler.NewPromotionHandler(promoSvc)
	rewardAdmin := adminhandler.NewRewardHandler(rewardSvc)
	topUpAdmin := adminhandler.NewTopUpHandler(topUpSvc)
	userAdmin := adminhandler.NewUserHandler(userSvc)
	reportAdmin := adminhandler.NewReportHandler(reportSvc)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS)
	r.Use(handler.JSONContentType)

	// Health and metrics (no auth)
	r.Get("/health", healthHandler.Health)
	r.Method("GET", "/metrics", promhttp.Handler())

	// Auth routes (no auth). Rate limited per client IP to slow credential
	// stuffing; the per-account lockout lives in the auth service.
	authLimiter := guard.NewRateLimiter(30, time.Minute)
	r.Route("/auth", func(r chi.Router) {
		r.Use(handler.RateLimit(authLimiter))
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
	})

	// Public catalog (no auth)
	r.Get("/promotions", promoHandler.ListActive)
	r.Get("/rewards", rewardHandler.List)
	r.Get("/rewards/{id}", rewardHandler.Get)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(jwtMgr))

		r.Get("/auth/me", authHandler.Me)

		r.Post("/promotions/redeem/{id}", promoHandler.Redeem)
		r.Post("/rewards/redeem/{id}", rewardHandler.Redeem)

		r.Route("/user", func(r chi.Router) {
			r.Get("/balance", userHandler.Balance)
			r.Get("/transactions", userHandler.Transactions)
			r.Get("/promotions/redeemed", userHandler.RedeemedPromotions)
			r.Get("/rewards/redemptions", userHandler.RewardRedemptions)
		})
	})

	// Admin-authenticated routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.Authenticate(jwtMgr))
		r.Use(auth.RequireAdmin())

		r.Route("/promotions", func(r chi.Router) {
			r.Get("/", promoAdmin.List)
			r.Post("/", promoAdmin.Create)
			r.Put("/{id}", promoAdmin.Update)
			r.Delete("/{id}", promoAdmin.Delete)
		})

		r.Route("/rewards", func(r chi.Router) {
			r.Get("/", rewardAdmin.List)
			r.Post("/", rewardAdmin.Create)
			r.Post("/claim", rewardAdmin.Claim)
			r.Get("/redemptions", rewardAdmin.ListRedemptions)
			r.Put("/redemptions/{id}/status", rewardAdmin.UpdateRedemptionStatus)
			r.Put("/{id}", rewardAdmin.Update)
			r.Delete("/{id}", rewardAdmin.Delete)
		})

		r.Post("/topup", topUpAdmin.TopUp)
		r.Get("/users", userAdmin.List)
		r.Get("/transactions", reportAdmin.Transactions)
		r.Get("/analytics", reportAdmin.Analytics)
		r.Get("/actions", reportAdmin.Actions)
	})

	return r
}
