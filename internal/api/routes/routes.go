// Package routes wires the HTTP surface together.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/tradesim-service/tradesim_service/internal/api/handlers"
	"github.com/tradesim-service/tradesim_service/internal/api/middleware"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/accounts"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/achievements"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/education"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/funding"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/trading"
	"github.com/tradesim-service/tradesim_service/internal/infrastructure/cache"
	"github.com/tradesim-service/tradesim_service/internal/infrastructure/repositories"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
	"github.com/tradesim-service/tradesim_service/pkg/metrics"
)

// Deps carries everything the router needs, built once in main
type Deps struct {
	DB     *sqlx.DB
	Logger *logger.Logger

	AllowedOrigins  []string
	RateLimitPerMin int

	Users      *repositories.UserRepository
	Portfolios *repositories.PortfolioRepository
	Balances   *repositories.BalanceRepository
	Trades     *repositories.TradeRepository
	Assets     *repositories.AssetRepository
	Watchlist  *repositories.WatchlistRepository
	Quotes     *cache.QuoteCache

	Accounts     *accounts.Service
	Executor     *trading.Executor
	Funding      *funding.Service
	Achievements *achievements.Service
	Education    *education.Service
}

// SetupRoutes configures all application routes
func SetupRoutes(deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware - order matters
	router.Use(middleware.RequestID())
	router.Use(metrics.HTTPMiddleware())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.CORS(deps.AllowedOrigins))
	router.Use(middleware.RateLimit(deps.RateLimitPerMin))
	router.Use(middleware.SecurityHeaders())

	healthHandlers := handlers.NewHealthHandlers(deps.DB, deps.Logger)
	authHandlers := handlers.NewAuthHandlers(deps.Accounts, deps.Logger)
	tradeHandlers := handlers.NewTradeHandlers(deps.Executor, deps.Trades, deps.Achievements, deps.Logger)
	portfolioHandlers := handlers.NewPortfolioHandlers(deps.Users, deps.Portfolios, deps.Balances, deps.Assets, deps.Quotes, deps.Logger)
	fundingHandlers := handlers.NewFundingHandlers(deps.Funding, deps.Logger)
	assetHandlers := handlers.NewAssetHandlers(deps.Assets, deps.Logger)
	badgeHandlers := handlers.NewBadgeHandlers(deps.Achievements, deps.Watchlist, deps.Logger)
	quizHandlers := handlers.NewQuizHandlers(deps.Education, deps.Logger)

	// Health checks and metrics (no auth required)
	router.GET("/health", healthHandlers.Health)
	router.GET("/ready", healthHandlers.Ready)
	router.GET("/metrics", metrics.Handler())

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", authHandlers.Signup)
			auth.POST("/login", authHandlers.Login)
		}

		// market data is public
		v1.GET("/assets", assetHandlers.ListAssets)
		v1.GET("/assets/:symbol", assetHandlers.GetAsset)
		v1.GET("/quiz/questions", quizHandlers.ListQuestions)

		users := v1.Group("/users")
		users.Use(middleware.Authentication(deps.Accounts, deps.Logger))
		{
			users.GET("/:id/portfolio", portfolioHandlers.GetPortfolio)
			users.GET("/:id/balance-history", portfolioHandlers.GetBalanceHistory)
			users.GET("/:id/trades", tradeHandlers.ListTrades)
			users.POST("/:id/execute-trade", tradeHandlers.ExecuteTrade)
			users.POST("/:id/add-funds", fundingHandlers.AddFunds)
			users.POST("/:id/claim-daily-bonus", fundingHandlers.ClaimDailyBonus)
			users.GET("/:id/badges", badgeHandlers.ListBadges)
			users.GET("/:id/watchlist", badgeHandlers.ListWatchlist)
			users.POST("/:id/watchlist/:symbol", badgeHandlers.AddToWatchlist)
			users.DELETE("/:id/watchlist/:symbol", badgeHandlers.RemoveFromWatchlist)
			users.POST("/:id/quiz/submit", quizHandlers.SubmitQuiz)
		}
	}

	return router
}
