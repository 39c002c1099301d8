package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tradesim-service/tradesim_service/internal/api/routes"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/accounts"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/achievements"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/education"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/funding"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/trading"
	"github.com/tradesim-service/tradesim_service/internal/infrastructure/cache"
	"github.com/tradesim-service/tradesim_service/internal/infrastructure/config"
	"github.com/tradesim-service/tradesim_service/internal/infrastructure/database"
	"github.com/tradesim-service/tradesim_service/internal/infrastructure/repositories"
	"github.com/tradesim-service/tradesim_service/internal/workers/marketsim"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel, cfg.Environment)

	// Initialize database
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.Database.MigrateURL()); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	// Initialize the quote cache
	quotes, err := cache.NewQuoteCache(cfg.Redis, time.Duration(cfg.Simulator.QuoteTTL)*time.Second, log)
	if err != nil {
		log.Fatal("Failed to connect to redis", "error", err)
	}
	defer quotes.Close()

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db, log)
	portfolioRepo := repositories.NewPortfolioRepository(db, log)
	balanceRepo := repositories.NewBalanceRepository(db, log)
	tradeRepo := repositories.NewTradeRepository(db, log)
	assetRepo := repositories.NewAssetRepository(db, log)
	badgeRepo := repositories.NewBadgeRepository(db, log)
	watchlistRepo := repositories.NewWatchlistRepository(db, log)
	quizRepo := repositories.NewQuizRepository(db, log)
	tradeStore := repositories.NewTradeStore(db, log)
	fundingStore := repositories.NewFundingStore(db, log)
	accountStore := repositories.NewAccountStore(db, log)

	// Services
	accountService := accounts.NewService(userRepo, accountStore, accounts.Config{
		StartingBalance: cfg.Trading.StartingBalanceDecimal(),
		JWTSecret:       cfg.JWT.Secret,
		JWTIssuer:       cfg.JWT.Issuer,
		JWTAccessTTL:    time.Duration(cfg.JWT.AccessTTL) * time.Second,
	}, log)

	fundingService := funding.NewService(fundingStore, funding.Config{
		MaxDepositAmount: cfg.Trading.MaxDepositDecimal(),
		DailyBonusAmount: cfg.Trading.DailyBonusDecimal(),
	}, log)

	achievementService := achievements.NewService(badgeRepo, tradeRepo, fundingService, log)
	educationService := education.NewService(quizRepo, achievementService, log)
	executor := trading.NewExecutor(tradeStore, log)

	// Market simulator: owned here, started after the seed data is in
	simulator := marketsim.New(assetRepo, quotes, marketsim.Config{
		Schedule:      cfg.Simulator.Schedule,
		Seed:          cfg.Simulator.Seed,
		MaxStepPct:    cfg.Simulator.MaxStepPct,
		ReversionRate: cfg.Simulator.ReversionRate,
	}, log)

	if cfg.Simulator.Enabled {
		if err := simulator.Start(); err != nil {
			log.Fatal("Failed to start market simulator", "error", err)
		}
	}

	// Initialize router
	router := routes.SetupRoutes(&routes.Deps{
		DB:              db,
		Logger:          log,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		RateLimitPerMin: cfg.Server.RateLimitPerMin,
		Users:           userRepo,
		Portfolios:      portfolioRepo,
		Balances:        balanceRepo,
		Trades:          tradeRepo,
		Assets:          assetRepo,
		Watchlist:       watchlistRepo,
		Quotes:          quotes,
		Accounts:        accountService,
		Executor:        executor,
		Funding:         fundingService,
		Achievements:    achievementService,
		Education:       educationService,
	})

	// Create server
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	// Start server in goroutine
	go func() {
		log.Info("Starting server", "port", cfg.Server.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if cfg.Simulator.Enabled {
		simulator.Stop()
	}

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}
