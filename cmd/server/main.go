package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/assets"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/auth"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/config"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/contracts"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/database"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/enterprise"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/ledger"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/lending"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/market"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/points"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/trading"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/identifier"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/middleware"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/response"

	"github.com/gin-gonic/gin"
)

// handlers groups every endpoint set the router mounts.
type handlers struct {
	auth       *auth.GinHandlers
	assets     *assets.GinHandlers
	lending    *lending.GinHandlers
	trading    *trading.GinHandlers
	market     *market.GinHandlers
	points     *points.GinHandlers
	contracts  *contracts.GinHandlers
	enterprise *enterprise.GinHandlers
	ledger     *ledger.GinHandlers
	processor  *enterprise.Processor
}

// main initializes and runs the transaction engine API server with
// graceful shutdown support. It wires the ledger, the business engines
// and the API routes together.
func main() {
	cfg := config.Load()
	configureLogging(cfg)

	// Initialize database
	db, err := database.NewDatabase(cfg.DatabasePath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize database")
	}

	gen := identifier.NewRandom()

	if err := database.Seed(db, gen, cfg.SeedDemoData); err != nil {
		zlog.Fatal().Err(err).Msg("Failed to seed database")
	}

	// Initialize router
	router := gin.Default()

	// Initialize services and handlers. The ledger service is shared:
	// every engine appends blocks and adjusts the wallet through it.
	ledgerService := ledger.NewService(db, gen)

	authService := auth.NewService(cfg.JWTSecret)
	authService.RegisterAPICredentials(auth.DemoAPIKey, auth.DemoAPISecret)

	assetService := assets.NewService(db, ledgerService, gen)
	lendingService := lending.NewService(db, assetService, ledgerService, gen)
	tradingService := trading.NewService(db, assetService, ledgerService, gen)
	marketService := market.NewService(db, gen)
	pointsService := points.NewService(db, ledgerService, gen)
	contractService := contracts.NewService(ledgerService)
	enterpriseService := enterprise.NewService(db, gen)

	h := &handlers{
		auth:       auth.NewGinHandlers(authService),
		assets:     assets.NewGinHandlers(assetService),
		lending:    lending.NewGinHandlers(lendingService),
		trading:    trading.NewGinHandlers(tradingService),
		market:     market.NewGinHandlers(marketService),
		points:     points.NewGinHandlers(pointsService),
		contracts:  contracts.NewGinHandlers(contractService),
		enterprise: enterprise.NewGinHandlers(enterpriseService),
		ledger:     ledger.NewGinHandlers(ledgerService),
		processor:  enterprise.NewProcessor(enterpriseService.GetDB(), cfg.SweepInterval),
	}

	// Create and start the compliance processor
	processorCtx, processorCancel := context.WithCancel(context.Background())
	defer processorCancel()

	go h.processor.Start(processorCtx)

	// Setup middleware
	router.Use(middleware.RateLimit())

	// Setup API routes
	setupRoutes(router, cfg, h)

	// Create server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown setup
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("Shutting down server...")

	// Give outstanding operations 5 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	zlog.Info().Msg("Server exiting")
}

// configureLogging sets up zerolog based on environment settings.
// In development mode, it enables pretty printing with timestamps.
func configureLogging(cfg *config.Config) {
	if cfg.Env != "production" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		zlog.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// setupRoutes configures all API endpoints and their handlers.
// It groups routes by functionality and applies appropriate middleware:
// - Auth routes: Public endpoints for authentication
// - Business routes: Protected by JWT authentication
// - Internal routes: Collaborator endpoints (audit, retirement,
//   compliance) protected by internal authentication
func setupRoutes(router *gin.Engine, cfg *config.Config, h *handlers) {
	v1 := router.Group("/api/v1")
	{
		// Auth routes
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/token", h.auth.GenerateTokenHandler())
		}

		// Asset lifecycle routes
		assetGroup := v1.Group("/assets")
		assetGroup.Use(middleware.JWTAuth(cfg.JWTSecret))
		{
			assetGroup.POST("", h.assets.CreateAssetHandler())
			assetGroup.GET("", h.assets.ListAssetsHandler())
			assetGroup.GET("/:asset_id", h.assets.GetAssetHandler())
			assetGroup.POST("/:asset_id/tokenize", h.assets.TokenizeAssetHandler())
		}

		// Green finance routes
		financeGroup := v1.Group("/finance")
		financeGroup.Use(middleware.JWTAuth(cfg.JWTSecret))
		{
			financeGroup.POST("/loans", h.lending.CreateLoanHandler())
			financeGroup.GET("/loans", h.lending.ListLoansHandler())
			financeGroup.GET("/loans/:loan_id", h.lending.GetLoanHandler())
		}

		// Trade settlement routes
		tradingGroup := v1.Group("/trading")
		tradingGroup.Use(middleware.JWTAuth(cfg.JWTSecret))
		{
			tradingGroup.POST("/trades", h.trading.CreateTradeHandler())
			tradingGroup.GET("/trades", h.trading.ListTradesHandler())
			tradingGroup.GET("/trades/:trade_id", h.trading.GetTradeHandler())
		}

		// Market order book and venue routes
		marketGroup := v1.Group("/market")
		marketGroup.Use(middleware.JWTAuth(cfg.JWTSecret))
		{
			marketGroup.POST("/orders", h.market.CreateOrderHandler())
			marketGroup.GET("/orders", h.market.ListOrdersHandler())
			marketGroup.GET("/orders/:order_id", h.market.GetOrderHandler())
			marketGroup.DELETE("/orders/:order_id", h.market.CancelOrderHandler())
			marketGroup.GET("/platforms", h.market.ListPlatformsHandler())
			marketGroup.POST("/platforms/:platform_id/sync", h.market.SyncPlatformHandler())
		}

		// Carbon points routes
		pointsGroup := v1.Group("/points")
		pointsGroup.Use(middleware.JWTAuth(cfg.JWTSecret))
		{
			pointsGroup.POST("/earn", h.points.EarnPointsHandler())
			pointsGroup.POST("/redeem", h.points.RedeemPointsHandler())
			pointsGroup.GET("/accounts", h.points.ListAccountsHandler())
			pointsGroup.GET("/accounts/:account_id", h.points.GetAccountHandler())
			pointsGroup.GET("/owners/:owner_id/account", h.points.GetAccountByOwnerHandler())
			pointsGroup.GET("/transactions", h.points.ListTransactionsHandler())
			pointsGroup.GET("/rewards", h.points.ListRewardsHandler())
			pointsGroup.GET("/rewards/:reward_id", h.points.GetRewardHandler())
		}

		// Scenario simulator routes
		contractGroup := v1.Group("/contracts")
		contractGroup.Use(middleware.JWTAuth(cfg.JWTSecret))
		{
			contractGroup.POST("/simulate", h.contracts.SimulateScenarioHandler())
			contractGroup.GET("/scenarios", h.contracts.ListScenariosHandler())
		}

		// Enterprise registry routes
		enterpriseGroup := v1.Group("/enterprises")
		enterpriseGroup.Use(middleware.JWTAuth(cfg.JWTSecret))
		{
			enterpriseGroup.POST("", h.enterprise.CreateEnterpriseHandler())
			enterpriseGroup.GET("", h.enterprise.ListEnterprisesHandler())
			enterpriseGroup.GET("/:enterprise_id", h.enterprise.GetEnterpriseHandler())
		}

		// Chain explorer routes (read-only)
		chainGroup := v1.Group("/blockchain")
		{
			chainGroup.GET("/status", h.ledger.GetChainStatusHandler())
			chainGroup.GET("/blocks", h.ledger.GetBlocksHandler())
			chainGroup.GET("/blocks/height/:height", h.ledger.GetBlockByHeightHandler())
			chainGroup.GET("/blocks/hash/:hash", h.ledger.GetBlockByHashHandler())
			chainGroup.GET("/events", h.ledger.GetEventsHandler())
			chainGroup.GET("/events/:id", h.ledger.GetEventHandler())
			chainGroup.GET("/wallet", h.ledger.GetWalletHandler())
		}

		// Internal routes (should be protected by internal network)
		internal := v1.Group("/internal")
		internal.Use(middleware.InternalAuth(cfg.JWTSecret))
		{
			internal.POST("/assets/:asset_id/audit", h.assets.AuditAssetHandler())
			internal.POST("/assets/:asset_id/retire", h.assets.RetireAssetHandler())
			internal.POST("/compliance/sweep", func(c *gin.Context) {
				if err := h.processor.Sweep(); err != nil {
					response.Handle(c, nil, err)
					return
				}
				response.Success(c, gin.H{"swept": true})
			})
		}
	}
}
