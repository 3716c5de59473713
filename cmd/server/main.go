package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/solstrike/chipgate/internal/authority"
	"github.com/solstrike/chipgate/internal/chipledger"
	"github.com/solstrike/chipgate/internal/config"
	"github.com/solstrike/chipgate/internal/exchange"
	"github.com/solstrike/chipgate/internal/handler"
	"github.com/solstrike/chipgate/internal/middleware"
	"github.com/solstrike/chipgate/internal/pkg/logger"
	"github.com/solstrike/chipgate/internal/registry"
	"github.com/solstrike/chipgate/internal/repository"
	"github.com/solstrike/chipgate/internal/rewards"
	"github.com/solstrike/chipgate/internal/service"
	"github.com/solstrike/chipgate/internal/stream"
	"github.com/solstrike/chipgate/internal/treasury"
	"gorm.io/gorm"
)

func main() {
	// 0. Initialize Logger
	logger.Init("info")

	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize Persistence
	// Postgres > Memory for prices, rewards, accounts and audit.
	var db *gorm.DB
	if cfg.Database.DSN != "" {
		db, err = repository.NewDB(cfg)
		if err != nil {
			logger.Error("⚠️ Failed to connect to DB, falling back to memory stores", "error", err)
			db = nil
		} else {
			logger.Info("✅ Connected to PostgreSQL")
		}
	}

	var priceStore registry.Store
	var rewardStore rewards.Store
	var auditRepo service.AuditRepo
	var accountRepo service.AccountRepo
	if db != nil {
		priceStore, err = repository.NewPostgresPriceStore(db)
		if err != nil {
			log.Fatalf("Failed to migrate price store: %v", err)
		}
		rewardStore, err = repository.NewPostgresRewardStore(db)
		if err != nil {
			log.Fatalf("Failed to migrate reward store: %v", err)
		}
		pgAudit, err := repository.NewPostgresAuditRepo(db)
		if err != nil {
			log.Fatalf("Failed to migrate audit store: %v", err)
		}
		auditRepo = pgAudit
		accountRepo, err = repository.NewPostgresAccountRepo(db)
		if err != nil {
			log.Fatalf("Failed to migrate account store: %v", err)
		}

		if days := cfg.Database.AuditRetentionDays; days > 0 {
			go runAuditCleanup(pgAudit, time.Duration(days)*24*time.Hour)
		}
	}
	if priceStore == nil {
		priceStore = registry.NewInMemStore()
	}
	if rewardStore == nil {
		rewardStore = rewards.NewInMemStore()
	}

	// Redis: read-through price cache and shared idempotency store.
	var idempotencyStore middleware.IdempotencyStore
	if cfg.Redis.Addr != "" {
		redisClient, err := repository.NewRedisClient(cfg)
		if err == nil {
			logger.Info("✅ Connected to Redis")
			priceStore = repository.NewRedisPriceCache(redisClient, priceStore,
				time.Duration(cfg.Redis.PriceCacheTTLSeconds)*time.Second)
			idempotencyStore = repository.NewRedisIdempotencyStore(redisClient,
				time.Duration(cfg.Redis.IdempotencyTTLSeconds)*time.Second)
		} else {
			logger.Error("⚠️ Failed to connect to Redis, falling back to memory", "error", err)
		}
	}
	if idempotencyStore == nil {
		idempotencyStore = middleware.NewInMemIdempotencyStore()
	}

	// 3. Initialize Core Services
	vault := treasury.New()
	logger.Info("treasury derived",
		"custody", vault.Address().Hex(),
		"chip_mint", vault.MintAuthority().Address().Hex())

	tokens := chipledger.NewInMemLedger()
	tokens.SetMintAuthority(vault.MintAuthority().Address())

	adminPolicy := authority.NewStaticKey(common.HexToAddress(cfg.Auth.AdminAddress))
	priceRegistry := registry.New(priceStore, adminPolicy)

	// Seed the native price at first boot so trading works before any
	// admin call; an existing config wins.
	if cfg.Chip.NativeUnitPrice > 0 && cfg.Auth.AdminAddress != "" {
		seedCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err := priceRegistry.Initialize(seedCtx, common.HexToAddress(cfg.Auth.AdminAddress), cfg.Chip.NativeUnitPrice)
		cancel()
		if err != nil && !errors.Is(err, registry.ErrAlreadyInitialized) {
			logger.Warn("price seed skipped", "error", err)
		}
	}

	hub := stream.NewHub()

	engine := exchange.NewEngine(priceRegistry, vault, tokens, hub)

	slots, err := rewards.SlotsFromDecimals(cfg.Rewards.SlotBonuses)
	if err != nil {
		log.Fatalf("Invalid reward slot bonuses: %v", err)
	}
	rewardLedger := rewards.NewLedger(adminPolicy, rewardStore, vault, tokens, slots, hub)

	accountManager := service.NewAccountManager(cfg, accountRepo)

	auditSvc, err := service.NewAuditService("./logs", auditRepo)
	if err != nil {
		log.Fatalf("Failed to initialize audit service: %v", err)
	}

	// 4. Initialize Handlers
	priceHandler := handler.NewPriceHandler(priceRegistry)
	exchangeHandler := handler.NewExchangeHandler(engine)
	rewardHandler := handler.NewRewardHandler(rewardLedger)
	auditHandler := handler.NewAuditHandler(auditSvc)

	// 5. Setup Router
	r := gin.Default()

	// Global Middleware
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.AuditMiddleware(auditSvc))

	// Health Check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "chipgate"})
	})

	// Metrics Endpoint
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// Public price table
	r.GET("/v1/prices", priceHandler.List)

	// Admin Routes
	admin := r.Group("/v1/admin")
	admin.Use(middleware.AdminMiddleware(cfg))
	{
		admin.POST("/prices/init", priceHandler.Init)
		admin.PUT("/prices/native", priceHandler.SetNative)
		admin.POST("/assets", priceHandler.RegisterAsset)
		admin.PUT("/assets/:id", priceHandler.RepriceAsset)
		admin.POST("/rewards/distribute", rewardHandler.Distribute)
	}
	r.GET("/v1/audit", middleware.AdminMiddleware(cfg), auditHandler.List)

	// Account Routes
	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg, accountManager))
	v1.Use(middleware.RateLimitMiddleware(accountManager))
	v1.Use(middleware.IdempotencyMiddleware(idempotencyStore))
	{
		v1.POST("/chips/buy", exchangeHandler.Buy)
		v1.POST("/chips/sell", exchangeHandler.Sell)
		v1.POST("/chips/reserve", exchangeHandler.Reserve)
		v1.POST("/rewards/claim", rewardHandler.Claim)
		v1.GET("/rewards/pending", rewardHandler.Pending)
		v1.GET("/stream", hub.Handler())
	}

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("🚀 ChipGate started", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hub.Close()
	auditSvc.Close()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	logger.Info("Server exiting")
}

func runAuditCleanup(repo *repository.PostgresAuditRepo, retention time.Duration) {
	ticker := time.NewTicker(12 * time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err := repo.Cleanup(ctx, retention); err != nil {
			logger.Error("audit cleanup failed", "error", err)
		}
		cancel()
	}
}
