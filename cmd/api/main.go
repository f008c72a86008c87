package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/flexme/backend/internal/config"
	"github.com/flexme/backend/internal/db"
	"github.com/flexme/backend/internal/events"
	apphttp "github.com/flexme/backend/internal/http"
	"github.com/flexme/backend/internal/http/handlers"
	"github.com/flexme/backend/internal/ledger"
	"github.com/flexme/backend/internal/repositories"
	"github.com/flexme/backend/internal/services"
	"github.com/flexme/backend/migrations"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	policy := ledger.Policy{
		AllowOverfunding: cfg.AllowOverfunding,
		MaxApplyRetries:  cfg.LedgerMaxRetries,
	}
	userRepo := repositories.NewUserRepo(pool)
	campaignRepo := repositories.NewCampaignRepo(pool)
	donationRepo := repositories.NewDonationRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)
	statsRepo := repositories.NewStatsRepo(pool)
	ledgerRepo := repositories.NewLedgerRepo(pool, policy)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Services
	engine := ledger.NewEngine(ledgerRepo, int32(cfg.LedgerMaxScale), log)
	fundingService := services.NewFundingService(engine, auditRepo, publisher, log)
	campaignService := services.NewCampaignService(campaignRepo, auditRepo, publisher, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, auditRepo, cfg, log)
	userHandler := handlers.NewUserHandler(userRepo, donationRepo, log)
	campaignHandler := handlers.NewCampaignHandler(campaignService, donationRepo, log)
	donationHandler := handlers.NewDonationHandler(fundingService, log)
	statsHandler := handlers.NewStatsHandler(statsRepo, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	wsHub.Start(ctx)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, authHandler, userHandler, campaignHandler, donationHandler, statsHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
