package http

import (
	"time"

	"github.com/flexme/backend/internal/config"
	"github.com/flexme/backend/internal/http/handlers"
	"github.com/flexme/backend/internal/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	campaignHandler *handlers.CampaignHandler,
	donationHandler *handlers.DonationHandler,
	statsHandler *handlers.StatsHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// Public browsing
	api.Get("/campaigns", campaignHandler.ListCampaigns)
	api.Get("/campaigns/:id", campaignHandler.GetCampaign)
	api.Get("/campaigns/:id/progress", donationHandler.GetProgress)
	api.Get("/campaigns/:id/donations", campaignHandler.ListDonations)
	api.Get("/stats", statsHandler.GetStats)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	protected.Get("/me", userHandler.GetMe)
	protected.Get("/me/donations", userHandler.MyDonations)
	protected.Get("/me/campaigns", campaignHandler.MyCampaigns)

	protected.Post("/campaigns", campaignHandler.CreateCampaign)
	protected.Put("/campaigns/:id", campaignHandler.UpdateCampaign)
	protected.Post("/campaigns/:id/close", campaignHandler.CloseCampaign)
	protected.Post("/campaigns/:id/donate", donationHandler.Donate)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
