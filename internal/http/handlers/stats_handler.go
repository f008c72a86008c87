package handlers

import (
	"github.com/flexme/backend/internal/http/dto"
	"github.com/flexme/backend/internal/repositories"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type StatsHandler struct {
	statsRepo *repositories.StatsRepo
	log       *zap.Logger
}

func NewStatsHandler(statsRepo *repositories.StatsRepo, log *zap.Logger) *StatsHandler {
	return &StatsHandler{statsRepo: statsRepo, log: log}
}

func (h *StatsHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.statsRepo.GetPlatformStats(c.Context())
	if err != nil {
		h.log.Error("platform stats failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: stats})
}
