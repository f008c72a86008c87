package handlers

import (
	"strconv"

	"github.com/flexme/backend/internal/http/dto"
	"github.com/flexme/backend/internal/middleware"
	"github.com/flexme/backend/internal/repositories"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	userRepo     *repositories.UserRepo
	donationRepo *repositories.DonationRepo
	log          *zap.Logger
}

func NewUserHandler(userRepo *repositories.UserRepo, donationRepo *repositories.DonationRepo, log *zap.Logger) *UserHandler {
	return &UserHandler{userRepo: userRepo, donationRepo: donationRepo, log: log}
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	user, err := h.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "user not found"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}

func (h *UserHandler) MyDonations(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)

	donations, err := h.donationRepo.ListByDonor(c.Context(), userID, limit, offset)
	if err != nil {
		h.log.Error("list donor donations failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: donations})
}

func pagination(c *fiber.Ctx) (limit, offset int) {
	limit, offset = 20, 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}
	return limit, offset
}
