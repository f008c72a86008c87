package handlers

import (
	"github.com/flexme/backend/internal/http/dto"
	"github.com/flexme/backend/internal/middleware"
	"github.com/flexme/backend/internal/models"
	"github.com/flexme/backend/internal/repositories"
	"github.com/flexme/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CampaignHandler struct {
	campaignService *services.CampaignService
	donationRepo    *repositories.DonationRepo
	log             *zap.Logger
}

func NewCampaignHandler(campaignService *services.CampaignService, donationRepo *repositories.DonationRepo, log *zap.Logger) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService, donationRepo: donationRepo, log: log}
}

func (h *CampaignHandler) CreateCampaign(c *fiber.Ctx) error {
	var req dto.CreateCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	goal, err := decimal.NewFromString(req.GoalAmount)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "goal_amount must be a decimal number"})
	}

	userID := middleware.GetUserID(c)
	campaign, err := h.campaignService.Create(c.Context(), userID, req.Title, req.Product, goal)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

// ListCampaigns is public: active campaigns only, unless ?status= filters
// differently.
func (h *CampaignHandler) ListCampaigns(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	status := models.CampaignStatusActive
	if v := c.Query("status"); v != "" {
		status = v
	}

	campaigns, err := h.campaignService.List(c.Context(), repositories.CampaignFilter{
		Status: &status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.log.Error("list campaigns failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: campaigns})
}

func (h *CampaignHandler) MyCampaigns(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)

	campaigns, err := h.campaignService.ListMine(c.Context(), userID, repositories.CampaignFilter{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.log.Error("list own campaigns failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: campaigns})
}

func (h *CampaignHandler) GetCampaign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}

	campaign, err := h.campaignService.GetByID(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "campaign not found"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

func (h *CampaignHandler) UpdateCampaign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}

	var req dto.UpdateCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	userID := middleware.GetUserID(c)
	updated, err := h.campaignService.UpdateDetails(c.Context(), id, userID, req.Title, req.Product)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: updated})
}

func (h *CampaignHandler) CloseCampaign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}

	userID := middleware.GetUserID(c)
	closed, err := h.campaignService.Close(c.Context(), id, userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: closed})
}

func (h *CampaignHandler) ListDonations(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}
	limit, offset := pagination(c)

	donations, err := h.donationRepo.ListByCampaign(c.Context(), id, limit, offset)
	if err != nil {
		h.log.Error("list campaign donations failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: donations})
}
