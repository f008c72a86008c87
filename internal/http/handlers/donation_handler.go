package handlers

import (
	"errors"

	"github.com/flexme/backend/internal/http/dto"
	"github.com/flexme/backend/internal/ledger"
	"github.com/flexme/backend/internal/middleware"
	"github.com/flexme/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DonationHandler struct {
	fundingService *services.FundingService
	log            *zap.Logger
}

func NewDonationHandler(fundingService *services.FundingService, log *zap.Logger) *DonationHandler {
	return &DonationHandler{fundingService: fundingService, log: log}
}

func (h *DonationHandler) Donate(c *fiber.Ctx) error {
	campaignID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}

	var req dto.DonateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	donorID := middleware.GetUserID(c)
	res, err := h.fundingService.Donate(c.Context(), campaignID, donorID, req.Amount, req.Message)
	if err != nil {
		return h.ledgerError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: dto.DonateResponse{
		CampaignID:   res.Campaign.ID.String(),
		DonationID:   res.DonationID.String(),
		RaisedAmount: res.Campaign.RaisedAmount,
		GoalAmount:   res.Campaign.GoalAmount,
		Status:       res.Campaign.Status,
	}})
}

// GetProgress is the public funding snapshot the campaign page polls.
func (h *DonationHandler) GetProgress(c *fiber.Ctx) error {
	campaignID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}

	snap, err := h.fundingService.GetCampaign(c.Context(), campaignID)
	if err != nil {
		return h.ledgerError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: snap})
}

// ledgerError maps the ledger error taxonomy onto HTTP statuses. Every kind
// keeps its human-readable reason; nothing is collapsed into a generic 500.
func (h *DonationHandler) ledgerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ledger.ErrCampaignNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ledger.ErrCampaignClosed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ledger.ErrStorageUnavailable):
		h.log.Error("ledger storage unavailable", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: "storage unavailable, retry later"})
	case errors.Is(err, ledger.ErrLedgerCorrupted):
		h.log.Error("ledger corruption surfaced", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "campaign ledger requires manual intervention"})
	default:
		h.log.Error("unexpected donation error", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
}
