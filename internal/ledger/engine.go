package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/flexme/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine validates donation intents and orchestrates the store. It holds no
// state of its own and performs exactly one ApplyDonation per Donate call;
// store-level retry policy lives inside the store.
type Engine struct {
	store    Store
	maxScale int32
	log      *zap.Logger
}

// NewEngine builds an engine. maxScale is the largest number of decimal
// places an amount may carry (2 for whole-currency cents).
func NewEngine(store Store, maxScale int32, log *zap.Logger) *Engine {
	if maxScale < 0 {
		maxScale = 2
	}
	return &Engine{store: store, maxScale: maxScale, log: log}
}

// CampaignSnapshot is the caller-facing view of a campaign's funding state.
type CampaignSnapshot struct {
	ID           uuid.UUID       `json:"id"`
	RaisedAmount decimal.Decimal `json:"raised_amount"`
	GoalAmount   decimal.Decimal `json:"goal_amount"`
	Status       string          `json:"status"`
}

type DonateResult struct {
	Campaign   CampaignSnapshot `json:"campaign"`
	DonationID uuid.UUID        `json:"donation_id"`
}

func snapshot(c *models.Campaign) CampaignSnapshot {
	return CampaignSnapshot{
		ID:           c.ID,
		RaisedAmount: c.RaisedAmount,
		GoalAmount:   c.GoalAmount,
		Status:       c.Status,
	}
}

// Donate parses and validates rawAmount, then applies the donation as one
// atomic unit. Validation failures never touch the store.
func (e *Engine) Donate(ctx context.Context, campaignID, donorID uuid.UUID, rawAmount string, message *string) (*DonateResult, error) {
	if campaignID == uuid.Nil {
		return nil, fmt.Errorf("%w: campaign id is required", ErrCampaignNotFound)
	}
	if donorID == uuid.Nil {
		return nil, fmt.Errorf("%w: donor id is required", ErrInvalidAmount)
	}

	amount, err := e.parseAmount(rawAmount)
	if err != nil {
		return nil, err
	}

	campaign, donation, err := e.store.ApplyDonation(ctx, campaignID, donorID, amount, message)
	if err != nil {
		return nil, translateStoreError(err)
	}

	e.log.Info("donation applied",
		zap.String("campaign_id", campaign.ID.String()),
		zap.String("donation_id", donation.ID.String()),
		zap.String("amount", amount.String()),
		zap.String("status", campaign.Status),
	)

	return &DonateResult{Campaign: snapshot(campaign), DonationID: donation.ID}, nil
}

// GetCampaign returns the committed funding snapshot.
func (e *Engine) GetCampaign(ctx context.Context, id uuid.UUID) (*CampaignSnapshot, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: campaign id is required", ErrCampaignNotFound)
	}
	c, err := e.store.GetCampaign(ctx, id)
	if err != nil {
		return nil, translateStoreError(err)
	}
	s := snapshot(c)
	return &s, nil
}

func (e *Engine) parseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", ErrInvalidAmount)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidAmount, raw)
	}
	if amount.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidAmount, amount)
	}
	if -amount.Exponent() > e.maxScale {
		return decimal.Zero, fmt.Errorf("%w: amount %s exceeds %d decimal places", ErrInvalidAmount, amount, e.maxScale)
	}
	return amount, nil
}

// translateStoreError lets the domain kinds through unchanged and wraps
// everything else as StorageUnavailable so no storage-specific error type
// escapes this boundary.
func translateStoreError(err error) error {
	switch {
	case errors.Is(err, ErrCampaignNotFound),
		errors.Is(err, ErrCampaignClosed),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrLedgerCorrupted):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
}
