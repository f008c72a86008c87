package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Donation is an append-only record: rows are never updated or deleted,
// the campaign aggregate is reconstructible from them.
type Donation struct {
	ID         uuid.UUID       `json:"id"`
	CampaignID uuid.UUID       `json:"campaign_id"`
	DonorID    uuid.UUID       `json:"donor_id"`
	Amount     decimal.Decimal `json:"amount"`
	Message    *string         `json:"message,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// DonationWithCampaign embeds Donation and adds the campaign title
// for donor-facing history listings.
type DonationWithCampaign struct {
	Donation
	CampaignTitle string `json:"campaign_title"`
}
