package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Campaign statuses
const (
	CampaignStatusActive = "active"
	CampaignStatusFunded = "funded"
	CampaignStatusClosed = "closed"
)

// Valid status transitions: from -> []to.
// "funded" is entered automatically when raised_amount reaches goal_amount;
// "closed" is an administrative action and is terminal.
var ValidCampaignTransitions = map[string][]string{
	CampaignStatusActive: {CampaignStatusFunded, CampaignStatusClosed},
	CampaignStatusFunded: {CampaignStatusClosed},
	CampaignStatusClosed: {},
}

func IsValidTransition(from, to string) bool {
	allowed, ok := ValidCampaignTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

type Campaign struct {
	ID           uuid.UUID       `json:"id"`
	CreatorID    uuid.UUID       `json:"creator_id"`
	Title        string          `json:"title"`
	Product      string          `json:"product"`
	GoalAmount   decimal.Decimal `json:"goal_amount"`
	RaisedAmount decimal.Decimal `json:"raised_amount"`
	Status       string          `json:"status"`
	Frozen       bool            `json:"frozen,omitempty"` // set when reconciliation found a mismatch
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CampaignWithCreator embeds Campaign and adds the creator's username
// to avoid N+1 queries on public listings.
type CampaignWithCreator struct {
	Campaign
	CreatorUsername string `json:"creator_username"`
}
