package services

import (
	"context"

	"github.com/flexme/backend/internal/events"
	"github.com/flexme/backend/internal/ledger"
	"github.com/flexme/backend/internal/models"
	"github.com/flexme/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FundingService fronts the ledger engine for the HTTP layer, adding the
// audit trail and live event publishing around the core Donate call. The
// ledger semantics live entirely in ledger.Engine.
type FundingService struct {
	engine    *ledger.Engine
	auditRepo *repositories.AuditRepo
	publisher events.Publisher
	log       *zap.Logger
}

func NewFundingService(
	engine *ledger.Engine,
	auditRepo *repositories.AuditRepo,
	publisher events.Publisher,
	log *zap.Logger,
) *FundingService {
	return &FundingService{
		engine:    engine,
		auditRepo: auditRepo,
		publisher: publisher,
		log:       log,
	}
}

func (s *FundingService) Donate(ctx context.Context, campaignID, donorID uuid.UUID, rawAmount string, message *string) (*ledger.DonateResult, error) {
	res, err := s.engine.Donate(ctx, campaignID, donorID, rawAmount, message)
	if err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &donorID,
		ActorType:   "user",
		Action:      "donation_created",
		EntityType:  "campaign",
		EntityID:    &campaignID,
		Meta: map[string]any{
			"donation_id": res.DonationID.String(),
			"amount":      rawAmount,
		},
	})

	_ = s.publisher.Publish(ctx, events.StreamCampaign, events.Event{
		Type: events.EventDonationCreated,
		Payload: map[string]any{
			"campaign_id":   campaignID.String(),
			"donation_id":   res.DonationID.String(),
			"amount":        rawAmount,
			"raised_amount": res.Campaign.RaisedAmount.String(),
			"status":        res.Campaign.Status,
		},
	})

	if res.Campaign.Status == models.CampaignStatusFunded {
		_ = s.publisher.Publish(ctx, events.StreamCampaign, events.Event{
			Type: events.EventCampaignFunded,
			Payload: map[string]any{
				"campaign_id":   campaignID.String(),
				"raised_amount": res.Campaign.RaisedAmount.String(),
				"goal_amount":   res.Campaign.GoalAmount.String(),
			},
		})
	}

	return res, nil
}

func (s *FundingService) GetCampaign(ctx context.Context, id uuid.UUID) (*ledger.CampaignSnapshot, error) {
	return s.engine.GetCampaign(ctx, id)
}
