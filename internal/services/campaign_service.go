package services

import (
	"context"
	"fmt"

	"github.com/flexme/backend/internal/events"
	"github.com/flexme/backend/internal/models"
	"github.com/flexme/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CampaignService struct {
	campaignRepo *repositories.CampaignRepo
	auditRepo    *repositories.AuditRepo
	publisher    events.Publisher
	log          *zap.Logger
}

func NewCampaignService(
	campaignRepo *repositories.CampaignRepo,
	auditRepo *repositories.AuditRepo,
	publisher events.Publisher,
	log *zap.Logger,
) *CampaignService {
	return &CampaignService{
		campaignRepo: campaignRepo,
		auditRepo:    auditRepo,
		publisher:    publisher,
		log:          log,
	}
}

func (s *CampaignService) Create(ctx context.Context, creatorID uuid.UUID, title, product string, goal decimal.Decimal) (*models.Campaign, error) {
	if title == "" || product == "" {
		return nil, fmt.Errorf("title and product are required")
	}
	if goal.Sign() <= 0 {
		return nil, fmt.Errorf("goal amount must be positive, got %s", goal)
	}

	c := &models.Campaign{
		CreatorID:  creatorID,
		Title:      title,
		Product:    product,
		GoalAmount: goal,
		Status:     models.CampaignStatusActive,
	}
	if err := s.campaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &creatorID,
		ActorType:   "user",
		Action:      "campaign_created",
		EntityType:  "campaign",
		EntityID:    &c.ID,
		Meta:        map[string]any{"goal_amount": goal.String()},
	})

	return c, nil
}

func (s *CampaignService) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	c, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("campaign not found")
	}
	return c, nil
}

func (s *CampaignService) List(ctx context.Context, f repositories.CampaignFilter) ([]models.CampaignWithCreator, error) {
	return s.campaignRepo.List(ctx, f)
}

func (s *CampaignService) ListMine(ctx context.Context, creatorID uuid.UUID, f repositories.CampaignFilter) ([]models.CampaignWithCreator, error) {
	f.CreatorID = &creatorID
	return s.campaignRepo.List(ctx, f)
}

// UpdateDetails edits display text only. Goal and raised amounts never
// change through this path.
func (s *CampaignService) UpdateDetails(ctx context.Context, id, actorID uuid.UUID, title, product string) (*models.Campaign, error) {
	existing, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("campaign not found")
	}
	if existing.CreatorID != actorID {
		return nil, fmt.Errorf("only the campaign creator can edit it")
	}
	if title == "" || product == "" {
		return nil, fmt.Errorf("title and product are required")
	}

	if err := s.campaignRepo.UpdateDetails(ctx, id, title, product); err != nil {
		return nil, err
	}
	return s.campaignRepo.GetByID(ctx, id)
}

// Close is the administrative transition to the terminal status. Valid from
// active and funded; closed campaigns reject all donations.
func (s *CampaignService) Close(ctx context.Context, id, actorID uuid.UUID) (*models.Campaign, error) {
	existing, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("campaign not found")
	}
	if existing.CreatorID != actorID {
		return nil, fmt.Errorf("only the campaign creator can close it")
	}
	if !models.IsValidTransition(existing.Status, models.CampaignStatusClosed) {
		return nil, fmt.Errorf("invalid transition from %s to %s", existing.Status, models.CampaignStatusClosed)
	}

	if err := s.campaignRepo.UpdateStatus(ctx, id, models.CampaignStatusClosed); err != nil {
		return nil, err
	}
	existing.Status = models.CampaignStatusClosed

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   "user",
		Action:      "campaign_closed",
		EntityType:  "campaign",
		EntityID:    &id,
	})

	_ = s.publisher.Publish(ctx, events.StreamCampaign, events.Event{
		Type: events.EventCampaignClosed,
		Payload: map[string]any{
			"campaign_id": id.String(),
		},
	})

	s.log.Info("campaign closed",
		zap.String("campaign_id", id.String()),
		zap.String("actor_id", actorID.String()),
	)

	return existing, nil
}
