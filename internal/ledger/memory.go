package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flexme/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryStore is a Store backed by process memory: one mutex per campaign,
// so donations to distinct campaigns never block each other. Used by tests
// and as the reference implementation of the apply semantics.
type MemoryStore struct {
	policy Policy

	mu        sync.RWMutex // guards the map itself, not record contents
	campaigns map[uuid.UUID]*campaignRecord
}

type campaignRecord struct {
	mu        sync.Mutex
	campaign  models.Campaign
	donations []models.Donation
}

func NewMemoryStore(policy Policy) *MemoryStore {
	return &MemoryStore{
		policy:    policy,
		campaigns: make(map[uuid.UUID]*campaignRecord),
	}
}

// AddCampaign seeds a campaign. Zero ID and timestamps are filled in.
func (s *MemoryStore) AddCampaign(c models.Campaign) models.Campaign {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = models.CampaignStatusActive
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	s.mu.Lock()
	s.campaigns[c.ID] = &campaignRecord{campaign: c}
	s.mu.Unlock()
	return c
}

func (s *MemoryStore) record(id uuid.UUID) (*campaignRecord, bool) {
	s.mu.RLock()
	rec, ok := s.campaigns[id]
	s.mu.RUnlock()
	return rec, ok
}

func (s *MemoryStore) GetCampaign(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	rec, ok := s.record(id)
	if !ok {
		return nil, ErrCampaignNotFound
	}
	rec.mu.Lock()
	c := rec.campaign
	rec.mu.Unlock()
	return &c, nil
}

func (s *MemoryStore) ApplyDonation(ctx context.Context, campaignID, donorID uuid.UUID, amount decimal.Decimal, message *string) (*models.Campaign, *models.Donation, error) {
	if amount.Sign() <= 0 {
		return nil, nil, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}

	rec, ok := s.record(campaignID)
	if !ok {
		return nil, nil, ErrCampaignNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.campaign.Frozen {
		return nil, nil, fmt.Errorf("%w: campaign %s is frozen", ErrLedgerCorrupted, campaignID)
	}
	if !s.policy.Accepts(rec.campaign.Status) {
		return nil, nil, fmt.Errorf("%w: status is %s", ErrCampaignClosed, rec.campaign.Status)
	}

	ApplyAmount(&rec.campaign, amount)
	rec.campaign.UpdatedAt = time.Now()

	donation := models.Donation{
		ID:         uuid.New(),
		CampaignID: campaignID,
		DonorID:    donorID,
		Amount:     amount,
		Message:    message,
		CreatedAt:  time.Now(),
	}
	rec.donations = append(rec.donations, donation)

	c := rec.campaign
	return &c, &donation, nil
}

func (s *MemoryStore) Reconcile(ctx context.Context, campaignID uuid.UUID) (*ReconcileReport, error) {
	rec, ok := s.record(campaignID)
	if !ok {
		return nil, ErrCampaignNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	sum := decimal.Zero
	for _, d := range rec.donations {
		sum = sum.Add(d.Amount)
	}

	report := &ReconcileReport{
		CampaignID:    campaignID,
		RaisedAmount:  rec.campaign.RaisedAmount,
		DonationSum:   sum,
		DonationCount: len(rec.donations),
		Consistent:    rec.campaign.RaisedAmount.Equal(sum),
	}
	if !report.Consistent {
		rec.campaign.Frozen = true
		return report, fmt.Errorf("%w: raised %s != donation sum %s", ErrLedgerCorrupted, report.RaisedAmount, sum)
	}
	return report, nil
}

// Donations returns a copy of the campaign's donation log, oldest first.
func (s *MemoryStore) Donations(campaignID uuid.UUID) []models.Donation {
	rec, ok := s.record(campaignID)
	if !ok {
		return nil
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]models.Donation, len(rec.donations))
	copy(out, rec.donations)
	return out
}

// Corrupt overwrites the aggregate without touching the donation log.
// Test hook for exercising Reconcile.
func (s *MemoryStore) Corrupt(campaignID uuid.UUID, raised decimal.Decimal) {
	if rec, ok := s.record(campaignID); ok {
		rec.mu.Lock()
		rec.campaign.RaisedAmount = raised
		rec.mu.Unlock()
	}
}
