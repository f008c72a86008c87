// Package ledger is the campaign funding core: every donation goes through
// a single atomic read-modify-write on the campaign aggregate plus an
// append-only donation record. Callers retrying a timed-out Donate must
// assume at-least-once semantics; deduplication is their concern.
package ledger

import (
	"context"
	"errors"

	"github.com/flexme/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Error kinds surfaced to callers. Wrap with fmt.Errorf("%w: ...") to attach
// a reason; match with errors.Is.
var (
	ErrInvalidAmount      = errors.New("invalid donation amount")
	ErrCampaignNotFound   = errors.New("campaign not found")
	ErrCampaignClosed     = errors.New("campaign is not accepting donations")
	ErrStorageUnavailable = errors.New("ledger storage unavailable")
	// ErrLedgerCorrupted means raised_amount no longer matches the donation
	// sum. The affected campaign is frozen; never repaired automatically.
	ErrLedgerCorrupted = errors.New("ledger corrupted")
)

// Policy holds the knobs that affect the atomic apply itself, so both store
// implementations decide acceptance identically.
type Policy struct {
	// AllowOverfunding keeps funded campaigns open for further donations.
	// Default (false): the goal-crossing donation is the last one accepted.
	AllowOverfunding bool
	// MaxApplyRetries bounds internal retries on storage contention before
	// ErrStorageUnavailable is surfaced.
	MaxApplyRetries int
}

func (p Policy) Accepts(status string) bool {
	switch status {
	case models.CampaignStatusActive:
		return true
	case models.CampaignStatusFunded:
		return p.AllowOverfunding
	default:
		return false
	}
}

// ReconcileReport is the outcome of checking one campaign's aggregate
// against its donation log.
type ReconcileReport struct {
	CampaignID    uuid.UUID
	RaisedAmount  decimal.Decimal
	DonationSum   decimal.Decimal
	DonationCount int
	Consistent    bool
}

// Store is the persistence substrate for campaigns and donations.
//
// ApplyDonation is the one atomic unit: load, status gate, increment,
// funded flip, persist aggregate + append donation — all or nothing, with
// mutual exclusion scoped to the single campaign id. Implementations retry
// contention internally (bounded by Policy.MaxApplyRetries) and never expose
// partial state. Reads return committed state only.
type Store interface {
	GetCampaign(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	ApplyDonation(ctx context.Context, campaignID, donorID uuid.UUID, amount decimal.Decimal, message *string) (*models.Campaign, *models.Donation, error)
	// Reconcile verifies the conservation invariant for one campaign. On a
	// mismatch the campaign is frozen against further writes and
	// ErrLedgerCorrupted is returned alongside the report.
	Reconcile(ctx context.Context, campaignID uuid.UUID) (*ReconcileReport, error)
}

// ApplyAmount computes the post-donation aggregate state. Store
// implementations call it inside their atomic section so the increment and
// the funded flip commit as one unit. Flipping an already-funded campaign is
// a no-op.
func ApplyAmount(c *models.Campaign, amount decimal.Decimal) {
	c.RaisedAmount = c.RaisedAmount.Add(amount)
	if c.Status == models.CampaignStatusActive && c.RaisedAmount.GreaterThanOrEqual(c.GoalAmount) {
		c.Status = models.CampaignStatusFunded
	}
}
