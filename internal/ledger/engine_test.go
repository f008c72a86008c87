package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/flexme/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T, policy Policy) (*Engine, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore(policy)
	return NewEngine(store, 2, zap.NewNop()), store
}

func seedCampaign(store *MemoryStore, goal string) models.Campaign {
	return store.AddCampaign(models.Campaign{
		CreatorID:  uuid.New(),
		Title:      "School laptops",
		Product:    "Laptop",
		GoalAmount: decimal.RequireFromString(goal),
	})
}

func TestDonateAmountValidation(t *testing.T) {
	engine, store := newTestEngine(t, Policy{})
	c := seedCampaign(store, "100")
	donor := uuid.New()

	tests := []struct {
		name   string
		amount string
	}{
		{"zero", "0"},
		{"negative", "-5"},
		{"empty", ""},
		{"non numeric", "ten"},
		{"too many decimal places", "1.005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Donate(context.Background(), c.ID, donor, tt.amount, nil)
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("Donate(%q) error = %v, want ErrInvalidAmount", tt.amount, err)
			}

			// Validation failures must not mutate anything.
			snap, err := engine.GetCampaign(context.Background(), c.ID)
			if err != nil {
				t.Fatal(err)
			}
			if !snap.RaisedAmount.IsZero() {
				t.Errorf("raised amount mutated to %s after rejected donation", snap.RaisedAmount)
			}
			if n := len(store.Donations(c.ID)); n != 0 {
				t.Errorf("donation records created: %d", n)
			}
		})
	}
}

func TestDonateUnknownCampaign(t *testing.T) {
	engine, _ := newTestEngine(t, Policy{})

	_, err := engine.Donate(context.Background(), uuid.New(), uuid.New(), "10", nil)
	if !errors.Is(err, ErrCampaignNotFound) {
		t.Fatalf("error = %v, want ErrCampaignNotFound", err)
	}

	_, err = engine.GetCampaign(context.Background(), uuid.New())
	if !errors.Is(err, ErrCampaignNotFound) {
		t.Fatalf("GetCampaign error = %v, want ErrCampaignNotFound", err)
	}
}

// Campaign with goal 100: 60 keeps it active, 40 crosses the goal and flips
// to funded in the same step, 10 afterwards is rejected without mutation.
func TestDonateGoalCrossing(t *testing.T) {
	engine, store := newTestEngine(t, Policy{})
	c := seedCampaign(store, "100")
	ctx := context.Background()

	res, err := engine.Donate(ctx, c.ID, uuid.New(), "60", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Campaign.RaisedAmount.Equal(decimal.RequireFromString("60")) {
		t.Errorf("raised = %s, want 60", res.Campaign.RaisedAmount)
	}
	if res.Campaign.Status != models.CampaignStatusActive {
		t.Errorf("status = %s, want active", res.Campaign.Status)
	}

	res, err = engine.Donate(ctx, c.ID, uuid.New(), "40", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Campaign.RaisedAmount.Equal(decimal.RequireFromString("100")) {
		t.Errorf("raised = %s, want 100", res.Campaign.RaisedAmount)
	}
	if res.Campaign.Status != models.CampaignStatusFunded {
		t.Errorf("status = %s, want funded", res.Campaign.Status)
	}

	_, err = engine.Donate(ctx, c.ID, uuid.New(), "10", nil)
	if !errors.Is(err, ErrCampaignClosed) {
		t.Fatalf("post-goal donation error = %v, want ErrCampaignClosed", err)
	}

	snap, err := engine.GetCampaign(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !snap.RaisedAmount.Equal(decimal.RequireFromString("100")) {
		t.Errorf("raised after rejection = %s, want 100", snap.RaisedAmount)
	}
	if n := len(store.Donations(c.ID)); n != 2 {
		t.Errorf("donation records = %d, want 2", n)
	}
}

func TestDonateOverfundingPolicy(t *testing.T) {
	engine, store := newTestEngine(t, Policy{AllowOverfunding: true})
	c := seedCampaign(store, "50")
	ctx := context.Background()

	if _, err := engine.Donate(ctx, c.ID, uuid.New(), "50", nil); err != nil {
		t.Fatal(err)
	}

	// Funded campaigns keep accepting under this policy, and the status
	// never reverts to active.
	res, err := engine.Donate(ctx, c.ID, uuid.New(), "25", nil)
	if err != nil {
		t.Fatalf("overfund donation rejected: %v", err)
	}
	if res.Campaign.Status != models.CampaignStatusFunded {
		t.Errorf("status = %s, want funded", res.Campaign.Status)
	}
	if !res.Campaign.RaisedAmount.Equal(decimal.RequireFromString("75")) {
		t.Errorf("raised = %s, want 75", res.Campaign.RaisedAmount)
	}
}

func TestDonateClosedCampaign(t *testing.T) {
	engine, store := newTestEngine(t, Policy{AllowOverfunding: true})
	c := store.AddCampaign(models.Campaign{
		CreatorID:  uuid.New(),
		GoalAmount: decimal.RequireFromString("100"),
		Status:     models.CampaignStatusClosed,
	})

	_, err := engine.Donate(context.Background(), c.ID, uuid.New(), "10", nil)
	if !errors.Is(err, ErrCampaignClosed) {
		t.Fatalf("error = %v, want ErrCampaignClosed", err)
	}
	if n := len(store.Donations(c.ID)); n != 0 {
		t.Errorf("donation records = %d, want 0", n)
	}
}

type failingStore struct{ Store }

func (failingStore) ApplyDonation(ctx context.Context, campaignID, donorID uuid.UUID, amount decimal.Decimal, message *string) (*models.Campaign, *models.Donation, error) {
	return nil, nil, errors.New("connection refused")
}

func TestDonateWrapsStorageErrors(t *testing.T) {
	engine := NewEngine(failingStore{}, 2, zap.NewNop())

	_, err := engine.Donate(context.Background(), uuid.New(), uuid.New(), "10", nil)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("error = %v, want ErrStorageUnavailable", err)
	}
}
