package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/flexme/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// N concurrent donations of amount a against goal N*a-1: every donation must
// land exactly once, the aggregate must equal N*a and the campaign must end
// funded — no lost updates, no double-applied closure.
func TestApplyDonationConcurrentGoalRace(t *testing.T) {
	const n = 64
	amount := decimal.RequireFromString("5")
	goal := amount.Mul(decimal.NewFromInt(n)).Sub(decimal.NewFromInt(1))

	store := NewMemoryStore(Policy{AllowOverfunding: true})
	c := store.AddCampaign(models.Campaign{
		CreatorID:  uuid.New(),
		GoalAmount: goal,
	})

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := store.ApplyDonation(context.Background(), c.ID, uuid.New(), amount, nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent donation failed: %v", err)
		}
	}

	got, err := store.GetCampaign(context.Background(), c.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := amount.Mul(decimal.NewFromInt(n))
	if !got.RaisedAmount.Equal(want) {
		t.Errorf("raised = %s, want %s", got.RaisedAmount, want)
	}
	if got.Status != models.CampaignStatusFunded {
		t.Errorf("status = %s, want funded", got.Status)
	}
	if len(store.Donations(c.ID)) != n {
		t.Errorf("donation records = %d, want %d", len(store.Donations(c.ID)), n)
	}

	if _, err := store.Reconcile(context.Background(), c.ID); err != nil {
		t.Errorf("reconcile after race: %v", err)
	}
}

// Donations to distinct campaigns must not serialize on a shared lock; this
// is a liveness smoke test more than a timing assertion.
func TestApplyDonationIndependentCampaigns(t *testing.T) {
	store := NewMemoryStore(Policy{AllowOverfunding: true})
	goal := decimal.RequireFromString("1000000")

	var campaigns []uuid.UUID
	for i := 0; i < 8; i++ {
		c := store.AddCampaign(models.Campaign{CreatorID: uuid.New(), GoalAmount: goal})
		campaigns = append(campaigns, c.ID)
	}

	var wg sync.WaitGroup
	for _, id := range campaigns {
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(id uuid.UUID) {
				defer wg.Done()
				if _, _, err := store.ApplyDonation(context.Background(), id, uuid.New(), decimal.NewFromInt(1), nil); err != nil {
					t.Error(err)
				}
			}(id)
		}
	}
	wg.Wait()

	for _, id := range campaigns {
		got, err := store.GetCampaign(context.Background(), id)
		if err != nil {
			t.Fatal(err)
		}
		if !got.RaisedAmount.Equal(decimal.NewFromInt(16)) {
			t.Errorf("campaign %s raised = %s, want 16", id, got.RaisedAmount)
		}
	}
}

// Conservation: the aggregate always equals the exact sum of accepted
// donations, including fractional amounts that drift under float math.
func TestConservationWithFractionalAmounts(t *testing.T) {
	store := NewMemoryStore(Policy{AllowOverfunding: true})
	c := store.AddCampaign(models.Campaign{
		CreatorID:  uuid.New(),
		GoalAmount: decimal.RequireFromString("10000"),
	})

	sum := decimal.Zero
	for i := 0; i < 1000; i++ {
		amount := decimal.RequireFromString("0.10")
		if _, _, err := store.ApplyDonation(context.Background(), c.ID, uuid.New(), amount, nil); err != nil {
			t.Fatal(err)
		}
		sum = sum.Add(amount)
	}

	got, err := store.GetCampaign(context.Background(), c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.RaisedAmount.Equal(sum) {
		t.Errorf("raised = %s, want exact sum %s", got.RaisedAmount, sum)
	}
	if got.RaisedAmount.Sign() < 0 {
		t.Error("raised amount went negative")
	}
}

func TestApplyDonationMessageStored(t *testing.T) {
	store := NewMemoryStore(Policy{})
	c := store.AddCampaign(models.Campaign{CreatorID: uuid.New(), GoalAmount: decimal.NewFromInt(100)})

	msg := "good luck!"
	_, d, err := store.ApplyDonation(context.Background(), c.ID, uuid.New(), decimal.NewFromInt(5), &msg)
	if err != nil {
		t.Fatal(err)
	}
	if d.Message == nil || *d.Message != msg {
		t.Errorf("message = %v, want %q", d.Message, msg)
	}
	if d.CampaignID != c.ID {
		t.Errorf("campaign id = %s, want %s", d.CampaignID, c.ID)
	}
}

func TestReconcileDetectsCorruption(t *testing.T) {
	store := NewMemoryStore(Policy{})
	c := store.AddCampaign(models.Campaign{CreatorID: uuid.New(), GoalAmount: decimal.NewFromInt(100)})
	ctx := context.Background()

	if _, _, err := store.ApplyDonation(ctx, c.ID, uuid.New(), decimal.NewFromInt(30), nil); err != nil {
		t.Fatal(err)
	}

	report, err := store.Reconcile(ctx, c.ID)
	if err != nil {
		t.Fatalf("consistent ledger reported error: %v", err)
	}
	if !report.Consistent || report.DonationCount != 1 {
		t.Errorf("report = %+v, want consistent with 1 donation", report)
	}

	// Tamper with the aggregate behind the log's back.
	store.Corrupt(c.ID, decimal.NewFromInt(99))

	report, err = store.Reconcile(ctx, c.ID)
	if !errors.Is(err, ErrLedgerCorrupted) {
		t.Fatalf("error = %v, want ErrLedgerCorrupted", err)
	}
	if report == nil || report.Consistent {
		t.Fatalf("report = %+v, want inconsistent", report)
	}

	// Frozen campaigns reject all further writes, never silently repair.
	_, _, err = store.ApplyDonation(ctx, c.ID, uuid.New(), decimal.NewFromInt(1), nil)
	if !errors.Is(err, ErrLedgerCorrupted) {
		t.Fatalf("write to frozen campaign error = %v, want ErrLedgerCorrupted", err)
	}
}

func TestPolicyAccepts(t *testing.T) {
	tests := []struct {
		policy   Policy
		status   string
		expected bool
	}{
		{Policy{}, models.CampaignStatusActive, true},
		{Policy{}, models.CampaignStatusFunded, false},
		{Policy{}, models.CampaignStatusClosed, false},
		{Policy{AllowOverfunding: true}, models.CampaignStatusActive, true},
		{Policy{AllowOverfunding: true}, models.CampaignStatusFunded, true},
		{Policy{AllowOverfunding: true}, models.CampaignStatusClosed, false},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("overfund=%v/%s", tt.policy.AllowOverfunding, tt.status)
		t.Run(name, func(t *testing.T) {
			if got := tt.policy.Accepts(tt.status); got != tt.expected {
				t.Errorf("Accepts(%q) = %v, want %v", tt.status, got, tt.expected)
			}
		})
	}
}
