package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/flexme/backend/internal/ledger"
	"github.com/flexme/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LedgerRepo is the Postgres ledger.Store. Mutual exclusion per campaign
// comes from the SELECT ... FOR UPDATE row lock; campaign and donation are
// written in one transaction so the aggregate and its log can never diverge.
type LedgerRepo struct {
	pool   *pgxpool.Pool
	policy ledger.Policy
}

func NewLedgerRepo(pool *pgxpool.Pool, policy ledger.Policy) *LedgerRepo {
	return &LedgerRepo{pool: pool, policy: policy}
}

const campaignColumns = `id, creator_id, title, product, goal_amount, raised_amount, status, frozen, created_at, updated_at`

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	var c models.Campaign
	err := row.Scan(&c.ID, &c.CreatorID, &c.Title, &c.Product,
		&c.GoalAmount, &c.RaisedAmount, &c.Status, &c.Frozen,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *LedgerRepo) GetCampaign(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	c, err := scanCampaign(r.pool.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *LedgerRepo) ApplyDonation(ctx context.Context, campaignID, donorID uuid.UUID, amount decimal.Decimal, message *string) (*models.Campaign, *models.Donation, error) {
	if amount.Sign() <= 0 {
		return nil, nil, fmt.Errorf("%w: amount must be positive", ledger.ErrInvalidAmount)
	}

	retries := r.policy.MaxApplyRetries
	if retries <= 0 {
		retries = 3
	}

	var (
		campaign *models.Campaign
		donation *models.Donation
		err      error
	)
	for attempt := 0; attempt < retries; attempt++ {
		campaign, donation, err = r.applyOnce(ctx, campaignID, donorID, amount, message)
		if err == nil || !isRetriable(err) {
			return campaign, donation, err
		}
	}
	return nil, nil, fmt.Errorf("apply donation: retries exhausted: %w", err)
}

func (r *LedgerRepo) applyOnce(ctx context.Context, campaignID, donorID uuid.UUID, amount decimal.Decimal, message *string) (*models.Campaign, *models.Donation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	c, err := scanCampaign(tx.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 FOR UPDATE`, campaignID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ledger.ErrCampaignNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	if c.Frozen {
		return nil, nil, fmt.Errorf("%w: campaign %s is frozen", ledger.ErrLedgerCorrupted, campaignID)
	}
	if !r.policy.Accepts(c.Status) {
		return nil, nil, fmt.Errorf("%w: status is %s", ledger.ErrCampaignClosed, c.Status)
	}

	ledger.ApplyAmount(c, amount)

	err = tx.QueryRow(ctx, `
		UPDATE campaigns SET raised_amount = $1, status = $2, updated_at = now()
		WHERE id = $3
		RETURNING updated_at
	`, c.RaisedAmount, c.Status, c.ID).Scan(&c.UpdatedAt)
	if err != nil {
		return nil, nil, err
	}

	d := models.Donation{
		CampaignID: campaignID,
		DonorID:    donorID,
		Amount:     amount,
		Message:    message,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO donations (campaign_id, donor_id, amount, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, d.CampaignID, d.DonorID, d.Amount, d.Message).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return c, &d, nil
}

func (r *LedgerRepo) Reconcile(ctx context.Context, campaignID uuid.UUID) (*ledger.ReconcileReport, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	c, err := scanCampaign(tx.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 FOR UPDATE`, campaignID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}

	report := &ledger.ReconcileReport{
		CampaignID:   campaignID,
		RaisedAmount: c.RaisedAmount,
	}
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM donations WHERE campaign_id = $1
	`, campaignID).Scan(&report.DonationCount, &report.DonationSum)
	if err != nil {
		return nil, err
	}

	report.Consistent = report.RaisedAmount.Equal(report.DonationSum)
	if !report.Consistent {
		if _, err := tx.Exec(ctx,
			`UPDATE campaigns SET frozen = true, updated_at = now() WHERE id = $1`, campaignID); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if !report.Consistent {
		return report, fmt.Errorf("%w: raised %s != donation sum %s",
			ledger.ErrLedgerCorrupted, report.RaisedAmount, report.DonationSum)
	}
	return report, nil
}

// isRetriable reports whether the error is transient lock contention
// (serialization failure or deadlock) worth one more attempt.
func isRetriable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
