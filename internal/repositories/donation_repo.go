package repositories

import (
	"context"

	"github.com/flexme/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DonationRepo is read-only: donation rows are written exclusively by
// LedgerRepo.ApplyDonation and never mutated afterwards.
type DonationRepo struct {
	pool *pgxpool.Pool
}

func NewDonationRepo(pool *pgxpool.Pool) *DonationRepo {
	return &DonationRepo{pool: pool}
}

func (r *DonationRepo) ListByCampaign(ctx context.Context, campaignID uuid.UUID, limit, offset int) ([]models.Donation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, campaign_id, donor_id, amount, message, created_at
		FROM donations WHERE campaign_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, campaignID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var donations []models.Donation
	for rows.Next() {
		var d models.Donation
		if err := rows.Scan(&d.ID, &d.CampaignID, &d.DonorID, &d.Amount, &d.Message, &d.CreatedAt); err != nil {
			return nil, err
		}
		donations = append(donations, d)
	}
	return donations, rows.Err()
}

func (r *DonationRepo) ListByDonor(ctx context.Context, donorID uuid.UUID, limit, offset int) ([]models.DonationWithCampaign, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT d.id, d.campaign_id, d.donor_id, d.amount, d.message, d.created_at, c.title
		FROM donations d
		JOIN campaigns c ON c.id = d.campaign_id
		WHERE d.donor_id = $1
		ORDER BY d.created_at DESC LIMIT $2 OFFSET $3
	`, donorID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var donations []models.DonationWithCampaign
	for rows.Next() {
		var d models.DonationWithCampaign
		if err := rows.Scan(&d.ID, &d.CampaignID, &d.DonorID, &d.Amount, &d.Message, &d.CreatedAt, &d.CampaignTitle); err != nil {
			return nil, err
		}
		donations = append(donations, d)
	}
	return donations, rows.Err()
}
