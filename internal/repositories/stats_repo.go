package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PlatformStats struct {
	Users           int64           `json:"users"`
	Campaigns       int64           `json:"campaigns"`
	ActiveCampaigns int64           `json:"active_campaigns"`
	FundedCampaigns int64           `json:"funded_campaigns"`
	Donations       int64           `json:"donations"`
	TotalRaised     decimal.Decimal `json:"total_raised"`
}

type StatsRepo struct {
	pool *pgxpool.Pool
}

func NewStatsRepo(pool *pgxpool.Pool) *StatsRepo {
	return &StatsRepo{pool: pool}
}

func (r *StatsRepo) GetPlatformStats(ctx context.Context) (*PlatformStats, error) {
	var s PlatformStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM campaigns),
			(SELECT COUNT(*) FROM campaigns WHERE status = 'active'),
			(SELECT COUNT(*) FROM campaigns WHERE status = 'funded'),
			(SELECT COUNT(*) FROM donations),
			(SELECT COALESCE(SUM(amount), 0) FROM donations)
	`).Scan(&s.Users, &s.Campaigns, &s.ActiveCampaigns, &s.FundedCampaigns, &s.Donations, &s.TotalRaised)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
