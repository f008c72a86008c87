package repositories

import (
	"context"
	"fmt"

	"github.com/flexme/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CampaignRepo covers the CRUD side of campaigns. Everything touching
// raised_amount goes through LedgerRepo instead.
type CampaignRepo struct {
	pool *pgxpool.Pool
}

func NewCampaignRepo(pool *pgxpool.Pool) *CampaignRepo {
	return &CampaignRepo{pool: pool}
}

func (r *CampaignRepo) Create(ctx context.Context, c *models.Campaign) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO campaigns (creator_id, title, product, goal_amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, raised_amount, created_at, updated_at
	`, c.CreatorID, c.Title, c.Product, c.GoalAmount, c.Status,
	).Scan(&c.ID, &c.RaisedAmount, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CampaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	return scanCampaign(r.pool.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id))
}

// UpdateDetails changes display fields only; goal and raised amounts are
// immutable through this path.
func (r *CampaignRepo) UpdateDetails(ctx context.Context, id uuid.UUID, title, product string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE campaigns SET title = $1, product = $2, updated_at = now()
		WHERE id = $3
	`, title, product, id)
	return err
}

// UpdateStatus applies an already-validated status transition.
func (r *CampaignRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE campaigns SET status = $1, updated_at = now() WHERE id = $2
	`, status, id)
	return err
}

type CampaignFilter struct {
	CreatorID *uuid.UUID
	Status    *string
	Limit     int
	Offset    int
}

func (r *CampaignRepo) List(ctx context.Context, f CampaignFilter) ([]models.CampaignWithCreator, error) {
	query := `
		SELECT c.id, c.creator_id, c.title, c.product, c.goal_amount, c.raised_amount,
		       c.status, c.frozen, c.created_at, c.updated_at, u.username
		FROM campaigns c
		JOIN users u ON u.id = c.creator_id
	`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.CreatorID != nil {
		where = append(where, fmt.Sprintf("c.creator_id = $%d", argIdx))
		args = append(args, *f.CreatorID)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("c.status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []models.CampaignWithCreator
	for rows.Next() {
		var c models.CampaignWithCreator
		if err := rows.Scan(&c.ID, &c.CreatorID, &c.Title, &c.Product,
			&c.GoalAmount, &c.RaisedAmount, &c.Status, &c.Frozen,
			&c.CreatedAt, &c.UpdatedAt, &c.CreatorUsername); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// ListIDs returns every campaign id, for offline reconciliation sweeps.
func (r *CampaignRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM campaigns ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
