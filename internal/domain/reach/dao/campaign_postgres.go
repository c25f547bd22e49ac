package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/neo-reach/internal/domain/reach/entity"
)

// CampaignPostgres implements CampaignRepository for PostgreSQL
type CampaignPostgres struct {
	pool *pgxpool.Pool
}

// NewCampaignPostgres creates a new PostgreSQL campaign repository
func NewCampaignPostgres(pool *pgxpool.Pool) *CampaignPostgres {
	return &CampaignPostgres{pool: pool}
}

// GetByID retrieves a campaign by ID
func (r *CampaignPostgres) GetByID(ctx context.Context, id string) (*entity.Campaign, error) {
	query := `
		SELECT id, account_id, name, status, created_at, updated_at
		FROM campaigns
		WHERE id = $1
	`

	var c entity.Campaign
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.AccountID,
		&c.Name,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning campaign: %w", err)
	}

	return &c, nil
}

// ListActive retrieves all active campaigns
func (r *CampaignPostgres) ListActive(ctx context.Context) ([]entity.Campaign, error) {
	query := `
		SELECT id, account_id, name, status, created_at, updated_at
		FROM campaigns
		WHERE status = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, entity.CampaignStatusActive)
	if err != nil {
		return nil, fmt.Errorf("querying campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []entity.Campaign
	for rows.Next() {
		var c entity.Campaign
		if err := rows.Scan(&c.ID, &c.AccountID, &c.Name, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating campaigns: %w", err)
	}

	return campaigns, nil
}
