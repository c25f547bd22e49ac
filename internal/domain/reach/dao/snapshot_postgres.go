package dao

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/neo-reach/internal/domain/reach/entity"
)

// SnapshotPostgres implements SnapshotRepository for PostgreSQL
type SnapshotPostgres struct {
	pool *pgxpool.Pool
}

// NewSnapshotPostgres creates a new PostgreSQL snapshot repository
func NewSnapshotPostgres(pool *pgxpool.Pool) *SnapshotPostgres {
	return &SnapshotPostgres{pool: pool}
}

// Create inserts a new snapshot
func (r *SnapshotPostgres) Create(ctx context.Context, s *entity.Snapshot) error {
	perCreator, err := json.Marshal(s.PerCreatorReach)
	if err != nil {
		return fmt.Errorf("encoding per-creator reach: %w", err)
	}

	query := `
		INSERT INTO reach_snapshots (id, campaign_id, total_reach, per_creator, post_count, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.pool.Exec(ctx, query,
		s.ID,
		s.CampaignID,
		s.TotalReach,
		perCreator,
		s.PostCount,
		s.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}

	return nil
}

// ListByCampaign retrieves the latest snapshots of a campaign
func (r *SnapshotPostgres) ListByCampaign(ctx context.Context, campaignID string, limit int) ([]entity.Snapshot, error) {
	query := `
		SELECT id, campaign_id, total_reach, per_creator, post_count, computed_at
		FROM reach_snapshots
		WHERE campaign_id = $1
		ORDER BY computed_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, campaignID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []entity.Snapshot
	for rows.Next() {
		var s entity.Snapshot
		var perCreator []byte

		if err := rows.Scan(&s.ID, &s.CampaignID, &s.TotalReach, &perCreator, &s.PostCount, &s.ComputedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}

		s.PerCreatorReach = map[string]int64{}
		if len(perCreator) > 0 {
			if err := json.Unmarshal(perCreator, &s.PerCreatorReach); err != nil {
				return nil, fmt.Errorf("decoding snapshot %s: %w", s.ID, err)
			}
		}

		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}

	return snapshots, nil
}
