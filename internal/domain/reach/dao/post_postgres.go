package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/neo-reach/internal/domain/reach/entity"
)

// PostPostgres implements PostRepository for PostgreSQL
type PostPostgres struct {
	pool *pgxpool.Pool
}

// NewPostPostgres creates a new PostgreSQL campaign post repository
func NewPostPostgres(pool *pgxpool.Pool) *PostPostgres {
	return &PostPostgres{pool: pool}
}

// ListByCampaign retrieves all posts of a campaign
func (r *PostPostgres) ListByCampaign(ctx context.Context, campaignID string) ([]entity.CampaignPost, error) {
	query := `
		SELECT id, campaign_id, instagram_media_id, creator_username, creator_followers_count,
		       likes, comments, views, is_video, is_collaboration, collaborators, updated_at
		FROM campaign_posts
		WHERE campaign_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("querying campaign posts: %w", err)
	}
	defer rows.Close()

	var posts []entity.CampaignPost
	for rows.Next() {
		var p entity.CampaignPost
		var mediaID *string
		var collaborators []byte

		err := rows.Scan(
			&p.ID,
			&p.CampaignID,
			&mediaID,
			&p.CreatorUsername,
			&p.CreatorFollowersCount,
			&p.Likes,
			&p.Comments,
			&p.Views,
			&p.IsVideo,
			&p.IsCollaboration,
			&collaborators,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning campaign post: %w", err)
		}

		if mediaID != nil {
			p.InstagramMediaID = *mediaID
		}
		if len(collaborators) > 0 {
			if err := json.Unmarshal(collaborators, &p.Collaborators); err != nil {
				return nil, fmt.Errorf("decoding collaborators of post %s: %w", p.ID, err)
			}
		}

		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating campaign posts: %w", err)
	}

	return posts, nil
}

// UpdateMetrics stores refreshed engagement counters. A zero follower count
// keeps the stored value; views follow PostMetrics.ViewsUpdate.
func (r *PostPostgres) UpdateMetrics(ctx context.Context, postID string, m entity.PostMetrics) error {
	query := `
		UPDATE campaign_posts
		SET likes = $2,
		    comments = $3,
		    views = CASE WHEN $5::boolean THEN views ELSE $4::bigint END,
		    is_video = $6,
		    creator_followers_count = CASE WHEN $7::bigint > 0 THEN $7::bigint ELSE creator_followers_count END,
		    updated_at = $8
		WHERE id = $1
	`

	views, keepViews := m.ViewsUpdate()

	_, err := r.pool.Exec(ctx, query,
		postID,
		m.Likes,
		m.Comments,
		views,
		keepViews,
		m.IsVideo,
		m.FollowersCount,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("updating post metrics: %w", err)
	}

	return nil
}
