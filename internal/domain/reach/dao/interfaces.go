package dao

import (
	"context"

	"github.com/vadim/neo-reach/internal/domain/reach/entity"
)

// CampaignRepository defines the interface for campaign data access
type CampaignRepository interface {
	// GetByID retrieves a campaign by its ID, nil if it does not exist
	GetByID(ctx context.Context, id string) (*entity.Campaign, error)

	// ListActive retrieves all campaigns in active status
	ListActive(ctx context.Context) ([]entity.Campaign, error)
}

// PostRepository defines the interface for campaign post data access
type PostRepository interface {
	// ListByCampaign retrieves all posts tracked by a campaign
	ListByCampaign(ctx context.Context, campaignID string) ([]entity.CampaignPost, error)

	// UpdateMetrics stores refreshed engagement counters of a post
	UpdateMetrics(ctx context.Context, postID string, m entity.PostMetrics) error
}

// SnapshotRepository defines the interface for stored reach computations
type SnapshotRepository interface {
	// Create inserts a new snapshot
	Create(ctx context.Context, s *entity.Snapshot) error

	// ListByCampaign retrieves the most recent snapshots of a campaign, newest first
	ListByCampaign(ctx context.Context, campaignID string, limit int) ([]entity.Snapshot, error)
}

// AccountRepository defines the interface for Instagram account credentials
type AccountRepository interface {
	// GetAccessToken retrieves the access token for an account
	GetAccessToken(ctx context.Context, accountID string) (string, error)

	// GetInstagramUserID retrieves the Instagram user ID for an account
	GetInstagramUserID(ctx context.Context, accountID string) (string, error)
}
