package entity

import "time"

// CampaignStatus represents the lifecycle state of a campaign
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusCompleted CampaignStatus = "completed"
)

// Campaign represents a marketing campaign whose posts are tracked for reach
type Campaign struct {
	ID        string         `json:"id"`
	AccountID string         `json:"account_id"` // Instagram account whose token is used for metric refresh
	Name      string         `json:"name"`
	Status    CampaignStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// IsActive returns true if the campaign should be recomputed periodically
func (c *Campaign) IsActive() bool {
	return c.Status == CampaignStatusActive
}

// CampaignPost is a post tracked by a campaign together with its platform media ID
type CampaignPost struct {
	Post
	CampaignID       string    `json:"campaign_id"`
	InstagramMediaID string    `json:"instagram_media_id,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PostMetrics represents refreshed engagement counters for a post
type PostMetrics struct {
	Likes          int64
	Comments       int64
	Views          *int64
	IsVideo        bool
	FollowersCount int64
}

// ViewsUpdate returns the view count to store and whether the stored count
// should be kept instead. Non-video media clears views so a post that is no
// longer a video cannot keep selecting the video estimate.
func (m PostMetrics) ViewsUpdate() (views *int64, keepStored bool) {
	if !m.IsVideo {
		return nil, false
	}
	if m.Views == nil {
		return nil, true
	}
	return m.Views, false
}
