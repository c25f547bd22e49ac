package entity

import "time"

// PostReach represents the reach breakdown of a single post
type PostReach struct {
	PostID            string `json:"post_id"`
	CreatorUsername   string `json:"creator_username"`
	BaseReach         int64  `json:"base_reach"`         // Primary creator's estimate
	CollaboratorReach int64  `json:"collaborator_reach"` // Added by coauthor/producer collaborators
	TotalReach        int64  `json:"total_reach"`
}

// CampaignReachResult represents the estimated unique audience of a campaign
type CampaignReachResult struct {
	TotalReach      int64            `json:"total_reach"`
	PerCreatorReach map[string]int64 `json:"per_creator_reach"` // Highest attributed reach per creator
	PerPost         []PostReach      `json:"per_post"`
}

// CreatorCount returns the number of distinct reach buckets
func (r *CampaignReachResult) CreatorCount() int {
	return len(r.PerCreatorReach)
}

// Snapshot represents a stored campaign reach computation
type Snapshot struct {
	ID              string           `json:"id"`
	CampaignID      string           `json:"campaign_id"`
	TotalReach      int64            `json:"total_reach"`
	PerCreatorReach map[string]int64 `json:"per_creator_reach"`
	PostCount       int              `json:"post_count"`
	ComputedAt      time.Time        `json:"computed_at"`
}
