package entity

import (
	"fmt"
	"math"
)

// Coefficients holds the policy multipliers used by the reach heuristic.
// They are business policy, not derived constants.
type Coefficients struct {
	OrganicMinRatio                float64 `json:"organic_min_ratio"`
	OrganicEngagementMultiplier    float64 `json:"organic_engagement_multiplier"`
	OrganicFloorRatio              float64 `json:"organic_floor_ratio"`
	OrganicViralCap                float64 `json:"organic_viral_cap"`
	NoFollowerEngagementMultiplier float64 `json:"no_follower_engagement_multiplier"`

	VideoFollowerRatio   float64 `json:"video_follower_ratio"`
	VideoLikesMultiplier float64 `json:"video_likes_multiplier"`
	VideoFollowerCap     float64 `json:"video_follower_cap"`
	VideoViewsCap        float64 `json:"video_views_cap"`

	CollaboratorFollowerProxy float64 `json:"collaborator_follower_proxy"`
	CollaboratorOverlapFactor float64 `json:"collaborator_overlap_factor"`
	CollaboratorBucketShare   float64 `json:"collaborator_bucket_share"`

	MultiCreatorBoost float64 `json:"multi_creator_boost"`
}

// DefaultCoefficients returns the historical reach policy
func DefaultCoefficients() Coefficients {
	return Coefficients{
		OrganicMinRatio:                0.25,
		OrganicEngagementMultiplier:    50,
		OrganicFloorRatio:              0.15,
		OrganicViralCap:                1.5,
		NoFollowerEngagementMultiplier: 100,

		VideoFollowerRatio:   0.4,
		VideoLikesMultiplier: 100,
		VideoFollowerCap:     5,
		VideoViewsCap:        1.2,

		CollaboratorFollowerProxy: 20,
		CollaboratorOverlapFactor: 0.7,
		CollaboratorBucketShare:   0.3,

		MultiCreatorBoost: 1.2,
	}
}

// IsZero returns true if no coefficient has been set
func (c Coefficients) IsZero() bool {
	return c == Coefficients{}
}

// Validate checks that every coefficient is a finite, non-negative number
func (c Coefficients) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"organic_min_ratio", c.OrganicMinRatio},
		{"organic_engagement_multiplier", c.OrganicEngagementMultiplier},
		{"organic_floor_ratio", c.OrganicFloorRatio},
		{"organic_viral_cap", c.OrganicViralCap},
		{"no_follower_engagement_multiplier", c.NoFollowerEngagementMultiplier},
		{"video_follower_ratio", c.VideoFollowerRatio},
		{"video_likes_multiplier", c.VideoLikesMultiplier},
		{"video_follower_cap", c.VideoFollowerCap},
		{"video_views_cap", c.VideoViewsCap},
		{"collaborator_follower_proxy", c.CollaboratorFollowerProxy},
		{"collaborator_overlap_factor", c.CollaboratorOverlapFactor},
		{"collaborator_bucket_share", c.CollaboratorBucketShare},
		{"multi_creator_boost", c.MultiCreatorBoost},
	}

	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return fmt.Errorf("%w: %s = %v", ErrInvalidCoefficients, f.name, f.value)
		}
	}

	return nil
}
