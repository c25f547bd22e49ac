// Package estimator turns raw per-post engagement signals into an estimated
// unique audience for a campaign.
//
// All functions are pure: they perform no I/O, never mutate their input and
// are safe for concurrent use. Numeric fields are clamped to zero before use.
package estimator

import (
	"math"
	"sort"

	"github.com/vadim/neo-reach/internal/domain/reach/entity"
)

// Estimator computes post and campaign reach using a fixed set of coefficients
type Estimator struct {
	c entity.Coefficients
}

// New creates a new estimator. A zero Coefficients value selects the defaults.
func New(c entity.Coefficients) *Estimator {
	if c.IsZero() {
		c = entity.DefaultCoefficients()
	}
	return &Estimator{c: c}
}

// Coefficients returns the policy multipliers in use
func (e *Estimator) Coefficients() entity.Coefficients {
	return e.c
}

// EstimatePostReach estimates how many distinct accounts saw a post given the
// follower count of the relevant creator
func (e *Estimator) EstimatePostReach(post *entity.Post, followers int64) int64 {
	if post.IsVideo {
		return e.EstimateVideoReach(post, followers)
	}
	return e.EstimateOrganicReach(post, followers)
}

// EstimateOrganicReach estimates reach of a static post from its engagement
func (e *Estimator) EstimateOrganicReach(post *entity.Post, followers int64) int64 {
	return round(e.organicReach(post, float64(clamp(followers))))
}

// EstimateVideoReach estimates reach of a video post. Posts without usable
// view counts fall back to the organic estimate.
func (e *Estimator) EstimateVideoReach(post *entity.Post, followers int64) int64 {
	views, ok := post.ViewCount()
	if !post.IsVideo || !ok {
		return e.EstimateOrganicReach(post, followers)
	}

	f := float64(clamp(followers))
	v := float64(views)

	reach := max(v, f*e.c.VideoFollowerRatio, float64(clamp(post.Likes))*e.c.VideoLikesMultiplier)
	ceiling := max(f*e.c.VideoFollowerCap, v*e.c.VideoViewsCap)

	return round(min(reach, ceiling))
}

func (e *Estimator) organicReach(post *entity.Post, followers float64) float64 {
	engagement := float64(post.Engagement())

	// No follower baseline to anchor to
	if followers <= 0 {
		return engagement * e.c.NoFollowerEngagementMultiplier
	}

	reach := max(
		followers*e.c.OrganicMinRatio,
		engagement*e.c.OrganicEngagementMultiplier,
		followers*e.c.OrganicFloorRatio,
	)

	return min(reach, followers*e.c.OrganicViralCap)
}

// PostTotalReach returns the post's reach including coauthor/producer collaborators
func (e *Estimator) PostTotalReach(post *entity.Post) int64 {
	return e.EstimatePost(post).TotalReach
}

// EstimatePost returns the reach breakdown of a single post
func (e *Estimator) EstimatePost(post *entity.Post) entity.PostReach {
	base := e.EstimatePostReach(post, post.CreatorFollowersCount)

	// Collaborators have no follower data, engagement stands in for it
	proxyFollowers := float64(post.Engagement()) * e.c.CollaboratorFollowerProxy

	var added float64
	for range post.Coauthors() {
		collab := round(e.organicReach(post, proxyFollowers))
		added += e.c.CollaboratorOverlapFactor * float64(collab)
	}

	total := round(float64(base) + added)

	return entity.PostReach{
		PostID:            post.ID,
		CreatorUsername:   post.CreatorUsername,
		BaseReach:         base,
		CollaboratorReach: total - base,
		TotalReach:        total,
	}
}

// EstimateCampaignReach aggregates post reach into one campaign estimate.
// A creator contributes the maximum reach of their posts, not the sum, and
// each coauthor/producer gets their own bucket holding a share of the post.
func (e *Estimator) EstimateCampaignReach(posts []entity.Post) entity.CampaignReachResult {
	result := entity.CampaignReachResult{
		PerCreatorReach: map[string]int64{},
		PerPost:         make([]entity.PostReach, 0, len(posts)),
	}
	if len(posts) == 0 {
		return result
	}

	buckets := make(creatorBuckets)
	for i := range posts {
		post := &posts[i]

		pr := e.EstimatePost(post)
		result.PerPost = append(result.PerPost, pr)

		reach := float64(pr.TotalReach)
		buckets.attribute(post.CreatorUsername, reach)
		for _, c := range post.Coauthors() {
			buckets.attribute(c.Username, reach*e.c.CollaboratorBucketShare)
		}
	}

	multiplier := 1.0
	if len(buckets) > 1 {
		multiplier = e.c.MultiCreatorBoost
	}

	result.TotalReach = round(buckets.sum() * multiplier)
	for username, reach := range buckets {
		result.PerCreatorReach[username] = round(reach)
	}

	return result
}

// creatorBuckets maps a creator to the highest reach attributed to them
type creatorBuckets map[string]float64

func (b creatorBuckets) attribute(username string, reach float64) {
	if existing, ok := b[username]; !ok || reach > existing {
		b[username] = reach
	}
}

// sum adds buckets in key order so the float result does not depend on map iteration
func (b creatorBuckets) sum() float64 {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var total float64
	for _, k := range keys {
		total += b[k]
	}
	return total
}

func clamp(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

func round(v float64) int64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(math.Round(v))
}
