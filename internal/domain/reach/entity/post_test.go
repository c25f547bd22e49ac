package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func TestPostEngagement(t *testing.T) {
	tests := []struct {
		name string
		post Post
		want int64
	}{
		{"sum", Post{Likes: 200, Comments: 50}, 250},
		{"negative counters ignored", Post{Likes: -5, Comments: 3}, 3},
		{"saturates at ceiling", Post{Likes: math.MaxInt64, Comments: math.MaxInt64}, math.MaxInt64},
		{"saturates just past ceiling", Post{Likes: math.MaxInt64 - 1, Comments: 2}, math.MaxInt64},
		{"exactly at ceiling", Post{Likes: math.MaxInt64 - 1, Comments: 1}, math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.post.Engagement())
		})
	}
}

func TestPostMetricsViewsUpdate(t *testing.T) {
	tests := []struct {
		name      string
		metrics   PostMetrics
		wantViews *int64
		wantKeep  bool
	}{
		{"video with views", PostMetrics{IsVideo: true, Views: int64Ptr(900)}, int64Ptr(900), false},
		{"video without views keeps stored", PostMetrics{IsVideo: true}, nil, true},
		{"image clears views", PostMetrics{IsVideo: false}, nil, false},
		{"image ignores reported views", PostMetrics{IsVideo: false, Views: int64Ptr(900)}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, keep := tt.metrics.ViewsUpdate()
			assert.Equal(t, tt.wantViews, views)
			assert.Equal(t, tt.wantKeep, keep)
		})
	}
}

func TestCampaignReachResultCreatorCount(t *testing.T) {
	r := CampaignReachResult{PerCreatorReach: map[string]int64{"alice": 10, "": 5}}
	assert.Equal(t, 2, r.CreatorCount())
	assert.Equal(t, 0, (&CampaignReachResult{}).CreatorCount())
}
