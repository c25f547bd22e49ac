package policy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadim/neo-reach/internal/domain/reach/entity"
	"github.com/vadim/neo-reach/internal/domain/reach/estimator"
	"github.com/vadim/neo-reach/internal/domain/reach/service"
)

type memStore struct {
	campaigns map[string]*entity.Campaign
	posts     map[string][]entity.CampaignPost
	snapshots []entity.Snapshot
}

func (m *memStore) GetByID(_ context.Context, id string) (*entity.Campaign, error) {
	return m.campaigns[id], nil
}

func (m *memStore) ListActive(_ context.Context) ([]entity.Campaign, error) {
	var out []entity.Campaign
	for _, id := range []string{"c1", "c2", "c3"} {
		if c, ok := m.campaigns[id]; ok && c.IsActive() {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memStore) ListByCampaign(_ context.Context, campaignID string) ([]entity.CampaignPost, error) {
	return append([]entity.CampaignPost(nil), m.posts[campaignID]...), nil
}

func (m *memStore) UpdateMetrics(_ context.Context, postID string, u entity.PostMetrics) error {
	for cid, posts := range m.posts {
		for i := range posts {
			if posts[i].ID != postID {
				continue
			}
			p := &m.posts[cid][i]
			p.Likes, p.Comments, p.IsVideo = u.Likes, u.Comments, u.IsVideo
			if views, keep := u.ViewsUpdate(); !keep {
				p.Views = views
			}
			if u.FollowersCount > 0 {
				p.CreatorFollowersCount = u.FollowersCount
			}
		}
	}
	return nil
}

type memSnapshots struct{ store *memStore }

func (s memSnapshots) Create(_ context.Context, snap *entity.Snapshot) error {
	s.store.snapshots = append(s.store.snapshots, *snap)
	return nil
}

func (s memSnapshots) ListByCampaign(_ context.Context, campaignID string, _ int) ([]entity.Snapshot, error) {
	var out []entity.Snapshot
	for _, snap := range s.store.snapshots {
		if snap.CampaignID == campaignID {
			out = append(out, snap)
		}
	}
	return out, nil
}

type fakeAccounts struct{}

func (fakeAccounts) GetAccessToken(_ context.Context, accountID string) (string, error) {
	if accountID == "" {
		return "", errors.New("no access token")
	}
	return "token-" + accountID, nil
}

func (fakeAccounts) GetInstagramUserID(_ context.Context, accountID string) (string, error) {
	return "ig-" + accountID, nil
}

type fakeMetrics struct {
	media   map[string]*MediaMetrics
	account *AccountMetrics
	tokens  []string
}

func (f *fakeMetrics) FetchMedia(_ context.Context, mediaID, accessToken string) (*MediaMetrics, error) {
	f.tokens = append(f.tokens, accessToken)
	m, ok := f.media[mediaID]
	if !ok {
		return nil, errors.New("media not found")
	}
	return m, nil
}

func (f *fakeMetrics) FetchAccount(_ context.Context, _, _ string) (*AccountMetrics, error) {
	if f.account == nil {
		return nil, errors.New("account unavailable")
	}
	return f.account, nil
}

type fakeUploader struct {
	campaignID string
	body       []byte
}

func (f *fakeUploader) Upload(_ context.Context, campaignID string, body []byte) (*ReportLocation, error) {
	f.campaignID, f.body = campaignID, body
	return &ReportLocation{Key: "reports/" + campaignID + "/r.json", URL: "http://cdn/reports/" + campaignID + "/r.json"}, nil
}

func views(v int64) *int64 { return &v }

func newTestPolicy() (*Policy, *memStore) {
	store := &memStore{
		campaigns: map[string]*entity.Campaign{
			"c1": {ID: "c1", AccountID: "7", Name: "Spring launch", Status: entity.CampaignStatusActive},
			"c2": {ID: "c2", AccountID: "7", Name: "Archive", Status: entity.CampaignStatusCompleted},
			"c3": {ID: "c3", AccountID: "8", Name: "Summer", Status: entity.CampaignStatusActive},
		},
		posts: map[string][]entity.CampaignPost{
			"c1": {
				{Post: entity.Post{ID: "p1", CreatorUsername: "alice", CreatorFollowersCount: 5000, Likes: 10}, CampaignID: "c1", InstagramMediaID: "m1"},
				{Post: entity.Post{ID: "p2", CreatorUsername: "bob", Likes: 100}, CampaignID: "c1", InstagramMediaID: "m2"},
				{Post: entity.Post{ID: "p3", CreatorUsername: "carol", Likes: 5}, CampaignID: "c1"},
			},
			"c3": {
				{Post: entity.Post{ID: "p4", CreatorUsername: "dave", Likes: 100}, CampaignID: "c3"},
			},
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(estimator.New(entity.DefaultCoefficients()), store, store, memSnapshots{store}, logger)

	return New(svc, fakeAccounts{}, logger), store
}

func TestRefreshCampaignMetrics(t *testing.T) {
	p, store := newTestPolicy()
	metrics := &fakeMetrics{
		media: map[string]*MediaMetrics{
			"m1": {Likes: 200, Comments: 50},
		},
		account: &AccountMetrics{Username: "Alice", FollowersCount: 10000},
	}
	p.WithMetricsFetcher(metrics)

	out, err := p.RefreshCampaignMetrics(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, &RefreshOutput{CampaignID: "c1", Updated: 1, Skipped: 1, Failed: 1}, out)
	assert.Equal(t, []string{"token-7", "token-7"}, metrics.tokens)

	p1 := store.posts["c1"][0]
	assert.Equal(t, int64(200), p1.Likes)
	assert.Equal(t, int64(50), p1.Comments)
	assert.Equal(t, int64(10000), p1.CreatorFollowersCount)

	res, err := p.CampaignReach(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(12500), res.PerCreatorReach["alice"])
}

func TestRefreshKeepsFollowersForOtherCreators(t *testing.T) {
	p, store := newTestPolicy()
	p.WithMetricsFetcher(&fakeMetrics{
		media: map[string]*MediaMetrics{
			"m2": {Likes: 300, IsVideo: true, Views: views(9000)},
		},
	})

	_, err := p.RefreshCampaignMetrics(context.Background(), "c1")
	require.NoError(t, err)

	p2 := store.posts["c1"][1]
	assert.Equal(t, int64(0), p2.CreatorFollowersCount)
	assert.True(t, p2.IsVideo)
	require.NotNil(t, p2.Views)
	assert.Equal(t, int64(9000), *p2.Views)
}

func TestRefreshClearsViewsWhenMediaIsNoLongerVideo(t *testing.T) {
	p, store := newTestPolicy()
	store.posts["c1"][0].IsVideo = true
	store.posts["c1"][0].Views = views(400000)

	p.WithMetricsFetcher(&fakeMetrics{
		media: map[string]*MediaMetrics{
			"m1": {Likes: 10},
		},
	})

	_, err := p.RefreshCampaignMetrics(context.Background(), "c1")
	require.NoError(t, err)

	p1 := store.posts["c1"][0]
	assert.False(t, p1.IsVideo)
	assert.Nil(t, p1.Views)

	res, err := p.CampaignReach(context.Background(), "c1")
	require.NoError(t, err)
	// organic estimate for 5000 followers and 10 likes
	assert.Equal(t, int64(1250), res.PerCreatorReach["alice"])
}

func TestRefreshKeepsStoredViewsWhenNotReported(t *testing.T) {
	p, store := newTestPolicy()
	store.posts["c1"][0].IsVideo = true
	store.posts["c1"][0].Views = views(7000)

	p.WithMetricsFetcher(&fakeMetrics{
		media: map[string]*MediaMetrics{
			"m1": {Likes: 10, IsVideo: true},
		},
	})

	_, err := p.RefreshCampaignMetrics(context.Background(), "c1")
	require.NoError(t, err)

	p1 := store.posts["c1"][0]
	require.NotNil(t, p1.Views)
	assert.Equal(t, int64(7000), *p1.Views)
}

func TestRefreshWithoutUpstream(t *testing.T) {
	p, _ := newTestPolicy()

	_, err := p.RefreshCampaignMetrics(context.Background(), "c1")
	assert.ErrorIs(t, err, entity.ErrUpstreamNotConfigured)
}

func TestExportReport(t *testing.T) {
	p, _ := newTestPolicy()

	_, err := p.ExportReport(context.Background(), "c1")
	assert.ErrorIs(t, err, entity.ErrStorageNotConfigured)

	uploader := &fakeUploader{}
	p.WithReportUploader(uploader)

	out, err := p.ExportReport(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", uploader.campaignID)
	assert.Equal(t, "reports/c1/r.json", out.Location.Key)

	var report Report
	require.NoError(t, json.Unmarshal(uploader.body, &report))
	assert.Equal(t, "Spring launch", report.CampaignName)
	assert.Equal(t, entity.DefaultCoefficients(), report.Coefficients)
	assert.Equal(t, out.TotalReach, report.Result.TotalReach)
	assert.Len(t, report.Result.PerPost, 3)

	_, err = p.ExportReport(context.Background(), "nope")
	assert.ErrorIs(t, err, entity.ErrCampaignNotFound)
}

func TestProcessActiveCampaigns(t *testing.T) {
	p, store := newTestPolicy()

	require.NoError(t, p.ProcessActiveCampaigns(context.Background()))

	require.Len(t, store.snapshots, 2)
	assert.Equal(t, "c1", store.snapshots[0].CampaignID)
	assert.Equal(t, "c3", store.snapshots[1].CampaignID)
	assert.Equal(t, int64(10000), store.snapshots[1].TotalReach)
}

func TestProcessActiveCampaignsStopsOnCancel(t *testing.T) {
	p, store := newTestPolicy()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.ProcessActiveCampaigns(ctx), context.Canceled)
	assert.Empty(t, store.snapshots)
}
