package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vadim/neo-reach/internal/domain/reach/dao"
	"github.com/vadim/neo-reach/internal/domain/reach/entity"
	"github.com/vadim/neo-reach/internal/domain/reach/estimator"
)

const (
	defaultSnapshotLimit = 30
	maxSnapshotLimit     = 500
)

// Cache stores computed campaign results between requests
type Cache interface {
	Get(ctx context.Context, campaignID string) (*entity.CampaignReachResult, error)
	Set(ctx context.Context, campaignID string, result *entity.CampaignReachResult) error
	Invalidate(ctx context.Context, campaignID string) error
}

// Service handles business logic for reach estimation
type Service struct {
	est       *estimator.Estimator
	campaigns dao.CampaignRepository
	posts     dao.PostRepository
	snapshots dao.SnapshotRepository
	cache     Cache // optional
	logger    *slog.Logger
}

// New creates a new reach service. Repositories may be nil, in which case
// only the stateless estimation operations are available.
func New(est *estimator.Estimator, campaigns dao.CampaignRepository, posts dao.PostRepository, snapshots dao.SnapshotRepository, logger *slog.Logger) *Service {
	return &Service{
		est:       est,
		campaigns: campaigns,
		posts:     posts,
		snapshots: snapshots,
		logger:    logger,
	}
}

// WithCache sets the campaign result cache
func (s *Service) WithCache(c Cache) *Service {
	s.cache = c
	return s
}

// Coefficients returns the reach policy in use
func (s *Service) Coefficients() entity.Coefficients {
	return s.est.Coefficients()
}

// EstimatePosts computes campaign reach for posts supplied by the caller
func (s *Service) EstimatePosts(posts []entity.Post) entity.CampaignReachResult {
	return s.est.EstimateCampaignReach(posts)
}

// EstimatePost computes the reach breakdown of a single post
func (s *Service) EstimatePost(post entity.Post) entity.PostReach {
	return s.est.EstimatePost(&post)
}

// GetCampaign retrieves a campaign by ID
func (s *Service) GetCampaign(ctx context.Context, id string) (*entity.Campaign, error) {
	if id == "" {
		return nil, entity.ErrEmptyCampaignID
	}
	if s.campaigns == nil {
		return nil, entity.ErrCampaignStoreNotConfigured
	}

	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, entity.ErrCampaignNotFound
	}

	return c, nil
}

// ListActiveCampaigns retrieves campaigns eligible for periodic recomputation
func (s *Service) ListActiveCampaigns(ctx context.Context) ([]entity.Campaign, error) {
	if s.campaigns == nil {
		return nil, entity.ErrCampaignStoreNotConfigured
	}
	return s.campaigns.ListActive(ctx)
}

// ListCampaignPosts retrieves the posts tracked by a campaign
func (s *Service) ListCampaignPosts(ctx context.Context, campaignID string) ([]entity.CampaignPost, error) {
	if s.posts == nil {
		return nil, entity.ErrCampaignStoreNotConfigured
	}
	return s.posts.ListByCampaign(ctx, campaignID)
}

// UpdatePostMetrics stores refreshed engagement counters of a post
func (s *Service) UpdatePostMetrics(ctx context.Context, postID string, m entity.PostMetrics) error {
	if s.posts == nil {
		return entity.ErrCampaignStoreNotConfigured
	}
	return s.posts.UpdateMetrics(ctx, postID, m)
}

// CampaignReach returns the campaign result, served from cache when possible
func (s *Service) CampaignReach(ctx context.Context, campaignID string) (*entity.CampaignReachResult, error) {
	if _, err := s.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, campaignID)
		if err != nil {
			s.logger.Warn("reach cache read failed", "campaign_id", campaignID, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	result, _, err := s.compute(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// RecordSnapshot computes fresh campaign reach and stores it
func (s *Service) RecordSnapshot(ctx context.Context, campaignID string) (*entity.Snapshot, error) {
	if _, err := s.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	if s.snapshots == nil {
		return nil, entity.ErrCampaignStoreNotConfigured
	}

	result, postCount, err := s.compute(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	snap := &entity.Snapshot{
		ID:              uuid.New().String(),
		CampaignID:      campaignID,
		TotalReach:      result.TotalReach,
		PerCreatorReach: result.PerCreatorReach,
		PostCount:       postCount,
		ComputedAt:      time.Now().UTC(),
	}

	if err := s.snapshots.Create(ctx, snap); err != nil {
		return nil, err
	}

	s.logger.Info("reach snapshot recorded",
		"campaign_id", campaignID,
		"total_reach", snap.TotalReach,
		"creators", result.CreatorCount(),
		"posts", postCount,
	)

	return snap, nil
}

// ListSnapshots retrieves stored computations of a campaign, newest first
func (s *Service) ListSnapshots(ctx context.Context, campaignID string, limit int) ([]entity.Snapshot, error) {
	if _, err := s.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	if s.snapshots == nil {
		return nil, entity.ErrCampaignStoreNotConfigured
	}

	if limit <= 0 {
		limit = defaultSnapshotLimit
	}
	if limit > maxSnapshotLimit {
		limit = maxSnapshotLimit
	}

	snapshots, err := s.snapshots.ListByCampaign(ctx, campaignID, limit)
	if err != nil {
		return nil, err
	}
	if snapshots == nil {
		snapshots = []entity.Snapshot{}
	}

	return snapshots, nil
}

// InvalidateCampaign drops the cached result of a campaign
func (s *Service) InvalidateCampaign(ctx context.Context, campaignID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, campaignID); err != nil {
		s.logger.Warn("reach cache invalidation failed", "campaign_id", campaignID, "error", err)
	}
}

// compute loads the campaign posts, estimates reach and refreshes the cache
func (s *Service) compute(ctx context.Context, campaignID string) (*entity.CampaignReachResult, int, error) {
	campaignPosts, err := s.ListCampaignPosts(ctx, campaignID)
	if err != nil {
		return nil, 0, err
	}

	posts := make([]entity.Post, len(campaignPosts))
	for i := range campaignPosts {
		posts[i] = campaignPosts[i].Post
	}

	result := s.est.EstimateCampaignReach(posts)

	if s.cache != nil {
		if err := s.cache.Set(ctx, campaignID, &result); err != nil {
			s.logger.Warn("reach cache write failed", "campaign_id", campaignID, "error", err)
		}
	}

	return &result, len(posts), nil
}
