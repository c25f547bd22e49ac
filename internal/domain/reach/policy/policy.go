package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vadim/neo-reach/internal/domain/reach/entity"
)

// ReachService defines the reach operations the policy orchestrates
type ReachService interface {
	Coefficients() entity.Coefficients
	EstimatePosts(posts []entity.Post) entity.CampaignReachResult
	EstimatePost(post entity.Post) entity.PostReach
	GetCampaign(ctx context.Context, id string) (*entity.Campaign, error)
	ListActiveCampaigns(ctx context.Context) ([]entity.Campaign, error)
	ListCampaignPosts(ctx context.Context, campaignID string) ([]entity.CampaignPost, error)
	UpdatePostMetrics(ctx context.Context, postID string, m entity.PostMetrics) error
	CampaignReach(ctx context.Context, campaignID string) (*entity.CampaignReachResult, error)
	RecordSnapshot(ctx context.Context, campaignID string) (*entity.Snapshot, error)
	ListSnapshots(ctx context.Context, campaignID string, limit int) ([]entity.Snapshot, error)
	InvalidateCampaign(ctx context.Context, campaignID string)
}

// AccountProvider provides access token and user ID for an account
type AccountProvider interface {
	GetAccessToken(ctx context.Context, accountID string) (string, error)
	GetInstagramUserID(ctx context.Context, accountID string) (string, error)
}

// MediaMetrics represents current engagement counters of a media object
type MediaMetrics struct {
	Likes    int64
	Comments int64
	Views    *int64
	IsVideo  bool
}

// AccountMetrics represents profile counters of the campaign account
type AccountMetrics struct {
	Username       string
	FollowersCount int64
}

// MetricsFetcher reads current engagement from the platform.
// This interface is defined here (consumer) not in the upstream package (provider)
type MetricsFetcher interface {
	FetchMedia(ctx context.Context, mediaID, accessToken string) (*MediaMetrics, error)
	FetchAccount(ctx context.Context, userID, accessToken string) (*AccountMetrics, error)
}

// ReportLocation represents where an exported report was stored
type ReportLocation struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ReportUploader stores exported reports
type ReportUploader interface {
	Upload(ctx context.Context, campaignID string, body []byte) (*ReportLocation, error)
}

// Policy orchestrates reach use-cases
type Policy struct {
	svc      ReachService
	accounts AccountProvider
	metrics  MetricsFetcher // optional, for metric refresh
	reports  ReportUploader // optional, for report export
	logger   *slog.Logger
}

// New creates a new reach policy
func New(svc ReachService, accounts AccountProvider, logger *slog.Logger) *Policy {
	return &Policy{
		svc:      svc,
		accounts: accounts,
		logger:   logger,
	}
}

// WithMetricsFetcher sets the platform metrics source
func (p *Policy) WithMetricsFetcher(m MetricsFetcher) *Policy {
	p.metrics = m
	return p
}

// WithReportUploader sets the report storage
func (p *Policy) WithReportUploader(u ReportUploader) *Policy {
	p.reports = u
	return p
}

// Coefficients returns the reach policy in use
func (p *Policy) Coefficients() entity.Coefficients {
	return p.svc.Coefficients()
}

// EstimatePosts computes campaign reach for caller-supplied posts
func (p *Policy) EstimatePosts(posts []entity.Post) entity.CampaignReachResult {
	return p.svc.EstimatePosts(posts)
}

// EstimatePost computes the reach breakdown of one caller-supplied post
func (p *Policy) EstimatePost(post entity.Post) entity.PostReach {
	return p.svc.EstimatePost(post)
}

// CampaignReach returns the current reach of a stored campaign
func (p *Policy) CampaignReach(ctx context.Context, campaignID string) (*entity.CampaignReachResult, error) {
	return p.svc.CampaignReach(ctx, campaignID)
}

// RecordSnapshot computes and stores the reach of a campaign
func (p *Policy) RecordSnapshot(ctx context.Context, campaignID string) (*entity.Snapshot, error) {
	return p.svc.RecordSnapshot(ctx, campaignID)
}

// ListSnapshots retrieves stored reach computations of a campaign
func (p *Policy) ListSnapshots(ctx context.Context, campaignID string, limit int) ([]entity.Snapshot, error) {
	return p.svc.ListSnapshots(ctx, campaignID, limit)
}

// RefreshOutput summarizes a metric refresh
type RefreshOutput struct {
	CampaignID string `json:"campaign_id"`
	Updated    int    `json:"updated"`
	Skipped    int    `json:"skipped"` // Posts without a platform media ID
	Failed     int    `json:"failed"`
}

// RefreshCampaignMetrics pulls current engagement for every campaign post
// from the platform. Per-post failures are counted, not returned.
func (p *Policy) RefreshCampaignMetrics(ctx context.Context, campaignID string) (*RefreshOutput, error) {
	if p.metrics == nil {
		return nil, entity.ErrUpstreamNotConfigured
	}

	campaign, err := p.svc.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	accessToken, err := p.accounts.GetAccessToken(ctx, campaign.AccountID)
	if err != nil {
		return nil, err
	}

	// Follower counts are only available for the account that owns the token
	var account *AccountMetrics
	userID, err := p.accounts.GetInstagramUserID(ctx, campaign.AccountID)
	if err == nil {
		account, err = p.metrics.FetchAccount(ctx, userID, accessToken)
	}
	if err != nil {
		p.logger.Warn("failed to fetch account followers", "campaign_id", campaignID, "error", err)
		account = nil
	}

	posts, err := p.svc.ListCampaignPosts(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	out := &RefreshOutput{CampaignID: campaignID}
	for _, post := range posts {
		if post.InstagramMediaID == "" {
			out.Skipped++
			continue
		}

		m, err := p.metrics.FetchMedia(ctx, post.InstagramMediaID, accessToken)
		if err != nil {
			p.logger.Warn("failed to fetch media metrics",
				"campaign_id", campaignID,
				"post_id", post.ID,
				"media_id", post.InstagramMediaID,
				"error", err,
			)
			out.Failed++
			continue
		}

		update := entity.PostMetrics{
			Likes:    m.Likes,
			Comments: m.Comments,
			Views:    m.Views,
			IsVideo:  m.IsVideo,
		}
		if account != nil && strings.EqualFold(account.Username, post.CreatorUsername) {
			update.FollowersCount = account.FollowersCount
		}

		if err := p.svc.UpdatePostMetrics(ctx, post.ID, update); err != nil {
			return nil, fmt.Errorf("updating post %s: %w", post.ID, err)
		}
		out.Updated++
	}

	p.svc.InvalidateCampaign(ctx, campaignID)

	p.logger.Info("campaign metrics refreshed",
		"campaign_id", campaignID,
		"updated", out.Updated,
		"skipped", out.Skipped,
		"failed", out.Failed,
	)

	return out, nil
}

// Report represents an exported campaign reach report
type Report struct {
	CampaignID   string                     `json:"campaign_id"`
	CampaignName string                     `json:"campaign_name"`
	GeneratedAt  time.Time                  `json:"generated_at"`
	Coefficients entity.Coefficients        `json:"coefficients"`
	Result       entity.CampaignReachResult `json:"result"`
}

// ExportOutput represents output from exporting a report
type ExportOutput struct {
	Location   ReportLocation `json:"location"`
	TotalReach int64          `json:"total_reach"`
}

// ExportReport uploads the campaign reach with its policy as a JSON report
func (p *Policy) ExportReport(ctx context.Context, campaignID string) (*ExportOutput, error) {
	if p.reports == nil {
		return nil, entity.ErrStorageNotConfigured
	}

	campaign, err := p.svc.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	result, err := p.svc.CampaignReach(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(Report{
		CampaignID:   campaign.ID,
		CampaignName: campaign.Name,
		GeneratedAt:  time.Now().UTC(),
		Coefficients: p.svc.Coefficients(),
		Result:       *result,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}

	loc, err := p.reports.Upload(ctx, campaignID, body)
	if err != nil {
		return nil, err
	}

	return &ExportOutput{Location: *loc, TotalReach: result.TotalReach}, nil
}

// ProcessActiveCampaigns refreshes and snapshots every active campaign.
// This should be called by a cron job or scheduler
func (p *Policy) ProcessActiveCampaigns(ctx context.Context) error {
	campaigns, err := p.svc.ListActiveCampaigns(ctx)
	if err != nil {
		return err
	}

	for _, c := range campaigns {
		if err := ctx.Err(); err != nil {
			return err
		}

		if p.metrics != nil {
			if _, err := p.RefreshCampaignMetrics(ctx, c.ID); err != nil {
				p.logger.Error("failed to refresh campaign metrics", "campaign_id", c.ID, "error", err)
			}
		}

		if _, err := p.svc.RecordSnapshot(ctx, c.ID); err != nil {
			p.logger.Error("failed to record reach snapshot", "campaign_id", c.ID, "error", err)
			continue
		}
	}

	return nil
}
