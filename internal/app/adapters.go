package app

import (
	"context"
	"time"

	"github.com/vadim/neo-reach/internal/domain/reach/policy"
	"github.com/vadim/neo-reach/internal/httpx/upstream/instagram"
	"github.com/vadim/neo-reach/internal/storage"
)

// instagramMetricsAdapter adapts instagram.Client to policy.MetricsFetcher
type instagramMetricsAdapter struct {
	client *instagram.Client
}

func (a *instagramMetricsAdapter) FetchMedia(ctx context.Context, mediaID, accessToken string) (*policy.MediaMetrics, error) {
	in := instagram.GetMediaInput{MediaID: mediaID, AccessToken: accessToken}

	media, err := a.client.GetMedia(ctx, in)
	if err != nil {
		return nil, err
	}

	out := &policy.MediaMetrics{
		Likes:    media.LikeCount,
		Comments: media.CommentsCount,
		IsVideo:  media.IsVideo(),
	}

	// Views are only reported for video media
	if out.IsVideo {
		views, ok, err := a.client.GetMediaViews(ctx, in)
		if err != nil {
			return nil, err
		}
		if ok {
			out.Views = &views
		}
	}

	return out, nil
}

func (a *instagramMetricsAdapter) FetchAccount(ctx context.Context, userID, accessToken string) (*policy.AccountMetrics, error) {
	account, err := a.client.GetAccount(ctx, instagram.GetAccountInput{
		UserID:      userID,
		AccessToken: accessToken,
	})
	if err != nil {
		return nil, err
	}
	return &policy.AccountMetrics{
		Username:       account.Username,
		FollowersCount: account.FollowersCount,
	}, nil
}

// s3ReportAdapter adapts storage.S3Storage to policy.ReportUploader
type s3ReportAdapter struct {
	storage *storage.S3Storage
}

func (a *s3ReportAdapter) Upload(ctx context.Context, campaignID string, body []byte) (*policy.ReportLocation, error) {
	out, err := a.storage.PutReport(ctx, storage.ReportInput{
		CampaignID: campaignID,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return &policy.ReportLocation{Key: out.Key, URL: out.URL}, nil
}
