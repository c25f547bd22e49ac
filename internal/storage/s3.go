package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Config holds S3/MinIO configuration
type S3Config struct {
	Endpoint        string // e.g., "http://localhost:9000" for MinIO
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	PublicURL       string // Public URL for accessing files (e.g., "http://localhost:9000/reports")
}

// S3Storage stores exported reach reports in an S3-compatible bucket
type S3Storage struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3Storage creates a new S3 storage client
func NewS3Storage(cfg S3Config) *S3Storage {
	// Create S3 client with static credentials and custom endpoint
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(cfg.Endpoint),
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		UsePathStyle: true, // Required for MinIO
	})

	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}
}

// ReportInput represents a JSON report to store
type ReportInput struct {
	CampaignID string
	Body       []byte
	CreatedAt  time.Time
}

// ReportOutput represents a stored report
type ReportOutput struct {
	Key        string    `json:"key"` // Object key in S3
	URL        string    `json:"url"` // Public URL to access the report
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ReportKey builds the object key for a campaign report
func ReportKey(campaignID string, at time.Time) string {
	return fmt.Sprintf("reports/%s/%s/%s.json", campaignID, at.UTC().Format("2006/01/02"), uuid.New().String())
}

// PutReport uploads a JSON report and returns its public URL
func (s *S3Storage) PutReport(ctx context.Context, in ReportInput) (*ReportOutput, error) {
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}
	key := ReportKey(in.CampaignID, in.CreatedAt)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(in.Body),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(in.Body))),
	})
	if err != nil {
		return nil, fmt.Errorf("uploading report to s3: %w", err)
	}

	return &ReportOutput{
		Key:        key,
		URL:        fmt.Sprintf("%s/%s", s.publicURL, key),
		Size:       int64(len(in.Body)),
		UploadedAt: time.Now(),
	}, nil
}

// Delete removes a report from S3
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting from s3: %w", err)
	}
	return nil
}
