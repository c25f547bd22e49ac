package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL    = "https://graph.instagram.com"
	defaultAPIVersion = "v21.0"
	defaultTimeout    = 30 * time.Second
)

// Client is an Instagram Graph API client for reading engagement metrics
type Client struct {
	baseURL    string
	apiVersion string
	httpClient *http.Client
}

// ClientOption is a function that configures the Client
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithAPIVersion sets the API version
func WithAPIVersion(version string) ClientOption {
	return func(c *Client) {
		c.apiVersion = version
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a new Instagram API client
func New(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiVersion: defaultAPIVersion,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an error from the Instagram API
type APIError struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode"`
	FBTraceID    string `json:"fbtrace_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("instagram API error: %s (code: %d, subcode: %d)", e.Message, e.Code, e.ErrorSubcode)
}

// IsRateLimited returns true for application or user throttling errors
func (e *APIError) IsRateLimited() bool {
	switch e.Code {
	case 4, 17, 32, 613:
		return true
	}
	return false
}

// IsUnauthorized returns true if the access token is invalid or expired
func (e *APIError) IsUnauthorized() bool {
	return e.Code == 190
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// MediaType represents the Graph API media type
type MediaType string

const (
	MediaTypeImage         MediaType = "IMAGE"
	MediaTypeVideo         MediaType = "VIDEO"
	MediaTypeCarouselAlbum MediaType = "CAROUSEL_ALBUM"
)

// MediaData represents engagement fields of a media object
type MediaData struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	MediaType        MediaType `json:"media_type"`
	MediaProductType string    `json:"media_product_type"` // FEED, REELS, STORY
	LikeCount        int64     `json:"like_count"`
	CommentsCount    int64     `json:"comments_count"`
}

// IsVideo returns true for video and reel media
func (m *MediaData) IsVideo() bool {
	return m.MediaType == MediaTypeVideo || m.MediaProductType == "REELS"
}

// GetMediaInput represents input for reading a media object
type GetMediaInput struct {
	MediaID     string
	AccessToken string
}

// GetMedia retrieves like and comment counters of a media object
// GET /{media-id}?fields=...
func (c *Client) GetMedia(ctx context.Context, in GetMediaInput) (*MediaData, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, c.apiVersion, in.MediaID)

	params := url.Values{}
	params.Set("access_token", in.AccessToken)
	params.Set("fields", "id,username,media_type,media_product_type,like_count,comments_count")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var out MediaData
	if err := c.do(req, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// InsightValue represents a single metric value
type InsightValue struct {
	Value int64 `json:"value"`
}

// Insight represents a metric returned by the insights endpoint
type Insight struct {
	Name   string         `json:"name"`
	Period string         `json:"period"`
	Values []InsightValue `json:"values"`
}

// InsightsResponse represents the insights endpoint payload
type InsightsResponse struct {
	Data []Insight `json:"data"`
}

// Value returns the latest value of a metric and whether it was present
func (r *InsightsResponse) Value(name string) (int64, bool) {
	for _, in := range r.Data {
		if in.Name == name && len(in.Values) > 0 {
			return in.Values[len(in.Values)-1].Value, true
		}
	}
	return 0, false
}

// GetMediaViews retrieves the video view count of a media object.
// Returns false when the platform does not report views for the media.
// GET /{media-id}/insights?metric=views
func (c *Client) GetMediaViews(ctx context.Context, in GetMediaInput) (int64, bool, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/insights", c.baseURL, c.apiVersion, in.MediaID)

	params := url.Values{}
	params.Set("access_token", in.AccessToken)
	params.Set("metric", "views")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return 0, false, fmt.Errorf("creating request: %w", err)
	}

	var out InsightsResponse
	if err := c.do(req, &out); err != nil {
		return 0, false, err
	}

	views, ok := out.Value("views")
	return views, ok, nil
}

// AccountData represents profile counters of an Instagram account
type AccountData struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	FollowersCount int64  `json:"followers_count"`
	MediaCount     int64  `json:"media_count"`
}

// GetAccountInput represents input for reading an account profile
type GetAccountInput struct {
	UserID      string
	AccessToken string
}

// GetAccount retrieves the follower count of an account
// GET /{user-id}?fields=id,username,followers_count,media_count
func (c *Client) GetAccount(ctx context.Context, in GetAccountInput) (*AccountData, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, c.apiVersion, in.UserID)

	params := url.Values{}
	params.Set("access_token", in.AccessToken)
	params.Set("fields", "id,username,followers_count,media_count")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var out AccountData
	if err := c.do(req, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// do executes the request and decodes the response
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	// Check for error response
	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
			return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
		}
		return &errResp.Error
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
