package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tidwall/gjson"

	"github.com/vadim/neo-reach/internal/domain/reach/entity"
	"github.com/vadim/neo-reach/internal/domain/reach/estimator"
	"github.com/vadim/neo-reach/internal/domain/reach/policy"
	"github.com/vadim/neo-reach/internal/httpx/response"
	"github.com/vadim/neo-reach/internal/httpx/upstream/instagram"
)

const maxBodyBytes = 5 << 20

// ReachPolicy defines the interface for reach operations
// Interface is defined by consumer (handler), not provider (policy)
type ReachPolicy interface {
	Coefficients() entity.Coefficients
	EstimatePosts(posts []entity.Post) entity.CampaignReachResult
	EstimatePost(post entity.Post) entity.PostReach
	CampaignReach(ctx context.Context, campaignID string) (*entity.CampaignReachResult, error)
	RecordSnapshot(ctx context.Context, campaignID string) (*entity.Snapshot, error)
	ListSnapshots(ctx context.Context, campaignID string, limit int) ([]entity.Snapshot, error)
	RefreshCampaignMetrics(ctx context.Context, campaignID string) (*policy.RefreshOutput, error)
	ExportReport(ctx context.Context, campaignID string) (*policy.ExportOutput, error)
}

// ReachHandler handles HTTP requests for reach estimation
type ReachHandler struct {
	policy ReachPolicy
}

// NewReachHandler creates a new reach handler
func NewReachHandler(p ReachPolicy) *ReachHandler {
	return &ReachHandler{policy: p}
}

// RegisterRoutes registers reach routes
func (h *ReachHandler) RegisterRoutes(r chi.Router) {
	r.Route("/reach", func(r chi.Router) {
		r.Post("/estimate", h.Estimate())
		r.Post("/post", h.EstimatePost())
		r.Get("/coefficients", h.Coefficients())
	})

	r.Route("/campaigns/{id}", func(r chi.Router) {
		r.Get("/reach", h.CampaignReach())
		r.Post("/reach/snapshots", h.RecordSnapshot())
		r.Get("/reach/snapshots", h.ListSnapshots())
		r.Post("/reach/export", h.Export())
		r.Post("/refresh", h.Refresh())
	})
}

// Estimate handles POST /reach/estimate
// Body: {"posts": [...]} or a bare array of posts
func (h *ReachHandler) Estimate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readJSON(w, r)
		if !ok {
			return
		}

		root := gjson.ParseBytes(body)
		if root.IsObject() {
			root = root.Get("posts")
		}

		posts, err := estimator.DecodePosts(root)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.OK(w, h.policy.EstimatePosts(posts))
	}
}

// EstimatePost handles POST /reach/post
func (h *ReachHandler) EstimatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readJSON(w, r)
		if !ok {
			return
		}

		post, err := estimator.ParsePost(body)
		if err != nil {
			response.BadRequest(w, "post must be an object")
			return
		}

		response.OK(w, h.policy.EstimatePost(post))
	}
}

// Coefficients handles GET /reach/coefficients
func (h *ReachHandler) Coefficients() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, h.policy.Coefficients())
	}
}

// CampaignReach handles GET /campaigns/{id}/reach
func (h *ReachHandler) CampaignReach() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := h.policy.CampaignReach(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.OK(w, out)
	}
}

// RecordSnapshot handles POST /campaigns/{id}/reach/snapshots
func (h *ReachHandler) RecordSnapshot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := h.policy.RecordSnapshot(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.Created(w, snap)
	}
}

// ListSnapshotsResponse represents the response for listing snapshots
type ListSnapshotsResponse struct {
	Snapshots []entity.Snapshot `json:"snapshots"`
	Limit     int               `json:"limit"`
}

// ListSnapshots handles GET /campaigns/{id}/reach/snapshots
func (h *ReachHandler) ListSnapshots() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				response.BadRequest(w, "limit must be a non-negative integer")
				return
			}
			limit = n
		}

		snapshots, err := h.policy.ListSnapshots(r.Context(), chi.URLParam(r, "id"), limit)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.OK(w, ListSnapshotsResponse{Snapshots: snapshots, Limit: limit})
	}
}

// Export handles POST /campaigns/{id}/reach/export
func (h *ReachHandler) Export() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := h.policy.ExportReport(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.Created(w, out)
	}
}

// Refresh handles POST /campaigns/{id}/refresh
func (h *ReachHandler) Refresh() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := h.policy.RefreshCampaignMetrics(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.OK(w, out)
	}
}

func readJSON(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		response.BadRequest(w, "failed to read request body")
		return nil, false
	}

	if !gjson.ValidBytes(body) {
		response.BadRequest(w, "invalid JSON")
		return nil, false
	}

	return body, true
}

// handleDomainError maps domain errors to HTTP responses
func handleDomainError(w http.ResponseWriter, err error) {
	var apiErr *instagram.APIError

	switch {
	case errors.Is(err, entity.ErrInvalidInput), errors.Is(err, entity.ErrEmptyCampaignID):
		response.BadRequest(w, err.Error())
	case errors.Is(err, entity.ErrCampaignNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, entity.ErrCampaignStoreNotConfigured),
		errors.Is(err, entity.ErrUpstreamNotConfigured),
		errors.Is(err, entity.ErrStorageNotConfigured):
		response.ServiceUnavailable(w, err.Error())
	case errors.As(err, &apiErr):
		switch {
		case apiErr.IsUnauthorized():
			response.Unauthorized(w, "instagram access token is invalid or expired")
		case apiErr.IsRateLimited():
			response.TooManyRequests(w, "instagram API rate limit exceeded")
		default:
			response.BadGateway(w, "instagram API request failed")
		}
	default:
		response.InternalError(w, "internal server error")
	}
}
