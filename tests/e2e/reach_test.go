package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"
)

// Runs against a live server, e.g. E2E_BASE_URL=http://localhost:8080/api/v1
func baseURL(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}
	url := os.Getenv("E2E_BASE_URL")
	if url == "" {
		t.Skip("E2E_BASE_URL is not set")
	}
	return url
}

type Collaborator struct {
	Username          string `json:"username"`
	CollaborationType string `json:"collaboration_type"`
}

type Post struct {
	ID                    string         `json:"id,omitempty"`
	CreatorUsername       string         `json:"creator_username"`
	CreatorFollowersCount int64          `json:"creator_followers_count"`
	Likes                 int64          `json:"likes"`
	Comments              int64          `json:"comments"`
	Views                 *int64         `json:"views,omitempty"`
	IsVideo               bool           `json:"is_video"`
	Collaborators         []Collaborator `json:"collaborators,omitempty"`
}

type EstimateRequest struct {
	Posts []Post `json:"posts"`
}

type CampaignReach struct {
	TotalReach      int64            `json:"total_reach"`
	PerCreatorReach map[string]int64 `json:"per_creator_reach"`
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()

	body, _ := json.Marshal(payload)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	return resp
}

// TestReachEstimate tests POST /reach/estimate
func TestReachEstimate(t *testing.T) {
	base := baseURL(t)

	t.Run("single creator", func(t *testing.T) {
		resp := postJSON(t, base+"/reach/estimate", EstimateRequest{Posts: []Post{
			{CreatorUsername: "alice", CreatorFollowersCount: 10000, Likes: 200, Comments: 50},
		}})
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, string(respBody))
		}

		var out CampaignReach
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if out.TotalReach != 12500 {
			t.Errorf("Expected total_reach 12500, got %d", out.TotalReach)
		}
	})

	t.Run("multi creator boost", func(t *testing.T) {
		resp := postJSON(t, base+"/reach/estimate", EstimateRequest{Posts: []Post{
			{CreatorUsername: "alice", Likes: 100},
			{CreatorUsername: "bob", Likes: 100},
		}})
		defer resp.Body.Close()

		var out CampaignReach
		json.NewDecoder(resp.Body).Decode(&out)
		if out.TotalReach != 24000 {
			t.Errorf("Expected total_reach 24000, got %d", out.TotalReach)
		}
		if len(out.PerCreatorReach) != 2 {
			t.Errorf("Expected 2 creators, got %d", len(out.PerCreatorReach))
		}
	})

	t.Run("video post", func(t *testing.T) {
		views := int64(50000)
		resp := postJSON(t, base+"/reach/estimate", EstimateRequest{Posts: []Post{
			{CreatorUsername: "carol", CreatorFollowersCount: 20000, Likes: 300, Views: &views, IsVideo: true},
		}})
		defer resp.Body.Close()

		var out CampaignReach
		json.NewDecoder(resp.Body).Decode(&out)
		if out.TotalReach != 50000 {
			t.Errorf("Expected total_reach 50000, got %d", out.TotalReach)
		}
	})

	t.Run("non-array posts fails", func(t *testing.T) {
		resp := postJSON(t, base+"/reach/estimate", map[string]any{"posts": "nope"})
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", resp.StatusCode)
		}
	})
}

// TestReachPost tests POST /reach/post
func TestReachPost(t *testing.T) {
	base := baseURL(t)

	resp := postJSON(t, base+"/reach/post", Post{
		ID:                    "p1",
		CreatorUsername:       "alice",
		CreatorFollowersCount: 10000,
		Likes:                 200,
		Comments:              50,
		Collaborators:         []Collaborator{{Username: "bob", CollaborationType: "coauthor_producer"}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var out struct {
		TotalReach int64 `json:"total_reach"`
	}
	json.NewDecoder(resp.Body).Decode(&out)
	if out.TotalReach != 17750 {
		t.Errorf("Expected total_reach 17750, got %d", out.TotalReach)
	}
}

// TestReachCoefficients tests GET /reach/coefficients
func TestReachCoefficients(t *testing.T) {
	base := baseURL(t)

	resp, err := http.Get(base + "/reach/coefficients")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var c map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(c) == 0 {
		t.Error("Expected coefficients to be returned")
	}
}

// TestCampaignReachNotFound tests GET /campaigns/{id}/reach for an unknown campaign
func TestCampaignReachNotFound(t *testing.T) {
	base := baseURL(t)

	resp, err := http.Get(base + "/campaigns/does-not-exist/reach")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	// 503 when the server runs without a database
	if resp.StatusCode != http.StatusNotFound && resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status 404 or 503, got %d", resp.StatusCode)
	}
}
