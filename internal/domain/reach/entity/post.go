package entity

import "math"

// CollaborationType represents how a collaborator is attached to a post
type CollaborationType string

const (
	CollaborationCoauthorProducer CollaborationType = "coauthor_producer"
	CollaborationTaggedUser       CollaborationType = "tagged_user"
	CollaborationMention          CollaborationType = "mention"
)

// Collaborator represents an account attached to a collaborative post
type Collaborator struct {
	Username string            `json:"username"`
	Type     CollaborationType `json:"collaboration_type"`
}

// ContributesReach returns true if the collaborator brings its own audience
func (c Collaborator) ContributesReach() bool {
	return c.Type == CollaborationCoauthorProducer
}

// Post represents a single campaign post with its engagement signals
type Post struct {
	ID                    string         `json:"id"`
	CreatorUsername       string         `json:"creator_username"`
	CreatorFollowersCount int64          `json:"creator_followers_count"`
	Likes                 int64          `json:"likes"`
	Comments              int64          `json:"comments"`
	Views                 *int64         `json:"views,omitempty"` // nil when the platform did not report views
	IsVideo               bool           `json:"is_video"`
	IsCollaboration       bool           `json:"is_collaboration"`
	Collaborators         []Collaborator `json:"collaborators"`
}

// Engagement returns likes + comments, ignoring negative counters.
// The sum saturates at math.MaxInt64.
func (p *Post) Engagement() int64 {
	likes, comments := nonNegative(p.Likes), nonNegative(p.Comments)
	if likes > math.MaxInt64-comments {
		return math.MaxInt64
	}
	return likes + comments
}

// ViewCount returns the reported views and whether they are usable
func (p *Post) ViewCount() (int64, bool) {
	if p.Views == nil || *p.Views <= 0 {
		return 0, false
	}
	return *p.Views, true
}

// Coauthors returns the collaborators that contribute additional reach
func (p *Post) Coauthors() []Collaborator {
	var out []Collaborator
	for _, c := range p.Collaborators {
		if c.ContributesReach() {
			out = append(out, c)
		}
	}
	return out
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
