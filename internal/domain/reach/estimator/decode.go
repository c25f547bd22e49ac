package estimator

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/vadim/neo-reach/internal/domain/reach/entity"
)

// ParsePosts decodes a loosely-typed JSON array of posts.
// Only a value that is not an array is rejected; malformed fields inside a
// post are coerced to their zero value.
func ParsePosts(data []byte) ([]entity.Post, error) {
	if !gjson.ValidBytes(data) {
		return nil, entity.ErrInvalidInput
	}

	return DecodePosts(gjson.ParseBytes(data))
}

// DecodePosts decodes an already parsed JSON value into posts
func DecodePosts(v gjson.Result) ([]entity.Post, error) {
	if !v.IsArray() {
		return nil, entity.ErrInvalidInput
	}

	posts := make([]entity.Post, 0)
	v.ForEach(func(_, item gjson.Result) bool {
		if item.IsObject() {
			posts = append(posts, DecodePost(item))
		}
		return true
	})

	return posts, nil
}

// ParsePost decodes a single loosely-typed JSON post object
func ParsePost(data []byte) (entity.Post, error) {
	if !gjson.ValidBytes(data) {
		return entity.Post{}, entity.ErrInvalidInput
	}

	v := gjson.ParseBytes(data)
	if !v.IsObject() {
		return entity.Post{}, entity.ErrInvalidInput
	}

	return DecodePost(v), nil
}

// DecodePost coerces a JSON object into a post
func DecodePost(v gjson.Result) entity.Post {
	post := entity.Post{
		ID:                    strings.TrimSpace(v.Get("id").String()),
		CreatorUsername:       firstString(v, "creator_username", "creator.username", "username"),
		CreatorFollowersCount: count(v.Get("creator_followers_count")),
		Likes:                 count(v.Get("likes")),
		Comments:              count(v.Get("comments")),
		IsVideo:               flag(v.Get("is_video")),
		IsCollaboration:       flag(v.Get("is_collaboration")),
		Collaborators:         []entity.Collaborator{},
	}

	if views := v.Get("views"); views.Exists() && views.Type != gjson.Null {
		n := count(views)
		post.Views = &n
	}

	if collabs := v.Get("collaborators"); collabs.IsArray() {
		collabs.ForEach(func(_, item gjson.Result) bool {
			if !item.IsObject() {
				return true
			}
			username := strings.TrimSpace(item.Get("username").String())
			if username == "" {
				return true
			}
			post.Collaborators = append(post.Collaborators, entity.Collaborator{
				Username: username,
				Type:     entity.CollaborationType(strings.ToLower(strings.TrimSpace(item.Get("collaboration_type").String()))),
			})
			return true
		})
	}

	return post
}

func firstString(v gjson.Result, paths ...string) string {
	for _, p := range paths {
		if s := strings.TrimSpace(v.Get(p).String()); s != "" {
			return s
		}
	}
	return ""
}

// count coerces a JSON value to a non-negative integer counter
func count(v gjson.Result) int64 {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Num
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(f)
}

func flag(v gjson.Result) bool {
	switch v.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		b, err := strconv.ParseBool(strings.TrimSpace(v.Str))
		return err == nil && b
	default:
		return false
	}
}
