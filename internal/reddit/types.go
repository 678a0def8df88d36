package reddit

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Thing kinds returned by the API
const (
	KindListing   = "Listing"
	KindComment   = "t1"
	KindPost      = "t3"
	KindSubreddit = "t5"
	KindMore      = "more"
)

// Thing is the kind/data envelope every API object is wrapped in.
type Thing[T any] struct {
	Kind string `json:"kind"`
	Data T      `json:"data"`
}

// ListingData is the payload of a Listing. After is the cursor for the next
// page and is empty once the end of the listing is reached.
type ListingData[T any] struct {
	After    string     `json:"after"`
	Before   string     `json:"before"`
	Dist     int        `json:"dist"`
	Children []Thing[T] `json:"children"`
}

// Listing is a single page of items. Data is nil when the response carried no
// data object; callers decide what that means.
type Listing[T any] struct {
	Kind string          `json:"kind"`
	Data *ListingData[T] `json:"data"`
}

// Items returns the unwrapped children, or nil when the listing has no data.
func (l Listing[T]) Items() []T {
	if l.Data == nil {
		return nil
	}
	items := make([]T, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		items = append(items, child.Data)
	}
	return items
}

// After returns the pagination cursor, or "" when there is none.
func (l Listing[T]) After() string {
	if l.Data == nil {
		return ""
	}
	return l.Data.After
}

type Post struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	URL          string  `json:"url"`
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	Subreddit    string  `json:"subreddit"`
	Permalink    string  `json:"permalink"`
	Selftext     string  `json:"selftext"`
	SelftextHTML string  `json:"selftext_html"`
	Domain       string  `json:"domain"`
	Score        int     `json:"score"`
	NumComments  int     `json:"num_comments"`
	Over18       bool    `json:"over_18"`
	IsSelf       bool    `json:"is_self"`
	CreatedUTC   float64 `json:"created_utc"`
}

var imageExtensions = []string{".jpg", ".gif", ".png", ".jpeg"}

// IsImage reports whether the post links straight to an image.
func (p Post) IsImage() bool {
	if p.URL == "" {
		return false
	}
	lower := strings.ToLower(p.URL)
	for _, ext := range imageExtensions {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}

func (p Post) Created() time.Time {
	return time.Unix(int64(p.CreatedUTC), 0)
}

type Subreddit struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	DisplayName         string `json:"display_name"`
	DisplayNamePrefixed string `json:"display_name_prefixed"`
	URL                 string `json:"url"`
	Title               string `json:"title"`
	Over18              bool   `json:"over18"`
}

type Comment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Author     string    `json:"author"`
	Body       string    `json:"body"`
	BodyHTML   string    `json:"body_html"`
	Score      int       `json:"score"`
	Depth      int       `json:"depth"`
	CreatedUTC float64   `json:"created_utc"`
	Replies    []Comment `json:"-"`
}

// UnmarshalJSON handles the replies field, which is either an empty string or
// a nested Listing of comments.
func (c *Comment) UnmarshalJSON(data []byte) error {
	type plain Comment
	aux := struct {
		*plain
		Replies json.RawMessage `json:"replies"`
	}{plain: (*plain)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	c.Replies = nil
	raw := bytes.TrimSpace(aux.Replies)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}

	var replies Listing[Comment]
	if err := json.Unmarshal(raw, &replies); err != nil {
		return err
	}
	c.Replies = commentsFromListing(replies)
	return nil
}

func commentsFromListing(l Listing[Comment]) []Comment {
	if l.Data == nil {
		return nil
	}
	var comments []Comment
	for _, child := range l.Data.Children {
		if child.Kind != KindComment {
			continue
		}
		comments = append(comments, child.Data)
	}
	return comments
}

// FlattenComments walks the comment tree depth first so a thread can be
// rendered as a flat, indented list.
func FlattenComments(comments []Comment) []Comment {
	var flat []Comment
	var walk func([]Comment)
	walk = func(cs []Comment) {
		for _, c := range cs {
			replies := c.Replies
			c.Replies = nil
			flat = append(flat, c)
			walk(replies)
		}
	}
	walk(comments)
	return flat
}

// TokenResponse is the body returned by the access token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
	Error       string `json:"error,omitempty"`
}
