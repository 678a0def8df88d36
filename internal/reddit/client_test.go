package reddit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const postsPage = `{
  "kind": "Listing",
  "data": {
    "after": "t3_bbb",
    "children": [
      {"kind": "t3", "data": {"id": "aaa", "name": "t3_aaa", "title": "First", "url": "https://i.redd.it/x.jpg"}},
      {"kind": "t3", "data": {"id": "bbb", "name": "t3_bbb", "title": "Second", "url": "https://example.com/post"}}
    ]
  }
}`

func TestListingURL(t *testing.T) {
	c := NewClient(Options{APIBaseURL: "https://oauth.example.com/", PageSize: 2, Region: "GB"})

	tests := []struct {
		name     string
		feedPath string
		after    string
		want     string
	}{
		{
			name:     "front page without cursor",
			feedPath: "/",
			want:     "https://oauth.example.com/hot?g=GB&limit=2&raw_json=1",
		},
		{
			name:     "subreddit with cursor",
			feedPath: "/r/golang/",
			after:    "t3_abc",
			want:     "https://oauth.example.com/r/golang/hot?after=t3_abc&g=GB&limit=2&raw_json=1",
		},
		{
			name:     "path without slashes",
			feedPath: "r/golang",
			want:     "https://oauth.example.com/r/golang/hot?g=GB&limit=2&raw_json=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ListingURL(tt.feedPath, tt.after); got != tt.want {
				t.Errorf("ListingURL(%q, %q) = %s, want %s", tt.feedPath, tt.after, got, tt.want)
			}
		})
	}
}

func TestFetchPosts(t *testing.T) {
	var gotAuth, gotAgent, gotAfter string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		gotAfter = r.URL.Query().Get("after")
		if r.URL.Path != "/r/pics/hot" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(postsPage))
	}))
	defer server.Close()

	c := NewClient(Options{APIBaseURL: server.URL, UserAgent: "test-agent"})
	listing, err := c.FetchPosts(context.Background(), "tok", "/r/pics/", "t3_zzz")
	if err != nil {
		t.Fatalf("FetchPosts() error = %v", err)
	}

	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok")
	}
	if gotAgent != "test-agent" {
		t.Errorf("User-Agent = %q, want %q", gotAgent, "test-agent")
	}
	if gotAfter != "t3_zzz" {
		t.Errorf("after = %q, want %q", gotAfter, "t3_zzz")
	}

	posts := listing.Items()
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].Title != "First" || posts[1].Title != "Second" {
		t.Errorf("unexpected titles: %q, %q", posts[0].Title, posts[1].Title)
	}
	if listing.After() != "t3_bbb" {
		t.Errorf("After() = %q, want t3_bbb", listing.After())
	}
}

func TestFetchPostsWithoutData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"kind": "Listing"}`))
	}))
	defer server.Close()

	c := NewClient(Options{APIBaseURL: server.URL})
	listing, err := c.FetchPosts(context.Background(), "tok", "/", "")
	if err != nil {
		t.Fatalf("a body without data should decode without error, got %v", err)
	}
	if listing.Data != nil {
		t.Errorf("expected nil Data, got %+v", listing.Data)
	}
	if listing.Items() != nil {
		t.Errorf("expected no items")
	}
}

func TestFetchPostsStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		target error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"server error", http.StatusInternalServerError, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"message": "nope"}`))
			}))
			defer server.Close()

			c := NewClient(Options{APIBaseURL: server.URL})
			_, err := c.FetchPosts(context.Background(), "tok", "/", "")

			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected *StatusError, got %v", err)
			}
			if statusErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, tt.status)
			}
			if strings.Contains(statusErr.URL, "?") {
				t.Errorf("status error URL should not carry a query: %s", statusErr.URL)
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected errors.Is(err, %v)", tt.target)
			}
		})
	}
}

func TestFetchSubscriptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/subreddits/mine/subscriber" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"kind": "Listing", "data": {"after": null, "children": [
			{"kind": "t5", "data": {"id": "2qh1i", "display_name": "golang", "display_name_prefixed": "r/golang", "url": "/r/golang/"}}
		]}}`))
	}))
	defer server.Close()

	c := NewClient(Options{APIBaseURL: server.URL})
	listing, err := c.FetchSubscriptions(context.Background(), "tok")
	if err != nil {
		t.Fatalf("FetchSubscriptions() error = %v", err)
	}

	subs := listing.Items()
	if len(subs) != 1 || subs[0].URL != "/r/golang/" || subs[0].DisplayNamePrefixed != "r/golang" {
		t.Errorf("unexpected subscriptions: %+v", subs)
	}
	if listing.After() != "" {
		t.Errorf("null after should decode as empty cursor, got %q", listing.After())
	}
}

func TestFetchComments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/r/golang/comments/abc" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[
			{"kind": "Listing", "data": {"children": [{"kind": "t3", "data": {"id": "abc", "title": "Post"}}]}},
			{"kind": "Listing", "data": {"children": [
				{"kind": "t1", "data": {"id": "c1", "author": "alice", "body": "top", "depth": 0, "replies": {
					"kind": "Listing", "data": {"children": [
						{"kind": "t1", "data": {"id": "c2", "author": "bob", "body": "reply", "depth": 1, "replies": ""}}
					]}
				}}},
				{"kind": "t1", "data": {"id": "c3", "author": "carol", "body": "second", "depth": 0, "replies": ""}},
				{"kind": "more", "data": {"id": "m1", "count": 4, "children": ["x", "y"]}}
			]}}
		]`))
	}))
	defer server.Close()

	c := NewClient(Options{APIBaseURL: server.URL})
	comments, err := c.FetchComments(context.Background(), "tok", "/r/golang/", "abc")
	if err != nil {
		t.Fatalf("FetchComments() error = %v", err)
	}

	if len(comments) != 2 {
		t.Fatalf("expected 2 top level comments, got %d", len(comments))
	}
	if len(comments[0].Replies) != 1 || comments[0].Replies[0].Author != "bob" {
		t.Errorf("expected nested reply from bob, got %+v", comments[0].Replies)
	}

	flat := FlattenComments(comments)
	wantIDs := []string{"c1", "c2", "c3"}
	if len(flat) != len(wantIDs) {
		t.Fatalf("expected %d flattened comments, got %d", len(wantIDs), len(flat))
	}
	for i, id := range wantIDs {
		if flat[i].ID != id {
			t.Errorf("flat[%d].ID = %s, want %s", i, flat[i].ID, id)
		}
	}
}

func TestPostIsImage(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://i.redd.it/abc.jpg", true},
		{"https://i.imgur.com/abc.PNG", true},
		{"https://i.imgur.com/abc.gif?x=1", true},
		{"https://example.com/photo.jpeg", true},
		{"https://www.reddit.com/r/golang/comments/abc/post/", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := (Post{URL: tt.url}).IsImage(); got != tt.want {
				t.Errorf("IsImage(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}
