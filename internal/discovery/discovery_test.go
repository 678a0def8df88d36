package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizeFeedPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"Front page", "/", "/", false},
		{"Bare name", "golang", "/r/golang/", false},
		{"Short form", "r/golang", "/r/golang/", false},
		{"Path form", "/r/golang", "/r/golang/", false},
		{"Trailing slash", "/r/golang/", "/r/golang/", false},
		{"Reddit URL", "https://www.reddit.com/r/golang/", "/r/golang/", false},
		{"Old reddit sort", "https://old.reddit.com/r/golang/top/?t=week", "/r/golang/", false},
		{"Comment permalink", "https://www.reddit.com/r/golang/comments/abc/title/", "/r/golang/", false},
		{"RSS URL", "https://www.reddit.com/r/golang/.rss", "/r/golang/", false},
		{"User short", "u/spez", "/user/spez/", false},
		{"User path", "/user/spez/submitted", "/user/spez/", false},
		{"Reddit root", "https://www.reddit.com", "/", false},
		{"Empty", "  ", "", true},
		{"Other site", "https://example.com/r/golang", "", true},
		{"Bad name", "go lang", "", true},
		{"Unknown prefix", "/x/golang", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeFeedPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeFeedPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidFeed) {
				t.Errorf("error should wrap ErrInvalidFeed, got %v", err)
			}
			if got != tt.want {
				t.Errorf("NormalizeFeedPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGetURLType(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want URLType
	}{
		{"Empty", "", URLTypeUnknown},
		{"Short name", "golang", URLTypeShortName},
		{"Reddit", "https://www.reddit.com/r/golang", URLTypeRedditURL},
		{"Bare reddit host", "https://reddit.com/r/golang", URLTypeRedditURL},
		{"Lookalike host", "https://notreddit.com/r/golang", URLTypeOtherURL},
		{"Other site", "https://example.com", URLTypeOtherURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetURLType(tt.url); got != tt.want {
				t.Errorf("GetURLType(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestDiscoverFeedFromHTML(t *testing.T) {
	tests := []struct {
		name    string
		content string
		baseURL string
		wantURL string
		wantErr bool
	}{
		{
			name:    "Alternate RSS link",
			content: `<html><head><link rel="alternate" type="application/rss+xml" href="https://www.reddit.com/r/golang/.rss"></head></html>`,
			baseURL: "https://blog.example.com/post",
			wantURL: "/r/golang/",
		},
		{
			name: "Skips non reddit feeds",
			content: `<html><head>
				<link rel="alternate" type="application/atom+xml" href="/atom.xml">
				<link rel="alternate" type="application/rss+xml" href="https://www.reddit.com/user/spez/.rss">
				</head></html>`,
			baseURL: "https://blog.example.com/",
			wantURL: "/user/spez/",
		},
		{
			name:    "Relative link on reddit page",
			content: `<html><head><link rel="alternate" type="application/rss+xml" href="/r/pics/.rss"></head></html>`,
			baseURL: "https://www.reddit.com/r/pics/",
			wantURL: "/r/pics/",
		},
		{
			name:    "Anchor to rss",
			content: `<html><body><a href="https://www.reddit.com/r/rust/.rss">feed</a></body></html>`,
			baseURL: "https://example.com",
			wantURL: "/r/rust/",
		},
		{
			name:    "No feed available",
			content: `<html><head><title>nothing</title></head></html>`,
			baseURL: "https://example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotURL, err := DiscoverFeedFromHTML(tt.content, tt.baseURL)
			if (err != nil) != tt.wantErr {
				t.Errorf("DiscoverFeedFromHTML() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if gotURL != tt.wantURL {
				t.Errorf("DiscoverFeedFromHTML() = %v, want %v", gotURL, tt.wantURL)
			}
		})
	}
}

func TestDiscoverFeedFromPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, `<html><head><link rel="alternate" type="application/rss+xml" href="https://www.reddit.com/r/golang/.rss"></head></html>`)
	}))
	defer server.Close()

	got, err := DiscoverFeed(context.Background(), server.URL+"/page")
	if err != nil {
		t.Fatalf("DiscoverFeed() error = %v", err)
	}
	if got != "/r/golang/" {
		t.Errorf("DiscoverFeed() = %q, want /r/golang/", got)
	}

	got, err = DiscoverFeed(context.Background(), "r/pics")
	if err != nil || got != "/r/pics/" {
		t.Errorf("DiscoverFeed(r/pics) = %q, %v", got, err)
	}
}

func TestValidateFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/r/golang/.rss":
			w.Header().Set("Content-Type", "application/atom+xml")
			_, _ = fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>The Go Programming Language</title>
  <entry><title>Go 1.25 is released</title><id>t3_x</id></entry>
</feed>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	title, err := ValidateFeed(context.Background(), server.URL, "/r/golang/")
	if err != nil {
		t.Fatalf("ValidateFeed() error = %v", err)
	}
	if title != "The Go Programming Language" {
		t.Errorf("title = %q", title)
	}

	if _, err := ValidateFeed(context.Background(), server.URL, "/r/missing/"); err == nil {
		t.Error("expected an error for a missing feed")
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name        string
		baseURL     string
		relativeURL string
		want        string
	}{
		{"Absolute path", "https://example.com/blog/post", "/feed.rss", "https://example.com/feed.rss"},
		{"Relative path", "https://example.com/blog/", "feed.rss", "https://example.com/blog/feed.rss"},
		{"Already absolute", "https://example.com/", "https://www.reddit.com/.rss", "https://www.reddit.com/.rss"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveURL(tt.baseURL, tt.relativeURL); got != tt.want {
				t.Errorf("resolveURL(%q, %q) = %v, want %v", tt.baseURL, tt.relativeURL, got, tt.want)
			}
		})
	}
}
