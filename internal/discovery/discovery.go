package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jarv/snoogoat/internal/version"
	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"
)

// DefaultRSSBaseURL serves the public RSS rendition of every listing.
const DefaultRSSBaseURL = "https://www.reddit.com"

const fetchTimeout = 15 * time.Second

var ErrInvalidFeed = errors.New("not a reddit feed")

// Name rules are looser than reddit's own; anything that slips through fails
// validation against the RSS endpoint.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_+-]+$`)

// URLType classifies input given to the add command.
type URLType int

const (
	URLTypeUnknown URLType = iota
	URLTypeShortName
	URLTypeRedditURL
	URLTypeOtherURL
)

// GetURLType determines what kind of input was given.
func GetURLType(input string) URLType {
	input = strings.TrimSpace(input)
	if input == "" {
		return URLTypeUnknown
	}

	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		u, err := url.Parse(input)
		if err != nil {
			return URLTypeUnknown
		}
		if isRedditHost(u.Hostname()) {
			return URLTypeRedditURL
		}
		return URLTypeOtherURL
	}

	return URLTypeShortName
}

func isRedditHost(host string) bool {
	host = strings.ToLower(host)
	return host == "reddit.com" || strings.HasSuffix(host, ".reddit.com")
}

// NormalizeFeedPath turns the many ways of naming a feed into the listing
// path used by the API: "/", "/r/<name>/" or "/user/<name>/".
//
//	golang, r/golang, /r/golang, https://old.reddit.com/r/golang/top/ -> /r/golang/
//	u/spez, /user/spez/submitted -> /user/spez/
func NormalizeFeedPath(input string) (string, error) {
	input = strings.TrimSpace(input)

	switch GetURLType(input) {
	case URLTypeUnknown:
		return "", fmt.Errorf("%w: empty input", ErrInvalidFeed)
	case URLTypeOtherURL:
		return "", fmt.Errorf("%w: %s", ErrInvalidFeed, input)
	case URLTypeRedditURL:
		u, err := url.Parse(input)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidFeed, err)
		}
		input = u.Path
	}

	parts := strings.FieldsFunc(input, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return "/", nil
	}

	// A bare name is a subreddit
	if len(parts) == 1 {
		if !namePattern.MatchString(parts[0]) {
			return "", fmt.Errorf("%w: %s", ErrInvalidFeed, input)
		}
		return "/r/" + parts[0] + "/", nil
	}

	name := strings.TrimSuffix(parts[1], ".rss")
	if !namePattern.MatchString(name) {
		return "", fmt.Errorf("%w: %s", ErrInvalidFeed, input)
	}

	switch strings.ToLower(parts[0]) {
	case "r":
		return "/r/" + name + "/", nil
	case "u", "user":
		return "/user/" + name + "/", nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidFeed, input)
}

// RSSURL returns the public RSS address of a listing path.
func RSSURL(rssBase, feedPath string) string {
	return strings.TrimRight(rssBase, "/") + feedPath + ".rss"
}

type userAgentTransport struct {
	Transport http.RoundTripper
	UserAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", t.UserAgent)
	return t.Transport.RoundTrip(req)
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: fetchTimeout,
		Transport: &userAgentTransport{
			Transport: http.DefaultTransport,
			UserAgent: version.GetUserAgent(),
		},
	}
}

// ValidateFeed checks that the listing exists by parsing its RSS rendition
// and returns the feed title.
func ValidateFeed(ctx context.Context, rssBase, feedPath string) (string, error) {
	parser := gofeed.NewParser()
	parser.Client = newHTTPClient()
	parser.UserAgent = version.GetUserAgent()

	feed, err := parser.ParseURLWithContext(RSSURL(rssBase, feedPath), ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch feed %s: %w", feedPath, err)
	}
	return strings.TrimSpace(feed.Title), nil
}

// DiscoverFeed resolves input to a listing path. Reddit names and URLs are
// normalized directly; any other page is fetched and searched for a link to
// a reddit feed.
func DiscoverFeed(ctx context.Context, input string) (string, error) {
	if GetURLType(input) != URLTypeOtherURL {
		return NormalizeFeedPath(input)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, input, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := newHTTPClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	if !isHTMLContentType(resp.Header.Get("Content-Type")) {
		return "", fmt.Errorf("unsupported content type: %s", resp.Header.Get("Content-Type"))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return DiscoverFeedFromHTML(string(body), input)
}

// DiscoverFeedFromHTML finds the first alternate RSS/Atom link in the page
// that points at reddit and returns its listing path.
func DiscoverFeedFromHTML(htmlContent string, baseURL string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	for _, href := range findFeedLinks(doc) {
		feedURL := resolveURL(baseURL, href)
		if GetURLType(feedURL) != URLTypeRedditURL {
			continue
		}
		if path, err := NormalizeFeedPath(feedURL); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no reddit feed link found in HTML")
}

func findFeedLinks(n *html.Node) []string {
	var links []string
	if n.Type == html.ElementNode && (n.Data == "link" || n.Data == "a") {
		var rel, href, typeAttr string
		for _, attr := range n.Attr {
			switch attr.Key {
			case "rel":
				rel = attr.Val
			case "href":
				href = attr.Val
			case "type":
				typeAttr = attr.Val
			}
		}

		if href != "" && ((rel == "alternate" && isFeedType(typeAttr)) || strings.HasSuffix(href, ".rss")) {
			links = append(links, href)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		links = append(links, findFeedLinks(c)...)
	}
	return links
}

func isHTMLContentType(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	return contentType == "text/html"
}

func isFeedType(typeAttr string) bool {
	typeAttr = strings.ToLower(typeAttr)
	return typeAttr == "application/rss+xml" || typeAttr == "application/atom+xml"
}

func resolveURL(baseURL, relativeURL string) string {
	ref, err := url.Parse(relativeURL)
	if err != nil {
		return relativeURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return relativeURL
	}
	return base.ResolveReference(ref).String()
}
