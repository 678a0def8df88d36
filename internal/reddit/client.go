package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultAuthBaseURL = "https://www.reddit.com"
	DefaultAPIBaseURL  = "https://oauth.reddit.com"
	DefaultPageSize    = 25
	DefaultRegion      = "GB"
	DefaultTimeout     = 30 * time.Second

	// maxErrorBody caps how much of an error response is kept for logging
	maxErrorBody = 512
)

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	AuthBaseURL string
	APIBaseURL  string
	UserAgent   string
	PageSize    int
	Region      string
	Timeout     time.Duration
	Transport   http.RoundTripper
}

// userAgentTransport sets the User-Agent on every outgoing request; reddit
// throttles generic agents aggressively.
type userAgentTransport struct {
	Transport http.RoundTripper
	UserAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.UserAgent != "" {
		req.Header.Set("User-Agent", t.UserAgent)
	}
	return t.Transport.RoundTrip(req)
}

// Client talks to the OAuth listing API. It holds no token of its own; every
// call is given the bearer token to use.
type Client struct {
	apiBaseURL string
	pageSize   int
	region     string
	httpClient *http.Client
}

func NewClient(opts Options) *Client {
	opts = opts.withDefaults()
	return &Client{
		apiBaseURL: strings.TrimRight(opts.APIBaseURL, "/"),
		pageSize:   opts.PageSize,
		region:     opts.Region,
		httpClient: opts.httpClient(),
	}
}

func (o Options) withDefaults() Options {
	if o.AuthBaseURL == "" {
		o.AuthBaseURL = DefaultAuthBaseURL
	}
	if o.APIBaseURL == "" {
		o.APIBaseURL = DefaultAPIBaseURL
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.Region == "" {
		o.Region = DefaultRegion
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Transport == nil {
		o.Transport = http.DefaultTransport
	}
	return o
}

func (o Options) httpClient() *http.Client {
	return &http.Client{
		Timeout: o.Timeout,
		Transport: &userAgentTransport{
			Transport: o.Transport,
			UserAgent: o.UserAgent,
		},
	}
}

// PageSize returns the fixed number of items requested per page.
func (c *Client) PageSize() int {
	return c.pageSize
}

// ListingURL builds the hot listing URL for a feed path such as "/" or
// "/r/golang/". The after cursor is only added when present.
func (c *Client) ListingURL(feedPath, after string) string {
	params := url.Values{}
	params.Set("g", c.region)
	params.Set("raw_json", "1")
	params.Set("limit", strconv.Itoa(c.pageSize))
	if after != "" {
		params.Set("after", after)
	}
	return c.apiBaseURL + ensureTrailingSlash(feedPath) + "hot?" + params.Encode()
}

// FetchPosts fetches one page of posts for a feed. The response is decoded
// as-is: a body without a data object yields a Listing whose Data is nil.
func (c *Client) FetchPosts(ctx context.Context, token, feedPath, after string) (Listing[Post], error) {
	var listing Listing[Post]
	err := c.getJSON(ctx, token, c.ListingURL(feedPath, after), &listing)
	return listing, err
}

// FetchSubscriptions fetches the subreddits the authenticated user follows.
func (c *Client) FetchSubscriptions(ctx context.Context, token string) (Listing[Subreddit], error) {
	var listing Listing[Subreddit]
	endpoint := c.apiBaseURL + "/subreddits/mine/subscriber?raw_json=1&limit=100"
	err := c.getJSON(ctx, token, endpoint, &listing)
	return listing, err
}

// FetchComments fetches the comment tree of a post. The endpoint answers with
// two listings: the post itself followed by its comments.
func (c *Client) FetchComments(ctx context.Context, token, feedPath, postID string) ([]Comment, error) {
	if postID == "" {
		return nil, fmt.Errorf("post id is required")
	}

	prefix := ""
	if strings.HasPrefix(feedPath, "/r/") {
		prefix = strings.TrimRight(feedPath, "/")
	}
	endpoint := fmt.Sprintf("%s%s/comments/%s?raw_json=1&depth=8&limit=200",
		c.apiBaseURL, prefix, url.PathEscape(postID))

	var raw []json.RawMessage
	if err := c.getJSON(ctx, token, endpoint, &raw); err != nil {
		return nil, err
	}
	if len(raw) < 2 {
		return nil, ErrMissingData
	}

	var listing Listing[Comment]
	if err := json.Unmarshal(raw[1], &listing); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	if listing.Data == nil {
		return nil, ErrMissingData
	}
	return commentsFromListing(listing), nil
}

func (c *Client) getJSON(ctx context.Context, token, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(resp, endpoint)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func newStatusError(resp *http.Response, endpoint string) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		StatusCode: resp.StatusCode,
		URL:        redactQuery(endpoint),
		Body:       string(body),
	}
}

// redactQuery drops the query string so credentials never end up in logs.
func redactQuery(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		return endpoint[:i]
	}
	return endpoint
}

func ensureTrailingSlash(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return path
}
