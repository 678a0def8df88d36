package feeds

import (
	"context"
	"database/sql"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/jarv/snoogoat/internal/database"
	"github.com/jarv/snoogoat/internal/logging"
	"github.com/jarv/snoogoat/internal/reddit"
	"github.com/jarv/snoogoat/internal/session"
	"golang.org/x/net/html"
)

const FeedTimeout = 30 * time.Second

// ReadPostRetention is how long read markers are kept.
const ReadPostRetention = 30 * 24 * time.Hour

// Relative links in post bodies are resolved against this.
const linkBaseURL = "https://www.reddit.com"

// Type aliases for convenience
type LogMessage = database.LogMessage

type Manager struct {
	db      *sql.DB
	queries *database.Queries
	client  *reddit.Client
	session *session.Session
	dbMutex sync.RWMutex // Global RWMutex for database operations
}

func NewManager(db *sql.DB, queries *database.Queries, client *reddit.Client, sess *session.Session) *Manager {
	return &Manager{
		db:      db,
		queries: queries,
		client:  client,
		session: sess,
	}
}

// AcquireToken performs the single token request for this run.
func (m *Manager) AcquireToken() error {
	ctx, cancel := context.WithTimeout(context.Background(), FeedTimeout)
	defer cancel()

	_, err := m.session.AcquireToken(ctx)
	return err
}

func (m *Manager) HasToken() bool {
	return m.session.HasToken()
}

func (m *Manager) PageSize() int {
	return m.client.PageSize()
}

// FetchFeedPage fetches one page of feed, continuing from after when it is
// not empty. It returns session.ErrNoToken when no token is held yet.
func (m *Manager) FetchFeedPage(feed, after string) (reddit.Listing[reddit.Post], error) {
	token, err := m.session.Token()
	if err != nil {
		logging.Debug("Skipping feed fetch without a token", "feed", feed, "after", after)
		return reddit.Listing[reddit.Post]{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), FeedTimeout)
	defer cancel()

	start := time.Now()
	listing, err := m.client.FetchPosts(ctx, token, feed, after)
	if err != nil {
		logging.Error("Error fetching feed", "feed", feed, "after", after, "error", err)
		return listing, err
	}

	logging.Debug("Fetched feed page",
		"feed", feed,
		"after", after,
		"posts", len(listing.Items()),
		"next", listing.After(),
		"duration", time.Since(start))
	return listing, nil
}

// FetchSubscriptions returns the subreddits the account is subscribed to.
func (m *Manager) FetchSubscriptions() ([]reddit.Subreddit, error) {
	token, err := m.session.Token()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), FeedTimeout)
	defer cancel()

	listing, err := m.client.FetchSubscriptions(ctx, token)
	if err != nil {
		logging.Error("Error fetching subscriptions", "error", err)
		return nil, err
	}
	if listing.Data == nil {
		logging.Warn("Subscriptions response had no data")
		return nil, reddit.ErrMissingData
	}
	return listing.Items(), nil
}

// FetchComments returns the comment thread of a post flattened depth first.
func (m *Manager) FetchComments(feed, postID string) ([]reddit.Comment, error) {
	token, err := m.session.Token()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), FeedTimeout)
	defer cancel()

	comments, err := m.client.FetchComments(ctx, token, feed, postID)
	if err != nil {
		logging.Error("Error fetching comments", "feed", feed, "post", postID, "error", err)
		return nil, err
	}
	return reddit.FlattenComments(comments), nil
}

func (m *Manager) ConvertHTMLToMarkdown(input string) string {
	if input == "" {
		return ""
	}

	markdown, err := md.ConvertString(input)
	if err != nil {
		logging.Warn("Failed to convert HTML to markdown", "error", err)
		// Fallback to original text if conversion fails
		return input
	}

	// Collapse runs of blank lines, paragraphs still need one
	markdown = strings.TrimSpace(markdown)
	lines := strings.Split(markdown, "\n")
	var cleanLines []string
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if !blank && len(cleanLines) > 0 {
				cleanLines = append(cleanLines, "")
			}
			blank = true
			continue
		}
		blank = false
		cleanLines = append(cleanLines, line)
	}

	return strings.Join(cleanLines, "\n")
}

// AddLinkMarkersToHTML appends a numbered marker such as " [1]" after every
// link in content. The numbers match the order returned by ExtractLinks.
func (m *Manager) AddLinkMarkersToHTML(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		logging.Warn("Failed to parse HTML for link markers", "error", err)
		return content
	}

	numbers := make(map[string]int)
	var anchors []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if link, ok := resolveLink(attr(n, "href")); ok {
				if _, seen := numbers[link]; !seen {
					numbers[link] = len(numbers) + 1
				}
				anchors = append(anchors, n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(anchors) == 0 {
		return content
	}

	for _, a := range anchors {
		link, _ := resolveLink(attr(a, "href"))
		marker := &html.Node{Type: html.TextNode, Data: " [" + strconv.Itoa(numbers[link]) + "]"}
		if a.Parent != nil {
			a.Parent.InsertBefore(marker, a.NextSibling)
		}
	}

	var b strings.Builder
	body := findElement(doc, "body")
	if body == nil {
		body = doc
	}
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			logging.Warn("Failed to render HTML with link markers", "error", err)
			return content
		}
	}
	return b.String()
}

// ExtractLinks returns the absolute http(s) links in an HTML fragment in
// document order without duplicates.
func (m *Manager) ExtractLinks(content string) []string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]bool)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if link, ok := resolveLink(attr(n, "href")); ok && !seen[link] {
				links = append(links, link)
				seen[link] = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}

// resolveLink turns an href into an absolute http(s) URL. Site-relative
// links such as /r/golang are resolved against reddit.
func resolveLink(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if u.Scheme == "" && u.Host == "" && strings.HasPrefix(u.Path, "/") {
		base, _ := url.Parse(linkBaseURL)
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return u.String(), true
}

// MarkPostRead records that the post with the given fullname was opened.
func (m *Manager) MarkPostRead(name string) error {
	m.dbMutex.Lock()
	defer m.dbMutex.Unlock()
	return m.queries.MarkPostRead(context.Background(), database.MarkPostReadParams{
		Name:   name,
		ReadAt: time.Now(),
	})
}

// GetReadPosts returns the fullnames of every post marked read.
func (m *Manager) GetReadPosts() (map[string]bool, error) {
	m.dbMutex.RLock()
	names, err := m.queries.ListReadPostNames(context.Background())
	m.dbMutex.RUnlock()
	if err != nil {
		return nil, err
	}

	read := make(map[string]bool, len(names))
	for _, name := range names {
		read[name] = true
	}
	return read, nil
}

// PruneReadPosts drops read markers older than ReadPostRetention.
func (m *Manager) PruneReadPosts() error {
	m.dbMutex.Lock()
	defer m.dbMutex.Unlock()
	return m.queries.DeleteReadPostsBefore(context.Background(), time.Now().Add(-ReadPostRetention))
}

func (m *Manager) GetLogMessages(limit int64) ([]LogMessage, error) {
	m.dbMutex.RLock()
	result, err := m.queries.GetLogMessages(context.Background(), limit)
	m.dbMutex.RUnlock()
	return result, err
}

func (m *Manager) DeleteAllLogMessages() error {
	m.dbMutex.Lock()
	defer m.dbMutex.Unlock()
	return m.queries.DeleteAllLogMessages(context.Background())
}
