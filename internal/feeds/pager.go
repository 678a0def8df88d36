package feeds

import (
	"errors"

	"github.com/jarv/snoogoat/internal/reddit"
)

// DefaultFeed is the listing shown once a token is first acquired.
const DefaultFeed = "/"

// ErrNoPostData is returned when a page is appended before any first page
// has been applied.
var ErrNoPostData = errors.New("no post data to append to")

// Pager accumulates listing pages for the selected feed. It performs no I/O:
// the UI asks it what to fetch and hands it the results.
//
// Transitions:
//   - SelectFeed: the feed changed, everything accumulated is dropped
//   - NeedsInitialFetch: a token is held and no feed was ever selected
//   - NearEnd: the cursor is close to the end, fetch the next page
type Pager struct {
	feed      string
	posts     []reddit.Post
	after     string
	count     int
	visible   int
	started   bool
	threshold int
}

func NewPager(threshold int) *Pager {
	if threshold < 1 {
		threshold = 1
	}
	return &Pager{visible: -1, threshold: threshold}
}

// SelectFeed switches to feed and resets the accumulated state. The caller
// is expected to fetch the first page of feed with no cursor.
func (p *Pager) SelectFeed(feed string) {
	p.feed = feed
	p.posts = nil
	p.after = ""
	p.count = 0
	p.visible = -1
	p.started = true
}

// NeedsInitialFetch reports whether the default feed should be fetched now.
func (p *Pager) NeedsInitialFetch(hasToken bool) bool {
	return hasToken && !p.started
}

// NearEnd reports whether index is within the prefetch threshold of the last
// accumulated post and there is a cursor to continue from.
func (p *Pager) NearEnd(index int) bool {
	if len(p.posts) == 0 || p.after == "" {
		return false
	}
	return index >= len(p.posts)-p.threshold
}

// ApplyFirstPage replaces the accumulated posts with the first page of the
// selected feed. The running count becomes the size of this page.
func (p *Pager) ApplyFirstPage(listing reddit.Listing[reddit.Post]) error {
	if listing.Data == nil {
		return reddit.ErrMissingData
	}

	p.posts = listing.Items()
	p.after = listing.After()
	p.count = len(p.posts)
	p.visible = -1
	if len(p.posts) > 0 {
		p.visible = 0
	}
	return nil
}

// AppendPage adds a following page after the posts already held, in arrival
// order. Nothing is deduplicated.
func (p *Pager) AppendPage(listing reddit.Listing[reddit.Post]) error {
	if len(p.posts) == 0 {
		return ErrNoPostData
	}
	if listing.Data == nil {
		return reddit.ErrMissingData
	}

	page := listing.Items()
	p.posts = append(p.posts, page...)
	p.after = listing.After()
	p.count += len(page)
	return nil
}

// SetVisible records which post is on screen. Out of range indexes are
// ignored.
func (p *Pager) SetVisible(index int) {
	if index < 0 || index >= len(p.posts) {
		return
	}
	p.visible = index
}

// Visible returns the post on screen, if any.
func (p *Pager) Visible() (reddit.Post, bool) {
	if p.visible < 0 || p.visible >= len(p.posts) {
		return reddit.Post{}, false
	}
	return p.posts[p.visible], true
}

func (p *Pager) VisibleIndex() int { return p.visible }

func (p *Pager) Feed() string { return p.feed }

func (p *Pager) After() string { return p.after }

func (p *Pager) Count() int { return p.count }

func (p *Pager) Posts() []reddit.Post { return p.posts }

func (p *Pager) Len() int { return len(p.posts) }

func (p *Pager) Threshold() int { return p.threshold }

// SetThreshold changes the prefetch distance; values below one are raised to one.
func (p *Pager) SetThreshold(threshold int) {
	if threshold < 1 {
		threshold = 1
	}
	p.threshold = threshold
}
