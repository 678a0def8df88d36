package feeds

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jarv/snoogoat/internal/reddit"
)

func makeListing(after string, ids ...string) reddit.Listing[reddit.Post] {
	data := &reddit.ListingData[reddit.Post]{After: after}
	for _, id := range ids {
		data.Children = append(data.Children, reddit.Thing[reddit.Post]{
			Kind: reddit.KindPost,
			Data: reddit.Post{ID: id, Name: "t3_" + id, Title: "Post " + id},
		})
	}
	return reddit.Listing[reddit.Post]{Kind: reddit.KindListing, Data: data}
}

func postIDs(posts []reddit.Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func TestPagerInitialFetch(t *testing.T) {
	p := NewPager(3)

	if p.NeedsInitialFetch(false) {
		t.Error("no fetch should be needed without a token")
	}
	if !p.NeedsInitialFetch(true) {
		t.Fatal("expected initial fetch once a token is held")
	}

	p.SelectFeed(DefaultFeed)
	if p.NeedsInitialFetch(true) {
		t.Error("initial fetch should only be requested once")
	}
	if p.Feed() != "/" {
		t.Errorf("Feed() = %q, want /", p.Feed())
	}
}

func TestPagerFeedSwitchResetsCount(t *testing.T) {
	tests := []struct {
		name      string
		firstPage int
		nextPages []int
		newPage   int
	}{
		{"single page", 5, nil, 3},
		{"after load more", 2, []int{2, 2}, 4},
		{"empty new feed", 3, []int{3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPager(1)
			p.SelectFeed("/r/golang/")

			ids := make([]string, tt.firstPage)
			for i := range ids {
				ids[i] = fmt.Sprintf("a%d", i)
			}
			if err := p.ApplyFirstPage(makeListing("cursor", ids...)); err != nil {
				t.Fatalf("ApplyFirstPage() error = %v", err)
			}
			for n, size := range tt.nextPages {
				more := make([]string, size)
				for i := range more {
					more[i] = fmt.Sprintf("m%d-%d", n, i)
				}
				if err := p.AppendPage(makeListing("cursor", more...)); err != nil {
					t.Fatalf("AppendPage() error = %v", err)
				}
			}

			p.SelectFeed("/r/pics/")
			if p.Count() != 0 || p.Len() != 0 || p.After() != "" {
				t.Fatalf("SelectFeed did not reset: count=%d len=%d after=%q", p.Count(), p.Len(), p.After())
			}
			if _, ok := p.Visible(); ok {
				t.Error("no post should be visible after a feed switch")
			}

			newIDs := make([]string, tt.newPage)
			for i := range newIDs {
				newIDs[i] = fmt.Sprintf("b%d", i)
			}
			if err := p.ApplyFirstPage(makeListing("", newIDs...)); err != nil {
				t.Fatalf("ApplyFirstPage() error = %v", err)
			}
			if p.Count() != tt.newPage {
				t.Errorf("Count() = %d, want %d", p.Count(), tt.newPage)
			}
		})
	}
}

func TestPagerAppendPreservesOrder(t *testing.T) {
	p := NewPager(2)
	p.SelectFeed("/")

	if err := p.ApplyFirstPage(makeListing("t3_b", "a", "b")); err != nil {
		t.Fatalf("ApplyFirstPage() error = %v", err)
	}
	if err := p.AppendPage(makeListing("t3_d", "c", "d")); err != nil {
		t.Fatalf("AppendPage() error = %v", err)
	}
	// Duplicates are kept as delivered
	if err := p.AppendPage(makeListing("", "d", "e")); err != nil {
		t.Fatalf("AppendPage() error = %v", err)
	}

	want := []string{"a", "b", "c", "d", "d", "e"}
	got := postIDs(p.Posts())
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("posts = %v, want %v", got, want)
	}
	if p.Count() != 6 {
		t.Errorf("Count() = %d, want 6", p.Count())
	}
	if p.After() != "" {
		t.Errorf("After() = %q, want empty at end of listing", p.After())
	}
	if post, ok := p.Visible(); !ok || post.ID != "a" {
		t.Errorf("visible post should still be the first one, got %+v", post)
	}
}

func TestPagerErrors(t *testing.T) {
	p := NewPager(3)
	p.SelectFeed("/")

	if err := p.AppendPage(makeListing("", "x")); !errors.Is(err, ErrNoPostData) {
		t.Errorf("AppendPage() before first page = %v, want ErrNoPostData", err)
	}

	missing := reddit.Listing[reddit.Post]{Kind: reddit.KindListing}
	if err := p.ApplyFirstPage(missing); !errors.Is(err, reddit.ErrMissingData) {
		t.Errorf("ApplyFirstPage() without data = %v, want ErrMissingData", err)
	}

	if err := p.ApplyFirstPage(makeListing("c1", "a")); err != nil {
		t.Fatalf("ApplyFirstPage() error = %v", err)
	}
	if err := p.AppendPage(missing); !errors.Is(err, reddit.ErrMissingData) {
		t.Errorf("AppendPage() without data = %v, want ErrMissingData", err)
	}
	if p.Len() != 1 || p.Count() != 1 || p.After() != "c1" {
		t.Errorf("failed append changed state: len=%d count=%d after=%q", p.Len(), p.Count(), p.After())
	}
}

func TestPagerNearEnd(t *testing.T) {
	p := NewPager(2)
	p.SelectFeed("/")

	if p.NearEnd(0) {
		t.Error("empty pager should never be near the end")
	}

	if err := p.ApplyFirstPage(makeListing("next", "a", "b", "c", "d", "e")); err != nil {
		t.Fatalf("ApplyFirstPage() error = %v", err)
	}

	tests := []struct {
		index int
		want  bool
	}{
		{0, false},
		{2, false},
		{3, true},
		{4, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("index %d", tt.index), func(t *testing.T) {
			if got := p.NearEnd(tt.index); got != tt.want {
				t.Errorf("NearEnd(%d) = %v, want %v", tt.index, got, tt.want)
			}
		})
	}

	if err := p.AppendPage(makeListing("", "f")); err != nil {
		t.Fatalf("AppendPage() error = %v", err)
	}
	if p.NearEnd(5) {
		t.Error("no next page should be requested once the cursor is exhausted")
	}
}

func TestPagerSetVisible(t *testing.T) {
	p := NewPager(1)
	p.SelectFeed("/")
	if err := p.ApplyFirstPage(makeListing("", "a", "b")); err != nil {
		t.Fatalf("ApplyFirstPage() error = %v", err)
	}

	p.SetVisible(1)
	p.SetVisible(7)
	if post, ok := p.Visible(); !ok || post.ID != "b" {
		t.Errorf("Visible() = %+v, %v; want b", post, ok)
	}
	if p.VisibleIndex() != 1 {
		t.Errorf("VisibleIndex() = %d, want 1", p.VisibleIndex())
	}
}
