package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jarv/snoogoat/internal/reddit"
)

const (
	defaultHarnessAddr  = "localhost:8080"
	harnessToken        = "harness-token"
	defaultHarnessPages = 5
)

var harnessWords = []string{
	"gopher", "channel", "goroutine", "interface", "slice", "pointer", "module",
	"context", "mutex", "deadline", "listing", "cursor", "token", "thread",
	"comment", "subreddit", "upvote", "karma", "frontpage", "snoo",
}

var harnessSubreddits = []string{"golang", "programming", "commandline", "linux", "selfhosted"}

func harnessText(wordCount int) string {
	if wordCount <= 0 {
		wordCount = 10 + rand.Intn(20)
	}
	words := make([]string, wordCount)
	for i := range words {
		words[i] = harnessWords[rand.Intn(len(harnessWords))]
	}
	text := strings.Join(words, " ")
	return strings.ToUpper(text[:1]) + text[1:]
}

// apiHarness is a stand-in for the reddit token and listing endpoints.
// Behavior is changed at runtime through /_control.
type apiHarness struct {
	mu     sync.Mutex
	delay  time.Duration
	status int
	pages  int

	tokenRequests int
}

func newAPIHarness() *apiHarness {
	return &apiHarness{status: http.StatusOK, pages: defaultHarnessPages}
}

func (h *apiHarness) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/access_token", h.tokenHandler)
	mux.HandleFunc("GET /hot", h.listingHandler)
	mux.HandleFunc("GET /r/{name}/hot", h.listingHandler)
	mux.HandleFunc("GET /user/{name}/hot", h.listingHandler)
	mux.HandleFunc("GET /subreddits/mine/subscriber", h.subscriptionsHandler)
	mux.HandleFunc("GET /comments/{id}", h.commentsHandler)
	mux.HandleFunc("GET /r/{name}/comments/{id}", h.commentsHandler)
	mux.HandleFunc("GET /_control", h.controlHandler)
	return mux
}

// behave applies the configured delay and reports the status to answer with
func (h *apiHarness) behave(r *http.Request) int {
	h.mu.Lock()
	delay, status := h.delay, h.status
	h.mu.Unlock()

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("📥 REQUEST: %s %s\n", r.Method, r.URL.Path)
	fmt.Printf("   User-Agent: %s\n", r.Header.Get("User-Agent"))
	if after := r.URL.Query().Get("after"); after != "" {
		fmt.Printf("   After: %s\n", after)
	}

	if delay > 0 {
		fmt.Printf("   ⏱️  Applying delay: %v\n", delay)
		time.Sleep(delay)
	}
	return status
}

func (h *apiHarness) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer "+harnessToken {
		fmt.Printf("📤 RESPONSE: 401 missing or wrong bearer token\n")
		http.Error(w, `{"message": "Unauthorized", "error": 401}`, http.StatusUnauthorized)
		return false
	}
	return true
}

func writeHarnessJSON(w http.ResponseWriter, status int, v any) {
	fmt.Printf("📤 RESPONSE: %d\n", status)
	if status < 200 || status >= 300 {
		http.Error(w, fmt.Sprintf(`{"message": "%s", "error": %d}`, http.StatusText(status), status), status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Printf("❌ Error writing response: %v\n", err)
	}
}

func (h *apiHarness) tokenHandler(w http.ResponseWriter, r *http.Request) {
	status := h.behave(r)

	h.mu.Lock()
	h.tokenRequests++
	count := h.tokenRequests
	h.mu.Unlock()
	fmt.Printf("   Token request #%d for %s\n", count, r.URL.Query().Get("username"))

	if _, _, ok := r.BasicAuth(); !ok {
		writeHarnessJSON(w, http.StatusUnauthorized, nil)
		return
	}
	writeHarnessJSON(w, status, reddit.TokenResponse{
		AccessToken: harnessToken,
		TokenType:   "bearer",
		ExpiresIn:   86400,
		Scope:       "*",
	})
}

// pageFromAfter maps a cursor such as t3_p2x0 back to the page it ends
func pageFromAfter(after string) int {
	if after == "" {
		return 0
	}
	rest, ok := strings.CutPrefix(after, "t3_p")
	if !ok {
		return 0
	}
	page, _, _ := strings.Cut(rest, "x")
	n, err := strconv.Atoi(page)
	if err != nil {
		return 0
	}
	return n + 1
}

func (h *apiHarness) listingHandler(w http.ResponseWriter, r *http.Request) {
	status := h.behave(r)
	if !h.authorized(w, r) {
		return
	}

	query := r.URL.Query()
	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil || limit <= 0 {
		limit = reddit.DefaultPageSize
	}

	h.mu.Lock()
	pages := h.pages
	h.mu.Unlock()

	page := pageFromAfter(query.Get("after"))
	subreddit := r.PathValue("name")
	if strings.HasPrefix(r.URL.Path, "/user/") {
		subreddit = ""
	}

	data := &reddit.ListingData[reddit.Post]{}
	if page < pages {
		for i := 0; i < limit; i++ {
			data.Children = append(data.Children, reddit.Thing[reddit.Post]{
				Kind: reddit.KindPost,
				Data: harnessPost(subreddit, page, i),
			})
		}
		data.Dist = limit
		if page+1 < pages {
			data.After = fmt.Sprintf("t3_p%dx%d", page, limit-1)
		}
	}

	fmt.Printf("   Page: %d of %d, posts: %d, after: %q\n", page+1, pages, len(data.Children), data.After)
	writeHarnessJSON(w, status, reddit.Listing[reddit.Post]{Kind: reddit.KindListing, Data: data})
}

func harnessPost(subreddit string, page, index int) reddit.Post {
	if subreddit == "" {
		subreddit = harnessSubreddits[(page+index)%len(harnessSubreddits)]
	}
	id := fmt.Sprintf("p%dx%d", page, index)
	post := reddit.Post{
		ID:          id,
		Name:        "t3_" + id,
		Title:       harnessText(4 + rand.Intn(8)),
		Author:      harnessWords[rand.Intn(len(harnessWords))],
		Subreddit:   subreddit,
		Permalink:   fmt.Sprintf("/r/%s/comments/%s/", subreddit, id),
		Score:       rand.Intn(5000),
		NumComments: rand.Intn(300),
		Over18:      index%17 == 16,
		CreatedUTC:  float64(time.Now().Add(-time.Duration(page*100+index) * time.Minute).Unix()),
	}

	switch index % 3 {
	case 0:
		post.IsSelf = true
		post.URL = "https://www.reddit.com" + post.Permalink
		post.Domain = "self." + subreddit
		post.Selftext = harnessText(40)
		post.SelftextHTML = fmt.Sprintf(`<div class="md"><p>%s</p><p>See <a href="https://go.dev/doc/">the docs</a> and <a href="/r/%s">r/%s</a>.</p></div>`,
			harnessText(40), subreddit, subreddit)
	case 1:
		post.URL = fmt.Sprintf("https://i.example.com/%s.png", id)
		post.Domain = "i.example.com"
	default:
		post.URL = fmt.Sprintf("https://example.com/articles/%s", id)
		post.Domain = "example.com"
	}
	return post
}

func (h *apiHarness) subscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	status := h.behave(r)
	if !h.authorized(w, r) {
		return
	}

	data := &reddit.ListingData[reddit.Subreddit]{}
	for i, name := range harnessSubreddits {
		data.Children = append(data.Children, reddit.Thing[reddit.Subreddit]{
			Kind: reddit.KindSubreddit,
			Data: reddit.Subreddit{
				ID:                  strconv.Itoa(i),
				Name:                "t5_" + strconv.Itoa(i),
				DisplayName:         name,
				DisplayNamePrefixed: "r/" + name,
				URL:                 "/r/" + name + "/",
				Title:               harnessText(3),
			},
		})
	}
	writeHarnessJSON(w, status, reddit.Listing[reddit.Subreddit]{Kind: reddit.KindListing, Data: data})
}

// harnessComment mirrors the comment JSON, where replies is either "" or a
// nested listing.
func harnessComment(id string, depth int, replies []any) map[string]any {
	var repliesField any = ""
	if len(replies) > 0 {
		repliesField = map[string]any{
			"kind": reddit.KindListing,
			"data": map[string]any{"children": replies},
		}
	}
	return map[string]any{
		"kind": reddit.KindComment,
		"data": map[string]any{
			"id":      id,
			"name":    "t1_" + id,
			"author":  harnessWords[rand.Intn(len(harnessWords))],
			"body":    harnessText(8 + rand.Intn(30)),
			"score":   rand.Intn(500),
			"depth":   depth,
			"replies": repliesField,
		},
	}
}

func (h *apiHarness) commentsHandler(w http.ResponseWriter, r *http.Request) {
	status := h.behave(r)
	if !h.authorized(w, r) {
		return
	}

	postID := r.PathValue("id")
	post := reddit.Listing[reddit.Post]{
		Kind: reddit.KindListing,
		Data: &reddit.ListingData[reddit.Post]{
			Children: []reddit.Thing[reddit.Post]{{Kind: reddit.KindPost, Data: reddit.Post{ID: postID, Name: "t3_" + postID}}},
		},
	}

	var top []any
	for i := 0; i < 3; i++ {
		reply := harnessComment(fmt.Sprintf("%s_%d_0", postID, i), 1, []any{
			harnessComment(fmt.Sprintf("%s_%d_0_0", postID, i), 2, nil),
		})
		top = append(top, harnessComment(fmt.Sprintf("%s_%d", postID, i), 0, []any{reply}))
	}
	// Reddit appends a "more" stub for truncated threads
	top = append(top, map[string]any{"kind": reddit.KindMore, "data": map[string]any{"count": 12}})

	comments := map[string]any{
		"kind": reddit.KindListing,
		"data": map[string]any{"children": top},
	}
	writeHarnessJSON(w, status, []any{post, comments})
}

// controlHandler changes how the harness behaves, for example
// /_control?delay=2s&status=429&pages=3
func (h *apiHarness) controlHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	h.mu.Lock()
	defer h.mu.Unlock()

	if v := query.Get("delay"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			http.Error(w, "invalid delay: "+err.Error(), http.StatusBadRequest)
			return
		}
		h.delay = d
	}
	if v := query.Get("status"); v != "" {
		s, err := strconv.Atoi(v)
		if err != nil || s < 100 || s > 599 {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}
		h.status = s
	}
	if v := query.Get("pages"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 0 {
			http.Error(w, "invalid pages", http.StatusBadRequest)
			return
		}
		h.pages = p
	}

	fmt.Printf("🔧 CONTROL: delay=%v status=%d pages=%d\n", h.delay, h.status, h.pages)
	fmt.Fprintf(w, "delay=%v status=%d pages=%d token_requests=%d\n", h.delay, h.status, h.pages, h.tokenRequests)
}

func runAPITestHarness(addr string) error {
	h := newAPIHarness()

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("🐐 snoogoat API Test Harness")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("   Listening on: http://%s\n", addr)
	fmt.Println()
	fmt.Println("📖 Run the client against it:")
	fmt.Printf("   SNOOGOAT_USERNAME=test SNOOGOAT_CLIENT_ID=test snoogoat -api http://%s\n", addr)
	fmt.Println()
	fmt.Println("🔧 Change behavior while running:")
	fmt.Printf("   curl 'http://%s/_control?delay=3s'     slow every response\n", addr)
	fmt.Printf("   curl 'http://%s/_control?status=429'   fail every response\n", addr)
	fmt.Printf("   curl 'http://%s/_control?pages=2'      end listings after two pages\n", addr)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	return http.ListenAndServe(addr, h.Handler())
}
