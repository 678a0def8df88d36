package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/jarv/snoogoat/internal/config"
	"github.com/jarv/snoogoat/internal/database"
	"github.com/jarv/snoogoat/internal/feeds"
	"github.com/jarv/snoogoat/internal/logging"
	"github.com/jarv/snoogoat/internal/reddit"
	"github.com/jarv/snoogoat/internal/session"
	"github.com/jarv/snoogoat/internal/themes"
)

const globalHelp string = "?: help"

// wrapText wraps text to fit within the specified width
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	currentLine := ""
	for _, word := range words {
		testLine := currentLine
		if currentLine != "" {
			testLine += " "
		}
		testLine += word

		if lipgloss.Width(testLine) > width && currentLine != "" {
			lines = append(lines, currentLine)
			currentLine = word
		} else {
			currentLine = testLine
		}
	}

	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return lines
}

// truncate shortens s to width cells, marking the cut with an ellipsis
func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

type ViewState int

const (
	LoadingView ViewState = iota
	FeedView
	PostView
	LogView
	LogDetailView
	HelpView
	SettingsView
)

type Model struct {
	feedManager     *feeds.Manager
	settings        config.SettingsStore
	config          config.Config
	glamourRenderer *glamour.TermRenderer
	pager           *feeds.Pager
	state           ViewState
	previousState   ViewState // Store previous state when entering help view
	width           int
	height          int
	cursor          int
	hasToken        bool
	tokenErr        error           // Set when the single token request failed
	spinner         spinner.Model   // Shown while the token or a page is loading
	spinnerRunning  bool            // Track if spinner timer is already running
	loadingFirst    bool            // First page of the selected feed is in flight
	loadsInFlight   int             // Load more requests in flight
	readPosts       map[string]bool // Fullnames of posts opened before
	links           []string        // Links of the post shown in the post view
	postViewScroll  int             // Scroll offset for post view
	helpViewScroll  int             // Scroll offset for help view
	logList         []database.LogMessage
	currentLog      database.LogMessage
	savedFeedCursor int
	savedLogCursor  int

	// Feed selector dropdown
	dropdownOpen   bool
	dropdownCursor int
	filterInput    textinput.Model
	subscriptions  []reddit.Subreddit
	pinnedFeeds    []config.FeedEntry
	feedsFilePath  string

	// Comment drawer
	drawerOpen      bool
	drawerPostID    string
	drawer          viewport.Model
	comments        []reddit.Comment
	commentsLoading bool
	commentsErr     error

	// Settings view
	settingsCursor    int
	selectingOption   bool            // Choosing from a fixed list of values
	optionCursor      int             // Cursor position in the option list
	editingSetting    bool            // Typing a free form value
	settingInput      textinput.Model // Input used while editing a setting
	showSettingsHelp  bool
	statusMessage     string // Message to display above status bar
	statusMessageType string // Type of message: "error" or "info"
	quitPressed       bool   // Track if 'q' was pressed once (for quit confirmation)
}

type TokenAcquiredMsg struct{}

type TokenFailedMsg struct {
	Err error
}

// FeedPageLoadedMsg carries a page of posts. After is the cursor the page was
// requested with and is empty for a first page.
type FeedPageLoadedMsg struct {
	Feed    string
	After   string
	Listing reddit.Listing[reddit.Post]
}

type FeedPageFailedMsg struct {
	Feed  string
	After string
	Err   error
}

type SubscriptionsLoadedMsg struct {
	Subreddits []reddit.Subreddit
}

type PinnedFeedsLoadedMsg struct {
	Entries  []config.FeedEntry
	FilePath string
}

type CommentsLoadedMsg struct {
	PostID   string
	Comments []reddit.Comment
}

type CommentsFailedMsg struct {
	PostID string
	Err    error
}

type ReadPostsLoadedMsg struct {
	Read map[string]bool
}

type ErrorMsg struct {
	Err error
}

type LogListLoadedMsg struct {
	Logs []database.LogMessage
}

func newGlamourRenderer(themeName string) *glamour.TermRenderer {
	theme := themes.GetThemeByName(themeName)
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme.GlamourStyle),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fallback to default renderer if creation fails
		renderer, _ = glamour.NewTermRenderer()
	}
	return renderer
}

func NewModel(feedManager *feeds.Manager, settings config.SettingsStore, cfg config.Config) Model {
	s := spinner.New()
	s.Spinner = themes.GetSpinner(cfg.SpinnerType)
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(themes.GetThemeByName(cfg.ThemeName).SelectedItemColor))

	filter := textinput.New()
	filter.Placeholder = "filter feeds"
	filter.Prompt = "/ "
	filter.CharLimit = 64

	input := textinput.New()
	input.CharLimit = 128

	return Model{
		feedManager:     feedManager,
		settings:        settings,
		config:          cfg,
		glamourRenderer: newGlamourRenderer(cfg.ThemeName),
		pager:           feeds.NewPager(cfg.PrefetchThreshold),
		state:           LoadingView,
		spinner:         s,
		spinnerRunning:  true, // Init starts the tick loop
		readPosts:       make(map[string]bool),
		filterInput:     filter,
		settingInput:    input,
		drawer:          viewport.New(80, 10),
	}
}

// SetFeedsFilePath overrides where pinned feeds are read from.
func (m *Model) SetFeedsFilePath(path string) {
	m.feedsFilePath = path
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		acquireToken(m.feedManager),
		loadReadPosts(m.feedManager),
		loadPinnedFeeds(m.feedsFilePath),
		tea.WindowSize(),
		m.spinner.Tick,
	)
}

// busy reports whether anything the spinner represents is in progress.
func (m Model) busy() bool {
	return (!m.hasToken && m.tokenErr == nil) || m.loadingFirst || m.loadsInFlight > 0 || m.commentsLoading
}

// startSpinner restarts the spinner tick loop if it stopped.
func (m *Model) startSpinner() tea.Cmd {
	if m.spinnerRunning {
		return nil
	}
	m.spinnerRunning = true
	return m.spinner.Tick
}

func (m *Model) setStatus(message, messageType string) {
	m.statusMessage = message
	m.statusMessageType = messageType
}

// selectFeed switches to feed, dropping everything accumulated so far, and
// returns the command fetching its first page.
func (m *Model) selectFeed(feed string) tea.Cmd {
	m.pager.SelectFeed(feed)
	m.cursor = 0
	m.savedFeedCursor = 0
	m.loadingFirst = true
	m.closeDrawer()
	logging.Info("Feed selected", "feed", feed)
	return tea.Batch(fetchFeedPage(m.feedManager, feed, ""), m.startSpinner())
}

// moveFeedCursor moves the feed cursor to index, records the visible post and
// asks for the next page when the cursor is near the end.
func (m *Model) moveFeedCursor(index int) tea.Cmd {
	if m.pager.Len() == 0 {
		return nil
	}
	if index < 0 {
		index = 0
	}
	if index >= m.pager.Len() {
		index = m.pager.Len() - 1
	}
	m.cursor = index
	m.savedFeedCursor = index
	m.pager.SetVisible(index)
	return m.maybeLoadMore()
}

// maybeLoadMore issues a load more request when the visible post is near the
// end. Requests already in flight are not checked, so a quick second trigger
// asks for the same page again.
func (m *Model) maybeLoadMore() tea.Cmd {
	if !m.hasToken || !m.pager.NearEnd(m.pager.VisibleIndex()) {
		return nil
	}
	m.loadsInFlight++
	logging.Debug("Loading more posts", "feed", m.pager.Feed(), "after", m.pager.After(), "inFlight", m.loadsInFlight)
	return tea.Batch(fetchFeedPage(m.feedManager, m.pager.Feed(), m.pager.After()), m.startSpinner())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeDrawer()
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			m.spinnerRunning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.spinnerRunning = cmd != nil
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case TokenAcquiredMsg:
		m.hasToken = true
		m.tokenErr = nil
		if m.state == LoadingView {
			m.state = FeedView
		}
		cmds := []tea.Cmd{fetchSubscriptions(m.feedManager)}
		if m.pager.NeedsInitialFetch(m.hasToken) {
			cmds = append(cmds, m.selectFeed(m.config.DefaultFeed))
		}
		return m, tea.Batch(cmds...)

	case TokenFailedMsg:
		// No retry: the loading view stays up and shows why
		m.tokenErr = msg.Err
		logging.Error("Unable to acquire access token", "error", msg.Err)
		return m, nil

	case FeedPageLoadedMsg:
		return m.handleFeedPage(msg)

	case FeedPageFailedMsg:
		if msg.After == "" {
			m.loadingFirst = false
		} else if m.loadsInFlight > 0 {
			m.loadsInFlight--
		}
		if errors.Is(msg.Err, session.ErrNoToken) {
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Failed to load %s: %v", msg.Feed, msg.Err), "error")
		return m, nil

	case SubscriptionsLoadedMsg:
		m.subscriptions = msg.Subreddits
		m.clampDropdownCursor()
		return m, nil

	case PinnedFeedsLoadedMsg:
		m.pinnedFeeds = msg.Entries
		if msg.FilePath != "" {
			m.feedsFilePath = msg.FilePath
		}
		m.clampDropdownCursor()
		return m, nil

	case CommentsLoadedMsg:
		if !m.drawerOpen || msg.PostID != m.drawerPostID {
			logging.Debug("Dropping comments for a post that is no longer shown", "post", msg.PostID)
			return m, nil
		}
		m.commentsLoading = false
		m.commentsErr = nil
		m.comments = msg.Comments
		m.drawer.SetContent(m.renderComments())
		m.drawer.GotoTop()
		return m, nil

	case CommentsFailedMsg:
		if msg.PostID != m.drawerPostID {
			return m, nil
		}
		m.commentsLoading = false
		m.commentsErr = msg.Err
		m.drawer.SetContent(m.renderComments())
		return m, nil

	case ReadPostsLoadedMsg:
		for name := range msg.Read {
			m.readPosts[name] = true
		}
		return m, nil

	case LogListLoadedMsg:
		m.logList = msg.Logs
		if m.state == LogView {
			m.cursor = m.savedLogCursor
			if m.cursor >= len(m.logList) {
				m.cursor = max(0, len(m.logList)-1)
			}
			m.savedLogCursor = m.cursor
		} else {
			m.cursor = 0
			m.savedLogCursor = 0
		}
		return m, nil

	case ErrorMsg:
		m.setStatus(msg.Err.Error(), "error")
		return m, nil
	}

	return m, nil
}

func (m Model) handleFeedPage(msg FeedPageLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Feed != m.pager.Feed() {
		// In-flight requests are not cancelled on feed change
		logging.Debug("Applying page for a feed that is no longer selected",
			"page_feed", msg.Feed, "selected_feed", m.pager.Feed(), "after", msg.After)
	}

	if msg.After == "" {
		m.loadingFirst = false
		if err := m.pager.ApplyFirstPage(msg.Listing); err != nil {
			logging.Error("Unable to show feed page", "feed", msg.Feed, "error", err)
			m.setStatus(fmt.Sprintf("Failed to load %s: %v", msg.Feed, err), "error")
			return m, nil
		}
		m.cursor = 0
		m.savedFeedCursor = 0
		logging.Debug("Feed page applied", "feed", msg.Feed, "count", m.pager.Count())
		return m, nil
	}

	if m.loadsInFlight > 0 {
		m.loadsInFlight--
	}
	if err := m.pager.AppendPage(msg.Listing); err != nil {
		logging.Error("Unable to append feed page", "feed", msg.Feed, "after", msg.After, "error", err)
		m.setStatus(fmt.Sprintf("Failed to load more posts: %v", err), "error")
		return m, nil
	}
	logging.Debug("Feed page appended", "feed", msg.Feed, "count", m.pager.Count())
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.state != FeedView || msg.Action != tea.MouseActionPress {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelDown:
		// Scrolling the list closes the selector
		m.closeDropdown()
		cmd := m.moveFeedCursor(m.cursor + 1)
		return m, cmd
	case tea.MouseButtonWheelUp:
		m.closeDropdown()
		cmd := m.moveFeedCursor(m.cursor - 1)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != "q" && key != "ctrl+c" {
		m.quitPressed = false
	}

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	// The selector and drawer take input before the view underneath
	if m.dropdownOpen {
		return m.handleSelectorKeys(msg)
	}
	if m.drawerOpen && (m.state == FeedView || m.state == PostView) {
		return m.handleDrawerKeys(msg)
	}

	switch m.state {
	case LoadingView:
		return m.handleLoadingKeys(msg)
	case FeedView:
		return m.handleFeedKeys(msg)
	case PostView:
		return m.handlePostKeys(msg)
	case LogView:
		return m.handleLogListKeys(msg)
	case LogDetailView:
		return m.handleLogDetailKeys(msg)
	case HelpView:
		return m.handleHelpViewKeys(msg)
	case SettingsView:
		return m.handleSettingsViewKeys(msg)
	}
	return m, nil
}

func (m Model) handleLoadingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "?":
		m.previousState = m.state
		m.state = HelpView
		m.helpViewScroll = 0
	case "L":
		m.previousState = m.state
		m.state = LogView
		return m, loadLogList(m.feedManager)
	}
	return m, nil
}

func (m Model) View() string {
	switch m.state {
	case LoadingView:
		return m.renderLoading()
	case FeedView:
		return m.renderFeed()
	case PostView:
		return m.renderPost()
	case LogView:
		return m.renderLogList()
	case LogDetailView:
		return m.renderLogDetail()
	case HelpView:
		return m.renderHelpView()
	case SettingsView:
		return m.renderSettingsView()
	}

	return "Loading..."
}

func (m Model) getTitleStyle() lipgloss.Style {
	theme := themes.GetThemeByName(m.config.ThemeName)
	return lipgloss.NewStyle().Bold(true).Background(lipgloss.Color(theme.TitleColor)).Foreground(lipgloss.Color(theme.TitleColorFg)).Width(m.width)
}

func (m Model) getSelectedStyle() lipgloss.Style {
	theme := themes.GetThemeByName(m.config.ThemeName)

	switch m.config.HighlightStyle {
	case "underline":
		return lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color(theme.SelectedItemColor))
	case "prefix", "prefix-underline":
		// Prefix is handled separately in rendering
		if m.config.HighlightStyle == "prefix-underline" {
			return lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color(theme.SelectedItemColor))
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(theme.SelectedItemColor))
	case "background":
		fallthrough
	default:
		return lipgloss.NewStyle().Background(lipgloss.Color(theme.SelectedItemColor)).Foreground(lipgloss.Color("229"))
	}
}

// applyHighlight applies the appropriate highlight style to a line
func (m Model) applyHighlight(line string, isSelected bool) string {
	if isSelected && (m.config.HighlightStyle == "prefix" || m.config.HighlightStyle == "prefix-underline") {
		line = "> " + line
	} else if m.config.HighlightStyle == "prefix" || m.config.HighlightStyle == "prefix-underline" {
		line = "  " + line
	}

	if isSelected {
		return m.getSelectedStyle().Render(line)
	}

	return line
}

func (m Model) getHelpStyle() lipgloss.Style {
	theme := themes.GetThemeByName(m.config.ThemeName)
	return lipgloss.NewStyle().Foreground(lipgloss.Color(theme.FilterColor))
}

func (m Model) getUnreadStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true)
}

func (m Model) getScoreStyle() lipgloss.Style {
	theme := themes.GetThemeByName(m.config.ThemeName)
	return lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ScoreColor))
}

func (m Model) getSubredditStyle() lipgloss.Style {
	theme := themes.GetThemeByName(m.config.ThemeName)
	return lipgloss.NewStyle().Foreground(lipgloss.Color(theme.SubredditColor))
}

func (m Model) getNSFWStyle() lipgloss.Style {
	theme := themes.GetThemeByName(m.config.ThemeName)
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.NSFWColor))
}

// statusBar joins the global help with the view's own bindings
func (m Model) statusBar(bindings []KeyBinding) string {
	viewHelp := FormatStatusBar(bindings)
	statusBarText := globalHelp + " | q: quit"
	if viewHelp != "" {
		statusBarText += " | " + viewHelp
	}
	return m.getHelpStyle().Render(statusBarText)
}

// renderStatusMessage renders the status line, or an empty string
func (m Model) renderStatusMessage() string {
	if m.statusMessage == "" {
		return ""
	}
	theme := themes.GetThemeByName(m.config.ThemeName)
	var messageStyle lipgloss.Style
	if m.statusMessageType == "error" {
		messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")) // Red
	} else {
		messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.SelectedItemColor))
	}
	return messageStyle.Render(truncate(m.statusMessage, m.width))
}

func (m Model) renderLoading() string {
	var b strings.Builder
	b.WriteString(m.getTitleStyle().Render(m.titleText("")))
	b.WriteString("\n\n")

	var content string
	if m.tokenErr != nil {
		content = m.getNSFWStyle().Render("Could not sign in to reddit") + "\n\n" +
			strings.Join(wrapText(m.tokenErr.Error(), max(20, m.width-4)), "\n") + "\n\n" +
			m.getHelpStyle().Render("Check the configured credentials, then restart. Press L to see the log.")
	} else {
		content = m.spinner.View() + " Signing in..."
	}
	b.WriteString(content)

	contentLines := strings.Count(content, "\n") + 1
	padding := m.height - contentLines - 3
	if padding < 0 {
		padding = 0
	}
	b.WriteString(strings.Repeat("\n", padding))
	b.WriteString("\n")
	b.WriteString(m.statusBar(LoadingViewKeys.StatusBar))
	return b.String()
}
