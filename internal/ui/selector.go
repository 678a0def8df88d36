package ui

import (
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jarv/snoogoat/internal/feeds"
	"github.com/jarv/snoogoat/internal/reddit"
	"github.com/jarv/snoogoat/internal/themes"
)

// maxSelectorRows caps how many feeds the dropdown shows at once
const maxSelectorRows = 10

type feedOption struct {
	Path       string
	Label      string
	Subscribed bool
}

// subredditPath returns the listing path of a subscription
func subredditPath(sub reddit.Subreddit) string {
	if sub.URL != "" {
		path := sub.URL
		if !strings.HasSuffix(path, "/") {
			path += "/"
		}
		return path
	}
	return "/r/" + sub.DisplayName + "/"
}

// feedOptions lists the front page, pinned feeds and then subscriptions
// sorted by name, each path once, narrowed by the filter text.
func (m Model) feedOptions() []feedOption {
	seen := make(map[string]bool)
	var options []feedOption

	add := func(opt feedOption) {
		if seen[opt.Path] {
			return
		}
		seen[opt.Path] = true
		options = append(options, opt)
	}

	add(feedOption{Path: feeds.DefaultFeed, Label: "Front page"})
	for _, entry := range m.pinnedFeeds {
		add(feedOption{Path: entry.Path, Label: entry.DisplayName()})
	}

	subs := make([]reddit.Subreddit, len(m.subscriptions))
	copy(subs, m.subscriptions)
	sort.SliceStable(subs, func(i, j int) bool {
		return strings.ToLower(subs[i].DisplayName) < strings.ToLower(subs[j].DisplayName)
	})
	for _, sub := range subs {
		label := sub.DisplayNamePrefixed
		if label == "" {
			label = "r/" + sub.DisplayName
		}
		add(feedOption{Path: subredditPath(sub), Label: label, Subscribed: true})
	}

	query := strings.ToLower(strings.TrimSpace(m.filterInput.Value()))
	if query == "" {
		return options
	}

	var filtered []feedOption
	for _, opt := range options {
		if strings.Contains(strings.ToLower(opt.Label), query) || strings.Contains(strings.ToLower(opt.Path), query) {
			filtered = append(filtered, opt)
		}
	}
	return filtered
}

func (m *Model) clampDropdownCursor() {
	n := len(m.feedOptions())
	if m.dropdownCursor >= n {
		m.dropdownCursor = n - 1
	}
	if m.dropdownCursor < 0 {
		m.dropdownCursor = 0
	}
}

func (m *Model) openDropdown() tea.Cmd {
	m.closeDrawer()
	m.dropdownOpen = true
	m.dropdownCursor = 0
	m.filterInput.SetValue("")

	// Start on the selected feed
	for i, opt := range m.feedOptions() {
		if opt.Path == m.pager.Feed() {
			m.dropdownCursor = i
			break
		}
	}
	return m.filterInput.Focus()
}

func (m *Model) closeDropdown() {
	m.dropdownOpen = false
	m.filterInput.Blur()
}

func (m Model) handleSelectorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeDropdown()
		return m, nil

	case "s":
		// s closes the selector while nothing is being typed
		if m.filterInput.Value() == "" {
			m.closeDropdown()
			return m, nil
		}

	case "down", "ctrl+n", "ctrl+j":
		if m.dropdownCursor < len(m.feedOptions())-1 {
			m.dropdownCursor++
		}
		return m, nil

	case "up", "ctrl+p", "ctrl+k":
		if m.dropdownCursor > 0 {
			m.dropdownCursor--
		}
		return m, nil

	case "enter":
		options := m.feedOptions()
		if len(options) == 0 {
			return m, nil
		}
		selected := options[m.dropdownCursor]
		m.closeDropdown()
		m.state = FeedView
		cmd := m.selectFeed(selected.Path)
		return m, cmd
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.clampDropdownCursor()
	return m, cmd
}

func (m Model) renderSelector() string {
	theme := themes.GetThemeByName(m.config.ThemeName)
	options := m.feedOptions()

	var b strings.Builder
	b.WriteString(m.filterInput.View())
	b.WriteString("\n")

	start := 0
	if m.dropdownCursor >= maxSelectorRows {
		start = m.dropdownCursor - maxSelectorRows + 1
	}
	end := min(len(options), start+maxSelectorRows)

	if len(options) == 0 {
		b.WriteString(m.getHelpStyle().Render("No feeds match"))
	}
	for i := start; i < end; i++ {
		opt := options[i]
		line := opt.Label
		if opt.Label != opt.Path {
			line += m.getHelpStyle().Render("  " + opt.Path)
		}
		if opt.Path == m.pager.Feed() {
			line += " ✓"
		}
		b.WriteString(m.applyHighlight(line, i == m.dropdownCursor))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	width := m.width - 2
	if width < 20 {
		width = 20
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.SelectedItemColor)).
		Width(width - 2).
		Render(b.String())
}
