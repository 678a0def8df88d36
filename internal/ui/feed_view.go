package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jarv/snoogoat/internal/reddit"
	"github.com/jarv/snoogoat/internal/version"
)

// titleText builds the header line: app, selected feed and the visible post
func (m Model) titleText(detail string) string {
	title := "🐐 snoogoat " + version.GetVersion()
	if feed := m.pager.Feed(); feed != "" {
		title += " - " + feed
	}
	if detail != "" {
		title += " - " + detail
	}
	return truncate(title, m.width)
}

func (m Model) handleFeedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != "q" && m.statusMessage != "" {
		m.setStatus("", "")
	}

	switch key {
	case "?":
		m.previousState = m.state
		m.state = HelpView
		m.helpViewScroll = 0
		return m, nil

	case "q", "esc":
		if m.quitPressed {
			return m, tea.Quit
		}
		m.quitPressed = true
		m.setStatus("Press q again to quit", "info")
		return m, nil

	case "j", "down":
		cmd := m.moveFeedCursor(m.cursor + 1)
		return m, cmd

	case "k", "up":
		cmd := m.moveFeedCursor(m.cursor - 1)
		return m, cmd

	case "ctrl+d":
		pageSize := m.height / 2
		if pageSize < 1 {
			pageSize = 5
		}
		cmd := m.moveFeedCursor(m.cursor + pageSize)
		return m, cmd

	case "ctrl+u":
		pageSize := m.height / 2
		if pageSize < 1 {
			pageSize = 5
		}
		cmd := m.moveFeedCursor(m.cursor - pageSize)
		return m, cmd

	case "g":
		cmd := m.moveFeedCursor(0)
		return m, cmd

	case "G":
		cmd := m.moveFeedCursor(m.pager.Len() - 1)
		return m, cmd

	case "enter":
		if _, ok := m.pager.Visible(); ok {
			return m.openPost(m.cursor)
		}

	case "s":
		cmd := m.openDropdown()
		return m, cmd

	case "c":
		cmd := m.toggleDrawer()
		return m, cmd

	case "o":
		if post, ok := m.pager.Visible(); ok {
			return m, openLink(postLink(post))
		}

	case "r":
		if m.pager.Feed() != "" {
			cmd := m.selectFeed(m.pager.Feed())
			return m, cmd
		}

	case "S":
		m.previousState = m.state
		m.state = SettingsView
		m.settingsCursor = 0
		return m, nil

	case "L":
		m.previousState = m.state
		m.state = LogView
		return m, loadLogList(m.feedManager)
	}

	return m, nil
}

// postLink is what "open" opens: the link itself, or the thread for text posts
func postLink(post reddit.Post) string {
	if post.IsSelf || post.URL == "" {
		return commentsLink(post)
	}
	return post.URL
}

func commentsLink(post reddit.Post) string {
	return "https://www.reddit.com" + post.Permalink
}

// postTitle masks over_18 titles unless they are enabled
func (m Model) postTitle(post reddit.Post) string {
	if post.Over18 && !m.config.ShowNSFW {
		return "(nsfw post hidden)"
	}
	return post.Title
}

func (m Model) renderPostLine(post reddit.Post, selected bool) string {
	marker := "  "
	if !m.readPosts[post.Name] {
		marker = "● "
	}

	score := fmt.Sprintf("%6d", post.Score)
	nsfw := ""
	if post.Over18 {
		nsfw = " [nsfw]"
	}
	meta := fmt.Sprintf(" r/%s · %d comments", post.Subreddit, post.NumComments)

	// Keep the title on one line, leaving room for the rest
	titleWidth := m.width - lipgloss.Width(marker+score+nsfw+meta) - 4
	if titleWidth < 10 {
		titleWidth = 10
	}
	title := truncate(m.postTitle(post), titleWidth)

	if selected {
		return m.applyHighlight(marker+score+" "+title+nsfw+meta, true)
	}

	line := marker + m.getScoreStyle().Render(score) + " "
	if !m.readPosts[post.Name] {
		line += m.getUnreadStyle().Render(title)
	} else {
		line += title
	}
	if nsfw != "" {
		line += m.getNSFWStyle().Render(nsfw)
	}
	line += m.getSubredditStyle().Render(meta)
	return m.applyHighlight(line, false)
}

func (m Model) renderFeed() string {
	var b strings.Builder

	detail := ""
	if post, ok := m.pager.Visible(); ok {
		detail = m.postTitle(post)
	}
	b.WriteString(m.getTitleStyle().Render(m.titleText(detail)))
	b.WriteString("\n")

	// Loading indicator line
	switch {
	case m.loadingFirst:
		b.WriteString(m.spinner.View() + " Loading " + m.pager.Feed())
	case m.loadsInFlight > 0:
		b.WriteString(m.spinner.View() + m.getHelpStyle().Render(" Loading more..."))
	}
	b.WriteString("\n")

	// Reserve space for:
	// - Title line (1)
	// - Loading line (1)
	// - Scroll indicator + status bar (1)
	// - Status message line (1)
	// plus the selector or drawer when open
	availableHeight := m.height - 4
	var overlay string
	if m.dropdownOpen {
		overlay = m.renderSelector()
	} else if m.drawerOpen {
		overlay = m.renderDrawer()
	}
	if overlay != "" {
		availableHeight -= strings.Count(overlay, "\n") + 1
	}
	if availableHeight < 3 {
		availableHeight = 3
	}

	posts := m.pager.Posts()
	listLines := 0
	if len(posts) == 0 {
		if !m.loadingFirst {
			b.WriteString("No posts.\n")
			listLines++
		}
	} else {
		start := 0
		end := len(posts)
		if len(posts) > availableHeight {
			// Center the cursor in the viewport when possible
			halfHeight := availableHeight / 2
			start = max(0, m.cursor-halfHeight)
			end = min(len(posts), start+availableHeight)
			if end-start < availableHeight {
				start = max(0, end-availableHeight)
			}
		}

		for i := start; i < end; i++ {
			b.WriteString(m.renderPostLine(posts[i], i == m.cursor))
			b.WriteString("\n")
			listLines++
		}
	}

	padding := availableHeight - listLines
	if padding < 0 {
		padding = 0
	}
	b.WriteString(strings.Repeat("\n", padding))

	if overlay != "" {
		b.WriteString(overlay)
		b.WriteString("\n")
	}

	// Position within everything accumulated so far
	if len(posts) > 0 {
		b.WriteString(m.getHelpStyle().Render(fmt.Sprintf("(%d of %d)  ", m.cursor+1, m.pager.Count())))
	}

	bindings := FeedViewKeys.StatusBar
	if m.dropdownOpen {
		bindings = SelectorKeys.StatusBar
	} else if m.drawerOpen {
		bindings = DrawerKeys.StatusBar
	}
	b.WriteString(m.statusBar(bindings))
	b.WriteString("\n")
	b.WriteString(m.renderStatusMessage())

	return b.String()
}
