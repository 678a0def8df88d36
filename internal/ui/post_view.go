package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jarv/snoogoat/internal/reddit"
)

// openPost shows the post at index in the post view and marks it read.
func (m Model) openPost(index int) (tea.Model, tea.Cmd) {
	if index < 0 || index >= m.pager.Len() {
		return m, nil
	}

	m.cursor = index
	m.savedFeedCursor = index
	m.pager.SetVisible(index)
	post, _ := m.pager.Visible()

	m.state = PostView
	m.postViewScroll = 0
	m.links = postLinks(post, m.feedManager.ExtractLinks(post.SelftextHTML))

	cmds := []tea.Cmd{m.maybeLoadMore()}
	if !m.readPosts[post.Name] {
		m.readPosts[post.Name] = true
		cmds = append(cmds, markPostRead(m.feedManager, post.Name))
	}
	if m.drawerOpen && m.drawerPostID != post.ID {
		m.closeDrawer()
	}
	return m, tea.Batch(cmds...)
}

// postLinks puts the link of a link post first, followed by links in the body
func postLinks(post reddit.Post, bodyLinks []string) []string {
	var links []string
	if !post.IsSelf && post.URL != "" {
		links = append(links, post.URL)
	}
	for _, link := range bodyLinks {
		if link != post.URL {
			links = append(links, link)
		}
	}
	return links
}

func (m Model) handlePostKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "?":
		m.previousState = m.state
		m.state = HelpView
		m.helpViewScroll = 0
		return m, nil

	case "q", "esc":
		m.state = FeedView
		m.cursor = m.savedFeedCursor
		m.postViewScroll = 0
		m.closeDrawer()
		return m, nil

	case "l", "right":
		if m.cursor+1 < m.pager.Len() {
			return m.openPost(m.cursor + 1)
		}
		cmd := m.maybeLoadMore()
		return m, cmd

	case "h", "left":
		if m.cursor > 0 {
			return m.openPost(m.cursor - 1)
		}

	case "j", "down":
		if m.postViewScroll < m.maxPostScroll() {
			m.postViewScroll++
		}

	case "k", "up":
		if m.postViewScroll > 0 {
			m.postViewScroll--
		}

	case "ctrl+d":
		pageSize := m.height / 2
		if pageSize < 1 {
			pageSize = 5
		}
		m.postViewScroll = min(m.postViewScroll+pageSize, m.maxPostScroll())

	case "ctrl+u":
		pageSize := m.height / 2
		if pageSize < 1 {
			pageSize = 5
		}
		m.postViewScroll = max(m.postViewScroll-pageSize, 0)

	case "c":
		cmd := m.toggleDrawer()
		return m, cmd

	case "o":
		if post, ok := m.pager.Visible(); ok {
			return m, openLink(postLink(post))
		}

	case "p":
		if post, ok := m.pager.Visible(); ok {
			return m, openLink(commentsLink(post))
		}

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		linkNum := int(msg.String()[0] - '1')
		if linkNum < len(m.links) {
			return m, openLink(m.links[linkNum])
		}
	}

	return m, nil
}

func (m Model) postAvailableHeight() int {
	// title (2 lines) and status bar (2 lines)
	availableHeight := m.height - 4
	if m.drawerOpen {
		availableHeight -= m.drawer.Height + 3
	}
	if availableHeight < 1 {
		availableHeight = 1
	}
	return availableHeight
}

func (m Model) maxPostScroll() int {
	return max(0, len(m.getPostContentLines())-m.postAvailableHeight())
}

// getPostContentLines renders the visible post into display lines
func (m Model) getPostContentLines() []string {
	post, ok := m.pager.Visible()
	if !ok {
		return nil
	}

	var contentBuilder strings.Builder

	meta := fmt.Sprintf("r/%s · u/%s · %d points · %d comments", post.Subreddit, post.Author, post.Score, post.NumComments)
	contentBuilder.WriteString(m.getSubredditStyle().Render(meta))
	if post.Over18 {
		contentBuilder.WriteString(m.getNSFWStyle().Render(" [nsfw]"))
	}
	contentBuilder.WriteString("\n\n")

	switch {
	case post.Over18 && !m.config.ShowNSFW:
		contentBuilder.WriteString("This post is marked nsfw. Enable show_nsfw in settings to view it, or press o to open it.\n")

	case post.SelftextHTML != "":
		// Markers go into the HTML so they survive the markdown conversion
		content := m.feedManager.AddLinkMarkersToHTML(post.SelftextHTML)
		content = m.feedManager.ConvertHTMLToMarkdown(content)

		if m.glamourRenderer != nil {
			if rendered, err := m.glamourRenderer.Render(content); err == nil {
				content = rendered
			}
		}
		contentBuilder.WriteString(content)
		contentBuilder.WriteString("\n")

	case post.Selftext != "":
		for _, line := range strings.Split(post.Selftext, "\n") {
			contentBuilder.WriteString(strings.Join(wrapText(line, max(40, m.width-4)), "\n"))
			contentBuilder.WriteString("\n")
		}

	case post.IsImage():
		contentBuilder.WriteString("Image: " + post.URL + "\n")
		contentBuilder.WriteString(m.getHelpStyle().Render("Press o to open the image."))
		contentBuilder.WriteString("\n")

	case !post.IsSelf:
		contentBuilder.WriteString(post.Domain + "\n")
		contentBuilder.WriteString(m.getHelpStyle().Render("Press o to open the link."))
		contentBuilder.WriteString("\n")
	}

	if len(m.links) > 0 {
		contentBuilder.WriteString("\n")
		contentBuilder.WriteString(m.getHelpStyle().Render("Links:"))
		contentBuilder.WriteString("\n")
		for i, link := range m.links {
			contentBuilder.WriteString(fmt.Sprintf("[%d] %s\n", i+1, link))
		}
	}

	return strings.Split(contentBuilder.String(), "\n")
}

func (m Model) renderPost() string {
	post, ok := m.pager.Visible()
	if !ok {
		return m.renderFeed()
	}

	allLines := m.getPostContentLines()
	availableHeight := m.postAvailableHeight()

	start := m.postViewScroll
	if start >= len(allLines) {
		start = len(allLines) - 1
	}
	if start < 0 {
		start = 0
	}
	end := min(start+availableHeight, len(allLines))
	visibleLines := allLines[start:end]

	var b strings.Builder
	b.WriteString(m.getTitleStyle().Render(truncate(m.postTitle(post), m.width)))
	b.WriteString("\n\n")

	for _, line := range visibleLines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	padding := availableHeight - len(visibleLines)
	if padding < 0 {
		padding = 0
	}
	b.WriteString(strings.Repeat("\n", padding))

	bindings := PostViewKeys.StatusBar
	if m.drawerOpen {
		b.WriteString(m.renderDrawer())
		b.WriteString("\n")
		bindings = DrawerKeys.StatusBar
	}

	b.WriteString(m.getHelpStyle().Render(fmt.Sprintf("(%d of %d) ", m.cursor+1, m.pager.Count())))
	if len(allLines) > availableHeight {
		b.WriteString(m.getHelpStyle().Render(fmt.Sprintf("[%d-%d of %d] ", start+1, end, len(allLines))))
	}
	b.WriteString(m.statusBar(bindings))
	b.WriteString("\n")
	b.WriteString(m.renderStatusMessage())

	return b.String()
}
