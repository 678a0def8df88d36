package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jarv/snoogoat/internal/themes"
)

// toggleDrawer opens the comment drawer for the visible post, or closes it.
func (m *Model) toggleDrawer() tea.Cmd {
	if m.drawerOpen {
		m.closeDrawer()
		return nil
	}

	post, ok := m.pager.Visible()
	if !ok {
		return nil
	}

	m.closeDropdown()
	m.drawerOpen = true
	m.drawerPostID = post.ID
	m.comments = nil
	m.commentsErr = nil
	m.commentsLoading = true
	m.resizeDrawer()
	m.drawer.SetContent(m.renderComments())
	m.drawer.GotoTop()
	return tea.Batch(fetchComments(m.feedManager, m.pager.Feed(), post.ID), m.startSpinner())
}

func (m *Model) closeDrawer() {
	m.drawerOpen = false
	m.drawerPostID = ""
	m.commentsLoading = false
}

// resizeDrawer gives the drawer the bottom half of the screen
func (m *Model) resizeDrawer() {
	width := m.width - 4
	if width < 20 {
		width = 20
	}
	height := m.height/2 - 2
	if height < 3 {
		height = 3
	}
	m.drawer.Width = width
	m.drawer.Height = height
	if m.drawerOpen {
		m.drawer.SetContent(m.renderComments())
	}
}

func (m Model) handleDrawerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "c", "q":
		m.closeDrawer()
		return m, nil
	case "j", "down":
		m.drawer.LineDown(1)
		return m, nil
	case "k", "up":
		m.drawer.LineUp(1)
		return m, nil
	case "g":
		m.drawer.GotoTop()
		return m, nil
	case "G":
		m.drawer.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.drawer, cmd = m.drawer.Update(msg)
	return m, cmd
}

// renderComments formats the flattened thread, indenting replies by depth
func (m Model) renderComments() string {
	if m.commentsLoading {
		return "Loading comments..."
	}
	if m.commentsErr != nil {
		return "Failed to load comments: " + m.commentsErr.Error()
	}
	if len(m.comments) == 0 {
		return "No comments yet."
	}

	theme := themes.GetThemeByName(m.config.ThemeName)
	authorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.SubredditColor))

	var b strings.Builder
	for i, c := range m.comments {
		indent := strings.Repeat("  ", min(c.Depth, 8))
		author := c.Author
		if author == "" {
			author = "[deleted]"
		}

		b.WriteString(indent)
		b.WriteString(authorStyle.Render(author))
		b.WriteString(m.getScoreStyle().Render(fmt.Sprintf(" %d points", c.Score)))
		b.WriteString("\n")

		bodyWidth := m.drawer.Width - len(indent) - 2
		for _, paragraph := range strings.Split(strings.TrimSpace(c.Body), "\n") {
			for _, line := range wrapText(paragraph, bodyWidth) {
				b.WriteString(indent + "  " + line + "\n")
			}
		}
		if i < len(m.comments)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderDrawer() string {
	theme := themes.GetThemeByName(m.config.ThemeName)

	header := "Comments"
	if post, ok := m.pager.Visible(); ok {
		header = fmt.Sprintf("Comments (%d) - %s", post.NumComments, m.postTitle(post))
	}
	if m.commentsLoading {
		header = m.spinner.View() + " " + header
	}

	content := lipgloss.NewStyle().Bold(true).Render(truncate(header, m.drawer.Width)) + "\n" + m.drawer.View()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.SelectedItemColor)).
		Render(content)
}
