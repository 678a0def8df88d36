package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) handleHelpViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "?":
		m.state = m.previousState
		m.helpViewScroll = 0
		return m, nil

	case "j", "down":
		if m.helpViewScroll < m.maxHelpScroll() {
			m.helpViewScroll++
		}
		return m, nil

	case "k", "up":
		if m.helpViewScroll > 0 {
			m.helpViewScroll--
		}
		return m, nil

	case "ctrl+d":
		pageSize := m.height / 2
		if pageSize < 1 {
			pageSize = 5
		}
		m.helpViewScroll = min(m.helpViewScroll+pageSize, m.maxHelpScroll())
		return m, nil

	case "ctrl+u":
		pageSize := m.height / 2
		if pageSize < 1 {
			pageSize = 5
		}
		m.helpViewScroll = max(m.helpViewScroll-pageSize, 0)
		return m, nil
	}

	return m, nil
}

func (m Model) helpAvailableHeight() int {
	// title (1), empty line (1), status bar (1)
	availableHeight := m.height - 3
	if availableHeight < 3 {
		availableHeight = 3
	}
	return availableHeight
}

func (m Model) maxHelpScroll() int {
	return max(0, len(helpLines())-m.helpAvailableHeight())
}

func writeHelpSection(content *strings.Builder, title string, bindings []KeyBinding) {
	content.WriteString(title + "\n")
	for _, binding := range bindings {
		content.WriteString(fmt.Sprintf("  %-24s %s\n", binding.Key, binding.Description))
	}
	content.WriteString("\n")
}

// helpLines is the full help text, one entry per display line
func helpLines() []string {
	var content strings.Builder

	writeHelpSection(&content, "Global", GlobalKeys)
	writeHelpSection(&content, "Feed", FeedViewKeys.Help)
	writeHelpSection(&content, "Feed Selector", SelectorKeys.Help)
	writeHelpSection(&content, "Post", PostViewKeys.Help)
	writeHelpSection(&content, "Comments", []KeyBinding{
		{"j/k, up/down", "scroll"},
		{"g, G", "top / bottom"},
		{"esc, c", "close"},
	})
	writeHelpSection(&content, "Settings", []KeyBinding{
		{"enter", "edit the selected setting"},
		{"?", "toggle settings help"},
	})
	writeHelpSection(&content, "Log", LogViewKeys.Help)

	content.WriteString("Markers\n")
	content.WriteString(fmt.Sprintf("  %-24s %s\n", "●", "Post not opened yet"))
	content.WriteString(fmt.Sprintf("  %-24s %s\n", "[nsfw]", "Post marked over 18"))
	content.WriteString("\n")

	content.WriteString("Environment Variables\n")
	content.WriteString("  SNOOGOAT_USERNAME        Reddit account name\n")
	content.WriteString("  SNOOGOAT_PASSWORD        Reddit account password\n")
	content.WriteString("  SNOOGOAT_CLIENT_ID       Reddit application client id\n")
	content.WriteString("  SNOOGOAT_CLIENT_SECRET   Reddit application client secret\n")

	return strings.Split(content.String(), "\n")
}

func (m Model) renderHelpView() string {
	allLines := helpLines()
	availableHeight := m.helpAvailableHeight()

	scroll := min(m.helpViewScroll, m.maxHelpScroll())
	start := scroll
	end := min(start+availableHeight, len(allLines))
	visibleLines := allLines[start:end]

	var b strings.Builder
	b.WriteString(m.getTitleStyle().Render(m.titleText("Keyboard Shortcuts")))
	b.WriteString("\n\n")

	for _, line := range visibleLines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	usedLines := 2 + len(visibleLines)
	padding := m.height - usedLines - 1
	if padding < 0 {
		padding = 0
	}
	b.WriteString(strings.Repeat("\n", padding))

	if len(allLines) > availableHeight {
		scrollInfo := fmt.Sprintf("(%d-%d of %d) ", start+1, end, len(allLines))
		b.WriteString(m.getHelpStyle().Render(scrollInfo))
	}
	b.WriteString(m.getHelpStyle().Render("j/k: scroll | esc/?: return"))

	return b.String()
}
