package ui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) handleLogListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "?":
		m.previousState = m.state
		m.state = HelpView
		m.helpViewScroll = 0
		return m, nil

	case "q", "esc":
		m.state = m.logReturnState()
		m.cursor = m.savedFeedCursor
		return m, nil

	case "j", "down":
		if len(m.logList) > 0 {
			m.cursor = (m.cursor + 1) % len(m.logList)
			m.savedLogCursor = m.cursor
		}

	case "k", "up":
		if len(m.logList) > 0 {
			m.cursor = (m.cursor - 1 + len(m.logList)) % len(m.logList)
			m.savedLogCursor = m.cursor
		}

	case "ctrl+d":
		if len(m.logList) > 0 {
			pageSize := m.height / 2
			if pageSize < 1 {
				pageSize = 5
			}
			m.cursor = min(m.cursor+pageSize, len(m.logList)-1)
			m.savedLogCursor = m.cursor
		}

	case "ctrl+u":
		if len(m.logList) > 0 {
			pageSize := m.height / 2
			if pageSize < 1 {
				pageSize = 5
			}
			m.cursor = max(m.cursor-pageSize, 0)
			m.savedLogCursor = m.cursor
		}

	case "enter":
		if len(m.logList) > 0 && m.cursor < len(m.logList) {
			m.currentLog = m.logList[m.cursor]
			m.state = LogDetailView
		}

	case "c":
		return m, clearAllLogMessages(m.feedManager)
	}

	return m, nil
}

// logReturnState is where leaving the log goes: the loading screen until a
// token is held, the feed afterwards.
func (m Model) logReturnState() ViewState {
	if !m.hasToken {
		return LoadingView
	}
	return FeedView
}

func (m Model) handleLogDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "?":
		m.previousState = m.state
		m.state = HelpView
		m.helpViewScroll = 0
		return m, nil

	case "q", "esc":
		m.state = LogView
		m.cursor = m.savedLogCursor
		return m, nil
	}

	return m, nil
}

func (m Model) renderLogList() string {
	var b strings.Builder
	b.WriteString(m.getTitleStyle().Render(m.titleText("Log Messages")))
	b.WriteString("\n\n")

	statusBar := m.statusBar(LogViewKeys.StatusBar)

	if len(m.logList) == 0 {
		content := "No log messages found."
		contentLines := strings.Count(b.String()+content, "\n") + 2
		padding := m.height - contentLines - 1
		if padding < 0 {
			padding = 0
		}
		b.WriteString(content)
		b.WriteString(strings.Repeat("\n", padding))
		b.WriteString(statusBar)
		return b.String()
	}

	// Reserve space for:
	// - Title line (1)
	// - Empty line after header (1)
	// - Status bar at bottom (1)
	// - Scroll indicator line (1)
	availableHeight := m.height - 4
	if availableHeight < 3 {
		availableHeight = 3
	}

	start := 0
	end := len(m.logList)
	if len(m.logList) > availableHeight {
		halfHeight := availableHeight / 2
		start = max(0, m.cursor-halfHeight)
		end = min(len(m.logList), start+availableHeight)
		if end-start < availableHeight {
			start = max(0, end-availableHeight)
		}
	}

	logLines := 0
	for i := start; i < end; i++ {
		log := m.logList[i]

		timestampStr := "                   "
		if !log.Timestamp.IsZero() {
			timestampStr = log.Timestamp.Local().Format("2006-01-02 15:04:05")
		}

		level := fmt.Sprintf("%-5s", log.Level)
		line := truncate(timestampStr+"  "+level+"  "+log.Message, m.width-2)
		b.WriteString(m.applyHighlight(line, i == m.cursor))
		b.WriteString("\n")
		logLines++
	}

	headerLines := 2
	statusBarLines := 2
	padding := m.height - headerLines - logLines - statusBarLines
	if padding < 0 {
		padding = 0
	}
	b.WriteString(strings.Repeat("\n", padding))

	if len(m.logList) > availableHeight {
		b.WriteString(m.getHelpStyle().Render(fmt.Sprintf("(%d-%d of %d)", start+1, end, len(m.logList))))
		b.WriteString("  ")
	}
	b.WriteString(statusBar)
	b.WriteString("\n")
	b.WriteString(m.renderStatusMessage())

	return b.String()
}

func (m Model) renderLogDetail() string {
	var b strings.Builder
	b.WriteString(m.getTitleStyle().Render(m.titleText("Log Message Details")))
	b.WriteString("\n\n")

	if !m.currentLog.Timestamp.IsZero() {
		b.WriteString(fmt.Sprintf("Time: %s\n", m.currentLog.Timestamp.Local().Format("2006-01-02 15:04:05")))
	}
	b.WriteString(fmt.Sprintf("Level: %s\n", m.currentLog.Level))
	b.WriteString(fmt.Sprintf("Session: %s\n", m.currentLog.SessionID))
	b.WriteString(fmt.Sprintf("Message: %s\n\n", m.currentLog.Message))

	if m.currentLog.Attributes.Valid && m.currentLog.Attributes.String != "" {
		b.WriteString("Attributes:\n")

		var attrs map[string]any
		if err := json.Unmarshal([]byte(m.currentLog.Attributes.String), &attrs); err == nil {
			keys := make([]string, 0, len(attrs))
			for key := range attrs {
				// Source always points at the logging package
				if key == "source_file" || key == "source_line" {
					continue
				}
				keys = append(keys, key)
			}
			sort.Strings(keys)

			for _, key := range keys {
				valueStr := fmt.Sprintf("%v", attrs[key])

				// total width - indent (2) - key - ": " (2) - margin (2)
				availableWidth := m.width - 6 - len(key)
				if availableWidth < 20 {
					availableWidth = 20
				}

				wrappedLines := wrapText(valueStr, availableWidth)
				if len(wrappedLines) > 0 {
					b.WriteString(fmt.Sprintf("  %s: %s\n", key, wrappedLines[0]))
					indent := strings.Repeat(" ", len(key)+4)
					for _, line := range wrappedLines[1:] {
						b.WriteString(indent + line + "\n")
					}
				}
			}
		} else {
			for _, line := range wrapText(m.currentLog.Attributes.String, m.width-4) {
				b.WriteString("  " + line + "\n")
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(m.statusBar(LogDetailViewKeys.StatusBar))

	return b.String()
}
