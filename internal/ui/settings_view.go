package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jarv/snoogoat/internal/config"
	"github.com/jarv/snoogoat/internal/discovery"
	"github.com/jarv/snoogoat/internal/logging"
	"github.com/jarv/snoogoat/internal/themes"
)

// settingItem is one row of the settings view. Items with options are
// chosen from a list, the rest are typed.
type settingItem struct {
	key     string
	label   string
	help    string
	value   func(config.Config) string
	options func() []string
	apply   func(*config.Config, string) error
	restart bool
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func parseIntSetting(raw string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("must be between %d and %d", lo, hi)
	}
	return n, nil
}

var settingItems = []settingItem{
	{
		key:     config.KeyThemeName,
		label:   "Theme",
		help:    "Color scheme for the UI",
		value:   func(c config.Config) string { return c.ThemeName },
		options: themes.GetThemeNames,
		apply:   func(c *config.Config, v string) error { c.ThemeName = v; return nil },
	},
	{
		key:     config.KeyHighlightStyle,
		label:   "Highlight Style",
		help:    "How the selected item is highlighted",
		value:   func(c config.Config) string { return c.HighlightStyle },
		options: themes.GetHighlightStyles,
		apply:   func(c *config.Config, v string) error { c.HighlightStyle = v; return nil },
	},
	{
		key:     config.KeySpinnerType,
		label:   "Spinner Type",
		help:    "Animation style for the loading spinner",
		value:   func(c config.Config) string { return c.SpinnerType },
		options: themes.GetSpinnerTypes,
		apply:   func(c *config.Config, v string) error { c.SpinnerType = v; return nil },
	},
	{
		key:     config.KeyShowNSFW,
		label:   "Show NSFW",
		help:    "Show titles and text of posts marked over 18",
		value:   func(c config.Config) string { return yesNo(c.ShowNSFW) },
		options: func() []string { return []string{"yes", "no"} },
		apply:   func(c *config.Config, v string) error { c.ShowNSFW = v == "yes"; return nil },
	},
	{
		key:   config.KeyPrefetchThreshold,
		label: "Prefetch Threshold",
		help:  "Load the next page when the cursor is this many posts from the end (1-20)",
		value: func(c config.Config) string { return strconv.Itoa(c.PrefetchThreshold) },
		apply: func(c *config.Config, v string) error {
			n, err := parseIntSetting(v, 1, 20)
			if err != nil {
				return err
			}
			c.PrefetchThreshold = n
			return nil
		},
	},
	{
		key:   config.KeyPageSize,
		label: "Page Size",
		help:  "Posts requested per page (1-100)",
		value: func(c config.Config) string { return strconv.Itoa(c.PageSize) },
		apply: func(c *config.Config, v string) error {
			n, err := parseIntSetting(v, config.MinPageSize, config.MaxPageSize)
			if err != nil {
				return err
			}
			c.PageSize = n
			return nil
		},
		restart: true,
	},
	{
		key:   config.KeyRegion,
		label: "Region",
		help:  "Region code sent with listing requests, for example GB or US",
		value: func(c config.Config) string { return c.Region },
		apply: func(c *config.Config, v string) error {
			v = strings.ToUpper(strings.TrimSpace(v))
			if v == "" {
				return fmt.Errorf("region cannot be empty")
			}
			c.Region = v
			return nil
		},
		restart: true,
	},
	{
		key:   config.KeyDefaultFeed,
		label: "Default Feed",
		help:  "Feed shown at startup: a subreddit name, r/name, u/name or a reddit URL",
		value: func(c config.Config) string { return c.DefaultFeed },
		apply: func(c *config.Config, v string) error {
			path, err := discovery.NormalizeFeedPath(v)
			if err != nil {
				return err
			}
			c.DefaultFeed = path
			return nil
		},
		restart: true,
	},
}

// applySetting changes one setting, persists the whole config and updates
// whatever depends on it.
func (m *Model) applySetting(item settingItem, raw string) {
	updated := m.config
	if err := item.apply(&updated, raw); err != nil {
		m.setStatus(fmt.Sprintf("%s: %v", item.label, err), "error")
		return
	}
	m.config = updated

	if err := config.SaveConfig(m.settings, m.config); err != nil {
		logging.Error("Failed to save settings", "key", item.key, "error", err)
		m.setStatus(fmt.Sprintf("Failed to save settings: %v", err), "error")
		return
	}
	logging.Info("Setting changed", "key", item.key, "value", item.value(m.config))

	switch item.key {
	case config.KeyThemeName:
		m.glamourRenderer = newGlamourRenderer(m.config.ThemeName)
		m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(themes.GetThemeByName(m.config.ThemeName).SelectedItemColor))
	case config.KeySpinnerType:
		m.spinner.Spinner = themes.GetSpinner(m.config.SpinnerType)
	case config.KeyPrefetchThreshold:
		m.pager.SetThreshold(m.config.PrefetchThreshold)
	}

	if item.restart {
		m.setStatus(item.label+" applies after restart", "info")
	} else {
		m.setStatus("", "")
	}
}

func (m Model) handleSettingsViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item := settingItems[m.settingsCursor]

	if m.selectingOption {
		options := item.options()
		switch msg.String() {
		case "esc", "q":
			m.selectingOption = false
		case "j", "down":
			if m.optionCursor < len(options)-1 {
				m.optionCursor++
			}
		case "k", "up":
			if m.optionCursor > 0 {
				m.optionCursor--
			}
		case "enter":
			m.selectingOption = false
			m.applySetting(item, options[m.optionCursor])
		}
		return m, nil
	}

	if m.editingSetting {
		switch msg.String() {
		case "esc":
			m.editingSetting = false
			m.settingInput.Blur()
			return m, nil
		case "enter":
			m.editingSetting = false
			m.settingInput.Blur()
			m.applySetting(item, m.settingInput.Value())
			return m, nil
		}
		var cmd tea.Cmd
		m.settingInput, cmd = m.settingInput.Update(msg)
		return m, cmd
	}

	if m.showSettingsHelp {
		switch msg.String() {
		case "esc", "q", "?":
			m.showSettingsHelp = false
		}
		return m, nil
	}

	switch msg.String() {
	case "?":
		m.showSettingsHelp = true

	case "q", "esc":
		m.state = m.previousState
		if m.state == SettingsView || m.state == HelpView {
			m.state = m.logReturnState()
		}
		m.setStatus("", "")

	case "j", "down":
		if m.settingsCursor < len(settingItems)-1 {
			m.settingsCursor++
		}

	case "k", "up":
		if m.settingsCursor > 0 {
			m.settingsCursor--
		}

	case "enter":
		if item.options != nil {
			m.selectingOption = true
			m.optionCursor = 0
			current := item.value(m.config)
			for i, opt := range item.options() {
				if opt == current {
					m.optionCursor = i
					break
				}
			}
			return m, nil
		}
		m.editingSetting = true
		m.settingInput.SetValue(item.value(m.config))
		m.settingInput.CursorEnd()
		cmd := m.settingInput.Focus()
		return m, cmd
	}

	return m, nil
}

func (m Model) renderSettingsView() string {
	var b strings.Builder
	b.WriteString(m.getTitleStyle().Render(m.titleText("Settings")))
	b.WriteString("\n\n")

	item := settingItems[m.settingsCursor]

	if m.selectingOption {
		b.WriteString(item.label + ":\n")
		b.WriteString(m.getHelpStyle().Render(item.help))
		b.WriteString("\n\n")
		options := item.options()
		for i, option := range options {
			b.WriteString(m.applyHighlight(option, i == m.optionCursor))
			b.WriteString("\n")
		}

		// title + empty line + label + help + empty line + status bar
		padding := m.height - 6 - len(options)
		if padding < 0 {
			padding = 0
		}
		b.WriteString(strings.Repeat("\n", padding))
		b.WriteString(m.getHelpStyle().Render("enter: select | esc: cancel"))
		return b.String()
	}

	if m.showSettingsHelp {
		b.WriteString("Settings Help:\n\n")
		usedLines := 4
		for _, s := range settingItems {
			line := s.label + ": " + s.help
			if s.restart {
				line += " - Requires restart"
			}
			for _, wrappedLine := range wrapText(line, m.width-4) {
				b.WriteString("  " + wrappedLine + "\n")
				usedLines++
			}
		}

		padding := m.height - usedLines - 1
		if padding < 0 {
			padding = 0
		}
		b.WriteString(strings.Repeat("\n", padding))
		b.WriteString(m.getHelpStyle().Render("esc: close help"))
		return b.String()
	}

	for i, s := range settingItems {
		var line string
		if m.editingSetting && i == m.settingsCursor {
			line = fmt.Sprintf("%-20s %s", s.label+":", m.settingInput.View())
			line = m.applyHighlight(line, true)
		} else {
			value := s.value(m.config)
			if s.restart {
				value += m.getHelpStyle().Render(" (restart required after changing)")
			}
			line = fmt.Sprintf("%-20s %s", s.label+":", value)
			line = m.applyHighlight(line, i == m.settingsCursor)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	// title + empty line + status bar + status message
	padding := m.height - 4 - len(settingItems)
	if padding < 0 {
		padding = 0
	}
	b.WriteString(strings.Repeat("\n", padding))

	if m.editingSetting {
		b.WriteString(m.getHelpStyle().Render("enter: save | esc: cancel"))
	} else {
		b.WriteString(m.statusBar(SettingsViewKeys.StatusBar))
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatusMessage())

	return b.String()
}
