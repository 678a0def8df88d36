package ui

import "strings"

// KeyBinding represents a single key binding with its description
type KeyBinding struct {
	Key         string
	Description string
}

// ViewKeyBindings holds the key bindings for a specific view
type ViewKeyBindings struct {
	AllowedKeys []string     // Keys that are allowed in this view (excluding global keys)
	StatusBar   []KeyBinding // Keys to show in the status bar
	Help        []KeyBinding // Keys listed in the help view
}

// Global key bindings that work in all views
var GlobalKeys = []KeyBinding{
	{"?", "help"},
	{"q", "quit / go back (2x in feed view)"},
	{"esc", "close / go back"},
	{"ctrl+c", "force quit"},
	{"j, down", "move down"},
	{"k, up", "move up"},
	{"enter", "select / open"},
	{"ctrl+d", "page down"},
	{"ctrl+u", "page up"},
}

// View-specific key bindings
var LoadingViewKeys = ViewKeyBindings{
	AllowedKeys: []string{"L"},
	StatusBar: []KeyBinding{
		{"L", "log"},
	},
}

var FeedViewKeys = ViewKeyBindings{
	AllowedKeys: []string{"s", "c", "o", "r", "g", "G", "S", "L"},
	StatusBar: []KeyBinding{
		{"s", "feeds"},
		{"c", "comments"},
		{"o", "open"},
	},
	Help: []KeyBinding{
		{"s", "open / close the feed selector"},
		{"c", "open / close comments for the post"},
		{"o", "open the post link in the browser"},
		{"r", "reload the selected feed"},
		{"g, G", "first / last post"},
		{"S", "settings"},
		{"L", "log messages"},
	},
}

var PostViewKeys = ViewKeyBindings{
	AllowedKeys: []string{"h", "l", "left", "right", "c", "o", "p", "1", "2", "3", "4", "5", "6", "7", "8", "9"},
	StatusBar: []KeyBinding{
		{"h/l", "prev/next"},
		{"c", "comments"},
		{"o", "open"},
	},
	Help: []KeyBinding{
		{"h, left", "previous post"},
		{"l, right", "next post"},
		{"c", "open / close comments"},
		{"o", "open the post link in the browser"},
		{"p", "open the comments page in the browser"},
		{"1-9", "open numbered link"},
	},
}

var SelectorKeys = ViewKeyBindings{
	StatusBar: []KeyBinding{
		{"enter", "select"},
		{"esc", "close"},
	},
	Help: []KeyBinding{
		{"type", "filter feeds"},
		{"up/down, ctrl+p/ctrl+n", "move"},
		{"enter", "switch to feed"},
		{"esc, s", "close"},
	},
}

var DrawerKeys = ViewKeyBindings{
	StatusBar: []KeyBinding{
		{"j/k", "scroll"},
		{"esc", "close"},
	},
}

var SettingsViewKeys = ViewKeyBindings{
	AllowedKeys: []string{},
	StatusBar: []KeyBinding{
		{"enter", "edit"},
	},
}

var LogViewKeys = ViewKeyBindings{
	AllowedKeys: []string{"c"},
	StatusBar: []KeyBinding{
		{"c", "clear"},
	},
	Help: []KeyBinding{
		{"c", "delete all log messages"},
	},
}

var LogDetailViewKeys = ViewKeyBindings{
	AllowedKeys: []string{},
	StatusBar:   []KeyBinding{},
}

var HelpViewKeys = ViewKeyBindings{
	AllowedKeys: []string{},
	StatusBar:   []KeyBinding{},
}

// GetViewKeys returns the key bindings for a given view state
func GetViewKeys(state ViewState) ViewKeyBindings {
	switch state {
	case LoadingView:
		return LoadingViewKeys
	case FeedView:
		return FeedViewKeys
	case PostView:
		return PostViewKeys
	case SettingsView:
		return SettingsViewKeys
	case LogView:
		return LogViewKeys
	case LogDetailView:
		return LogDetailViewKeys
	case HelpView:
		return HelpViewKeys
	default:
		return ViewKeyBindings{}
	}
}

// FormatStatusBar creates a formatted status bar string from key bindings
func FormatStatusBar(bindings []KeyBinding) string {
	if len(bindings) == 0 {
		return ""
	}

	parts := make([]string, len(bindings))
	for i, binding := range bindings {
		parts[i] = binding.Key + ": " + binding.Description
	}
	return strings.Join(parts, " | ")
}
