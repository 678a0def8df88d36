package ui

import (
	"os/exec"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jarv/snoogoat/internal/config"
	"github.com/jarv/snoogoat/internal/feeds"
	"github.com/jarv/snoogoat/internal/logging"
)

func acquireToken(feedManager *feeds.Manager) tea.Cmd {
	return func() tea.Msg {
		if err := feedManager.AcquireToken(); err != nil {
			return TokenFailedMsg{Err: err}
		}
		return TokenAcquiredMsg{}
	}
}

// fetchFeedPage fetches the first page of feed when after is empty and the
// page following after otherwise.
func fetchFeedPage(feedManager *feeds.Manager, feed, after string) tea.Cmd {
	return func() tea.Msg {
		listing, err := feedManager.FetchFeedPage(feed, after)
		if err != nil {
			return FeedPageFailedMsg{Feed: feed, After: after, Err: err}
		}
		return FeedPageLoadedMsg{Feed: feed, After: after, Listing: listing}
	}
}

func fetchSubscriptions(feedManager *feeds.Manager) tea.Cmd {
	return func() tea.Msg {
		subs, err := feedManager.FetchSubscriptions()
		if err != nil {
			logging.Error("fetchSubscriptions failed", "error", err)
			return ErrorMsg{Err: err}
		}
		return SubscriptionsLoadedMsg{Subreddits: subs}
	}
}

func fetchComments(feedManager *feeds.Manager, feed, postID string) tea.Cmd {
	return func() tea.Msg {
		comments, err := feedManager.FetchComments(feed, postID)
		if err != nil {
			return CommentsFailedMsg{PostID: postID, Err: err}
		}
		return CommentsLoadedMsg{PostID: postID, Comments: comments}
	}
}

func loadPinnedFeeds(path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			var err error
			path, err = config.GetFeedsFilePath()
			if err != nil {
				logging.Warn("Failed to get feeds file path", "error", err)
				return PinnedFeedsLoadedMsg{}
			}
		}
		entries, err := config.ReadFeedsFileFromPath(path)
		if err != nil {
			logging.Error("loadPinnedFeeds failed", "path", path, "error", err)
			return ErrorMsg{Err: err}
		}
		return PinnedFeedsLoadedMsg{Entries: entries, FilePath: path}
	}
}

func loadReadPosts(feedManager *feeds.Manager) tea.Cmd {
	return func() tea.Msg {
		if err := feedManager.PruneReadPosts(); err != nil {
			logging.Warn("Failed to prune read posts", "error", err)
		}
		read, err := feedManager.GetReadPosts()
		if err != nil {
			logging.Error("loadReadPosts failed", "error", err)
			return ErrorMsg{Err: err}
		}
		return ReadPostsLoadedMsg{Read: read}
	}
}

func markPostRead(feedManager *feeds.Manager, name string) tea.Cmd {
	return func() tea.Msg {
		err := feedManager.MarkPostRead(name)
		if err != nil {
			logging.Error("Error marking post as read", "post", name, "error", err)
		}
		return nil
	}
}

func loadLogList(feedManager *feeds.Manager) tea.Cmd {
	return func() tea.Msg {
		logs, err := feedManager.GetLogMessages(1000) // Get last 1000 log messages
		if err != nil {
			logging.Error("loadLogList failed", "error", err)
			return ErrorMsg{Err: err}
		}
		return LogListLoadedMsg{Logs: logs}
	}
}

func clearAllLogMessages(feedManager *feeds.Manager) tea.Cmd {
	return func() tea.Msg {
		err := feedManager.DeleteAllLogMessages()
		if err != nil {
			logging.Error("clearAllLogMessages failed", "error", err)
			return ErrorMsg{Err: err}
		}
		// Return empty logs list since all were deleted
		return LogListLoadedMsg{Logs: []feeds.LogMessage{}}
	}
}

func openLink(url string) tea.Cmd {
	return func() tea.Msg {
		var cmd *exec.Cmd

		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", url)
		case "linux":
			cmd = exec.Command("xdg-open", url)
		case "windows":
			cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
		default:
			logging.Warn("Unsupported platform for opening links", "platform", runtime.GOOS)
			return nil
		}

		err := cmd.Start()
		if err != nil {
			logging.Error("Error opening link", "url", url, "error", err)
		}

		return nil
	}
}
