package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// FeedEntry is a pinned feed from the feeds file: a listing path such as
// /r/golang/ with an optional label shown in the selector.
type FeedEntry struct {
	Path  string
	Label string
}

// DisplayName returns the label, falling back to the path.
func (e FeedEntry) DisplayName() string {
	if e.Label != "" {
		return e.Label
	}
	return e.Path
}

// Line is one line of the feeds file. Comments and blank lines are kept in
// Raw so rewriting the file preserves them.
type Line struct {
	Raw     string
	Entry   *FeedEntry
	IsEntry bool
}

func (l Line) String() string {
	if !l.IsEntry || l.Entry == nil {
		return l.Raw
	}
	if l.Entry.Label != "" {
		return l.Entry.Path + " " + l.Entry.Label
	}
	return l.Entry.Path
}

func GetFeedsFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "snoogoat", "feeds"), nil
}

func parseLine(raw string) Line {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return Line{Raw: raw}
	}

	parts := strings.Fields(line)
	entry := &FeedEntry{Path: parts[0]}
	if len(parts) > 1 {
		entry.Label = strings.Join(parts[1:], " ")
	}
	return Line{Raw: raw, Entry: entry, IsEntry: true}
}

// ReadAllLinesFromPath reads every line of the feeds file, entries and
// comments alike. A missing file yields no lines.
func ReadAllLinesFromPath(path string) ([]Line, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Line{}, nil
		}
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	var lines []Line
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, parseLine(scanner.Text()))
	}
	return lines, scanner.Err()
}

func WriteAllLines(path string, lines []Line) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = file.Close()
	}()

	writer := bufio.NewWriter(file)
	for _, line := range lines {
		if _, err := writer.WriteString(line.String() + "\n"); err != nil {
			return err
		}
	}
	return writer.Flush()
}

func ReadFeedsFileFromPath(path string) ([]FeedEntry, error) {
	lines, err := ReadAllLinesFromPath(path)
	if err != nil {
		return nil, err
	}

	entries := []FeedEntry{}
	for _, line := range lines {
		if line.IsEntry {
			entries = append(entries, *line.Entry)
		}
	}
	return entries, nil
}

// AddFeedToPath appends an entry unless its path is already present.
func AddFeedToPath(path string, entry FeedEntry) (bool, error) {
	lines, err := ReadAllLinesFromPath(path)
	if err != nil {
		return false, err
	}

	for _, line := range lines {
		if line.IsEntry && line.Entry.Path == entry.Path {
			return false, nil
		}
	}

	lines = append(lines, Line{Entry: &entry, IsEntry: true})
	return true, WriteAllLines(path, lines)
}

// RemoveFeedFromPath drops every entry with the given path.
func RemoveFeedFromPath(path, feedPath string) (bool, error) {
	lines, err := ReadAllLinesFromPath(path)
	if err != nil {
		return false, err
	}

	kept := lines[:0]
	removed := false
	for _, line := range lines {
		if line.IsEntry && line.Entry.Path == feedPath {
			removed = true
			continue
		}
		kept = append(kept, line)
	}

	if !removed {
		return false, nil
	}
	return true, WriteAllLines(path, kept)
}

func CreateSampleFeedsFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	return WriteAllLines(path, []Line{
		{Raw: "# Pinned feeds, one listing path per line with an optional label."},
		{Raw: "# These appear in the feed selector next to your subscriptions."},
		{Raw: "/ Front page"},
	})
}
