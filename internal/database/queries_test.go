package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
)

// openTestDB applies the schema and every migration from the repository's
// sql directory to a fresh database.
func openTestDB(t *testing.T) *Queries {
	t.Helper()

	schema, err := os.ReadFile(filepath.Join("..", "..", "sql", "schema.sql"))
	if err != nil {
		t.Fatalf("Failed to read schema: %v", err)
	}

	db, queries, err := OpenDB(filepath.Join(t.TempDir(), "test.db"), string(schema))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	migrations, err := filepath.Glob(filepath.Join("..", "..", "sql", "migrations", "*.sql"))
	if err != nil {
		t.Fatalf("Failed to list migrations: %v", err)
	}
	sort.Strings(migrations)
	for _, m := range migrations {
		content, err := os.ReadFile(m)
		if err != nil {
			t.Fatalf("Failed to read %s: %v", m, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			t.Fatalf("Failed to apply %s: %v", m, err)
		}
	}

	return queries
}

func TestSettings(t *testing.T) {
	q := openTestDB(t)
	ctx := context.Background()

	if _, err := q.GetSetting(ctx, "page_size"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows for a missing setting, got %v", err)
	}

	if err := q.SetSetting(ctx, SetSettingParams{Key: "page_size", Value: "10"}); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	if err := q.SetSetting(ctx, SetSettingParams{Key: "page_size", Value: "50"}); err != nil {
		t.Fatalf("SetSetting() overwrite error = %v", err)
	}

	setting, err := q.GetSetting(ctx, "page_size")
	if err != nil {
		t.Fatalf("GetSetting() error = %v", err)
	}
	if setting.Value != "50" {
		t.Errorf("page_size = %q, want 50", setting.Value)
	}
}

func TestLogMessages(t *testing.T) {
	q := openTestDB(t)
	ctx := context.Background()

	now := time.Now()
	for i, msg := range []string{"first", "second", "third"} {
		err := q.CreateLogMessage(ctx, CreateLogMessageParams{
			SessionID:  "session-1",
			Level:      "INFO",
			Message:    msg,
			Timestamp:  now.Add(time.Duration(i) * time.Second),
			Attributes: sql.NullString{String: `{"n":1}`, Valid: i == 0},
		})
		if err != nil {
			t.Fatalf("CreateLogMessage() error = %v", err)
		}
	}

	logs, err := q.GetLogMessages(ctx, 2)
	if err != nil {
		t.Fatalf("GetLogMessages() error = %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[0].Message != "third" || logs[1].Message != "second" {
		t.Errorf("expected newest first, got %q, %q", logs[0].Message, logs[1].Message)
	}
	if logs[0].SessionID != "session-1" {
		t.Errorf("SessionID = %q, want session-1", logs[0].SessionID)
	}
	if logs[0].Timestamp.UnixMilli() != now.Add(2*time.Second).UnixMilli() {
		t.Errorf("timestamp did not round trip: %v", logs[0].Timestamp)
	}

	if err := q.DeleteAllLogMessages(ctx); err != nil {
		t.Fatalf("DeleteAllLogMessages() error = %v", err)
	}
	logs, err = q.GetLogMessages(ctx, 10)
	if err != nil {
		t.Fatalf("GetLogMessages() error = %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("expected no logs after delete, got %d", len(logs))
	}
}

func TestReadPosts(t *testing.T) {
	q := openTestDB(t)
	ctx := context.Background()

	old := time.Now().Add(-60 * 24 * time.Hour)
	if err := q.MarkPostRead(ctx, MarkPostReadParams{Name: "t3_old", ReadAt: old}); err != nil {
		t.Fatalf("MarkPostRead() error = %v", err)
	}
	if err := q.MarkPostRead(ctx, MarkPostReadParams{Name: "t3_new", ReadAt: time.Now()}); err != nil {
		t.Fatalf("MarkPostRead() error = %v", err)
	}
	// Marking twice must not fail
	if err := q.MarkPostRead(ctx, MarkPostReadParams{Name: "t3_new", ReadAt: time.Now()}); err != nil {
		t.Fatalf("MarkPostRead() repeat error = %v", err)
	}

	names, err := q.ListReadPostNames(ctx)
	if err != nil {
		t.Fatalf("ListReadPostNames() error = %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 read posts, got %v", names)
	}

	if err := q.DeleteReadPostsBefore(ctx, time.Now().Add(-30*24*time.Hour)); err != nil {
		t.Fatalf("DeleteReadPostsBefore() error = %v", err)
	}
	names, err = q.ListReadPostNames(ctx)
	if err != nil {
		t.Fatalf("ListReadPostNames() error = %v", err)
	}
	if len(names) != 1 || names[0] != "t3_new" {
		t.Errorf("expected only t3_new to remain, got %v", names)
	}
}
