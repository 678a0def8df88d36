package logging

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/jarv/snoogoat/internal/database"
)

type memoryStore struct {
	messages []database.CreateLogMessageParams
}

func (s *memoryStore) CreateLogMessage(_ context.Context, arg database.CreateLogMessageParams) error {
	s.messages = append(s.messages, arg)
	return nil
}

func TestDatabaseHandler(t *testing.T) {
	store := &memoryStore{}
	logger := slog.New(NewDatabaseHandler(store, "run-1", false))

	logger.Debug("hidden")
	logger.With("feed", "/r/golang/").Error("fetch failed", "error", errors.New("boom"), "status", 500)

	if len(store.messages) != 1 {
		t.Fatalf("expected debug to be filtered, got %d messages", len(store.messages))
	}

	msg := store.messages[0]
	if msg.SessionID != "run-1" {
		t.Errorf("SessionID = %q, want run-1", msg.SessionID)
	}
	if msg.Level != "ERROR" || msg.Message != "fetch failed" {
		t.Errorf("unexpected record: %+v", msg)
	}
	if !msg.Attributes.Valid {
		t.Fatal("expected attributes to be stored")
	}

	var attrs map[string]interface{}
	if err := json.Unmarshal([]byte(msg.Attributes.String), &attrs); err != nil {
		t.Fatalf("attributes are not valid JSON: %v", err)
	}
	if attrs["error"] != "boom" {
		t.Errorf("error attribute = %v, want boom", attrs["error"])
	}
	if attrs["feed"] != "/r/golang/" {
		t.Errorf("feed attribute from With() = %v, want /r/golang/", attrs["feed"])
	}
	if attrs["status"] != float64(500) {
		t.Errorf("status attribute = %v, want 500", attrs["status"])
	}
}

func TestDatabaseHandlerDebugEnabled(t *testing.T) {
	store := &memoryStore{}
	logger := slog.New(NewDatabaseHandler(store, "run-2", true))

	logger.Debug("visible")

	if len(store.messages) != 1 || store.messages[0].Level != "DEBUG" {
		t.Errorf("expected one debug record, got %+v", store.messages)
	}
}
