package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"runtime"

	"github.com/jarv/snoogoat/internal/database"
)

// LogStore is the subset of database.Queries the handler writes to.
type LogStore interface {
	CreateLogMessage(ctx context.Context, arg database.CreateLogMessageParams) error
}

// DatabaseHandler is a slog.Handler that persists every record so it can be
// browsed from the log view. Each record carries the id of the run that
// produced it.
type DatabaseHandler struct {
	store        LogStore
	sessionID    string
	debugEnabled bool
	attrs        []slog.Attr
}

func NewDatabaseHandler(store LogStore, sessionID string, debug bool) *DatabaseHandler {
	return &DatabaseHandler{
		store:        store,
		sessionID:    sessionID,
		debugEnabled: debug,
	}
}

func (h *DatabaseHandler) Enabled(_ context.Context, level slog.Level) bool {
	if level == slog.LevelDebug && !h.debugEnabled {
		return false
	}
	return true
}

func (h *DatabaseHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make(map[string]interface{}, len(h.attrs)+r.NumAttrs())
	add := func(a slog.Attr) bool {
		// error values marshal to {} so keep their text instead
		if err, ok := a.Value.Any().(error); ok {
			attrs[a.Key] = err.Error()
		} else {
			attrs[a.Key] = a.Value.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(add)

	if r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		frame, _ := frames.Next()
		if frame.File != "" {
			attrs["source_file"] = frame.File
			attrs["source_line"] = frame.Line
		}
	}

	var attributesJSON sql.NullString
	if len(attrs) > 0 {
		jsonData, err := json.Marshal(attrs)
		if err != nil {
			return err
		}
		attributesJSON = sql.NullString{String: string(jsonData), Valid: true}
	}

	return h.store.CreateLogMessage(ctx, database.CreateLogMessageParams{
		SessionID:  h.sessionID,
		Level:      r.Level.String(),
		Message:    r.Message,
		Timestamp:  r.Time,
		Attributes: attributesJSON,
	})
}

func (h *DatabaseHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup is not supported; grouped attributes are stored flat.
func (h *DatabaseHandler) WithGroup(_ string) slog.Handler {
	return h
}
