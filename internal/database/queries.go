package database

import (
	"context"
	"database/sql"
	"time"
)

const getSetting = `SELECT key, value FROM settings WHERE key = ?`

func (q *Queries) GetSetting(ctx context.Context, key string) (Setting, error) {
	row := q.db.QueryRowContext(ctx, getSetting, key)
	var i Setting
	err := row.Scan(&i.Key, &i.Value)
	return i, err
}

const setSetting = `INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value`

type SetSettingParams struct {
	Key   string
	Value string
}

func (q *Queries) SetSetting(ctx context.Context, arg SetSettingParams) error {
	_, err := q.db.ExecContext(ctx, setSetting, arg.Key, arg.Value)
	return err
}

const createLogMessage = `INSERT INTO log_messages (session_id, level, message, timestamp, attributes)
VALUES (?, ?, ?, ?, ?)`

type CreateLogMessageParams struct {
	SessionID  string
	Level      string
	Message    string
	Timestamp  time.Time
	Attributes sql.NullString
}

func (q *Queries) CreateLogMessage(ctx context.Context, arg CreateLogMessageParams) error {
	_, err := q.db.ExecContext(ctx, createLogMessage,
		arg.SessionID,
		arg.Level,
		arg.Message,
		arg.Timestamp.UnixMilli(),
		arg.Attributes,
	)
	return err
}

const getLogMessages = `SELECT id, session_id, level, message, timestamp, attributes
FROM log_messages
ORDER BY id DESC
LIMIT ?`

func (q *Queries) GetLogMessages(ctx context.Context, limit int64) ([]LogMessage, error) {
	rows, err := q.db.QueryContext(ctx, getLogMessages, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LogMessage
	for rows.Next() {
		var i LogMessage
		var timestamp int64
		if err := rows.Scan(
			&i.ID,
			&i.SessionID,
			&i.Level,
			&i.Message,
			&timestamp,
			&i.Attributes,
		); err != nil {
			return nil, err
		}
		i.Timestamp = time.UnixMilli(timestamp)
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteAllLogMessages = `DELETE FROM log_messages`

func (q *Queries) DeleteAllLogMessages(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllLogMessages)
	return err
}

const markPostRead = `INSERT INTO read_posts (name, read_at) VALUES (?, ?)
ON CONFLICT (name) DO UPDATE SET read_at = excluded.read_at`

type MarkPostReadParams struct {
	Name   string
	ReadAt time.Time
}

func (q *Queries) MarkPostRead(ctx context.Context, arg MarkPostReadParams) error {
	_, err := q.db.ExecContext(ctx, markPostRead, arg.Name, arg.ReadAt.Unix())
	return err
}

const listReadPostNames = `SELECT name FROM read_posts`

func (q *Queries) ListReadPostNames(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listReadPostNames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		items = append(items, name)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteReadPostsBefore = `DELETE FROM read_posts WHERE read_at < ?`

func (q *Queries) DeleteReadPostsBefore(ctx context.Context, cutoff time.Time) error {
	_, err := q.db.ExecContext(ctx, deleteReadPostsBefore, cutoff.Unix())
	return err
}
