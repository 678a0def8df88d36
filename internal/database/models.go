package database

import (
	"database/sql"
	"time"
)

type Setting struct {
	Key   string
	Value string
}

type LogMessage struct {
	ID         int64
	SessionID  string
	Level      string
	Message    string
	Timestamp  time.Time
	Attributes sql.NullString
}

type ReadPost struct {
	Name   string
	ReadAt time.Time
}
