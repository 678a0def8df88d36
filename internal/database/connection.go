package database

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DefaultPath returns ~/.config/snoogoat/snoogoat.db, creating the directory.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(homeDir, ".config", "snoogoat")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "snoogoat.db"), nil
}

func InitDBWithSchema(schemaSQL string) (*sql.DB, *Queries, error) {
	dbPath, err := DefaultPath()
	if err != nil {
		return nil, nil, err
	}
	return OpenDB(dbPath, schemaSQL)
}

// OpenDB opens the database at dbPath and applies schemaSQL when given.
func OpenDB(dbPath string, schemaSQL string) (*sql.DB, *Queries, error) {
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, nil, err
	}

	// The UI writes logs and read markers from several goroutines; one
	// connection keeps sqlite from returning SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if schemaSQL != "" {
		if err := createTables(db, schemaSQL); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}

	queries := New(db)
	return db, queries, nil
}

func createTables(db *sql.DB, schemaSQL string) error {
	_, err := db.Exec(schemaSQL)
	return err
}
