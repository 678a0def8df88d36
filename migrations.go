package main

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/jarv/snoogoat/internal/logging"
)

//go:embed sql/migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "sql/migrations"

type migration struct {
	version int
	name    string
	file    string
}

// RunMigrations applies the embedded migrations that are not yet recorded in
// schema_migrations.
func RunMigrations(db *sql.DB) error {
	return runMigrationsFrom(db, migrationsFS, migrationsDir)
}

func runMigrationsFrom(db *sql.DB, fsys fs.FS, dir string) error {
	migrations, err := loadMigrations(fsys, dir)
	if err != nil {
		return err
	}

	appliedVersions, err := getAppliedMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, m := range migrations {
		if appliedVersions[m.version] {
			continue
		}

		content, err := fs.ReadFile(fsys, path.Join(dir, m.file))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", m.file, err)
		}
		if err := applyMigration(db, m.version, string(content)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.file, err)
		}
		logging.Info("Applied migration", "version", m.version, "name", m.name)
	}

	return nil
}

// loadMigrations lists the .sql files in dir ordered by version. Files are
// named NNNNNN_name.sql.
func loadMigrations(fsys fs.FS, dir string) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []migration
	seen := make(map[int]string)
	for _, entry := range entries {
		fileName := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(fileName, ".sql") {
			continue
		}

		versionStr, name, ok := strings.Cut(fileName, "_")
		if !ok {
			return nil, fmt.Errorf("invalid migration filename format: %s", fileName)
		}
		version, err := strconv.Atoi(versionStr)
		if err != nil {
			return nil, fmt.Errorf("invalid migration version in %s: %w", fileName, err)
		}
		if other, dup := seen[version]; dup {
			return nil, fmt.Errorf("migrations %s and %s share version %d", other, fileName, version)
		}
		seen[version] = fileName

		migrations = append(migrations, migration{
			version: version,
			name:    strings.TrimSuffix(name, ".sql"),
			file:    fileName,
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})
	return migrations, nil
}

// getAppliedMigrations returns the recorded versions. A database created
// before schema_migrations existed has none.
func getAppliedMigrations(db *sql.DB) (map[int]bool, error) {
	var tableExists bool
	err := db.QueryRow(`
		SELECT COUNT(*) > 0
		FROM sqlite_master
		WHERE type='table' AND name='schema_migrations'
	`).Scan(&tableExists)
	if err != nil {
		return nil, err
	}

	applied := make(map[int]bool)
	if !tableExists {
		return applied, nil
	}

	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// applyMigration runs the statements and records the version in one transaction
func applyMigration(db *sql.DB, version int, statements string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(statements); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version) VALUES (?)",
		version,
	); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}
