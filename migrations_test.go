package main

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/jarv/snoogoat/internal/database"
)

func TestRunMigrations(t *testing.T) {
	db, _, err := database.OpenDB(filepath.Join(t.TempDir(), "test.db"), schemaSQL)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	// Running twice must not re-apply anything
	for i := 0; i < 2; i++ {
		if err := RunMigrations(db); err != nil {
			t.Fatalf("RunMigrations() run %d error = %v", i+1, err)
		}
	}

	applied, err := getAppliedMigrations(db)
	if err != nil {
		t.Fatalf("getAppliedMigrations() error = %v", err)
	}
	migrations, err := loadMigrations(migrationsFS, migrationsDir)
	if err != nil {
		t.Fatalf("loadMigrations() error = %v", err)
	}
	for _, m := range migrations {
		if !applied[m.version] {
			t.Errorf("migration %s not recorded", m.file)
		}
	}

	if _, err := db.Exec("INSERT INTO read_posts (name, read_at) VALUES ('t3_abc', 1)"); err != nil {
		t.Errorf("read_posts not usable: %v", err)
	}
	if _, err := db.Exec("INSERT INTO log_messages (session_id, level, message, timestamp) VALUES ('s', 'INFO', 'm', 1)"); err != nil {
		t.Errorf("log_messages.session_id not usable: %v", err)
	}
}

func TestLoadMigrations(t *testing.T) {
	tests := []struct {
		name      string
		files     fstest.MapFS
		wantFiles []string
		wantErr   bool
	}{
		{
			name: "ordered by version",
			files: fstest.MapFS{
				"m/000010_later.sql":  {Data: []byte("SELECT 1;")},
				"m/000002_second.sql": {Data: []byte("SELECT 1;")},
				"m/000001_first.sql":  {Data: []byte("SELECT 1;")},
				"m/README.md":         {Data: []byte("ignored")},
			},
			wantFiles: []string{"000001_first.sql", "000002_second.sql", "000010_later.sql"},
		},
		{
			name:    "missing separator",
			files:   fstest.MapFS{"m/000001.sql": {Data: []byte("SELECT 1;")}},
			wantErr: true,
		},
		{
			name:    "bad version",
			files:   fstest.MapFS{"m/one_first.sql": {Data: []byte("SELECT 1;")}},
			wantErr: true,
		},
		{
			name: "duplicate version",
			files: fstest.MapFS{
				"m/000001_a.sql": {Data: []byte("SELECT 1;")},
				"m/000001_b.sql": {Data: []byte("SELECT 1;")},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			migrations, err := loadMigrations(tt.files, "m")
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadMigrations() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(migrations) != len(tt.wantFiles) {
				t.Fatalf("got %d migrations, want %d", len(migrations), len(tt.wantFiles))
			}
			for i, m := range migrations {
				if m.file != tt.wantFiles[i] {
					t.Errorf("migration %d = %s, want %s", i, m.file, tt.wantFiles[i])
				}
			}
		})
	}
}

func TestFailedMigrationIsNotRecorded(t *testing.T) {
	db, _, err := database.OpenDB(filepath.Join(t.TempDir(), "test.db"), schemaSQL)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	files := fstest.MapFS{"m/000001_broken.sql": {Data: []byte("CREATE TABLE oops (")}}
	if err := runMigrationsFrom(db, files, "m"); err == nil {
		t.Fatal("expected an error for invalid SQL")
	}

	applied, err := getAppliedMigrations(db)
	if err != nil {
		t.Fatalf("getAppliedMigrations() error = %v", err)
	}
	if applied[1] {
		t.Error("failed migration should not be recorded")
	}
}
