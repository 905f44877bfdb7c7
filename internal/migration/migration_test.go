package migration

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"001_init.sql":       {Data: []byte(`CREATE TABLE things (id TEXT PRIMARY KEY);`)},
		"002_add_colors.sql": {Data: []byte(`ALTER TABLE things ADD COLUMN color TEXT NOT NULL DEFAULT '';`)},
	}
}

func TestApply(t *testing.T) {
	db := testDB(t)
	runner := NewRunner(db, testFS())

	count, err := runner.Apply(nil)
	if err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}
	if count != 2 {
		t.Errorf("applied = %d, want 2", count)
	}

	version, err := runner.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion() failed: %v", err)
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}

	// The migrated schema is usable.
	if _, err := db.Exec(`INSERT INTO things (id, color) VALUES ('a', 'green')`); err != nil {
		t.Errorf("migrated schema rejected insert: %v", err)
	}

	// Re-applying is a no-op.
	count, err = runner.Apply(nil)
	if err != nil {
		t.Fatalf("second Apply() failed: %v", err)
	}
	if count != 0 {
		t.Errorf("second apply count = %d, want 0", count)
	}
}

func TestApplyRollsBackFailedMigration(t *testing.T) {
	db := testDB(t)
	runner := NewRunner(db, fstest.MapFS{
		"001_init.sql": {Data: []byte(`CREATE TABLE things (id TEXT PRIMARY KEY);`)},
		"002_bad.sql":  {Data: []byte(`THIS IS NOT SQL;`)},
	})

	count, err := runner.Apply(nil)
	if err == nil {
		t.Fatal("Apply() with a broken migration should fail")
	}
	if count != 1 {
		t.Errorf("applied before failure = %d, want 1", count)
	}

	version, err := runner.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion() failed: %v", err)
	}
	if version != 1 {
		t.Errorf("version after failed migration = %d, want 1", version)
	}
}

func TestReadMigrationsValidation(t *testing.T) {
	db := testDB(t)

	t.Run("duplicate versions", func(t *testing.T) {
		runner := NewRunner(db, fstest.MapFS{
			"001_a.sql": {Data: []byte(`SELECT 1;`)},
			"001_b.sql": {Data: []byte(`SELECT 1;`)},
		})
		if _, err := runner.ReadMigrations(); err == nil {
			t.Error("ReadMigrations() with duplicate versions should fail")
		}
	})

	t.Run("malformed filename", func(t *testing.T) {
		runner := NewRunner(db, fstest.MapFS{
			"noversion.sql": {Data: []byte(`SELECT 1;`)},
		})
		if _, err := runner.ReadMigrations(); err == nil {
			t.Error("ReadMigrations() with malformed filename should fail")
		}
	})

	t.Run("non-sql files ignored", func(t *testing.T) {
		runner := NewRunner(db, fstest.MapFS{
			"001_init.sql": {Data: []byte(`SELECT 1;`)},
			"README.md":    {Data: []byte(`notes`)},
		})
		migrations, err := runner.ReadMigrations()
		if err != nil {
			t.Fatalf("ReadMigrations() failed: %v", err)
		}
		if len(migrations) != 1 {
			t.Errorf("migrations = %d, want 1", len(migrations))
		}
	})
}

func TestValidateVersion(t *testing.T) {
	db := testDB(t)
	runner := NewRunner(db, testFS())

	// Fresh database is behind.
	if err := runner.ValidateVersion(); err == nil {
		t.Error("ValidateVersion() on fresh database should fail")
	}

	if _, err := runner.Apply(nil); err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}
	if err := runner.ValidateVersion(); err != nil {
		t.Errorf("ValidateVersion() after apply failed: %v", err)
	}

	// A database from a newer release is ahead.
	if _, err := db.Exec(`UPDATE schema_version SET version = 99`); err != nil {
		t.Fatalf("failed to bump version: %v", err)
	}
	if err := runner.ValidateVersion(); err == nil {
		t.Error("ValidateVersion() with future version should fail")
	}
}
