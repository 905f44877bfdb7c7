package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sproutapp/sprout/internal/logger"
	"github.com/sproutapp/sprout/internal/migration"
	"github.com/sproutapp/sprout/internal/storage"
	"github.com/sproutapp/sprout/migrations"
)

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx, so the
// same entity methods serve both a live connection and an open transaction.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type Store struct {
	path string
	db   *sql.DB
	q    dbtx
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) open() error {
	// busy_timeout keeps concurrent writers queued instead of failing fast;
	// the unique constraints then decide who wins.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", s.path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// One connection serializes our own transactions, so concurrent writers
	// queue at the pool instead of tripping over the file lock mid-tx.
	db.SetMaxOpenConns(1)
	s.db = db
	s.q = db
	return nil
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.open(); err != nil {
		return err
	}

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'sprout init' first")
	}

	if err := s.open(); err != nil {
		return err
	}

	runner := migration.NewRunner(s.db, s.migrationFS())
	return runner.ValidateVersion()
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

func (s *Store) migrationFS() fs.FS {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		// The sqlite subdirectory is embedded at compile time.
		panic(fmt.Sprintf("sqlite migrations missing from embedded FS: %v", err))
	}
	return subFS
}

// Migrate opens the database if needed and applies pending migrations,
// returning the number applied. Unlike Load it tolerates a schema that is
// behind, since catching up is the point.
func (s *Store) Migrate(logFn func(string)) (int, error) {
	if s.db == nil {
		if _, err := os.Stat(s.path); os.IsNotExist(err) {
			return 0, fmt.Errorf("storage not initialized, run 'sprout init' first")
		}
		if err := s.open(); err != nil {
			return 0, err
		}
	}
	runner := migration.NewRunner(s.db, s.migrationFS())
	return runner.Apply(logFn)
}

// MigrationStatus reports the applied and available schema versions.
func (s *Store) MigrationStatus() (current, latest int, err error) {
	runner := migration.NewRunner(s.db, s.migrationFS())
	current, err = runner.CurrentVersion()
	if err != nil {
		return 0, 0, err
	}
	latest, err = runner.LatestVersion()
	return current, latest, err
}

func (s *Store) runMigrations() error {
	runner := migration.NewRunner(s.db, s.migrationFS())
	_, err := runner.Apply(func(msg string) {
		logger.Debug(msg)
	})
	return err
}

// InTx runs fn against a Ledger view bound to one transaction.
func (s *Store) InTx(fn func(storage.Ledger) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txStore := &Store{path: s.path, db: s.db, q: tx}
	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Warn("Transaction rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// mapErr converts driver-level errors into the storage sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return storage.ErrConflict
		}
	}
	return err
}
