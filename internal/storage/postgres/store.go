package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	pq "github.com/lib/pq"

	"github.com/sproutapp/sprout/internal/logger"
	"github.com/sproutapp/sprout/internal/migration"
	"github.com/sproutapp/sprout/internal/storage"
	"github.com/sproutapp/sprout/migrations"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	// ErrEmbeddedCredentials is returned when a connection string carries a
	// password inline. Credentials belong in the environment, .pgpass, or
	// the OS keyring.
	ErrEmbeddedCredentials = errors.New("connection string must not contain a password")
)

type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type Store struct {
	connStr string
	db      *sql.DB
	q       dbtx
}

func New(connStr string) *Store {
	return &Store{connStr: connStr}
}

// ValidateConnString checks a PostgreSQL connection string for inline
// credentials before any connection is attempted.
func ValidateConnString(connStr string) (bool, error) {
	if HasEmbeddedCredentials(connStr) {
		return false, ErrEmbeddedCredentials
	}
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		if _, err := url.Parse(connStr); err != nil {
			return false, fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
		}
	}
	return true, nil
}

// HasEmbeddedCredentials reports whether the connection string carries an
// inline password, in either URL or DSN form.
func HasEmbeddedCredentials(connStr string) bool {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil {
			return false
		}
		if u.User != nil {
			if _, set := u.User.Password(); set {
				return true
			}
		}
		return false
	}
	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], "password") {
			return true
		}
	}
	return false
}

func (s *Store) open() error {
	if valid, err := ValidateConnString(s.connStr); !valid {
		return err
	}
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	s.q = db
	return nil
}

func (s *Store) Init() error {
	if err := s.open(); err != nil {
		return err
	}
	runner := migration.NewRunner(s.db, s.migrationFS())
	if _, err := runner.Apply(func(msg string) { logger.Debug(msg) }); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
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
	return s.connStr
}

func (s *Store) migrationFS() fs.FS {
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		panic(fmt.Sprintf("postgres migrations missing from embedded FS: %v", err))
	}
	return subFS
}

// Migrate opens the database if needed and applies pending migrations,
// returning the number applied.
func (s *Store) Migrate(logFn func(string)) (int, error) {
	if s.db == nil {
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

// InTx runs fn against a Ledger view bound to one transaction.
func (s *Store) InTx(fn func(storage.Ledger) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txStore := &Store{connStr: s.connStr, db: s.db, q: tx}
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
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
		return storage.ErrConflict
	}
	return err
}
