// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides habit persistence with automatic schema creation and legacy migration

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/2389/habit-streaks/internal/streak"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	inMemory := path == ":memory:"
	if !inMemory {
		// Ensure parent directory exists
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if inMemory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		// Enable WAL mode for better concurrent performance
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling WAL mode: %w", err)
		}
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	// Legacy tables must be renamed before the schema creates indexes on them.
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS habits (
			owner        TEXT NOT NULL,
			name         TEXT NOT NULL,
			start_date   TEXT NOT NULL,
			last_updated TEXT NOT NULL,
			streak_count INTEGER NOT NULL,
			PRIMARY KEY (owner, name)
		);

		CREATE TABLE IF NOT EXISTS check_ins (
			id         TEXT PRIMARY KEY,
			owner      TEXT NOT NULL,
			habit      TEXT NOT NULL,
			day        TEXT NOT NULL,
			streak     INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_check_ins_habit
			ON check_ins(owner, habit, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// runMigrations upgrades databases created by the earlier bot, whose habits
// table used user_id and habit as column names. These are idempotent - safe
// to run multiple times.
func (s *SQLiteStore) runMigrations() error {
	migrations := []struct {
		check  string // Query that succeeds only if the migration is needed
		apply  string // Query to apply the migration
		column string // Column name for logging
	}{
		{
			check:  `SELECT 1 FROM pragma_table_info('habits') WHERE name = 'user_id'`,
			apply:  `ALTER TABLE habits RENAME COLUMN user_id TO owner`,
			column: "user_id",
		},
		{
			check:  `SELECT 1 FROM pragma_table_info('habits') WHERE name = 'habit'`,
			apply:  `ALTER TABLE habits RENAME COLUMN habit TO name`,
			column: "habit",
		},
	}

	for _, m := range migrations {
		var exists int
		err := s.db.QueryRow(m.check).Scan(&exists)
		if err == sql.ErrNoRows {
			// Already migrated or a fresh database
			continue
		}
		if err != nil {
			return fmt.Errorf("checking %s column: %w", m.column, err)
		}
		if _, err := s.db.Exec(m.apply); err != nil {
			return fmt.Errorf("renaming %s column in habits: %w", m.column, err)
		}
		s.logger.Info("applied migration", "column", m.column, "table", "habits")
	}

	return nil
}

// Ping verifies the database connection is alive
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// CreateIfAbsent inserts a new habit with start and last-updated set to today
// and a streak of 1. An existing habit is left untouched.
func (s *SQLiteStore) CreateIfAbsent(ctx context.Context, owner, name string, today streak.Date) (bool, error) {
	query := `
		INSERT INTO habits (owner, name, start_date, last_updated, streak_count)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(owner, name) DO NOTHING
	`

	day := today.String()
	result, err := s.db.ExecContext(ctx, query, owner, name, day, day)
	if err != nil {
		return false, fmt.Errorf("inserting habit: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		s.logger.Debug("habit already exists", "owner", owner, "habit", name)
		return false, nil
	}

	s.logger.Debug("created habit", "owner", owner, "habit", name, "start", day)
	return true, nil
}

// Get retrieves a habit by owner and name.
// Returns ErrNotFound if the habit doesn't exist.
func (s *SQLiteStore) Get(ctx context.Context, owner, name string) (*Habit, error) {
	query := `
		SELECT owner, name, start_date, last_updated, streak_count
		FROM habits
		WHERE owner = ? AND name = ?
	`

	h, err := scanHabit(s.db.QueryRowContext(ctx, query, owner, name))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying habit: %w", err)
	}

	return h, nil
}

// ListForOwner returns all habits for an owner ordered by name
func (s *SQLiteStore) ListForOwner(ctx context.Context, owner string) ([]*Habit, error) {
	query := `
		SELECT owner, name, start_date, last_updated, streak_count
		FROM habits
		WHERE owner = ?
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("querying habits: %w", err)
	}
	defer rows.Close()

	var habits []*Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning habit: %w", err)
		}
		habits = append(habits, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating habit rows: %w", err)
	}
	return habits, nil
}

// UpdateCheckIn overwrites the last check-in day and streak count.
// Returns ErrNotFound if the habit doesn't exist.
func (s *SQLiteStore) UpdateCheckIn(ctx context.Context, owner, name string, lastUpdated streak.Date, streakCount int) error {
	query := `
		UPDATE habits
		SET last_updated = ?, streak_count = ?
		WHERE owner = ? AND name = ?
	`

	result, err := s.db.ExecContext(ctx, query, lastUpdated.String(), streakCount, owner, name)
	if err != nil {
		return fmt.Errorf("updating habit: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated habit", "owner", owner, "habit", name, "last_updated", lastUpdated.String(), "streak", streakCount)
	return nil
}

// Remove deletes a habit and its check-in history in one transaction.
func (s *SQLiteStore) Remove(ctx context.Context, owner, name string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.ExecContext(ctx, `DELETE FROM habits WHERE owner = ? AND name = ?`, owner, name)
	if err != nil {
		return false, fmt.Errorf("deleting habit: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM check_ins WHERE owner = ? AND habit = ?`, owner, name); err != nil {
		return false, fmt.Errorf("deleting check-ins: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing transaction: %w", err)
	}

	if rowsAffected == 0 {
		return false, nil
	}

	s.logger.Debug("removed habit", "owner", owner, "habit", name)
	return true, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// scanHabit reads one habits row. sql.ErrNoRows is returned unwrapped.
func scanHabit(row rowScanner) (*Habit, error) {
	var h Habit
	var startStr, lastStr string

	if err := row.Scan(&h.Owner, &h.Name, &startStr, &lastStr, &h.StreakCount); err != nil {
		return nil, err
	}

	var err error
	h.StartDate, err = streak.ParseDate(startStr)
	if err != nil {
		return nil, fmt.Errorf("parsing start_date: %w", err)
	}

	h.LastUpdated, err = streak.ParseDate(lastStr)
	if err != nil {
		return nil, fmt.Errorf("parsing last_updated: %w", err)
	}

	return &h, nil
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
