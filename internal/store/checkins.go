// ABOUTME: SQLite persistence for the check-in history
// ABOUTME: Append-only log of check-ins with the streak each one produced

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/2389/habit-streaks/internal/streak"
)

// RecordCheckIn appends a check-in to the history.
// ID and CreatedAt are filled in when empty.
func (s *SQLiteStore) RecordCheckIn(ctx context.Context, c *CheckIn) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO check_ins (id, owner, habit, day, streak, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		c.ID,
		c.Owner,
		c.Habit,
		c.Day.String(),
		c.Streak,
		c.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting check-in: %w", err)
	}

	s.logger.Debug("recorded check-in",
		"id", c.ID,
		"owner", c.Owner,
		"habit", c.Habit,
		"day", c.Day.String(),
		"streak", c.Streak,
	)
	return nil
}

// ListCheckIns returns a habit's check-ins, newest first.
// A limit of zero or less returns the whole history.
func (s *SQLiteStore) ListCheckIns(ctx context.Context, owner, name string, limit int) ([]*CheckIn, error) {
	query := `
		SELECT id, owner, habit, day, streak, created_at
		FROM check_ins
		WHERE owner = ? AND habit = ?
		ORDER BY day DESC, created_at DESC, rowid DESC
	`
	args := []any{owner, name}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying check-ins: %w", err)
	}
	defer rows.Close()

	var checkIns []*CheckIn
	for rows.Next() {
		var c CheckIn
		var dayStr, createdAtStr string

		if err := rows.Scan(&c.ID, &c.Owner, &c.Habit, &dayStr, &c.Streak, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning check-in: %w", err)
		}

		c.Day, err = streak.ParseDate(dayStr)
		if err != nil {
			return nil, fmt.Errorf("parsing day: %w", err)
		}
		c.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		checkIns = append(checkIns, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating check-in rows: %w", err)
	}
	return checkIns, nil
}

// CountCheckIns returns how many check-ins a habit has recorded
func (s *SQLiteStore) CountCheckIns(ctx context.Context, owner, name string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM check_ins WHERE owner = ? AND habit = ?`,
		owner, name,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting check-ins: %w", err)
	}
	return n, nil
}
