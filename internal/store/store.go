// ABOUTME: Store interfaces and data types for habit persistence
// ABOUTME: Defines Habit, CheckIn and the HabitStore/CheckInLog contracts

package store

import (
	"context"
	"errors"
	"time"

	"github.com/2389/habit-streaks/internal/streak"
)

// ErrNotFound is returned when a requested habit does not exist
var ErrNotFound = errors.New("not found")

// Habit is a tracked habit belonging to one owner
type Habit struct {
	Owner       string
	Name        string
	StartDate   streak.Date
	LastUpdated streak.Date
	StreakCount int
}

// CheckIn records one successful check-in and the streak it produced
type CheckIn struct {
	ID        string
	Owner     string
	Habit     string
	Day       streak.Date
	Streak    int
	CreatedAt time.Time
}

// HabitStore is the single habit table keyed by (owner, name)
type HabitStore interface {
	// CreateIfAbsent inserts a habit starting today with a streak of 1.
	// If the habit already exists nothing is written and created is false.
	CreateIfAbsent(ctx context.Context, owner, name string, today streak.Date) (created bool, err error)

	// Get returns ErrNotFound if the habit does not exist.
	Get(ctx context.Context, owner, name string) (*Habit, error)

	// ListForOwner returns all of an owner's habits ordered by name.
	ListForOwner(ctx context.Context, owner string) ([]*Habit, error)

	// UpdateCheckIn overwrites last_updated and streak_count.
	// Returns ErrNotFound if the habit does not exist.
	UpdateCheckIn(ctx context.Context, owner, name string, lastUpdated streak.Date, streakCount int) error

	// Remove deletes the habit and its check-in history. Removing a
	// missing habit succeeds with removed set to false.
	Remove(ctx context.Context, owner, name string) (removed bool, err error)
}

// CheckInLog is the history of check-ins per habit
type CheckInLog interface {
	RecordCheckIn(ctx context.Context, c *CheckIn) error
	ListCheckIns(ctx context.Context, owner, name string, limit int) ([]*CheckIn, error)
	CountCheckIns(ctx context.Context, owner, name string) (int, error)
}

// Store is everything the bot persists
type Store interface {
	HabitStore
	CheckInLog

	// Ping verifies the database is reachable
	Ping(ctx context.Context) error

	// Close releases any resources held by the store
	Close() error
}
