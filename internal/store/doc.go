// Package store provides persistent storage for habit records using SQLite.
//
// # Architecture
//
// The package is interface driven:
//
//   - HabitStore: the habit table keyed by (owner, name)
//   - CheckInLog: append-only history of successful check-ins
//   - Store: both of the above plus Ping and Close
//
// SQLiteStore implements Store in a single struct. MockStore is an
// in-memory implementation for handler and service tests.
//
// # Data Models
//
//   - Habit: one tracked habit per owner, holding its start day, last
//     check-in day and current streak
//   - CheckIn: a single recorded check-in with the streak it produced
//
// Days are stored as YYYY-MM-DD text; wall-clock timestamps as RFC3339 UTC.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Database file locations:
//
//   - Default: ~/.local/share/habit-streaks/habits.db
//   - Testing: a file under t.TempDir(), or :memory:
//
// Databases written by the earlier bot (columns user_id and habit) are
// migrated in place on open.
//
// # Error Handling
//
//   - ErrNotFound: no habit with that owner and name
//
// Creating a habit that already exists is not an error; CreateIfAbsent
// reports created=false instead. Removing a missing habit is likewise not an
// error; Remove reports removed=false.
//
// All methods accept context.Context for cancellation support.
package store
