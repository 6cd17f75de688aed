// ABOUTME: Tests for the habit service
// ABOUTME: Covers start, check-in streak transitions, reset, history and error mapping

package habits

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/habit-streaks/internal/store"
	"github.com/2389/habit-streaks/internal/streak"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, start string) (*Service, *store.MockStore, *streak.FixedClock) {
	t.Helper()
	s := store.NewMockStore()
	clock := streak.NewFixedClock(streak.MustParseDate(start))
	return NewService(s, clock, testLogger()), s, clock
}

func TestStart_CreatesHabit(t *testing.T) {
	svc, _, _ := newTestService(t, "2024-01-01")
	ctx := context.Background()

	res, err := svc.Start(ctx, "owner", "  Reading ")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "reading", res.Habit.Name)
	assert.Equal(t, "2024-01-01", res.Habit.StartDate.String())
	assert.Equal(t, "2024-01-01", res.Habit.LastUpdated.String())
	assert.Equal(t, 1, res.Habit.StreakCount)
}

func TestStart_DuplicateIsIgnored(t *testing.T) {
	svc, _, clock := newTestService(t, "2024-01-01")
	ctx := context.Background()

	_, err := svc.Start(ctx, "owner", "reading")
	require.NoError(t, err)
	_, err = svc.CheckIn(ctx, "owner", "reading")
	require.NoError(t, err)

	clock.Advance(3)
	res, err := svc.Start(ctx, "owner", "READING")
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, "2024-01-01", res.Habit.StartDate.String())
	assert.Equal(t, 1, res.Habit.StreakCount)
}

func TestStart_InvalidNames(t *testing.T) {
	svc, _, _ := newTestService(t, "2024-01-01")
	ctx := context.Background()

	_, err := svc.Start(ctx, "owner", "   ")
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = svc.Start(ctx, "owner", strings.Repeat("x", MaxNameLength+1))
	assert.ErrorIs(t, err, ErrNameTooLong)
}

func TestCheckIn_Transitions(t *testing.T) {
	svc, _, clock := newTestService(t, "2024-01-01")
	ctx := context.Background()

	_, err := svc.Start(ctx, "owner", "reading")
	require.NoError(t, err)

	clock.Set(streak.MustParseDate("2024-01-02"))
	res, err := svc.CheckIn(ctx, "owner", "reading")
	require.NoError(t, err)
	assert.Equal(t, streak.Extended, res.Outcome)
	assert.Equal(t, 1, res.Previous)
	assert.Equal(t, 2, res.Habit.StreakCount)

	res, err = svc.CheckIn(ctx, "owner", "reading")
	require.NoError(t, err)
	assert.Equal(t, streak.Repeated, res.Outcome)
	assert.Equal(t, 2, res.Habit.StreakCount)

	clock.Set(streak.MustParseDate("2024-01-05"))
	res, err = svc.CheckIn(ctx, "owner", "reading")
	require.NoError(t, err)
	assert.Equal(t, streak.Restarted, res.Outcome)
	assert.Equal(t, 1, res.Habit.StreakCount)
	assert.Equal(t, "2024-01-05", res.Habit.LastUpdated.String())
}

func TestCheckIn_BackdatedTodayRestarts(t *testing.T) {
	svc, s, clock := newTestService(t, "2024-01-01")
	ctx := context.Background()

	_, err := svc.Start(ctx, "owner", "reading")
	require.NoError(t, err)
	require.NoError(t, s.UpdateCheckIn(ctx, "owner", "reading", streak.MustParseDate("2024-01-10"), 6))

	clock.Set(streak.MustParseDate("2024-01-09"))
	res, err := svc.CheckIn(ctx, "owner", "reading")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Habit.StreakCount)
	assert.Equal(t, "2024-01-09", res.Habit.LastUpdated.String())
}

func TestCheckIn_BeforeStartIsRejected(t *testing.T) {
	svc, s, clock := newTestService(t, "2024-01-05")
	ctx := context.Background()

	_, err := svc.Start(ctx, "owner", "reading")
	require.NoError(t, err)

	clock.Set(streak.MustParseDate("2024-01-04"))
	_, err = svc.CheckIn(ctx, "owner", "reading")
	assert.ErrorIs(t, err, ErrBeforeStart)

	h, err := s.Get(ctx, "owner", "reading")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", h.LastUpdated.String())
}

func TestCheckIn_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t, "2024-01-01")

	_, err := svc.CheckIn(context.Background(), "owner", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, IsStorageFailure(err))
}

func TestCheckIn_NormalizesName(t *testing.T) {
	svc, _, clock := newTestService(t, "2024-01-01")
	ctx := context.Background()

	_, err := svc.Start(ctx, "owner", "morning run")
	require.NoError(t, err)

	clock.Advance(1)
	res, err := svc.CheckIn(ctx, "owner", "  Morning   RUN")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Habit.StreakCount)
}

func TestStorageFailuresAreWrapped(t *testing.T) {
	svc, s, _ := newTestService(t, "2024-01-01")
	ctx := context.Background()
	boom := errors.New("database is locked")
	s.FailWith(boom)

	_, err := svc.Start(ctx, "owner", "reading")
	assert.True(t, IsStorageFailure(err))
	assert.ErrorIs(t, err, boom)

	_, err = svc.CheckIn(ctx, "owner", "reading")
	assert.True(t, IsStorageFailure(err))

	_, err = svc.List(ctx, "owner")
	assert.True(t, IsStorageFailure(err))

	err = svc.Reset(ctx, "owner", "reading")
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "removing habit", se.Op)
	assert.Contains(t, se.Error(), "database is locked")
}

func TestStorageFailureDoesNotPoisonLaterCalls(t *testing.T) {
	svc, s, _ := newTestService(t, "2024-01-01")
	ctx := context.Background()

	s.FailWith(errors.New("transient"))
	_, err := svc.Start(ctx, "owner", "reading")
	require.Error(t, err)

	s.FailWith(nil)
	res, err := svc.Start(ctx, "owner", "reading")
	require.NoError(t, err)
	assert.True(t, res.Created)
}

func TestReset(t *testing.T) {
	svc, _, _ := newTestService(t, "2024-01-01")
	ctx := context.Background()

	_, err := svc.Start(ctx, "owner", "reading")
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx, "owner", "reading"))

	_, err = svc.View(ctx, "owner", "reading")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Reset(ctx, "owner", "reading"), ErrNotFound)
}

func TestViewAndHistory(t *testing.T) {
	svc, _, clock := newTestService(t, "2024-01-01")
	ctx := context.Background()

	_, err := svc.Start(ctx, "owner", "reading")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		clock.Advance(1)
		_, err := svc.CheckIn(ctx, "owner", "reading")
		require.NoError(t, err)
	}
	// A same-day repeat is not a new check-in.
	_, err = svc.CheckIn(ctx, "owner", "reading")
	require.NoError(t, err)

	detail, err := svc.View(ctx, "owner", "reading")
	require.NoError(t, err)
	assert.Equal(t, 4, detail.CheckIns)
	assert.Equal(t, 4, detail.Habit.StreakCount)
	assert.Equal(t, "2024-01-04", detail.Today.String())

	history, err := svc.History(ctx, "owner", "reading", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 4, history[0].Streak)
	assert.Equal(t, 3, history[1].Streak)

	_, err = svc.History(ctx, "owner", "ghost", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	svc, _, _ := newTestService(t, "2024-01-01")
	ctx := context.Background()

	for _, name := range []string{"Reading", "journaling"} {
		_, err := svc.Start(ctx, "owner", name)
		require.NoError(t, err)
	}
	_, err := svc.Start(ctx, "someone-else", "running")
	require.NoError(t, err)

	habits, err := svc.List(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, habits, 2)
	assert.Equal(t, "journaling", habits[0].Name)
	assert.Equal(t, "reading", habits[1].Name)
}

// The documented walk-through, run against a real SQLite file.
func TestEndToEnd_SQLite(t *testing.T) {
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "habits.db"))
	require.NoError(t, err)
	defer s.Close()

	clock := streak.NewFixedClock(streak.MustParseDate("2024-01-01"))
	svc := NewService(s, clock, testLogger())
	ctx := context.Background()

	start, err := svc.Start(ctx, "chat-1", "reading")
	require.NoError(t, err)
	assert.Equal(t, 1, start.Habit.StreakCount)
	assert.Equal(t, "2024-01-01", start.Habit.StartDate.String())
	assert.Equal(t, "2024-01-01", start.Habit.LastUpdated.String())

	clock.Set(streak.MustParseDate("2024-01-02"))
	res, err := svc.CheckIn(ctx, "chat-1", "reading")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Habit.StreakCount)

	res, err = svc.CheckIn(ctx, "chat-1", "reading")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Habit.StreakCount)

	clock.Set(streak.MustParseDate("2024-01-05"))
	res, err = svc.CheckIn(ctx, "chat-1", "reading")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Habit.StreakCount)

	require.NoError(t, svc.Reset(ctx, "chat-1", "reading"))
	_, err = svc.View(ctx, "chat-1", "reading")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLegacyNamesStayReachable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "habits.db")

	// The earlier bot only trimmed and lower-cased names.
	legacy, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = legacy.Exec(`
		CREATE TABLE habits (
			user_id INTEGER,
			habit TEXT,
			start_date TEXT,
			last_updated TEXT,
			streak_count INTEGER,
			PRIMARY KEY (user_id, habit)
		);
		INSERT INTO habits VALUES (7, 'drink  water', '2024-01-01', '2024-01-03', 3);
	`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	s, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	clock := streak.NewFixedClock(streak.MustParseDate("2024-01-04"))
	svc := NewService(s, clock, testLogger())
	ctx := context.Background()

	list, err := svc.List(ctx, "7")
	require.NoError(t, err)
	require.Len(t, list, 1)
	stored := list[0].Name

	detail, err := svc.View(ctx, "7", stored)
	require.NoError(t, err)
	assert.Equal(t, 3, detail.Habit.StreakCount)

	res, err := svc.CheckIn(ctx, "7", "Drink  Water")
	require.NoError(t, err)
	assert.Equal(t, 4, res.Habit.StreakCount)
	assert.Equal(t, stored, res.Habit.Name)

	history, err := svc.History(ctx, "7", stored, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, stored, history[0].Habit)

	require.NoError(t, svc.Reset(ctx, "7", stored))
	list, err = svc.List(ctx, "7")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLookupPrefersNormalizedName(t *testing.T) {
	svc, s, clock := newTestService(t, "2024-01-01")
	ctx := context.Background()

	_, err := s.CreateIfAbsent(ctx, "owner", "drink water", streak.MustParseDate("2024-01-01"))
	require.NoError(t, err)
	_, err = s.CreateIfAbsent(ctx, "owner", "drink  water", streak.MustParseDate("2024-01-01"))
	require.NoError(t, err)

	clock.Advance(1)
	res, err := svc.CheckIn(ctx, "owner", "drink  water")
	require.NoError(t, err)
	assert.Equal(t, "drink water", res.Habit.Name)

	_, err = svc.View(ctx, "owner", "ghost  habit")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"Reading":            "reading",
		"  drink   WATER  ":  "drink water",
		"ÉCRIRE":             "écrire",
		"\tmorning\nstretch": "morning stretch",
		"":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeName(in), "input %q", in)
	}
}
