// ABOUTME: Habit service coordinating the store and the streak engine
// ABOUTME: Implements start, check-in, view, reset, list and history operations

package habits

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/2389/habit-streaks/internal/store"
	"github.com/2389/habit-streaks/internal/streak"
)

// DefaultHistoryLimit is how many check-ins History returns when asked for 0.
const DefaultHistoryLimit = 7

// StartResult describes the outcome of Start.
type StartResult struct {
	Habit   *store.Habit
	Created bool // false when the habit was already being tracked
}

// CheckInResult describes the outcome of CheckIn.
type CheckInResult struct {
	Habit    *store.Habit // state after the check-in
	Previous int          // streak before the check-in
	Outcome  streak.Outcome
}

// Detail is the full view of one habit.
type Detail struct {
	Habit    *store.Habit
	CheckIns int
	Today    streak.Date
}

// Service implements the habit operations for every owner.
type Service struct {
	store  store.Store
	clock  streak.Clock
	logger *slog.Logger
}

// NewService creates a Service. A nil clock means the UTC system clock.
func NewService(s store.Store, clock streak.Clock, logger *slog.Logger) *Service {
	if clock == nil {
		clock = streak.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  s,
		clock:  clock,
		logger: logger.With("component", "habits"),
	}
}

// Today returns the date the service currently considers "today".
func (s *Service) Today() streak.Date {
	return s.clock.Today()
}

// Start begins tracking a habit named raw for owner. Tracking an existing
// habit again leaves it untouched and reports Created=false.
func (s *Service) Start(ctx context.Context, owner, raw string) (StartResult, error) {
	name, err := ValidateName(raw)
	if err != nil {
		return StartResult{}, err
	}

	today := s.clock.Today()
	created, err := s.store.CreateIfAbsent(ctx, owner, name, today)
	if err != nil {
		return StartResult{}, wrapStoreErr("starting habit", err)
	}

	if created {
		s.record(ctx, owner, name, today, 1)
		s.logger.Info("habit started", "owner", owner, "habit", name, "day", today.String())
	} else {
		s.logger.Debug("habit already tracked", "owner", owner, "habit", name)
	}

	h, err := s.store.Get(ctx, owner, name)
	if err != nil {
		return StartResult{}, wrapStoreErr("loading habit", err)
	}

	return StartResult{Habit: h, Created: created}, nil
}

// CheckIn records that owner did the habit today and returns the new streak.
//
// The read and the write are separate store calls; two check-ins racing on
// the same habit may both compute from the same stored streak.
func (s *Service) CheckIn(ctx context.Context, owner, name string) (CheckInResult, error) {
	today := s.clock.Today()

	h, err := s.lookup(ctx, owner, name)
	if err != nil {
		return CheckInResult{}, wrapStoreErr("loading habit", err)
	}
	name = h.Name

	if today.Before(h.StartDate) {
		return CheckInResult{}, ErrBeforeStart
	}

	next, outcome := streak.Evaluate(today, h.LastUpdated, h.StreakCount)
	if err := s.store.UpdateCheckIn(ctx, owner, name, today, next); err != nil {
		return CheckInResult{}, wrapStoreErr("updating habit", err)
	}

	previous := h.StreakCount
	h.LastUpdated = today
	h.StreakCount = next

	if outcome != streak.Repeated {
		s.record(ctx, owner, name, today, next)
	}

	s.logger.Info("habit checked in",
		"owner", owner,
		"habit", name,
		"day", today.String(),
		"outcome", outcome.String(),
		"streak", next,
	)

	return CheckInResult{Habit: h, Previous: previous, Outcome: outcome}, nil
}

// View returns the habit with its check-in count.
func (s *Service) View(ctx context.Context, owner, name string) (Detail, error) {
	h, err := s.lookup(ctx, owner, name)
	if err != nil {
		return Detail{}, wrapStoreErr("loading habit", err)
	}

	n, err := s.store.CountCheckIns(ctx, owner, h.Name)
	if err != nil {
		return Detail{}, wrapStoreErr("counting check-ins", err)
	}

	return Detail{Habit: h, CheckIns: n, Today: s.clock.Today()}, nil
}

// Reset stops tracking a habit and forgets its history.
// Returns ErrNotFound when there was nothing to remove.
func (s *Service) Reset(ctx context.Context, owner, name string) error {
	h, err := s.lookup(ctx, owner, name)
	if err != nil {
		return wrapStoreErr("removing habit", err)
	}
	name = h.Name

	removed, err := s.store.Remove(ctx, owner, name)
	if err != nil {
		return wrapStoreErr("removing habit", err)
	}
	if !removed {
		return ErrNotFound
	}

	s.logger.Info("habit reset", "owner", owner, "habit", name)
	return nil
}

// List returns all of owner's habits ordered by name.
func (s *Service) List(ctx context.Context, owner string) ([]*store.Habit, error) {
	habits, err := s.store.ListForOwner(ctx, owner)
	if err != nil {
		return nil, wrapStoreErr("listing habits", err)
	}
	return habits, nil
}

// History returns the most recent check-ins of a habit, newest first.
func (s *Service) History(ctx context.Context, owner, name string, limit int) ([]*store.CheckIn, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	h, err := s.lookup(ctx, owner, name)
	if err != nil {
		return nil, wrapStoreErr("loading habit", err)
	}

	checkIns, err := s.store.ListCheckIns(ctx, owner, h.Name, limit)
	if err != nil {
		return nil, wrapStoreErr("listing check-ins", err)
	}
	return checkIns, nil
}

// lookup loads the habit called name. The normalized form is tried first;
// rows migrated from the earlier bot only had case and surrounding space
// normalized, so the name as given is tried next.
func (s *Service) lookup(ctx context.Context, owner, name string) (*store.Habit, error) {
	normalized := NormalizeName(name)
	h, err := s.store.Get(ctx, owner, normalized)
	if !errors.Is(err, store.ErrNotFound) {
		return h, err
	}

	exact := strings.ToLower(strings.TrimSpace(name))
	if exact == normalized || exact == "" {
		return nil, err
	}
	return s.store.Get(ctx, owner, exact)
}

// record appends to the check-in history. The habit row is already
// written, so a failure here is logged rather than returned.
func (s *Service) record(ctx context.Context, owner, name string, day streak.Date, count int) {
	err := s.store.RecordCheckIn(ctx, &store.CheckIn{
		Owner:  owner,
		Habit:  name,
		Day:    day,
		Streak: count,
	})
	if err != nil {
		s.logger.Warn("failed to record check-in", "owner", owner, "habit", name, "error", err)
	}
}
