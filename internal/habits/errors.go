// ABOUTME: Error taxonomy for habit operations
// ABOUTME: Separates not-found and invalid input from underlying storage failures

package habits

import (
	"errors"
	"fmt"

	"github.com/2389/habit-streaks/internal/store"
)

// ErrNotFound is store.ErrNotFound; errors.Is works against either name.
var ErrNotFound = store.ErrNotFound

// ErrEmptyName is returned when a habit name is blank after normalization
var ErrEmptyName = errors.New("habit name is empty")

// ErrNameTooLong is returned when a habit name exceeds MaxNameLength runes
var ErrNameTooLong = fmt.Errorf("habit name is longer than %d characters", MaxNameLength)

// ErrBeforeStart is returned when a check-in day precedes the habit's start date
var ErrBeforeStart = errors.New("check-in day is before the habit started")

// StorageError wraps a failure of the underlying store
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageFailure reports whether err came from the store rather than from
// the request itself.
func IsStorageFailure(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// wrapStoreErr passes ErrNotFound through and wraps everything else.
func wrapStoreErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
