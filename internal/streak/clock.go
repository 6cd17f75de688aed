// ABOUTME: Sources of "today" for the streak engine
// ABOUTME: SystemClock reads the wall clock in a zone, FixedClock is for tests

package streak

import (
	"sync"
	"time"
)

// Clock yields the current calendar date.
type Clock interface {
	Today() Date
}

// SystemClock reads the wall clock and converts it to a date in Location.
// A nil Location means UTC, which matches how check-in days were recorded
// historically.
type SystemClock struct {
	Location *time.Location
}

// Today returns the current date in the clock's location.
func (c SystemClock) Today() Date {
	return DateOf(time.Now(), c.Location)
}

// FixedClock always returns the date it was last set to.
type FixedClock struct {
	mu   sync.Mutex
	date Date
}

// NewFixedClock returns a clock pinned to d.
func NewFixedClock(d Date) *FixedClock {
	return &FixedClock{date: d}
}

// Today returns the pinned date.
func (c *FixedClock) Today() Date {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.date
}

// Set moves the clock to d.
func (c *FixedClock) Set(d Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.date = d
}

// Advance moves the clock forward by n days.
func (c *FixedClock) Advance(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.date = c.date.AddDays(n)
}
