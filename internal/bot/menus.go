// ABOUTME: Per-owner memory of the last menu sent
// ABOUTME: Maps numeric replies back to action codes on platforms without buttons

package bot

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

type pendingMenu struct {
	options []MenuOption
	sentAt  time.Time
}

// menuTracker remembers the most recent menu per owner until it is
// answered or expires.
type menuTracker struct {
	mu    sync.Mutex
	menus map[string]pendingMenu
	ttl   time.Duration
	now   func() time.Time
}

func newMenuTracker(ttl time.Duration) *menuTracker {
	return &menuTracker{
		menus: make(map[string]pendingMenu),
		ttl:   ttl,
		now:   time.Now,
	}
}

// remember replaces owner's pending menu.
func (t *menuTracker) remember(owner string, options []MenuOption) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Drop expired menus while we hold the lock.
	now := t.now()
	for k, m := range t.menus {
		if now.Sub(m.sentAt) > t.ttl {
			delete(t.menus, k)
		}
	}

	t.menus[owner] = pendingMenu{options: options, sentAt: now}
}

// resolve maps a 1-based numeric reply to the option's action code and
// consumes the menu. ok is false when the text is not a valid choice.
func (t *menuTracker) resolve(owner, text string) (string, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return "", false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.menus[owner]
	if !ok {
		return "", false
	}
	if t.now().Sub(m.sentAt) > t.ttl {
		delete(t.menus, owner)
		return "", false
	}
	if n < 1 || n > len(m.options) {
		return "", false
	}

	delete(t.menus, owner)
	return m.options[n-1].Data, true
}

// forget drops owner's pending menu.
func (t *menuTracker) forget(owner string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.menus, owner)
}
