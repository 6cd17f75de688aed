// ABOUTME: Menu action codes decoded into a tagged Action variant
// ABOUTME: Codes look like UPDATE_<habit>, VIEW_<habit> and RESET_<habit>

package bot

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAction is returned by ParseAction for malformed or unknown codes
var ErrUnknownAction = errors.New("unknown action")

// Action code prefixes
const (
	codeUpdate = "UPDATE"
	codeView   = "VIEW"
	codeReset  = "RESET"
)

// Action is a decoded menu selection. The concrete types are
// UpdateCheckIn, ViewDetail and ResetHabit.
type Action interface {
	// Habit is the habit the action applies to
	Habit() string
	// Code is the wire form carried by a menu option
	Code() string

	isAction()
}

// UpdateCheckIn checks in on a habit
type UpdateCheckIn struct{ Name string }

// ViewDetail shows a habit's streak details
type ViewDetail struct{ Name string }

// ResetHabit stops tracking a habit
type ResetHabit struct{ Name string }

func (a UpdateCheckIn) Habit() string { return a.Name }
func (a UpdateCheckIn) Code() string  { return codeUpdate + "_" + a.Name }
func (UpdateCheckIn) isAction()       {}

func (a ViewDetail) Habit() string { return a.Name }
func (a ViewDetail) Code() string  { return codeView + "_" + a.Name }
func (ViewDetail) isAction()       {}

func (a ResetHabit) Habit() string { return a.Name }
func (a ResetHabit) Code() string  { return codeReset + "_" + a.Name }
func (ResetHabit) isAction()       {}

// ParseAction decodes a menu action code. Everything after the first
// underscore is the habit name, so names may themselves contain underscores.
func ParseAction(code string) (Action, error) {
	kind, name, ok := strings.Cut(code, "_")
	if !ok || name == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, code)
	}

	switch kind {
	case codeUpdate:
		return UpdateCheckIn{Name: name}, nil
	case codeView:
		return ViewDetail{Name: name}, nil
	case codeReset:
		return ResetHabit{Name: name}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, code)
	}
}
