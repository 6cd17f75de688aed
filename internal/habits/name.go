// ABOUTME: Habit name normalization
// ABOUTME: Trims, collapses whitespace and lower-cases names with Unicode rules

package habits

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxNameLength bounds habit names so they fit in menu labels.
const MaxNameLength = 64

// NormalizeName returns the canonical form of a habit name: surrounding
// whitespace removed, inner runs of whitespace collapsed to one space, and
// lower-cased.
func NormalizeName(raw string) string {
	collapsed := strings.Join(strings.Fields(raw), " ")
	// Casers keep state, so each call gets its own.
	return cases.Lower(language.Und).String(collapsed)
}

// ValidateName normalizes raw and checks it is usable as a habit name.
func ValidateName(raw string) (string, error) {
	name := NormalizeName(raw)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}
