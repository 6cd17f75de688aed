// ABOUTME: Tests for action code decoding
// ABOUTME: Covers each variant, names containing underscores and malformed codes

package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		code string
		want Action
	}{
		{"UPDATE_reading", UpdateCheckIn{Name: "reading"}},
		{"VIEW_reading", ViewDetail{Name: "reading"}},
		{"RESET_reading", ResetHabit{Name: "reading"}},
		{"UPDATE_drink_water", UpdateCheckIn{Name: "drink_water"}},
		{"VIEW_morning run", ViewDetail{Name: "morning run"}},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := ParseAction(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.code, got.Code())
		})
	}
}

func TestParseAction_Invalid(t *testing.T) {
	for _, code := range []string{"", "UPDATE", "UPDATE_", "DELETE_reading", "update_reading", "_reading"} {
		_, err := ParseAction(code)
		assert.ErrorIs(t, err, ErrUnknownAction, "code %q", code)
	}
}

func TestAction_Habit(t *testing.T) {
	var a Action = ResetHabit{Name: "yoga"}
	assert.Equal(t, "yoga", a.Habit())
	assert.Equal(t, "RESET_yoga", a.Code())
}
