// ABOUTME: Tests for Matrix reply rendering
// ABOUTME: Covers numbered menus and markdown to HTML conversion

package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"maunium.net/go/mautrix/event"

	"github.com/2389/habit-streaks/internal/bot"
)

func TestRenderMenu(t *testing.T) {
	got := renderMenu("🏆 Choose a habit to update:", []bot.MenuOption{
		{Label: "🔹 journaling", Data: "UPDATE_journaling"},
		{Label: "🔹 reading", Data: "UPDATE_reading"},
	})

	want := "🏆 Choose a habit to update:\n" +
		"1. 🔹 journaling\n" +
		"2. 🔹 reading\n" +
		"\n" +
		"_Reply with a number to choose._"
	assert.Equal(t, want, got)
}

func TestRenderHTML_Menu(t *testing.T) {
	html, err := renderHTML(renderMenu("Pick one:", []bot.MenuOption{
		{Label: "🔹 reading"},
		{Label: "🔹 running"},
	}))
	require.NoError(t, err)

	assert.Contains(t, html, "<p>Pick one:</p>")
	assert.Contains(t, html, "<ol>")
	assert.Contains(t, html, "<li>🔹 reading</li>")
	assert.Contains(t, html, "<li>🔹 running</li>")
	assert.Contains(t, html, "<em>Reply with a number to choose.</em>")
}

func TestRenderHTML_BoldAndLineBreaks(t *testing.T) {
	html, err := renderHTML("📊 **Habit Streak Details**\n🏁 Habit: reading")
	require.NoError(t, err)

	assert.Contains(t, html, "<strong>Habit Streak Details</strong>")
	assert.Contains(t, html, "<br>")
	assert.Contains(t, html, "🏁 Habit: reading")
}

func TestRenderHTML_DropsRawHTML(t *testing.T) {
	html, err := renderHTML("<script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestMessageContent(t *testing.T) {
	content := messageContent("🌟 Great! Habit **reading** is tracked.")

	assert.Equal(t, event.MsgText, content.MsgType)
	assert.Equal(t, "🌟 Great! Habit **reading** is tracked.", content.Body)
	assert.Equal(t, event.FormatHTML, content.Format)
	assert.Equal(t, "<p>🌟 Great! Habit <strong>reading</strong> is tracked.</p>", content.FormattedBody)
}
