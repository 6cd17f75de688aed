// ABOUTME: Reply text for every conversational outcome
// ABOUTME: Markdown-flavored strings rendered by the transport

package bot

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/2389/habit-streaks/internal/habits"
	"github.com/2389/habit-streaks/internal/store"
	"github.com/2389/habit-streaks/internal/streak"
)

const (
	replyStartPrompt = "🌱 Please enter the name of the habit you want to track:"
	replyEmptyName   = "🌱 A habit needs a name. Please enter the name of the habit you want to track:"
	replyNoHabits    = "📭 No habits being tracked."
	replyListFailed  = "⚠️ Could not load your habits."
	replyStartFailed = "⚠️ Error starting habit."
	replyCheckFailed = "❌ Error updating habit."
	replyViewFailed  = "❌ Error loading habit."
	replyStaleMenu   = "🤔 That option is no longer available."
)

// menuPrompts holds the menu heading and the empty-list reply per action.
var menuPrompts = map[string]struct{ heading, empty string }{
	codeUpdate: {"🏆 Choose a habit to update:", "📋 You have no habits to update."},
	codeView:   {"📊 Choose a habit to view:", "📋 You have no habits to view."},
	codeReset:  {"🔄 Choose a habit to reset:", "📋 You have no habits to reset."},
}

// days renders a count of days with the right plural.
func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func replyStarted(name string) string {
	return fmt.Sprintf("🌟 Great! Habit %q is now being tracked.", name)
}

func replyAlreadyTracking(h *store.Habit) string {
	return fmt.Sprintf("👀 Habit %q is already being tracked. Current streak: %s.", h.Name, days(h.StreakCount))
}

func replyNameTooLong() string {
	return fmt.Sprintf("✂️ Habit names can be at most %d characters.", habits.MaxNameLength)
}

func replyNotFound(name string) string {
	return fmt.Sprintf("❌ Habit %q not found.", name)
}

func replyBeforeStart(name string) string {
	return fmt.Sprintf("⏳ Habit %q has not started yet, so today's check-in was not counted.", name)
}

func replyResetDone(name, prefix string) string {
	return fmt.Sprintf("🔄 Habit %q has been reset. Start again with %sstart!", name, prefix)
}

func replyResetFailed(name string) string {
	return fmt.Sprintf("❌ Error resetting habit %q.", name)
}

// replyCheckedIn describes a check-in result.
func replyCheckedIn(res habits.CheckInResult) string {
	h := res.Habit
	switch res.Outcome {
	case streak.Repeated:
		return fmt.Sprintf("✅ Habit %q was already checked in today. Current streak: %s.", h.Name, days(h.StreakCount))
	case streak.Restarted:
		return fmt.Sprintf("🎉 Habit %q updated. The streak restarted after a break. Current streak: %s!", h.Name, days(h.StreakCount))
	default:
		return fmt.Sprintf("🎉 Habit %q updated. Current streak: %s!", h.Name, days(h.StreakCount))
	}
}

// replyDetail is the streak details card for one habit.
func replyDetail(d habits.Detail) string {
	h := d.Habit

	started := "today"
	if d.Today != h.StartDate {
		started = humanize.RelTime(h.StartDate.Time(), d.Today.Time(), "ago", "from now")
	}

	var b strings.Builder
	b.WriteString("📊 **Habit Streak Details**\n")
	fmt.Fprintf(&b, "🏁 Habit: %s\n", h.Name)
	fmt.Fprintf(&b, "🚦 Start Date: %s (%s)\n", h.StartDate, started)
	fmt.Fprintf(&b, "🕒 Last Updated: %s\n", h.LastUpdated)
	fmt.Fprintf(&b, "🔥 Current Streak: %s\n", days(h.StreakCount))
	fmt.Fprintf(&b, "📅 Check-ins: %d", d.CheckIns)
	return b.String()
}

// replyList enumerates an owner's habits with their streaks.
func replyList(list []*store.Habit) string {
	if len(list) == 0 {
		return replyNoHabits
	}

	var b strings.Builder
	b.WriteString("📋 **Tracked Habits:**")
	for _, h := range list {
		fmt.Fprintf(&b, "\n🌱 %s: %s", h.Name, days(h.StreakCount))
	}
	return b.String()
}

// replyHistory lists recent check-ins, newest first.
func replyHistory(name string, checkIns []*store.CheckIn) string {
	if len(checkIns) == 0 {
		return fmt.Sprintf("🗓 No check-ins recorded for %q yet.", name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🗓 **Recent check-ins for %s**", name)
	for _, c := range checkIns {
		fmt.Fprintf(&b, "\n• %s: streak %s", c.Day, days(c.Streak))
	}
	return b.String()
}

// replyHelp lists the commands using the configured prefix.
func replyHelp(prefix string) string {
	lines := []string{
		"🤖 **Habit Tracker**",
		prefix + "start: track a new habit (or just send its name)",
		prefix + "update: check in on a habit today",
		prefix + "streak: view a habit's streak details",
		prefix + "reset: stop tracking a habit",
		prefix + "habits: list all tracked habits",
		prefix + "history <habit>: show recent check-ins",
		prefix + "help: show this message",
	}
	return strings.Join(lines, "\n")
}
