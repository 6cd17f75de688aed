// ABOUTME: Tests for the conversation handler
// ABOUTME: Drives commands, free text and menu selections against a recording messenger

package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/habit-streaks/internal/habits"
	"github.com/2389/habit-streaks/internal/store"
	"github.com/2389/habit-streaks/internal/streak"
)

type sentMessage struct {
	ChatID  string
	Text    string
	Options []MenuOption
}

// recordingMessenger captures replies instead of sending them.
type recordingMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (r *recordingMessenger) SendText(ctx context.Context, chatID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{ChatID: chatID, Text: text})
	return r.err
}

func (r *recordingMessenger) SendMenu(ctx context.Context, chatID, text string, options []MenuOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{ChatID: chatID, Text: text, Options: options})
	return r.err
}

func (r *recordingMessenger) last(t *testing.T) sentMessage {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.sent, "no message sent")
	return r.sent[len(r.sent)-1]
}

type handlerFixture struct {
	handler *Handler
	out     *recordingMessenger
	store   *store.MockStore
	clock   *streak.FixedClock
}

func newHandlerFixture(t *testing.T, today string) *handlerFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := store.NewMockStore()
	clock := streak.NewFixedClock(streak.MustParseDate(today))
	out := &recordingMessenger{}
	svc := habits.NewService(s, clock, logger)

	return &handlerFixture{
		handler: NewHandler(svc, out, Options{Logger: logger}),
		out:     out,
		store:   s,
		clock:   clock,
	}
}

func (f *handlerFixture) say(t *testing.T, owner, text string) sentMessage {
	t.Helper()
	require.NoError(t, f.handler.HandleText(context.Background(), owner, text))
	return f.out.last(t)
}

func TestHandleText_StartPromptsForName(t *testing.T) {
	f := newHandlerFixture(t, "2024-01-01")

	msg := f.say(t, "room", "!start")
	assert.Equal(t, "room", msg.ChatID)
	assert.Equal(t, replyStartPrompt, msg.Text)
}

func TestHandleText_FreeTextStartsHabit(t *testing.T) {
	f := newHandlerFixture(t, "2024-01-01")

	msg := f.say(t, "room", "  Reading ")
	assert.Equal(t, `🌟 Great! Habit "reading" is now being tracked.`, msg.Text)

	h, err := f.store.Get(context.Background(), "room", "reading")
	require.NoError(t, err)
	assert.Equal(t, 1, h.StreakCount)

	msg = f.say(t, "room", "reading")
	assert.Contains(t, msg.Text, "already being tracked")
}

func TestHandleText_StartWithArgs(t *testing.T) {
	f := newHandlerFixture(t, "2024-01-01")

	msg := f.say(t, "room", "!start drink water")
	assert.Equal(t, `🌟 Great! Habit "drink water" is now being tracked.`, msg.Text)
}

func TestHandleText_UpdateMenuAndSelection(t *testing.T) {
	f := newHandlerFixture(t, "2024-01-01")
	f.say(t, "room", "reading")
	f.say(t, "room", "journaling")

	msg := f.say(t, "room", "!update")
	assert.Equal(t, "🏆 Choose a habit to update:", msg.Text)
	require.Len(t, msg.Options, 2)
	assert.Equal(t, MenuOption{Label: "🔹 journaling", Data: "UPDATE_journaling"}, msg.Options[0])
	assert.Equal(t, MenuOption{Label: "🔹 reading", Data: "UPDATE_reading"}, msg.Options[1])

	f.clock.Advance(1)
	msg = f.say(t, "room", "2")
	assert.Equal(t, `🎉 Habit "reading" updated. Current streak: 2 days!`, msg.Text)
}

func TestHandleText_EmptyMenus(t *testing.T) {
	f := newHandlerFixture(t, "2024-01-01")

	assert.Equal(t, "📋 You have no habits to update.", f.say(t, "room", "!update").Text)
	assert.Equal(t, "📋 You have no habits to view.", f.say(t, "room", "!streak").Text)
	assert.Equal(t, "📋 You have no habits to reset.", f.say(t, "room", "!reset").Text)
	assert.Equal(t, replyNoHabits, f.say(t, "room", "!habits").Text)
}

func TestHandleText_NumberWithoutMenuIsFreeText(t *testing.T) {
	f := newHandlerFixture(t, "2024-01-01")

	msg := f.say(t, "room", "42")
	assert.Equal(t, `🌟 Great! Habit "42" is now being tracked.`, msg.Text)
}

func TestHandleText_UnknownCommandShowsHelp(t *testing.T) {
	f := newHandlerFixture(t, "2024-01-01")

	assert.Equal(t, replyHelp("!"), f.say(t, "room", "!bogus").Text)
	assert.Equal(t, replyHelp("!"), f.say(t, "room", "!help").Text)
}

func TestHandleText_BlankIsIgnored(t *testing.T) {
	f := newHandlerFixture(t, "2024-01-01")

	require.NoError(t, f.handler.HandleText(context.Background(), "room", "   "))
	assert.Empty(t, f.out.sent)
}

func TestOnButtonSelect_UnknownCode(t *testing.T) {
	f := newHandlerFixture(t, "2024-01-01")

	require.NoError(t, f.handler.OnButtonSelect(context.Background(), "room", "EXPLODE_reading"))
	assert.Equal(t, replyStaleMenu, f.out.last(t).Text)
}

func TestOnButtonSelect_NotFound(t *testing.T) {
	f := newHandlerFixture(t, "2024-01-01")
	ctx := context.Background()

	for _, code := range []string{"UPDATE_ghost", "VIEW_ghost", "RESET_ghost"} {
		require.NoError(t, f.handler.OnButtonSelect(ctx, "room", code))
		assert.Equal(t, `❌ Habit "ghost" not found.`, f.out.last(t).Text, code)
	}
}

func TestOnButtonSelect_NameWithInnerSpaces(t *testing.T) {
	f := newHandlerFixture(t, "2024-01-01")
	ctx := context.Background()

	// Rows carried over from the earlier bot keep their inner spacing.
	_, err := f.store.CreateIfAbsent(ctx, "room", "drink  water", streak.MustParseDate("2024-01-01"))
	require.NoError(t, err)

	msg := f.say(t, "room", "!update")
	require.Len(t, msg.Options, 1)
	assert.Equal(t, "UPDATE_drink  water", msg.Options[0].Data)

	f.clock.Advance(1)
	assert.Equal(t, `🎉 Habit "drink  water" updated. Current streak: 2 days!`, f.say(t, "room", "1").Text)
}

func TestHandleText_StorageFailureIsReported(t *testing.T) {
	f := newHandlerFixture(t, "2024-01-01")
	f.say(t, "room", "reading")

	f.store.FailWith(errors.New("disk full"))

	assert.Equal(t, replyStartFailed, f.say(t, "room", "running").Text)
	assert.Equal(t, replyCheckFailed, f.say(t, "room", "!update reading").Text)
	assert.Equal(t, replyViewFailed, f.say(t, "room", "!streak reading").Text)
	assert.Equal(t, `❌ Error resetting habit "reading".`, f.say(t, "room", "!reset reading").Text)
	assert.Equal(t, replyListFailed, f.say(t, "room", "!habits").Text)

	// The next request after recovery works normally.
	f.store.FailWith(nil)
	assert.Contains(t, f.say(t, "room", "!habits").Text, "reading")
}

func TestHandleText_OwnersAreIsolated(t *testing.T) {
	f := newHandlerFixture(t, "2024-01-01")
	f.say(t, "alice", "reading")

	assert.Equal(t, replyNoHabits, f.say(t, "bob", "!habits").Text)
	assert.Equal(t, `❌ Habit "reading" not found.`, f.say(t, "bob", "!update reading").Text)
}

func TestHandleText_History(t *testing.T) {
	f := newHandlerFixture(t, "2024-01-01")
	f.say(t, "room", "reading")
	f.clock.Advance(1)
	f.say(t, "room", "!update reading")

	msg := f.say(t, "room", "!history Reading")
	assert.Contains(t, msg.Text, "Recent check-ins for reading")
	assert.Contains(t, msg.Text, "2024-01-02: streak 2 days")

	assert.Contains(t, f.say(t, "room", "!history").Text, "Usage")
	assert.Equal(t, `❌ Habit "ghost" not found.`, f.say(t, "room", "!history ghost").Text)
}

func TestHandleText_BeforeStart(t *testing.T) {
	f := newHandlerFixture(t, "2024-01-05")
	f.say(t, "room", "reading")

	f.clock.Set(streak.MustParseDate("2024-01-03"))
	assert.Contains(t, f.say(t, "room", "!update reading").Text, "has not started yet")
}

func TestHandleText_SendErrorIsReturned(t *testing.T) {
	f := newHandlerFixture(t, "2024-01-01")
	f.out.err = errors.New("network down")

	err := f.handler.HandleText(context.Background(), "room", "!help")
	assert.EqualError(t, err, "network down")
}

func TestHandler_CustomPrefix(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := habits.NewService(store.NewMockStore(), streak.NewFixedClock(streak.MustParseDate("2024-01-01")), logger)
	out := &recordingMessenger{}
	h := NewHandler(svc, out, Options{CommandPrefix: "/", Logger: logger})

	require.NoError(t, h.HandleText(context.Background(), "room", "/start"))
	assert.Equal(t, replyStartPrompt, out.last(t).Text)

	// With "/" as prefix, "!start" is just a habit name.
	require.NoError(t, h.HandleText(context.Background(), "room", "!start"))
	assert.Equal(t, `🌟 Great! Habit "!start" is now being tracked.`, out.last(t).Text)
}

// The documented walk-through, end to end through the chat surface.
func TestEndToEnd_Conversation(t *testing.T) {
	f := newHandlerFixture(t, "2024-01-01")
	ctx := context.Background()

	f.say(t, "chat", "!start")
	f.say(t, "chat", "reading")

	h, err := f.store.Get(ctx, "chat", "reading")
	require.NoError(t, err)
	assert.Equal(t, 1, h.StreakCount)
	assert.Equal(t, "2024-01-01", h.StartDate.String())
	assert.Equal(t, "2024-01-01", h.LastUpdated.String())

	f.clock.Set(streak.MustParseDate("2024-01-02"))
	f.say(t, "chat", "!update")
	assert.Equal(t, `🎉 Habit "reading" updated. Current streak: 2 days!`, f.say(t, "chat", "1").Text)

	f.say(t, "chat", "!update")
	assert.Contains(t, f.say(t, "chat", "1").Text, "Current streak: 2 days.")

	f.clock.Set(streak.MustParseDate("2024-01-05"))
	require.NoError(t, f.handler.OnButtonSelect(ctx, "chat", "UPDATE_reading"))
	assert.Contains(t, f.out.last(t).Text, "Current streak: 1 day!")

	f.say(t, "chat", "!reset")
	assert.Equal(t, `🔄 Habit "reading" has been reset. Start again with !start!`, f.say(t, "chat", "1").Text)

	require.NoError(t, f.handler.OnButtonSelect(ctx, "chat", "VIEW_reading"))
	assert.Equal(t, `❌ Habit "reading" not found.`, f.out.last(t).Text)
}
