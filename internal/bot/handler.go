// ABOUTME: Conversation handler translating chat input into habit operations
// ABOUTME: Dispatches commands, free text and menu selections and sends replies

package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/2389/habit-streaks/internal/habits"
)

// DefaultMenuTTL is how long a menu stays answerable by number.
const DefaultMenuTTL = 10 * time.Minute

// DefaultCommandPrefix marks a message as a command.
const DefaultCommandPrefix = "!"

// Options configures a Handler.
type Options struct {
	CommandPrefix string
	MenuTTL       time.Duration
	Logger        *slog.Logger
}

// Handler turns inbound chat traffic into habit operations.
type Handler struct {
	habits *habits.Service
	out    Messenger
	prefix string
	menus  *menuTracker
	logger *slog.Logger
}

// NewHandler creates a Handler replying through out.
func NewHandler(svc *habits.Service, out Messenger, opts Options) *Handler {
	if opts.CommandPrefix == "" {
		opts.CommandPrefix = DefaultCommandPrefix
	}
	if opts.MenuTTL <= 0 {
		opts.MenuTTL = DefaultMenuTTL
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Handler{
		habits: svc,
		out:    out,
		prefix: opts.CommandPrefix,
		menus:  newMenuTracker(opts.MenuTTL),
		logger: opts.Logger.With("component", "bot"),
	}
}

// CommandPrefix returns the prefix that marks a command.
func (h *Handler) CommandPrefix() string {
	return h.prefix
}

// HandleText is the entry point for transports that deliver everything as
// text. Commands start with the prefix; a bare number answering a pending
// menu is a selection; anything else is free text.
func (h *Handler) HandleText(ctx context.Context, owner, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if rest, ok := strings.CutPrefix(text, h.prefix); ok {
		cmd, args, _ := strings.Cut(strings.TrimSpace(rest), " ")
		return h.OnCommand(ctx, owner, cmd, strings.TrimSpace(args))
	}

	if data, ok := h.menus.resolve(owner, text); ok {
		return h.OnButtonSelect(ctx, owner, data)
	}

	return h.OnFreeText(ctx, owner, text)
}

// OnCommand handles a command without its prefix. args may name a habit,
// which skips the selection menu; the habit service normalizes it.
func (h *Handler) OnCommand(ctx context.Context, owner, cmd, args string) error {
	cmd = strings.ToLower(cmd)
	h.logger.Debug("command", "owner", owner, "command", cmd, "args", args)

	switch cmd {
	case "start":
		if args != "" {
			return h.start(ctx, owner, args)
		}
		return h.out.SendText(ctx, owner, replyStartPrompt)
	case "update", "checkin":
		if args != "" {
			return h.dispatch(ctx, owner, UpdateCheckIn{Name: args})
		}
		return h.sendHabitMenu(ctx, owner, codeUpdate)
	case "streak", "view":
		if args != "" {
			return h.dispatch(ctx, owner, ViewDetail{Name: args})
		}
		return h.sendHabitMenu(ctx, owner, codeView)
	case "reset":
		if args != "" {
			return h.dispatch(ctx, owner, ResetHabit{Name: args})
		}
		return h.sendHabitMenu(ctx, owner, codeReset)
	case "habits", "list":
		return h.list(ctx, owner)
	case "history":
		if args == "" {
			return h.out.SendText(ctx, owner, fmt.Sprintf("🗓 Usage: %shistory <habit>", h.prefix))
		}
		return h.history(ctx, owner, args)
	default:
		return h.out.SendText(ctx, owner, replyHelp(h.prefix))
	}
}

// OnFreeText treats text as the name of a habit to start tracking.
func (h *Handler) OnFreeText(ctx context.Context, owner, text string) error {
	return h.start(ctx, owner, text)
}

// OnButtonSelect handles a menu selection carrying an action code.
func (h *Handler) OnButtonSelect(ctx context.Context, owner, data string) error {
	action, err := ParseAction(data)
	if err != nil {
		h.logger.Warn("unknown menu selection", "owner", owner, "data", data)
		return h.out.SendText(ctx, owner, replyStaleMenu)
	}
	return h.dispatch(ctx, owner, action)
}

// dispatch runs a decoded action.
func (h *Handler) dispatch(ctx context.Context, owner string, action Action) error {
	switch a := action.(type) {
	case UpdateCheckIn:
		return h.checkIn(ctx, owner, a.Name)
	case ViewDetail:
		return h.view(ctx, owner, a.Name)
	case ResetHabit:
		return h.reset(ctx, owner, a.Name)
	default:
		return fmt.Errorf("unhandled action %T", action)
	}
}

func (h *Handler) start(ctx context.Context, owner, raw string) error {
	res, err := h.habits.Start(ctx, owner, raw)
	switch {
	case errors.Is(err, habits.ErrEmptyName):
		return h.out.SendText(ctx, owner, replyEmptyName)
	case errors.Is(err, habits.ErrNameTooLong):
		return h.out.SendText(ctx, owner, replyNameTooLong())
	case err != nil:
		h.logger.Error("starting habit failed", "owner", owner, "error", err)
		return h.out.SendText(ctx, owner, replyStartFailed)
	}

	if !res.Created {
		return h.out.SendText(ctx, owner, replyAlreadyTracking(res.Habit))
	}
	return h.out.SendText(ctx, owner, replyStarted(res.Habit.Name))
}

func (h *Handler) checkIn(ctx context.Context, owner, name string) error {
	res, err := h.habits.CheckIn(ctx, owner, name)
	switch {
	case errors.Is(err, habits.ErrNotFound):
		return h.out.SendText(ctx, owner, replyNotFound(habits.NormalizeName(name)))
	case errors.Is(err, habits.ErrBeforeStart):
		return h.out.SendText(ctx, owner, replyBeforeStart(name))
	case err != nil:
		h.logger.Error("check-in failed", "owner", owner, "habit", name, "error", err)
		return h.out.SendText(ctx, owner, replyCheckFailed)
	}
	return h.out.SendText(ctx, owner, replyCheckedIn(res))
}

func (h *Handler) view(ctx context.Context, owner, name string) error {
	detail, err := h.habits.View(ctx, owner, name)
	switch {
	case errors.Is(err, habits.ErrNotFound):
		return h.out.SendText(ctx, owner, replyNotFound(habits.NormalizeName(name)))
	case err != nil:
		h.logger.Error("view failed", "owner", owner, "habit", name, "error", err)
		return h.out.SendText(ctx, owner, replyViewFailed)
	}
	return h.out.SendText(ctx, owner, replyDetail(detail))
}

func (h *Handler) reset(ctx context.Context, owner, name string) error {
	err := h.habits.Reset(ctx, owner, name)
	switch {
	case errors.Is(err, habits.ErrNotFound):
		return h.out.SendText(ctx, owner, replyNotFound(habits.NormalizeName(name)))
	case err != nil:
		h.logger.Error("reset failed", "owner", owner, "habit", name, "error", err)
		return h.out.SendText(ctx, owner, replyResetFailed(name))
	}
	return h.out.SendText(ctx, owner, replyResetDone(name, h.prefix))
}

func (h *Handler) list(ctx context.Context, owner string) error {
	list, err := h.habits.List(ctx, owner)
	if err != nil {
		h.logger.Error("listing habits failed", "owner", owner, "error", err)
		return h.out.SendText(ctx, owner, replyListFailed)
	}
	return h.out.SendText(ctx, owner, replyList(list))
}

func (h *Handler) history(ctx context.Context, owner, raw string) error {
	name := habits.NormalizeName(raw)
	checkIns, err := h.habits.History(ctx, owner, raw, 0)
	switch {
	case errors.Is(err, habits.ErrNotFound):
		return h.out.SendText(ctx, owner, replyNotFound(name))
	case err != nil:
		h.logger.Error("history failed", "owner", owner, "habit", name, "error", err)
		return h.out.SendText(ctx, owner, replyViewFailed)
	}
	return h.out.SendText(ctx, owner, replyHistory(name, checkIns))
}

// sendHabitMenu offers every habit of owner as an option for the action
// identified by code.
func (h *Handler) sendHabitMenu(ctx context.Context, owner, code string) error {
	prompts := menuPrompts[code]

	list, err := h.habits.List(ctx, owner)
	if err != nil {
		h.logger.Error("listing habits failed", "owner", owner, "error", err)
		return h.out.SendText(ctx, owner, replyListFailed)
	}
	if len(list) == 0 {
		h.menus.forget(owner)
		return h.out.SendText(ctx, owner, prompts.empty)
	}

	options := make([]MenuOption, 0, len(list))
	for _, habit := range list {
		var action Action
		switch code {
		case codeUpdate:
			action = UpdateCheckIn{Name: habit.Name}
		case codeView:
			action = ViewDetail{Name: habit.Name}
		default:
			action = ResetHabit{Name: habit.Name}
		}
		options = append(options, MenuOption{
			Label: "🔹 " + habit.Name,
			Data:  action.Code(),
		})
	}

	h.menus.remember(owner, options)
	return h.out.SendMenu(ctx, owner, prompts.heading, options)
}
