// ABOUTME: Matrix transport for the habit bot
// ABOUTME: Syncs with the homeserver, forwards room messages and sends replies

package matrix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/2389/habit-streaks/internal/bot"
	"github.com/2389/habit-streaks/internal/dedupe"
)

// networkTimeout bounds each outgoing Matrix API call.
const networkTimeout = 30 * time.Second

// Redelivered events are remembered this long.
const (
	seenTTL  = 10 * time.Minute
	seenSize = 4096
)

// Inbound receives text messages. Owner is the room ID.
type Inbound interface {
	HandleText(ctx context.Context, owner, text string) error
}

// Config holds what the transport needs to log in and filter rooms.
type Config struct {
	Homeserver   string
	Username     string
	Password     string
	RecoveryKey  string
	AllowedRooms []string
	// DataDir holds the crypto store when encryption is enabled.
	DataDir string
}

// Transport is a bot.Messenger backed by a Matrix account.
type Transport struct {
	cfg       Config
	client    *mautrix.Client
	crypto    *encryption
	seen      *dedupe.Cache
	logger    *slog.Logger
	startedAt time.Time
	connected atomic.Bool
}

var _ bot.Messenger = (*Transport)(nil)

// New creates a transport. No network traffic happens until Login.
func New(cfg Config, logger *slog.Logger) (*Transport, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := mautrix.NewClient(cfg.Homeserver, "", "")
	if err != nil {
		return nil, fmt.Errorf("creating matrix client: %w", err)
	}

	return &Transport{
		cfg:       cfg,
		client:    client,
		seen:      dedupe.New(seenTTL, seenSize),
		logger:    logger.With("component", "matrix"),
		startedAt: time.Now(),
	}, nil
}

// Login authenticates with the configured password and, when a recovery
// key is set, enables end-to-end encryption.
func (t *Transport) Login(ctx context.Context) error {
	resp, err := t.client.Login(ctx, &mautrix.ReqLogin{
		Type: mautrix.AuthTypePassword,
		Identifier: mautrix.UserIdentifier{
			Type: mautrix.IdentifierTypeUser,
			User: t.cfg.Username,
		},
		Password:                 t.cfg.Password,
		InitialDeviceDisplayName: "habit-streaks",
		StoreCredentials:         true,
	})
	if err != nil {
		return fmt.Errorf("logging in as %s: %w", t.cfg.Username, err)
	}
	t.logger.Info("logged in", "user_id", resp.UserID.String(), "device_id", resp.DeviceID.String())

	if t.cfg.RecoveryKey == "" {
		t.logger.Info("encryption disabled (no recovery key)")
		return nil
	}

	enc, err := enableEncryption(ctx, t.client, t.cfg.RecoveryKey, t.cfg.DataDir, t.logger)
	if err != nil {
		return fmt.Errorf("setting up encryption: %w", err)
	}
	t.crypto = enc
	return nil
}

// UserID returns the logged-in account, empty before Login.
func (t *Transport) UserID() string {
	return t.client.UserID.String()
}

// Connected reports whether a sync has succeeded since Run started.
func (t *Transport) Connected() bool {
	return t.connected.Load()
}

// Run syncs until ctx is cancelled, passing messages to in. Events are
// handled one at a time in the order the homeserver delivers them.
func (t *Transport) Run(ctx context.Context, in Inbound) error {
	syncer, ok := t.client.Syncer.(*mautrix.DefaultSyncer)
	if !ok {
		return fmt.Errorf("unexpected syncer type: %T", t.client.Syncer)
	}

	syncer.OnSync(func(ctx context.Context, resp *mautrix.RespSync, since string) bool {
		if !t.connected.Swap(true) {
			t.logger.Info("matrix sync established")
		}
		return true
	})
	syncer.OnEventType(event.StateMember, t.handleMembership)
	syncer.OnEventType(event.EventMessage, func(ctx context.Context, evt *event.Event) {
		t.handleMessage(ctx, evt, in)
	})

	t.logger.Info("connecting to matrix homeserver", "homeserver", t.cfg.Homeserver)
	defer t.connected.Store(false)

	err := t.client.SyncWithContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("matrix sync failed: %w", err)
	}
	t.logger.Info("matrix transport stopped")
	return nil
}

// Close releases the crypto store, if any.
func (t *Transport) Close() error {
	return t.crypto.Close()
}

// SendText sends a markdown reply to a room.
func (t *Transport) SendText(ctx context.Context, chatID, text string) error {
	ctx, cancel := context.WithTimeout(ctx, networkTimeout)
	defer cancel()

	if _, err := t.client.SendMessageEvent(ctx, id.RoomID(chatID), event.EventMessage, messageContent(text)); err != nil {
		return fmt.Errorf("sending to %s: %w", chatID, err)
	}
	return nil
}

// SendMenu sends options as a numbered list.
func (t *Transport) SendMenu(ctx context.Context, chatID, text string, options []bot.MenuOption) error {
	return t.SendText(ctx, chatID, renderMenu(text, options))
}

// messageText returns the text of evt when it is a fresh text message from
// someone else in an allowed room.
func (t *Transport) messageText(evt *event.Event) (string, bool) {
	if evt.Sender == t.client.UserID {
		return "", false
	}
	if time.UnixMilli(evt.Timestamp).Before(t.startedAt) {
		return "", false
	}

	content, ok := evt.Content.Parsed.(*event.MessageEventContent)
	if !ok || content.MsgType != event.MsgText {
		return "", false
	}
	// Edits repeat the original message with a "* " prefix.
	if content.RelatesTo != nil && content.RelatesTo.Type == event.RelReplace {
		return "", false
	}

	if !t.roomAllowed(evt.RoomID) {
		t.logger.Debug("ignoring message from non-allowed room", "room", evt.RoomID.String())
		return "", false
	}

	if t.seen.Seen(evt.ID.String()) {
		t.logger.Debug("ignoring redelivered event", "event_id", evt.ID.String())
		return "", false
	}

	return stripReplyFallback(content), true
}

// stripReplyFallback drops the quoted message some clients prepend to
// replies, leaving what the user typed.
func stripReplyFallback(content *event.MessageEventContent) string {
	if content.RelatesTo.GetReplyTo() == "" {
		return content.Body
	}
	content.RemoveReplyFallback()
	return event.TrimReplyFallbackText(content.Body)
}

func (t *Transport) handleMessage(ctx context.Context, evt *event.Event, in Inbound) {
	text, ok := t.messageText(evt)
	if !ok {
		return
	}

	room := evt.RoomID.String()
	t.logger.Debug("received message", "room", room, "sender", evt.Sender.String())

	if err := in.HandleText(ctx, room, text); err != nil {
		t.logger.Error("handling message failed", "room", room, "error", err)
	}
}

// handleMembership joins rooms the bot is invited to.
func (t *Transport) handleMembership(ctx context.Context, evt *event.Event) {
	if evt.GetStateKey() != t.client.UserID.String() {
		return
	}
	member := evt.Content.AsMember()
	if member.Membership != event.MembershipInvite {
		return
	}
	if !t.roomAllowed(evt.RoomID) {
		t.logger.Info("declining invite to non-allowed room", "room", evt.RoomID.String(), "inviter", evt.Sender.String())
		return
	}

	joinCtx, cancel := context.WithTimeout(ctx, networkTimeout)
	defer cancel()
	if _, err := t.client.JoinRoomByID(joinCtx, evt.RoomID); err != nil {
		t.logger.Error("joining room failed", "room", evt.RoomID.String(), "error", err)
		return
	}
	t.logger.Info("joined room", "room", evt.RoomID.String(), "inviter", evt.Sender.String())
}

// roomAllowed checks the allow list. An empty list allows every room.
func (t *Transport) roomAllowed(roomID id.RoomID) bool {
	if len(t.cfg.AllowedRooms) == 0 {
		return true
	}
	return slices.Contains(t.cfg.AllowedRooms, roomID.String())
}
