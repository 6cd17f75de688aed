// ABOUTME: Terminal transport for the habit bot
// ABOUTME: Reads lines from stdin and prints replies with color

// Package console runs the habit bot in a terminal for a single owner.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/2389/habit-streaks/internal/bot"
)

// Inbound receives each line typed by the user.
type Inbound interface {
	HandleText(ctx context.Context, owner, text string) error
}

// Transport is a bot.Messenger that talks to a terminal.
type Transport struct {
	in    io.Reader
	out   io.Writer
	owner string

	// readerDone is closed once the line reader of the last Run exits.
	readerDone chan struct{}

	mu     sync.Mutex
	reply  *color.Color
	number *color.Color
	prompt *color.Color
}

var _ bot.Messenger = (*Transport)(nil)

// New creates a console transport. Every line is handled as owner.
func New(in io.Reader, out io.Writer, owner string) *Transport {
	return &Transport{
		in:     in,
		out:    out,
		owner:  owner,
		reply:  color.New(color.FgGreen),
		number: color.New(color.FgYellow, color.Bold),
		prompt: color.New(color.FgCyan),
	}
}

// SendText prints a reply. Markdown emphasis markers are dropped.
func (t *Transport) SendText(ctx context.Context, chatID, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := t.reply.Fprintln(t.out, plain(text))
	return err
}

// SendMenu prints options as a numbered list.
func (t *Transport) SendMenu(ctx context.Context, chatID, text string, options []bot.MenuOption) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.reply.Fprintln(t.out, plain(text)); err != nil {
		return err
	}
	for i, opt := range options {
		t.number.Fprintf(t.out, "  %d.", i+1)
		fmt.Fprintf(t.out, " %s\n", opt.Label)
	}
	_, err := fmt.Fprintln(t.out, "Reply with a number to choose.")
	return err
}

// Run reads lines until EOF, "quit" or ctx is cancelled. Handler errors
// are printed and do not stop the loop.
func (t *Transport) Run(ctx context.Context, in Inbound) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	t.readerDone = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		defer close(lines)
		scanner := bufio.NewScanner(t.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}(t.readerDone)

	for {
		t.showPrompt()

		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}

			switch strings.TrimSpace(strings.ToLower(line)) {
			case "quit", "exit":
				return nil
			}

			if err := in.HandleText(ctx, t.owner, line); err != nil {
				t.mu.Lock()
				color.New(color.FgRed).Fprintf(t.out, "error: %v\n", err)
				t.mu.Unlock()
			}
		}
	}
}

func (t *Transport) showPrompt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prompt.Fprint(t.out, "> ")
}

// plain strips markdown emphasis for terminal output.
func plain(text string) string {
	return strings.ReplaceAll(text, "**", "")
}
