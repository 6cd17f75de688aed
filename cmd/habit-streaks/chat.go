// ABOUTME: chat command running the bot in the terminal
// ABOUTME: Uses the console transport against the configured database

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/habit-streaks/internal/bot"
	"github.com/2389/habit-streaks/internal/console"
	"github.com/2389/habit-streaks/internal/habits"
	"github.com/2389/habit-streaks/internal/streak"
)

// NewChatCommand creates the chat command.
func NewChatCommand(opts *RootOptions) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the bot in this terminal",
		Long: `Start an interactive session with the habit bot.

Habits are stored under the given owner, so a session can pick up habits
tracked in a Matrix room by passing that room's ID. Type "quit" or press
Ctrl-D to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), opts, owner, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "local", "owner to track habits under")
	return cmd
}

func runChat(ctx context.Context, opts *RootOptions, owner string, in io.Reader, out io.Writer) error {
	cfg, _, err := opts.loadConfig(true)
	if err != nil {
		return err
	}

	// Logs would interleave with the conversation, so only warnings show.
	logCfg := cfg.Logging
	if logCfg.Level == "debug" || logCfg.Level == "info" {
		logCfg.Level = "warn"
	}
	logger := setupLogger(logCfg, out)
	slog.SetDefault(logger)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := habits.NewService(st, streak.SystemClock{Location: cfg.Bot.Location}, logger)
	term := console.New(in, out, owner)
	handler := bot.NewHandler(svc, term, bot.Options{
		CommandPrefix: cfg.Bot.CommandPrefix,
		MenuTTL:       cfg.Bot.MenuTTL,
		Logger:        logger,
	})

	color.New(color.FgCyan).Fprintf(out, "habit-streaks %s: type %shelp for commands, quit to leave\n", version, handler.CommandPrefix())
	fmt.Fprintf(out, "database: %s, owner: %s\n", cfg.Database.Path, owner)

	return term.Run(ctx, handler)
}
