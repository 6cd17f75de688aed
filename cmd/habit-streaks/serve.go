// ABOUTME: serve command running the bot on Matrix
// ABOUTME: Starts the Matrix transport and the health endpoints side by side

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/habit-streaks/internal/bot"
	"github.com/2389/habit-streaks/internal/habits"
	"github.com/2389/habit-streaks/internal/matrix"
	"github.com/2389/habit-streaks/internal/server"
	"github.com/2389/habit-streaks/internal/streak"
)

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot on Matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions, out io.Writer) error {
	cyan := color.New(color.FgCyan)
	cyan.Fprint(out, banner)
	color.New(color.FgHiBlack).Fprintf(out, "    version: %s\n\n", version)

	cfg, configPath, err := opts.loadConfig(false)
	if err != nil {
		return err
	}
	if !cfg.MatrixEnabled() {
		return fmt.Errorf("%s has no matrix.homeserver; use \"habit-streaks chat\" for a local session", configPath)
	}

	logger := setupLogger(cfg.Logging, out)
	slog.SetDefault(logger)

	dataPath := getDataPath()
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Fprint(out, "    ▶ ")
	fmt.Fprintf(out, "Config:     %s\n", configPath)
	green.Fprint(out, "    ▶ ")
	fmt.Fprintf(out, "Database:   %s\n", cfg.Database.Path)
	green.Fprint(out, "    ▶ ")
	fmt.Fprintf(out, "Homeserver: %s\n", cfg.Matrix.Homeserver)
	green.Fprint(out, "    ▶ ")
	fmt.Fprintf(out, "HTTP:       %s\n", cfg.Server.HTTPAddr)
	if cfg.Matrix.RecoveryKey != "" {
		green.Fprint(out, "    ▶ ")
		fmt.Fprintln(out, "Encryption: enabled")
	}
	fmt.Fprintln(out)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := habits.NewService(st, streak.SystemClock{Location: cfg.Bot.Location}, logger)

	transport, err := matrix.New(matrix.Config{
		Homeserver:   cfg.Matrix.Homeserver,
		Username:     cfg.Matrix.Username,
		Password:     cfg.Matrix.Password,
		RecoveryKey:  cfg.Matrix.RecoveryKey,
		AllowedRooms: cfg.Matrix.AllowedRooms,
		DataDir:      dataPath,
	}, logger)
	if err != nil {
		return err
	}
	defer transport.Close()

	if err := transport.Login(ctx); err != nil {
		return fmt.Errorf("matrix login: %w", err)
	}

	handler := bot.NewHandler(svc, transport, bot.Options{
		CommandPrefix: cfg.Bot.CommandPrefix,
		MenuTTL:       cfg.Bot.MenuTTL,
		Logger:        logger,
	})
	health := server.New(cfg.Server.HTTPAddr, st, transport, logger)

	logger.Info("starting habit-streaks",
		"user_id", transport.UserID(),
		"http_addr", cfg.Server.HTTPAddr,
		"timezone", cfg.Bot.Location.String(),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() { errCh <- health.Run(ctx) }()
	go func() { errCh <- transport.Run(ctx, handler) }()

	// Either side stopping brings the other down.
	first := <-errCh
	cancel()
	second := <-errCh

	logger.Info("habit-streaks stopped")
	return errors.Join(first, second)
}
