// ABOUTME: Root cobra command and shared flag handling
// ABOUTME: Resolves the config file and opens the habit store for subcommands

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/2389/habit-streaks/internal/config"
	"github.com/2389/habit-streaks/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
}

// configPath returns the --config flag or the default location.
func (o *RootOptions) configPath() string {
	if o.ConfigPath != "" {
		return o.ConfigPath
	}
	return getConfigPath()
}

// loadConfig loads the config file. When optional is set and no file
// exists, a console-only default rooted in the data directory is used.
func (o *RootOptions) loadConfig(optional bool) (*config.Config, string, error) {
	path := o.configPath()

	if _, err := os.Stat(path); optional && os.IsNotExist(err) {
		return config.Default(filepath.Join(getDataPath(), "habits.db")), "", nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, fmt.Errorf("loading config from %s: %w", path, err)
	}
	return cfg, path, nil
}

// openStore opens the habit database, creating its directory first.
func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	if cfg.Database.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return st, nil
}

// NewRootCommand creates the root command for habit-streaks.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "habit-streaks",
		Short:         "Chat bot that tracks daily habit streaks",
		Long:          "habit-streaks tracks daily habits per chat room on Matrix, or locally in a terminal.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (.yaml, .yml or .toml; default $HABIT_STREAKS_CONFIG or XDG config dir)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewChatCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewHealthCommand(opts))
	cmd.AddCommand(NewHabitsCommand(opts))

	return cmd
}
