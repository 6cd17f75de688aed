// ABOUTME: init command writing a starter config file interactively
// ABOUTME: Output format follows the file extension (.yaml, .yml or .toml)

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/habit-streaks/internal/config"
)

// NewInitCommand creates the init command.
func NewInitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a config file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runInit(opts *RootOptions, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	green := color.New(color.FgGreen)

	color.New(color.FgCyan).Fprint(out, banner)
	fmt.Fprintln(out, "    Interactive Setup")
	fmt.Fprintln(out, "    -----------------")
	fmt.Fprintln(out)

	outputFile := prompt(reader, out, "Config file path", opts.configPath())
	format, err := config.FormatFor(outputFile)
	if err != nil {
		return err
	}

	if _, err := os.Stat(outputFile); err == nil {
		color.New(color.FgYellow).Fprintf(out, "    Config already exists at %s\n", outputFile)
		answer := prompt(reader, out, "Overwrite?", "no")
		if a := strings.ToLower(answer); a != "y" && a != "yes" {
			fmt.Fprintln(out, "    Aborted.")
			return nil
		}
	}

	cfg := config.Default(filepath.Join(getDataPath(), "habits.db"))

	fmt.Fprintln(out, "\n--- Matrix (leave homeserver empty for terminal-only use) ---")
	cfg.Matrix.Homeserver = prompt(reader, out, "Homeserver URL", "")
	if cfg.Matrix.Homeserver != "" {
		cfg.Matrix.Username = prompt(reader, out, "Username", "habitbot")
		cfg.Matrix.Password = prompt(reader, out, "Password", "${HABIT_STREAKS_MATRIX_PASSWORD}")
		cfg.Matrix.RecoveryKey = prompt(reader, out, "Recovery key (optional, enables E2EE)", "")
		if rooms := prompt(reader, out, "Allowed room IDs, comma separated (empty = all)", ""); rooms != "" {
			for _, r := range strings.Split(rooms, ",") {
				if r = strings.TrimSpace(r); r != "" {
					cfg.Matrix.AllowedRooms = append(cfg.Matrix.AllowedRooms, r)
				}
			}
		}
	}

	fmt.Fprintln(out, "\n--- Bot ---")
	cfg.Bot.CommandPrefix = prompt(reader, out, "Command prefix", cfg.Bot.CommandPrefix)
	cfg.Bot.Timezone = prompt(reader, out, "Timezone for \"today\"", cfg.Bot.Timezone)
	cfg.Bot.MenuTTLRaw = prompt(reader, out, "Menu expiry", config.DefaultMenuTTL.String())

	fmt.Fprintln(out, "\n--- Storage and Server ---")
	cfg.Database.Path = prompt(reader, out, "SQLite database path", cfg.Database.Path)
	cfg.Server.HTTPAddr = prompt(reader, out, "Health endpoint address", cfg.Server.HTTPAddr)

	fmt.Fprintln(out, "\n--- Logging ---")
	cfg.Logging.Level = prompt(reader, out, "Log level (debug/info/warn/error)", cfg.Logging.Level)
	cfg.Logging.Format = prompt(reader, out, "Log format (text/json)", cfg.Logging.Format)

	data, err := config.Encode(cfg, format)
	if err != nil {
		return err
	}

	// Env references stay unexpanded on disk, so the answers are checked as typed.
	if err := cfg.Resolve(); err != nil {
		return fmt.Errorf("generated config is invalid: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(outputFile, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Fprintln(out)
	green.Fprintf(out, "    ✓ Config written to %s\n", outputFile)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "    Next steps:")
	if cfg.Matrix.Homeserver != "" {
		fmt.Fprintln(out, "    1. Run: habit-streaks serve")
		fmt.Fprintln(out, "    2. Invite the bot to a room and send !help")
	} else {
		fmt.Fprintln(out, "    1. Run: habit-streaks chat")
	}

	return nil
}

func prompt(reader *bufio.Reader, out io.Writer, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(out, "%s: ", question)
	}

	input, err := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if err != nil && input == "" {
		// On EOF or error, use the default.
		fmt.Fprintln(out)
		return defaultVal
	}

	if input == "" {
		return defaultVal
	}
	return input
}
