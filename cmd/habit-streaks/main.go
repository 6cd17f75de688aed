// ABOUTME: Entry point for the habit-streaks bot
// ABOUTME: Wires signal handling into the cobra command tree

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

// Version is set at build time.
var version = "dev"

const banner = `
 _           _     _ _                  _                    _
| |__   __ _| |__ (_) |_      ___ _ __| |_ _ __ ___  __ _| | _____
| '_ \ / _' | '_ \| | __|____/ __| __| __| '__/ _ \/ _' | |/ / __|
| | | | (_| | |_) | | ||_____\__ \ |_| |_| | |  __/ (_| |   <\__ \
|_| |_|\__,_|_.__/|_|\__|    |___/\__|\__|_|  \___|\__,_|_|\_\___/
`

// getConfigPath returns the path to the config file.
// Priority: HABIT_STREAKS_CONFIG env var > XDG_CONFIG_HOME/habit-streaks/config.yaml > ~/.config/habit-streaks/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("HABIT_STREAKS_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "habit-streaks", "config.yaml")
}

// getDataPath returns the data directory.
// Priority: XDG_DATA_HOME/habit-streaks > ~/.local/share/habit-streaks
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data"
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "habit-streaks")
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
