// Package config loads habit-streaks configuration.
//
// # Configuration File
//
// A single file, YAML or TOML, chosen by extension (.yaml, .yml, .toml).
// Default locations (in order):
//
//  1. Path from HABIT_STREAKS_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/habit-streaks/config.yaml
//  3. ~/.config/habit-streaks/config.yaml
//
// # Environment Variable Expansion
//
// Values can reference environment variables, expanded before decoding:
//
//	matrix:
//	  password: "${HABIT_STREAKS_MATRIX_PASSWORD}"
//
// Unset variables expand to the empty string.
//
// # Sections
//
//	matrix:
//	  homeserver: "https://matrix.org"
//	  username: "habitbot"
//	  password: "${MATRIX_PASSWORD}"
//	  recovery_key: ""          # enables E2EE cross-signing when set
//	  allowed_rooms: []         # empty means every joined room
//	bot:
//	  command_prefix: "!"
//	  timezone: "UTC"           # IANA name; decides what "today" is
//	  menu_ttl: "10m"
//	database:
//	  path: "~/.local/share/habit-streaks/habits.db"
//	server:
//	  http_addr: "127.0.0.1:8080"
//	logging:
//	  level: "info"             # debug, info, warn, error
//	  format: "text"            # text or json
//
// The matrix section is optional; without a homeserver only the console
// transport is available.
package config
