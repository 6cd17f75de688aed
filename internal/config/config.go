// ABOUTME: Configuration loading and parsing for habit-streaks
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Defaults applied to fields left empty.
const (
	DefaultCommandPrefix = "!"
	DefaultMenuTTL       = 10 * time.Minute
	DefaultHTTPAddr      = "127.0.0.1:8080"
	DefaultTimezone      = "UTC"
)

// Config represents the complete habit-streaks configuration
type Config struct {
	Matrix   MatrixConfig   `yaml:"matrix" toml:"matrix"`
	Bot      BotConfig      `yaml:"bot" toml:"bot"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// MatrixConfig holds Matrix login and room filtering
type MatrixConfig struct {
	Homeserver   string   `yaml:"homeserver" toml:"homeserver"`
	Username     string   `yaml:"username" toml:"username"`
	Password     string   `yaml:"password" toml:"password"`
	RecoveryKey  string   `yaml:"recovery_key" toml:"recovery_key"`
	AllowedRooms []string `yaml:"allowed_rooms" toml:"allowed_rooms"`
}

// BotConfig holds conversation settings
type BotConfig struct {
	CommandPrefix string `yaml:"command_prefix" toml:"command_prefix"`
	Timezone      string `yaml:"timezone" toml:"timezone"`

	MenuTTL  time.Duration  `yaml:"-" toml:"-"`
	Location *time.Location `yaml:"-" toml:"-"`

	// Raw string value for unmarshaling
	MenuTTLRaw string `yaml:"menu_ttl" toml:"menu_ttl"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// ServerConfig holds the health endpoint address
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" toml:"http_addr"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// MatrixEnabled reports whether a Matrix homeserver is configured.
func (c *Config) MatrixEnabled() bool {
	return c.Matrix.Homeserver != ""
}

// Default returns a configuration that runs the console transport against
// a database at dbPath.
func Default(dbPath string) *Config {
	cfg := &Config{Database: DatabaseConfig{Path: dbPath}}
	if err := finish(cfg); err != nil {
		// Defaults always parse; only a broken tz database gets here.
		cfg.Bot.Location = time.UTC
	}
	return cfg
}

// FormatFor picks the syntax of a config file from its extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported config extension %q (want .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data, format)
}

// Parse decodes, defaults and validates configuration data.
func Parse(data []byte, format Format) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case FormatTOML:
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config format %q", format)
	}

	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Resolve fills defaults, parses raw values and validates. Parse calls it;
// callers building a Config by hand call it before use.
func (c *Config) Resolve() error {
	if err := finish(c); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	return nil
}

// finish fills defaults and resolves raw values.
func finish(cfg *Config) error {
	applyDefaults(cfg)

	if err := parseDurations(cfg); err != nil {
		return fmt.Errorf("parsing durations: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Bot.Timezone)
	if err != nil {
		return fmt.Errorf("loading bot.timezone %q: %w", cfg.Bot.Timezone, err)
	}
	cfg.Bot.Location = loc

	cfg.Database.Path = expandHome(cfg.Database.Path)
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.CommandPrefix == "" {
		cfg.Bot.CommandPrefix = DefaultCommandPrefix
	}
	if cfg.Bot.Timezone == "" {
		cfg.Bot.Timezone = DefaultTimezone
	}
	if cfg.Server.HTTPAddr == "" {
		cfg.Server.HTTPAddr = DefaultHTTPAddr
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// expandHome resolves a leading ~/ against the user's home directory.
func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.MatrixEnabled() {
		u, err := url.Parse(c.Matrix.Homeserver)
		if err != nil {
			return fmt.Errorf("matrix.homeserver is not a valid URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("matrix.homeserver must use http or https scheme")
		}
		if c.Matrix.Username == "" {
			return fmt.Errorf("matrix.username is required")
		}
		if c.Matrix.Password == "" {
			return fmt.Errorf("matrix.password is required")
		}
	}

	if strings.TrimSpace(c.Bot.CommandPrefix) == "" {
		return fmt.Errorf("bot.command_prefix must not be blank")
	}
	if c.Bot.MenuTTL <= 0 {
		return fmt.Errorf("bot.menu_ttl must be positive")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	cfg.Bot.MenuTTL = DefaultMenuTTL
	if cfg.Bot.MenuTTLRaw != "" {
		d, err := time.ParseDuration(cfg.Bot.MenuTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing menu_ttl %q: %w", cfg.Bot.MenuTTLRaw, err)
		}
		cfg.Bot.MenuTTL = d
	}
	return nil
}

// Encode writes cfg in the given format. Used by init to write a starter file.
func Encode(cfg *Config, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, fmt.Errorf("encoding toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config format %q", format)
	}
	return buf.Bytes(), nil
}
