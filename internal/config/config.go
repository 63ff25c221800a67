// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for critterchat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// .env and environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - the path given with --config
//   - ~/.critterchat/config.toml
//   - ~/.critterchat/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete critterchat configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Chat server connection
	Server ServerConfig `toml:"server" json:"server"`

	// Local identity source
	Identity IdentityConfig `toml:"identity" json:"identity"`

	// Friend directory service
	Friends FriendsConfig `toml:"friends" json:"friends"`

	// Transport reconnection policy
	Reconnect ReconnectConfig `toml:"reconnect" json:"reconnect"`

	// Tunable constants of the chat subsystem
	Chat ChatConfig `toml:"chat" json:"chat"`

	// Logging
	Log LogConfig `toml:"log" json:"log"`
}

// ServerConfig contains the chat server connection settings.
type ServerConfig struct {
	// Endpoint is the websocket URL of the chat server (ws:// or wss://)
	Endpoint string `toml:"endpoint" json:"endpoint"`
	// Credential is the session token sent in the authentication handshake
	Credential string `toml:"credential" json:"credential"`
	// DialTimeout bounds the websocket handshake
	DialTimeout Duration `toml:"dial_timeout" json:"dial_timeout"`
	// AuthTimeout bounds the wait for the server's auth acknowledgement
	AuthTimeout Duration `toml:"auth_timeout" json:"auth_timeout"`
}

// IdentityConfig names the local user. It is read-only at runtime and is
// used to tell whisper direction and to exclude self from suggestions.
type IdentityConfig struct {
	Username string `toml:"username" json:"username"`
}

// FriendsConfig contains the friend directory service settings.
type FriendsConfig struct {
	// BaseURL is the HTTP base URL of the directory (empty disables it)
	BaseURL string `toml:"base_url" json:"base_url"`
	// Timeout is the per-request timeout
	Timeout Duration `toml:"timeout" json:"timeout"`
	// MaxRetries is the number of attempts for transient failures
	MaxRetries int `toml:"max_retries" json:"max_retries"`
}

// ReconnectConfig bounds automatic reconnection.
type ReconnectConfig struct {
	// MaxAttempts is the number of reconnection attempts before giving up
	MaxAttempts int `toml:"max_attempts" json:"max_attempts"`
	// MinDelay is the delay before the first attempt
	MinDelay Duration `toml:"min_delay" json:"min_delay"`
	// MaxDelay caps the delay between attempts
	MaxDelay Duration `toml:"max_delay" json:"max_delay"`
}

// ChatConfig holds the tunable constants of the chat subsystem.
type ChatConfig struct {
	// CommandPrefix starts a command ("/whisper bob hi")
	CommandPrefix string `toml:"command_prefix" json:"command_prefix"`
	// MentionTrigger opens the autocomplete dropdown ("@al")
	MentionTrigger string `toml:"mention_trigger" json:"mention_trigger"`
	// HistoryCapacity is the per-tab message ring size
	HistoryCapacity int `toml:"history_capacity" json:"history_capacity"`
	// VisibleWindow is the number of message fragments kept on screen
	VisibleWindow int `toml:"visible_window" json:"visible_window"`
	// Debounce is the render coalescing delay
	Debounce Duration `toml:"debounce" json:"debounce"`
	// NearBottomLines is the distance from bottom under which new
	// messages still scroll the view to the bottom
	NearBottomLines int `toml:"near_bottom_lines" json:"near_bottom_lines"`
	// PreserveScrollRelease is how long after a render the typing
	// preserve-scroll flag is kept
	PreserveScrollRelease Duration `toml:"preserve_scroll_release" json:"preserve_scroll_release"`
	// InfoNotification is the lifetime of informational notifications
	InfoNotification Duration `toml:"info_notification" json:"info_notification"`
	// ErrorNotification is the lifetime of error notifications
	ErrorNotification Duration `toml:"error_notification" json:"error_notification"`
	// Channels are the permanent broadcast tabs created at startup
	Channels []string `toml:"channels" json:"channels"`
	// ServerChannels is the whitelist of channels that can be joined
	ServerChannels []string `toml:"server_channels" json:"server_channels"`
	// SendRate is the sustained outbound message rate per second
	SendRate float64 `toml:"send_rate" json:"send_rate"`
	// SendBurst is the outbound burst size
	SendBurst int `toml:"send_burst" json:"send_burst"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is one of: debug, info, warn, error, disabled
	Level string `toml:"level" json:"level"`
	// Path is the log file (empty = ~/.critterchat/critterchat.log)
	Path string `toml:"path" json:"path"`
}

// =============================================================================
// DURATION
// =============================================================================

// Duration is a time.Duration that reads and writes as "5s" in TOML and JSON.
type Duration struct {
	time.Duration
}

// Dur wraps a time.Duration.
func Dur(d time.Duration) Duration {
	return Duration{d}
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Server: ServerConfig{
			Endpoint:    "ws://127.0.0.1:8080/chat",
			DialTimeout: Dur(10 * time.Second),
			AuthTimeout: Dur(5 * time.Second),
		},

		Friends: FriendsConfig{
			BaseURL:    "http://127.0.0.1:8080/api",
			Timeout:    Dur(10 * time.Second),
			MaxRetries: 3,
		},

		Reconnect: ReconnectConfig{
			MaxAttempts: 5,
			MinDelay:    Dur(1 * time.Second),
			MaxDelay:    Dur(5 * time.Second),
		},

		Chat: ChatConfig{
			CommandPrefix:         "/",
			MentionTrigger:        "@",
			HistoryCapacity:       100,
			VisibleWindow:         50,
			Debounce:              Dur(8 * time.Millisecond),
			NearBottomLines:       5,
			PreserveScrollRelease: Dur(150 * time.Millisecond),
			InfoNotification:      Dur(3 * time.Second),
			ErrorNotification:     Dur(6 * time.Second),
			Channels:              []string{"global"},
			ServerChannels:        []string{"global", "group", "trade"},
			SendRate:              2,
			SendBurst:             5,
		},

		Log: LogConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the critterchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".critterchat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "critterchat.log"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// Config files hold the session credential and should be 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// A .env file in the working directory is loaded into the process
// environment first; environment overrides are applied last.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := Default()
	var loadErr error

	for _, candidate := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := candidate()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		if err := loadFile(cfg, path); err != nil {
			loadErr = err
			cfg = Default()
			continue
		}
		return finish(cfg)
	}

	out, err := finish(cfg)
	if err != nil {
		return nil, err
	}
	// Return defaults with any load error for informational purposes
	return out, loadErr
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	loadDotEnv()

	cfg := Default()
	if err := loadFile(cfg, path); err != nil {
		return nil, err
	}
	return finish(cfg)
}

// LoadTOML decodes a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

func loadFile(cfg *Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
		return nil
	}
	if err := LoadTOML(cfg, path); err != nil {
		return fmt.Errorf("failed to load TOML config from %s: %w", path, err)
	}
	return nil
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadDotEnv loads ./.env without overriding variables already set.
// A missing file is not an error.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not read .env: %v\n", err)
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# critterchat configuration file\n")
	sb.WriteString("# Generated by critterchat - edit with care\n\n")

	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := writeFileAtomic(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Server
	if c.Server.Endpoint != "" {
		u, err := url.Parse(c.Server.Endpoint)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "server.endpoint",
				Message: fmt.Sprintf("invalid websocket URL '%s', must be ws:// or wss://", c.Server.Endpoint),
			})
		}
	}

	// Friends
	if c.Friends.BaseURL != "" {
		u, err := url.Parse(c.Friends.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "friends.base_url",
				Message: fmt.Sprintf("invalid URL '%s', must be http:// or https://", c.Friends.BaseURL),
			})
		}
	}
	if c.Friends.MaxRetries < 1 {
		errs = append(errs, ValidationError{Field: "friends.max_retries", Message: "must be at least 1"})
	}

	// Reconnect
	if c.Reconnect.MaxAttempts < 0 {
		errs = append(errs, ValidationError{Field: "reconnect.max_attempts", Message: "must not be negative"})
	}
	if c.Reconnect.MaxDelay.Duration < c.Reconnect.MinDelay.Duration {
		errs = append(errs, ValidationError{
			Field:   "reconnect.max_delay",
			Message: fmt.Sprintf("must be >= min_delay (%s)", c.Reconnect.MinDelay.Duration),
		})
	}

	// Chat
	if n := len([]rune(c.Chat.CommandPrefix)); n != 1 {
		errs = append(errs, ValidationError{Field: "chat.command_prefix", Message: "must be a single character"})
	}
	if n := len([]rune(c.Chat.MentionTrigger)); n != 1 {
		errs = append(errs, ValidationError{Field: "chat.mention_trigger", Message: "must be a single character"})
	}
	if c.Chat.CommandPrefix != "" && c.Chat.CommandPrefix == c.Chat.MentionTrigger {
		errs = append(errs, ValidationError{Field: "chat.mention_trigger", Message: "must differ from command_prefix"})
	}
	if c.Chat.HistoryCapacity < 1 {
		errs = append(errs, ValidationError{Field: "chat.history_capacity", Message: "must be at least 1"})
	}
	if c.Chat.VisibleWindow < 1 || c.Chat.VisibleWindow > c.Chat.HistoryCapacity {
		errs = append(errs, ValidationError{
			Field:   "chat.visible_window",
			Message: fmt.Sprintf("must be between 1 and history_capacity (%d)", c.Chat.HistoryCapacity),
		})
	}
	if c.Chat.NearBottomLines < 0 {
		errs = append(errs, ValidationError{Field: "chat.near_bottom_lines", Message: "must not be negative"})
	}
	if c.Chat.InfoNotification.Duration > c.Chat.ErrorNotification.Duration {
		errs = append(errs, ValidationError{
			Field:   "chat.info_notification",
			Message: "must not be longer than error_notification",
		})
	}
	if len(c.Chat.Channels) == 0 {
		errs = append(errs, ValidationError{Field: "chat.channels", Message: "at least one channel is required"})
	}
	if c.Chat.SendRate <= 0 || c.Chat.SendBurst < 1 {
		errs = append(errs, ValidationError{Field: "chat.send_rate", Message: "send_rate must be > 0 and send_burst >= 1"})
	}

	// Log
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "disabled": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error, disabled", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values left by a partial config file.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Server.DialTimeout.Duration <= 0 {
		c.Server.DialTimeout = d.Server.DialTimeout
	}
	if c.Server.AuthTimeout.Duration <= 0 {
		c.Server.AuthTimeout = d.Server.AuthTimeout
	}
	if c.Friends.Timeout.Duration <= 0 {
		c.Friends.Timeout = d.Friends.Timeout
	}
	if c.Friends.MaxRetries == 0 {
		c.Friends.MaxRetries = d.Friends.MaxRetries
	}
	if c.Reconnect.MinDelay.Duration <= 0 {
		c.Reconnect.MinDelay = d.Reconnect.MinDelay
	}
	if c.Reconnect.MaxDelay.Duration <= 0 {
		c.Reconnect.MaxDelay = d.Reconnect.MaxDelay
	}
	if c.Chat.CommandPrefix == "" {
		c.Chat.CommandPrefix = d.Chat.CommandPrefix
	}
	if c.Chat.MentionTrigger == "" {
		c.Chat.MentionTrigger = d.Chat.MentionTrigger
	}
	if c.Chat.HistoryCapacity == 0 {
		c.Chat.HistoryCapacity = d.Chat.HistoryCapacity
	}
	if c.Chat.VisibleWindow == 0 {
		c.Chat.VisibleWindow = d.Chat.VisibleWindow
	}
	if c.Chat.Debounce.Duration <= 0 {
		c.Chat.Debounce = d.Chat.Debounce
	}
	if c.Chat.PreserveScrollRelease.Duration <= 0 {
		c.Chat.PreserveScrollRelease = d.Chat.PreserveScrollRelease
	}
	if c.Chat.InfoNotification.Duration <= 0 {
		c.Chat.InfoNotification = d.Chat.InfoNotification
	}
	if c.Chat.ErrorNotification.Duration <= 0 {
		c.Chat.ErrorNotification = d.Chat.ErrorNotification
	}
	if len(c.Chat.Channels) == 0 {
		c.Chat.Channels = d.Chat.Channels
	}
	if len(c.Chat.ServerChannels) == 0 {
		c.Chat.ServerChannels = d.Chat.ServerChannels
	}
	if c.Chat.SendRate == 0 {
		c.Chat.SendRate = d.Chat.SendRate
	}
	if c.Chat.SendBurst == 0 {
		c.Chat.SendBurst = d.Chat.SendBurst
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - CRITTERCHAT_ENDPOINT: overrides server.endpoint
//   - CRITTERCHAT_TOKEN: overrides server.credential
//   - CRITTERCHAT_USERNAME: overrides identity.username
//   - CRITTERCHAT_FRIENDS_URL: overrides friends.base_url
//   - CRITTERCHAT_LOG_LEVEL: overrides log.level
//   - CRITTERCHAT_LOG_PATH: overrides log.path
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CRITTERCHAT_ENDPOINT"); v != "" {
		c.Server.Endpoint = v
	}
	if v := os.Getenv("CRITTERCHAT_TOKEN"); v != "" {
		c.Server.Credential = v
	}
	if v := os.Getenv("CRITTERCHAT_USERNAME"); v != "" {
		c.Identity.Username = v
	}
	if v := os.Getenv("CRITTERCHAT_FRIENDS_URL"); v != "" {
		c.Friends.BaseURL = v
	}
	if v := os.Getenv("CRITTERCHAT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CRITTERCHAT_LOG_PATH"); v != "" {
		c.Log.Path = v
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Chat.Channels = append([]string(nil), c.Chat.Channels...)
	clone.Chat.ServerChannels = append([]string(nil), c.Chat.ServerChannels...)
	return &clone
}

// String returns the configuration as TOML with the credential redacted.
func (c *Config) String() string {
	redacted := c.Clone()
	if redacted.Server.Credential != "" {
		redacted.Server.Credential = "********"
	}
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(redacted); err != nil {
		return fmt.Sprintf("<config encode error: %v>", err)
	}
	return sb.String()
}
