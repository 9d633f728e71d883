// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for docqa.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// .env files, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.docqa/config.toml
//   - ~/.docqa/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/docqa-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete docqa configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Backend is the document-question-answering service
	Backend BackendConfig `toml:"backend" json:"backend"`

	Chat      ChatConfig      `toml:"chat" json:"chat"`
	Reveal    RevealConfig    `toml:"reveal" json:"reveal"`
	Session   SessionConfig   `toml:"session" json:"session"`
	Documents DocumentsConfig `toml:"documents" json:"documents"`
	Logging   LoggingConfig   `toml:"logging" json:"logging"`
	UI        UIConfig        `toml:"ui" json:"ui"`
}

// BackendConfig contains connection settings for the backend service.
type BackendConfig struct {
	// URL is the base URL of the backend, without a trailing slash
	URL string `toml:"url" json:"url"`
	// TimeoutSecs bounds every HTTP request
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// RateLimitRPS caps outgoing requests per second (0 = unlimited)
	RateLimitRPS float64 `toml:"rate_limit_rps" json:"rate_limit_rps"`
	// RateBurst is the limiter bucket size
	RateBurst int `toml:"rate_burst" json:"rate_burst"`
}

// ChatConfig contains question settings.
type ChatConfig struct {
	// TopK is the number of passages the backend retrieves per question
	TopK int `toml:"top_k" json:"top_k"`
}

// RevealConfig controls the word-by-word answer reveal.
type RevealConfig struct {
	// IntervalMs is the delay between revealed words
	IntervalMs int `toml:"interval_ms" json:"interval_ms"`
}

// SessionConfig controls where the credential is kept.
type SessionConfig struct {
	// File overrides the credential file (empty = ~/.docqa/session.json)
	File string `toml:"file" json:"file"`
	// Ephemeral keeps the credential in memory only
	Ephemeral bool `toml:"ephemeral" json:"ephemeral"`
}

// DocumentsConfig controls the document registry.
type DocumentsConfig struct {
	// AllowedExtensions lists the file extensions accepted for upload
	AllowedExtensions []string `toml:"allowed_extensions" json:"allowed_extensions"`
	// CacheTTLMinutes expires cached documents (0 = keep until refresh)
	CacheTTLMinutes int `toml:"cache_ttl_minutes" json:"cache_ttl_minutes"`
}

// LoggingConfig controls the rotating log file.
type LoggingConfig struct {
	File       string `toml:"file" json:"file"`
	Level      string `toml:"level" json:"level"`
	MaxSizeMB  int    `toml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" json:"max_age_days"`
}

// UIConfig contains terminal UI preferences.
type UIConfig struct {
	// Theme is "auto", "dark" or "light"
	Theme string `toml:"theme" json:"theme"`
	// RenderMarkdown renders finished answers with glamour
	RenderMarkdown bool `toml:"render_markdown" json:"render_markdown"`
}

// Timeout returns the backend timeout as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// Interval returns the reveal interval as a duration.
func (r RevealConfig) Interval() time.Duration {
	return time.Duration(r.IntervalMs) * time.Millisecond
}

// CacheTTL returns the document cache TTL as a duration.
func (d DocumentsConfig) CacheTTL() time.Duration {
	return time.Duration(d.CacheTTLMinutes) * time.Minute
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Backend: BackendConfig{
			URL:          "http://localhost:8000",
			TimeoutSecs:  60,
			RateLimitRPS: 10,
			RateBurst:    20,
		},

		Chat: ChatConfig{
			TopK: 3,
		},

		Reveal: RevealConfig{
			IntervalMs: 30,
		},

		Documents: DocumentsConfig{
			AllowedExtensions: []string{".pdf", ".docx", ".txt", ".doc"},
			CacheTTLMinutes:   0,
		},

		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},

		UI: UIConfig{
			Theme:          "auto",
			RenderMarkdown: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the docqa configuration directory path.
// DOCQA_HOME replaces the default ~/.docqa location.
func ConfigDir() (string, error) {
	if dir := os.Getenv("DOCQA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".docqa"), nil
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

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// SessionFile returns the credential file path.
func (c *Config) SessionFile() (string, error) {
	if c.Session.File != "" {
		return c.Session.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

// LogFile returns the log file path.
func (c *Config) LogFile() (string, error) {
	if c.Logging.File != "" {
		return c.Logging.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "docqa.log"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// .env values and environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	loaded := false
	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
				cfg = Default()
			} else {
				loaded = true
			}
		}
	}

	if !loaded {
		if jsonPath, err := ConfigPathJSON(); err == nil {
			if _, statErr := os.Stat(jsonPath); statErr == nil {
				if err := LoadJSON(cfg, jsonPath); err != nil {
					loadErr = fmt.Errorf("failed to load JSON config: %w", err)
					cfg = Default()
				}
			}
		}
	}

	if err := finish(cfg); err != nil {
		return nil, err
	}

	// Return the config (with any load error for informational purposes)
	return cfg, loadErr
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish applies .env and environment overrides, defaults and validation.
func finish(cfg *Config) error {
	dotenv, err := readDotEnv(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring .env: %v\n", err)
	}
	cfg.ApplyEnv(envLookup(dotenv))

	if err := fillDefaults(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	// Backend
	if cfg.Backend.URL == "" {
		cfg.Backend.URL = defaults.Backend.URL
	}
	cfg.Backend.URL = strings.TrimRight(cfg.Backend.URL, "/")
	if cfg.Backend.TimeoutSecs == 0 {
		cfg.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
	}
	if cfg.Backend.RateBurst == 0 {
		cfg.Backend.RateBurst = defaults.Backend.RateBurst
	}

	if cfg.Chat.TopK == 0 {
		cfg.Chat.TopK = defaults.Chat.TopK
	}
	if cfg.Reveal.IntervalMs == 0 {
		cfg.Reveal.IntervalMs = defaults.Reveal.IntervalMs
	}

	if len(cfg.Documents.AllowedExtensions) == 0 {
		cfg.Documents.AllowedExtensions = defaults.Documents.AllowedExtensions
	}

	// Logging
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = defaults.Logging.MaxSizeMB
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = defaults.Logging.MaxBackups
	}
	if cfg.Logging.MaxAgeDays == 0 {
		cfg.Logging.MaxAgeDays = defaults.Logging.MaxAgeDays
	}

	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}

	return nil
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

// SaveTOML writes the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# docqa configuration file\n")
	b.WriteString("# Generated by docqa - edit with care\n\n")

	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
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

	u, err := url.Parse(c.Backend.URL)
	switch {
	case err != nil:
		errs = append(errs, ValidationError{
			Field:   "backend.url",
			Message: fmt.Sprintf("invalid URL: %v", err),
		})
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, ValidationError{
			Field:   "backend.url",
			Message: fmt.Sprintf("unsupported scheme '%s', must be http or https", u.Scheme),
		})
	case u.Host == "":
		errs = append(errs, ValidationError{
			Field:   "backend.url",
			Message: "missing host",
		})
	}

	if c.Backend.TimeoutSecs < 1 || c.Backend.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.Backend.TimeoutSecs),
		})
	}
	if c.Backend.RateLimitRPS < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.rate_limit_rps",
			Message: "cannot be negative",
		})
	}
	if c.Backend.RateBurst < 1 {
		errs = append(errs, ValidationError{
			Field:   "backend.rate_burst",
			Message: "must be at least 1",
		})
	}

	if c.Chat.TopK < 1 || c.Chat.TopK > 50 {
		errs = append(errs, ValidationError{
			Field:   "chat.top_k",
			Message: fmt.Sprintf("must be between 1 and 50, got %d", c.Chat.TopK),
		})
	}

	if c.Reveal.IntervalMs < 1 || c.Reveal.IntervalMs > 5000 {
		errs = append(errs, ValidationError{
			Field:   "reveal.interval_ms",
			Message: fmt.Sprintf("must be between 1 and 5000, got %d", c.Reveal.IntervalMs),
		})
	}

	for _, ext := range c.Documents.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, ValidationError{
				Field:   "documents.allowed_extensions",
				Message: fmt.Sprintf("invalid extension '%s', must start with a dot", ext),
			})
		}
	}
	if c.Documents.CacheTTLMinutes < 0 {
		errs = append(errs, ValidationError{
			Field:   "documents.cache_ttl_minutes",
			Message: "cannot be negative",
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}

	validThemes := map[string]bool{"auto": true, "dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies process environment overrides to the config.
//
// Supported environment variables:
//   - DOCQA_BACKEND_URL: overrides backend.url
//   - DOCQA_TOP_K: overrides chat.top_k
//   - DOCQA_REVEAL_INTERVAL_MS: overrides reveal.interval_ms
//   - DOCQA_SESSION_FILE: overrides session.file
//   - DOCQA_EPHEMERAL: set to "1" or "true" to keep the credential in memory
//   - DOCQA_LOG_LEVEL: overrides logging.level
//   - DOCQA_LOG_FILE: overrides logging.file
//   - DOCQA_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	c.ApplyEnv(os.Getenv)
}

// ApplyEnv applies overrides read through getenv.
// Malformed numeric values are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("DOCQA_BACKEND_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := getenv("DOCQA_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Chat.TopK = n
		}
	}
	if v := getenv("DOCQA_REVEAL_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Reveal.IntervalMs = n
		}
	}
	if v := getenv("DOCQA_SESSION_FILE"); v != "" {
		c.Session.File = v
	}
	if v := getenv("DOCQA_EPHEMERAL"); v != "" {
		c.Session.Ephemeral = v == "1" || strings.ToLower(v) == "true"
	}
	if v := getenv("DOCQA_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := getenv("DOCQA_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := getenv("DOCQA_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// readDotEnv reads KEY=VALUE pairs from path. A missing file is not an error.
func readDotEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return values, nil
}

// envLookup prefers the process environment over .env values.
func envLookup(dotenv map[string]string) func(string) string {
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Documents.AllowedExtensions = append([]string(nil), c.Documents.AllowedExtensions...)
	return &clone
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("error encoding config: %v", err)
	}
	return b.String()
}
