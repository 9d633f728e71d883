// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// isolate points the config directory and working directory at temp dirs so
// tests never read the developer's real files.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("DOCQA_HOME", home)
	t.Chdir(t.TempDir())
	for _, key := range []string{
		"DOCQA_BACKEND_URL", "DOCQA_TOP_K", "DOCQA_REVEAL_INTERVAL_MS",
		"DOCQA_SESSION_FILE", "DOCQA_EPHEMERAL", "DOCQA_LOG_LEVEL",
		"DOCQA_LOG_FILE", "DOCQA_THEME",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return home
}

func TestConfig_Default(t *testing.T) {
	cfg := Default()

	require.Equal(t, "http://localhost:8000", cfg.Backend.URL)
	require.Equal(t, 3, cfg.Chat.TopK)
	require.Equal(t, 30*time.Millisecond, cfg.Reveal.Interval())
	require.Equal(t, []string{".pdf", ".docx", ".txt", ".doc"}, cfg.Documents.AllowedExtensions)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid default config", func(*Config) {}, ""},
		{"unsupported scheme", func(c *Config) { c.Backend.URL = "ftp://host" }, "backend.url"},
		{"missing host", func(c *Config) { c.Backend.URL = "http://" }, "backend.url"},
		{"zero timeout", func(c *Config) { c.Backend.TimeoutSecs = 0 }, "backend.timeout_secs"},
		{"negative rate", func(c *Config) { c.Backend.RateLimitRPS = -1 }, "backend.rate_limit_rps"},
		{"top_k too large", func(c *Config) { c.Chat.TopK = 51 }, "chat.top_k"},
		{"negative interval", func(c *Config) { c.Reveal.IntervalMs = -5 }, "reveal.interval_ms"},
		{"extension without dot", func(c *Config) { c.Documents.AllowedExtensions = []string{"pdf"} }, "documents.allowed_extensions"},
		{"invalid level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"invalid theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.field == "" {
				require.NoError(t, err)
				return
			}

			var errs ValidateErrors
			require.ErrorAs(t, err, &errs)
			require.Equal(t, tc.field, errs[0].Field)
		})
	}
}

func TestConfig_LoadTOMLWithDefaults(t *testing.T) {
	home := isolate(t)

	content := `
[backend]
url = "http://rag.internal:8080/"

[reveal]
interval_ms = 15
`
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"), []byte(content), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://rag.internal:8080", cfg.Backend.URL)
	require.Equal(t, 15, cfg.Reveal.IntervalMs)
	require.Equal(t, 3, cfg.Chat.TopK)
	require.True(t, cfg.UI.RenderMarkdown)
}

func TestConfig_LoadJSONFallback(t *testing.T) {
	home := isolate(t)

	require.NoError(t, os.WriteFile(filepath.Join(home, "config.json"),
		[]byte(`{"chat": {"top_k": 5}}`), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Chat.TopK)
}

func TestConfig_EnvOverridesBeatDotEnvAndFile(t *testing.T) {
	home := isolate(t)

	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"),
		[]byte("[chat]\ntop_k = 4\n"), 0600))
	require.NoError(t, os.WriteFile(".env",
		[]byte("DOCQA_TOP_K=6\nDOCQA_THEME=light\n"), 0600))
	t.Setenv("DOCQA_THEME", "dark")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 6, cfg.Chat.TopK, ".env beats the config file")
	require.Equal(t, "dark", cfg.UI.Theme, "process env beats .env")
}

func TestConfig_LoadFromPathRejectsInvalid(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[reveal]\ninterval_ms = 99999\n"), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "reveal.interval_ms")
}

func TestConfig_SaveTOMLRoundTrip(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := Default()
	cfg.Backend.URL = "https://docs.example.com"
	cfg.Reveal.IntervalMs = 45
	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Backend.URL, loaded.Backend.URL)
	require.Equal(t, 45, loaded.Reveal.IntervalMs)
}

func TestConfig_SessionFile(t *testing.T) {
	home := isolate(t)

	cfg := Default()
	path, err := cfg.SessionFile()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "session.json"), path)

	cfg.Session.File = "/tmp/custom.json"
	path, err = cfg.SessionFile()
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom.json", path)
}

func TestConfig_Clone(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.Documents.AllowedExtensions[0] = ".md"

	require.Equal(t, ".pdf", cfg.Documents.AllowedExtensions[0])
}
