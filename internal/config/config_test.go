package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"server.base_url", cfg.Server.BaseURL, "http://localhost:5000"},
		{"server.request_timeout_seconds", cfg.Server.RequestTimeoutSeconds, 0},
		{"poll.interval_ms", cfg.Poll.IntervalMS, 3000},
		{"feed.retry_delay_ms", cfg.Feed.RetryDelayMS, 2000},
		{"tui.accent_color", cfg.TUI.AccentColor, DefaultAccentColor},
		{"log.file", cfg.Log.File, ""},
		{"log.level", cfg.Log.Level, "info"},
		{"notifications.url", cfg.Notifications.URL, ""},
		{"notifications.on_start", cfg.Notifications.OnStart, true},
		{"notifications.on_stop", cfg.Notifications.OnStop, true},
		{"notifications.on_error", cfg.Notifications.OnError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestDurationAccessors(t *testing.T) {
	cfg := Defaults()
	if got := cfg.Poll.Interval(); got != 3*time.Second {
		t.Errorf("Poll.Interval() = %v, want 3s", got)
	}
	if got := cfg.Feed.RetryDelay(); got != 2*time.Second {
		t.Errorf("Feed.RetryDelay() = %v, want 2s", got)
	}
	if got := cfg.Server.RequestTimeout(); got != 0 {
		t.Errorf("Server.RequestTimeout() = %v, want 0", got)
	}
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		dir := t.TempDir()
		content := `
[server]
base_url = "http://cam.local:8080"
request_timeout_seconds = 15

[poll]
interval_ms = 1000

[feed]
retry_delay_ms = 500

[tui]
accent_color = "#FF6B6B"

[log]
file = "/tmp/detwatch.log"
level = "debug"

[notifications]
url = "https://ntfy.sh/detwatch"
on_start = false
`
		path := filepath.Join(dir, FileName)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatal(err)
		}

		tests := []struct {
			name string
			got  any
			want any
		}{
			{"server.base_url", cfg.Server.BaseURL, "http://cam.local:8080"},
			{"server.request_timeout_seconds", cfg.Server.RequestTimeoutSeconds, 15},
			{"poll.interval_ms", cfg.Poll.IntervalMS, 1000},
			{"feed.retry_delay_ms", cfg.Feed.RetryDelayMS, 500},
			{"tui.accent_color", cfg.TUI.AccentColor, "#FF6B6B"},
			{"log.file", cfg.Log.File, "/tmp/detwatch.log"},
			{"log.level", cfg.Log.Level, "debug"},
			{"notifications.url", cfg.Notifications.URL, "https://ntfy.sh/detwatch"},
			{"notifications.on_start", cfg.Notifications.OnStart, false},
			{"notifications.on_stop", cfg.Notifications.OnStop, true},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if tt.got != tt.want {
					t.Errorf("got %v, want %v", tt.got, tt.want)
				}
			})
		}
	})

	t.Run("partial config keeps defaults", func(t *testing.T) {
		dir := t.TempDir()
		content := `
[server]
base_url = "http://cam.local:8080"
`
		path := filepath.Join(dir, FileName)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Poll.IntervalMS != 3000 {
			t.Errorf("poll.interval_ms = %d, want default 3000", cfg.Poll.IntervalMS)
		}
		if cfg.Feed.RetryDelayMS != 2000 {
			t.Errorf("feed.retry_delay_ms = %d, want default 2000", cfg.Feed.RetryDelayMS)
		}
	})

	t.Run("unknown keys rejected", func(t *testing.T) {
		dir := t.TempDir()
		content := `
[server]
base_url = "http://cam.local:8080"
base_uri = "typo"
`
		path := filepath.Join(dir, FileName)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := Load(path)
		if err == nil {
			t.Fatal("expected error for unknown key")
		}
		if !strings.Contains(err.Error(), "unknown keys") {
			t.Errorf("error %q should mention unknown keys", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), FileName)); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "empty base_url",
			mutate:  func(c *Config) { c.Server.BaseURL = "" },
			wantErr: "server.base_url",
		},
		{
			name:    "non-http base_url",
			mutate:  func(c *Config) { c.Server.BaseURL = "ftp://cam.local" },
			wantErr: "server.base_url",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Server.RequestTimeoutSeconds = -1 },
			wantErr: "request_timeout_seconds",
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *Config) { c.Poll.IntervalMS = 0 },
			wantErr: "poll.interval_ms",
		},
		{
			name:    "zero retry delay",
			mutate:  func(c *Config) { c.Feed.RetryDelayMS = 0 },
			wantErr: "feed.retry_delay_ms",
		},
		{
			name:    "bad accent color",
			mutate:  func(c *Config) { c.TUI.AccentColor = "purple" },
			wantErr: "tui.accent_color",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "log.level",
		},
		{
			name:    "bad notification url",
			mutate:  func(c *Config) { c.Notifications.URL = "not-a-url" },
			wantErr: "notifications.url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error mentioning %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestInitFile(t *testing.T) {
	dir := t.TempDir()

	path, err := InitFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != FileName {
		t.Errorf("created %s, want %s", filepath.Base(path), FileName)
	}

	// The template must round-trip through Load.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("template does not load: %v", err)
	}
	if cfg.Poll.IntervalMS != 3000 {
		t.Errorf("template poll.interval_ms = %d, want 3000", cfg.Poll.IntervalMS)
	}

	// Second init must refuse to overwrite.
	if _, err := InitFile(dir); err == nil {
		t.Fatal("expected error when detwatch.toml already exists")
	}
}
