// Package config parses detwatch.toml project configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultAccentColor is the default TUI accent color (indigo).
const DefaultAccentColor = "#7D56F4"

// FileName is the configuration file detwatch looks for.
const FileName = "detwatch.toml"

// hexColorRe matches a 6-digit hex color string like "#7D56F4".
var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Config is the top-level detwatch.toml configuration.
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Poll          PollConfig          `toml:"poll"`
	Feed          FeedConfig          `toml:"feed"`
	TUI           TUIConfig           `toml:"tui"`
	Log           LogConfig           `toml:"log"`
	Notifications NotificationsConfig `toml:"notifications"`
}

// ServerConfig identifies the detection service.
type ServerConfig struct {
	BaseURL string `toml:"base_url"`
	// RequestTimeoutSeconds bounds status/start/stop requests.
	// 0 disables the timeout, matching the service's reference client.
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
}

// PollConfig controls the periodic status poll.
type PollConfig struct {
	IntervalMS int `toml:"interval_ms"`
}

// FeedConfig controls the video feed watcher.
type FeedConfig struct {
	RetryDelayMS int `toml:"retry_delay_ms"`
}

// TUIConfig controls the terminal UI appearance.
type TUIConfig struct {
	AccentColor string `toml:"accent_color"`
}

// LogConfig controls structured logging. The TUI owns the terminal, so
// logs go to a file; an empty path disables logging entirely.
type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// NotificationsConfig controls webhook/ntfy.sh notifications.
type NotificationsConfig struct {
	URL     string `toml:"url"`
	OnStart bool   `toml:"on_start"`
	OnStop  bool   `toml:"on_stop"`
	OnError bool   `toml:"on_error"`
}

// RequestTimeout returns the configured request timeout; 0 means unbounded.
func (s ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// Interval returns the poll cadence as a duration.
func (p PollConfig) Interval() time.Duration {
	return time.Duration(p.IntervalMS) * time.Millisecond
}

// RetryDelay returns the feed reconnect delay as a duration.
func (f FeedConfig) RetryDelay() time.Duration {
	return time.Duration(f.RetryDelayMS) * time.Millisecond
}

// validLogLevels are the accepted values for log.level.
var validLogLevels = []string{"trace", "debug", "info", "warn", "error"}

// Validate checks the configuration for issues that would cause confusing
// runtime failures. It returns all found issues joined together.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.BaseURL == "" {
		errs = append(errs, fmt.Errorf("server.base_url must not be empty"))
	} else {
		u, parseErr := url.ParseRequestURI(c.Server.BaseURL)
		if parseErr != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Errorf("server.base_url must be a valid http or https URL"))
		}
	}
	if c.Server.RequestTimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("server.request_timeout_seconds must be >= 0 (0 = no timeout)"))
	}

	if c.Poll.IntervalMS <= 0 {
		errs = append(errs, fmt.Errorf("poll.interval_ms must be > 0"))
	}
	if c.Feed.RetryDelayMS <= 0 {
		errs = append(errs, fmt.Errorf("feed.retry_delay_ms must be > 0"))
	}

	if c.TUI.AccentColor != "" && !hexColorRe.MatchString(c.TUI.AccentColor) {
		errs = append(errs, fmt.Errorf("tui.accent_color must be a hex color (e.g. \"#7D56F4\")"))
	}

	if c.Log.Level != "" && !isValidLogLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	if c.Notifications.URL != "" {
		u, parseErr := url.ParseRequestURI(c.Notifications.URL)
		if parseErr != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Errorf("notifications.url must be a valid http or https URL"))
		}
	}

	return errors.Join(errs...)
}

func isValidLogLevel(level string) bool {
	for _, l := range validLogLevels {
		if l == level {
			return true
		}
	}
	return false
}

// Defaults returns a Config with sensible defaults. The poll and retry
// timings mirror the service's reference web client: a 3 s status poll
// and a 2 s feed reconnect delay.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			BaseURL:               "http://localhost:5000",
			RequestTimeoutSeconds: 0,
		},
		Poll: PollConfig{IntervalMS: 3000},
		Feed: FeedConfig{RetryDelayMS: 2000},
		TUI:  TUIConfig{AccentColor: DefaultAccentColor},
		Log: LogConfig{
			File:  "",
			Level: "info",
		},
		Notifications: NotificationsConfig{
			URL:     "",
			OnStart: true,
			OnStop:  true,
			OnError: true,
		},
	}
}

// Load reads detwatch.toml from the given path. If path is empty, it walks up
// from the current working directory looking for detwatch.toml. Returns an
// error if the file contains unknown keys (likely typos).
func Load(path string) (*Config, error) {
	if path == "" {
		found, err := findConfig()
		if err != nil {
			return nil, err
		}
		path = found
	}

	cfg := Defaults()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config: unknown keys in %s: %s (possible typos?)", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return &cfg, nil
}

// findConfig walks up from the current directory looking for detwatch.toml.
func findConfig() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("config: get working directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("config: %s not found (searched up from %s)", FileName, dir)
		}
		dir = parent
	}
}

// InitFile writes a default detwatch.toml template to the given directory.
func InitFile(dir string) (string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config: %s already exists at %s", FileName, path)
	}

	content := `# detwatch.toml — detwatch configuration
# Place this file in the directory you run detwatch from (or any parent).

[server]
base_url = "http://localhost:5000"
request_timeout_seconds = 0 # 0 = no timeout on status/start/stop requests

[poll]
interval_ms = 3000 # status poll cadence

[feed]
retry_delay_ms = 2000 # delay before reconnecting a failed video feed

[tui]
accent_color = "#7D56F4" # hex color for header/accent elements

[log]
file = ""      # log file path (empty = logging disabled)
level = "info" # trace, debug, info, warn, error

[notifications]
url = ""        # ntfy.sh topic URL or any HTTP webhook (empty = disabled)
on_start = true # notify when detection starts
on_stop = true  # notify when detection stops
on_error = true # notify on errors
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("config: write %s: %w", path, err)
	}
	return path, nil
}
