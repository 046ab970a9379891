package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/perimetra/detwatch/internal/config"
	"github.com/perimetra/detwatch/internal/detect"
	"github.com/perimetra/detwatch/internal/history"
	"github.com/perimetra/detwatch/internal/logging"
	"github.com/perimetra/detwatch/internal/notify"
	"github.com/perimetra/detwatch/internal/tui"
)

// stateDirName holds the history log, next to the working directory.
const stateDirName = ".detwatch"

// deps bundles everything a command needs: config, logger, API client, and
// the optional history/notification sinks.
type deps struct {
	cfg       *config.Config
	logger    zerolog.Logger
	logCloser io.Closer
	client    *detect.Client
	hist      *history.Log
	notifier  *notify.Notifier
}

// buildDeps loads configuration and wires up the shared dependencies.
func buildDeps() (*deps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	d := &deps{
		cfg:       cfg,
		logger:    logger,
		logCloser: logCloser,
		client:    detect.NewClient(cfg.Server.BaseURL, cfg.Server.RequestTimeout(), logger),
	}

	dir, err := stateDir()
	if err != nil {
		return nil, err
	}
	if d.hist, err = history.Open(dir); err != nil {
		return nil, err
	}

	if cfg.Notifications.URL != "" {
		d.notifier = notify.New(
			cfg.Notifications.URL,
			"detwatch",
			cfg.Notifications.OnStart,
			cfg.Notifications.OnStop,
			cfg.Notifications.OnError,
		)
	}

	return d, nil
}

// record appends an event to the history log and fires notifications.
func (d *deps) record(kind history.Kind, message string) {
	e := history.Event{Time: time.Now(), Kind: kind, Message: message}
	if err := d.hist.Append(e); err != nil {
		d.logger.Warn().Err(err).Msg("history append failed")
	}
	if d.notifier != nil {
		d.notifier.Hook(e)
	}
}

func (d *deps) close() {
	if d.hist != nil {
		d.hist.Close()
	}
	if d.logCloser != nil {
		d.logCloser.Close()
	}
}

// stateDir returns the directory holding the history log.
func stateDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return filepath.Join(dir, stateDirName), nil
}

// runDashboard builds the TUI model and runs the bubbletea program.
func runDashboard(d *deps) error {
	model := tui.New(tui.Options{
		Client:         d.client,
		AccentColor:    d.cfg.TUI.AccentColor,
		PollInterval:   d.cfg.Poll.Interval(),
		FeedRetryDelay: d.cfg.Feed.RetryDelay(),
		History:        d.hist,
		Notifier:       d.notifier,
		Logger:         d.logger,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
