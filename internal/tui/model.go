package tui

import (
	"context"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/perimetra/detwatch/internal/detect"
	"github.com/perimetra/detwatch/internal/feed"
	"github.com/perimetra/detwatch/internal/history"
	"github.com/perimetra/detwatch/internal/notify"
)

// RunState is the detection state as last reported by the status poll.
type RunState int

const (
	// StateUnknown holds until the first successful poll.
	StateUnknown RunState = iota
	StateRunning
	StateStopped
)

// User-visible fixed strings. The feed and stop messages are the exact texts
// the service's reference web client shows.
const (
	statusRunningText = "Status: Running"
	statusStoppedText = "Status: Not Running"
	statusUnknownText = "Status: —"
	feedErrorBanner   = "Video feed error. Retrying..."
	stopFailedBanner  = "Failed to stop detection"
)

// Options configures the dashboard Model. Client and timings are required;
// History and Notifier may be nil.
type Options struct {
	Client         *detect.Client
	AccentColor    string
	PollInterval   time.Duration
	FeedRetryDelay time.Duration
	History        *history.Log
	Notifier       *notify.Notifier
	Logger         zerolog.Logger
}

// Model is the bubbletea model for the detwatch dashboard.
type Model struct {
	client   *detect.Client
	feedHTTP *http.Client // no timeout: the stream is unbounded
	hist     *history.Log
	notifier *notify.Notifier
	logger   zerolog.Logger

	pollInterval   time.Duration
	feedRetryDelay time.Duration

	// Detection state
	state  RunState
	banner string // empty = hidden

	// Feed state
	session     *feed.Session
	feedUp      bool
	frames      int
	feedBytes   int64
	lastFrameAt time.Time

	// Display
	events LogView
	theme  Theme
	width  int
	height int

	startedAt time.Time
	now       time.Time
}

// New creates the dashboard Model.
func New(opts Options) Model {
	now := time.Now()
	logW, logH := logDims(80, 24)
	return Model{
		client:         opts.Client,
		feedHTTP:       &http.Client{},
		hist:           opts.History,
		notifier:       opts.Notifier,
		logger:         opts.Logger.With().Str("component", "tui").Logger(),
		pollInterval:   opts.PollInterval,
		feedRetryDelay: opts.FeedRetryDelay,
		state:          StateUnknown,
		events:         NewLogView(logW, logH),
		theme:          NewTheme(opts.AccentColor),
		width:          80,
		height:         24,
		startedAt:      now,
		now:            now,
	}
}

// Init starts the poll ticker, the clock, the first status check, and the
// video feed.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		checkStatus(m.client),
		pollTick(m.pollInterval),
		m.openFeed(),
		clockTick(),
	)
}

// State returns the currently displayed detection state.
func (m Model) State() RunState { return m.state }

// Banner returns the error banner text; empty means hidden.
func (m Model) Banner() string { return m.banner }

// pollTick schedules the next status poll. The cadence is fixed for the
// lifetime of the program and independent of user actions.
func pollTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

// clockTick schedules the next one-second clock tick.
func clockTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

// feedRetryTick schedules one feed reconnect attempt after the fixed delay.
func feedRetryTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return feedRetryMsg(t)
	})
}

// checkStatus fetches the detection state once.
func checkStatus(client *detect.Client) tea.Cmd {
	return func() tea.Msg {
		st, err := client.Status(context.Background())
		if err != nil {
			return statusErrMsg{err: err}
		}
		return statusMsg(st)
	}
}

// startDetection issues the start action.
func startDetection(client *detect.Client) tea.Cmd {
	return func() tea.Msg {
		msg, err := client.Start(context.Background())
		return startDoneMsg{message: msg, err: err}
	}
}

// stopDetection issues the stop action.
func stopDetection(client *detect.Client) tea.Cmd {
	return func() tea.Msg {
		return stopDoneMsg{err: client.Stop(context.Background())}
	}
}

// testVoiceAlert triggers the service's text-to-speech self test.
func testVoiceAlert(client *detect.Client) tea.Cmd {
	return func() tea.Msg {
		msg, err := client.TestVoiceAlert(context.Background())
		return voiceTestDoneMsg{message: msg, err: err}
	}
}

// openFeed opens a fresh feed session with a new cache-busting URL.
func (m Model) openFeed() tea.Cmd {
	client := m.client
	httpc := m.feedHTTP
	logger := m.logger
	return func() tea.Msg {
		s := feed.Open(context.Background(), httpc, client.FeedURL(time.Now()), logger)
		return feedOpenedMsg{session: s}
	}
}

// waitForFeedEvent blocks on the session's event channel and returns the
// next message. A closed channel (session shut down) yields no message.
func waitForFeedEvent(s *feed.Session) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-s.Events()
		if !ok {
			return nil
		}
		return feedEventMsg(e)
	}
}

// record appends an event to the history log and fires notifications.
// Both sinks are optional and failures are never surfaced.
func (m Model) record(kind history.Kind, message string) {
	e := history.Event{Time: time.Now(), Kind: kind, Message: message}
	if m.hist != nil {
		if err := m.hist.Append(e); err != nil {
			m.logger.Warn().Err(err).Msg("history append failed")
		}
	}
	if m.notifier != nil {
		m.notifier.Hook(e)
	}
}
