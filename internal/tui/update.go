package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/perimetra/detwatch/internal/detect"
	"github.com/perimetra/detwatch/internal/feed"
	"github.com/perimetra/detwatch/internal/history"
)

// Update handles incoming messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.events = m.events.SetSize(logDims(msg.Width, msg.Height))
		return m, nil

	case pollTickMsg:
		// The poll keeps its fixed cadence no matter what else is in flight.
		return m, tea.Batch(checkStatus(m.client), pollTick(m.pollInterval))

	case clockTickMsg:
		m.now = time.Time(msg)
		return m, clockTick()

	case statusMsg:
		return m.handleStatus(detect.Status(msg)), nil

	case statusErrMsg:
		// Logged only. The previously displayed status must not change, and
		// the next poll tick will try again regardless.
		m.logger.Warn().Err(msg.err).Msg("status poll failed")
		m = m.appendEvent(dimStyle, "status poll failed: "+msg.err.Error())
		return m, nil

	case startDoneMsg:
		return m.handleStartDone(msg)

	case stopDoneMsg:
		return m.handleStopDone(msg)

	case voiceTestDoneMsg:
		return m.handleVoiceTestDone(msg), nil

	case feedOpenedMsg:
		return m.handleFeedOpened(msg)

	case feedEventMsg:
		return m.handleFeedEvent(feed.Event(msg))

	case feedRetryMsg:
		m = m.appendEvent(dimStyle, "reconnecting video feed")
		return m, m.openFeed()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.session != nil {
			m.session.Close()
		}
		return m, tea.Quit

	case "s":
		// Start is enabled exactly when detection is not known to run.
		if m.state == StateRunning {
			return m, nil
		}
		m.banner = ""
		m = m.appendEvent(infoStyle, "start requested")
		return m, startDetection(m.client)

	case "x":
		// Stop is enabled exactly when detection runs.
		if m.state != StateRunning {
			return m, nil
		}
		m = m.appendEvent(infoStyle, "stop requested")
		return m, stopDetection(m.client)

	case "t":
		m = m.appendEvent(infoStyle, "voice alert test requested")
		return m, testVoiceAlert(m.client)

	case "r":
		if m.session != nil {
			m.session.Close()
		}
		m = m.appendEvent(infoStyle, "manual feed reload")
		return m, m.openFeed()

	case "f":
		m.events = m.events.ToggleFollow()
		return m, nil
	}

	var cmd tea.Cmd
	m.events, cmd = m.events.Update(msg)
	return m, cmd
}

// handleStatus applies a successful poll result. Whichever response resolves
// last wins the display; there is no staleness check.
func (m Model) handleStatus(st detect.Status) Model {
	next := StateStopped
	if st.Running {
		next = StateRunning
	}
	if next == m.state {
		return m
	}

	m.state = next
	if st.Running {
		m.logger.Info().Msg("detection running")
		m = m.appendEvent(okStyle, "detection is running")
		m.record(history.KindRunning, "")
	} else {
		m.logger.Info().Msg("detection not running")
		m = m.appendEvent(dimStyle, "detection is not running")
		m.record(history.KindNotRunning, "")
	}
	return m
}

func (m Model) handleStartDone(msg startDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// A server-reported failure surfaces the server's own message;
		// a transport failure surfaces the error text. No feed reload.
		var serverErr *detect.ServerError
		if errors.As(msg.err, &serverErr) {
			m.banner = serverErr.Message
		} else {
			m.banner = msg.err.Error()
		}
		m.logger.Error().Err(msg.err).Msg("start failed")
		m = m.appendEvent(errStyle, "start failed: "+msg.err.Error())
		m.record(history.KindError, m.banner)
		return m, nil
	}

	m.banner = ""
	m.logger.Info().Str("message", msg.message).Msg("start accepted")
	m = m.appendEvent(okStyle, "start accepted: "+msg.message)
	m.record(history.KindStarted, msg.message)

	// Reload the feed with a fresh cache-bust and re-check status now
	// rather than waiting for the next poll tick.
	if m.session != nil {
		m.session.Close()
	}
	return m, tea.Batch(m.openFeed(), checkStatus(m.client))
}

func (m Model) handleStopDone(msg stopDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// Unlike start, stop never surfaces the underlying text.
		m.banner = stopFailedBanner
		m.logger.Error().Err(msg.err).Msg("stop failed")
		m = m.appendEvent(errStyle, "stop failed: "+msg.err.Error())
		m.record(history.KindError, stopFailedBanner)
		return m, nil
	}

	m.logger.Info().Msg("stop accepted")
	m = m.appendEvent(okStyle, "stop accepted")
	m.record(history.KindStopped, "")
	return m, checkStatus(m.client)
}

func (m Model) handleVoiceTestDone(msg voiceTestDoneMsg) Model {
	if msg.err != nil {
		var serverErr *detect.ServerError
		if errors.As(msg.err, &serverErr) {
			m.banner = serverErr.Message
		} else {
			m.banner = msg.err.Error()
		}
		m.logger.Error().Err(msg.err).Msg("voice alert test failed")
		m = m.appendEvent(errStyle, "voice alert test failed: "+msg.err.Error())
		m.record(history.KindError, m.banner)
		return m
	}
	m = m.appendEvent(okStyle, "voice alert test: "+msg.message)
	return m
}

func (m Model) handleFeedOpened(msg feedOpenedMsg) (tea.Model, tea.Cmd) {
	// A newer session wins the display; overlapping reload chains are
	// possible when a manual start races a pending retry.
	if m.session != nil && m.session != msg.session {
		m.session.Close()
	}
	m.session = msg.session
	m.feedUp = false
	m.frames = 0
	m.feedBytes = 0
	return m, waitForFeedEvent(msg.session)
}

func (m Model) handleFeedEvent(e feed.Event) (tea.Model, tea.Cmd) {
	switch e.Kind {
	case feed.Connected:
		m.feedUp = true
		if m.banner == feedErrorBanner {
			m.banner = ""
		}
		m.logger.Info().Msg("feed connected")
		m = m.appendEvent(okStyle, "video feed connected")
		m.record(history.KindFeedUp, "")

	case feed.Frame:
		m.frames = e.Frames
		m.feedBytes = e.Bytes
		m.lastFrameAt = e.At

	case feed.Down:
		m.feedUp = false
		m.banner = feedErrorBanner
		m = m.appendEvent(errStyle, "video feed lost: "+e.Err.Error())
		m.record(history.KindFeedDown, e.Err.Error())
		// One retry per failure, after a fixed delay, forever.
		return m, feedRetryTick(m.feedRetryDelay)
	}

	return m, waitForFeedEvent(m.session)
}

// appendEvent adds a timestamped line to the on-screen event log.
func (m Model) appendEvent(style lipgloss.Style, text string) Model {
	ts := timestampStyle.Render(fmt.Sprintf("[%s]", time.Now().Format("15:04:05")))
	m.events = m.events.AppendLine(ts + "  " + style.Render(text))
	return m
}
