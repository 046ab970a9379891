package tui

import (
	"time"

	"github.com/perimetra/detwatch/internal/detect"
	"github.com/perimetra/detwatch/internal/feed"
)

// pollTickMsg fires on the fixed status poll cadence.
type pollTickMsg time.Time

// clockTickMsg is sent every second for the header clock.
type clockTickMsg time.Time

// statusMsg carries a successful status poll result.
type statusMsg detect.Status

// statusErrMsg carries a failed status poll. The poll failure is logged
// only; the displayed status is left untouched.
type statusErrMsg struct{ err error }

// startDoneMsg carries the outcome of a start action.
type startDoneMsg struct {
	message string
	err     error
}

// stopDoneMsg carries the outcome of a stop action.
type stopDoneMsg struct{ err error }

// voiceTestDoneMsg carries the outcome of the voice alert self test.
type voiceTestDoneMsg struct {
	message string
	err     error
}

// feedOpenedMsg delivers a freshly opened feed session.
type feedOpenedMsg struct{ session *feed.Session }

// feedEventMsg wraps a feed.Event as a bubbletea message.
type feedEventMsg feed.Event

// feedRetryMsg fires when the feed reconnect delay elapses.
type feedRetryMsg time.Time
