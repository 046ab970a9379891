// Package notify sends fire-and-forget HTTP notifications for controller
// events. The primary use case is ntfy.sh, but any HTTP webhook works.
package notify

import (
	"net/http"
	"strings"
	"time"

	"github.com/perimetra/detwatch/internal/history"
)

// Notifier posts plain-text HTTP notifications for selected events.
type Notifier struct {
	url     string
	title   string
	onStart bool
	onStop  bool
	onError bool
	client  *http.Client
}

// New creates a Notifier. title is used as the X-Title header; if empty,
// "detwatch" is used instead.
func New(notifURL, title string, onStart, onStop, onError bool) *Notifier {
	if title == "" {
		title = "detwatch"
	}
	return &Notifier{
		url:     notifURL,
		title:   title,
		onStart: onStart,
		onStop:  onStop,
		onError: onError,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Hook fires an asynchronous POST for events that match the configured
// notification flags. It never blocks the caller.
func (n *Notifier) Hook(e history.Event) {
	switch e.Kind {
	case history.KindStarted:
		if n.onStart {
			go n.post(message(e, "Detection started"))
		}
	case history.KindStopped:
		if n.onStop {
			go n.post(message(e, "Detection stopped"))
		}
	case history.KindError, history.KindFeedDown:
		if n.onError {
			go n.post(message(e, string(e.Kind)))
		}
	}
}

// message prefers the event's own text over the fallback.
func message(e history.Event, fallback string) string {
	if e.Message != "" {
		return e.Message
	}
	return fallback
}

// post sends a plain-text POST to the configured URL. Errors are silently
// discarded so notification failures never disturb the controller.
func (n *Notifier) post(msg string) {
	req, err := http.NewRequest(http.MethodPost, n.url, strings.NewReader(msg))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("X-Title", n.title)
	resp, err := n.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}
