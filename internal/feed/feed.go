// Package feed watches the detection service's live MJPEG stream.
//
// A Session is the terminal stand-in for the web client's stream element:
// it opens GET /video_feed, reads multipart frames, and reports progress as
// events on a channel. A session ends at the first error; reconnecting is
// the caller's decision (the TUI retries on a fixed delay).
package feed

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Kind classifies a feed event.
type Kind int

const (
	// Connected fires once when the stream responds and frames can follow.
	Connected Kind = iota
	// Frame fires after each complete frame is read.
	Frame
	// Down fires once when the stream fails or ends; the session is over.
	Down
)

// Event is one observation from a feed session.
type Event struct {
	Kind   Kind
	Frames int       // total frames read this session
	Bytes  int64     // total payload bytes read this session
	At     time.Time // when the event occurred
	Err    error     // set for Down
}

// Session is a single connection attempt to the video feed. Close cancels
// the underlying request; the event channel is closed when the session ends.
type Session struct {
	events chan Event
	cancel context.CancelFunc
}

// Events returns the session's event channel. It is closed after the final
// event (Down, or nothing further if the session was Closed).
func (s *Session) Events() <-chan Event { return s.events }

// Close aborts the session. Safe to call more than once.
func (s *Session) Close() { s.cancel() }

// Open starts streaming from url in a background goroutine. httpc must not
// carry a timeout: the stream is unbounded by design.
func Open(ctx context.Context, httpc *http.Client, url string, logger zerolog.Logger) *Session {
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		events: make(chan Event, 16),
		cancel: cancel,
	}
	go s.run(ctx, httpc, url, logger.With().Str("component", "feed").Logger())
	return s
}

func (s *Session) run(ctx context.Context, httpc *http.Client, url string, logger zerolog.Logger) {
	defer close(s.events)

	err := s.stream(ctx, httpc, url)
	if ctx.Err() != nil {
		// Closed by the caller; not a failure.
		return
	}
	logger.Warn().Err(err).Str("url", url).Msg("feed down")
	s.send(ctx, Event{Kind: Down, At: time.Now(), Err: err})
}

// stream connects and reads frames until the stream errors or ends.
// It always returns a non-nil error: the feed has no normal end.
func (s *Session) stream(ctx context.Context, httpc *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("feed: build request: %w", err)
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return fmt.Errorf("feed: connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed: server returned %d", resp.StatusCode)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return fmt.Errorf("feed: parse content type: %w", err)
	}
	if !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		return fmt.Errorf("feed: unexpected content type %q", mediaType)
	}

	s.send(ctx, Event{Kind: Connected, At: time.Now()})

	reader := multipart.NewReader(resp.Body, params["boundary"])
	frames := 0
	var total int64
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return fmt.Errorf("feed: stream ended")
		}
		if err != nil {
			return fmt.Errorf("feed: read part: %w", err)
		}

		n, err := io.Copy(io.Discard, part)
		if err != nil {
			return fmt.Errorf("feed: read frame: %w", err)
		}
		part.Close()

		frames++
		total += n
		s.send(ctx, Event{Kind: Frame, Frames: frames, Bytes: total, At: time.Now()})
	}
}

// send delivers an event unless the session has been cancelled.
func (s *Session) send(ctx context.Context, e Event) {
	select {
	case s.events <- e:
	case <-ctx.Done():
	}
}
