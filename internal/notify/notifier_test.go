package notify

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/perimetra/detwatch/internal/history"
)

// captureServer starts an httptest.Server that records incoming requests.
// It returns the server and a function to collect all captured requests.
func captureServer(t *testing.T) (*httptest.Server, func() []capturedReq) {
	t.Helper()
	var mu sync.Mutex
	var reqs []capturedReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, capturedReq{
			method:      r.Method,
			body:        string(body),
			contentType: r.Header.Get("Content-Type"),
			title:       r.Header.Get("X-Title"),
		})
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []capturedReq {
		mu.Lock()
		defer mu.Unlock()
		out := make([]capturedReq, len(reqs))
		copy(out, reqs)
		return out
	}
}

type capturedReq struct {
	method      string
	body        string
	contentType string
	title       string
}

// waitForRequests polls until count requests are captured or the deadline is reached.
func waitForRequests(t *testing.T, collect func() []capturedReq, count int) []capturedReq {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := collect(); len(got) >= count {
			return got
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d request(s)", count)
	return nil
}

func TestHook_OnStart(t *testing.T) {
	srv, collect := captureServer(t)

	n := New(srv.URL, "cam-hall", true, false, false)
	n.Hook(history.Event{Kind: history.KindStarted, Message: "Detection started"})

	reqs := waitForRequests(t, collect, 1)
	r := reqs[0]
	if r.method != http.MethodPost {
		t.Errorf("method = %q, want POST", r.method)
	}
	if r.body != "Detection started" {
		t.Errorf("body = %q, want %q", r.body, "Detection started")
	}
	if r.contentType != "text/plain" {
		t.Errorf("Content-Type = %q, want text/plain", r.contentType)
	}
	if r.title != "cam-hall" {
		t.Errorf("X-Title = %q, want cam-hall", r.title)
	}
}

func TestHook_OnStart_Disabled(t *testing.T) {
	srv, collect := captureServer(t)

	n := New(srv.URL, "", false, true, true)
	n.Hook(history.Event{Kind: history.KindStarted})

	// Give the goroutine time to fire (it shouldn't, but we need to be sure).
	time.Sleep(50 * time.Millisecond)
	if got := collect(); len(got) != 0 {
		t.Errorf("expected no requests, got %d", len(got))
	}
}

func TestHook_OnStop(t *testing.T) {
	srv, collect := captureServer(t)

	n := New(srv.URL, "", false, true, false)
	n.Hook(history.Event{Kind: history.KindStopped})

	reqs := waitForRequests(t, collect, 1)
	if reqs[0].body != "Detection stopped" {
		t.Errorf("body = %q, want fallback text", reqs[0].body)
	}
	if reqs[0].title != "detwatch" {
		t.Errorf("X-Title = %q, want default title", reqs[0].title)
	}
}

func TestHook_OnError(t *testing.T) {
	srv, collect := captureServer(t)

	n := New(srv.URL, "", false, false, true)
	n.Hook(history.Event{Kind: history.KindError, Message: "Failed to start detection"})

	reqs := waitForRequests(t, collect, 1)
	if reqs[0].body != "Failed to start detection" {
		t.Errorf("body = %q", reqs[0].body)
	}
}

func TestHook_FeedDownCountsAsError(t *testing.T) {
	srv, collect := captureServer(t)

	n := New(srv.URL, "", false, false, true)
	n.Hook(history.Event{Kind: history.KindFeedDown})

	reqs := waitForRequests(t, collect, 1)
	if reqs[0].body != "feed_down" {
		t.Errorf("body = %q", reqs[0].body)
	}
}

func TestHook_IgnoresPollTransitions(t *testing.T) {
	srv, collect := captureServer(t)

	n := New(srv.URL, "", true, true, true)
	n.Hook(history.Event{Kind: history.KindRunning})
	n.Hook(history.Event{Kind: history.KindNotRunning})

	time.Sleep(50 * time.Millisecond)
	if got := collect(); len(got) != 0 {
		t.Errorf("expected no requests for poll transitions, got %d", len(got))
	}
}
