// Package history persists controller events to an append-only JSONL file.
// One line per event; the file survives across runs so `detwatch history`
// can show what the controller observed and did.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Kind labels a recorded event.
type Kind string

const (
	KindStarted    Kind = "started"     // start action succeeded
	KindStopped    Kind = "stopped"     // stop action succeeded
	KindRunning    Kind = "running"     // poll observed a transition to running
	KindNotRunning Kind = "not_running" // poll observed a transition to stopped
	KindFeedUp     Kind = "feed_up"     // video feed connected
	KindFeedDown   Kind = "feed_down"   // video feed lost
	KindError      Kind = "error"       // action or server-reported failure
)

// Event is one recorded controller event.
type Event struct {
	Time    time.Time `json:"time"`
	Kind    Kind      `json:"kind"`
	Message string    `json:"message,omitempty"`
}

// fileName is the JSONL file kept inside the state directory.
const fileName = "history.jsonl"

// Log appends events to the history file. Safe for concurrent use.
type Log struct {
	mu   sync.Mutex
	file *os.File
}

// Open creates (or reopens) the history log in dir, creating dir as needed.
func Open(dir string) (*Log, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("history: mkdir %q: %w", dir, err)
	}
	path := filepath.Join(dir, fileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("history: open %q: %w", path, err)
	}
	return &Log{file: f}, nil
}

// Append serializes e as a JSON line and syncs it to disk.
func (l *Log) Append(e Event) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("history: marshal: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("history: write: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("history: sync: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// Read returns the recorded events in dir, oldest first. Malformed lines are
// skipped. If limit > 0, only the most recent limit events are returned.
// A missing file yields an empty slice, not an error.
func Read(dir string, limit int) ([]Event, error) {
	path := filepath.Join(dir, fileName)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history: open %q: %w", path, err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("history: read %q: %w", path, err)
	}

	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}
