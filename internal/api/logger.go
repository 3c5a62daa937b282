package api

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// Logger records every HTTP exchange the client makes.
// Implementations must be safe for concurrent use.
type Logger interface {
	LogRequest(r RequestRecord)
}

// RequestRecord describes one finished request. Request and response
// bodies are never recorded since they may carry credentials.
type RequestRecord struct {
	Method   string
	Path     string
	Status   int // 0 when no response was received
	Duration time.Duration
	Err      error
	At       time.Time
}

// NopLogger discards all records.
type NopLogger struct{}

// LogRequest is a no-op.
func (NopLogger) LogRequest(RequestRecord) {}

type logEntry struct {
	Timestamp  string  `json:"ts"`
	Method     string  `json:"method"`
	Path       string  `json:"path"`
	Status     int     `json:"status,omitempty"`
	DurationMS float64 `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
}

// FileLogger writes one JSON object per request to an io.Writer (JSONL).
type FileLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewFileLogger creates a FileLogger that writes to the given writer.
func NewFileLogger(w io.Writer) *FileLogger {
	return &FileLogger{w: w}
}

// LogRequest writes a JSON line for r.
func (l *FileLogger) LogRequest(r RequestRecord) {
	ts := r.At
	if ts.IsZero() {
		ts = time.Now()
	}

	entry := logEntry{
		Timestamp:  ts.UTC().Format(time.RFC3339Nano),
		Method:     r.Method,
		Path:       r.Path,
		Status:     r.Status,
		DurationMS: float64(r.Duration.Microseconds()) / 1000,
	}
	if r.Err != nil {
		entry.Error = r.Err.Error()
	}

	l.write(entry)
}

// write serialises an entry as a single line. Serialisation errors are
// dropped; logging never fails a request.
func (l *FileLogger) write(entry logEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s\n", data)
}
