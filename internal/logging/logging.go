package logging

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

// Logger writes one JSON object per line. Every entry carries ts, level and msg.
// It is safe for concurrent use by multiple goroutines.
type Logger struct {
	mu  sync.Mutex
	enc *json.Encoder
	loc *time.Location
}

// New returns a Logger writing to w with timestamps rendered in loc.
func New(w io.Writer, loc *time.Location) *Logger {
	if loc == nil {
		loc = time.UTC
	}
	return &Logger{enc: json.NewEncoder(w), loc: loc}
}

// Stdout returns a Logger writing to standard output.
func Stdout(loc *time.Location) *Logger {
	return New(os.Stdout, loc)
}

// Location returns the timezone used for timestamps.
func (l *Logger) Location() *time.Location {
	return l.loc
}

// Info logs at info level.
func (l *Logger) Info(msg string, fields map[string]any) {
	l.Log("info", msg, fields)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, fields map[string]any) {
	l.Log("warn", msg, fields)
}

// Error logs at error level. A non-nil err is attached under "error".
func (l *Logger) Error(msg string, err error, fields map[string]any) {
	entry := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		entry[k] = v
	}
	if err != nil {
		entry["error"] = err.Error()
	}
	l.Log("error", msg, entry)
}

// Log writes a single entry. Fields may override neither ts nor level.
func (l *Logger) Log(level, msg string, fields map[string]any) {
	entry := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		entry[k] = v
	}
	entry["ts"] = time.Now().In(l.loc).Format(time.RFC3339Nano)
	entry["level"] = level
	if msg != "" {
		entry["msg"] = msg
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.enc.Encode(entry)
}

// Discard returns a Logger that drops everything; handy in tests.
func Discard() *Logger {
	return New(io.Discard, time.UTC)
}
