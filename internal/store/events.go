package store

import (
	"fmt"
	"sync"
	"time"
)

// EventLog is a bounded rolling log of human-readable pipeline events
// (rejections, entries, exits) surfaced on the reporting interface. It is a
// display surface only; nothing parses these lines back.
type EventLog struct {
	mu    sync.Mutex
	lines []string
	limit int
}

// NewEventLog creates a log retaining up to limit lines.
func NewEventLog(limit int) *EventLog {
	if limit <= 0 {
		limit = 200
	}
	return &EventLog{limit: limit}
}

// Append records a formatted event line, evicting the oldest on overflow.
func (l *EventLog) Append(format string, args ...any) {
	line := fmt.Sprintf("%s %s", time.Now().UTC().Format(time.TimeOnly), fmt.Sprintf(format, args...))
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
	if overflow := len(l.lines) - l.limit; overflow > 0 {
		l.lines = append([]string(nil), l.lines[overflow:]...)
	}
}

// Recent returns up to n most recent lines, newest last.
func (l *EventLog) Recent(n int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 || n > len(l.lines) {
		n = len(l.lines)
	}
	out := make([]string, n)
	copy(out, l.lines[len(l.lines)-n:])
	return out
}
