// Package agentlog keeps a bounded record of agent state transitions for
// the dashboard. It is advisory only and never consulted for control flow.
package agentlog

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	Info    Severity = "INFO"
	Warning Severity = "WARNING"
	Action  Severity = "ACTION"
	Thought Severity = "THOUGHT"
)

type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Type      Severity  `json:"type"`
}

// Log is an append-only ring: past capacity, the oldest entries are evicted.
type Log struct {
	mu       sync.Mutex
	capacity int
	entries  []Entry
	now      func() time.Time
}

const DefaultCapacity = 50

func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity, now: time.Now}
}

func (l *Log) Append(severity Severity, message string) Entry {
	e := Entry{
		ID:        "log_" + uuid.NewString(),
		Timestamp: l.now(),
		Message:   message,
		Type:      severity,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, e)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
	return e
}

// Entries returns a copy, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
