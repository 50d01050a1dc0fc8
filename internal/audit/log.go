// Package audit records ingestion and query events for operator review.
package audit

import (
	"sync"
	"time"

	"github.com/torii-sec/mamori/internal/models"
)

// DefaultCapacity bounds the in-memory event ring.
const DefaultCapacity = 1000

// Sink receives every recorded entry, typically for persistent archival.
// Sink failures must not affect the in-memory log.
type Sink interface {
	Write(entry models.AuditEntry) error
	Close() error
}

// Log is a bounded in-memory event log. When the capacity is exceeded the
// oldest entries are dropped.
type Log struct {
	mu      sync.RWMutex
	entries []models.AuditEntry
	cap     int
	sink    Sink
}

// Option configures a Log.
type Option func(*Log)

// WithCapacity overrides the ring capacity.
func WithCapacity(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.cap = n
		}
	}
}

// WithSink attaches a persistent sink that mirrors every entry.
func WithSink(s Sink) Option {
	return func(l *Log) { l.sink = s }
}

// NewLog creates an audit log.
func NewLog(opts ...Option) *Log {
	l := &Log{cap: DefaultCapacity}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends an entry with the current timestamp.
func (l *Log) Record(severity models.Severity, message string) {
	entry := models.AuditEntry{
		Time:     time.Now(),
		Message:  message,
		Severity: severity,
	}
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.cap {
		l.entries = l.entries[len(l.entries)-l.cap:]
	}
	sink := l.sink
	l.mu.Unlock()

	if sink != nil {
		_ = sink.Write(entry)
	}
}

// Recent returns up to n entries, most recent first. n <= 0 returns all.
func (l *Log) Recent(n int) []models.AuditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := len(l.entries)
	if n <= 0 || n > total {
		n = total
	}
	out := make([]models.AuditEntry, n)
	for i := 0; i < n; i++ {
		out[i] = l.entries[total-1-i]
	}
	return out
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Clear discards all retained entries. The sink's archive is untouched.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Close releases the attached sink, if any.
func (l *Log) Close() error {
	l.mu.Lock()
	sink := l.sink
	l.sink = nil
	l.mu.Unlock()
	if sink != nil {
		return sink.Close()
	}
	return nil
}
