package memory

import (
	"context"
	"sync"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	"github.com/oksasatya/go-article-feed/internal/domain/repository"
)

// EventRecorder is an EventPublisher that keeps every event it is given.
type EventRecorder struct {
	mu     sync.Mutex
	events []entity.Event
}

func NewEventRecorder() *EventRecorder { return &EventRecorder{} }

func (r *EventRecorder) Publish(_ context.Context, e entity.Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

func (r *EventRecorder) Events() []entity.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.Event{}, r.events...)
}

// OfType returns the recorded events with the given type.
func (r *EventRecorder) OfType(t entity.EventType) []entity.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// AuditLog is an AuditRepository kept in memory.
type AuditLog struct {
	mu      sync.Mutex
	entries []entity.AuditEntry
}

func NewAuditLog() *AuditLog { return &AuditLog{} }

func (l *AuditLog) Record(_ context.Context, e entity.AuditEntry) error {
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
	return nil
}

// Actions returns the recorded actions in order.
func (l *AuditLog) Actions() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.Action)
	}
	return out
}

func (l *AuditLog) Entries() []entity.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]entity.AuditEntry{}, l.entries...)
}

var (
	_ repository.EventPublisher  = (*EventRecorder)(nil)
	_ repository.AuditRepository = (*AuditLog)(nil)
)
