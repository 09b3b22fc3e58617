package auditmem

import (
	"context"
	"sync"
	"time"

	"github.com/NikhilKottoli/ImpactChain-sub001/internal/domain"
	"github.com/NikhilKottoli/ImpactChain-sub001/internal/usecase"
)

// Log is an append-only in-memory audit sink.
type Log struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func New() *Log {
	return &Log{}
}

func (l *Log) Append(_ context.Context, event domain.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

// Events returns a snapshot in append order.
func (l *Log) Events() []domain.AuditEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.AuditEvent, len(l.events))
	copy(out, l.events)
	return out
}

var _ usecase.AuditSink = (*Log)(nil)
