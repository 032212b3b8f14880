package tracking

import (
	"context"
	"time"

	"github.com/alinaryabtsev/context-experiment-tools/internal/timeutil"
)

// Source supplies the rows of one kind for the UTC calendar day
// containing day.
type Source interface {
	Events(ctx context.Context, kind Kind, day time.Time) ([]Event, error)
}

// MemorySource serves events held in memory. Day filtering happens
// client-side in UTC; events are returned in insertion order.
type MemorySource struct {
	events []Event
}

// NewMemorySource returns a MemorySource holding events.
func NewMemorySource(events ...Event) *MemorySource {
	return &MemorySource{events: append([]Event(nil), events...)}
}

// Add appends events.
func (m *MemorySource) Add(events ...Event) {
	m.events = append(m.events, events...)
}

// Events implements Source.
func (m *MemorySource) Events(
	ctx context.Context, kind Kind, day time.Time,
) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Event
	for _, e := range m.events {
		if e.Kind != kind {
			continue
		}
		sec := timeutil.FromMillis(e.Timestamp)
		if !timeutil.SameDay(day, sec, time.UTC) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
