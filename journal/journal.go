// Package journal provides the append-only trade event log of a run and a
// pub/sub feed for broadcasting appended events to external consumers.
package journal

import (
	"sync"

	"github.com/raykavin/fibflow/core"
)

// Journal is the ordered, append-only trade event log of a single run.
// Append is the sole mutator; events are never removed or modified.
type Journal struct {
	mu     sync.RWMutex
	events []core.TradeEvent
	feed   *Feed
}

// Option is a functional option for configuring a Journal
type Option func(*Journal)

// WithFeed attaches a feed that republishes every appended event.
func WithFeed(feed *Feed) Option {
	return func(j *Journal) {
		j.feed = feed
	}
}

// New creates an empty journal
func New(options ...Option) *Journal {
	journal := &Journal{events: make([]core.TradeEvent, 0)}
	for _, option := range options {
		option(journal)
	}
	return journal
}

// Append adds an event at the end of the log and publishes it to the
// attached feed, if any.
func (j *Journal) Append(event core.TradeEvent) {
	j.mu.Lock()
	j.events = append(j.events, event)
	j.mu.Unlock()

	if j.feed != nil {
		j.feed.Publish(event)
	}
}

// Events returns a snapshot of the log in append order. The snapshot is
// independent of later appends, so consumers can iterate it repeatedly.
func (j *Journal) Events() []core.TradeEvent {
	j.mu.RLock()
	defer j.mu.RUnlock()

	events := make([]core.TradeEvent, len(j.events))
	copy(events, j.events)
	return events
}

// Len returns the number of appended events.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.events)
}

// Last returns the most recent event and false when the log is empty.
func (j *Journal) Last() (core.TradeEvent, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if len(j.events) == 0 {
		return core.TradeEvent{}, false
	}
	return j.events[len(j.events)-1], true
}
