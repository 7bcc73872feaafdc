package core

import (
	"context"
	"time"
)

// Tick is a single price observation from a feed.
type Tick struct {
	Time  time.Time
	Price float64
}

// Feeder delivers price observations one at a time. Implementations decide
// where prices come from: a synthetic generator, a CSV replay or a live
// exchange stream. Next blocks until an observation is available, the
// context is done, or the feed is exhausted (ErrFeedClosed).
type Feeder interface {
	Next(ctx context.Context) (Tick, error)
}

// ReentryPolicy decides whether a just-executed partial exit should be
// partially rebuilt, modelling a rejection/retest at the target price.
// Deterministic implementations are used in tests; the default policy is a
// Bernoulli draw.
type ReentryPolicy interface {
	ShouldReenter(price, target float64, isLong bool) bool
}

// ReentryFunc adapts a plain function to the ReentryPolicy interface.
type ReentryFunc func(price, target float64, isLong bool) bool

// ShouldReenter implements ReentryPolicy.
func (f ReentryFunc) ShouldReenter(price, target float64, isLong bool) bool {
	return f(price, target, isLong)
}

// Notifier receives run notifications and trade events for external
// broadcast channels.
type Notifier interface {
	Notify(string)
	OnEvent(event TradeEvent)
	OnError(err error)
}

// NotifierWithStart is a notifier that needs its own receive loop.
type NotifierWithStart interface {
	Notifier
	Start()
}
