package core

import (
	"context"
	"slices"
	"time"
)

// EventFilter defines a function type for filtering stored trade events
type EventFilter func(event TradeEvent) bool

// Storage defines the interface for trade event persistence
type Storage interface {
	// CreateEvent stores a new trade event
	CreateEvent(ctx context.Context, event *TradeEvent) error

	// Events retrieves trade events based on provided filters
	Events(ctx context.Context, filters ...EventFilter) ([]*TradeEvent, error)
}

func WithActionIn(actions ...ActionType) EventFilter {
	return func(event TradeEvent) bool {
		return slices.Contains(actions, event.Action)
	}
}

func WithAction(action ActionType) EventFilter {
	return func(event TradeEvent) bool {
		return event.Action == action
	}
}

func WithSymbol(symbol string) EventFilter {
	return func(event TradeEvent) bool {
		return event.Symbol == symbol
	}
}

func WithFibLevel(label string) EventFilter {
	return func(event TradeEvent) bool {
		return event.FibLevel == label
	}
}

func WithTimestampBeforeOrEqual(t time.Time) EventFilter {
	return func(event TradeEvent) bool {
		return !event.Timestamp.Time().After(t)
	}
}
