package fibflow

import (
	"github.com/raykavin/fibflow/core"
	"github.com/raykavin/fibflow/engine"
	"github.com/raykavin/fibflow/journal"
)

// Option is a functional option for configuring a Runner instance
type Option func(*Runner)

// WithLogger replaces the default logger.
func WithLogger(log core.Logger) Option {
	return func(runner *Runner) {
		runner.log = log
	}
}

// WithStorage persists the run's trade events, e.g. to BuntDB or SQLite.
func WithStorage(storage core.Storage) Option {
	return func(runner *Runner) {
		runner.storage = storage
	}
}

// WithNotifier registers a notifier for trade events and run errors,
// currently only telegram is supported.
func WithNotifier(notifier core.Notifier) Option {
	return func(runner *Runner) {
		runner.notifier = notifier
	}
}

// WithEventSubscription subscribes a consumer to the run's trade events.
// When onlyExits is true, entry and re-entry events are skipped.
func WithEventSubscription(consumer journal.FeedConsumer, onlyExits bool) Option {
	return func(runner *Runner) {
		runner.eventFeed.Subscribe(runner.signal.Symbol, consumer, onlyExits)
	}
}

// WithEngineOptions forwards options to the underlying engine.
func WithEngineOptions(options ...engine.Option) Option {
	return func(runner *Runner) {
		runner.engineOptions = append(runner.engineOptions, options...)
	}
}
