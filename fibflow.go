// Package fibflow wires one trading signal, a price feed and the
// retracement exit engine into a complete run: events are journaled,
// optionally persisted and broadcast to notifiers.
package fibflow

import (
	"context"

	"github.com/raykavin/fibflow/core"
	"github.com/raykavin/fibflow/engine"
	"github.com/raykavin/fibflow/journal"
)

// Runner executes a single run of a single signal. Every runner owns an
// independent journal and engine; batch callers create one runner per run.
type Runner struct {
	signal   core.Signal
	feeder   core.Feeder
	storage  core.Storage
	notifier core.Notifier
	log      core.Logger

	journal   *journal.Journal
	eventFeed *journal.Feed

	engineOptions []engine.Option
}

// NewRunner creates a runner for the given signal and price feed.
func NewRunner(signal core.Signal, feeder core.Feeder, options ...Option) (*Runner, error) {
	if err := signal.Validate(); err != nil {
		return nil, err
	}

	runner := &Runner{
		signal:    signal,
		feeder:    feeder,
		log:       DefaultLog,
		eventFeed: journal.NewEventFeed(),
	}

	for _, option := range options {
		option(runner)
	}

	if runner.notifier != nil {
		runner.eventFeed.Subscribe(signal.Symbol, runner.notifier.OnEvent, false)
	}

	runner.journal = journal.New(journal.WithFeed(runner.eventFeed))

	return runner, nil
}

// Journal exposes the run's event log.
func (r *Runner) Journal() *journal.Journal {
	return r.journal
}

// Run executes the engine until a terminal state, persists the full event
// log and returns the result. The result is produced even when the run
// terminates early; persistence happens before the error is surfaced so
// partial results are never discarded.
func (r *Runner) Run(ctx context.Context) (*engine.Result, error) {
	eng, err := engine.New(r.signal, r.feeder, r.journal, r.log, r.engineOptions...)
	if err != nil {
		return nil, err
	}

	r.eventFeed.Start()
	defer r.eventFeed.Stop()

	if starter, ok := r.notifier.(core.NotifierWithStart); ok {
		starter.Start()
	}

	result, runErr := eng.Run(ctx)
	r.persist(ctx, result)

	if runErr != nil && r.notifier != nil {
		r.notifier.OnError(runErr)
	}

	return result, runErr
}

// persist writes every appended event to the configured storage.
func (r *Runner) persist(ctx context.Context, result *engine.Result) {
	if r.storage == nil {
		return
	}

	for i := range result.Events {
		if err := r.storage.CreateEvent(ctx, &result.Events[i]); err != nil {
			r.log.WithError(err).Error("runner/persist")
			return
		}
	}
}
