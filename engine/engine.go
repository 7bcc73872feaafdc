// Package engine implements the retracement exit state machine: it pulls
// prices from a feed, fires partial exits as ladder targets are crossed,
// applies re-entries on rejection and terminates on a boundary hit,
// position exhaustion or budget expiry.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/raykavin/fibflow/core"
	"github.com/raykavin/fibflow/journal"
	"github.com/raykavin/fibflow/level"
	"github.com/raykavin/fibflow/position"
)

// Status represents the current state of a run
type Status string

// Run states; all except StatusRunning are terminal
const (
	StatusRunning             Status = "running"
	StatusStoppedByStopLoss   Status = "stopped_by_stop_loss"
	StatusStoppedByTakeProfit Status = "stopped_by_take_profit"
	StatusExhausted           Status = "exhausted"
	StatusTimedOut            Status = "timed_out"
	StatusCancelled           Status = "cancelled"
)

// Default run parameters
const (
	DefaultMaxTime      = time.Hour
	DefaultTickInterval = time.Second
)

// reentryFraction is the share of an exited quantity added back on a
// rejection/retest.
const reentryFraction = 0.5

// Engine drives one run of one signal. It owns the position ledger and the
// journal exclusively for the duration of the run; concurrent runs must use
// independent engines.
type Engine struct {
	signal  core.Signal
	cfg     level.Config
	ladder  []level.Level
	ledger  *position.Ledger
	feeder  core.Feeder
	journal *journal.Journal
	reentry core.ReentryPolicy
	log     core.Logger

	maxTime  time.Duration
	interval time.Duration
	clock    func() time.Time

	status Status
}

// Option is a functional option for configuring an Engine
type Option func(*Engine)

// WithMaxTime sets the wall-clock budget of the run.
func WithMaxTime(maxTime time.Duration) Option {
	return func(e *Engine) {
		e.maxTime = maxTime
	}
}

// WithTickInterval sets the cooperative suspension between price
// observations. Zero disables the suspension, which is what backtests use.
func WithTickInterval(interval time.Duration) Option {
	return func(e *Engine) {
		e.interval = interval
	}
}

// WithReentryPolicy replaces the default probabilistic re-entry decision.
func WithReentryPolicy(policy core.ReentryPolicy) Option {
	return func(e *Engine) {
		e.reentry = policy
	}
}

// WithLadderConfig replaces the default retracement ladder configuration.
func WithLadderConfig(cfg level.Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithClock replaces the time source used for the entry timestamp and the
// run budget. Tests use a stub clock.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// New validates the signal, computes the exit ladder and creates an engine
// ready to run. A validation failure means the run never starts.
func New(signal core.Signal, feeder core.Feeder, jrn *journal.Journal, log core.Logger, options ...Option) (*Engine, error) {
	if err := signal.Validate(); err != nil {
		return nil, err
	}

	engine := &Engine{
		signal:   signal,
		cfg:      level.DefaultConfig(),
		feeder:   feeder,
		journal:  jrn,
		log:      log,
		maxTime:  DefaultMaxTime,
		interval: DefaultTickInterval,
		clock:    time.Now,
	}

	for _, option := range options {
		option(engine)
	}

	ladder, err := level.Compute(engine.cfg, signal.RangeLow, signal.RangeHigh, signal.IsLong())
	if err != nil {
		return nil, err
	}

	engine.ladder = ladder
	engine.ledger = position.New(signal.Quantity, len(ladder))
	engine.status = StatusRunning

	if engine.reentry == nil {
		engine.reentry = NewProbabilisticReentry(DefaultReentryProbability, time.Now().UnixNano())
	}

	return engine, nil
}

// Status returns the current run status
func (e *Engine) Status() Status { return e.status }

// Ladder returns the computed exit ladder
func (e *Engine) Ladder() []level.Level { return e.ladder }

// Run executes the state machine until a terminal state is reached.
// A result is always returned, even on early termination; the error is
// non-nil only for feed failures and internal invariant violations, and in
// both cases the result still carries everything appended so far.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	startedAt := e.clock()

	e.log.WithFields(map[string]any{
		"symbol": e.signal.Symbol,
		"side":   e.signal.Side,
		"qty":    e.signal.Quantity,
	}).Info("Run started")

	e.append(startedAt, e.signal.Quantity, e.signal.Entry, core.ActionEntry, core.LevelInitial)

	runErr := e.loop(ctx, startedAt)
	result := e.buildResult(startedAt)

	if runErr != nil {
		e.log.WithError(runErr).Error("Run terminated")
		return result, runErr
	}

	e.log.Infof("Run finished: %s, remaining %f of %f",
		e.status, result.RemainingQuantity, result.OriginalQuantity)
	return result, nil
}

// loop is the per-tick transition cycle. It returns an error only when the
// run ends as a defect or feed failure; regular terminal states return nil.
func (e *Engine) loop(ctx context.Context, startedAt time.Time) error {
	for {
		// Cancellation is observed between ticks only
		if ctx.Err() != nil {
			e.status = StatusCancelled
			return nil
		}

		tick, err := e.feeder.Next(ctx)
		if err != nil {
			return e.stopOnFeedError(err)
		}

		if e.checkStopLoss(tick) || e.checkTakeProfit(tick) {
			return nil
		}

		if err := e.checkLadder(tick); err != nil {
			e.status = StatusCancelled
			return err
		}

		if e.ledger.Exhausted() {
			e.status = StatusExhausted
			return nil
		}

		if e.clock().Sub(startedAt) >= e.maxTime {
			e.status = StatusTimedOut
			return nil
		}

		if !e.suspend(ctx) {
			e.status = StatusCancelled
			return nil
		}
	}
}

// stopOnFeedError maps a failed price read onto a terminal state. Retrying
// is the feeder's responsibility, never the engine's.
func (e *Engine) stopOnFeedError(err error) error {
	if errors.Is(err, core.ErrFeedClosed) {
		// A finite feed ran out of data: the data budget expired the
		// same way the time budget does.
		e.status = StatusTimedOut
		return nil
	}

	e.status = StatusCancelled
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return fmt.Errorf("price feed read: %w", err)
}

// checkStopLoss fires the terminal stop-loss exit when the observed price
// breaches the configured stop. The event is priced at the stop itself,
// not at the observed price.
func (e *Engine) checkStopLoss(tick core.Tick) bool {
	stop := e.signal.StopLoss
	if stop == nil {
		return false
	}

	if e.signal.IsLong() && tick.Price > *stop {
		return false
	}
	if !e.signal.IsLong() && tick.Price < *stop {
		return false
	}

	e.terminalExit(tick.Time, *stop, core.ActionStopLoss, core.LevelStopLoss)
	e.status = StatusStoppedByStopLoss
	return true
}

// checkTakeProfit fires the terminal take-profit exit when the observed
// price reaches the configured target.
func (e *Engine) checkTakeProfit(tick core.Tick) bool {
	target := e.signal.TakeProfit
	if target == nil {
		return false
	}

	if e.signal.IsLong() && tick.Price < *target {
		return false
	}
	if !e.signal.IsLong() && tick.Price > *target {
		return false
	}

	e.terminalExit(tick.Time, *target, core.ActionTakeProfit, core.LevelTakeProfit)
	e.status = StatusStoppedByTakeProfit
	return true
}

// terminalExit closes the full remaining quantity at the boundary price.
func (e *Engine) terminalExit(at time.Time, price float64, action core.ActionType, label string) {
	qty := level.Round(e.ledger.Remaining(), e.cfg.QuantityDecimals)
	e.append(at, qty, price, action, label)

	if _, err := e.ledger.ApplyTerminalExit(e.ledger.Remaining()); err != nil {
		// Cannot happen: the full remaining quantity is always available
		e.log.WithError(err).Error("terminal exit bookkeeping")
	}
}

// checkLadder fires, in level order, every unexecuted level the price has
// crossed in the favorable direction, applying the re-entry sub-rule after
// each partial exit.
func (e *Engine) checkLadder(tick core.Tick) error {
	for i, lvl := range e.ladder {
		if e.ledger.Executed(i) || !lvl.Crossed(tick.Price, e.signal.IsLong()) {
			continue
		}

		partialQty := level.Round(
			math.Min(e.signal.Quantity*lvl.Weight, e.ledger.Remaining()),
			e.cfg.QuantityDecimals,
		)

		e.append(tick.Time, partialQty, lvl.Target, core.ActionPartialExit, lvl.Label())

		if _, err := e.ledger.ApplyPartialExit(i, partialQty); err != nil {
			return fmt.Errorf("partial exit at level %s: %w", lvl.Label(), err)
		}

		e.applyReentry(tick, lvl, partialQty)
	}

	return nil
}

// applyReentry models a rejection/retest at the target: a configurable
// share of the exited quantity is rebuilt when the policy fires and the
// position is still open. The remaining quantity is allowed to exceed the
// original one.
func (e *Engine) applyReentry(tick core.Tick, lvl level.Level, exitedQty float64) {
	if e.ledger.Exhausted() {
		return
	}

	if !e.reentry.ShouldReenter(tick.Price, lvl.Target, e.signal.IsLong()) {
		return
	}

	reentryQty := level.Round(exitedQty*reentryFraction, e.cfg.QuantityDecimals)
	if reentryQty <= 0 {
		return
	}

	e.append(tick.Time, reentryQty, lvl.Target, core.ActionReentry, lvl.Label())
	e.ledger.ApplyReentry(reentryQty)
}

// suspend waits one tick interval; returns false when the run was
// cancelled while waiting.
func (e *Engine) suspend(ctx context.Context) bool {
	if e.interval <= 0 {
		return true
	}

	timer := time.NewTimer(e.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// append records a trade event in the journal
func (e *Engine) append(at time.Time, qty, price float64, action core.ActionType, label string) {
	event := core.TradeEvent{
		Timestamp: core.Timestamp(at),
		Symbol:    e.signal.Symbol,
		Side:      e.signal.Side,
		Quantity:  qty,
		Price:     price,
		Action:    action,
		FibLevel:  label,
		Success:   true,
	}

	e.journal.Append(event)
	e.log.WithFields(map[string]any{
		"action": action,
		"level":  label,
		"price":  price,
		"qty":    qty,
	}).Debug("Trade event")
}
