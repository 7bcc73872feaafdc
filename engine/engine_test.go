package engine

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/raykavin/fibflow/core"
	"github.com/raykavin/fibflow/feed"
	"github.com/raykavin/fibflow/journal"
	"github.com/raykavin/fibflow/level"
	logrusadapter "github.com/raykavin/fibflow/logger/logrus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	noReentry     = core.ReentryFunc(func(_, _ float64, _ bool) bool { return false })
	alwaysReentry = core.ReentryFunc(func(_, _ float64, _ bool) bool { return true })
)

func testLogger() core.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrusadapter.NewAdapter(log)
}

// fxLadder uses four price decimals so FX-sized ranges keep distinct targets.
func fxLadder() level.Config {
	cfg := level.DefaultConfig()
	cfg.PriceDecimals = 4
	return cfg
}

func longSignal() core.Signal {
	return core.Signal{
		Symbol:    "EURUSD",
		Side:      core.SideTypeBuy,
		Quantity:  1.0,
		Entry:     1.0850,
		RangeLow:  1.0800,
		RangeHigh: 1.0900,
	}
}

type errFeeder struct{ err error }

func (f errFeeder) Next(context.Context) (core.Tick, error) {
	return core.Tick{}, f.err
}

type constFeeder struct{ price float64 }

func (f constFeeder) Next(context.Context) (core.Tick, error) {
	return core.Tick{Time: time.Now(), Price: f.price}, nil
}

func run(t *testing.T, signal core.Signal, feeder core.Feeder, options ...Option) (*Result, error) {
	t.Helper()

	options = append([]Option{
		WithTickInterval(0),
		WithLadderConfig(fxLadder()),
		WithReentryPolicy(noReentry),
	}, options...)

	eng, err := New(signal, feeder, journal.New(), testLogger(), options...)
	require.NoError(t, err)

	return eng.Run(context.Background())
}

func TestEngine_StopLossBeforeLevels(t *testing.T) {
	signal := longSignal()
	stop := 1.0820
	signal.StopLoss = &stop

	ticks := feed.NewTickFeed(time.Now(), 1.0830, 1.0815)
	result, err := run(t, signal, ticks)
	require.NoError(t, err)

	assert.Equal(t, StatusStoppedByStopLoss, result.Status)
	require.Len(t, result.Events, 2)

	entry := result.Events[0]
	assert.Equal(t, core.ActionEntry, entry.Action)
	assert.Equal(t, core.LevelInitial, entry.FibLevel)
	assert.Equal(t, 1.0, entry.Quantity)
	assert.Equal(t, 1.0850, entry.Price)

	// The exit is priced at the configured stop, not the observed tick
	exit := result.Events[1]
	assert.Equal(t, core.ActionStopLoss, exit.Action)
	assert.Equal(t, core.LevelStopLoss, exit.FibLevel)
	assert.Equal(t, 1.0, exit.Quantity)
	assert.Equal(t, 1.0820, exit.Price)

	assert.Zero(t, result.RemainingQuantity)
	assert.Equal(t, []bool{false, false, false, false, false}, result.ExecutedLevels)
}

func TestEngine_PartialExit(t *testing.T) {
	ticks := feed.NewTickFeed(time.Now(), 1.0840)
	result, err := run(t, longSignal(), ticks)
	require.NoError(t, err)

	assert.Equal(t, StatusTimedOut, result.Status)
	require.Len(t, result.Events, 2)

	exit := result.Events[1]
	assert.Equal(t, core.ActionPartialExit, exit.Action)
	assert.Equal(t, "0.382", exit.FibLevel)
	assert.Equal(t, 0.3, exit.Quantity)
	assert.Equal(t, 1.0838, exit.Price)

	assert.InDelta(t, 0.7, result.RemainingQuantity, 1e-9)
	assert.Equal(t, []bool{true, false, false, false, false}, result.ExecutedLevels)
}

func TestEngine_LevelFiresOnce(t *testing.T) {
	// The same level price observed twice must not re-execute the level
	ticks := feed.NewTickFeed(time.Now(), 1.0840, 1.0840, 1.0839)
	result, err := run(t, longSignal(), ticks)
	require.NoError(t, err)

	assert.Equal(t, 1, result.ActionCounts()[core.ActionPartialExit])
	assert.InDelta(t, 0.7, result.RemainingQuantity, 1e-9)
}

func TestEngine_MultipleLevelsInOneTick(t *testing.T) {
	ticks := feed.NewTickFeed(time.Now(), 1.0865)
	result, err := run(t, longSignal(), ticks)
	require.NoError(t, err)

	require.Len(t, result.Events, 4)
	assert.Equal(t, "0.382", result.Events[1].FibLevel)
	assert.Equal(t, "0.5", result.Events[2].FibLevel)
	assert.Equal(t, "0.618", result.Events[3].FibLevel)

	// Each exit is priced at its own target
	assert.Equal(t, 1.0838, result.Events[1].Price)
	assert.Equal(t, 1.085, result.Events[2].Price)
	assert.Equal(t, 1.0862, result.Events[3].Price)

	assert.InDelta(t, 0.3, result.RemainingQuantity, 1e-9)
}

func TestEngine_TakeProfit(t *testing.T) {
	signal := longSignal()
	target := 1.0880
	signal.TakeProfit = &target

	ticks := feed.NewTickFeed(time.Now(), 1.0840, 1.0885)
	result, err := run(t, signal, ticks)
	require.NoError(t, err)

	assert.Equal(t, StatusStoppedByTakeProfit, result.Status)
	require.Len(t, result.Events, 3)

	exit := result.Events[2]
	assert.Equal(t, core.ActionTakeProfit, exit.Action)
	assert.Equal(t, core.LevelTakeProfit, exit.FibLevel)
	assert.InDelta(t, 0.7, exit.Quantity, 1e-9)
	assert.Equal(t, 1.0880, exit.Price)

	assert.Zero(t, result.RemainingQuantity)
	assert.InDelta(t, (1.0838-1.0850)*0.3+(1.0880-1.0850)*0.7, result.RealizedPnL(), 1e-9)
}

func TestEngine_Exhausted(t *testing.T) {
	ticks := feed.NewTickFeed(time.Now(), 1.0895)
	result, err := run(t, longSignal(), ticks)
	require.NoError(t, err)

	assert.Equal(t, StatusExhausted, result.Status)
	assert.Equal(t, 5, result.ActionCounts()[core.ActionPartialExit])
	assert.Zero(t, result.Reentries)
	assert.True(t, result.RemainingQuantity <= 1e-9)
	assert.Equal(t, []bool{true, true, true, true, true}, result.ExecutedLevels)
}

func TestEngine_Reentry(t *testing.T) {
	ticks := feed.NewTickFeed(time.Now(), 1.0840)
	result, err := run(t, longSignal(), ticks, WithReentryPolicy(alwaysReentry))
	require.NoError(t, err)

	require.Len(t, result.Events, 3)

	reentry := result.Events[2]
	assert.Equal(t, core.ActionReentry, reentry.Action)
	assert.Equal(t, "0.382", reentry.FibLevel)
	assert.Equal(t, 0.15, reentry.Quantity)
	assert.Equal(t, 1.0838, reentry.Price)

	assert.InDelta(t, 0.85, result.RemainingQuantity, 1e-9)
	assert.Equal(t, 1, result.Reentries)
}

func TestEngine_QuantityConservation(t *testing.T) {
	ticks := feed.NewTickFeed(time.Now(), 1.0838, 1.0850, 1.0862, 1.0871, 1.0879)
	result, err := run(t, longSignal(), ticks, WithReentryPolicy(alwaysReentry))
	require.NoError(t, err)

	// The event log nets to the final remaining quantity
	net := 0.0
	for _, event := range result.Events {
		net += event.SignedQuantity()
	}
	assert.InDelta(t, result.RemainingQuantity, net, 1e-9)
	assert.GreaterOrEqual(t, result.RemainingQuantity, 0.0)
	assert.Equal(t, 5, result.Reentries)
}

func TestEngine_ShortSide(t *testing.T) {
	signal := core.Signal{
		Symbol:    "BTCUSDT",
		Side:      core.SideTypeSell,
		Quantity:  1.0,
		Entry:     158.0,
		RangeLow:  150.0,
		RangeHigh: 161.8,
	}
	stop := 162.0
	signal.StopLoss = &stop

	ticks := feed.NewTickFeed(time.Now(), 157.0, 162.5)
	result, err := run(t, signal, ticks, WithLadderConfig(level.DefaultConfig()))
	require.NoError(t, err)

	assert.Equal(t, StatusStoppedByStopLoss, result.Status)
	require.Len(t, result.Events, 3)

	// Short targets descend: 157.0 crosses only the first level (157.29)
	assert.Equal(t, core.ActionPartialExit, result.Events[1].Action)
	assert.Equal(t, 157.29, result.Events[1].Price)
	assert.Equal(t, core.ActionStopLoss, result.Events[2].Action)
	assert.Equal(t, 162.0, result.Events[2].Price)
	assert.InDelta(t, 0.7, result.Events[2].Quantity, 1e-9)
}

func TestEngine_CancelledBeforeFirstTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng, err := New(longSignal(), constFeeder{price: 1.0830}, journal.New(), testLogger(),
		WithTickInterval(0), WithLadderConfig(fxLadder()), WithReentryPolicy(noReentry))
	require.NoError(t, err)

	result, runErr := eng.Run(ctx)
	require.NoError(t, runErr)

	assert.Equal(t, StatusCancelled, result.Status)
	require.Len(t, result.Events, 1)
	assert.Equal(t, core.ActionEntry, result.Events[0].Action)
	assert.Equal(t, 1.0, result.RemainingQuantity)
}

func TestEngine_FeedFailure(t *testing.T) {
	boom := errors.New("boom")
	result, err := run(t, longSignal(), errFeeder{err: boom})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, StatusCancelled, result.Status)
	// The result still carries everything appended before the failure
	require.Len(t, result.Events, 1)
}

func TestEngine_FeedClosedMeansTimedOut(t *testing.T) {
	result, err := run(t, longSignal(), errFeeder{err: core.ErrFeedClosed})
	require.NoError(t, err)
	assert.Equal(t, StatusTimedOut, result.Status)
}

func TestEngine_TimeBudget(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	now := base
	clock := func() time.Time {
		now = now.Add(31 * time.Minute)
		return now
	}

	result, err := run(t, longSignal(), constFeeder{price: 1.0830},
		WithMaxTime(time.Hour), WithClock(clock))
	require.NoError(t, err)

	assert.Equal(t, StatusTimedOut, result.Status)
	assert.GreaterOrEqual(t, result.Elapsed(), time.Hour)
}

func TestEngine_InvalidSignal(t *testing.T) {
	signal := longSignal()
	signal.Quantity = -1

	_, err := New(signal, constFeeder{price: 1.0830}, journal.New(), testLogger())
	require.ErrorIs(t, err, core.ErrInvalidQuantity)
}

func TestEngine_InvalidLadderConfig(t *testing.T) {
	_, err := New(longSignal(), constFeeder{price: 1.0830}, journal.New(), testLogger(),
		WithLadderConfig(level.Config{Levels: []float64{0.5}, Weights: []float64{0.3, 0.2}}))
	require.Error(t, err)
}
