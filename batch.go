package fibflow

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/raykavin/fibflow/core"
	"github.com/raykavin/fibflow/engine"
	"github.com/raykavin/fibflow/feed"
	"github.com/raykavin/fibflow/journal"
	"github.com/raykavin/fibflow/metric"
	"github.com/raykavin/fibflow/report"
	"github.com/schollz/progressbar/v3"
)

// Default batch parameters
const (
	defaultBatchRuns  = 100
	defaultBatchTicks = 1000
)

// MonteCarlo replays one signal against many independent synthetic price
// paths. Each run gets its own feed, journal and engine seeded from the
// batch seed, so a batch is fully reproducible.
type MonteCarlo struct {
	signal     core.Signal
	runs       int
	ticks      int
	seed       int64
	volatility float64
	drift      float64
	log        core.Logger

	engineOptions []engine.Option
}

// MonteCarloOption is a functional option for configuring a MonteCarlo batch
type MonteCarloOption func(*MonteCarlo)

// WithRuns sets the number of simulated paths.
func WithRuns(runs int) MonteCarloOption {
	return func(m *MonteCarlo) {
		m.runs = runs
	}
}

// WithTicks sets the observation budget of each path.
func WithTicks(ticks int) MonteCarloOption {
	return func(m *MonteCarlo) {
		m.ticks = ticks
	}
}

// WithSeed sets the batch seed; run i derives its path and re-entry seeds
// from it.
func WithSeed(seed int64) MonteCarloOption {
	return func(m *MonteCarlo) {
		m.seed = seed
	}
}

// WithPathVolatility sets the per-tick return deviation of the paths.
func WithPathVolatility(volatility float64) MonteCarloOption {
	return func(m *MonteCarlo) {
		m.volatility = volatility
	}
}

// WithPathDrift sets the per-tick expected return of the paths.
func WithPathDrift(drift float64) MonteCarloOption {
	return func(m *MonteCarlo) {
		m.drift = drift
	}
}

// WithBatchEngineOptions forwards options to every run's engine.
func WithBatchEngineOptions(options ...engine.Option) MonteCarloOption {
	return func(m *MonteCarlo) {
		m.engineOptions = append(m.engineOptions, options...)
	}
}

// NewMonteCarlo creates a batch simulation for a signal.
func NewMonteCarlo(signal core.Signal, options ...MonteCarloOption) (*MonteCarlo, error) {
	if err := signal.Validate(); err != nil {
		return nil, err
	}

	batch := &MonteCarlo{
		signal: signal,
		runs:   defaultBatchRuns,
		ticks:  defaultBatchTicks,
		seed:   time.Now().UnixNano(),
		log:    DefaultLog,
	}

	for _, option := range options {
		option(batch)
	}

	return batch, nil
}

// BatchResult aggregates the outcome of a Monte Carlo batch.
type BatchResult struct {
	Results []*engine.Result
	PnLs    []float64
}

// Run executes every path sequentially. Runs share nothing: cancellation
// stops the batch between runs and keeps the finished results.
func (m *MonteCarlo) Run(ctx context.Context) (*BatchResult, error) {
	bar := progressbar.Default(int64(m.runs), "simulating")
	batch := &BatchResult{
		Results: make([]*engine.Result, 0, m.runs),
		PnLs:    make([]float64, 0, m.runs),
	}

	for i := 0; i < m.runs; i++ {
		if ctx.Err() != nil {
			return batch, ctx.Err()
		}

		result, err := m.runOne(ctx, int64(i))
		if err != nil {
			return batch, fmt.Errorf("run %d: %w", i, err)
		}

		batch.Results = append(batch.Results, result)
		batch.PnLs = append(batch.PnLs, result.RealizedPnL())
		_ = bar.Add(1)
	}

	return batch, nil
}

// runOne builds an isolated feed/journal/engine triple for path i.
func (m *MonteCarlo) runOne(ctx context.Context, i int64) (*engine.Result, error) {
	walkOptions := []feed.RandomWalkOption{feed.WithSeed(m.seed + i)}
	if m.volatility > 0 {
		walkOptions = append(walkOptions, feed.WithVolatility(m.volatility))
	}
	if m.drift != 0 {
		walkOptions = append(walkOptions, feed.WithDrift(m.drift))
	}

	walk := feed.NewRandomWalk(m.signal.Entry, walkOptions...)

	options := append([]engine.Option{
		engine.WithTickInterval(0),
		engine.WithReentryPolicy(engine.NewProbabilisticReentry(engine.DefaultReentryProbability, m.seed^i)),
	}, m.engineOptions...)

	eng, err := engine.New(m.signal, feed.NewLimited(walk, m.ticks), journal.New(), m.log, options...)
	if err != nil {
		return nil, err
	}

	return eng.Run(ctx)
}

// Summary writes batch statistics and the PnL distribution.
func (b *BatchResult) Summary(w io.Writer) error {
	statuses := make(map[engine.Status]int, len(b.Results))
	for _, result := range b.Results {
		statuses[result.Status]++
	}

	fmt.Fprintf(w, "Runs:           %d\n", len(b.Results))
	fmt.Fprintf(w, "Mean PnL:       %f\n", metric.Mean(b.PnLs))
	fmt.Fprintf(w, "StdDev PnL:     %f\n", metric.StdDev(b.PnLs))
	fmt.Fprintf(w, "Win rate:       %.2f %%\n", metric.WinRate(b.PnLs)*100)
	fmt.Fprintf(w, "Profit factor:  %.2f\n", metric.ProfitFactor(b.PnLs))
	for status, count := range statuses {
		fmt.Fprintf(w, "  %-22s %d\n", status, count)
	}

	return report.PrintHistogram(w, b.PnLs)
}
