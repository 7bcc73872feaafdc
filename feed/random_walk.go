package feed

import (
	"context"
	"math/rand"
	"time"

	"github.com/raykavin/fibflow/core"
)

// Default random walk parameters
const (
	defaultVolatility = 0.002
	defaultStep       = time.Second
)

// RandomWalk generates an infinite synthetic price path with gaussian
// returns over a simulated clock. The generator is seeded explicitly so a
// path can be replayed tick for tick.
type RandomWalk struct {
	price      float64
	drift      float64
	volatility float64
	step       time.Duration
	now        time.Time
	rng        *rand.Rand
}

// RandomWalkOption is a functional option for configuring a RandomWalk
type RandomWalkOption func(*RandomWalk)

// WithVolatility sets the per-step standard deviation of returns.
func WithVolatility(volatility float64) RandomWalkOption {
	return func(w *RandomWalk) {
		w.volatility = volatility
	}
}

// WithDrift sets the per-step expected return.
func WithDrift(drift float64) RandomWalkOption {
	return func(w *RandomWalk) {
		w.drift = drift
	}
}

// WithStep sets the simulated time between observations.
func WithStep(step time.Duration) RandomWalkOption {
	return func(w *RandomWalk) {
		w.step = step
	}
}

// WithSeed seeds the path generator.
func WithSeed(seed int64) RandomWalkOption {
	return func(w *RandomWalk) {
		w.rng = rand.New(rand.NewSource(seed))
	}
}

// WithStart sets the simulated time of the first observation.
func WithStart(start time.Time) RandomWalkOption {
	return func(w *RandomWalk) {
		w.now = start
	}
}

// NewRandomWalk creates a synthetic feed starting at the given price.
func NewRandomWalk(startPrice float64, options ...RandomWalkOption) *RandomWalk {
	walk := &RandomWalk{
		price:      startPrice,
		volatility: defaultVolatility,
		step:       defaultStep,
		now:        time.Now(),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, option := range options {
		option(walk)
	}

	return walk
}

// Next implements core.Feeder. The walk never closes; it only stops when
// the context does.
func (w *RandomWalk) Next(ctx context.Context) (core.Tick, error) {
	if err := ctx.Err(); err != nil {
		return core.Tick{}, err
	}

	w.now = w.now.Add(w.step)
	w.price *= 1 + w.drift + w.volatility*w.rng.NormFloat64()

	return core.Tick{Time: w.now, Price: w.price}, nil
}

func init() {
	Register("random", func(opts Options) (core.Feeder, error) {
		options := []RandomWalkOption{WithSeed(opts.Seed)}
		if opts.Volatility > 0 {
			options = append(options, WithVolatility(opts.Volatility))
		}
		if opts.Drift != 0 {
			options = append(options, WithDrift(opts.Drift))
		}
		if opts.Step > 0 {
			options = append(options, WithStep(opts.Step))
		}
		return NewRandomWalk(opts.StartPrice, options...), nil
	})
}
