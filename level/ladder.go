// Package level computes retracement exit ladders: the ordered target
// prices derived from a price range and a configured set of fractional
// retracement levels.
package level

import (
	"fmt"
	"math"
	"strconv"

	"github.com/raykavin/fibflow/core"
)

// Config holds the fractional levels, the matching partial-exit weights and
// the rounding precision of a ladder. Levels and weights must have the same
// length; weights need not sum to 1.0 — the remainder stays in the position
// or is covered by re-entries.
type Config struct {
	Levels           []float64
	Weights          []float64
	PriceDecimals    int
	QuantityDecimals int
}

// DefaultConfig returns the standard Fibonacci ladder.
// Two price decimals match the original report format; instruments quoted
// to more decimals should override PriceDecimals per run.
func DefaultConfig() Config {
	return Config{
		Levels:           []float64{0.382, 0.5, 0.618, 0.705, 0.786},
		Weights:          []float64{0.3, 0.2, 0.2, 0.2, 0.1},
		PriceDecimals:    2,
		QuantityDecimals: 2,
	}
}

// Validate checks the ladder configuration invariants.
func (c Config) Validate() error {
	if len(c.Levels) == 0 {
		return fmt.Errorf("ladder config: no levels")
	}

	if len(c.Levels) != len(c.Weights) {
		return fmt.Errorf("ladder config: %d levels but %d weights", len(c.Levels), len(c.Weights))
	}

	for i, weight := range c.Weights {
		if weight <= 0 {
			return fmt.Errorf("ladder config: weight %d must be positive, got %f", i, weight)
		}
	}

	return nil
}

// Level pairs a fractional retracement level with its computed target price
// and the fraction of the original quantity to exit when it is crossed.
type Level struct {
	Fraction float64
	Weight   float64
	Target   float64
}

// Label returns the event log label of the level (the fraction as string).
func (l Level) Label() string {
	return strconv.FormatFloat(l.Fraction, 'f', -1, 64)
}

// Crossed reports whether a price has reached the target in the favorable
// direction for the given position side.
func (l Level) Crossed(price float64, isLong bool) bool {
	if isLong {
		return price >= l.Target
	}
	return price <= l.Target
}

// Compute maps the configured levels onto target prices inside the range.
// For a long position targets ascend from rangeLow; for a short they
// descend from rangeHigh. Fails with core.ErrInvalidRange when the range is
// empty or inverted.
func Compute(cfg Config, rangeLow, rangeHigh float64, isLong bool) ([]Level, error) {
	if rangeHigh <= rangeLow {
		return nil, fmt.Errorf("%w: low=%f high=%f", core.ErrInvalidRange, rangeLow, rangeHigh)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	span := rangeHigh - rangeLow
	levels := make([]Level, len(cfg.Levels))

	for i, fraction := range cfg.Levels {
		target := rangeLow + span*fraction
		if !isLong {
			target = rangeHigh - span*fraction
		}

		levels[i] = Level{
			Fraction: fraction,
			Weight:   cfg.Weights[i],
			Target:   Round(target, cfg.PriceDecimals),
		}
	}

	return levels, nil
}

// Round rounds a value half away from zero to the given number of decimals.
func Round(value float64, decimals int) float64 {
	factor := math.Pow10(decimals)
	return math.Round(value*factor) / factor
}
