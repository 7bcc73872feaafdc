// Package position provides quantity bookkeeping for a single run: the
// remaining tradable quantity, the per-level execution flags and the
// re-entry counter.
package position

import (
	"fmt"

	"github.com/raykavin/fibflow/core"
)

// epsilon absorbs float rounding when comparing quantities
const epsilon = 1e-9

// Ledger tracks the mutable position state of one run. It is owned
// exclusively by the strategy engine and must not be shared across runs.
type Ledger struct {
	original  float64
	remaining float64
	executed  []bool
	reentries int
}

// New creates a ledger for the given original quantity and number of
// ladder levels.
func New(quantity float64, levels int) *Ledger {
	return &Ledger{
		original:  quantity,
		remaining: quantity,
		executed:  make([]bool, levels),
	}
}

// Original returns the signal quantity the run started with.
func (l *Ledger) Original() float64 { return l.original }

// Remaining returns the current tradable quantity.
func (l *Ledger) Remaining() float64 { return l.remaining }

// Reentries returns how many re-entries fired during the run.
func (l *Ledger) Reentries() int { return l.reentries }

// Executed reports whether the level at the given index already fired.
func (l *Ledger) Executed(index int) bool {
	return index >= 0 && index < len(l.executed) && l.executed[index]
}

// ExecutedFlags returns a copy of the per-level execution flags.
func (l *Ledger) ExecutedFlags() []bool {
	flags := make([]bool, len(l.executed))
	copy(flags, l.executed)
	return flags
}

// ExecutedCount returns the number of levels that fired.
func (l *Ledger) ExecutedCount() int {
	count := 0
	for _, fired := range l.executed {
		if fired {
			count++
		}
	}
	return count
}

// Exhausted reports whether the position is fully closed.
func (l *Ledger) Exhausted() bool {
	return l.remaining <= epsilon
}

// ApplyPartialExit removes an exited quantity for a ladder level, marks the
// level executed and returns the updated remaining quantity. A level flag
// never resets. Exiting more than remains (beyond the epsilon tolerance) is
// an internal invariant violation, not a retryable condition.
func (l *Ledger) ApplyPartialExit(index int, qty float64) (float64, error) {
	if err := l.withdraw(qty); err != nil {
		return l.remaining, err
	}

	if index >= 0 && index < len(l.executed) {
		l.executed[index] = true
	}

	return l.remaining, nil
}

// ApplyReentry adds a re-entry quantity back to the position and increments
// the re-entry counter. The remaining quantity may exceed the original one;
// the upstream policy allows pyramiding.
func (l *Ledger) ApplyReentry(qty float64) float64 {
	l.remaining += qty
	l.reentries++
	return l.remaining
}

// ApplyTerminalExit removes the final quantity on a stop-loss or
// take-profit boundary and returns the updated remaining quantity.
func (l *Ledger) ApplyTerminalExit(qty float64) (float64, error) {
	if err := l.withdraw(qty); err != nil {
		return l.remaining, err
	}
	return l.remaining, nil
}

func (l *Ledger) withdraw(qty float64) error {
	if qty > l.remaining+epsilon {
		return fmt.Errorf("%w: exit %f exceeds remaining %f", core.ErrNegativeQuantity, qty, l.remaining)
	}

	l.remaining -= qty
	if l.remaining < 0 {
		l.remaining = 0
	}
	return nil
}
