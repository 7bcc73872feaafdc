package feed

import (
	"context"

	"github.com/raykavin/fibflow/core"
)

// Limited caps an underlying feeder at a fixed number of observations,
// turning an infinite feed into a finite one. After the budget is spent,
// Next fails with core.ErrFeedClosed.
type Limited struct {
	feeder    core.Feeder
	remaining int
}

// NewLimited wraps a feeder with an observation budget.
func NewLimited(feeder core.Feeder, ticks int) *Limited {
	return &Limited{feeder: feeder, remaining: ticks}
}

// Next implements core.Feeder.
func (l *Limited) Next(ctx context.Context) (core.Tick, error) {
	if l.remaining <= 0 {
		return core.Tick{}, core.ErrFeedClosed
	}

	l.remaining--
	return l.feeder.Next(ctx)
}
