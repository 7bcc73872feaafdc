package engine

import (
	"time"

	"github.com/raykavin/fibflow/core"
)

// Result is the outcome of one run: the terminal state, the full event log
// and the final position bookkeeping. It is produced for every run,
// including runs that terminate early.
type Result struct {
	Signal            core.Signal
	Status            Status
	Events            []core.TradeEvent
	OriginalQuantity  float64
	RemainingQuantity float64
	ExecutedLevels    []bool
	Reentries         int
	StartedAt         time.Time
	FinishedAt        time.Time
}

// buildResult snapshots the engine state into a result
func (e *Engine) buildResult(startedAt time.Time) *Result {
	return &Result{
		Signal:            e.signal,
		Status:            e.status,
		Events:            e.journal.Events(),
		OriginalQuantity:  e.ledger.Original(),
		RemainingQuantity: e.ledger.Remaining(),
		ExecutedLevels:    e.ledger.ExecutedFlags(),
		Reentries:         e.ledger.Reentries(),
		StartedAt:         startedAt,
		FinishedAt:        e.clock(),
	}
}

// Elapsed returns the run duration
func (r *Result) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// ActionCounts returns how many events of each action were appended
func (r *Result) ActionCounts() map[core.ActionType]int {
	counts := make(map[core.ActionType]int, len(r.Events))
	for _, event := range r.Events {
		counts[event.Action]++
	}
	return counts
}

// RealizedPnL sums the profit of every exit event against the entry price,
// signed by the position direction.
func (r *Result) RealizedPnL() float64 {
	direction := 1.0
	if !r.Signal.IsLong() {
		direction = -1.0
	}

	var pnl float64
	for _, event := range r.Events {
		if !event.IsExit() {
			continue
		}
		pnl += (event.Price - r.Signal.Entry) * event.Quantity * direction
	}
	return pnl
}
