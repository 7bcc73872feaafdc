// Package report renders run results for the terminal: an event table for
// a single run and a PnL histogram for batches.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/fibflow/core"
	"github.com/raykavin/fibflow/engine"
)

// PrintSummary writes the event table and the final position of one run.
func PrintSummary(w io.Writer, result *engine.Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Time", "Action", "Level", "Price", "Quantity"})

	for _, event := range result.Events {
		table.Append([]string{
			event.Timestamp.Time().Format(core.TimestampLayout),
			string(event.Action),
			event.FibLevel,
			strconv.FormatFloat(event.Price, 'f', -1, 64),
			strconv.FormatFloat(event.Quantity, 'f', -1, 64),
		})
	}

	table.Render()

	counts := result.ActionCounts()
	fmt.Fprintf(w, "Status:      %s\n", result.Status)
	fmt.Fprintf(w, "Symbol:      %s (%s)\n", result.Signal.Symbol, result.Signal.Side)
	fmt.Fprintf(w, "Remaining:   %f of %f\n", result.RemainingQuantity, result.OriginalQuantity)
	fmt.Fprintf(w, "Exits:       %d partial, %d re-entries\n",
		counts[core.ActionPartialExit], counts[core.ActionReentry])
	fmt.Fprintf(w, "Realized:    %f\n", result.RealizedPnL())
	fmt.Fprintf(w, "Elapsed:     %s\n", result.Elapsed())
}

// PrintHistogram draws the distribution of per-run PnL values.
func PrintHistogram(w io.Writer, pnls []float64) error {
	if len(pnls) == 0 {
		return nil
	}

	hist := histogram.Hist(10, pnls)
	return histogram.Fprint(w, hist, histogram.Linear(40))
}
