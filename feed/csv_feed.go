package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/raykavin/fibflow/core"
	"github.com/samber/lo"
)

// defaultHeaderMap defines the standard CSV column mapping
var defaultHeaderMap = map[string]int{
	"time": 0, "price": 1,
}

// CSVFeed replays a recorded price series from a CSV file with `time`
// (unix seconds) and `price` columns. The feed is finite: once the series
// is exhausted, Next fails with core.ErrFeedClosed.
type CSVFeed struct {
	Symbol string
	File   string

	ticks []core.Tick
	pos   int
}

// NewCSVFeed reads the whole file up front and returns a replayable feed.
func NewCSVFeed(symbol, file string) (*CSVFeed, error) {
	csvFile, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer csvFile.Close()

	lines, err := csv.NewReader(csvFile).ReadAll()
	if err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("csv feed %s: empty file", file)
	}

	headerMap, hasHeader := parseHeader(lines[0])
	if hasHeader {
		lines = lines[1:]
	}

	ticks := make([]core.Tick, 0, len(lines))
	for i, line := range lines {
		tick, err := parseTick(line, headerMap)
		if err != nil {
			return nil, fmt.Errorf("csv feed %s line %d: %w", file, i+1, err)
		}
		ticks = append(ticks, tick)
	}

	return &CSVFeed{Symbol: symbol, File: file, ticks: ticks}, nil
}

// NewTickFeed creates a finite in-memory feed from raw prices, one tick
// per second. Tests and scripted scenarios use it.
func NewTickFeed(start time.Time, prices ...float64) *CSVFeed {
	ticks := lo.Map(prices, func(price float64, i int) core.Tick {
		return core.Tick{Time: start.Add(time.Duration(i) * time.Second), Price: price}
	})
	return &CSVFeed{ticks: ticks}
}

// Len returns the number of observations in the series.
func (c *CSVFeed) Len() int { return len(c.ticks) }

// Rewind restarts the replay from the first observation.
func (c *CSVFeed) Rewind() { c.pos = 0 }

// Next implements core.Feeder.
func (c *CSVFeed) Next(ctx context.Context) (core.Tick, error) {
	if err := ctx.Err(); err != nil {
		return core.Tick{}, err
	}

	if c.pos >= len(c.ticks) {
		return core.Tick{}, core.ErrFeedClosed
	}

	tick := c.ticks[c.pos]
	c.pos++
	return tick, nil
}

// parseHeader detects a header row and maps column names to positions.
func parseHeader(line []string) (map[string]int, bool) {
	if _, err := strconv.ParseFloat(line[0], 64); err == nil {
		return defaultHeaderMap, false
	}

	headerMap := make(map[string]int, len(line))
	for i, name := range line {
		headerMap[name] = i
	}
	return headerMap, true
}

// parseTick converts a CSV line into a price observation.
func parseTick(line []string, headerMap map[string]int) (core.Tick, error) {
	unix, err := strconv.ParseInt(line[headerMap["time"]], 10, 64)
	if err != nil {
		return core.Tick{}, fmt.Errorf("invalid time: %w", err)
	}

	price, err := strconv.ParseFloat(line[headerMap["price"]], 64)
	if err != nil {
		return core.Tick{}, fmt.Errorf("invalid price: %w", err)
	}

	return core.Tick{Time: time.Unix(unix, 0), Price: price}, nil
}

func init() {
	Register("csv", func(opts Options) (core.Feeder, error) {
		return NewCSVFeed(opts.Symbol, opts.File)
	})
}
