package core

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the wire format of trade event timestamps, kept
// compatible with the downstream report generators.
const TimestampLayout = "2006-01-02 15:04:05"

// ActionType represents the kind of a trade event
type ActionType string

// Trade event action constants
const (
	ActionEntry       ActionType = "entry"
	ActionPartialExit ActionType = "partial_exit"
	ActionReentry     ActionType = "reentry"
	ActionTakeProfit  ActionType = "take_profit"
	ActionStopLoss    ActionType = "stop_loss"
)

// Reserved level labels; retracement events use the fractional level
// formatted as a string (e.g. "0.382").
const (
	LevelInitial    = "initial"
	LevelStopLoss   = "stop_loss"
	LevelTakeProfit = "take_profit"
)

// Timestamp is a time.Time serialized with TimestampLayout.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(TimestampLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" || raw == "" {
		return nil
	}

	parsed, err := time.ParseInLocation(TimestampLayout, raw, time.Local)
	if err != nil {
		return fmt.Errorf("invalid event timestamp %q: %w", raw, err)
	}

	*t = Timestamp(parsed)
	return nil
}

// Value implements driver.Valuer for SQL storage.
func (t Timestamp) Value() (driver.Value, error) {
	return time.Time(t), nil
}

// Scan implements sql.Scanner for SQL storage.
func (t *Timestamp) Scan(value any) error {
	switch v := value.(type) {
	case time.Time:
		*t = Timestamp(v)
		return nil
	case string:
		parsed, err := time.ParseInLocation(TimestampLayout, v, time.Local)
		if err != nil {
			return err
		}
		*t = Timestamp(parsed)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", value)
	}
}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time { return time.Time(t) }

// TradeEvent is one entry of the append-only trade event log. The JSON
// field set is the compatibility surface consumed by external reporting
// collaborators and must not change.
type TradeEvent struct {
	// ID is for storage only and never leaves the process.
	ID int64 `json:"-" gorm:"primaryKey,autoIncrement"`

	Timestamp Timestamp  `json:"timestamp"`
	Symbol    string     `json:"symbol"`
	Side      SideType   `json:"side"`
	Quantity  float64    `json:"quantity"`
	Price     float64    `json:"price"`
	Action    ActionType `json:"action"`
	FibLevel  string     `json:"fib_level"`
	Success   bool       `json:"success"`
}

// IsExit returns true when the event reduces the position
func (e TradeEvent) IsExit() bool {
	return e.Action == ActionPartialExit ||
		e.Action == ActionStopLoss ||
		e.Action == ActionTakeProfit
}

// SignedQuantity returns the event quantity with exits negative and
// entries/re-entries positive, so a run's events net to the position delta.
func (e TradeEvent) SignedQuantity() float64 {
	if e.IsExit() {
		return -e.Quantity
	}
	return e.Quantity
}

// String returns a human-readable representation of the event
func (e TradeEvent) String() string {
	return fmt.Sprintf("[%s] %s %s | %f x $%f (level: %s)",
		e.Action, e.Side, e.Symbol, e.Quantity, e.Price, e.FibLevel)
}
