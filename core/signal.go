package core

import "fmt"

// SideType represents the direction of a signal (buy or sell)
type SideType string

// Signal side constants
const (
	SideTypeBuy  SideType = "buy"
	SideTypeSell SideType = "sell"
)

// Signal is the immutable input of a single run. Field names follow the
// wire format produced by upstream signal generators.
type Signal struct {
	Symbol       string   `json:"symbol"`
	Side         SideType `json:"side"`
	Quantity     float64  `json:"quantity"`
	Entry        float64  `json:"entry"`
	RangeLow     float64  `json:"fib_low"`
	RangeHigh    float64  `json:"fib_high"`
	StopLoss     *float64 `json:"stopLoss,omitempty"`
	TakeProfit   *float64 `json:"takeProfit,omitempty"`
	StealthLevel int      `json:"stealth_level,omitempty"`
}

// SignalError reports a signal that cannot start a run.
type SignalError struct {
	Err    error
	Symbol string
	Field  string
}

// Error implements the error interface
func (s *SignalError) Error() string {
	return fmt.Sprintf("invalid signal %q: %s: %v", s.Symbol, s.Field, s.Err)
}

// Unwrap exposes the underlying cause
func (s *SignalError) Unwrap() error { return s.Err }

// IsLong returns true when the signal opens a long position
func (s Signal) IsLong() bool {
	return s.Side == SideTypeBuy
}

// Validate checks the signal invariants before a run starts.
// A failed validation means the run never begins.
func (s Signal) Validate() error {
	if s.Side != SideTypeBuy && s.Side != SideTypeSell {
		return &SignalError{Err: ErrInvalidSide, Symbol: s.Symbol, Field: "side"}
	}

	if s.Quantity <= 0 {
		return &SignalError{Err: ErrInvalidQuantity, Symbol: s.Symbol, Field: "quantity"}
	}

	if s.RangeHigh <= s.RangeLow {
		return &SignalError{Err: ErrInvalidRange, Symbol: s.Symbol, Field: "fib_low/fib_high"}
	}

	return nil
}
