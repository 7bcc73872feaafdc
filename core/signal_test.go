package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignal_Validate(t *testing.T) {
	stop := 1.082
	valid := Signal{
		Symbol:    "EURUSD",
		Side:      SideTypeBuy,
		Quantity:  1.0,
		Entry:     1.0850,
		RangeLow:  1.0800,
		RangeHigh: 1.0900,
		StopLoss:  &stop,
	}
	require.NoError(t, valid.Validate())

	badSide := valid
	badSide.Side = "long"
	var sigErr *SignalError
	err := badSide.Validate()
	require.ErrorAs(t, err, &sigErr)
	require.ErrorIs(t, err, ErrInvalidSide)
	assert.Equal(t, "side", sigErr.Field)

	badQty := valid
	badQty.Quantity = 0
	require.ErrorIs(t, badQty.Validate(), ErrInvalidQuantity)

	badRange := valid
	badRange.RangeLow, badRange.RangeHigh = 1.09, 1.08
	require.ErrorIs(t, badRange.Validate(), ErrInvalidRange)
}

func TestSignal_WireFormat(t *testing.T) {
	raw := `{
		"symbol": "EURUSD",
		"side": "buy",
		"quantity": 1.0,
		"entry": 1.0850,
		"fib_low": 1.0800,
		"fib_high": 1.0900,
		"stopLoss": 1.0820,
		"takeProfit": 1.0950,
		"stealth_level": 2
	}`

	var signal Signal
	require.NoError(t, json.Unmarshal([]byte(raw), &signal))

	assert.Equal(t, "EURUSD", signal.Symbol)
	assert.True(t, signal.IsLong())
	assert.Equal(t, 1.08, signal.RangeLow)
	assert.Equal(t, 1.09, signal.RangeHigh)
	require.NotNil(t, signal.StopLoss)
	assert.Equal(t, 1.082, *signal.StopLoss)
	require.NotNil(t, signal.TakeProfit)
	assert.Equal(t, 1.095, *signal.TakeProfit)
	assert.Equal(t, 2, signal.StealthLevel)
}

func TestSignal_StopAndTargetOptional(t *testing.T) {
	var signal Signal
	require.NoError(t, json.Unmarshal([]byte(
		`{"symbol":"BTCUSDT","side":"sell","quantity":0.5,"entry":150,"fib_low":140,"fib_high":160}`,
	), &signal))

	require.NoError(t, signal.Validate())
	assert.Nil(t, signal.StopLoss)
	assert.Nil(t, signal.TakeProfit)
	assert.False(t, signal.IsLong())
}
