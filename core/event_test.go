package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradeEvent_WireFormat(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)
	event := TradeEvent{
		ID:        42,
		Timestamp: Timestamp(at),
		Symbol:    "EURUSD",
		Side:      SideTypeBuy,
		Quantity:  0.3,
		Price:     1.0838,
		Action:    ActionPartialExit,
		FibLevel:  "0.382",
		Success:   true,
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"timestamp": "2026-03-14 09:30:00",
		"symbol": "EURUSD",
		"side": "buy",
		"quantity": 0.3,
		"price": 1.0838,
		"action": "partial_exit",
		"fib_level": "0.382",
		"success": true
	}`, string(data))

	var decoded TradeEvent
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, at.Equal(decoded.Timestamp.Time()))
	// The storage key never travels over the wire
	assert.Zero(t, decoded.ID)
}

func TestTradeEvent_IsExit(t *testing.T) {
	assert.False(t, TradeEvent{Action: ActionEntry}.IsExit())
	assert.False(t, TradeEvent{Action: ActionReentry}.IsExit())
	assert.True(t, TradeEvent{Action: ActionPartialExit}.IsExit())
	assert.True(t, TradeEvent{Action: ActionStopLoss}.IsExit())
	assert.True(t, TradeEvent{Action: ActionTakeProfit}.IsExit())
}

func TestTradeEvent_SignedQuantity(t *testing.T) {
	events := []TradeEvent{
		{Action: ActionEntry, Quantity: 1.0},
		{Action: ActionPartialExit, Quantity: 0.3},
		{Action: ActionReentry, Quantity: 0.15},
		{Action: ActionPartialExit, Quantity: 0.2},
	}

	net := 0.0
	for _, event := range events {
		net += event.SignedQuantity()
	}
	assert.InDelta(t, 0.65, net, 1e-9)
}
