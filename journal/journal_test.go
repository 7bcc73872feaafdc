package journal

import (
	"testing"
	"time"

	"github.com/raykavin/fibflow/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_AppendOrder(t *testing.T) {
	jrn := New()
	require.Equal(t, 0, jrn.Len())

	_, ok := jrn.Last()
	require.False(t, ok)

	jrn.Append(core.TradeEvent{Action: core.ActionEntry, Quantity: 1.0})
	jrn.Append(core.TradeEvent{Action: core.ActionPartialExit, Quantity: 0.3})
	jrn.Append(core.TradeEvent{Action: core.ActionReentry, Quantity: 0.15})

	events := jrn.Events()
	require.Len(t, events, 3)
	assert.Equal(t, core.ActionEntry, events[0].Action)
	assert.Equal(t, core.ActionPartialExit, events[1].Action)
	assert.Equal(t, core.ActionReentry, events[2].Action)

	last, ok := jrn.Last()
	require.True(t, ok)
	assert.Equal(t, core.ActionReentry, last.Action)
}

func TestJournal_EventsSnapshot(t *testing.T) {
	jrn := New()
	jrn.Append(core.TradeEvent{Action: core.ActionEntry})

	snapshot := jrn.Events()
	jrn.Append(core.TradeEvent{Action: core.ActionPartialExit})

	// Snapshots are independent of later appends
	assert.Len(t, snapshot, 1)
	assert.Equal(t, 2, jrn.Len())
}

func TestFeed_NewEventFeed(t *testing.T) {
	feed := NewEventFeed()
	require.NotEmpty(t, feed)
}

func TestFeed_Subscribe(t *testing.T) {
	feed, symbol := NewEventFeed(), "EURUSD"
	called := make(chan core.TradeEvent, 1)

	feed.Subscribe(symbol, func(event core.TradeEvent) {
		called <- event
	}, false)

	feed.Start()
	defer feed.Stop()

	feed.Publish(core.TradeEvent{Symbol: symbol, Action: core.ActionEntry})

	select {
	case event := <-called:
		assert.Equal(t, core.ActionEntry, event.Action)
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestFeed_OnlyExits(t *testing.T) {
	feed, symbol := NewEventFeed(), "EURUSD"
	exits := make(chan core.TradeEvent, 2)

	feed.Subscribe(symbol, func(event core.TradeEvent) {
		exits <- event
	}, true)

	feed.Start()
	defer feed.Stop()

	feed.Publish(core.TradeEvent{Symbol: symbol, Action: core.ActionEntry})
	feed.Publish(core.TradeEvent{Symbol: symbol, Action: core.ActionPartialExit})

	select {
	case event := <-exits:
		assert.Equal(t, core.ActionPartialExit, event.Action)
	case <-time.After(time.Second):
		t.Fatal("exit event was not delivered")
	}
}

func TestJournal_PublishesToFeed(t *testing.T) {
	feed := NewEventFeed()
	called := make(chan core.TradeEvent, 1)
	feed.Subscribe("EURUSD", func(event core.TradeEvent) {
		called <- event
	}, false)

	feed.Start()
	defer feed.Stop()

	jrn := New(WithFeed(feed))
	jrn.Append(core.TradeEvent{Symbol: "EURUSD", Action: core.ActionStopLoss})

	select {
	case event := <-called:
		assert.Equal(t, core.ActionStopLoss, event.Action)
	case <-time.After(time.Second):
		t.Fatal("journaled event was not broadcast")
	}
}
