package journal

import (
	"sync"

	"github.com/raykavin/fibflow/core"
)

// FeedConsumer is a function type that processes trade events
type FeedConsumer func(event core.TradeEvent)

// DataFeed represents channels for event data and errors
type DataFeed struct {
	Data chan core.TradeEvent
	Err  chan error
}

// Subscription represents a consumer subscription to trade events
type Subscription struct {
	onlyExits bool
	consumer  FeedConsumer
}

// Feed manages trade event feeds and subscriptions per symbol
type Feed struct {
	mu                    sync.RWMutex
	EventFeeds            map[string]*DataFeed
	SubscriptionsBySymbol map[string][]Subscription
}

// NewEventFeed creates a new trade event feed manager
func NewEventFeed() *Feed {
	return &Feed{
		EventFeeds:            make(map[string]*DataFeed),
		SubscriptionsBySymbol: make(map[string][]Subscription),
	}
}

// Subscribe registers a consumer to receive trade events for a symbol.
// When onlyExits is true, entry and re-entry events are skipped.
func (f *Feed) Subscribe(symbol string, consumer FeedConsumer, onlyExits bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.EventFeeds[symbol]; !ok {
		f.EventFeeds[symbol] = &DataFeed{
			Data: make(chan core.TradeEvent, 100), // Buffered channel to prevent blocking
			Err:  make(chan error, 100),
		}
	}

	f.SubscriptionsBySymbol[symbol] = append(f.SubscriptionsBySymbol[symbol], Subscription{
		onlyExits: onlyExits,
		consumer:  consumer,
	})
}

// Publish sends a trade event to all subscribers for its symbol
func (f *Feed) Publish(event core.TradeEvent) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if feed, ok := f.EventFeeds[event.Symbol]; ok {
		// Non-blocking send - drop updates if no one is listening
		select {
		case feed.Data <- event:
		default:
		}
	}
}

// Start begins processing trade events for all registered feeds
func (f *Feed) Start() {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for symbol, feed := range f.EventFeeds {
		go f.processEventsForSymbol(symbol, feed)
	}
}

// processEventsForSymbol distributes events of one symbol to its subscribers
func (f *Feed) processEventsForSymbol(symbol string, feed *DataFeed) {
	for event := range feed.Data {
		f.mu.RLock()
		subscriptions := f.SubscriptionsBySymbol[symbol]
		f.mu.RUnlock()

		for _, subscription := range subscriptions {
			if subscription.onlyExits && !event.IsExit() {
				continue
			}
			subscription.consumer(event)
		}
	}
}

// Stop gracefully shuts down all feed channels
func (f *Feed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for symbol, feed := range f.EventFeeds {
		close(feed.Data)
		close(feed.Err)
		delete(f.EventFeeds, symbol)
	}

	f.SubscriptionsBySymbol = make(map[string][]Subscription)
}
