package feed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/jpillora/backoff"
	"github.com/raykavin/fibflow/core"
)

// defaultReadTimeout bounds a single price read in live mode. It is
// deliberately much shorter than any run budget.
const defaultReadTimeout = 30 * time.Second

// BinanceTicker is a live feeder backed by the Binance aggregated-trade
// websocket. Reconnection with backoff is handled here; the engine never
// retries reads itself.
type BinanceTicker struct {
	symbol      string
	readTimeout time.Duration
	ticks       chan core.Tick
	log         core.Logger
}

// BinanceOption is a functional option for configuring a BinanceTicker
type BinanceOption func(*BinanceTicker)

// WithReadTimeout overrides the per-read timeout.
func WithReadTimeout(timeout time.Duration) BinanceOption {
	return func(b *BinanceTicker) {
		b.readTimeout = timeout
	}
}

// NewBinanceTicker connects to the trade stream of a symbol and starts the
// receive loop. The loop ends when the context is done.
func NewBinanceTicker(ctx context.Context, symbol string, log core.Logger, options ...BinanceOption) *BinanceTicker {
	ticker := &BinanceTicker{
		symbol:      symbol,
		readTimeout: defaultReadTimeout,
		ticks:       make(chan core.Tick, 100),
		log:         log,
	}

	for _, option := range options {
		option(ticker)
	}

	go ticker.serve(ctx)
	return ticker
}

// serve keeps the websocket subscription alive, reconnecting with backoff.
func (b *BinanceTicker) serve(ctx context.Context) {
	retry := &backoff.Backoff{
		Min:    time.Second,
		Max:    time.Minute,
		Factor: 2,
		Jitter: true,
	}

	for ctx.Err() == nil {
		doneC, stopC, err := binance.WsAggTradeServe(b.symbol, b.onTrade, func(err error) {
			b.log.WithError(err).Error("binance stream")
		})
		if err != nil {
			wait := retry.Duration()
			b.log.WithError(err).Warnf("binance connect failed, retrying in %s", wait)

			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			continue
		}

		retry.Reset()
		b.log.Infof("binance stream connected for %s", b.symbol)

		select {
		case <-ctx.Done():
			close(stopC)
			return
		case <-doneC:
			b.log.Warn("binance stream disconnected")
		}
	}
}

// onTrade converts a trade event into a tick. Slow consumers drop ticks
// instead of blocking the websocket handler.
func (b *BinanceTicker) onTrade(event *binance.WsAggTradeEvent) {
	price, err := strconv.ParseFloat(event.Price, 64)
	if err != nil {
		b.log.WithError(err).Errorf("binance price %q", event.Price)
		return
	}

	tick := core.Tick{
		Time:  time.Unix(0, event.Time*int64(time.Millisecond)),
		Price: price,
	}

	select {
	case b.ticks <- tick:
	default:
	}
}

// Next implements core.Feeder with a per-read timeout.
func (b *BinanceTicker) Next(ctx context.Context) (core.Tick, error) {
	timer := time.NewTimer(b.readTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return core.Tick{}, ctx.Err()
	case tick := <-b.ticks:
		return tick, nil
	case <-timer.C:
		return core.Tick{}, fmt.Errorf("no price from binance for %s within %s", b.symbol, b.readTimeout)
	}
}

func init() {
	Register("binance", func(opts Options) (core.Feeder, error) {
		if opts.Symbol == "" {
			return nil, fmt.Errorf("binance feed requires a symbol")
		}
		return NewBinanceTicker(context.Background(), opts.Symbol, opts.Log), nil
	})
}
