// Package feed hosts tick-source adapters. The analytics core expects
// in-order, single-producer delivery; each adapter owns that guarantee at
// the I/O boundary.
package feed

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/alfredo-74/indabananamarket/internal/market"
)

const (
	// ProviderStub emits deterministic synthetic ticks (useful for tests/offline work).
	ProviderStub = "stub"
	// ProviderGateway consumes JSON tick frames from a broker gateway websocket.
	ProviderGateway = "gateway"
)

const defaultStubInterval = 250 * time.Millisecond

// Feed represents a pluggable market data stream implementation.
type Feed struct {
	provider     string
	symbol       string
	gatewayURL   string
	stubInterval time.Duration
	log          zerolog.Logger
}

// Option configures Feed construction parameters.
type Option func(*Feed)

// WithGatewayURL points the gateway provider at a websocket endpoint.
func WithGatewayURL(url string) Option {
	return func(f *Feed) {
		if url != "" {
			f.gatewayURL = url
		}
	}
}

// WithStubInterval overrides the synthetic tick cadence.
func WithStubInterval(d time.Duration) Option {
	return func(f *Feed) {
		if d > 0 {
			f.stubInterval = d
		}
	}
}

// NewFeed constructs a feed for one instrument backed by the requested provider.
func NewFeed(provider, symbol string, log zerolog.Logger, opts ...Option) *Feed {
	if provider == "" {
		provider = ProviderStub
	}
	f := &Feed{
		provider:     provider,
		symbol:       symbol,
		stubInterval: defaultStubInterval,
		log:          log,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run pushes raw ticks onto the provided channel until the context is canceled.
func (f *Feed) Run(ctx context.Context, out chan<- market.RawTick) error {
	switch f.provider {
	case ProviderGateway:
		return f.runGateway(ctx, out)
	default:
		return f.runStub(ctx, out)
	}
}

// runStub walks a synthetic ES-like price deterministically: forty ticks up,
// forty ticks down, a quarter point at a time.
func (f *Feed) runStub(ctx context.Context, out chan<- market.RawTick) error {
	ticker := time.NewTicker(f.stubInterval)
	defer ticker.Stop()

	px := 5850.00
	step := 0.25
	var count int
	var vol int64 = 1
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ts := <-ticker.C:
			px += step
			count++
			if count%40 == 0 {
				step = -step
			}
			vol = vol%5 + 1
			tick := market.RawTick{
				Symbol: f.symbol,
				Price:  px,
				Volume: float64(vol * 10),
				Bid:    px - 0.25,
				Ask:    px + 0.25,
				Ts:     ts,
			}
			select {
			case out <- tick:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
