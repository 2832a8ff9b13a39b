// Package session composes the per-instrument analytics engines and routes
// every tick through them in order. It performs no analytics itself.
package session

import (
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alfredo-74/indabananamarket/internal/candle"
	"github.com/alfredo-74/indabananamarket/internal/market"
	"github.com/alfredo-74/indabananamarket/internal/metrics"
	"github.com/alfredo-74/indabananamarket/internal/normalize"
	"github.com/alfredo-74/indabananamarket/internal/profile"
	"github.com/alfredo-74/indabananamarket/internal/vwap"
)

// Options carries the per-instrument configuration for one controller.
type Options struct {
	Symbol            string
	VolumeTarget      int64
	TickSize          float64
	PriceMin          float64
	PriceMax          float64
	LookbackPeriods   int
	ValueAreaFraction float64
	RecomputeInterval int64
	SignalThreshold   float64
}

// Update is everything one tick produced: any of the fields may be nil when
// the corresponding engine emitted nothing this tick.
type Update struct {
	Candle *market.Candle
	Levels *vwap.Levels
	Signal *market.SignalUpdate
}

// Status is the consolidated query surface aggregating all engines.
type Status struct {
	Symbol           string           `json:"symbol"`
	Ticks            normalize.Stats  `json:"ticks"`
	Progress         candle.Progress  `json:"candle_progress"`
	CandlesCompleted int              `json:"candles_completed"`
	LastCandle       *market.Candle   `json:"last_candle,omitempty"`
	Levels           *vwap.Levels     `json:"vwap_levels,omitempty"`
	Profile          profile.Snapshot `json:"profile"`
}

// Controller owns one instance of each analytics engine for one instrument.
// The engines never reference each other: all fan-out happens here, one tick
// fully processed before the next is accepted.
type Controller struct {
	symbol  string
	log     zerolog.Logger
	norm    *normalize.Normalizer
	builder *candle.Builder
	vwap    *vwap.Engine
	profile *profile.Engine
}

// New wires a controller from options; zero option values select the
// per-instrument and engine defaults.
func New(opts Options, log zerolog.Logger) *Controller {
	symbol := opts.Symbol
	if symbol == "" {
		symbol = "ES"
	}
	return &Controller{
		symbol:  symbol,
		log:     log,
		norm:    normalize.New(symbol, normalize.Bounds{Min: opts.PriceMin, Max: opts.PriceMax}, log),
		builder: candle.NewBuilder(symbol, opts.VolumeTarget),
		vwap:    vwap.NewEngine(opts.LookbackPeriods),
		profile: profile.NewEngine(symbol, profile.Config{
			TickSize:          opts.TickSize,
			ValueAreaFraction: opts.ValueAreaFraction,
			RecomputeInterval: opts.RecomputeInterval,
			SignalThreshold:   opts.SignalThreshold,
		}),
	}
}

// Symbol returns the tracked instrument.
func (c *Controller) Symbol() string { return c.symbol }

// OnRawTick validates one raw tick and fans it out: candle accumulation,
// profile update, and, when a candle completes, a VWAP window update. The
// returned Update carries whatever the engines emitted.
func (c *Controller) OnRawTick(raw market.RawTick) Update {
	tick, ok := c.norm.Normalize(raw)
	if !ok {
		return Update{}
	}

	var update Update
	if completed := c.builder.AddTick(tick.Price, tick.Volume, tick.Ts); completed != nil {
		update.Candle = completed
		metrics.CandlesCompleted.WithLabelValues(c.symbol).Inc()
		c.vwap.AddBar(completed.TypicalPrice(), completed.Volume)
		if levels := c.vwap.Levels(); levels != nil {
			update.Levels = levels
			metrics.VWAPUpdates.WithLabelValues(c.symbol).Inc()
		}
		c.log.Debug().Float64("close", completed.Close).Int64("vol", completed.Volume).Int("ticks", completed.Ticks).Msg("candle completed")
	}

	if signal := c.profile.OnTick(tick.Price, tick.Volume, tick.Bid, tick.Ask); signal != nil {
		signal.ID = uuid.NewString()
		update.Signal = signal
	}
	return update
}

// SeedHistory warm-starts the VWAP window and the profile histogram from
// pre-aggregated daily bars, then recomputes the composite value area. The
// returned update is nil when nothing was seeded.
func (c *Controller) SeedHistory(days []market.DayBars) *market.SignalUpdate {
	if len(days) == 0 {
		return nil
	}
	sorted := make([]market.DayBars, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	var bars int
	for _, day := range sorted {
		for _, bar := range day.Bars {
			c.vwap.AddBar((bar.High+bar.Low+bar.Close)/3, bar.Volume)
			c.profile.Seed(bar.Close, bar.Volume)
			bars++
		}
	}
	if bars == 0 {
		return nil
	}
	update := c.profile.Recalculate()
	if update != nil {
		update.ID = uuid.NewString()
	}
	c.log.Info().Int("days", len(sorted)).Int("bars", bars).Msg("historical seed loaded")
	return update
}

// Status aggregates the engines' read-only state. Safe to call between ticks
// at any time.
func (c *Controller) Status() Status {
	return Status{
		Symbol:           c.symbol,
		Ticks:            c.norm.Stats(),
		Progress:         c.builder.Progress(),
		CandlesCompleted: c.builder.CandleCount(),
		LastCandle:       c.builder.LastCandle(),
		Levels:           c.vwap.Levels(),
		Profile:          c.profile.Snapshot(),
	}
}

// ExitLevels exposes the VWAP band mapping for an open position direction.
func (c *Controller) ExitLevels(dir vwap.Direction) *vwap.ExitPlan {
	return c.vwap.ExitLevels(dir)
}

// Reset clears every engine at a session boundary. The caller must not
// deliver ticks concurrently: no tick may observe a half-reset pipeline.
func (c *Controller) Reset() {
	c.norm.Reset()
	c.builder.Reset()
	c.vwap.Reset()
	c.profile.Reset()
	c.log.Info().Str("sym", c.symbol).Msg("session reset")
}
