// Package candle folds an irregular tick stream into fixed-volume OHLCV bars.
package candle

import (
	"time"

	"github.com/alfredo-74/indabananamarket/internal/market"
)

// DefaultTarget applies when a symbol has no entry in the target table.
const DefaultTarget int64 = 5000

// maxHistory bounds the completed-candle buffer kept for status queries.
const maxHistory = 500

var volumeTargets = map[string]int64{
	"ES":  5000, // E-mini S&P
	"MES": 5000, // Micro E-mini S&P
	"NQ":  5000, // E-mini Nasdaq
	"MNQ": 5000, // Micro E-mini Nasdaq
	"CL":  2000, // Crude Oil
	"GC":  2000, // Gold
}

// TargetForSymbol returns the per-instrument volume target, falling back to
// DefaultTarget for unknown symbols.
func TargetForSymbol(symbol string) int64 {
	if target, ok := volumeTargets[symbol]; ok {
		return target
	}
	return DefaultTarget
}

// Progress is a read-only snapshot of the candle under construction.
type Progress struct {
	Accumulated int64   `json:"accumulated_volume"`
	Target      int64   `json:"volume_target"`
	Percent     float64 `json:"progress_pct"`
	Ticks       int     `json:"ticks_count"`
	InProgress  bool    `json:"in_progress"`
	Open        float64 `json:"open,omitempty"`
	High        float64 `json:"high,omitempty"`
	Low         float64 `json:"low,omitempty"`
	Close       float64 `json:"close,omitempty"`
}

// Builder accumulates normalized ticks into volumetric candles. It holds at
// most one in-progress candle; completed candles are immutable once emitted.
// Not safe for concurrent use: the pipeline is a single-producer state machine.
type Builder struct {
	symbol string
	target int64

	inProgress bool
	acc        int64
	ticks      int
	open       float64
	high       float64
	low        float64
	closePx    float64
	openedAt   time.Time
	closedAt   time.Time

	completed []market.Candle
}

// NewBuilder constructs a builder for symbol. A non-positive target selects
// the instrument table default.
func NewBuilder(symbol string, target int64) *Builder {
	if target <= 0 {
		target = TargetForSymbol(symbol)
	}
	return &Builder{symbol: symbol, target: target}
}

// Symbol returns the instrument this builder tracks.
func (b *Builder) Symbol() string { return b.symbol }

// Target returns the configured volume target.
func (b *Builder) Target() int64 { return b.target }

// AddTick folds one tick into the current candle and returns the completed
// candle when the accumulator reaches the target, nil otherwise. Overflow
// beyond the target is recorded on the completed candle and carried into the
// next candle at the same price and timestamp; a single oversized tick may
// therefore complete several candles in one call, in which case the last one
// is returned (all of them land in the history buffer).
func (b *Builder) AddTick(price float64, volume int64, ts time.Time) *market.Candle {
	b.seed(price, ts)
	if price > b.high {
		b.high = price
	}
	if price < b.low {
		b.low = price
	}
	b.closePx = price
	b.closedAt = ts
	b.acc += volume
	b.ticks++

	var last *market.Candle
	for b.acc >= b.target {
		emitted := market.Candle{
			Open:     b.open,
			High:     b.high,
			Low:      b.low,
			Close:    b.closePx,
			Volume:   b.acc,
			Ticks:    b.ticks,
			OpenedAt: b.openedAt,
			ClosedAt: b.closedAt,
		}
		b.record(emitted)
		last = &emitted

		excess := b.acc - b.target
		b.inProgress = false
		b.acc = 0
		b.ticks = 0
		if excess == 0 {
			break
		}
		// The overflow was never a separate trade: it opens the next
		// candle at the same price and timestamp.
		b.seed(price, ts)
		b.closedAt = ts
		b.acc = excess
		b.ticks = 1
	}
	return last
}

func (b *Builder) seed(price float64, ts time.Time) {
	if b.inProgress {
		return
	}
	b.inProgress = true
	b.open = price
	b.high = price
	b.low = price
	b.closePx = price
	b.openedAt = ts
}

func (b *Builder) record(c market.Candle) {
	b.completed = append(b.completed, c)
	if len(b.completed) > maxHistory {
		b.completed = b.completed[len(b.completed)-maxHistory:]
	}
}

// Progress reports the candle under construction. Safe to call at any time,
// including on an empty builder.
func (b *Builder) Progress() Progress {
	p := Progress{
		Accumulated: b.acc,
		Target:      b.target,
		Ticks:       b.ticks,
		InProgress:  b.inProgress,
	}
	if b.target > 0 {
		p.Percent = float64(b.acc) / float64(b.target) * 100
	}
	if b.inProgress {
		p.Open = b.open
		p.High = b.high
		p.Low = b.low
		p.Close = b.closePx
	}
	return p
}

// LastCandle returns the most recently completed candle, or nil.
func (b *Builder) LastCandle() *market.Candle {
	if len(b.completed) == 0 {
		return nil
	}
	c := b.completed[len(b.completed)-1]
	return &c
}

// CandleCount returns how many candles have completed this session.
func (b *Builder) CandleCount() int { return len(b.completed) }

// Candles returns up to limit most recent completed candles; limit <= 0
// returns the whole retained history.
func (b *Builder) Candles(limit int) []market.Candle {
	if limit <= 0 || limit > len(b.completed) {
		limit = len(b.completed)
	}
	out := make([]market.Candle, limit)
	copy(out, b.completed[len(b.completed)-limit:])
	return out
}

// Reset discards the in-progress candle and the completed history. Session
// boundaries only.
func (b *Builder) Reset() {
	b.inProgress = false
	b.acc = 0
	b.ticks = 0
	b.completed = nil
}
