// Package vwap maintains a rolling window of completed-bar samples and
// derives the volume-weighted average price with statistical band levels.
package vwap

import "math"

// DefaultLookback is the number of bar samples kept in the sliding window.
// Kept small so the computed deviation stays reactive.
const DefaultLookback = 50

// Direction selects the exit-level mapping for an open position.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// Levels carries VWAP and the symmetric standard-deviation bands, rounded to
// instrument presentation precision (2 decimals).
type Levels struct {
	VWAP     float64 `json:"vwap"`
	StdDev   float64 `json:"std_dev"`
	SDPlus1  float64 `json:"sd_plus_1"`
	SDPlus2  float64 `json:"sd_plus_2"`
	SDPlus3  float64 `json:"sd_plus_3"`
	SDMinus1 float64 `json:"sd_minus_1"`
	SDMinus2 float64 `json:"sd_minus_2"`
	SDMinus3 float64 `json:"sd_minus_3"`
}

// ExitPlan maps the band levels into the vocabulary the trading logic
// expects: ascending take-profits, a reversal marker, and a protective stop.
type ExitPlan struct {
	TP1          float64 `json:"tp1"`
	TP2          float64 `json:"tp2"`
	TP3          float64 `json:"tp3"`
	VWAPReversal float64 `json:"vwap_reversal"`
	Stop         float64 `json:"stop"`
}

type sample struct {
	price  float64
	volume int64
}

// Engine holds the bounded FIFO of (price, volume) samples, one per
// completed candle. Oldest samples are evicted on overflow: a strict sliding
// window, not exponential decay.
type Engine struct {
	lookback int
	samples  []sample
}

// NewEngine builds an engine keeping at most lookback samples; non-positive
// values select DefaultLookback.
func NewEngine(lookback int) *Engine {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &Engine{lookback: lookback}
}

// AddBar appends one completed-bar sample, evicting the oldest beyond the
// window. Price is expected to be the bar's typical price.
func (e *Engine) AddBar(price float64, volume int64) {
	e.samples = append(e.samples, sample{price: price, volume: volume})
	if len(e.samples) > e.lookback {
		e.samples = e.samples[1:]
	}
}

// Len returns the current window occupancy.
func (e *Engine) Len() int { return len(e.samples) }

// VWAP returns Σ(price·volume)/Σ(volume) over the window at full precision.
// ok is false when the window is empty or carries zero total volume.
func (e *Engine) VWAP() (float64, bool) {
	if len(e.samples) == 0 {
		return 0, false
	}
	var pv float64
	var total int64
	for _, s := range e.samples {
		pv += s.price * float64(s.volume)
		total += s.volume
	}
	if total == 0 {
		return 0, false
	}
	return pv / float64(total), true
}

// StdDev returns the volume-weighted standard deviation of prices around the
// VWAP: sqrt(Σ(volume·(price−vwap)²)/Σ(volume)). Requires at least two
// samples.
func (e *Engine) StdDev() (float64, bool) {
	if len(e.samples) < 2 {
		return 0, false
	}
	vwap, ok := e.VWAP()
	if !ok {
		return 0, false
	}
	var weighted float64
	var total int64
	for _, s := range e.samples {
		d := s.price - vwap
		weighted += float64(s.volume) * d * d
		total += s.volume
	}
	if total == 0 {
		return 0, false
	}
	return math.Sqrt(weighted / float64(total)), true
}

// Levels derives the band levels, or nil while the window cannot support the
// deviation computation. Callers treat nil as "not yet ready", not a fault.
func (e *Engine) Levels() *Levels {
	vwap, ok := e.VWAP()
	if !ok {
		return nil
	}
	sd, ok := e.StdDev()
	if !ok {
		return nil
	}
	return &Levels{
		VWAP:     round2(vwap),
		StdDev:   round2(sd),
		SDPlus1:  round2(vwap + sd),
		SDPlus2:  round2(vwap + 2*sd),
		SDPlus3:  round2(vwap + 3*sd),
		SDMinus1: round2(vwap - sd),
		SDMinus2: round2(vwap - 2*sd),
		SDMinus3: round2(vwap - 3*sd),
	}
}

// ExitLevels maps the current bands onto take-profit and stop levels for the
// given position direction. Nil while levels are unavailable.
func (e *Engine) ExitLevels(dir Direction) *ExitPlan {
	levels := e.Levels()
	if levels == nil {
		return nil
	}
	switch dir {
	case Short:
		return &ExitPlan{
			TP1:          levels.SDMinus1,
			TP2:          levels.SDMinus2,
			TP3:          levels.SDMinus3,
			VWAPReversal: levels.VWAP,
			Stop:         levels.SDPlus1,
		}
	default:
		return &ExitPlan{
			TP1:          levels.SDPlus1,
			TP2:          levels.SDPlus2,
			TP3:          levels.SDPlus3,
			VWAPReversal: levels.VWAP,
			Stop:         levels.SDMinus1,
		}
	}
}

// AboveVWAP reports whether price trades above the current VWAP. ok is false
// while the VWAP is unavailable.
func (e *Engine) AboveVWAP(price float64) (bool, bool) {
	vwap, ok := e.VWAP()
	if !ok {
		return false, false
	}
	return price > vwap, true
}

// NearBand reports whether price sits within tolerancePct percent of either
// the +k or −k deviation band.
func (e *Engine) NearBand(price float64, k int, tolerancePct float64) (bool, bool) {
	levels := e.Levels()
	if levels == nil || k < 1 || k > 3 {
		return false, false
	}
	var plus, minus float64
	switch k {
	case 1:
		plus, minus = levels.SDPlus1, levels.SDMinus1
	case 2:
		plus, minus = levels.SDPlus2, levels.SDMinus2
	case 3:
		plus, minus = levels.SDPlus3, levels.SDMinus3
	}
	tolerance := price * tolerancePct / 100
	return math.Abs(price-plus) <= tolerance || math.Abs(price-minus) <= tolerance, true
}

// Reset clears the sample window. Session boundaries only: mid-window resets
// discard statistical continuity.
func (e *Engine) Reset() {
	e.samples = nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
