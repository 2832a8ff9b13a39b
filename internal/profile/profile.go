// Package profile maintains a session volume profile (price-level histogram)
// with point-of-control and value-area levels, and classifies per-tick
// aggressor pressure into a directional signal.
package profile

import (
	"sort"
	"time"

	"github.com/alfredo-74/indabananamarket/internal/market"
	"github.com/alfredo-74/indabananamarket/internal/metrics"
)

// Defaults matching the ES configuration the system was tuned on.
const (
	DefaultTickSize          = 0.25
	DefaultValueAreaFraction = 0.7
	DefaultRecomputeInterval = 500
	DefaultSignalThreshold   = 0.9
)

// Config tunes the engine. Zero values select the defaults above.
type Config struct {
	// TickSize is the instrument tick increment; the aggressor threshold
	// is half of it, never hardcoded per-venue.
	TickSize          float64
	ValueAreaFraction float64
	RecomputeInterval int64
	SignalThreshold   float64
}

func (c Config) withDefaults() Config {
	if c.TickSize <= 0 {
		c.TickSize = DefaultTickSize
	}
	if c.ValueAreaFraction <= 0 || c.ValueAreaFraction > 1 {
		c.ValueAreaFraction = DefaultValueAreaFraction
	}
	if c.RecomputeInterval <= 0 {
		c.RecomputeInterval = DefaultRecomputeInterval
	}
	if c.SignalThreshold <= 0 || c.SignalThreshold > 1 {
		c.SignalThreshold = DefaultSignalThreshold
	}
	return c
}

// Snapshot is a read-only view of the profile and pressure state.
type Snapshot struct {
	Ready        bool          `json:"ready"`
	POC          float64       `json:"poc"`
	VAH          float64       `json:"vah"`
	VAL          float64       `json:"val"`
	TotalVolume  int64         `json:"total_volume"`
	LevelCount   int           `json:"level_count"`
	BuyPressure  int64         `json:"buy_pressure"`
	SellPressure int64         `json:"sell_pressure"`
	BuyRatio     float64       `json:"buy_ratio"`
	SellRatio    float64       `json:"sell_ratio"`
	Signal       market.Signal `json:"signal"`
}

// Engine owns one instrument's session profile. Like the rest of the
// analytics core it is single-producer and performs no locking.
type Engine struct {
	symbol    string
	cfg       Config
	threshold float64 // half tick beyond bid/ask

	levels      map[int]int64
	totalVolume int64

	buyPressure  int64
	sellPressure int64

	ready         bool
	poc           int
	vah           int
	val           int
	nextRecompute int64
}

// NewEngine builds a profile engine for symbol.
func NewEngine(symbol string, cfg Config) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		symbol:        symbol,
		cfg:           cfg,
		threshold:     cfg.TickSize / 2,
		levels:        make(map[int]int64),
		nextRecompute: cfg.RecomputeInterval,
	}
}

// OnTick accumulates the tick into the histogram and pressure counters, and
// returns a SignalUpdate when the throttled value-area recomputation fires,
// nil otherwise. The level and total updates are performed back to back with
// no intermediate observable state.
func (e *Engine) OnTick(price float64, volume int64, bid, ask float64) *market.SignalUpdate {
	// Truncation, not rounding, to match venue tick granularity.
	level := int(price)
	e.levels[level] += volume
	e.totalVolume += volume

	// Aggressor proxy: trades pushing through the quote midline classify
	// as buyer- or seller-initiated; inside the spread stays unclassified.
	if bid > 0 && ask > 0 {
		switch {
		case price > bid+e.threshold:
			e.buyPressure += volume
		case price < ask-e.threshold:
			e.sellPressure += volume
		}
	}

	if e.totalVolume < e.nextRecompute {
		return nil
	}
	return e.recompute(time.Now())
}

// Seed accumulates historical volume into the histogram without touching
// pressure counters (bars carry no bid/ask to classify against).
func (e *Engine) Seed(price float64, volume int64) {
	e.levels[int(price)] += volume
	e.totalVolume += volume
}

// Recalculate forces a value-area recomputation, used after bulk seeding.
func (e *Engine) Recalculate() *market.SignalUpdate {
	return e.recompute(time.Now())
}

func (e *Engine) recompute(now time.Time) *market.SignalUpdate {
	e.nextRecompute = (e.totalVolume/e.cfg.RecomputeInterval + 1) * e.cfg.RecomputeInterval
	if e.totalVolume == 0 || len(e.levels) == 0 {
		return nil
	}

	type levelVolume struct {
		level  int
		volume int64
	}
	ranked := make([]levelVolume, 0, len(e.levels))
	for level, vol := range e.levels {
		ranked = append(ranked, levelVolume{level: level, volume: vol})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].volume != ranked[j].volume {
			return ranked[i].volume > ranked[j].volume
		}
		return ranked[i].level < ranked[j].level
	})

	e.poc = ranked[0].level
	targetVolume := int64(float64(e.totalVolume) * e.cfg.ValueAreaFraction)

	// Walk levels by descending volume until the value-area fraction is
	// covered; the extremes of the walked set bound the value area.
	// TODO: confirm with product how VAL should behave when fewer than a
	// handful of levels have traded; the walk degenerates to the full
	// range there.
	var cum int64
	high, low := e.poc, e.poc
	for _, lv := range ranked {
		cum += lv.volume
		if lv.level > high {
			high = lv.level
		}
		if lv.level < low {
			low = lv.level
		}
		if cum >= targetVolume {
			break
		}
	}
	e.vah = high
	e.val = low
	e.ready = true

	metrics.ProfileRecomputes.WithLabelValues(e.symbol).Inc()

	update := &market.SignalUpdate{
		Symbol:      e.symbol,
		POC:         float64(e.poc),
		VAH:         float64(e.vah),
		VAL:         float64(e.val),
		TotalVolume: e.totalVolume,
		BuyRatio:    e.buyRatio(),
		SellRatio:   e.sellRatio(),
		Signal:      e.signal(),
		Ts:          now,
	}
	metrics.SignalUpdates.WithLabelValues(e.symbol, string(update.Signal)).Inc()
	return update
}

func (e *Engine) buyRatio() float64 {
	return float64(e.buyPressure) / float64(max64(e.totalVolume, 1))
}

func (e *Engine) sellRatio() float64 {
	return float64(e.sellPressure) / float64(max64(e.totalVolume, 1))
}

func (e *Engine) signal() market.Signal {
	switch {
	case e.buyRatio() > e.cfg.SignalThreshold:
		return market.SignalBuy
	case e.sellRatio() > e.cfg.SignalThreshold:
		return market.SignalSell
	default:
		return market.SignalNeutral
	}
}

// TotalVolume returns the session's accumulated volume.
func (e *Engine) TotalVolume() int64 { return e.totalVolume }

// LevelVolume returns the volume accumulated at one integer price level.
func (e *Engine) LevelVolume(level int) int64 { return e.levels[level] }

// Snapshot returns the current profile state; Ready is false until the first
// recomputation has produced value-area levels.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Ready:        e.ready,
		POC:          float64(e.poc),
		VAH:          float64(e.vah),
		VAL:          float64(e.val),
		TotalVolume:  e.totalVolume,
		LevelCount:   len(e.levels),
		BuyPressure:  e.buyPressure,
		SellPressure: e.sellPressure,
		BuyRatio:     e.buyRatio(),
		SellRatio:    e.sellRatio(),
		Signal:       e.signal(),
	}
}

// Reset clears the histogram, pressure counters, and derived levels at a
// session boundary.
func (e *Engine) Reset() {
	e.levels = make(map[int]int64)
	e.totalVolume = 0
	e.buyPressure = 0
	e.sellPressure = 0
	e.ready = false
	e.poc, e.vah, e.val = 0, 0, 0
	e.nextRecompute = e.cfg.RecomputeInterval
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
