// Package normalize validates and canonicalizes raw feed ticks before they
// reach the analytics engines. Corrupt ticks are dropped and counted, never
// propagated as errors: the pipeline keeps running on a dirty stream.
package normalize

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/alfredo-74/indabananamarket/internal/market"
	"github.com/alfredo-74/indabananamarket/internal/metrics"
)

// Reject reasons reported through metrics and Stats.
const (
	ReasonPriceInvalid    = "price_invalid"
	ReasonPriceOutOfRange = "price_out_of_range"
	ReasonVolumeNegative  = "volume_negative"
)

// Bounds is the instrument sanity band. Prices outside it are treated as
// upstream corruption (decimal-shift errors, stale snapshot artifacts).
type Bounds struct {
	Min float64
	Max float64
}

// Contains reports whether price falls inside the band. A zero-valued band
// accepts any positive price.
func (b Bounds) Contains(price float64) bool {
	if b.Min == 0 && b.Max == 0 {
		return true
	}
	return price >= b.Min && price <= b.Max
}

// Stats is a read-only view of the normalizer's accept/reject accounting.
type Stats struct {
	Accepted uint64            `json:"accepted"`
	Rejected uint64            `json:"rejected"`
	Reasons  map[string]uint64 `json:"reasons,omitempty"`
}

// Normalizer screens one instrument's tick stream.
type Normalizer struct {
	symbol   string
	bounds   Bounds
	log      zerolog.Logger
	accepted uint64
	rejected map[string]uint64
}

// New builds a normalizer for one instrument with its sanity band.
func New(symbol string, bounds Bounds, log zerolog.Logger) *Normalizer {
	return &Normalizer{
		symbol:   symbol,
		bounds:   bounds,
		log:      log,
		rejected: make(map[string]uint64),
	}
}

// Normalize validates raw and returns the canonical tick. ok is false when
// the tick was dropped; the caller must not forward a dropped tick.
func (n *Normalizer) Normalize(raw market.RawTick) (market.Tick, bool) {
	metrics.TicksReceived.WithLabelValues(n.symbol).Inc()
	if !market.Finite(raw.Price) || raw.Price <= 0 {
		return n.reject(raw, ReasonPriceInvalid)
	}
	if !n.bounds.Contains(raw.Price) {
		return n.reject(raw, ReasonPriceOutOfRange)
	}

	// A missing or non-finite volume means a price update with no new
	// traded size, not a corrupt tick.
	volume := raw.Volume
	if !market.Finite(volume) {
		volume = 0
	}
	if volume < 0 {
		return n.reject(raw, ReasonVolumeNegative)
	}

	bid, ask := raw.Bid, raw.Ask
	if !market.Finite(bid) || bid < 0 {
		bid = 0
	}
	if !market.Finite(ask) || ask < 0 {
		ask = 0
	}
	ts := raw.Ts
	if ts.IsZero() {
		ts = time.Now()
	}

	n.accepted++
	return market.Tick{
		Symbol: n.symbol,
		Price:  raw.Price,
		Volume: int64(volume),
		Bid:    bid,
		Ask:    ask,
		Ts:     ts,
	}, true
}

func (n *Normalizer) reject(raw market.RawTick, reason string) (market.Tick, bool) {
	n.rejected[reason]++
	metrics.TicksRejected.WithLabelValues(n.symbol, reason).Inc()
	n.log.Debug().Str("sym", n.symbol).Str("reason", reason).Float64("px", raw.Price).Float64("vol", raw.Volume).Msg("tick rejected")
	return market.Tick{}, false
}

// Stats returns a snapshot of accept/reject counters.
func (n *Normalizer) Stats() Stats {
	var total uint64
	reasons := make(map[string]uint64, len(n.rejected))
	for reason, count := range n.rejected {
		reasons[reason] = count
		total += count
	}
	return Stats{Accepted: n.accepted, Rejected: total, Reasons: reasons}
}

// Reset clears the accounting at a session boundary.
func (n *Normalizer) Reset() {
	n.accepted = 0
	n.rejected = make(map[string]uint64)
}
