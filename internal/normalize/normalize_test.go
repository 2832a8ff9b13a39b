package normalize

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/alfredo-74/indabananamarket/internal/market"
)

func newTestNormalizer() *Normalizer {
	return New("ES", Bounds{Min: 1000, Max: 15000}, zerolog.Nop())
}

func TestNormalizeAccepts(t *testing.T) {
	n := newTestNormalizer()
	ts := time.Now()
	tick, ok := n.Normalize(market.RawTick{Price: 5850.25, Volume: 100, Bid: 5850, Ask: 5850.5, Ts: ts})
	if !ok {
		t.Fatalf("expected tick to pass")
	}
	if tick.Price != 5850.25 || tick.Volume != 100 {
		t.Fatalf("unexpected tick: %+v", tick)
	}
	if tick.Symbol != "ES" {
		t.Fatalf("expected symbol stamped, got %q", tick.Symbol)
	}
	if !tick.Ts.Equal(ts) {
		t.Fatalf("expected timestamp preserved")
	}
}

func TestNormalizeRejectsBadPrice(t *testing.T) {
	n := newTestNormalizer()
	cases := []float64{0, -1, math.NaN(), math.Inf(1)}
	for _, px := range cases {
		if _, ok := n.Normalize(market.RawTick{Price: px, Volume: 10}); ok {
			t.Fatalf("expected price %v to be rejected", px)
		}
	}
	stats := n.Stats()
	if stats.Rejected != uint64(len(cases)) {
		t.Fatalf("expected %d rejections, got %d", len(cases), stats.Rejected)
	}
	if stats.Reasons[ReasonPriceInvalid] != uint64(len(cases)) {
		t.Fatalf("expected all rejections counted as %s: %+v", ReasonPriceInvalid, stats.Reasons)
	}
}

func TestNormalizeRejectsOutsideSanityBand(t *testing.T) {
	n := newTestNormalizer()
	// Decimal-shift corruption: an index future printing 50 is never real.
	if _, ok := n.Normalize(market.RawTick{Price: 50, Volume: 10}); ok {
		t.Fatalf("expected price below band to be rejected")
	}
	if _, ok := n.Normalize(market.RawTick{Price: 58502.5, Volume: 10}); ok {
		t.Fatalf("expected price above band to be rejected")
	}
	if n.Stats().Reasons[ReasonPriceOutOfRange] != 2 {
		t.Fatalf("expected 2 out-of-range rejections: %+v", n.Stats().Reasons)
	}
}

func TestNormalizeMissingVolumeBecomesZero(t *testing.T) {
	n := newTestNormalizer()
	tick, ok := n.Normalize(market.RawTick{Price: 5850, Volume: math.NaN()})
	if !ok {
		t.Fatalf("expected price-only update to pass")
	}
	if tick.Volume != 0 {
		t.Fatalf("expected volume 0, got %d", tick.Volume)
	}
}

func TestNormalizeRejectsNegativeVolume(t *testing.T) {
	n := newTestNormalizer()
	if _, ok := n.Normalize(market.RawTick{Price: 5850, Volume: -5}); ok {
		t.Fatalf("expected negative volume to be rejected")
	}
}

func TestNormalizeStampsTimestamp(t *testing.T) {
	n := newTestNormalizer()
	tick, ok := n.Normalize(market.RawTick{Price: 5850, Volume: 1})
	if !ok {
		t.Fatalf("expected tick to pass")
	}
	if tick.Ts.IsZero() {
		t.Fatalf("expected missing timestamp to be filled")
	}
}

func TestZeroBoundsAcceptAnyPositivePrice(t *testing.T) {
	n := New("CL", Bounds{}, zerolog.Nop())
	if _, ok := n.Normalize(market.RawTick{Price: 68.42, Volume: 3}); !ok {
		t.Fatalf("expected unbounded normalizer to accept positive price")
	}
}

func TestResetClearsStats(t *testing.T) {
	n := newTestNormalizer()
	n.Normalize(market.RawTick{Price: 5850, Volume: 1})
	n.Normalize(market.RawTick{Price: -1, Volume: 1})
	n.Reset()
	stats := n.Stats()
	if stats.Accepted != 0 || stats.Rejected != 0 {
		t.Fatalf("expected zeroed stats after reset, got %+v", stats)
	}
}
