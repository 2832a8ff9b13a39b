// Package market standardizes payloads shared between data ingestion and analytics layers.
package market

import (
	"math"
	"time"
)

// RawTick is one unvalidated price/volume update as delivered by a feed
// adapter. Price or Volume may be NaN when the upstream field was absent.
type RawTick struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Volume float64   `json:"volume"`
	Bid    float64   `json:"bid,omitempty"`
	Ask    float64   `json:"ask,omitempty"`
	Ts     time.Time `json:"timestamp"`
}

// Tick is a validated, canonical tick ready for the analytics engines.
type Tick struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Volume int64     `json:"volume"`
	Bid    float64   `json:"bid,omitempty"`
	Ask    float64   `json:"ask,omitempty"`
	Ts     time.Time `json:"timestamp"`
}

// Candle is an OHLCV bar whose boundary is defined by accumulated volume
// reaching a target rather than elapsed time. Immutable once emitted.
type Candle struct {
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
	Ticks    int       `json:"ticks_count"`
	OpenedAt time.Time `json:"timestamp_open"`
	ClosedAt time.Time `json:"timestamp_close"`
}

// TypicalPrice returns (high+low+close)/3, the price fed into the VWAP window.
func (c Candle) TypicalPrice() float64 {
	return (c.High + c.Low + c.Close) / 3
}

// Bar is one pre-aggregated historical bar used for warm-starting the engines.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// DayBars groups historical bars by trading day.
type DayBars struct {
	Date string `json:"date"`
	Bars []Bar  `json:"bars"`
}

// Signal expresses the directional bias derived from order flow.
type Signal string

const (
	// SignalBuy indicates buy pressure dominates the session.
	SignalBuy Signal = "BUY"
	// SignalSell indicates sell pressure dominates the session.
	SignalSell Signal = "SELL"
	// SignalNeutral indicates neither side dominates.
	SignalNeutral Signal = "NEUTRAL"
)

// SignalUpdate is emitted on each throttled profile recomputation.
type SignalUpdate struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	POC         float64   `json:"poc"`
	VAH         float64   `json:"vah"`
	VAL         float64   `json:"val"`
	TotalVolume int64     `json:"total_volume"`
	BuyRatio    float64   `json:"buy_ratio"`
	SellRatio   float64   `json:"sell_ratio"`
	Signal      Signal    `json:"signal"`
	Ts          time.Time `json:"timestamp"`
}

// Finite reports whether v is a usable number (not NaN, not infinite).
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
