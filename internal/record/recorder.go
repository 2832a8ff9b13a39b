// Package record appends emitted analytics as JSON lines for later analysis.
package record

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alfredo-74/indabananamarket/internal/market"
	"github.com/alfredo-74/indabananamarket/internal/vwap"
)

// Event is one recorded line; exactly one of the data fields is set.
type Event struct {
	Type   string               `json:"type"`
	Symbol string               `json:"symbol"`
	Ts     time.Time            `json:"ts"`
	Candle *market.Candle       `json:"candle,omitempty"`
	Levels *vwap.Levels         `json:"levels,omitempty"`
	Signal *market.SignalUpdate `json:"signal,omitempty"`
}

// JSONLRecorder appends events as JSON lines.
type JSONLRecorder struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewJSONLRecorder creates/opens the target file and returns a recorder.
func NewJSONLRecorder(path string) (*JSONLRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONLRecorder{
		file: file,
		enc:  json.NewEncoder(file),
	}, nil
}

// Candle records one completed volumetric candle.
func (r *JSONLRecorder) Candle(symbol string, c market.Candle) {
	r.write(Event{Type: "candle", Symbol: symbol, Ts: c.ClosedAt, Candle: &c})
}

// Levels records a VWAP level update.
func (r *JSONLRecorder) Levels(symbol string, lv vwap.Levels) {
	r.write(Event{Type: "levels", Symbol: symbol, Ts: time.Now(), Levels: &lv})
}

// Signal records an order-flow signal update.
func (r *JSONLRecorder) Signal(u market.SignalUpdate) {
	r.write(Event{Type: "signal", Symbol: u.Symbol, Ts: u.Ts, Signal: &u})
}

func (r *JSONLRecorder) write(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return
	}
	_ = r.enc.Encode(ev)
}

// Close flushes and closes the file handle.
func (r *JSONLRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
