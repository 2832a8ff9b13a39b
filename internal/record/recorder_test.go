package record

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alfredo-74/indabananamarket/internal/market"
	"github.com/alfredo-74/indabananamarket/internal/vwap"
)

func TestRecorderWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "session.jsonl")
	rec, err := NewJSONLRecorder(path)
	if err != nil {
		t.Fatalf("NewJSONLRecorder returned error: %v", err)
	}

	rec.Candle("ES", market.Candle{Open: 5850, High: 5851, Low: 5849, Close: 5850.5, Volume: 5000, Ticks: 12, ClosedAt: time.Now()})
	rec.Levels("ES", vwap.Levels{VWAP: 5850.25, StdDev: 1.5})
	rec.Signal(market.SignalUpdate{ID: "u-1", Symbol: "ES", Signal: market.SignalBuy, Ts: time.Now()})
	if err := rec.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open recorded file: %v", err)
	}
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("bad line: %v", err)
		}
		events = append(events, ev)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Type != "candle" || events[0].Candle == nil || events[0].Candle.Volume != 5000 {
		t.Fatalf("unexpected candle event: %+v", events[0])
	}
	if events[1].Type != "levels" || events[1].Levels == nil || events[1].Levels.VWAP != 5850.25 {
		t.Fatalf("unexpected levels event: %+v", events[1])
	}
	if events[2].Type != "signal" || events[2].Signal == nil || events[2].Signal.Signal != market.SignalBuy {
		t.Fatalf("unexpected signal event: %+v", events[2])
	}
}

func TestRecorderCloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	rec, err := NewJSONLRecorder(path)
	if err != nil {
		t.Fatalf("NewJSONLRecorder returned error: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	// Writes after close are dropped, not panics.
	rec.Candle("ES", market.Candle{})
}
