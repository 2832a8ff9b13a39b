package forward

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/alfredo-74/indabananamarket/internal/market"
)

func TestForwardCandle(t *testing.T) {
	var got envelope
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/bridge/data" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := New(srv.URL, time.Second, zerolog.Nop())
	candle := market.Candle{Open: 5850, High: 5851, Low: 5849.5, Close: 5850.75, Volume: 5000, Ticks: 42}
	if err := f.Candle("ES", candle); err != nil {
		t.Fatalf("Candle returned error: %v", err)
	}
	if got.Type != TypeCandle || got.Symbol != "ES" {
		t.Fatalf("unexpected envelope: %+v", got)
	}
}

func TestForwardRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := New(srv.URL, time.Second, zerolog.Nop())
	if err := f.Signal(market.SignalUpdate{Symbol: "ES", Signal: market.SignalNeutral}); err == nil {
		t.Fatalf("expected error on non-200 status")
	}
}

func TestDisabledForwarderIsNoOp(t *testing.T) {
	f := New("", time.Second, zerolog.Nop())
	if f.Enabled() {
		t.Fatalf("expected disabled forwarder")
	}
	if err := f.Candle("ES", market.Candle{}); err != nil {
		t.Fatalf("disabled forwarder must not error: %v", err)
	}
}
