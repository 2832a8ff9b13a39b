// Package forward ships analytics updates to the downstream consumer over
// HTTP. Delivery failures are logged and counted, never fatal: the analytics
// core keeps running whether or not anyone is listening.
package forward

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alfredo-74/indabananamarket/internal/market"
	"github.com/alfredo-74/indabananamarket/internal/metrics"
	"github.com/alfredo-74/indabananamarket/internal/vwap"
)

const dataPath = "/api/bridge/data"

// Payload types understood by the downstream consumer.
const (
	TypeCandle = "volumetric_candle"
	TypeLevels = "vwap_levels"
	TypeSignal = "profile_signal"
)

// Forwarder posts JSON payloads to the consumer's bridge endpoint.
type Forwarder struct {
	base   string
	client *http.Client
	log    zerolog.Logger
}

// New builds a forwarder targeting baseURL. An empty baseURL yields a
// disabled forwarder whose methods are no-ops.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Forwarder {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Forwarder{
		base:   strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Enabled reports whether a downstream endpoint is configured.
func (f *Forwarder) Enabled() bool { return f.base != "" }

type envelope struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
	Data   any    `json:"data"`
}

// Candle forwards one completed volumetric candle.
func (f *Forwarder) Candle(symbol string, c market.Candle) error {
	return f.post(envelope{Type: TypeCandle, Symbol: symbol, Data: c})
}

// Levels forwards the current VWAP band levels.
func (f *Forwarder) Levels(symbol string, lv vwap.Levels) error {
	return f.post(envelope{Type: TypeLevels, Symbol: symbol, Data: lv})
}

// Signal forwards one order-flow signal update.
func (f *Forwarder) Signal(u market.SignalUpdate) error {
	return f.post(envelope{Type: TypeSignal, Symbol: u.Symbol, Data: u})
}

func (f *Forwarder) post(env envelope) error {
	if !f.Enabled() {
		return nil
	}
	body, err := json.Marshal(env)
	if err != nil {
		metrics.Forwards.WithLabelValues(env.Type, "error").Inc()
		return fmt.Errorf("marshal %s: %w", env.Type, err)
	}
	resp, err := f.client.Post(f.base+dataPath, "application/json", bytes.NewReader(body))
	if err != nil {
		metrics.Forwards.WithLabelValues(env.Type, "error").Inc()
		f.log.Warn().Err(err).Str("type", env.Type).Msg("forward failed")
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		metrics.Forwards.WithLabelValues(env.Type, "rejected").Inc()
		f.log.Warn().Int("status", resp.StatusCode).Str("type", env.Type).Msg("forward rejected")
		return fmt.Errorf("forward %s: status %d", env.Type, resp.StatusCode)
	}
	metrics.Forwards.WithLabelValues(env.Type, "ok").Inc()
	return nil
}
