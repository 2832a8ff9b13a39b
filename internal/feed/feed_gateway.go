package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alfredo-74/indabananamarket/internal/market"
)

// gatewayFrame mirrors the JSON the broker gateway forwards per tick. Price
// and volume arrive as pointers because the upstream snapshot may omit them.
type gatewayFrame struct {
	Type      string   `json:"type"`
	Symbol    string   `json:"symbol"`
	LastPrice *float64 `json:"last_price"`
	Bid       *float64 `json:"bid"`
	Ask       *float64 `json:"ask"`
	Volume    *float64 `json:"volume"`
	Timestamp int64    `json:"timestamp"`
}

func (f *Feed) runGateway(ctx context.Context, out chan<- market.RawTick) error {
	if f.gatewayURL == "" {
		return fmt.Errorf("gateway feed requires a websocket url")
	}

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := f.consumeGateway(ctx, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.log.Warn().Err(err).Msg("gateway feed disconnected, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
			continue
		}
		return nil
	}
}

func (f *Feed) consumeGateway(ctx context.Context, out chan<- market.RawTick) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, f.gatewayURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	f.log.Info().Str("provider", ProviderGateway).Str("sym", f.symbol).Msg("connected market data feed")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					f.log.Warn().Err(err).Msg("gateway ping failed")
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var frame gatewayFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			f.log.Warn().Err(err).Msg("failed to decode gateway message")
			continue
		}
		if frame.Type != "" && frame.Type != "market_data" {
			continue
		}
		if frame.Symbol != "" && frame.Symbol != f.symbol {
			continue
		}

		tick := frameToRawTick(f.symbol, frame)
		select {
		case out <- tick:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// frameToRawTick maps optional fields to NaN so the normalizer can apply its
// missing-value rules instead of the feed inventing data.
func frameToRawTick(symbol string, frame gatewayFrame) market.RawTick {
	deref := func(v *float64) float64 {
		if v == nil {
			return math.NaN()
		}
		return *v
	}
	tick := market.RawTick{
		Symbol: symbol,
		Price:  deref(frame.LastPrice),
		Volume: deref(frame.Volume),
		Bid:    deref(frame.Bid),
		Ask:    deref(frame.Ask),
	}
	if frame.Timestamp > 0 {
		tick.Ts = time.UnixMilli(frame.Timestamp)
	}
	return tick
}
