package main

import (
	"context"
	"flag"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/alfredo-74/indabananamarket/internal/config"
	"github.com/alfredo-74/indabananamarket/internal/feed"
	"github.com/alfredo-74/indabananamarket/internal/forward"
	"github.com/alfredo-74/indabananamarket/internal/market"
	"github.com/alfredo-74/indabananamarket/internal/metrics"
	"github.com/alfredo-74/indabananamarket/internal/record"
	"github.com/alfredo-74/indabananamarket/internal/session"
	"github.com/alfredo-74/indabananamarket/internal/util"
)

func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "path to yaml config")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		boot := util.NewLogger("info")
		boot.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	src := feed.NewFeed(cfg.Feed.Provider, cfg.Instrument.Symbol, util.Component(log, "feed"),
		feed.WithGatewayURL(cfg.Feed.GatewayURL),
		feed.WithStubInterval(time.Duration(cfg.Feed.StubIntervalMs)*time.Millisecond),
	)
	ticks := make(chan market.RawTick, 1024)
	go func() {
		if err := src.Run(ctx, ticks); err != nil {
			log.Error().Err(err).Msg("feed stopped")
			cancel()
		}
	}()

	ctrl := session.New(session.Options{
		Symbol:            cfg.Instrument.Symbol,
		VolumeTarget:      cfg.Instrument.VolumeTarget,
		TickSize:          cfg.Instrument.TickSize,
		PriceMin:          cfg.Instrument.PriceMin,
		PriceMax:          cfg.Instrument.PriceMax,
		LookbackPeriods:   cfg.Engine.LookbackPeriods,
		ValueAreaFraction: cfg.Engine.ValueAreaFraction,
		RecomputeInterval: cfg.Engine.RecomputeInterval,
		SignalThreshold:   cfg.Engine.SignalThreshold,
	}, util.Component(log, "session"))

	fwd := forward.New(cfg.Forward.BaseURL, time.Duration(cfg.Forward.TimeoutMs)*time.Millisecond, util.Component(log, "forward"))
	if fwd.Enabled() {
		log.Info().Str("url", cfg.Forward.BaseURL).Msg("forwarding downstream")
	}

	var rec *record.JSONLRecorder
	if cfg.Recorder.Path != "" {
		rec, err = record.NewJSONLRecorder(cfg.Recorder.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("open recorder")
		}
		defer rec.Close()
	}

	status := time.NewTicker(30 * time.Second)
	defer status.Stop()

	log.Info().Str("sym", cfg.Instrument.Symbol).Int64("target", ctrl.Status().Progress.Target).Msg("bridge engine started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return
		case <-status.C:
			s := ctrl.Status()
			log.Info().
				Uint64("accepted", s.Ticks.Accepted).
				Uint64("rejected", s.Ticks.Rejected).
				Int("candles", s.CandlesCompleted).
				Float64("progress_pct", s.Progress.Percent).
				Str("signal", string(s.Profile.Signal)).
				Msg("session status")
		case tk := <-ticks:
			upd := ctrl.OnRawTick(tk)
			if upd.Candle != nil {
				_ = fwd.Candle(cfg.Instrument.Symbol, *upd.Candle)
				if rec != nil {
					rec.Candle(cfg.Instrument.Symbol, *upd.Candle)
				}
			}
			if upd.Levels != nil {
				_ = fwd.Levels(cfg.Instrument.Symbol, *upd.Levels)
				if rec != nil {
					rec.Levels(cfg.Instrument.Symbol, *upd.Levels)
				}
			}
			if upd.Signal != nil {
				_ = fwd.Signal(*upd.Signal)
				if rec != nil {
					rec.Signal(*upd.Signal)
				}
				log.Info().
					Str("signal", string(upd.Signal.Signal)).
					Float64("poc", upd.Signal.POC).
					Float64("vah", upd.Signal.VAH).
					Float64("val", upd.Signal.VAL).
					Float64("buy_ratio", upd.Signal.BuyRatio).
					Msg("profile update")
			}
		}
	}
}
