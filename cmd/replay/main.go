// Replay feeds a JSONL tick capture through the analytics pipeline and
// prints the final consolidated status, for offline analysis of a session.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"os"

	"github.com/alfredo-74/indabananamarket/internal/market"
	"github.com/alfredo-74/indabananamarket/internal/session"
	"github.com/alfredo-74/indabananamarket/internal/util"
)

func main() {
	file := flag.String("file", "", "JSONL file of raw ticks")
	symbol := flag.String("symbol", "ES", "instrument symbol")
	target := flag.Int64("target", 0, "volume target (0 = instrument default)")
	priceMin := flag.Float64("price-min", 1000, "sanity band lower bound")
	priceMax := flag.Float64("price-max", 15000, "sanity band upper bound")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	log := util.NewLogger(*logLevel)
	if *file == "" {
		log.Fatal().Msg("-file is required")
	}

	in, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("open tick file")
	}
	defer in.Close()

	ctrl := session.New(session.Options{
		Symbol:       *symbol,
		VolumeTarget: *target,
		PriceMin:     *priceMin,
		PriceMax:     *priceMax,
	}, log)

	var lines, candles, signals int
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		var raw market.RawTick
		if err := json.Unmarshal(scanner.Bytes(), &raw); err != nil {
			log.Warn().Err(err).Int("line", lines+1).Msg("skipping bad line")
			continue
		}
		lines++
		upd := ctrl.OnRawTick(raw)
		if upd.Candle != nil {
			candles++
		}
		if upd.Signal != nil {
			signals++
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatal().Err(err).Msg("read tick file")
	}

	out := struct {
		Lines   int            `json:"lines"`
		Candles int            `json:"candles"`
		Signals int            `json:"signals"`
		Status  session.Status `json:"status"`
	}{lines, candles, signals, ctrl.Status()}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("encode status")
	}
}
