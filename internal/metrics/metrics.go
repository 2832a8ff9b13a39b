package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ticks_received_total", Help: "Raw ticks delivered by the feed adapter"},
		[]string{"symbol"},
	)
	TicksRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ticks_rejected_total", Help: "Ticks dropped by the normalizer"},
		[]string{"symbol", "reason"},
	)
	CandlesCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "candles_completed_total", Help: "Volumetric candles emitted"},
		[]string{"symbol"},
	)
	VWAPUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "vwap_updates_total", Help: "VWAP level recomputations after completed candles"},
		[]string{"symbol"},
	)
	ProfileRecomputes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "profile_recomputes_total", Help: "Throttled POC/VAH/VAL recomputations"},
		[]string{"symbol"},
	)
	SignalUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signal_updates_total", Help: "Order-flow signal updates emitted"},
		[]string{"symbol", "signal"},
	)
	Forwards = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "forwards_total", Help: "Payloads forwarded to the downstream consumer"},
		[]string{"type", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		TicksReceived, TicksRejected, CandlesCompleted,
		VWAPUpdates, ProfileRecomputes, SignalUpdates, Forwards,
	)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
