/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	metrics.go: Prometheus counters and gauges for the pipeline's tick loop,
	exposed over HTTP for an external scraper.
*/

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pitot"

var (
	// TickDuration observes how long one full sensor/processor/protocol/
	// transport pass takes.
	TickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tick_duration_seconds",
		Help:      "Duration of one pipeline tick",
		Buckets:   prometheus.DefBuckets,
	})

	// TickOverruns counts ticks whose duration exceeded the configured
	// interval.
	TickOverruns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tick_overruns_total",
		Help:      "Number of ticks that ran longer than the configured interval",
	})

	// QueueDepth reports the number of items handed between two adjacent
	// pipeline stages on the most recent tick.
	QueueDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Number of items queued between pipeline stages on the last tick",
	}, []string{"stage"})
)

func init() {
	prometheus.MustRegister(TickDuration, TickOverruns, QueueDepth)
}

// Serve serves the metrics HTTP endpoint on addr, blocking until the
// listener fails, and returns that error. It does not log; the caller runs
// it in its own goroutine and logs the returned error.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
