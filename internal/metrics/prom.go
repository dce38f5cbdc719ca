package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mcpipe_build_info",
			Help: "Build information",
		},
		[]string{"date", "sha", "version"},
	)

	requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcpipe_requests_total",
			Help: "Number of bridged requests by outcome",
		},
		[]string{"outcome"},
	)

	requestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mcpipe_request_duration_seconds",
			Help:    "Upstream round trip duration",
			Buckets: prometheus.DefBuckets,
		},
	)

	sessionEstablished = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mcpipe_session_established",
			Help: "1 once the upstream session header has been observed",
		},
	)
)

// Outcome labels for RecordRequest.
const (
	OutcomeOK             = "ok"
	OutcomeParseError     = "parse_error"
	OutcomeTransportError = "transport_error"
	OutcomeProtocolError  = "protocol_error"
)

// Register registers all metrics with the provided registerer.
func Register(r prometheus.Registerer) {
	r.MustRegister(buildInfo, requests, requestDuration, sessionEstablished)
}

// SetBuildInfo sets the build info metric.
func SetBuildInfo(version, sha, date string) {
	buildInfo.WithLabelValues(date, sha, version).Set(1)
}

// RecordRequest increments the request counter for an outcome.
func RecordRequest(outcome string) {
	requests.WithLabelValues(outcome).Inc()
}

// ObserveRequestDuration records the duration of one upstream round trip.
func ObserveRequestDuration(d time.Duration) {
	requestDuration.Observe(d.Seconds())
}

// SetSessionEstablished flips the session gauge.
func SetSessionEstablished(v bool) {
	if v {
		sessionEstablished.Set(1)
		return
	}
	sessionEstablished.Set(0)
}
