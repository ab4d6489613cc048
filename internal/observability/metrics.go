package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	vendorRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "runkeeper_adapter",
		Subsystem: "healthgraph",
		Name:      "requests_total",
		Help:      "Outbound Health Graph requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})
	vendorRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "runkeeper_adapter",
		Subsystem: "healthgraph",
		Name:      "request_duration_seconds",
		Help:      "Latency of outbound Health Graph requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
	pointsServedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "runkeeper_adapter",
		Subsystem: "omh",
		Name:      "points_served_total",
		Help:      "OMH data points served to the platform by endpoint.",
	}, []string{"endpoint"})
)

func init() {
	prometheus.MustRegister(vendorRequestsTotal, vendorRequestDuration, pointsServedTotal)
}

// RecordVendorRequest counts one outbound vendor call and its latency.
func RecordVendorRequest(endpoint, outcome string, elapsed time.Duration) {
	vendorRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	vendorRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// RecordPointsServed counts points rendered into a read response.
func RecordPointsServed(endpoint string, count int) {
	if count <= 0 {
		return
	}
	pointsServedTotal.WithLabelValues(endpoint).Add(float64(count))
}
