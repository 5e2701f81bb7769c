package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	remoteCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_calls_total",
			Help:      "Total number of calls to upstream services.",
		},
		[]string{"service", "op", "outcome"},
	)

	remoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_call_duration_seconds",
			Help:      "Upstream call duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "op"},
	)
)

// ObserveRemote records one upstream call. A nil err counts as "ok".
func ObserveRemote(service, op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	remoteCallsTotal.WithLabelValues(service, op, outcome).Inc()
	remoteCallDuration.WithLabelValues(service, op).Observe(time.Since(start).Seconds())
}
