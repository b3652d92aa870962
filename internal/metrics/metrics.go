package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "countyconnect"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by method and status code.",
	}, []string{"method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listing_transitions_total",
		Help:      "Applied listing status transitions.",
	}, []string{"kind", "action"})

	moderationQueue = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "moderation_queue_size",
		Help:      "Listings waiting for an admin decision, by kind.",
	}, []string{"kind"})

	claimsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "claims_resolved_total",
		Help:      "Resolved ownership claims, by outcome.",
	}, []string{"status"})
)

func ObserveRequest(method string, status int, took time.Duration) {
	httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method).Observe(took.Seconds())
}

func ObserveTransition(kind, action string) {
	transitions.WithLabelValues(kind, action).Inc()
}

func ObserveClaimResolved(status string) {
	claimsResolved.WithLabelValues(status).Inc()
}

func SetModerationQueue(kind string, size int) {
	moderationQueue.WithLabelValues(kind).Set(float64(size))
}

func Handler() http.Handler {
	return promhttp.Handler()
}
