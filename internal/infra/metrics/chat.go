package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(chatRequestsTotal, chatProcessingMs, chatConfidence) }

var chatRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chat_requests_total",
		Help: "Chat messages processed, by detected category and outcome.",
	},
	[]string{"category", "outcome"}, // outcome: 'ok', 'fallback', 'rejected'
)

var chatProcessingMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "chat_processing_ms",
		Help:    "Chat pipeline latency distribution in milliseconds.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250},
	},
	[]string{"outcome"},
)

var chatConfidence = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "chat_reply_confidence",
		Help:    "Distribution of reply confidence scores.",
		Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
	},
)

func ObserveChat(category, outcome string, elapsed time.Duration, confidence float64) {
	chatRequestsTotal.WithLabelValues(norm(category), norm(outcome)).Inc()
	chatProcessingMs.WithLabelValues(norm(outcome)).Observe(float64(elapsed.Microseconds()) / 1000)
	if outcome != "rejected" {
		chatConfidence.Observe(confidence)
	}
}
