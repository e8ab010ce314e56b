package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(sessionsActive, sessionsCreated, sessionsRemoved, messagesTruncated) }

var sessionsActive = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "chat_sessions_active",
		Help: "Sessions currently held in memory.",
	},
)

var sessionsCreated = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "chat_sessions_created_total",
		Help: "Sessions created by the store.",
	},
)

var sessionsRemoved = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chat_sessions_removed_total",
		Help: "Sessions removed, by reason.",
	},
	[]string{"reason"}, // 'idle', 'evicted', 'ended'
)

var messagesTruncated = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "chat_messages_truncated_total",
		Help: "Messages dropped from the head of a session history.",
	},
)

func SetSessionsActive(n int) { sessionsActive.Set(float64(n)) }

func IncSessionCreated() { sessionsCreated.Inc() }

func AddSessionsRemoved(reason string, n int) {
	if n > 0 {
		sessionsRemoved.WithLabelValues(norm(reason)).Add(float64(n))
	}
}

func AddMessagesTruncated(n int) {
	if n > 0 {
		messagesTruncated.Add(float64(n))
	}
}
