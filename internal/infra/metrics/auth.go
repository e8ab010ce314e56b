package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(authEventsTotal) }

var authEventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_events_total",
		Help: "Auth operations by kind and result.",
	},
	[]string{"event", "result"}, // event: 'register', 'login', 'refresh'
)

func IncAuthEvent(event, result string) {
	authEventsTotal.WithLabelValues(norm(event), norm(result)).Inc()
}
