package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(wsConnections, wsFramesTotal) }

var wsConnections = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "ws_connections_open",
		Help: "Open websocket chat connections.",
	},
)

var wsFramesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ws_frames_total",
		Help: "Websocket frames by direction and type.",
	},
	[]string{"direction", "type"}, // direction: 'in', 'out'
)

func WSConnected()    { wsConnections.Inc() }
func WSDisconnected() { wsConnections.Dec() }

func IncWSFrame(direction, typ string) {
	wsFramesTotal.WithLabelValues(norm(direction), norm(typ)).Inc()
}
