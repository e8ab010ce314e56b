package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dbPoolStats, userStoreOps) }

var dbPoolStats = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "db_pool_stats",
		Help: "Current state of the database connection pool.",
	},
	[]string{"state"}, // 'total', 'idle', 'in_use'
)

var userStoreOps = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "user_store_operations_total",
		Help: "User repository calls by backend, operation and result.",
	},
	[]string{"backend", "op", "result"}, // backend: 'memory', 'postgres'
)

func SetDBPoolStats(total, idle, inUse int32) {
	dbPoolStats.WithLabelValues("total").Set(float64(total))
	dbPoolStats.WithLabelValues("idle").Set(float64(idle))
	dbPoolStats.WithLabelValues("in_use").Set(float64(inUse))
}

// ObserveUserStore records one repository call; err == nil counts as "ok".
func ObserveUserStore(backend, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	userStoreOps.WithLabelValues(norm(backend), norm(op), result).Inc()
}
