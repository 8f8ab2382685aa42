package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "operations_total",
		Help:      "Count of unit store operations.",
	}, []string{"operation", "backend", "status"})
	storeOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "operation_duration_seconds",
		Help:      "Duration of unit store operations.",
		Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"operation", "backend", "status"})
)

// Store tracks metrics for one store backend.
type Store struct {
	backend string
}

func NewStore(backend string) *Store {
	return &Store{backend: orUnknown(backend)}
}

// Observe records duration and status of a store operation.
func (m Store) Observe(operation string, err error, started time.Time) {
	s := status(err)
	storeOperationsTotal.WithLabelValues(operation, m.backend, s).Inc()
	storeOperationDuration.WithLabelValues(operation, m.backend, s).Observe(time.Since(started).Seconds())
}
