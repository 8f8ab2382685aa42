package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blocksOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "blocks",
		Name:      "operations_total",
		Help:      "Count of block service operations.",
	}, []string{"operation", "status"})
	blocksOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "blocks",
		Name:      "operation_duration_seconds",
		Help:      "Duration of block service operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})
	blocksAssembleLoads = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "blocks",
		Name:      "assemble_loads",
		Help:      "Number of units loaded to assemble one block.",
		Buckets:   prometheus.ExponentialBuckets(2, 2, 14),
	})
)

// Blocks tracks metrics for the read side.
type Blocks struct{}

func NewBlocks() *Blocks {
	return &Blocks{}
}

// Observe records duration and status of a block service operation.
func (m Blocks) Observe(operation string, err error, started time.Time) {
	s := status(err)
	blocksOperationsTotal.WithLabelValues(operation, s).Inc()
	blocksOperationDuration.WithLabelValues(operation, s).Observe(time.Since(started).Seconds())
}

// ObserveAssemble records a finished assembly and how many units it loaded.
func (m Blocks) ObserveAssemble(err error, loads int, started time.Time) {
	m.Observe("assemble", err, started)
	if err == nil {
		blocksAssembleLoads.Observe(float64(loads))
	}
}
