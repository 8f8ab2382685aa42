package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importerFetchTipTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "importer",
		Name:      "fetch_tip_total",
		Help:      "Count of attempts to determine the heights to import.",
	}, []string{"mode", "network", "status"})

	importerFetchTipDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "importer",
		Name:      "fetch_tip_duration_seconds",
		Help:      "Duration of determining the heights to import.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"mode", "network", "status"})

	importerBatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "importer",
		Name:      "process_batch_total",
		Help:      "Count of height batches imported.",
	}, []string{"mode", "network", "status"})

	importerBatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "importer",
		Name:      "process_batch_duration_seconds",
		Help:      "Duration of importing a batch of heights.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"mode", "network", "status"})

	importerBatchSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "importer",
		Name:      "process_batch_size",
		Help:      "Number of heights imported per batch.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"mode", "network"})

	importerHeightDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "importer",
		Name:      "process_height_duration_seconds",
		Help:      "Duration of fetching and encoding a single block.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"mode", "network", "status"})

	importerUnits = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "importer",
		Name:      "block_units",
		Help:      "Number of graph units emitted per block.",
		Buckets:   prometheus.ExponentialBuckets(2, 2, 14),
	}, []string{"mode", "network"})

	importerLastHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "importer",
		Name:      "last_height",
		Help:      "Highest height whose root has been recorded.",
	}, []string{"mode", "network"})
)

// Importer tracks metrics for one importer run mode.
type Importer struct {
	mode    string
	network string
}

// NewImporter constructs an Importer collector; mode is "follow" or "range".
func NewImporter(mode, network string) *Importer {
	return &Importer{mode: orUnknown(mode), network: orUnknown(network)}
}

// ObserveFetchTip records a lookup of the node tip and the last stored height.
func (m Importer) ObserveFetchTip(err error, started time.Time) {
	s := status(err)
	importerFetchTipTotal.WithLabelValues(m.mode, m.network, s).Inc()
	importerFetchTipDuration.WithLabelValues(m.mode, m.network, s).Observe(time.Since(started).Seconds())
}

// ObserveBatch records the import of a batch of heights.
func (m Importer) ObserveBatch(err error, heights int, started time.Time) {
	s := status(err)
	importerBatchTotal.WithLabelValues(m.mode, m.network, s).Inc()
	importerBatchDuration.WithLabelValues(m.mode, m.network, s).Observe(time.Since(started).Seconds())
	importerBatchSize.WithLabelValues(m.mode, m.network).Observe(float64(heights))
}

// ObserveHeight records fetching and encoding one block.
func (m Importer) ObserveHeight(err error, units int, started time.Time) {
	importerHeightDuration.WithLabelValues(m.mode, m.network, status(err)).Observe(time.Since(started).Seconds())
	if err == nil {
		importerUnits.WithLabelValues(m.mode, m.network).Observe(float64(units))
	}
}

// SetLastHeight publishes the highest recorded root height.
func (m Importer) SetLastHeight(height uint64) {
	importerLastHeight.WithLabelValues(m.mode, m.network).Set(float64(height))
}
