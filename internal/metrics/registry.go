package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry Prometheus metrics.
var (
	ScanPairsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "titledex",
			Name:      "scan_pairs_total",
			Help:      "Total number of pairwise similarity scores computed",
		},
	)

	RejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "titledex",
			Name:      "rejections_total",
			Help:      "Total number of rejected title submissions",
		},
		[]string{"reason"}, // "validation" / "policy" / "similarity"
	)

	MaintenanceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "titledex",
			Name:      "maintenance_duration_seconds",
			Help:      "Corpus maintenance sweep duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.025, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"strategy"},
	)

	CorpusSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "titledex",
			Name:      "corpus_size",
			Help:      "Number of titles in the corpus after the last mutation",
		},
	)
)

var registryMetricsRegistered bool

// RegisterRegistryMetrics registers registry Prometheus metrics. Must be called once from main.
func RegisterRegistryMetrics() {
	if registryMetricsRegistered {
		return
	}
	prometheus.MustRegister(ScanPairsTotal)
	prometheus.MustRegister(RejectionsTotal)
	prometheus.MustRegister(MaintenanceDuration)
	prometheus.MustRegister(CorpusSize)
	registryMetricsRegistered = true
}
