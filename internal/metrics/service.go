package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Recommendation and ingestion metrics.
var (
	IngestRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ingest_records_total",
			Help:      "Investor records processed by ingestion",
		},
		[]string{"status"}, // "success" / "error"
	)

	RecommendCandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "recommend_candidates_total",
			Help:      "Index candidates seen by the recommendation filter",
		},
		[]string{"outcome"}, // "accepted" / "filtered" / "malformed"
	)

	RecommendResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "recommend_results",
			Help:      "Number of investors returned per recommendation",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
		},
	)
)

// Outcome label values for RecommendCandidatesTotal.
const (
	OutcomeAccepted  = "accepted"
	OutcomeFiltered  = "filtered"
	OutcomeMalformed = "malformed"
)

var serviceOnce sync.Once

// RegisterServiceMetrics registers the recommendation and ingestion collectors.
func RegisterServiceMetrics() {
	serviceOnce.Do(func() {
		prometheus.MustRegister(IngestRecordsTotal, RecommendCandidatesTotal, RecommendResults)
	})
}
