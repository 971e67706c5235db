package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	drainRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "godrain",
		Subsystem: "drain",
		Name:      "requests_total",
		Help:      "Drain requests by outcome (ok, error, malformed).",
	}, []string{"outcome"})
	entriesIngested = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "godrain",
		Subsystem: "drain",
		Name:      "entries_ingested_total",
		Help:      "Normalized entries accepted into day buckets.",
	})
	mergeFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "godrain",
		Subsystem: "drain",
		Name:      "merge_failures_total",
		Help:      "Ingest requests aborted by a day-bucket merge failure.",
	})
	indexUpdateFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "godrain",
		Subsystem: "drain",
		Name:      "index_update_failures_total",
		Help:      "Post-response index updates that failed.",
	})
	blobOpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "godrain",
		Subsystem: "blobstore",
		Name:      "op_duration_seconds",
		Help:      "Blob store round-trip time by operation (get, put).",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
)

func init() {
	prometheus.MustRegister(
		drainRequests,
		entriesIngested,
		mergeFailures,
		indexUpdateFailures,
		blobOpDuration,
	)
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

// RecordDrainRequest counts one finished drain request.
func RecordDrainRequest(outcome string) {
	drainRequests.WithLabelValues(outcome).Inc()
}

// RecordEntriesIngested counts entries accepted from a batch.
func RecordEntriesIngested(n int) {
	if n > 0 {
		entriesIngested.Add(float64(n))
	}
}

// RecordMergeFailure counts an ingest aborted during the merge phase.
func RecordMergeFailure() {
	mergeFailures.Inc()
}

// RecordIndexUpdateFailure counts a failed fire-and-forget index update.
func RecordIndexUpdateFailure() {
	indexUpdateFailures.Inc()
}

// ObserveBlobOp records the duration of one blob store round trip.
func ObserveBlobOp(op string, elapsed time.Duration) {
	blobOpDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}
