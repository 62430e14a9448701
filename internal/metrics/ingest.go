package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion Prometheus metrics.
var (
	IngestDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mindwell",
			Name:      "ingest_documents_total",
			Help:      "Documents processed per source type",
		},
		[]string{"source_type"},
	)

	IngestChunksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mindwell",
			Name:      "ingest_chunks_total",
			Help:      "Chunks produced per source type",
		},
		[]string{"source_type"},
	)

	IngestVectorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mindwell",
			Name:      "ingest_vectors_total",
			Help:      "Vector records upserted into the index",
		},
	)

	IngestSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mindwell",
			Name:      "ingest_skipped_total",
			Help:      "Source items skipped after per-item failures",
		},
		[]string{"source_type"},
	)
)

var ingestMetricsRegistered bool

// RegisterIngestMetrics registers Prometheus ingestion metrics. Must be
// called once from main.
func RegisterIngestMetrics() {
	if ingestMetricsRegistered {
		return
	}
	prometheus.MustRegister(IngestDocumentsTotal)
	prometheus.MustRegister(IngestChunksTotal)
	prometheus.MustRegister(IngestVectorsTotal)
	prometheus.MustRegister(IngestSkippedTotal)
	ingestMetricsRegistered = true
}
