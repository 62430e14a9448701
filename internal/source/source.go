// Package source provides document adapters for the knowledge-base corpora:
// PDF directories, crawled self-help sites, and CSV dataset snapshots.
//
// Adapters share one failure policy: a broken item (unreadable file, dead
// link, empty row) is logged and skipped, never fatal for the whole fetch.
// Only failures that make the entire source unreadable return an error.
package source

import (
	"go.uber.org/zap"

	"github.com/mindwell-ai/mindwell/internal/domain"
	"github.com/mindwell-ai/mindwell/internal/metrics"
)

func skip(logger *zap.Logger, st domain.SourceType, item string, err error) {
	logger.Warn("skipping source item",
		zap.String("source_type", string(st)),
		zap.String("item", item),
		zap.Error(err),
	)
	metrics.IngestSkippedTotal.WithLabelValues(string(st)).Inc()
}
