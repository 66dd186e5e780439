package observability

import (
	"log/slog"
	"sync/atomic"
)

// Metrics tracks counters for one crawl run.
type Metrics struct {
	// Task metrics
	TasksScheduled atomic.Int64
	TasksSkipped   atomic.Int64
	TasksDone      atomic.Int64

	// Fetch metrics
	FetchesOK       atomic.Int64
	FetchErrors     atomic.Int64
	PayloadErrors   atomic.Int64
	BytesDownloaded atomic.Int64

	// Merge metrics
	RecordsMerged   atomic.Int64
	RecordsRejected atomic.Int64
	ColumnsChanged  atomic.Int64
	PatternMisses   atomic.Int64
	NameMismatches  atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"tasks_scheduled":  m.TasksScheduled.Load(),
		"tasks_skipped":    m.TasksSkipped.Load(),
		"tasks_done":       m.TasksDone.Load(),
		"fetches_ok":       m.FetchesOK.Load(),
		"fetch_errors":     m.FetchErrors.Load(),
		"payload_errors":   m.PayloadErrors.Load(),
		"bytes_downloaded": m.BytesDownloaded.Load(),
		"records_merged":   m.RecordsMerged.Load(),
		"records_rejected": m.RecordsRejected.Load(),
		"columns_changed":  m.ColumnsChanged.Load(),
		"pattern_misses":   m.PatternMisses.Load(),
		"name_mismatches":  m.NameMismatches.Load(),
	}
}

// LogSummary writes the counters as one info line.
func (m *Metrics) LogSummary(msg string) {
	m.logger.Info(msg,
		"scheduled", m.TasksScheduled.Load(),
		"skipped", m.TasksSkipped.Load(),
		"fetched", m.FetchesOK.Load(),
		"merged", m.RecordsMerged.Load(),
		"rejected", m.RecordsRejected.Load(),
		"columns_changed", m.ColumnsChanged.Load(),
		"fetch_errors", m.FetchErrors.Load(),
		"payload_errors", m.PayloadErrors.Load(),
		"pattern_misses", m.PatternMisses.Load(),
		"name_mismatches", m.NameMismatches.Load(),
		"bytes", m.BytesDownloaded.Load(),
	)
}
