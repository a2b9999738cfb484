// Package metrics records run statistics so that cron-driven syncs can be
// monitored through node_exporter's textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wright-cemrc-projects/sync-scripts/pkg/errors"
	"github.com/wright-cemrc-projects/sync-scripts/pkg/sync"
)

// Metrics tracks the outcomes of sync runs. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Units processed, by terminal status.
	Units *prometheus.CounterVec

	// Entries changed by copies.
	ChangedEntries prometheus.Counter

	// Duration of each rsync copy.
	CopyDuration prometheus.Histogram

	// Completion time of the last run.
	LastRun prometheus.Gauge
}

// New creates a Metrics instance backed by its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,

		Units: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cemrc_sync_units_total",
			Help: "Total project units processed by terminal status",
		}, []string{"status"}),

		ChangedEntries: factory.NewCounter(prometheus.CounterOpts{
			Name: "cemrc_sync_changed_entries_total",
			Help: "Total files and directories changed by copies",
		}),

		CopyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cemrc_sync_copy_duration_seconds",
			Help:    "Duration of copying a single project",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600},
		}),

		LastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cemrc_sync_last_run_timestamp_seconds",
			Help: "Unix time at which the last run finished",
		}),
	}

	// Export every status, even if it never occurs, so that alerts don't
	// have to handle missing series.
	for _, status := range sync.AllStatuses {
		m.Units.WithLabelValues(status.String())
	}
	return m
}

// RecordOutcome implements sync.Recorder.
func (m *Metrics) RecordOutcome(o sync.Outcome, copyTime time.Duration) {
	if m == nil {
		return
	}

	m.Units.WithLabelValues(o.Status.String()).Inc()
	if o.Status == sync.Synced {
		m.ChangedEntries.Add(float64(o.ChangedEntries))
	}
	if copyTime > 0 {
		m.CopyDuration.Observe(copyTime.Seconds())
	}
}

// MarkRunFinished records that a run finished at `t`.
func (m *Metrics) MarkRunFinished(t time.Time) {
	if m != nil {
		m.LastRun.Set(float64(t.Unix()))
	}
}

// WriteTextfile writes the metrics to `path` in the Prometheus text format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}

	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.WithContext(err, "write metrics")
	}
	return nil
}
