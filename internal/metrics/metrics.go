// Package metrics collects per-run pipeline counters and exports them in the
// node_exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cinelake"

// Recorder holds the metrics of one pipeline run. A nil Recorder discards
// everything.
type Recorder struct {
	registry      *prometheus.Registry
	ingestions    *prometheus.CounterVec
	rowsWritten   *prometheus.CounterVec
	stageDuration *prometheus.GaugeVec
	lastSuccess   prometheus.Gauge
}

// New returns a Recorder backed by a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		ingestions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestions_total",
			Help:      "Ingestion attempts by source and outcome.",
		}, []string{"source", "status"}),
		rowsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Rows written to curated tables.",
		}, []string{"table"}),
		stageDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of the last run of each stage.",
		}, []string{"stage"}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last stage that finished without error.",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Ingestion counts one ingestion outcome.
func (r *Recorder) Ingestion(source, status string) {
	if r == nil {
		return
	}
	r.ingestions.WithLabelValues(source, status).Inc()
}

// RowsWritten adds n rows for table.
func (r *Recorder) RowsWritten(table string, n int) {
	if r == nil {
		return
	}
	r.rowsWritten.WithLabelValues(table).Add(float64(n))
}

// StageDuration records how long stage took.
func (r *Recorder) StageDuration(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// MarkSuccess stamps the last successful completion time.
func (r *Recorder) MarkSuccess(now time.Time) {
	if r == nil {
		return
	}
	r.lastSuccess.Set(float64(now.Unix()))
}

// WriteTextfile atomically writes the registry to path. An empty path is a
// no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || strings.TrimSpace(path) == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
