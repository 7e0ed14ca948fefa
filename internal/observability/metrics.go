package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "skate_protocols"

// Document outcomes used as the "outcome" label of DocumentsTotal
const (
	DocumentParsed  = "parsed"
	DocumentSkipped = "skipped"
	DocumentEmpty   = "empty"
	DocumentFailed  = "failed"
)

// Metrics holds the Prometheus counters and histograms for a pipeline run.
// They live on a private registry so a run can be flushed to a textfile.
type Metrics struct {
	registry *prometheus.Registry

	DocumentsTotal   *prometheus.CounterVec // labels: outcome={parsed,skipped,empty,failed}
	SkatersParsed    prometheus.Counter
	SkatersFailed    prometheus.Counter
	WarningsTotal    *prometheus.CounterVec // labels: kind
	FetchesTotal     *prometheus.CounterVec // labels: kind={page,document}, outcome={downloaded,skipped,failed}
	DocumentDuration prometheus.Histogram
	LastRunTimestamp prometheus.Gauge
}

// NewMetrics creates all pipeline metrics on a fresh registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		DocumentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Protocol documents by outcome.",
		}, []string{"outcome"}),
		SkatersParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skaters_parsed_total",
			Help:      "Skater blocks turned into records.",
		}),
		SkatersFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skaters_failed_total",
			Help:      "Skater blocks skipped after a parse error.",
		}),
		WarningsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "Data-quality warnings by kind.",
		}, []string{"kind"}),
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Page and document downloads by outcome.",
		}, []string{"kind", "outcome"}),
		DocumentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_parse_duration_seconds",
			Help:      "Duration of extracting and parsing one protocol document.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time at which the last run finished.",
		}),
	}

	m.registry.MustRegister(
		m.DocumentsTotal,
		m.SkatersParsed,
		m.SkatersFailed,
		m.WarningsTotal,
		m.FetchesTotal,
		m.DocumentDuration,
		m.LastRunTimestamp,
	)

	return m
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in the node-exporter textfile format. The file is
// replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	m.LastRunTimestamp.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
