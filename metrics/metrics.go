// Package metrics exposes the coverage of a run as Prometheus gauges and
// writes them in the node-exporter textfile format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/reqtrace/ingester"
	"github.com/c360studio/reqtrace/trace"
)

const namespace = "reqtrace"

// Recorder holds the gauges of the latest run on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	total    *prometheus.GaugeVec
	covered  *prometheus.GaugeVec
	ratio    *prometheus.GaugeVec
	diags    *prometheus.GaugeVec
	duration prometheus.Gauge
	healthy  prometheus.Gauge
}

// NewRecorder creates a recorder with its gauges registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		total: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requirements_total",
			Help:      "Requirements defined by a document.",
		}, []string{"document"}),
		covered: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requirements_covered",
			Help:      "Requirements of a document covered by at least one downstream requirement.",
		}, []string{"document"}),
		ratio: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "coverage_ratio",
			Help:      "Covered fraction of a document's requirements.",
		}, []string{"document"}),
		diags: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "diagnostics",
			Help:      "Diagnostics reported by the latest run, by kind.",
		}, []string{"kind"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Wall time of the latest run.",
		}),
		healthy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "healthy",
			Help:      "1 when the latest run reported no diagnostics.",
		}),
	}
	r.registry.MustRegister(r.total, r.covered, r.ratio, r.diags, r.duration, r.healthy)
	return r
}

// Observe replaces the gauges with the figures of result. Documents that
// disappeared from the configuration drop out of the output.
func (r *Recorder) Observe(result *ingester.Result) {
	r.total.Reset()
	r.covered.Reset()
	r.ratio.Reset()
	r.diags.Reset()

	x := result.Index
	for _, id := range x.DocumentIDs() {
		doc, _ := x.Document(id)
		r.total.WithLabelValues(id).Set(float64(doc.TotalRequirements))
		r.covered.WithLabelValues(id).Set(float64(doc.CoveredRequirements))
		r.ratio.WithLabelValues(id).Set(doc.Coverage())
	}

	// Every kind is emitted so alerts can match on zero.
	for _, kind := range trace.Kinds {
		r.diags.WithLabelValues(string(kind)).Set(float64(len(x.DiagnosticsOf(kind))))
	}

	r.duration.Set(result.Duration.Seconds())
	if x.Healthy() {
		r.healthy.Set(1)
	} else {
		r.healthy.Set(0)
	}
}

// WriteTextfile writes the gauges to path for the node-exporter textfile
// collector. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
