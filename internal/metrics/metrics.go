// Package metrics exposes Prometheus collectors for simulation runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"genelab/internal/simerr"
)

const namespace = "genelab"

// Job status label values.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
	StatusError  = "error"
)

// Recorder owns a private registry so that tests and multiple servers in
// one process do not collide on the default one. A nil *Recorder is a
// valid no-op recorder.
type Recorder struct {
	reg *prometheus.Registry

	jobs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	warnings *prometheus.CounterVec
	reads    prometheus.Counter
	copies   prometheus.Histogram
}

func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Simulation jobs run, by kind and status.",
		}, []string{"kind", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Wall time of simulation jobs.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"kind"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "Non-fatal warnings attached to results, by code.",
		}, []string{"code"}),
		reads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sequencing_reads_total",
			Help:      "Reads produced by sequencing runs.",
		}),
		copies: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pcr_copy_estimate_log10",
			Help:      "log10 of the PCR copy estimate per successful reaction.",
			Buckets:   prometheus.LinearBuckets(0, 1, 12),
		}),
	}
	r.reg.MustRegister(r.jobs, r.duration, r.warnings, r.reads, r.copies)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// ObserveJob counts one finished job and its duration.
func (r *Recorder) ObserveJob(kind, status string, d time.Duration) {
	if r == nil {
		return
	}
	r.jobs.WithLabelValues(kind, status).Inc()
	r.duration.WithLabelValues(kind).Observe(d.Seconds())
}

func (r *Recorder) AddWarnings(ws []simerr.Warning) {
	if r == nil {
		return
	}
	for _, w := range ws {
		r.warnings.WithLabelValues(string(w.Code)).Inc()
	}
}

func (r *Recorder) AddReads(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.reads.Add(float64(n))
}

// ObserveCopies records a PCR copy estimate (log10 scale).
func (r *Recorder) ObserveCopies(log10Copies float64) {
	if r == nil {
		return
	}
	r.copies.Observe(log10Copies)
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the registry for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}
