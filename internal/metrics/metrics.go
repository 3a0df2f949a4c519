// Package metrics counts resolution decisions and writes them as a
// node-exporter textfile.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// Decision label values.
const (
	Accepted  = "accept"
	Duplicate = "duplicate"
	Merged    = "merge"
)

type Recorder struct {
	registry *prometheus.Registry

	Decisions  *prometheus.CounterVec
	Rejected   *prometheus.CounterVec
	Conflicts  prometheus.Counter
	BatchSize  prometheus.Histogram
	JobsStored prometheus.Gauge
}

// New returns a Recorder with its own registry so runs never share state
// with the global default registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hunt_resolutions_total",
			Help: "Candidates resolved, by decision",
		}, []string{"decision"}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hunt_candidates_rejected_total",
			Help: "Candidates dropped by the filter pipeline, by filter",
		}, []string{"filter"}),
		Conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hunt_merge_conflicts_total",
			Help: "Merged fields where the newer value replaced a different stored value",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hunt_batch_candidates",
			Help:    "Candidates per resolution batch",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		JobsStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hunt_jobs_stored",
			Help: "Jobs in the record store after the last run",
		}),
	}

	r.registry.MustRegister(r.Decisions, r.Rejected, r.Conflicts, r.BatchSize, r.JobsStored)
	return r
}

func (r *Recorder) Decision(decision string) {
	r.Decisions.WithLabelValues(decision).Inc()
}

func (r *Recorder) Reject(filter string) {
	r.Rejected.WithLabelValues(filter).Inc()
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// WriteTextfile atomically writes the current values to path.
func (r *Recorder) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics dir: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
