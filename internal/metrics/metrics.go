// Package metrics records reconcile runs as Prometheus metrics, written in
// the node_exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/keshon/fstate/internal/state"
)

// Recorder holds the metrics of one run on a private registry.
type Recorder struct {
	reg *prometheus.Registry

	changesTotal  *prometheus.CounterVec
	fsOpsTotal    *prometheus.CounterVec
	treeEntries   *prometheus.GaugeVec
	phaseDuration *prometheus.GaugeVec
	remaining     prometheus.Gauge
	lastSuccess   prometheus.Gauge
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		reg: reg,
		changesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fstate_changes_total",
				Help: "Changes decided by the last run, by operation",
			},
			[]string{"op"},
		),
		fsOpsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fstate_fs_operations_total",
				Help: "Filesystem operations issued against the reference tree",
			},
			[]string{"op"},
		),
		treeEntries: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fstate_tree_entries",
				Help: "Entries in a scanned or loaded tree",
			},
			[]string{"tree"},
		),
		phaseDuration: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fstate_phase_duration_seconds",
				Help: "Wall time spent in each phase of the last run",
			},
			[]string{"phase"},
		),
		remaining: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fstate_remaining_differences",
				Help: "Differences still present after verification",
			},
		),
		lastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fstate_last_success_timestamp_seconds",
				Help: "Unix time the last run completed",
			},
		),
	}
}

func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// ObserveChanges counts changes by operation.
func (r *Recorder) ObserveChanges(changes []state.Change) {
	for _, c := range changes {
		r.changesTotal.WithLabelValues(c.Op.String()).Inc()
	}
}

// AddFSCounts adds per-operation counts as reported by fs.CountingFS.
func (r *Recorder) AddFSCounts(counts map[string]int) {
	for op, n := range counts {
		r.fsOpsTotal.WithLabelValues(op).Add(float64(n))
	}
}

func (r *Recorder) SetEntries(tree string, n int) {
	r.treeEntries.WithLabelValues(tree).Set(float64(n))
}

// Time starts timing phase and returns the function that stops it.
func (r *Recorder) Time(phase string) func() {
	start := time.Now()
	return func() {
		r.phaseDuration.WithLabelValues(phase).Set(time.Since(start).Seconds())
	}
}

func (r *Recorder) SetRemaining(n int) {
	r.remaining.Set(float64(n))
}

func (r *Recorder) MarkSuccess(t time.Time) {
	r.lastSuccess.Set(float64(t.Unix()))
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics %q: %w", path, err)
	}
	return nil
}
