package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts patch activity for one process. Each instance has its own
// registry so tests and batch runs don't share state.
type Metrics struct {
	Registry *prometheus.Registry

	PatchesApplied prometheus.Counter
	PatchesFailed  *prometheus.CounterVec
	RecordsApplied *prometheus.CounterVec
	BytesWritten   prometheus.Counter
	OutputSize     prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		PatchesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ipspatch_patches_applied_total",
			Help: "Total number of patches applied successfully",
		}),
		PatchesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ipspatch_patches_failed_total",
			Help: "Total number of failed patch applications by stage",
		}, []string{"stage"}),
		RecordsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ipspatch_records_applied_total",
			Help: "Total number of records applied by kind",
		}, []string{"kind"}),
		BytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ipspatch_bytes_written_total",
			Help: "Total number of target bytes written by records",
		}),
		OutputSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ipspatch_output_size_bytes",
			Help:    "Size of patched outputs",
			Buckets: prometheus.ExponentialBuckets(1<<10, 4, 10),
		}),
	}
	m.Registry.MustRegister(m.PatchesApplied, m.PatchesFailed, m.RecordsApplied, m.BytesWritten, m.OutputSize)
	return m
}

// WriteTextfile writes the current values in the node exporter textfile
// format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
