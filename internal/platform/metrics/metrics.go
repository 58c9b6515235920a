package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for reconstruction runs. They are
// registered on a private registry so a run can be dumped to a textfile.
type Metrics struct {
	registry      *prometheus.Registry
	Jobs          *prometheus.CounterVec
	JobDuration   prometheus.Histogram
	BasisLookups  *prometheus.CounterVec
	SharesDecoded prometheus.Counter
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Jobs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shamir_jobs_total",
			Help: "Reconstruction jobs processed, by outcome",
		}, []string{"outcome"}),
		JobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "shamir_job_duration_seconds",
			Help:    "Time spent decoding and interpolating one job",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		BasisLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shamir_basis_cache_lookups_total",
			Help: "Lagrange basis cache lookups, by result",
		}, []string{"result"}),
		SharesDecoded: factory.NewCounter(prometheus.CounterOpts{
			Name: "shamir_shares_decoded_total",
			Help: "Share values decoded from their digit strings",
		}),
	}
}

// ObserveJob records one finished job. outcome is "ok" or an error kind.
func (m *Metrics) ObserveJob(outcome string, d time.Duration) {
	m.Jobs.WithLabelValues(outcome).Inc()
	m.JobDuration.Observe(d.Seconds())
}

// ObserveBasisLookup records a cache hit or miss.
func (m *Metrics) ObserveBasisLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.BasisLookups.WithLabelValues(result).Inc()
}

// AddSharesDecoded adds n to the decoded share counter.
func (m *Metrics) AddSharesDecoded(n int) {
	m.SharesDecoded.Add(float64(n))
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile dumps every metric in the text exposition format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
