package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure kinds reported by the poller.
const (
	KindSource = "source"
	KindStore  = "store"
	KindSink   = "sink"
)

// Recorder is what the poller reports into. Deployments that disable the
// /metrics endpoint get the no-op implementation.
type Recorder interface {
	CycleFinished(seconds float64)
	Fetched(source string, n int)
	Added(source string, n int)
	Failure(source, kind string)
}

type promRecorder struct {
	cycles   prometheus.Counter
	duration prometheus.Histogram
	fetched  *prometheus.CounterVec
	added    *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// New registers the collectors on reg. trackedListings feeds a gauge with
// the dedup store's row count; pass nil to skip it.
func New(reg prometheus.Registerer, trackedListings func() float64) Recorder {
	f := promauto.With(reg)

	r := &promRecorder{
		cycles: f.NewCounter(prometheus.CounterOpts{
			Name: "yardwatch_cycles_total",
			Help: "Completed polling cycles.",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "yardwatch_cycle_duration_seconds",
			Help:    "Wall time of one polling cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		fetched: f.NewCounterVec(prometheus.CounterOpts{
			Name: "yardwatch_listings_fetched_total",
			Help: "Listings fetched per source, before filtering.",
		}, []string{"source"}),
		added: f.NewCounterVec(prometheus.CounterOpts{
			Name: "yardwatch_listings_new_total",
			Help: "Net-new listings recorded per source.",
		}, []string{"source"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "yardwatch_failures_total",
			Help: "Recovered failures by source and kind.",
		}, []string{"source", "kind"}),
	}

	if trackedListings != nil {
		f.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "yardwatch_tracked_listings",
			Help: "Rows in the dedup store.",
		}, trackedListings)
	}

	return r
}

func (r *promRecorder) CycleFinished(seconds float64) {
	r.cycles.Inc()
	r.duration.Observe(seconds)
}

func (r *promRecorder) Fetched(source string, n int) {
	r.fetched.WithLabelValues(source).Add(float64(n))
}

func (r *promRecorder) Added(source string, n int) {
	r.added.WithLabelValues(source).Add(float64(n))
}

func (r *promRecorder) Failure(source, kind string) {
	r.failures.WithLabelValues(source, kind).Inc()
}

// NewNop returns a Recorder that drops everything.
func NewNop() Recorder { return nopRecorder{} }

type nopRecorder struct{}

func (nopRecorder) CycleFinished(float64)  {}
func (nopRecorder) Fetched(string, int)    {}
func (nopRecorder) Added(string, int)      {}
func (nopRecorder) Failure(string, string) {}
