package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"SignalSentinel/internal/model"
)

const namespace = "signalsentinel"

// Metrics holds the pipeline collectors on a private registry.
type Metrics struct {
	Registry      *prometheus.Registry
	RunsTotal     *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	Bars          prometheus.Gauge
	Signals       *prometheus.GaugeVec
	LastSuccess   prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by result.",
		}, []string{"result"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent collecting price history.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		Bars: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "series_bars",
			Help:      "Bars in the most recent analysis.",
		}),
		Signals: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "signals",
			Help:      "Signal counts over the most recent analysis.",
		}, []string{"engine", "signal"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
	m.Registry.MustRegister(m.RunsTotal, m.FetchDuration, m.Bars, m.Signals, m.LastSuccess)
	return m
}

// ObserveFetch records how long a collection took.
func (m *Metrics) ObserveFetch(d time.Duration) {
	m.FetchDuration.Observe(d.Seconds())
}

// RunFailed counts a failed run.
func (m *Metrics) RunFailed() {
	m.RunsTotal.WithLabelValues("error").Inc()
}

// RunSucceeded counts a successful run and publishes its signal tallies.
func (m *Metrics) RunSucceeded(a *model.Analysis) {
	m.RunsTotal.WithLabelValues("ok").Inc()
	m.Bars.Set(float64(a.Len()))
	for _, e := range []model.Engine{model.EngineMomentum, model.EngineMeanReversion} {
		for sig, n := range a.Count(e) {
			m.Signals.WithLabelValues(string(e), sig.String()).Set(float64(n))
		}
	}
	m.LastSuccess.SetToCurrentTime()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
