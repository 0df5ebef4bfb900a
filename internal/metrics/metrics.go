// Package metrics exposes pipeline counters through a Prometheus
// registry. The loop command serves them over /metrics; single runs
// still record them so tests and callers can assert on pipeline
// behavior.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every pipeline counter on a private registry so
// multiple instances never fight over the default one.
type Metrics struct {
	registry *prometheus.Registry

	Fetched     *prometheus.CounterVec
	FetchErrors *prometheus.CounterVec
	Dropped     prometheus.Counter
	Rejected    *prometheus.CounterVec
	Duplicates  prometheus.Counter
	Classified  *prometheus.CounterVec
	Submitted   prometheus.Counter
	SubmitFails prometheus.Counter
	LastRunTime prometheus.Gauge
	RunSeconds  prometheus.Histogram
}

// New creates a Metrics with all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		Fetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventpipe_candidates_fetched_total",
			Help: "Raw candidates fetched, by source.",
		}, []string{"source"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventpipe_fetch_errors_total",
			Help: "Source fetch failures, by source.",
		}, []string{"source"}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventpipe_normalize_dropped_total",
			Help: "Candidates dropped during normalization.",
		}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventpipe_validation_rejects_total",
			Help: "Events rejected by the validator, by reason.",
		}, []string{"reason"}),
		Duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventpipe_duplicates_removed_total",
			Help: "Duplicate events collapsed by the deduplicator.",
		}),
		Classified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventpipe_events_classified_total",
			Help: "Events classified, by status.",
		}, []string{"status"}),
		Submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventpipe_events_submitted_total",
			Help: "Events accepted by the submission gateway.",
		}),
		SubmitFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventpipe_submission_failures_total",
			Help: "Submissions the gateway failed or refused.",
		}),
		LastRunTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eventpipe_last_run_timestamp_seconds",
			Help: "Unix time of the last completed run.",
		}),
		RunSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "eventpipe_run_duration_seconds",
			Help:    "Wall time of full pipeline runs.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	reg.MustRegister(
		m.Fetched, m.FetchErrors, m.Dropped, m.Rejected, m.Duplicates,
		m.Classified, m.Submitted, m.SubmitFails, m.LastRunTime, m.RunSeconds,
	)

	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
