// Package metrics records Prometheus metrics for bulletin runs.
//
// A run is a short-lived batch job, so metrics live in a private registry and
// are pushed to a Pushgateway at the end of the run when one is configured.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	namespace = "ski_report"

	// JobName groups pushed metrics on the Pushgateway.
	JobName = "ski_report"
)

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeDegraded = "degraded"
)

// Metrics holds the Prometheus counters, histograms, and gauges for a run.
type Metrics struct {
	Registry *prometheus.Registry

	BulletinRuns        *prometheus.CounterVec   // labels: outcome={success,degraded,failure}
	ChannelSends        *prometheus.CounterVec   // labels: channel, outcome={success,failure}
	ChannelSendDuration *prometheus.HistogramVec // labels: channel
	SourceFields        prometheus.Gauge
	ArtifactBytes       prometheus.Gauge
	RunDuration         prometheus.Histogram
	LastRunTimestamp    prometheus.Gauge
}

// New creates all run metrics registered with a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		BulletinRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulletin_runs_total",
			Help:      "Bulletin runs by outcome.",
		}, []string{"outcome"}),
		ChannelSends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channel_sends_total",
			Help:      "Channel deliveries by channel and outcome.",
		}, []string{"channel", "outcome"}),
		ChannelSendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "channel_send_duration_seconds",
			Help:      "Duration of one channel delivery.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"channel"}),
		SourceFields: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_fields_extracted",
			Help:      "Number of condition fields extracted from the source page.",
		}),
		ArtifactBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "artifact_bytes",
			Help:      "Size of the rendered grooming map image.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete bulletin run.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}

	m.Registry.MustRegister(
		m.BulletinRuns,
		m.ChannelSends,
		m.ChannelSendDuration,
		m.SourceFields,
		m.ArtifactBytes,
		m.RunDuration,
		m.LastRunTimestamp,
	)

	return m
}

// ObserveSend records one channel delivery
func (m *Metrics) ObserveSend(channel string, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if !ok {
		outcome = OutcomeFailure
	}
	m.ChannelSends.WithLabelValues(channel, outcome).Inc()
	m.ChannelSendDuration.WithLabelValues(channel).Observe(d.Seconds())
}

// ObserveSource records how many fields the extractor populated
func (m *Metrics) ObserveSource(fields int) {
	if m == nil {
		return
	}
	m.SourceFields.Set(float64(fields))
}

// ObserveArtifact records the rendered image size
func (m *Metrics) ObserveArtifact(size int) {
	if m == nil {
		return
	}
	m.ArtifactBytes.Set(float64(size))
}

// ObserveRun records the end of a run
func (m *Metrics) ObserveRun(outcome string, d time.Duration, finished time.Time) {
	if m == nil {
		return
	}
	m.BulletinRuns.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(d.Seconds())
	m.LastRunTimestamp.Set(float64(finished.Unix()))
}

// Push sends every registered metric to the Pushgateway at url.
func (m *Metrics) Push(ctx context.Context, url string) error {
	if m == nil || url == "" {
		return nil
	}
	if err := push.New(url, JobName).Gatherer(m.Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", url, err)
	}
	return nil
}
