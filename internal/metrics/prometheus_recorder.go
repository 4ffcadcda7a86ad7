package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "ssite"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	files         *prom.CounterVec
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	staleRemoved  prom.Counter
	watchEvents   *prom.CounterVec
	runners       *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		files: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "files_processed_total",
			Help:      "Content files processed by outcome",
		}, []string{"outcome"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Full build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Full builds by final status",
		}, []string{"outcome"}),
		staleRemoved: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stale_files_removed_total",
			Help:      "Output files removed because no source produces them anymore",
		}),
		watchEvents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "watch_events_total",
			Help:      "Settled watch events by action taken",
		}, []string{"action"}),
		runners: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "runner_exits_total",
			Help:      "External runner processes by result",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.files, pr.buildDuration, pr.buildOutcome, pr.staleRemoved, pr.watchEvents, pr.runners)
	return pr
}

func (p *PrometheusRecorder) IncFile(outcome FileOutcome) {
	if p == nil || p.files == nil {
		return
	}
	p.files.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncStaleRemoved() {
	if p == nil || p.staleRemoved == nil {
		return
	}
	p.staleRemoved.Inc()
}

func (p *PrometheusRecorder) IncWatchEvent(action WatchAction) {
	if p == nil || p.watchEvents == nil {
		return
	}
	p.watchEvents.WithLabelValues(string(action)).Inc()
}

func (p *PrometheusRecorder) IncRunner(result RunnerResult) {
	if p == nil || p.runners == nil {
		return
	}
	p.runners.WithLabelValues(string(result)).Inc()
}
