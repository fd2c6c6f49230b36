package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/rmaia/dispatchboard/core/metrics"
)

// PromSink records refresh and workflow events in Prometheus metrics.
type PromSink struct {
	refreshes *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	workflows *prometheus.CounterVec
}

// NewPromSink registers dashboard metrics on the default Prometheus
// registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "view_refresh_total",
		Help: "Total number of view refreshes",
	}, []string{"view", "success"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "view_refresh_seconds",
		Help:    "Duration of view refreshes",
		Buckets: prometheus.DefBuckets,
	}, []string{"view"})
	workflows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_transitions_total",
		Help: "Total number of workflow state transitions",
	}, []string{"workflow", "state"})

	if err := reg.Register(refreshes); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			refreshes = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(workflows); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			workflows = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	return &PromSink{refreshes: refreshes, latency: latency, workflows: workflows}, nil
}

// RecordRefresh increments the refresh counter and observes the duration.
func (s *PromSink) RecordRefresh(res coremetrics.RefreshResult) error {
	s.refreshes.WithLabelValues(res.View, strconv.FormatBool(res.Err == nil)).Inc()
	s.latency.WithLabelValues(res.View).Observe(res.Duration.Seconds())
	return nil
}

// RecordWorkflow increments the transition counter.
func (s *PromSink) RecordWorkflow(ev coremetrics.WorkflowEvent) error {
	s.workflows.WithLabelValues(ev.Workflow, ev.State).Inc()
	return nil
}
