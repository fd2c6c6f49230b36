package metrics

import "time"

// RefreshResult is the outcome of one view refresh.
type RefreshResult struct {
	View     string
	Duration time.Duration
	Err      error
	Time     time.Time
}

// WorkflowEvent records a state transition of an operator workflow.
type WorkflowEvent struct {
	Workflow string
	State    string
	Time     time.Time
}

// MetricsSink records refresh and workflow events for observability.
type MetricsSink interface {
	RecordRefresh(res RefreshResult) error
	RecordWorkflow(ev WorkflowEvent) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordRefresh(RefreshResult) error  { return nil }
func (NopSink) RecordWorkflow(WorkflowEvent) error { return nil }
