package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rmaia/dispatchboard/core/backend"
	"github.com/rmaia/dispatchboard/core/logger"
	"github.com/rmaia/dispatchboard/core/metrics"
	"github.com/rmaia/dispatchboard/core/model"
	"github.com/rmaia/dispatchboard/core/session"
)

// AreaStatusState of an area-status update workflow.
type AreaStatusState int

const (
	AreaStatusIdle AreaStatusState = iota
	AreaStatusSelected
	AreaStatusCommitting
	AreaStatusCompleted
	AreaStatusFailed
)

func (s AreaStatusState) String() string {
	switch s {
	case AreaStatusIdle:
		return "idle"
	case AreaStatusSelected:
		return "status_selected"
	case AreaStatusCommitting:
		return "committing"
	case AreaStatusCompleted:
		return "completed"
	case AreaStatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// AreaStatusInstance is one run of the area-status machine.
type AreaStatusInstance struct {
	ID          uuid.UUID
	State       AreaStatusState
	EmergencyID int
	Status      string
	FailMessage string
}

// AreaStatusManager owns the single active area-status workflow.
type AreaStatusManager struct {
	client    backend.Client
	refresher Refresher
	log       logger.Logger
	sink      metrics.MetricsSink

	mu     sync.Mutex
	active *AreaStatusInstance
}

// NewAreaStatusManager creates a manager. A nil logger or sink is replaced
// with a no-op.
func NewAreaStatusManager(client backend.Client, refresher Refresher, log logger.Logger, sink metrics.MetricsSink) *AreaStatusManager {
	if log == nil {
		log = nopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &AreaStatusManager{client: client, refresher: refresher, log: log, sink: sink}
}

// Active returns a copy of the current instance, or nil when idle.
func (m *AreaStatusManager) Active() *AreaStatusInstance {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil
	}
	cp := *m.active
	return &cp
}

func (m *AreaStatusManager) record(state AreaStatusState) {
	if err := m.sink.RecordWorkflow(metrics.WorkflowEvent{Workflow: "area_status", State: state.String(), Time: time.Now()}); err != nil {
		m.log.Warnf("record workflow metric: %v", err)
	}
}

// Start selects the area to update, superseding any active instance.
func (m *AreaStatusManager) Start(emergencyID int) *AreaStatusInstance {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst := &AreaStatusInstance{ID: uuid.New(), State: AreaStatusSelected, EmergencyID: emergencyID}
	m.active = inst
	m.record(AreaStatusSelected)
	cp := *inst
	return &cp
}

// Commit submits the new status. On success the queue and areas views are
// refreshed; teams and regions are untouched.
func (m *AreaStatusManager) Commit(ctx context.Context, status string) (*AreaStatusInstance, error) {
	if err := model.ValidAreaStatus(status); err != nil {
		return nil, err
	}
	m.mu.Lock()
	inst := m.active
	if inst == nil || inst.State != AreaStatusSelected {
		m.mu.Unlock()
		return nil, fmt.Errorf("no area status update in progress")
	}
	inst.State = AreaStatusCommitting
	inst.Status = status
	id := inst.ID
	emergencyID := inst.EmergencyID
	m.mu.Unlock()
	m.record(AreaStatusCommitting)

	err := m.client.UpdateAreaStatus(ctx, emergencyID, status)

	m.mu.Lock()
	if m.active == nil || m.active.ID != id {
		m.mu.Unlock()
		return nil, ErrSuperseded
	}
	if err != nil {
		m.active.State = AreaStatusFailed
		m.active.FailMessage = backend.UserMessage(err)
		cp := *m.active
		m.mu.Unlock()
		m.record(AreaStatusFailed)
		m.log.Errorf("area status update for emergency %d: %v", emergencyID, err)
		return &cp, err
	}
	m.active.State = AreaStatusCompleted
	cp := *m.active
	m.mu.Unlock()
	m.record(AreaStatusCompleted)
	m.log.Infof("area of emergency %d set to %s", emergencyID, status)

	m.refresher.Refresh(ctx, session.ViewQueue, session.ViewAreas)
	return &cp, nil
}
