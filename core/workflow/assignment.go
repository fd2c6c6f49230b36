// Package workflow drives the operator's multi-step actions against the
// backend: proposing and committing a team assignment, and updating an
// affected area's status. Each workflow is an explicit state machine; at
// most one assignment is in flight and starting a new one supersedes the
// previous instance, whose late responses are then discarded.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rmaia/dispatchboard/core/backend"
	"github.com/rmaia/dispatchboard/core/logger"
	"github.com/rmaia/dispatchboard/core/metrics"
	"github.com/rmaia/dispatchboard/core/model"
	"github.com/rmaia/dispatchboard/core/route"
	"github.com/rmaia/dispatchboard/core/session"
	"github.com/rmaia/dispatchboard/core/topology"
)

// State of an assignment workflow instance.
type State int

const (
	StateIdle State = iota
	StateEmergencySelected
	StateTeamProposed
	StateRouteComputed
	StateAwaitingConfirmation
	StateCommitting
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEmergencySelected:
		return "emergency_selected"
	case StateTeamProposed:
		return "team_proposed"
	case StateRouteComputed:
		return "route_computed"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	case StateCommitting:
		return "committing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrSuperseded is returned by a workflow step whose instance was replaced
// while a request was in flight. Its results must be discarded.
var ErrSuperseded = errors.New("workflow superseded")

// Proposal is everything the operator reviews before confirming.
type Proposal struct {
	Emergency      model.Emergency
	Team           model.Team
	Route          model.Route
	Classification route.Classification
	// Degraded is true when no team was disponível and the first of the
	// roster was proposed anyway.
	Degraded bool
}

// Instance is one run of the assignment state machine.
type Instance struct {
	ID       uuid.UUID
	State    State
	Proposal Proposal
	// FailMessage carries the operator-facing message when State is
	// StateFailed.
	FailMessage string
	// Result holds the backend's answer after a successful commit.
	Result model.AssignmentResult
}

// Refresher is the subset of the refresh controller the workflows use.
type Refresher interface {
	Refresh(ctx context.Context, views ...session.View)
	RefreshTeamActions(ctx context.Context, teamID int) error
}

// AssignmentManager owns the single active assignment workflow.
type AssignmentManager struct {
	client    backend.Client
	topo      *topology.Graph
	refresher Refresher
	log       logger.Logger
	sink      metrics.MetricsSink

	mu     sync.Mutex
	active *Instance
}

// NewAssignmentManager creates a manager. A nil logger or sink is replaced
// with a no-op.
func NewAssignmentManager(client backend.Client, topo *topology.Graph, refresher Refresher, log logger.Logger, sink metrics.MetricsSink) *AssignmentManager {
	if log == nil {
		log = nopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &AssignmentManager{
		client:    client,
		topo:      topo,
		refresher: refresher,
		log:       log,
		sink:      sink,
	}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

// Active returns a copy of the current instance, or nil when idle.
func (m *AssignmentManager) Active() *Instance {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil
	}
	cp := *m.active
	return &cp
}

// begin replaces any active instance with a fresh one.
func (m *AssignmentManager) begin() *Instance {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil && m.active.State != StateCompleted && m.active.State != StateFailed {
		m.log.Infof("assignment %s superseded in state %s", m.active.ID, m.active.State)
	}
	inst := &Instance{ID: uuid.New(), State: StateIdle}
	m.active = inst
	return inst
}

// transition advances the instance. It fails with ErrSuperseded when the
// instance is no longer the active one, which makes every step after a
// network round trip discard stale results.
func (m *AssignmentManager) transition(inst *Instance, next State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil || m.active.ID != inst.ID {
		return ErrSuperseded
	}
	m.active.State = next
	inst.State = next
	if err := m.sink.RecordWorkflow(metrics.WorkflowEvent{Workflow: "assignment", State: next.String(), Time: time.Now()}); err != nil {
		m.log.Warnf("record workflow metric: %v", err)
	}
	m.log.Debugf("assignment %s -> %s", inst.ID, next)
	return nil
}

// setProposal stores the reviewed proposal on the active instance.
func (m *AssignmentManager) setProposal(inst *Instance, p Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil || m.active.ID != inst.ID {
		return ErrSuperseded
	}
	m.active.Proposal = p
	inst.Proposal = p
	return nil
}

// fail moves the instance to StateFailed carrying the operator message.
// A superseded instance is left alone.
func (m *AssignmentManager) fail(inst *Instance, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil || m.active.ID != inst.ID {
		return ErrSuperseded
	}
	m.active.State = StateFailed
	m.active.FailMessage = backend.UserMessage(err)
	inst.State = StateFailed
	inst.FailMessage = m.active.FailMessage
	if serr := m.sink.RecordWorkflow(metrics.WorkflowEvent{Workflow: "assignment", State: StateFailed.String(), Time: time.Now()}); serr != nil {
		m.log.Warnf("record workflow metric: %v", serr)
	}
	m.log.Errorf("assignment %s failed: %v", inst.ID, err)
	return err
}

// StartFromEmergency begins a workflow for a directly selected emergency.
// It runs team proposal and route computation and leaves the instance in
// StateAwaitingConfirmation.
func (m *AssignmentManager) StartFromEmergency(ctx context.Context, emergencyID int) (*Instance, error) {
	inst := m.begin()

	calls, err := m.client.PrioritizedCalls(ctx)
	if err != nil {
		return inst, m.fail(inst, err)
	}
	var emergency *model.Emergency
	for i := range calls {
		if calls[i].ID == emergencyID {
			emergency = &calls[i]
			break
		}
	}
	if emergency == nil {
		return inst, m.fail(inst, fmt.Errorf("emergency %d not found", emergencyID))
	}
	if err := m.transition(inst, StateEmergencySelected); err != nil {
		return inst, err
	}
	return m.propose(ctx, inst, *emergency, nil)
}

// StartFromTeam begins a workflow from a selected team; the
// highest-priority pending emergency is chosen automatically.
func (m *AssignmentManager) StartFromTeam(ctx context.Context, teamID int) (*Instance, error) {
	inst := m.begin()

	teams, err := m.client.Teams(ctx)
	if err != nil {
		return inst, m.fail(inst, err)
	}
	var team *model.Team
	for i := range teams {
		if teams[i].ID == teamID {
			team = &teams[i]
			break
		}
	}
	if team == nil {
		return inst, m.fail(inst, fmt.Errorf("team %d not found", teamID))
	}

	calls, err := m.client.PrioritizedCalls(ctx)
	if err != nil {
		return inst, m.fail(inst, err)
	}
	var emergency *model.Emergency
	for i := range calls {
		if calls[i].Status == model.EmergencyPending {
			emergency = &calls[i]
			break
		}
	}
	if emergency == nil {
		return inst, m.fail(inst, fmt.Errorf("no pending emergencies to assign"))
	}
	if err := m.transition(inst, StateEmergencySelected); err != nil {
		return inst, err
	}
	return m.propose(ctx, inst, *emergency, team)
}

// propose runs the team proposal and route steps. When team is nil the
// roster policy applies: first disponível, else first in the list.
func (m *AssignmentManager) propose(ctx context.Context, inst *Instance, emergency model.Emergency, team *model.Team) (*Instance, error) {
	degraded := false
	if team == nil {
		teams, err := m.client.Teams(ctx)
		if err != nil {
			return inst, m.fail(inst, err)
		}
		if len(teams) == 0 {
			return inst, m.fail(inst, fmt.Errorf("no teams registered"))
		}
		chosen := teams[0]
		found := false
		for _, t := range teams {
			if t.Available() {
				chosen = t
				found = true
				break
			}
		}
		if !found {
			degraded = true
			m.log.Warnf("no team disponível, proposing %s (first in roster)", chosen.Name)
		}
		team = &chosen
	}
	if err := m.transition(inst, StateTeamProposed); err != nil {
		return inst, err
	}

	rt, err := m.client.ComputeRoute(ctx, team.Base, emergency.Location)
	if err != nil {
		return inst, m.fail(inst, err)
	}
	cls := route.Correlate(rt, m.topo)
	if unknown := cls.UnknownWaypoints(); len(unknown) > 0 {
		m.log.Warnf("route contains locations missing from topology: %v", unknown)
	}
	if err := m.setProposal(inst, Proposal{
		Emergency:      emergency,
		Team:           *team,
		Route:          rt,
		Classification: cls,
		Degraded:       degraded,
	}); err != nil {
		return inst, err
	}
	if err := m.transition(inst, StateRouteComputed); err != nil {
		return inst, err
	}
	if err := m.transition(inst, StateAwaitingConfirmation); err != nil {
		return inst, err
	}
	return inst, nil
}

// Confirm commits the active instance with the operator's chosen actions.
// On success the queue, teams and areas views are refreshed along with the
// committed team's action history.
func (m *AssignmentManager) Confirm(ctx context.Context, actions []string) (*Instance, error) {
	m.mu.Lock()
	inst := m.active
	if inst == nil || inst.State != StateAwaitingConfirmation {
		state := StateIdle
		if inst != nil {
			state = inst.State
		}
		m.mu.Unlock()
		return nil, fmt.Errorf("no assignment awaiting confirmation (state %s)", state)
	}
	m.mu.Unlock()

	if err := m.transition(inst, StateCommitting); err != nil {
		return inst, err
	}
	result, err := m.client.AssignTeam(ctx, model.AssignmentRequest{
		EmergencyID: inst.Proposal.Emergency.ID,
		TeamID:      inst.Proposal.Team.ID,
		Actions:     actions,
	})
	if err != nil {
		return inst, m.fail(inst, err)
	}

	m.mu.Lock()
	if m.active == nil || m.active.ID != inst.ID {
		m.mu.Unlock()
		return inst, ErrSuperseded
	}
	m.active.Result = result
	inst.Result = result
	m.mu.Unlock()

	if err := m.transition(inst, StateCompleted); err != nil {
		return inst, err
	}
	m.log.Infof("team %d assigned to emergency %d", inst.Proposal.Team.ID, inst.Proposal.Emergency.ID)

	m.refresher.Refresh(ctx, session.ViewQueue, session.ViewTeams, session.ViewAreas)
	if err := m.refresher.RefreshTeamActions(ctx, inst.Proposal.Team.ID); err != nil {
		m.log.Warnf("refresh team actions: %v", err)
	}
	return inst, nil
}

// Cancel drops the active instance if it matches id. Cancelling an already
// superseded instance is a no-op.
func (m *AssignmentManager) Cancel(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil && m.active.ID == id {
		m.log.Debugf("assignment %s cancelled in state %s", id, m.active.State)
		m.active = nil
	}
}
