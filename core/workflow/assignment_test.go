package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rmaia/dispatchboard/core/backend"
	"github.com/rmaia/dispatchboard/core/model"
	"github.com/rmaia/dispatchboard/core/session"
	"github.com/rmaia/dispatchboard/core/topology"
)

type fakeRefresher struct {
	mu      sync.Mutex
	batches [][]session.View
	teams   []int
}

func (f *fakeRefresher) Refresh(_ context.Context, views ...session.View) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, views)
}

func (f *fakeRefresher) RefreshTeamActions(_ context.Context, teamID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teams = append(f.teams, teamID)
	return nil
}

func (f *fakeRefresher) refreshed(view session.View) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.batches {
		for _, v := range b {
			if v == view {
				n++
			}
		}
	}
	return n
}

func workflowFixture() (*backend.MockClient, *fakeRefresher, *AssignmentManager) {
	m := backend.NewMockClient()
	m.PrioritizedResult = []model.Emergency{
		{ID: 42, Location: "Mata Alta", Severity: 5, Priority: 10, Status: model.EmergencyPending},
		{ID: 7, Location: "Zona Sul", Severity: 2, Priority: 2.4, Status: model.EmergencyPending},
	}
	m.TeamsResult = []model.Team{
		{ID: 1, Name: "Equipe Alpha", Base: "Base Central", Status: model.TeamAvailable},
		{ID: 2, Name: "Equipe Bravo", Base: "Base Central", Status: model.TeamOnMission},
	}
	m.RouteFn = func(origin, destination string) (model.Route, error) {
		return model.Route{
			Origin:      origin,
			Destination: destination,
			Path:        []string{"Base Central", "Vila Verde", "Mata Alta"},
			Distance:    8, EstimatedTime: 16,
		}, nil
	}
	f := &fakeRefresher{}
	mgr := NewAssignmentManager(m, topology.Default(), f, nil, nil)
	return m, f, mgr
}

func TestStartFromEmergencyProposesFirstAvailableTeam(t *testing.T) {
	_, _, mgr := workflowFixture()

	inst, err := mgr.StartFromEmergency(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.State != StateAwaitingConfirmation {
		t.Fatalf("state %s, want awaiting_confirmation", inst.State)
	}
	if inst.Proposal.Team.ID != 1 {
		t.Errorf("proposed team %d, want 1 (first disponível)", inst.Proposal.Team.ID)
	}
	if inst.Proposal.Degraded {
		t.Errorf("proposal should not be degraded")
	}
	if inst.Proposal.Emergency.ID != 42 {
		t.Errorf("selected emergency %d, want 42", inst.Proposal.Emergency.ID)
	}
	if !inst.Proposal.Classification.EdgeOnRoute("Vila Verde", "Mata Alta") {
		t.Errorf("route classification missing leg")
	}
}

func TestDegradedTeamFallback(t *testing.T) {
	m, _, mgr := workflowFixture()
	m.TeamsResult = []model.Team{
		{ID: 1, Name: "Equipe Alpha", Base: "Base Central", Status: model.TeamOnMission},
		{ID: 2, Name: "Equipe Bravo", Base: "Base Central", Status: model.TeamOnMission},
	}

	inst, err := mgr.StartFromEmergency(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Proposal.Team.ID != 1 {
		t.Errorf("proposed team %d, want 1 (first in roster)", inst.Proposal.Team.ID)
	}
	if !inst.Proposal.Degraded {
		t.Errorf("expected degraded proposal when no team is disponível")
	}
}

func TestStartFromTeamPicksHighestPriorityPending(t *testing.T) {
	m, _, mgr := workflowFixture()
	m.PrioritizedResult[0].Status = model.EmergencyInProgress

	inst, err := mgr.StartFromTeam(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Proposal.Team.ID != 2 {
		t.Errorf("team %d, want the explicitly selected 2", inst.Proposal.Team.ID)
	}
	if inst.Proposal.Emergency.ID != 7 {
		t.Errorf("emergency %d, want 7 (first pending)", inst.Proposal.Emergency.ID)
	}
}

func TestStartFromTeamNoPending(t *testing.T) {
	m, _, mgr := workflowFixture()
	for i := range m.PrioritizedResult {
		m.PrioritizedResult[i].Status = model.EmergencyResolved
	}
	inst, err := mgr.StartFromTeam(context.Background(), 1)
	if err == nil {
		t.Fatalf("expected error")
	}
	if inst.State != StateFailed {
		t.Errorf("state %s, want failed", inst.State)
	}
}

func TestConfirmCommitsAndRefreshes(t *testing.T) {
	m, f, mgr := workflowFixture()
	m.AssignResult = model.AssignmentResult{EmergencyID: 42, TeamID: 1, AreaStatus: model.AreaControl}

	if _, err := mgr.StartFromEmergency(context.Background(), 42); err != nil {
		t.Fatalf("start: %v", err)
	}
	inst, err := mgr.Confirm(context.Background(), []string{"Conter fogo", "Evacuar área"})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if inst.State != StateCompleted {
		t.Fatalf("state %s, want completed", inst.State)
	}
	if len(m.AssignRequests) != 1 {
		t.Fatalf("expected exactly one assign call, got %d", len(m.AssignRequests))
	}
	req := m.AssignRequests[0]
	if req.EmergencyID != 42 || req.TeamID != 1 || len(req.Actions) != 2 {
		t.Errorf("unexpected assign request: %+v", req)
	}
	for _, v := range []session.View{session.ViewQueue, session.ViewTeams, session.ViewAreas} {
		if f.refreshed(v) != 1 {
			t.Errorf("view %s refreshed %d times, want 1", v, f.refreshed(v))
		}
	}
	if f.refreshed(session.ViewRegions) != 0 {
		t.Errorf("regions must not refresh after assignment")
	}
	if len(f.teams) != 1 || f.teams[0] != 1 {
		t.Errorf("team action history not refreshed: %v", f.teams)
	}
}

func TestConfirmSurfacesBackendMessage(t *testing.T) {
	m, _, mgr := workflowFixture()
	m.Fail["assign"] = &backend.APIError{StatusCode: 200, Message: "Equipe não encontrada"}

	if _, err := mgr.StartFromEmergency(context.Background(), 42); err != nil {
		t.Fatalf("start: %v", err)
	}
	inst, err := mgr.Confirm(context.Background(), nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if inst.State != StateFailed {
		t.Fatalf("state %s, want failed", inst.State)
	}
	if inst.FailMessage != "Equipe não encontrada" {
		t.Errorf("fail message %q, want backend message verbatim", inst.FailMessage)
	}
}

func TestConfirmWithoutProposal(t *testing.T) {
	_, _, mgr := workflowFixture()
	if _, err := mgr.Confirm(context.Background(), nil); err == nil {
		t.Fatalf("expected error when nothing awaits confirmation")
	}
}

func TestSupersededWorkflowDiscardsLateRoute(t *testing.T) {
	m, _, mgr := workflowFixture()

	block := make(chan struct{})
	started := make(chan struct{})
	first := true
	var mu sync.Mutex
	m.RouteFn = func(origin, destination string) (model.Route, error) {
		mu.Lock()
		isFirst := first
		first = false
		mu.Unlock()
		if isFirst {
			close(started)
			<-block
		}
		return model.Route{Origin: origin, Destination: destination, Path: []string{origin, destination}}, nil
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := mgr.StartFromEmergency(context.Background(), 42)
		errCh <- err
	}()
	<-started

	// Second workflow supersedes the first while its route call hangs.
	second, err := mgr.StartFromEmergency(context.Background(), 7)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	close(block)

	if err := <-errCh; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("first workflow error %v, want ErrSuperseded", err)
	}
	active := mgr.Active()
	if active == nil || active.ID != second.ID {
		t.Fatalf("active instance is not the second workflow")
	}
	if active.Proposal.Emergency.ID != 7 {
		t.Errorf("active proposal holds emergency %d, want 7; stale result applied", active.Proposal.Emergency.ID)
	}
}

func TestCancel(t *testing.T) {
	_, _, mgr := workflowFixture()
	inst, err := mgr.StartFromEmergency(context.Background(), 42)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	mgr.Cancel(inst.ID)
	if mgr.Active() != nil {
		t.Fatalf("expected no active instance after cancel")
	}
	if _, err := mgr.Confirm(context.Background(), nil); err == nil {
		t.Fatalf("confirm after cancel should fail")
	}
}
