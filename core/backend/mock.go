package backend

import (
	"context"
	"fmt"
	"sync"

	"github.com/rmaia/dispatchboard/core/model"
)

// AreaUpdate captures one UpdateAreaStatus call.
type AreaUpdate struct {
	EmergencyID int
	Status      string
}

// MockClient is an in-memory Client for tests. Results are returned as
// configured; Fail injects an error per call name. Every invocation is
// recorded in call order.
type MockClient struct {
	mu sync.Mutex

	PrioritizedResult []model.Emergency
	CallsResult       []model.Emergency
	CreatedResult     model.Emergency
	TeamsResult       []model.Team
	ActionsResult     map[int][]model.ActionHistoryEntry
	AssignResult      model.AssignmentResult
	AreasResult       []model.AffectedArea
	RegionsResult     model.Region
	ZonePathResult    []string
	RouteFn           func(origin, destination string) (model.Route, error)

	Fail map[string]error

	calls          []string
	AssignRequests []model.AssignmentRequest
	AreaUpdates    []AreaUpdate
	TeamUpdates    map[int]string
}

// NewMockClient returns an empty mock.
func NewMockClient() *MockClient {
	return &MockClient{
		ActionsResult: make(map[int][]model.ActionHistoryEntry),
		Fail:          make(map[string]error),
		TeamUpdates:   make(map[int]string),
	}
}

func (m *MockClient) record(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
	return m.Fail[name]
}

// CallCount returns how many times the named call was invoked.
func (m *MockClient) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == name {
			n++
		}
	}
	return n
}

// Calls returns the recorded call names in order.
func (m *MockClient) CallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockClient) PrioritizedCalls(ctx context.Context) ([]model.Emergency, error) {
	if err := m.record("prioritized"); err != nil {
		return nil, err
	}
	return m.PrioritizedResult, nil
}

func (m *MockClient) Calls(ctx context.Context) ([]model.Emergency, error) {
	if err := m.record("calls"); err != nil {
		return nil, err
	}
	return m.CallsResult, nil
}

func (m *MockClient) CreateCall(ctx context.Context, req model.NewEmergencyRequest) (model.Emergency, error) {
	if err := m.record("create"); err != nil {
		return model.Emergency{}, err
	}
	return m.CreatedResult, nil
}

func (m *MockClient) Teams(ctx context.Context) ([]model.Team, error) {
	if err := m.record("teams"); err != nil {
		return nil, err
	}
	return m.TeamsResult, nil
}

func (m *MockClient) TeamActions(ctx context.Context, teamID int) ([]model.ActionHistoryEntry, error) {
	if err := m.record("actions"); err != nil {
		return nil, err
	}
	return m.ActionsResult[teamID], nil
}

func (m *MockClient) UpdateTeamStatus(ctx context.Context, teamID int, status string) error {
	if err := m.record("team_status"); err != nil {
		return err
	}
	m.mu.Lock()
	m.TeamUpdates[teamID] = status
	m.mu.Unlock()
	return nil
}

func (m *MockClient) AssignTeam(ctx context.Context, req model.AssignmentRequest) (model.AssignmentResult, error) {
	if err := m.record("assign"); err != nil {
		return model.AssignmentResult{}, err
	}
	m.mu.Lock()
	m.AssignRequests = append(m.AssignRequests, req)
	m.mu.Unlock()
	return m.AssignResult, nil
}

func (m *MockClient) Areas(ctx context.Context) ([]model.AffectedArea, error) {
	if err := m.record("areas"); err != nil {
		return nil, err
	}
	return m.AreasResult, nil
}

func (m *MockClient) UpdateAreaStatus(ctx context.Context, emergencyID int, status string) error {
	if err := m.record("area_status"); err != nil {
		return err
	}
	m.mu.Lock()
	m.AreaUpdates = append(m.AreaUpdates, AreaUpdate{EmergencyID: emergencyID, Status: status})
	m.mu.Unlock()
	return nil
}

func (m *MockClient) Regions(ctx context.Context) (model.Region, error) {
	if err := m.record("regions"); err != nil {
		return model.Region{}, err
	}
	return m.RegionsResult, nil
}

func (m *MockClient) ZonePath(ctx context.Context, zone string) ([]string, error) {
	if err := m.record("zone_path"); err != nil {
		return nil, err
	}
	return m.ZonePathResult, nil
}

func (m *MockClient) ComputeRoute(ctx context.Context, origin, destination string) (model.Route, error) {
	if err := m.record("route"); err != nil {
		return model.Route{}, err
	}
	if m.RouteFn != nil {
		return m.RouteFn(origin, destination)
	}
	return model.Route{
		Origin:      origin,
		Destination: destination,
		Path:        []string{origin, destination},
		Distance:    1,
	}, nil
}

var _ Client = (*MockClient)(nil)

// Reset clears the recorded calls and captured requests.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.AssignRequests = nil
	m.AreaUpdates = nil
}

// String summarises the recorded calls, useful in test failure output.
func (m *MockClient) String() string {
	return fmt.Sprintf("MockClient%v", m.CallLog())
}
