package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rmaia/dispatchboard/core/backend"
	"github.com/rmaia/dispatchboard/core/model"
	"github.com/rmaia/dispatchboard/core/refresh"
	"github.com/rmaia/dispatchboard/core/session"
	"github.com/rmaia/dispatchboard/core/topology"
	"github.com/rmaia/dispatchboard/core/workflow"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(m *backend.MockClient) (*gin.Engine, *session.Session) {
	sess := session.New()
	ctl := refresh.New(m, sess, nil, nil, 30*time.Second)
	topo := topology.Default()
	assign := workflow.NewAssignmentManager(m, topo, ctl, nil, nil)
	area := workflow.NewAreaStatusManager(m, ctl, nil, nil)
	srv := NewServer(m, sess, ctl, assign, area, topo, nopLogger{})
	return srv.SetupRouter(), sess
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

func get(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func postForm(t *testing.T, r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	return w
}

func TestQueueFragment(t *testing.T) {
	m := backend.NewMockClient()
	r, sess := newTestServer(m)
	sess.ApplyQueue([]model.Emergency{{ID: 1, Location: "Mata Alta", Status: model.EmergencyPending}})

	w := get(t, r, "/api/dispatch/fragments/queue")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Mata Alta") {
		t.Errorf("queue fragment missing data:\n%s", w.Body.String())
	}
}

func TestQueueFragmentKeepsLastGoodWithNotice(t *testing.T) {
	m := backend.NewMockClient()
	r, sess := newTestServer(m)
	sess.ApplyQueue([]model.Emergency{{ID: 1, Location: "Mata Alta", Status: model.EmergencyPending}})
	sess.FailQueue(&backend.APIError{StatusCode: 502, Message: "bad gateway"})

	body := get(t, r, "/api/dispatch/fragments/queue").Body.String()
	if !strings.Contains(body, "alert-danger") {
		t.Errorf("stale view needs an inline notice")
	}
	if !strings.Contains(body, "Mata Alta") {
		t.Errorf("last-good data must still render")
	}
}

func TestCreateCall(t *testing.T) {
	m := backend.NewMockClient()
	m.CreatedResult = model.Emergency{ID: 9, Location: "Zona Sul"}
	r, _ := newTestServer(m)

	w := postForm(t, r, "/api/dispatch/calls", url.Values{
		"local":          {"Zona Sul"},
		"severidade":     {"4"},
		"tipo_vegetacao": {model.VegetationCerrado},
		"clima":          {model.ClimateWindy},
	})
	if !strings.Contains(w.Body.String(), "Chamado #9 registrado") {
		t.Errorf("success alert missing:\n%s", w.Body.String())
	}
	if m.CallCount("create") != 1 {
		t.Errorf("create called %d times", m.CallCount("create"))
	}
	// New call refreshes the queue and areas views.
	if m.CallCount("prioritized") != 1 || m.CallCount("areas") != 1 {
		t.Errorf("refresh scope wrong: %s", m.CallLog())
	}
	if m.CallCount("teams") != 0 {
		t.Errorf("teams must not refresh on call creation")
	}
}

func TestCreateCallInvalidForm(t *testing.T) {
	m := backend.NewMockClient()
	r, _ := newTestServer(m)

	w := postForm(t, r, "/api/dispatch/calls", url.Values{"local": {""}})
	if !strings.Contains(w.Body.String(), "alert-danger") {
		t.Errorf("validation failure needs a notice")
	}
	if m.CallCount("create") != 0 {
		t.Errorf("invalid form must not reach the backend")
	}
}

func TestSetViewMode(t *testing.T) {
	m := backend.NewMockClient()
	m.CallsResult = []model.Emergency{{ID: 3, Location: "Vila Verde", Status: model.EmergencyPending}}
	r, sess := newTestServer(m)

	w := postForm(t, r, "/api/dispatch/view-mode", url.Values{"mode": {"insertion"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if sess.Mode() != session.ModeInsertion {
		t.Errorf("mode not switched")
	}
	if m.CallCount("calls") != 1 || m.CallCount("prioritized") != 0 {
		t.Errorf("insertion mode must fetch the plain list: %s", m.CallLog())
	}
	if !strings.Contains(w.Body.String(), "Vila Verde") {
		t.Errorf("response should carry the refreshed queue fragment")
	}
}

func TestSetViewModeRejectsUnknown(t *testing.T) {
	m := backend.NewMockClient()
	r, _ := newTestServer(m)
	w := postForm(t, r, "/api/dispatch/view-mode", url.Values{"mode": {"random"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestAssignFlow(t *testing.T) {
	m := backend.NewMockClient()
	m.PrioritizedResult = []model.Emergency{{ID: 42, Location: "Mata Alta", Status: model.EmergencyPending}}
	m.TeamsResult = []model.Team{{ID: 1, Name: "Equipe Alpha", Base: "Base Central", Status: model.TeamAvailable}}
	r, _ := newTestServer(m)

	w := postForm(t, r, "/api/dispatch/assign/start", url.Values{"emergency_id": {"42"}})
	body := w.Body.String()
	if !strings.Contains(body, "Chamado #42") || !strings.Contains(body, "Equipe Alpha") {
		t.Fatalf("proposal fragment incomplete:\n%s", body)
	}
	if !strings.Contains(body, "<svg") {
		t.Errorf("proposal should include the topology graph")
	}

	w = postForm(t, r, "/api/dispatch/assign/confirm", url.Values{"actions": {"Conter fogo", "Evacuar área"}})
	if !strings.Contains(w.Body.String(), "Equipe 1 atribuída ao chamado #42") {
		t.Errorf("confirm alert missing:\n%s", w.Body.String())
	}
	if len(m.AssignRequests) != 1 {
		t.Fatalf("assign called %d times", len(m.AssignRequests))
	}
	if got := m.AssignRequests[0]; got.EmergencyID != 42 || got.TeamID != 1 || len(got.Actions) != 2 {
		t.Errorf("unexpected assign payload: %+v", got)
	}
}

func TestAssignConfirmFailureShowsBackendMessage(t *testing.T) {
	m := backend.NewMockClient()
	m.PrioritizedResult = []model.Emergency{{ID: 42, Location: "Mata Alta", Status: model.EmergencyPending}}
	m.TeamsResult = []model.Team{{ID: 1, Name: "Equipe Alpha", Base: "Base Central", Status: model.TeamAvailable}}
	m.Fail["assign"] = &backend.APIError{StatusCode: 200, Message: "Equipe não encontrada"}
	r, _ := newTestServer(m)

	postForm(t, r, "/api/dispatch/assign/start", url.Values{"emergency_id": {"42"}})
	w := postForm(t, r, "/api/dispatch/assign/confirm", nil)
	if !strings.Contains(w.Body.String(), "Equipe não encontrada") {
		t.Errorf("backend message must surface verbatim:\n%s", w.Body.String())
	}
}

func TestUpdateAreaStatusRoute(t *testing.T) {
	m := backend.NewMockClient()
	r, _ := newTestServer(m)

	w := postForm(t, r, "/api/dispatch/areas/42/status", url.Values{"status": {model.AreaContained}})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if len(m.AreaUpdates) != 1 || m.AreaUpdates[0].EmergencyID != 42 {
		t.Fatalf("unexpected updates: %+v", m.AreaUpdates)
	}
	if m.AreaUpdates[0].Status != model.AreaContained {
		t.Errorf("status %q", m.AreaUpdates[0].Status)
	}
}

func TestActionsFragment(t *testing.T) {
	m := backend.NewMockClient()
	m.ActionsResult[5] = []model.ActionHistoryEntry{{TeamID: 5, EmergencyID: 42, Action: "Conter fogo"}}
	r, _ := newTestServer(m)

	body := get(t, r, "/api/dispatch/fragments/actions?team_id=5").Body.String()
	if !strings.Contains(body, "Conter fogo") {
		t.Errorf("history entry missing:\n%s", body)
	}
}

func TestTopologyFragmentWithRoute(t *testing.T) {
	m := backend.NewMockClient()
	m.RouteFn = func(origin, destination string) (model.Route, error) {
		return model.Route{
			Origin: origin, Destination: destination,
			Path:     []string{"Base Central", "Vila Verde", "Mata Alta"},
			Distance: 8, EstimatedTime: 16,
		}, nil
	}
	r, _ := newTestServer(m)

	body := get(t, r, "/api/dispatch/fragments/topology?origem=Base+Central&destino=Mata+Alta").Body.String()
	if !strings.Contains(body, `stroke-width="4"`) {
		t.Errorf("route edges not highlighted")
	}
	if !strings.Contains(body, "8 km") {
		t.Errorf("route details missing")
	}
}

func TestRegionsFragmentRecoversAfterFailure(t *testing.T) {
	m := backend.NewMockClient()
	m.Fail["regions"] = &backend.APIError{StatusCode: 502, Message: "bad gateway"}
	r, _ := newTestServer(m)

	body := get(t, r, "/api/dispatch/fragments/regions").Body.String()
	if !strings.Contains(body, "alert-danger") {
		t.Fatalf("failed load needs a notice:\n%s", body)
	}

	delete(m.Fail, "regions")
	m.RegionsResult = model.Region{Name: "São Paulo", Level: model.LevelState}

	body = get(t, r, "/api/dispatch/fragments/regions").Body.String()
	if !strings.Contains(body, "São Paulo") {
		t.Fatalf("healthy backend must recover the regions view:\n%s", body)
	}
	if strings.Contains(body, "alert-danger") {
		t.Errorf("recovered view must not keep the notice")
	}

	// The dashboard page goes through the same lazy load.
	body = get(t, r, "/").Body.String()
	if !strings.Contains(body, "São Paulo") {
		t.Errorf("dashboard regions pane did not recover")
	}
}

func TestZonePathFragment(t *testing.T) {
	m := backend.NewMockClient()
	m.ZonePathResult = []string{"São Paulo", "Campinas", "Zona Norte"}
	r, _ := newTestServer(m)

	body := get(t, r, "/api/dispatch/fragments/zone-path?zona=Zona+Norte").Body.String()
	if !strings.Contains(body, "Campinas") {
		t.Errorf("zone path missing:\n%s", body)
	}
}

func TestDashboardPage(t *testing.T) {
	m := backend.NewMockClient()
	m.RegionsResult = model.Region{Name: "São Paulo", Level: model.LevelState}
	r, sess := newTestServer(m)
	sess.ApplyQueue([]model.Emergency{{ID: 1, Location: "Mata Alta", Status: model.EmergencyPending}})
	sess.ApplyTeams([]model.Team{{ID: 1, Name: "Equipe Alpha", Status: model.TeamAvailable}})
	sess.ApplyAreas(nil)

	w := get(t, r, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Painel de Despacho", "Mata Alta", "Equipe Alpha", "São Paulo", "<svg"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	// Region hierarchy loads once, on first demand.
	if m.CallCount("regions") != 1 {
		t.Errorf("regions fetched %d times, want 1", m.CallCount("regions"))
	}
	get(t, r, "/")
	if m.CallCount("regions") != 1 {
		t.Errorf("regions must not re-fetch on later page loads")
	}
}
