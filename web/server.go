// Package web is the HTTP boundary of the dashboard. Handlers read the
// session, drive the workflows and answer with rendered fragments; all
// state lives behind the session and the workflow managers.
package web

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rmaia/dispatchboard/core/backend"
	"github.com/rmaia/dispatchboard/core/logger"
	"github.com/rmaia/dispatchboard/core/model"
	"github.com/rmaia/dispatchboard/core/refresh"
	"github.com/rmaia/dispatchboard/core/route"
	"github.com/rmaia/dispatchboard/core/session"
	"github.com/rmaia/dispatchboard/core/topology"
	"github.com/rmaia/dispatchboard/core/workflow"
	"github.com/rmaia/dispatchboard/web/render"
)

// Server holds the handler dependencies.
type Server struct {
	client     backend.Client
	sess       *session.Session
	ctl        *refresh.Controller
	assign     *workflow.AssignmentManager
	areaStatus *workflow.AreaStatusManager
	topo       *topology.Graph
	log        logger.Logger
}

func NewServer(client backend.Client, sess *session.Session, ctl *refresh.Controller, assign *workflow.AssignmentManager, areaStatus *workflow.AreaStatusManager, topo *topology.Graph, log logger.Logger) *Server {
	return &Server{
		client:     client,
		sess:       sess,
		ctl:        ctl,
		assign:     assign,
		areaStatus: areaStatus,
		topo:       topo,
		log:        log,
	}
}

// SetupRouter builds the gin engine with every dashboard route.
func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", s.dashboard)

	api := r.Group("/api/dispatch")
	{
		api.GET("/fragments/queue", s.queueFragment)
		api.GET("/fragments/teams", s.teamsFragment)
		api.GET("/fragments/areas", s.areasFragment)
		api.GET("/fragments/regions", s.regionsFragment)
		api.GET("/fragments/zone-path", s.zonePathFragment)
		api.GET("/fragments/actions", s.actionsFragment)
		api.GET("/fragments/topology", s.topologyFragment)

		api.POST("/view-mode", s.setViewMode)
		api.POST("/calls", s.createCall)
		api.POST("/teams/select", s.selectTeam)
		api.POST("/areas/:emergencyID/status", s.updateAreaStatus)

		api.POST("/assign/start", s.assignStart)
		api.POST("/assign/confirm", s.assignConfirm)
		api.POST("/assign/cancel", s.assignCancel)
	}

	return r
}

func (s *Server) html(c *gin.Context, code int, body string, err error) {
	if err != nil {
		s.log.Errorf("render: %v", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Data(code, "text/html; charset=utf-8", []byte(body))
}

// notice answers with an inline alert carrying the operator message.
func (s *Server) notice(c *gin.Context, code int, err error) {
	body, rerr := render.Notice(backend.UserMessage(err))
	s.html(c, code, body, rerr)
}

func (s *Server) queueFragment(c *gin.Context) {
	snap := s.sess.Queue()
	body, rerr := render.Queue(snap.Data)
	frag, err := fragment(body, rerr, snap.Err)
	s.html(c, http.StatusOK, string(frag), err)
}

func (s *Server) teamsFragment(c *gin.Context) {
	snap := s.sess.Teams()
	body, rerr := render.Teams(snap.Data)
	frag, err := fragment(body, rerr, snap.Err)
	s.html(c, http.StatusOK, string(frag), err)
}

func (s *Server) areasFragment(c *gin.Context) {
	snap := s.sess.Areas()
	body, rerr := render.Areas(snap.Data)
	frag, err := fragment(body, rerr, snap.Err)
	s.html(c, http.StatusOK, string(frag), err)
}

func (s *Server) regionsFragment(c *gin.Context) {
	snap := s.sess.Regions()
	// The hierarchy loads once, but a failed load must stay retryable on
	// the next request since no timer covers the regions view.
	if !snap.Loaded {
		s.ctl.Refresh(c.Request.Context(), session.ViewRegions)
		snap = s.sess.Regions()
	}
	if snap.Err != nil && !snap.Loaded {
		s.notice(c, http.StatusOK, snap.Err)
		return
	}
	body, err := render.RegionTree(snap.Data)
	s.html(c, http.StatusOK, body, err)
}

// zonePathFragment renders the administrative path of a zone as a
// breadcrumb, e.g. São Paulo > Campinas > Zona Norte.
func (s *Server) zonePathFragment(c *gin.Context) {
	zone := c.Query("zona")
	if zone == "" {
		s.notice(c, http.StatusBadRequest, fmt.Errorf("zona required"))
		return
	}
	path, err := s.client.ZonePath(c.Request.Context(), zone)
	if err != nil {
		s.notice(c, http.StatusOK, err)
		return
	}
	body, rerr := render.Breadcrumb(path)
	s.html(c, http.StatusOK, body, rerr)
}

func (s *Server) actionsFragment(c *gin.Context) {
	teamID, err := strconv.Atoi(c.Query("team_id"))
	if err != nil {
		s.notice(c, http.StatusBadRequest, fmt.Errorf("invalid team_id"))
		return
	}
	if err := s.ctl.RefreshTeamActions(c.Request.Context(), teamID); err != nil {
		s.notice(c, http.StatusOK, err)
		return
	}
	body, rerr := render.Actions(s.sess.Actions().Data)
	s.html(c, http.StatusOK, body, rerr)
}

// topologyFragment serves the manual route explorer: without parameters it
// draws the plain graph, with origem and destino it computes and highlights
// the route.
func (s *Server) topologyFragment(c *gin.Context) {
	origin := c.Query("origem")
	destination := c.Query("destino")

	var cls route.Classification
	var details string
	if origin != "" && destination != "" {
		rt, err := s.client.ComputeRoute(c.Request.Context(), origin, destination)
		if err != nil {
			s.notice(c, http.StatusOK, err)
			return
		}
		cls = route.Correlate(rt, s.topo)
		details, err = render.RouteDetails(rt)
		if err != nil {
			s.html(c, 0, "", err)
			return
		}
	}
	svg, err := render.Topology(s.topo, cls)
	s.html(c, http.StatusOK, svg+details, err)
}

func (s *Server) setViewMode(c *gin.Context) {
	mode := session.ViewMode(c.PostForm("mode"))
	if mode != session.ModePrioritized && mode != session.ModeInsertion {
		s.notice(c, http.StatusBadRequest, fmt.Errorf("unknown view mode"))
		return
	}
	s.ctl.SetViewMode(c.Request.Context(), mode)
	s.queueFragment(c)
}

func (s *Server) createCall(c *gin.Context) {
	severity, _ := strconv.Atoi(c.PostForm("severidade"))
	req := model.NewEmergencyRequest{
		Location:   c.PostForm("local"),
		Severity:   severity,
		Vegetation: c.PostForm("tipo_vegetacao"),
		Climate:    c.PostForm("clima"),
	}
	created, err := s.client.CreateCall(c.Request.Context(), req)
	if err != nil {
		s.notice(c, http.StatusOK, err)
		return
	}
	s.ctl.Refresh(c.Request.Context(), session.ViewQueue, session.ViewAreas)
	s.html(c, http.StatusOK, fmt.Sprintf(
		`<div class="alert alert-success" role="alert">Chamado #%d registrado</div>`, created.ID), nil)
}

func (s *Server) selectTeam(c *gin.Context) {
	teamID, err := strconv.Atoi(c.PostForm("team_id"))
	if err != nil {
		s.notice(c, http.StatusBadRequest, fmt.Errorf("invalid team_id"))
		return
	}
	if err := s.ctl.RefreshTeamActions(c.Request.Context(), teamID); err != nil {
		s.notice(c, http.StatusOK, err)
		return
	}
	body, rerr := render.Actions(s.sess.Actions().Data)
	s.html(c, http.StatusOK, body, rerr)
}

func (s *Server) updateAreaStatus(c *gin.Context) {
	emergencyID, err := strconv.Atoi(c.Param("emergencyID"))
	if err != nil {
		s.notice(c, http.StatusBadRequest, fmt.Errorf("invalid emergency id"))
		return
	}
	s.areaStatus.Start(emergencyID)
	if _, err := s.areaStatus.Commit(c.Request.Context(), c.PostForm("status")); err != nil {
		s.notice(c, http.StatusOK, err)
		return
	}
	s.areasFragment(c)
}

// assignStart begins an assignment workflow from either side of the
// dashboard: emergency_id for the queue button, team_id for the roster one.
func (s *Server) assignStart(c *gin.Context) {
	var (
		inst *workflow.Instance
		err  error
	)
	switch {
	case c.PostForm("emergency_id") != "":
		id, aerr := strconv.Atoi(c.PostForm("emergency_id"))
		if aerr != nil {
			s.notice(c, http.StatusBadRequest, fmt.Errorf("invalid emergency_id"))
			return
		}
		inst, err = s.assign.StartFromEmergency(c.Request.Context(), id)
	case c.PostForm("team_id") != "":
		id, aerr := strconv.Atoi(c.PostForm("team_id"))
		if aerr != nil {
			s.notice(c, http.StatusBadRequest, fmt.Errorf("invalid team_id"))
			return
		}
		inst, err = s.assign.StartFromTeam(c.Request.Context(), id)
	default:
		s.notice(c, http.StatusBadRequest, fmt.Errorf("emergency_id or team_id required"))
		return
	}
	if err != nil {
		s.notice(c, http.StatusOK, err)
		return
	}
	body, rerr := s.renderProposal(inst)
	s.html(c, http.StatusOK, body, rerr)
}

func (s *Server) renderProposal(inst *workflow.Instance) (string, error) {
	p := inst.Proposal
	head := fmt.Sprintf(
		`<div class="card" data-workflow-id="%s"><div class="card-body">`+
			`<h5 class="card-title">Chamado #%d em %s</h5>`+
			`<p class="card-text">Equipe proposta: %s (base %s)</p>`,
		inst.ID, p.Emergency.ID,
		template.HTMLEscapeString(p.Emergency.Location),
		template.HTMLEscapeString(p.Team.Name),
		template.HTMLEscapeString(p.Team.Base))
	if p.Degraded {
		head += `<div class="alert alert-warning" role="alert">Nenhuma equipe disponível, primeira da lista proposta</div>`
	}
	details, err := render.RouteDetails(p.Route)
	if err != nil {
		return "", err
	}
	svg, err := render.Topology(s.topo, p.Classification)
	if err != nil {
		return "", err
	}
	return head + details + svg + `</div></div>`, nil
}

func (s *Server) assignConfirm(c *gin.Context) {
	inst, err := s.assign.Confirm(c.Request.Context(), c.PostFormArray("actions"))
	if err != nil {
		s.notice(c, http.StatusOK, err)
		return
	}
	s.html(c, http.StatusOK, fmt.Sprintf(
		`<div class="alert alert-success" role="alert">Equipe %d atribuída ao chamado #%d</div>`,
		inst.Proposal.Team.ID, inst.Proposal.Emergency.ID), nil)
}

func (s *Server) assignCancel(c *gin.Context) {
	active := s.assign.Active()
	if active != nil {
		s.assign.Cancel(active.ID)
	}
	c.Status(http.StatusNoContent)
}
