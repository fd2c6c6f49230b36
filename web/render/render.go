// Package render turns session snapshots into HTML fragments. Every
// renderer is a pure function of its input so the server can rebuild any
// view without touching shared state.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strconv"

	"github.com/rmaia/dispatchboard/core/model"
	"github.com/rmaia/dispatchboard/core/route"
	"github.com/rmaia/dispatchboard/core/topology"
)

func vegetationLabel(v string) string {
	switch v {
	case model.VegetationCerrado:
		return "Cerrado"
	case model.VegetationMataAtlantica:
		return "Mata Atlântica"
	case model.VegetationPantanal:
		return "Pantanal"
	default:
		return v
	}
}

func climateLabel(c string) string {
	switch c {
	case model.ClimateDry:
		return "Seco"
	case model.ClimateWindy:
		return "Ventoso"
	case model.ClimateHumid:
		return "Úmido"
	default:
		return c
	}
}

func statusBadge(status string) template.HTML {
	var class, label string
	switch status {
	case model.EmergencyPending:
		class, label = "bg-danger", "Pendente"
	case model.EmergencyInProgress:
		class, label = "bg-warning", "Em Atendimento"
	case model.EmergencyControl:
		class, label = "bg-info", "Controle em Andamento"
	case model.EmergencyContained:
		class, label = "bg-primary", "Contido"
	case model.EmergencyResolved:
		class, label = "bg-success", "Resolvido"
	default:
		class, label = "bg-secondary", status
	}
	return badge(class, label)
}

func areaBadge(status string) template.HTML {
	var class, label string
	switch status {
	case model.AreaActive:
		class, label = "bg-danger", "Ativo"
	case model.AreaControl:
		class, label = "bg-warning", "Controle em Andamento"
	case model.AreaContained:
		class, label = "bg-info", "Contido"
	case model.AreaResolved:
		class, label = "bg-success", "Resolvido"
	default:
		class, label = "bg-secondary", status
	}
	return badge(class, label)
}

func teamBadge(status string) template.HTML {
	class := "bg-warning"
	if status == model.TeamAvailable {
		class = "bg-success"
	}
	return badge(class, status)
}

func badge(class, label string) template.HTML {
	var b bytes.Buffer
	b.WriteString(`<span class="badge `)
	template.HTMLEscape(&b, []byte(class))
	b.WriteString(`">`)
	template.HTMLEscape(&b, []byte(label))
	b.WriteString(`</span>`)
	return template.HTML(b.String())
}

func rowClass(status string) string {
	switch status {
	case model.EmergencyResolved:
		return "table-success"
	case model.EmergencyInProgress:
		return "table-warning"
	case model.EmergencyPending:
		return "table-danger"
	default:
		return ""
	}
}

func areaRowClass(status string) string {
	switch status {
	case model.AreaResolved:
		return "table-success"
	case model.AreaControl:
		return "table-warning"
	case model.AreaContained:
		return "table-info"
	case model.AreaActive:
		return "table-danger"
	default:
		return ""
	}
}

func levelClass(level string) string {
	switch level {
	case model.LevelState:
		return "bg-primary text-white"
	case model.LevelMunicipality:
		return "bg-info text-white"
	case model.LevelZone:
		return "bg-success text-white"
	default:
		return ""
	}
}

var funcMap = template.FuncMap{
	"vegetation":   vegetationLabel,
	"climate":      climateLabel,
	"statusBadge":  statusBadge,
	"areaBadge":    areaBadge,
	"teamBadge":    teamBadge,
	"rowClass":     rowClass,
	"areaRowClass": areaRowClass,
	"levelClass":   levelClass,
	"priority": func(p float64) string {
		return strconv.FormatFloat(p, 'f', 1, 64)
	},
	"num": func(f float64) string {
		return strconv.FormatFloat(f, 'f', -1, 64)
	},
}

const queueTmplStr = `<table class="table table-sm" id="emergencyTable">
<thead><tr><th>ID</th><th>Local</th><th>Severidade</th><th>Vegetação</th><th>Clima</th><th>Prioridade</th><th>Status</th><th></th></tr></thead>
<tbody>
{{range .}}<tr class="{{rowClass .Status}}">
<td>{{.ID}}</td>
<td>{{.Location}}</td>
<td>{{.Severity}}</td>
<td>{{vegetation .Vegetation}}</td>
<td>{{climate .Climate}}</td>
<td>{{priority .Priority}}</td>
<td>{{statusBadge .Status}}</td>
<td>
<button class="btn btn-sm btn-info view-route" data-emergency-id="{{.ID}}" data-local="{{.Location}}">Rota</button>
<button class="btn btn-sm btn-success assign-emergency" data-emergency-id="{{.ID}}">Atribuir</button>
</td>
</tr>
{{else}}<tr><td colspan="8" class="text-center text-muted">Nenhum chamado</td></tr>
{{end}}</tbody>
</table>`

const teamsTmplStr = `<table class="table table-sm" id="teamsTable">
<thead><tr><th>ID</th><th>Nome</th><th>Base</th><th>Status</th><th></th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.ID}}</td>
<td>{{.Name}}</td>
<td>{{.Base}}</td>
<td>{{teamBadge .Status}}</td>
<td><button class="btn btn-sm btn-primary assign-team" data-team-id="{{.ID}}">Atribuir</button></td>
</tr>
{{else}}<tr><td colspan="5" class="text-center text-muted">Nenhuma equipe</td></tr>
{{end}}</tbody>
</table>`

const areasTmplStr = `<table class="table table-sm" id="areasTable">
<thead><tr><th>Chamado</th><th>Local</th><th>Status</th><th></th></tr></thead>
<tbody>
{{range .}}<tr class="{{areaRowClass .Status}}">
<td>#{{.EmergencyID}}</td>
<td>{{.Location}}</td>
<td>{{areaBadge .Status}}</td>
<td><button class="btn btn-sm btn-secondary update-area-status" data-emergency-id="{{.EmergencyID}}">Atualizar</button></td>
</tr>
{{else}}<tr><td colspan="4" class="text-center text-muted">Nenhuma área afetada</td></tr>
{{end}}</tbody>
</table>`

const actionsTmplStr = `{{if not .}}<div class="text-center py-3 text-muted">Nenhuma ação registrada</div>
{{else}}<ul class="list-group">
{{range .}}<li class="list-group-item">
<div class="d-flex w-100 justify-content-between">
<h6 class="mb-1">{{.Action}}</h6>
<small>{{.Timestamp}}</small>
</div>
<p class="mb-1">Chamado #{{.EmergencyID}}</p>
</li>
{{end}}</ul>
{{end}}`

const regionTmplStr = `{{define "regionNode"}}<div class="tree-node">
<div class="tree-node-header {{levelClass .Level}}">{{.Name}} <small>({{.Level}})</small></div>
{{if .Children}}<div class="tree-node-children">
{{range .Children}}{{template "regionNode" .}}{{end}}</div>
{{end}}</div>
{{end}}{{template "regionNode" .}}`

const routeTmplStr = `<ul class="list-group" id="routeDetails">
<li class="list-group-item d-flex justify-content-between align-items-center">Origem <span class="badge bg-primary rounded-pill">{{.Origin}}</span></li>
<li class="list-group-item d-flex justify-content-between align-items-center">Destino <span class="badge bg-danger rounded-pill">{{.Destination}}</span></li>
<li class="list-group-item d-flex justify-content-between align-items-center">Distância <span class="badge bg-info rounded-pill">{{num .Distance}} km</span></li>
<li class="list-group-item d-flex justify-content-between align-items-center">Tempo Estimado <span class="badge bg-warning rounded-pill">{{num .EstimatedTime}} min</span></li>
<li class="list-group-item">Percurso
<ol class="mt-2 mb-0">
{{range .Path}}<li>{{.}}</li>
{{end}}</ol>
</li>
</ul>`

const noticeTmplStr = `<div class="alert alert-danger" role="alert">{{.}}</div>`

const breadcrumbTmplStr = `<nav aria-label="breadcrumb"><ol class="breadcrumb mb-0">
{{range .}}<li class="breadcrumb-item">{{.}}</li>
{{end}}</ol></nav>`

const svgTmplStr = `<svg viewBox="0 0 {{.Width}} {{.Height}}" id="topologyGraph">
<g>
{{range .Edges}}<line x1="{{.X1}}" y1="{{.Y1}}" x2="{{.X2}}" y2="{{.Y2}}" stroke="{{.Stroke}}" stroke-width="{{.StrokeWidth}}"/>
<text x="{{.LX}}" y="{{.LY}}" text-anchor="middle" font-size="10" fill="{{.Stroke}}">{{num .Weight}}</text>
{{end}}</g>
<g>
{{range .Nodes}}<circle cx="{{.X}}" cy="{{.Y}}" r="{{.Radius}}" fill="{{.Fill}}"/>
<text x="{{.X}}" y="{{.LY}}" text-anchor="middle" font-size="12"{{if .Bold}} font-weight="bold"{{end}}>{{.Name}}</text>
{{end}}</g>
</svg>`

var (
	queueTmpl      = template.Must(template.New("queue").Funcs(funcMap).Parse(queueTmplStr))
	teamsTmpl      = template.Must(template.New("teams").Funcs(funcMap).Parse(teamsTmplStr))
	areasTmpl      = template.Must(template.New("areas").Funcs(funcMap).Parse(areasTmplStr))
	actionsTmpl    = template.Must(template.New("actions").Funcs(funcMap).Parse(actionsTmplStr))
	regionTmpl     = template.Must(template.New("regions").Funcs(funcMap).Parse(regionTmplStr))
	routeTmpl      = template.Must(template.New("route").Funcs(funcMap).Parse(routeTmplStr))
	noticeTmpl     = template.Must(template.New("notice").Parse(noticeTmplStr))
	breadcrumbTmpl = template.Must(template.New("breadcrumb").Parse(breadcrumbTmplStr))
	svgTmpl        = template.Must(template.New("topology").Funcs(funcMap).Parse(svgTmplStr))
)

func execute(t *template.Template, data any) (string, error) {
	var b bytes.Buffer
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return b.String(), nil
}

// Queue renders the emergency table. The caller picks prioritized or
// insertion order; rendering is identical.
func Queue(calls []model.Emergency) (string, error) {
	return execute(queueTmpl, calls)
}

// Teams renders the team roster table.
func Teams(teams []model.Team) (string, error) {
	return execute(teamsTmpl, teams)
}

// Areas renders the affected areas table.
func Areas(areas []model.AffectedArea) (string, error) {
	return execute(areasTmpl, areas)
}

// Actions renders a team's action history, most recent first as received.
func Actions(entries []model.ActionHistoryEntry) (string, error) {
	return execute(actionsTmpl, entries)
}

// RegionTree renders the administrative hierarchy preserving child order.
func RegionTree(root model.Region) (string, error) {
	return execute(regionTmpl, root)
}

// RouteDetails renders a computed route's summary and ordered waypoints.
func RouteDetails(r model.Route) (string, error) {
	return execute(routeTmpl, r)
}

// Breadcrumb renders a zone's administrative path from state to zone.
func Breadcrumb(path []string) (string, error) {
	return execute(breadcrumbTmpl, path)
}

// Notice renders an inline error alert for a failed view or action.
func Notice(msg string) (string, error) {
	return execute(noticeTmpl, msg)
}

type svgNode struct {
	Name   string
	X, Y   int
	LY     int
	Radius int
	Fill   string
	Bold   bool
}

type svgEdge struct {
	X1, Y1, X2, Y2 int
	LX, LY         int
	StrokeWidth    int
	Stroke         string
	Weight         float64
}

type svgGraph struct {
	Width, Height int
	Nodes         []svgNode
	Edges         []svgEdge
}

const (
	svgWidth  = 600
	svgHeight = 400
)

// nodePositions lays the declared nodes out on a circle, in declaration
// order. The layout is deterministic so fragment diffs stay stable.
func nodePositions(nodes []topology.Node) map[string][2]int {
	cx, cy := svgWidth/2, svgHeight/2
	r := float64(svgHeight)/2 - 60
	pos := make(map[string][2]int, len(nodes))
	for i, n := range nodes {
		angle := 2 * math.Pi * float64(i) / float64(len(nodes))
		pos[n.Name] = [2]int{
			cx + int(r*math.Cos(angle)),
			cy + int(r*math.Sin(angle)),
		}
	}
	return pos
}

func nodeRadius(role route.NodeRole) int {
	switch role {
	case route.RoleOrigin, route.RoleDestination:
		return 12
	case route.RoleWaypoint:
		return 10
	default:
		return 8
	}
}

func nodeFill(role route.NodeRole, group int) string {
	switch role {
	case route.RoleOrigin:
		return "#0275d8"
	case route.RoleDestination:
		return "#d9534f"
	case route.RoleWaypoint:
		return "#f0ad4e"
	}
	switch group {
	case 1:
		return "#28a745"
	case 2:
		return "#6c757d"
	default:
		return "#17a2b8"
	}
}

// Topology renders the location graph as inline SVG. Edges and nodes on
// the classified route are drawn heavier and recolored; with a zero
// Classification the plain graph is drawn.
func Topology(g *topology.Graph, cls route.Classification) (string, error) {
	pos := nodePositions(g.Nodes())

	data := svgGraph{Width: svgWidth, Height: svgHeight}
	for _, e := range g.Edges() {
		s, t := pos[e.Source], pos[e.Target]
		edge := svgEdge{
			X1: s[0], Y1: s[1], X2: t[0], Y2: t[1],
			LX: (s[0] + t[0]) / 2, LY: (s[1]+t[1])/2 - 5,
			StrokeWidth: 2, Stroke: "#999",
			Weight: e.Weight,
		}
		if cls.EdgeOnRoute(e.Source, e.Target) {
			edge.StrokeWidth = 4
			edge.Stroke = "#ff4500"
		}
		data.Edges = append(data.Edges, edge)
	}
	for _, n := range g.Nodes() {
		p := pos[n.Name]
		role := cls.NodeRole(n.Name)
		data.Nodes = append(data.Nodes, svgNode{
			Name:   n.Name,
			X:      p[0],
			Y:      p[1],
			LY:     p[1] - 15,
			Radius: nodeRadius(role),
			Fill:   nodeFill(role, n.Group),
			Bold:   role == route.RoleOrigin || role == route.RoleDestination,
		})
	}
	return execute(svgTmpl, data)
}
