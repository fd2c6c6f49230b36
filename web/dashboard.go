package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmaia/dispatchboard/core/backend"
	"github.com/rmaia/dispatchboard/core/route"
	"github.com/rmaia/dispatchboard/core/session"
	"github.com/rmaia/dispatchboard/web/render"
)

const pageTmplStr = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>Painel de Despacho</title>
<link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css" rel="stylesheet">
</head>
<body>
<div class="container-fluid py-3">
<h1 class="h3 mb-3">Painel de Despacho de Emergências</h1>
<div class="mb-3">
<button id="viewHeapBtn" class="btn btn-sm {{if .Prioritized}}btn-dark{{else}}btn-outline-dark{{end}}" data-mode="prioritized">Por Prioridade</button>
<button id="viewQueueBtn" class="btn btn-sm {{if .Prioritized}}btn-outline-dark{{else}}btn-dark{{end}}" data-mode="insertion">Por Chegada</button>
</div>
<div class="row">
<div class="col-lg-6">
<div class="card mb-3"><div class="card-header">Fila de Chamados</div>
<div class="card-body" id="queueView" data-src="/api/dispatch/fragments/queue">{{.Queue}}</div></div>
<div class="card mb-3"><div class="card-header">Áreas Afetadas</div>
<div class="card-body" id="areasView" data-src="/api/dispatch/fragments/areas">{{.Areas}}</div></div>
</div>
<div class="col-lg-6">
<div class="card mb-3"><div class="card-header">Equipes</div>
<div class="card-body" id="teamsView" data-src="/api/dispatch/fragments/teams">{{.Teams}}</div></div>
<div class="card mb-3"><div class="card-header">Regiões</div>
<div class="card-body" id="regionsView">{{.Regions}}</div></div>
<div class="card mb-3"><div class="card-header">Topologia</div>
<div class="card-body" id="topologyView">{{.Topology}}</div></div>
</div>
</div>
</div>
<script>
setInterval(function () {
  document.querySelectorAll('[data-src]').forEach(function (el) {
    fetch(el.dataset.src).then(function (r) { return r.text(); }).then(function (html) {
      el.innerHTML = html;
    });
  });
}, 30000);
</script>
</body>
</html>`

var pageTmpl = template.Must(template.New("page").Parse(pageTmplStr))

type pageData struct {
	Prioritized bool
	Queue       template.HTML
	Teams       template.HTML
	Areas       template.HTML
	Regions     template.HTML
	Topology    template.HTML
}

// fragment renders a snapshot's body, prefixing an inline notice when the
// last refresh of that view failed.
func fragment(body string, renderErr, snapErr error) (template.HTML, error) {
	if renderErr != nil {
		return "", renderErr
	}
	if snapErr != nil {
		n, err := render.Notice(backend.UserMessage(snapErr))
		if err != nil {
			return "", err
		}
		body = n + body
	}
	return template.HTML(body), nil
}

func (s *Server) dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	regions := s.sess.Regions()
	if !regions.Loaded {
		s.ctl.Refresh(ctx, session.ViewRegions)
		regions = s.sess.Regions()
	}

	data := pageData{Prioritized: s.sess.Mode() == session.ModePrioritized}
	var err error

	queue := s.sess.Queue()
	body, rerr := render.Queue(queue.Data)
	if data.Queue, err = fragment(body, rerr, queue.Err); err != nil {
		s.html(c, 0, "", err)
		return
	}

	teams := s.sess.Teams()
	body, rerr = render.Teams(teams.Data)
	if data.Teams, err = fragment(body, rerr, teams.Err); err != nil {
		s.html(c, 0, "", err)
		return
	}

	areas := s.sess.Areas()
	body, rerr = render.Areas(areas.Data)
	if data.Areas, err = fragment(body, rerr, areas.Err); err != nil {
		s.html(c, 0, "", err)
		return
	}

	body, rerr = render.RegionTree(regions.Data)
	if data.Regions, err = fragment(body, rerr, regions.Err); err != nil {
		s.html(c, 0, "", err)
		return
	}

	svg, rerr := render.Topology(s.topo, route.Classification{})
	if rerr != nil {
		s.html(c, 0, "", rerr)
		return
	}
	data.Topology = template.HTML(svg)

	var b bytes.Buffer
	if err := pageTmpl.Execute(&b, data); err != nil {
		s.html(c, 0, "", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", b.Bytes())
}
