package route

import (
	"testing"

	"github.com/rmaia/dispatchboard/core/model"
	"github.com/rmaia/dispatchboard/core/topology"
)

func TestCorrelateMarksConsecutiveEdges(t *testing.T) {
	topo := topology.Default()
	r := model.Route{
		Origin:      "Base Central",
		Destination: "Mata Alta",
		Path:        []string{"Base Central", "Vila Verde", "Mata Alta"},
		Distance:    8,
	}
	c := Correlate(r, topo)

	if got := c.OnRouteEdgeCount(); got != len(r.Path)-1 {
		t.Fatalf("expected %d on-route edges, got %d", len(r.Path)-1, got)
	}
	if !c.EdgeOnRoute("Base Central", "Vila Verde") {
		t.Errorf("expected first leg on-route")
	}
	if !c.EdgeOnRoute("Vila Verde", "Mata Alta") {
		t.Errorf("expected second leg on-route")
	}
	if c.EdgeOnRoute("Base Central", "Zona Sul") {
		t.Errorf("unrelated edge marked on-route")
	}
}

func TestCorrelateSymmetry(t *testing.T) {
	topo := topology.Default()
	r := model.Route{
		Origin:      "Base Central",
		Destination: "Parque Nacional",
		Path:        []string{"Base Central", "Zona Sul", "Parque Nacional"},
	}
	c := Correlate(r, topo)
	for _, e := range [][2]string{{"Base Central", "Zona Sul"}, {"Zona Sul", "Parque Nacional"}} {
		if c.EdgeOnRoute(e[0], e[1]) != c.EdgeOnRoute(e[1], e[0]) {
			t.Errorf("edge (%s,%s) classification not symmetric", e[0], e[1])
		}
	}
}

func TestCorrelateTwoWaypoints(t *testing.T) {
	topo := topology.Default()
	r := model.Route{
		Origin:      "Base Central",
		Destination: "Vila Verde",
		Path:        []string{"Base Central", "Vila Verde"},
	}
	c := Correlate(r, topo)
	if c.OnRouteEdgeCount() != 1 {
		t.Fatalf("expected exactly one edge, got %d", c.OnRouteEdgeCount())
	}
	if !c.EdgeOnRoute("Vila Verde", "Base Central") {
		t.Errorf("expected the single leg on-route in either orientation")
	}
	for _, e := range topo.Edges() {
		if e.Source == "Base Central" && e.Target == "Vila Verde" {
			continue
		}
		if c.EdgeOnRoute(e.Source, e.Target) {
			t.Errorf("edge (%s,%s) should not be on-route", e.Source, e.Target)
		}
	}
}

func TestCorrelateDegenerateRoutes(t *testing.T) {
	topo := topology.Default()
	for _, path := range [][]string{nil, {"Base Central"}} {
		c := Correlate(model.Route{Origin: "Base Central", Destination: "Base Central", Path: path}, topo)
		if c.OnRouteEdgeCount() != 0 {
			t.Errorf("path %v: expected no on-route edges", path)
		}
		if c.NodeRole("Base Central") == RoleNone {
			t.Errorf("path %v: origin should still classify", path)
		}
	}
}

func TestNodeRoles(t *testing.T) {
	topo := topology.Default()
	r := model.Route{
		Origin:      "Base Central",
		Destination: "Mata Alta",
		Path:        []string{"Base Central", "Vila Verde", "Mata Alta"},
	}
	c := Correlate(r, topo)
	cases := []struct {
		name string
		want NodeRole
	}{
		{"Base Central", RoleOrigin},
		{"Mata Alta", RoleDestination},
		{"Vila Verde", RoleWaypoint},
		{"Zona Norte", RoleNone},
	}
	for _, cse := range cases {
		if got := c.NodeRole(cse.name); got != cse.want {
			t.Errorf("%s: got role %v want %v", cse.name, got, cse.want)
		}
	}
}

func TestUnknownWaypoints(t *testing.T) {
	topo := topology.Default()
	r := model.Route{
		Origin:      "Base Central",
		Destination: "Zona Oeste",
		Path:        []string{"Base Central", "Zona Oeste"},
	}
	c := Correlate(r, topo)
	unknown := c.UnknownWaypoints()
	if len(unknown) != 1 || unknown[0] != "Zona Oeste" {
		t.Errorf("got unknown %v, want [Zona Oeste]", unknown)
	}
}
