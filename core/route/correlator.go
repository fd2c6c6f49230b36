// Package route classifies topology elements against a computed route so
// renderers can highlight the active path. Classification is a pure function
// of the route and the topology; neither is mutated.
package route

import (
	"github.com/rmaia/dispatchboard/core/model"
	"github.com/rmaia/dispatchboard/core/topology"
)

// NodeRole describes how a location relates to the current route.
type NodeRole int

const (
	// RoleNone marks a location unrelated to the route.
	RoleNone NodeRole = iota
	// RoleWaypoint marks an intermediate location on the route.
	RoleWaypoint
	// RoleOrigin marks the route's starting location.
	RoleOrigin
	// RoleDestination marks the route's final location.
	RoleDestination
)

type pair struct {
	a, b string
}

// normalized orders the pair so that (a,b) and (b,a) collide.
func normalized(a, b string) pair {
	if b < a {
		a, b = b, a
	}
	return pair{a, b}
}

// Classification is the result of correlating a route with the topology.
type Classification struct {
	onEdges map[pair]struct{}
	roles   map[string]NodeRole
	unknown []string
}

// Correlate builds the classification for a route. Waypoints not present in
// the topology still classify and are reported by UnknownWaypoints; the
// renderer simply has nothing to draw for them. A route with fewer than two
// waypoints marks no edges.
func Correlate(r model.Route, topo *topology.Graph) Classification {
	c := Classification{
		onEdges: make(map[pair]struct{}),
		roles:   make(map[string]NodeRole),
	}
	for i := 0; i+1 < len(r.Path); i++ {
		c.onEdges[normalized(r.Path[i], r.Path[i+1])] = struct{}{}
	}
	for _, name := range r.Path {
		if _, ok := c.roles[name]; !ok {
			c.roles[name] = RoleWaypoint
			if topo != nil && !topo.Has(name) {
				c.unknown = append(c.unknown, name)
			}
		}
	}
	if r.Origin != "" {
		c.roles[r.Origin] = RoleOrigin
	}
	if r.Destination != "" {
		c.roles[r.Destination] = RoleDestination
	}
	return c
}

// EdgeOnRoute reports whether the undirected edge between a and b lies on
// the route. Argument order does not matter.
func (c Classification) EdgeOnRoute(a, b string) bool {
	_, ok := c.onEdges[normalized(a, b)]
	return ok
}

// NodeRole returns the role of a location relative to the route.
func (c Classification) NodeRole(name string) NodeRole {
	return c.roles[name]
}

// OnRouteEdgeCount returns the number of distinct edges on the route.
func (c Classification) OnRouteEdgeCount() int {
	return len(c.onEdges)
}

// UnknownWaypoints lists route waypoints that do not exist in the topology,
// in route order. A non-empty result means the backend and the session
// topology disagree.
func (c Classification) UnknownWaypoints() []string {
	return append([]string(nil), c.unknown...)
}
