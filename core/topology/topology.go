// Package topology holds the static location graph the dashboard overlays
// routes on. The graph is seeded once at startup and never mutated.
package topology

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
)

// Node is a named location with a rendering group.
type Node struct {
	Name  string `json:"name"`
	Group int    `json:"group"`
}

// Edge is an undirected weighted connection between two locations.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// Graph is an immutable set of locations and connections. The gonum graph
// backs adjacency and weight queries; the declared node and edge order is
// preserved for rendering.
type Graph struct {
	g     *simple.WeightedUndirectedGraph
	ids   map[string]int64
	nodes []Node
	edges []Edge
}

// New builds a Graph from node and edge lists. Every edge endpoint must be a
// declared node and node names must be unique.
func New(nodes []Node, edges []Edge) (*Graph, error) {
	g := &Graph{
		g:     simple.NewWeightedUndirectedGraph(0, 0),
		ids:   make(map[string]int64, len(nodes)),
		nodes: append([]Node(nil), nodes...),
		edges: append([]Edge(nil), edges...),
	}
	for i, n := range nodes {
		if n.Name == "" {
			return nil, fmt.Errorf("node %d has no name", i)
		}
		if _, ok := g.ids[n.Name]; ok {
			return nil, fmt.Errorf("duplicate node %s", n.Name)
		}
		id := int64(i)
		g.ids[n.Name] = id
		g.g.AddNode(simple.Node(id))
	}
	for _, e := range edges {
		src, ok := g.ids[e.Source]
		if !ok {
			return nil, fmt.Errorf("edge references unknown node %s", e.Source)
		}
		dst, ok := g.ids[e.Target]
		if !ok {
			return nil, fmt.Errorf("edge references unknown node %s", e.Target)
		}
		if src == dst {
			return nil, fmt.Errorf("self edge on %s", e.Source)
		}
		g.g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(src), T: simple.Node(dst), W: e.Weight})
	}
	return g, nil
}

// Default returns the fixed operational topology used by the dashboard.
func Default() *Graph {
	g, err := New(
		[]Node{
			{Name: "Base Central", Group: 1},
			{Name: "Zona Norte", Group: 2},
			{Name: "Zona Sul", Group: 2},
			{Name: "Mata Alta", Group: 3},
			{Name: "Vila Verde", Group: 3},
			{Name: "Parque Nacional", Group: 3},
		},
		[]Edge{
			{Source: "Base Central", Target: "Zona Norte", Weight: 10},
			{Source: "Base Central", Target: "Vila Verde", Weight: 5},
			{Source: "Base Central", Target: "Zona Sul", Weight: 8},
			{Source: "Zona Norte", Target: "Mata Alta", Weight: 7},
			{Source: "Vila Verde", Target: "Mata Alta", Weight: 3},
			{Source: "Vila Verde", Target: "Parque Nacional", Weight: 6},
			{Source: "Zona Sul", Target: "Parque Nacional", Weight: 4},
		},
	)
	if err != nil {
		panic(err)
	}
	return g
}

// Nodes returns the declared nodes in declaration order.
func (g *Graph) Nodes() []Node {
	return append([]Node(nil), g.nodes...)
}

// Edges returns the declared edges in declaration order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Has reports whether a location exists in the graph.
func (g *Graph) Has(name string) bool {
	_, ok := g.ids[name]
	return ok
}

// Weight returns the edge weight between two locations and whether the edge
// exists. Order of the arguments does not matter.
func (g *Graph) Weight(a, b string) (float64, bool) {
	aid, ok := g.ids[a]
	if !ok {
		return 0, false
	}
	bid, ok := g.ids[b]
	if !ok {
		return 0, false
	}
	if aid == bid {
		return 0, false
	}
	if !g.g.HasEdgeBetween(aid, bid) {
		return 0, false
	}
	w, _ := g.g.Weight(aid, bid)
	return w, true
}

// Neighbors returns the names of locations directly connected to name.
func (g *Graph) Neighbors(name string) []string {
	id, ok := g.ids[name]
	if !ok {
		return nil
	}
	var out []string
	it := g.g.From(id)
	for it.Next() {
		out = append(out, g.nodes[it.Node().ID()].Name)
	}
	return out
}
