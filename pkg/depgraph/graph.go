package depgraph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Metadata stores the opaque attributes of an inventory record.
// Metadata maps are never nil after AddNode.
type Metadata map[string]any

// NodeKind distinguishes formulae from casks.
type NodeKind string

const (
	NodeKindFormula NodeKind = "formula"
	NodeKindCask    NodeKind = "cask"
)

// EdgeKind records why one package requires another.
type EdgeKind string

const (
	EdgeRuntime     EdgeKind = "runtime"      // formula runtime dependency
	EdgeBuild       EdgeKind = "build"        // formula build dependency
	EdgeOptional    EdgeKind = "optional"     // formula optional dependency
	EdgeCaskFormula EdgeKind = "cask_formula" // cask depends_on formula
	EdgeCaskCask    EdgeKind = "cask_cask"    // cask depends_on cask
)

// Node is an installed package.
type Node struct {
	ID   string   // formula name or cask token
	Kind NodeKind // formula or cask
	Meta Metadata // raw inventory attributes, identity excluded
}

// Edge is a directed "From requires To" relation.
type Edge struct {
	From string
	To   string
	Kind EdgeKind
}

type edgeKey struct {
	from, to string
	kind     EdgeKind
}

// Graph is a directed dependency graph over installed packages.
//
// Unlike a layered DAG it may contain cycles; traversals in this package
// guard against them. Nodes, edges, Children and Parents are all reported in
// insertion order, so a graph built from the same input is always walked the
// same way.
//
// The zero value is not usable - use New. Graph is not safe for concurrent
// mutation; concurrent reads of a fully built graph are fine.
type Graph struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	edgeSet  map[edgeKey]bool
	outgoing map[string][]string // nodeID -> distinct children, first-seen order
	incoming map[string][]string // nodeID -> distinct parents, first-seen order
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		edgeSet:  make(map[edgeKey]bool),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode inserts a node. Adding an ID that already exists replaces the
// node's kind and metadata in place and keeps its position and edges; this is
// how a formula and a cask sharing one identity collapse into the later one.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	if existing, ok := g.nodes[n.ID]; ok {
		*existing = n
		return nil
	}
	node := n
	g.nodes[n.ID] = &node
	g.order = append(g.order, n.ID)
	return nil
}

// AddEdge adds a directed edge between two existing nodes. Adding an edge
// that already exists with the same kind is a no-op; the same pair may be
// linked once per kind.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	key := edgeKey{e.From, e.To, e.Kind}
	if g.edgeSet[key] {
		return nil
	}
	g.edgeSet[key] = true
	g.edges = append(g.edges, e)
	if !slices.Contains(g.outgoing[e.From], e.To) {
		g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
		g.incoming[e.To] = append(g.incoming[e.To], e.From)
	}
	return nil
}

// Node returns the node with the given ID and true, or nil and false.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Has reports whether id is a node of the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// NodeIDs returns all node IDs in insertion order.
func (g *Graph) NodeIDs() []string { return slices.Clone(g.order) }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// EdgesBetween returns the edges from -> to, one per kind, in insertion
// order.
func (g *Graph) EdgesBetween(from, to string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.From == from && e.To == to {
			out = append(out, e)
		}
	}
	return out
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph, counting parallel
// edges of different kinds separately.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Children returns the distinct successors of id (its dependencies).
// The returned slice should be treated as read-only.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the distinct predecessors of id (its dependents).
// The returned slice should be treated as read-only.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// OutDegree returns the number of distinct successors; 0 for unknown IDs.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of distinct predecessors; 0 for unknown IDs.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// Subgraph returns the subgraph induced by ids: those nodes that exist, and
// every edge whose endpoints are both included. Node order follows the
// parent graph; metadata maps are shared, not copied.
func (g *Graph) Subgraph(ids []string) *Graph {
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		if g.Has(id) {
			keep[id] = true
		}
	}

	sub := New()
	for _, id := range g.order {
		if keep[id] {
			_ = sub.AddNode(*g.nodes[id])
		}
	}
	for _, e := range g.edges {
		if keep[e.From] && keep[e.To] {
			_ = sub.AddEdge(e)
		}
	}
	return sub
}

// HasCycle reports whether the graph contains a directed cycle, using
// depth-first search with white/gray/black coloring.
func (g *Graph) HasCycle() bool {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range g.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for _, id := range g.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return true
			}
		}
	}
	return false
}
