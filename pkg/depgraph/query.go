package depgraph

import (
	"slices"
)

// Queries in this file never mutate the graph and never fail: an identity
// absent from the graph yields an empty result, leaving "not found" to the
// caller.

// Unbounded disables the depth limit of DependencyTree.
//
// An unbounded tree repeats a shared dependency under every path that
// reaches it, so its size can grow exponentially with the depth of the
// graph. Use DependencyTreeLimit when the input is not trusted.
const Unbounded = -1

// ReverseDependents returns the packages that directly depend on id, in edge
// insertion order.
func ReverseDependents(g *Graph, id string) []string {
	if !g.Has(id) {
		return nil
	}
	return slices.Clone(g.Parents(id))
}

// DirectDependencies returns the packages id directly depends on, in edge
// insertion order.
func DirectDependencies(g *Graph, id string) []string {
	if !g.Has(id) {
		return nil
	}
	return slices.Clone(g.Children(id))
}

// TransitiveDependencies returns every package reachable from id along
// outgoing edges, sorted. id itself is never included, even when it sits on
// a cycle.
func TransitiveDependencies(g *Graph, id string) []string {
	if !g.Has(id) {
		return nil
	}
	visited := map[string]bool{id: true}
	stack := slices.Clone(g.Children(id))
	var out []string
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n] {
			continue
		}
		visited[n] = true
		out = append(out, n)
		stack = append(stack, g.Children(n)...)
	}
	slices.Sort(out)
	return out
}

// TopLevelPackages filters candidates to those present in the graph with no
// dependents. Candidate order is preserved.
//
// No dependents means nothing installed requires the package, a hint that
// the user installed it directly. The installed-on-request flag of the
// inventory is a separate signal; see inventory.ExplicitlyInstalled.
func TopLevelPackages(g *Graph, candidates []string) []string {
	var out []string
	for _, id := range candidates {
		if g.Has(id) && g.InDegree(id) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// LeafPackages filters candidates to those present in the graph that depend
// on nothing installed. Candidate order is preserved.
func LeafPackages(g *Graph, candidates []string) []string {
	var out []string
	for _, id := range candidates {
		if g.Has(id) && g.OutDegree(id) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Tree is one node of a dependency tree.
type Tree struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Children []*Tree  `json:"children,omitempty"`

	// Truncated is set when the depth limit or the node budget stopped
	// expansion of a node that has dependencies.
	Truncated bool `json:"truncated,omitempty"`

	// Cycle is set when the node already appears on the path from the root.
	// Such nodes are not expanded.
	Cycle bool `json:"cycle,omitempty"`
}

// Size returns the number of nodes in the tree.
func (t *Tree) Size() int {
	if t == nil {
		return 0
	}
	n := 1
	for _, c := range t.Children {
		n += c.Size()
	}
	return n
}

// Walk calls fn for every node in depth-first pre-order with its depth
// below the root. Returning false skips the node's children.
func (t *Tree) Walk(fn func(t *Tree, depth int) bool) {
	t.walk(fn, 0)
}

func (t *Tree) walk(fn func(*Tree, int) bool, depth int) {
	if t == nil || !fn(t, depth) {
		return
	}
	for _, c := range t.Children {
		c.walk(fn, depth+1)
	}
}

// DependencyTree expands the dependencies of id into a tree, maxDepth levels
// below the root; a negative maxDepth (Unbounded) expands until every branch
// ends. Children follow the graph's successor order.
//
// A package shared by several branches is expanded under each of them. A
// child that already appears among its own ancestors is marked Cycle and
// left unexpanded, so the walk terminates on cyclic graphs even without a
// depth limit.
//
// Returns nil when id is not in the graph.
func DependencyTree(g *Graph, id string, maxDepth int) *Tree {
	return DependencyTreeLimit(g, id, maxDepth, 0)
}

// DependencyTreeLimit is DependencyTree with a budget of at most maxNodes
// tree nodes, root included. Once the budget is spent, nodes whose children
// no longer fit are marked Truncated. A maxNodes <= 0 means no budget.
func DependencyTreeLimit(g *Graph, id string, maxDepth, maxNodes int) *Tree {
	n, ok := g.Node(id)
	if !ok {
		return nil
	}
	root := &Tree{ID: id, Kind: n.Kind}
	e := &expander{g: g, maxDepth: maxDepth, budget: maxNodes - 1, limited: maxNodes > 0}
	e.expand(root, 0, map[string]bool{id: true})
	return root
}

type expander struct {
	g        *Graph
	maxDepth int
	budget   int // nodes left to add when limited
	limited  bool
}

func (e *expander) expand(t *Tree, depth int, path map[string]bool) {
	children := e.g.Children(t.ID)
	if len(children) == 0 {
		return
	}
	if e.maxDepth >= 0 && depth >= e.maxDepth {
		t.Truncated = true
		return
	}
	for _, childID := range children {
		if e.limited {
			if e.budget <= 0 {
				t.Truncated = true
				return
			}
			e.budget--
		}
		n, _ := e.g.Node(childID)
		child := &Tree{ID: childID, Kind: n.Kind}
		t.Children = append(t.Children, child)
		if path[childID] {
			child.Cycle = true
			continue
		}
		path[childID] = true
		e.expand(child, depth+1, path)
		delete(path, childID)
	}
}

// DependencyClosure returns the subgraph induced by id and its transitive
// dependencies: those nodes plus every edge between them. It is empty when
// id is absent.
func DependencyClosure(g *Graph, id string) *Graph {
	if !g.Has(id) {
		return New()
	}
	return g.Subgraph(append([]string{id}, TransitiveDependencies(g, id)...))
}
