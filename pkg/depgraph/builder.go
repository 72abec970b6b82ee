package depgraph

import (
	"context"
	"time"

	"github.com/matzehuels/brewdeps/pkg/inventory"
	"github.com/matzehuels/brewdeps/pkg/observability"
)

// Build constructs the dependency graph of a snapshot.
//
// Every formula and cask becomes a node carrying its raw attributes. Edges
// are added only towards packages that are themselves installed: a formula
// dependency must name an installed formula, a cask depends_on.formula entry
// an installed formula, and a depends_on.cask entry an installed cask.
// Anything else is dropped silently; uninstalled optional dependencies are
// the common case.
//
// Nodes and edges are inserted in snapshot order, so building the same
// snapshot twice yields identical graphs. Records without an identity are
// skipped. A nil snapshot yields an empty graph.
func Build(snap *inventory.Snapshot) *Graph {
	return BuildContext(context.Background(), snap)
}

// BuildContext is Build with a context for the observability hooks.
func BuildContext(ctx context.Context, snap *inventory.Snapshot) *Graph {
	start := time.Now()
	g := New()
	if snap == nil {
		return g
	}
	installed := snap.InstalledSet()

	// Nodes first so that edges may point forward in input order.
	for _, f := range snap.Formulae {
		if f.Name == "" {
			continue
		}
		_ = g.AddNode(Node{ID: f.Name, Kind: NodeKindFormula, Meta: Metadata(f.Attrs)})
	}
	for _, c := range snap.Casks {
		if c.Name == "" {
			continue
		}
		_ = g.AddNode(Node{ID: c.Name, Kind: NodeKindCask, Meta: Metadata(c.Attrs)})
	}

	for _, f := range snap.Formulae {
		if f.Name == "" {
			continue
		}
		addEdges(g, f.Name, f.Dependencies, EdgeRuntime, installed.HasFormula)
		addEdges(g, f.Name, f.BuildDependencies, EdgeBuild, installed.HasFormula)
		addEdges(g, f.Name, f.OptionalDependencies, EdgeOptional, installed.HasFormula)
	}
	for _, c := range snap.Casks {
		if c.Name == "" {
			continue
		}
		addEdges(g, c.Name, c.DependsOn.Formula, EdgeCaskFormula, installed.HasFormula)
		addEdges(g, c.Name, c.DependsOn.Cask, EdgeCaskCask, installed.HasCask)
	}

	observability.Graph().OnBuild(ctx, g.NodeCount(), g.EdgeCount(), time.Since(start))
	return g
}

func addEdges(g *Graph, from string, deps []string, kind EdgeKind, installed func(string) bool) {
	for _, dep := range deps {
		if installed(dep) {
			_ = g.AddEdge(Edge{From: from, To: dep, Kind: kind})
		}
	}
}
