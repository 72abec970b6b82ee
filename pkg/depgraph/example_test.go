package depgraph_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/brewdeps/pkg/depgraph"
	"github.com/matzehuels/brewdeps/pkg/inventory"
)

func ExampleBuild() {
	snap := &inventory.Snapshot{
		Formulae: []inventory.Package{
			{Name: "wget", Kind: inventory.KindFormula, Dependencies: []string{"openssl@3", "gettext"}},
			{Name: "openssl@3", Kind: inventory.KindFormula, Dependencies: []string{"ca-certificates"}},
			{Name: "ca-certificates", Kind: inventory.KindFormula},
		},
	}
	g := depgraph.Build(snap)

	// gettext is not installed, so no edge points at it.
	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("wget pulls in:", depgraph.TransitiveDependencies(g, "wget"))
	fmt.Println("openssl@3 needed by:", depgraph.ReverseDependents(g, "openssl@3"))
	// Output:
	// Nodes: 3
	// Edges: 2
	// wget pulls in: [ca-certificates openssl@3]
	// openssl@3 needed by: [wget]
}

func ExampleTopLevelPackages() {
	g := depgraph.New()
	_ = g.AddNode(depgraph.Node{ID: "git"})
	_ = g.AddNode(depgraph.Node{ID: "pcre2"})
	_ = g.AddNode(depgraph.Node{ID: "jq"})
	_ = g.AddEdge(depgraph.Edge{From: "git", To: "pcre2", Kind: depgraph.EdgeRuntime})

	fmt.Println(depgraph.TopLevelPackages(g, []string{"git", "pcre2", "jq"}))
	// Output:
	// [git jq]
}

func ExampleDependencyTree() {
	g := depgraph.New()
	for _, id := range []string{"app", "lib", "core"} {
		_ = g.AddNode(depgraph.Node{ID: id, Kind: depgraph.NodeKindFormula})
	}
	_ = g.AddEdge(depgraph.Edge{From: "app", To: "lib"})
	_ = g.AddEdge(depgraph.Edge{From: "lib", To: "core"})
	_ = g.AddEdge(depgraph.Edge{From: "core", To: "app"})

	tree := depgraph.DependencyTree(g, "app", depgraph.Unbounded)
	tree.Walk(func(n *depgraph.Tree, depth int) bool {
		suffix := ""
		if n.Cycle {
			suffix = " (cycle)"
		}
		fmt.Println(strings.Repeat("  ", depth) + n.ID + suffix)
		return true
	})
	// Output:
	// app
	//   lib
	//     core
	//       app (cycle)
}
