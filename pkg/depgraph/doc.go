// Package depgraph builds and queries the dependency graph of installed
// Homebrew packages.
//
// # Overview
//
// [Build] turns an [inventory.Snapshot] into a [Graph] whose nodes are the
// installed formulae and casks and whose edges point from a package to the
// installed packages it requires. Dependencies that are not installed never
// become nodes, so the graph contains no dangling edges.
//
//	g := depgraph.Build(snap)
//	deps := depgraph.TransitiveDependencies(g, "wget")
//	why := depgraph.ReverseDependents(g, "openssl@3")
//
// # Edges
//
// Each edge carries an [EdgeKind]: runtime, build and optional edges come
// from formula dependency lists, cask_formula and cask_cask edges from a
// cask's depends_on stanza. A pair of packages may be linked by several
// kinds at once; [Graph.Children] and [Graph.Parents] still list each
// neighbour once.
//
// # Cycles
//
// Homebrew metadata is not guaranteed acyclic. [Graph.HasCycle] detects
// cycles but nothing removes them; every traversal here tracks what it has
// visited instead. [DependencyTree] marks a node that reappears on its own
// ancestor path with [Tree.Cycle].
//
// # Queries
//
// The query functions are pure and never return errors. Asking about a
// package that is not in the graph returns an empty result.
package depgraph
