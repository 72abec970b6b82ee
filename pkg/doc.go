// Package pkg holds the brewdeps libraries.
//
// # Overview
//
// brewdeps explains the dependency relationships between installed Homebrew
// formulae and casks. The libraries are organized by stage:
//
//  1. [inventory] - Reading `brew info --json=v2 --installed` and caching it
//  2. [depgraph] - The dependency graph and the queries over it
//  3. [report] - Package reports and the installation overview
//  4. [render] and [io] - DOT, images and JSON export
//  5. [server] - A read-only HTTP API over the graph
//
// Supporting packages: [cache] (file, redis and null backends), [config]
// (TOML file plus BREWDEPS_* overrides), [errors] (coded errors),
// [observability] (hooks for logging and metrics) and [buildinfo].
//
// # Architecture
//
//	brew info --json=v2 --installed
//	         ↓
//	    [inventory] Source → Snapshot   (cached by inventory.Loader)
//	         ↓
//	    [depgraph] Build → Graph
//	         ↓
//	    [depgraph] queries, [report]
//	         ↓
//	    terminal, DOT/PNG/SVG/JPG, JSON, HTTP
//
// # Quick Start
//
//	src := &inventory.FileSource{Path: "brew_info.json"}
//	snap, _ := src.Fetch(ctx)
//	g := depgraph.Build(snap)
//
//	depgraph.ReverseDependents(g, "openssl@3")      // why is it installed?
//	depgraph.TransitiveDependencies(g, "wget")      // what does it pull in?
//	depgraph.TopLevelPackages(g, snap.FormulaNames())
//
// The brewdeps command in cmd/brewdeps wires these together.
//
// [inventory]: https://pkg.go.dev/github.com/matzehuels/brewdeps/pkg/inventory
// [depgraph]: https://pkg.go.dev/github.com/matzehuels/brewdeps/pkg/depgraph
// [report]: https://pkg.go.dev/github.com/matzehuels/brewdeps/pkg/report
// [render]: https://pkg.go.dev/github.com/matzehuels/brewdeps/pkg/render
// [io]: https://pkg.go.dev/github.com/matzehuels/brewdeps/pkg/io
// [server]: https://pkg.go.dev/github.com/matzehuels/brewdeps/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/brewdeps/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/brewdeps/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/brewdeps/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/brewdeps/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/brewdeps/pkg/buildinfo
package pkg
