// Package io provides JSON import and export for dependency graphs.
//
// # JSON Format
//
// The format has two top-level arrays:
//
//	{
//	  "nodes": [
//	    {"id": "wget", "kind": "formula"},
//	    {"id": "openssl@3", "kind": "formula"},
//	    {"id": "mactex-no-gui", "kind": "cask"}
//	  ],
//	  "edges": [
//	    {"from": "wget", "to": "openssl@3", "kind": "runtime"},
//	    {"from": "mactex-no-gui", "to": "wget", "kind": "cask_formula"}
//	  ]
//	}
//
// Node kinds are "formula" and "cask". Edge kinds are "runtime", "build",
// "optional", "cask_formula" and "cask_cask". With [WriteOptions].Meta set,
// each node also carries a "meta" object holding the raw Homebrew record
// minus its identity.
//
// # Import
//
// [ReadJSON] and [ImportJSON] rebuild a [depgraph.Graph], rejecting
// duplicate IDs, unknown kinds and edges to unknown nodes. Cyclic graphs are
// accepted, as Homebrew metadata is not guaranteed acyclic.
//
// [depgraph.Graph]: github.com/matzehuels/brewdeps/pkg/depgraph.Graph
package io
