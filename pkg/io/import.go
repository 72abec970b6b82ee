package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/brewdeps/pkg/depgraph"
)

var (
	// ErrDuplicateNode is returned when two nodes share an ID.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrUnknownKind is returned for an unrecognized node or edge kind.
	ErrUnknownKind = errors.New("unknown kind")
)

var nodeKinds = map[string]depgraph.NodeKind{
	"":        depgraph.NodeKindFormula,
	"formula": depgraph.NodeKindFormula,
	"cask":    depgraph.NodeKindCask,
}

var edgeKinds = map[string]depgraph.EdgeKind{
	"":             depgraph.EdgeRuntime,
	"runtime":      depgraph.EdgeRuntime,
	"build":        depgraph.EdgeBuild,
	"optional":     depgraph.EdgeOptional,
	"cask_formula": depgraph.EdgeCaskFormula,
	"cask_cask":    depgraph.EdgeCaskCask,
}

// ReadJSON decodes a JSON graph from r.
//
// The input must be a JSON object with "nodes" and "edges" arrays:
//
//	{
//	  "nodes": [{"id": "wget", "kind": "formula"}, {"id": "openssl@3"}],
//	  "edges": [{"from": "wget", "to": "openssl@3", "kind": "runtime"}]
//	}
//
// A missing node kind means formula and a missing edge kind means runtime.
// ReadJSON fails on malformed JSON, duplicate node IDs, unknown kinds and
// edges that reference unknown nodes. Cycles are accepted.
func ReadJSON(r io.Reader) (*depgraph.Graph, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := depgraph.New()
	for _, n := range data.Nodes {
		kind, ok := nodeKinds[n.Kind]
		if !ok {
			return nil, fmt.Errorf("node %s: %w %q", n.ID, ErrUnknownKind, n.Kind)
		}
		if g.Has(n.ID) {
			return nil, fmt.Errorf("node %s: %w", n.ID, ErrDuplicateNode)
		}
		if err := g.AddNode(depgraph.Node{ID: n.ID, Kind: kind, Meta: n.Meta}); err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	for _, e := range data.Edges {
		kind, ok := edgeKinds[e.Kind]
		if !ok {
			return nil, fmt.Errorf("edge %s->%s: %w %q", e.From, e.To, ErrUnknownKind, e.Kind)
		}
		if err := g.AddEdge(depgraph.Edge{From: e.From, To: e.To, Kind: kind}); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}

	return g, nil
}

// ImportJSON reads a JSON graph file at path.
func ImportJSON(path string) (*depgraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
