package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/brewdeps/pkg/depgraph"
)

type graph struct {
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID   string            `json:"id"`
	Kind string            `json:"kind,omitempty"`
	Meta depgraph.Metadata `json:"meta,omitempty"`
}

type edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind,omitempty"`
}

// WriteOptions controls JSON export.
type WriteOptions struct {
	// Meta includes each node's raw inventory attributes. They make up most
	// of the output size.
	Meta bool
}

// WriteJSON encodes a dependency graph as JSON and writes it to w.
// Nodes and edges keep graph insertion order, so equal graphs produce equal
// output. The result can be re-imported with [ReadJSON].
func WriteJSON(g *depgraph.Graph, w io.Writer, opts WriteOptions) error {
	nodes, edges := g.Nodes(), g.Edges()
	out := graph{
		Nodes: make([]node, len(nodes)),
		Edges: make([]edge, len(edges)),
	}

	for i, n := range nodes {
		nd := node{ID: n.ID, Kind: string(n.Kind)}
		if opts.Meta && len(n.Meta) > 0 {
			nd.Meta = n.Meta
		}
		out.Nodes[i] = nd
	}
	for i, e := range edges {
		out.Edges[i] = edge{From: e.From, To: e.To, Kind: string(e.Kind)}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a dependency graph to a JSON file at path.
func ExportJSON(g *depgraph.Graph, path string, opts WriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f, opts)
}
