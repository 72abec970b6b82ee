package io

import (
	"bytes"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/brewdeps/pkg/depgraph"
)

func sampleGraph() *depgraph.Graph {
	g := depgraph.New()
	_ = g.AddNode(depgraph.Node{ID: "wget", Kind: depgraph.NodeKindFormula, Meta: depgraph.Metadata{"desc": "Internet file retriever"}})
	_ = g.AddNode(depgraph.Node{ID: "pkgconf", Kind: depgraph.NodeKindFormula})
	_ = g.AddNode(depgraph.Node{ID: "mactex-no-gui", Kind: depgraph.NodeKindCask})
	_ = g.AddEdge(depgraph.Edge{From: "wget", To: "pkgconf", Kind: depgraph.EdgeRuntime})
	_ = g.AddEdge(depgraph.Edge{From: "wget", To: "pkgconf", Kind: depgraph.EdgeBuild})
	_ = g.AddEdge(depgraph.Edge{From: "mactex-no-gui", To: "wget", Kind: depgraph.EdgeCaskFormula})
	return g
}

func TestRoundTrip(t *testing.T) {
	g := sampleGraph()

	var buf bytes.Buffer
	if err := WriteJSON(g, &buf, WriteOptions{Meta: true}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	if !slices.Equal(got.NodeIDs(), g.NodeIDs()) {
		t.Errorf("nodes = %v, want %v", got.NodeIDs(), g.NodeIDs())
	}
	if !slices.Equal(got.Edges(), g.Edges()) {
		t.Errorf("edges = %v, want %v", got.Edges(), g.Edges())
	}
	n, _ := got.Node("mactex-no-gui")
	if n.Kind != depgraph.NodeKindCask {
		t.Errorf("kind = %q, want cask", n.Kind)
	}
	w, _ := got.Node("wget")
	if w.Meta["desc"] != "Internet file retriever" {
		t.Errorf("meta = %v", w.Meta)
	}
}

func TestWriteJSONWithoutMeta(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(sampleGraph(), &buf, WriteOptions{}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if strings.Contains(buf.String(), "meta") {
		t.Errorf("output contains meta:\n%s", buf.String())
	}
}

func TestReadJSONDefaults(t *testing.T) {
	g, err := ReadJSON(strings.NewReader(`{"nodes":[{"id":"a"},{"id":"b"}],"edges":[{"from":"a","to":"b"}]}`))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	n, _ := g.Node("a")
	if n.Kind != depgraph.NodeKindFormula {
		t.Errorf("default node kind = %q", n.Kind)
	}
	if !slices.Contains(g.EdgesBetween("a", "b"), depgraph.Edge{From: "a", To: "b", Kind: depgraph.EdgeRuntime}) {
		t.Error("default edge kind should be runtime")
	}
}

func TestReadJSONCycle(t *testing.T) {
	g, err := ReadJSON(strings.NewReader(`{"nodes":[{"id":"a"},{"id":"b"}],"edges":[{"from":"a","to":"b"},{"from":"b","to":"a"}]}`))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if !g.HasCycle() {
		t.Error("cycle not preserved")
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"duplicate", `{"nodes":[{"id":"a"},{"id":"a"}],"edges":[]}`, ErrDuplicateNode},
		{"node kind", `{"nodes":[{"id":"a","kind":"tap"}],"edges":[]}`, ErrUnknownKind},
		{"edge kind", `{"nodes":[{"id":"a"},{"id":"b"}],"edges":[{"from":"a","to":"b","kind":"peer"}]}`, ErrUnknownKind},
		{"unknown target", `{"nodes":[{"id":"a"}],"edges":[{"from":"a","to":"b"}]}`, depgraph.ErrUnknownTargetNode},
		{"empty id", `{"nodes":[{"id":""}],"edges":[]}`, depgraph.ErrInvalidNodeID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadJSON() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := ReadJSON(strings.NewReader("{")); err == nil {
		t.Error("ReadJSON() accepted malformed JSON")
	}
}

func TestExportImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := ExportJSON(sampleGraph(), path, WriteOptions{}); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	g, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount = %d, want 3", g.EdgeCount())
	}

	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ImportJSON() of missing file should fail")
	}
}
