package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/brewdeps/pkg/depgraph"
	"github.com/matzehuels/brewdeps/pkg/report"
)

func TestFormatDependsOn(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
		want string
	}{
		{"empty", nil, "None"},
		{"lists", map[string]any{"formula": []any{"wget", "ghostscript"}, "cask": []any{"tex-live-utility"}},
			"cask: tex-live-utility; formula: wget, ghostscript"},
		{"nested", map[string]any{"macos": map[string]any{">=": []any{"10.13"}}}, "macos: {>=: 10.13}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatDependsOn(tt.in); got != tt.want {
				t.Errorf("formatDependsOn() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintDependencyTreeMarksCycles(t *testing.T) {
	g := depgraph.New()
	for _, id := range []string{"a", "b"} {
		_ = g.AddNode(depgraph.Node{ID: id, Kind: depgraph.NodeKindFormula})
	}
	_ = g.AddEdge(depgraph.Edge{From: "a", To: "b", Kind: depgraph.EdgeRuntime})
	_ = g.AddEdge(depgraph.Edge{From: "b", To: "a", Kind: depgraph.EdgeRuntime})

	out := captureStdout(t)
	printDependencyTree(depgraph.DependencyTree(g, "a", depgraph.Unbounded), depgraph.Unbounded)

	if !strings.Contains(out.String(), "a (cycle)") {
		t.Errorf("tree output missing cycle marker:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "1 cyclic references not expanded") {
		t.Errorf("tree output missing cycle note:\n%s", out.String())
	}
}

func TestPrintDependencyTreeNil(t *testing.T) {
	out := captureStdout(t)
	printDependencyTree(nil, 3)
	if out.Len() != 0 {
		t.Errorf("printed %q for a nil tree", out.String())
	}
}

func TestPrintFormulaReportTopLevel(t *testing.T) {
	out := captureStdout(t)
	printPackageReport(&report.Package{Name: "jq", Kind: "formula", TopLevel: true})
	if !strings.Contains(out.String(), "top-level package") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	printPackageReport(&report.Package{Name: "git", Kind: "formula", InstalledOnRequest: true, TopLevel: true})
	if !strings.Contains(out.String(), "Installed because of: installed on request") {
		t.Errorf("output = %q", out.String())
	}
}
