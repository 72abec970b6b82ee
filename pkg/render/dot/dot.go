package dot

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/brewdeps/pkg/depgraph"
)

// Image formats accepted by Render and render.RenderExternal.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
	FormatJPG = "jpg"
)

// Options configures DOT generation.
type Options struct {
	// Detailed adds version and description lines to node labels.
	Detailed bool

	// Root is drawn with a bold outline, typically the queried package.
	Root string
}

// ToDOT converts a dependency graph to Graphviz DOT.
//
// Formulae are green boxes, casks magenta. Runtime edges are solid, build
// edges dashed and optional edges dotted; edges out of a cask are drawn in
// the cask color. Two packages linked by several kinds get one DOT edge per
// kind.
func ToDOT(g *depgraph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#555555\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := fmtAttrs(*n, fmtLabel(*n, opts.Detailed), n.ID == opts.Root)
		fmt.Fprintf(&buf, "  %s [%s];\n", quote(n.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if style := edgeStyle(e.Kind); style != "" {
			fmt.Fprintf(&buf, "  %s -> %s [%s];\n", quote(e.From), quote(e.To), style)
		} else {
			fmt.Fprintf(&buf, "  %s -> %s;\n", quote(e.From), quote(e.To))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n depgraph.Node, detailed bool) string {
	if !detailed {
		return n.ID
	}
	parts := []string{n.ID}
	if v := version(n.Meta); v != "" {
		parts = append(parts, v)
	}
	if d, _ := n.Meta["desc"].(string); d != "" {
		parts = append(parts, truncate(d, 40))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n depgraph.Node, label string, root bool) []string {
	attrs := []string{"label=" + quote(label)}
	switch n.Kind {
	case depgraph.NodeKindCask:
		attrs = append(attrs, "fillcolor=\"#f3d9f7\"", "color=\"#9b30b0\"")
	default:
		attrs = append(attrs, "fillcolor=\"#dff5df\"", "color=\"#2e8b3a\"")
	}
	if root {
		attrs = append(attrs, "penwidth=2.5")
	}
	return attrs
}

func edgeStyle(kind depgraph.EdgeKind) string {
	switch kind {
	case depgraph.EdgeBuild:
		return "style=dashed"
	case depgraph.EdgeOptional:
		return "style=dotted"
	case depgraph.EdgeCaskFormula, depgraph.EdgeCaskCask:
		return "color=\"#9b30b0\""
	}
	return ""
}

// dotEscaper escapes a DOT double-quoted string. Newlines become the \n
// line break escape; everything else is passed through as UTF-8.
var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r\n", `\n`, "\n", `\n`, "\r", `\n`)

// quote returns s as a DOT double-quoted string.
func quote(s string) string {
	return `"` + dotEscaper.Replace(strings.ToValidUTF8(s, "\uFFFD")) + `"`
}

// version returns the cask "version" or the formula "versions.stable".
func version(meta depgraph.Metadata) string {
	if v, ok := meta["version"].(string); ok {
		return v
	}
	if vs, ok := meta["versions"].(map[string]any); ok {
		s, _ := vs["stable"].(string)
		return s
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// FileName returns the default DOT file name for a package, or for the whole
// installation when pkg is empty.
func FileName(pkg string) string {
	if pkg == "" {
		return "all_brew_dependencies.dot"
	}
	return strings.ReplaceAll(pkg, "/", "_") + "_dependencies.dot"
}

// ImagePath swaps the extension of a DOT path for the image format.
func ImagePath(dotPath, format string) string {
	return strings.TrimSuffix(dotPath, filepath.Ext(dotPath)) + "." + format
}

// ValidFormat reports whether format is an image format Render supports.
func ValidFormat(format string) bool {
	switch format {
	case FormatPNG, FormatSVG, FormatJPG:
		return true
	}
	return false
}

// Render lays out DOT source with the embedded Graphviz and returns the
// encoded image.
func Render(ctx context.Context, dot, format string) ([]byte, error) {
	var gvFormat graphviz.Format
	switch format {
	case FormatPNG:
		gvFormat = graphviz.PNG
	case FormatSVG:
		gvFormat = graphviz.SVG
	case FormatJPG:
		gvFormat = graphviz.JPG
	default:
		return nil, fmt.Errorf("unsupported image format %q", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if format == FormatSVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so browsers scale the image from
// its viewBox instead of Graphviz's point-based width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
