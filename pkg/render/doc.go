// Package render turns dependency graphs into images.
//
// # Overview
//
// The [dot] subpackage converts a [depgraph.Graph] into Graphviz DOT text.
// This package then lays the DOT out as an image, either in process with
// the embedded Graphviz of go-graphviz or by piping it through an installed
// `dot` executable:
//
//	src := dot.ToDOT(g, dot.Options{Root: "wget"})
//	png, err := render.Image(ctx, render.RendererBuiltin, src, "png")
//	svg, err := render.RenderExternal(ctx, src, "svg")
//
// The external renderer matches the output of a local Graphviz install
// exactly; the builtin one needs nothing on PATH.
//
// [dot]: github.com/matzehuels/brewdeps/pkg/render/dot
// [depgraph.Graph]: github.com/matzehuels/brewdeps/pkg/depgraph.Graph
package render
