package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/brewdeps/pkg/config"
	"github.com/matzehuels/brewdeps/pkg/depgraph"
	brewerrors "github.com/matzehuels/brewdeps/pkg/errors"
	graphio "github.com/matzehuels/brewdeps/pkg/io"
	"github.com/matzehuels/brewdeps/pkg/render"
	"github.com/matzehuels/brewdeps/pkg/render/dot"
	"github.com/matzehuels/brewdeps/pkg/report"
)

// Output formats of the analyze command.
const (
	formatSummary = "summary"
	formatTree    = "tree"
	formatDot     = "dot"
	formatJSON    = "json"
)

var outputFormats = []string{formatSummary, formatTree, formatDot, formatJSON}

// analyzeOptions holds the flags of the root command.
type analyzeOptions struct {
	sourceOptions

	format      string
	depth       int
	output      string
	imageFormat string
	png         bool
	svg         bool
	jpg         bool
	cask        bool
	renderer    string
	detailed    bool
}

// analyzeCommand creates the root command: an overview of the installation,
// or a report on one package.
func (c *CLI) analyzeCommand() *cobra.Command {
	opts := &analyzeOptions{format: formatSummary}

	cmd := &cobra.Command{
		Use:   appName + " [package]",
		Short: "Analyze dependencies between installed Homebrew packages",
		Long: `Analyze dependencies between installed Homebrew formulae and casks.

Without an argument, brewdeps summarizes the installation: top-level formulae,
formulae installed on request, top-level casks and every cask's dependencies.

With a package name it explains why the package is installed and what it pulls
in. A name is treated as a cask when it matches an installed cask token, or
when --cask is given.

Formats:
  summary   styled report (default)
  tree      indented dependency tree, limited by --depth
  dot       Graphviz DOT file, rendered to an image unless --image-format none
  json      machine-readable report, or the whole graph without a package`,
		Example: `  # Overview of everything installed
  brewdeps

  # Why is openssl@3 installed, and what does it need?
  brewdeps openssl@3

  # Dependency tree of a cask, two levels deep
  brewdeps --cask mactex-no-gui --format tree --depth 2

  # Export wget's dependency graph as SVG
  brewdeps wget --svg -o wget.dot`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completePackages,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.resolve(cmd, c.Config); err != nil {
				return err
			}
			var name string
			if len(args) == 1 {
				name = args[0]
				if err := brewerrors.ValidatePackageName(name); err != nil {
					return err
				}
			}
			return c.runAnalyze(cmd.Context(), name, opts)
		},
	}

	opts.sourceOptions.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: summary, tree, dot, json")
	cmd.Flags().IntVarP(&opts.depth, "depth", "d", 0, "maximum tree depth, -1 for unlimited (default from config, 3)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (dot and json formats)")
	cmd.Flags().StringVar(&opts.imageFormat, "image-format", "", "image format for dot output: png, svg, jpg, none")
	cmd.Flags().BoolVar(&opts.png, "png", false, "shorthand for --format dot --image-format png")
	cmd.Flags().BoolVar(&opts.svg, "svg", false, "shorthand for --format dot --image-format svg")
	cmd.Flags().BoolVar(&opts.jpg, "jpg", false, "shorthand for --format dot --image-format jpg")
	cmd.Flags().BoolVar(&opts.cask, "cask", false, "treat the package as a cask")
	cmd.Flags().StringVar(&opts.renderer, "renderer", "", "image renderer: builtin, dot (default from config)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include versions and descriptions in DOT labels")
	cmd.MarkFlagsMutuallyExclusive("png", "svg", "jpg")

	return cmd
}

// resolve fills unset flags from the config and normalizes the format
// shorthands. An image format implies dot output.
func (o *analyzeOptions) resolve(cmd *cobra.Command, cfg config.Config) error {
	flags := cmd.Flags()
	if !flags.Changed("depth") {
		o.depth = cfg.Tree.Depth
	}
	if o.depth < depgraph.Unbounded {
		return brewerrors.New(brewerrors.ErrCodeInvalidInput, "--depth must be -1 (unlimited) or greater, got %d", o.depth)
	}
	if o.renderer == "" {
		o.renderer = cfg.Export.Renderer
	}

	switch {
	case o.png:
		o.imageFormat = dot.FormatPNG
	case o.svg:
		o.imageFormat = dot.FormatSVG
	case o.jpg:
		o.imageFormat = dot.FormatJPG
	}

	if !slices.Contains(outputFormats, o.format) {
		return brewerrors.New(brewerrors.ErrCodeInvalidInput, "unknown format %q (want summary, tree, dot or json)", o.format)
	}
	if o.imageFormat != "" {
		if flags.Changed("format") && o.format != formatDot {
			return brewerrors.New(brewerrors.ErrCodeInvalidInput, "an image format requires --format dot, got %s", o.format)
		}
		o.format = formatDot
	}
	if o.format != formatDot {
		return nil
	}

	if o.imageFormat == "" {
		o.imageFormat = cfg.Export.ImageFormat
	}
	if o.imageFormat == "" {
		o.imageFormat = dot.FormatPNG
	}
	if o.imageFormat == config.ImageNone {
		return nil
	}
	return brewerrors.ValidateImageFormat(o.imageFormat)
}

// runAnalyze loads the inventory and dispatches on format.
func (c *CLI) runAnalyze(ctx context.Context, name string, opts *analyzeOptions) error {
	l, err := c.load(ctx, opts.sourceOptions)
	if err != nil {
		return err
	}
	// Machine-readable output to stdout stays free of status lines.
	if opts.format != formatJSON || opts.output != "" {
		printLoaded(l)
	}

	if name == "" {
		return c.runOverview(ctx, l, opts)
	}

	kind := report.Resolve(l.snap, name, opts.cask)
	rep, ok := report.ForPackage(l.snap, l.graph, name, kind)
	if !ok {
		return brewerrors.New(brewerrors.ErrCodePackageNotFound, "%s %q is not installed", kind, name)
	}

	switch opts.format {
	case formatTree:
		printDependencyTree(depgraph.DependencyTree(l.graph, name, opts.depth), opts.depth)
		return nil
	case formatDot:
		return c.exportDOT(ctx, depgraph.DependencyClosure(l.graph, name), name, opts)
	case formatJSON:
		return writeJSONOutput(rep, opts.output)
	}

	printPackageReport(rep)
	fmt.Fprintln(stdout)
	printNextStep("Export its graph", fmt.Sprintf("%s %s --format dot", appName, name))
	return nil
}

func (c *CLI) runOverview(ctx context.Context, l *loaded, opts *analyzeOptions) error {
	switch opts.format {
	case formatTree:
		for _, id := range depgraph.TopLevelPackages(l.graph, l.snap.Names()) {
			printDependencyTree(depgraph.DependencyTree(l.graph, id, opts.depth), opts.depth)
		}
		return nil
	case formatDot:
		return c.exportDOT(ctx, l.graph, "", opts)
	case formatJSON:
		if opts.output != "" {
			if err := graphio.ExportJSON(l.graph, opts.output, graphio.WriteOptions{Meta: true}); err != nil {
				return brewerrors.Wrap(brewerrors.ErrCodeExport, err, "write %s", opts.output)
			}
			printSuccess("Graph written")
			printFile(opts.output)
			return nil
		}
		return graphio.WriteJSON(l.graph, stdout, graphio.WriteOptions{Meta: true})
	}

	printOverview(report.Summarize(l.snap, l.graph))
	fmt.Fprintln(stdout)
	printNextStep("Explain a package", appName+" <package>")
	return nil
}

// exportDOT writes g as DOT and, unless disabled, renders it next to the
// DOT file. A render failure keeps the DOT file and reports the error.
func (c *CLI) exportDOT(ctx context.Context, g *depgraph.Graph, root string, opts *analyzeOptions) error {
	path := opts.output
	if path == "" {
		path = dot.FileName(root)
	}

	src := dot.ToDOT(g, dot.Options{Detailed: opts.detailed, Root: root})
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		return brewerrors.Wrap(brewerrors.ErrCodeExport, err, "write %s", path)
	}
	printSuccess("DOT file written")
	printFile(path)

	if opts.imageFormat == config.ImageNone {
		printNextStep("Render it with Graphviz", fmt.Sprintf("dot -Tpng %s -o %s", path, dot.ImagePath(path, dot.FormatPNG)))
		return nil
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.imageFormat))
	spinner.Start()
	img, err := render.Image(ctx, opts.renderer, src, opts.imageFormat)
	spinner.Stop()
	if err != nil {
		return brewerrors.Wrap(brewerrors.ErrCodeRender, err, "render %s", opts.imageFormat)
	}
	prog.done("Rendered " + opts.imageFormat)

	imgPath := dot.ImagePath(path, opts.imageFormat)
	if err := os.WriteFile(imgPath, img, 0o644); err != nil {
		return brewerrors.Wrap(brewerrors.ErrCodeExport, err, "write %s", imgPath)
	}
	printSuccess("Image written")
	printFile(imgPath)
	return nil
}

// writeJSONOutput encodes v as indented JSON to path, or to stdout when path
// is empty.
func writeJSONOutput(v any, path string) error {
	var w io.Writer = stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return brewerrors.Wrap(brewerrors.ErrCodeExport, err, "create %s", path)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return brewerrors.Wrap(brewerrors.ErrCodeExport, err, "encode json")
	}
	if path != "" {
		printSuccess("Report written")
		printFile(path)
	}
	return nil
}
