package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/matzehuels/brewdeps/pkg/depgraph"
	"github.com/matzehuels/brewdeps/pkg/inventory"
	"github.com/matzehuels/brewdeps/pkg/report"
)

// =============================================================================
// Package Reports
// =============================================================================

// printPackageReport prints the formula or cask report.
func printPackageReport(rep *report.Package) {
	if rep.Kind == inventory.KindCask {
		printCaskReport(rep)
		return
	}
	printFormulaReport(rep)
}

func printFormulaReport(rep *report.Package) {
	printHeading("Formula: %s", StyleFormula.Render(rep.Name))
	if rep.Description != "" {
		printDetail("%s", rep.Description)
	}
	if rep.InstalledVersion != "" {
		printField("Version", versionLine(rep))
	}

	switch rep.Reason() {
	case "dependency":
		printField("Installed because of", strings.Join(rep.Dependents, ", "))
	case "installed_on_request":
		printField("Installed because of", "installed on request")
	default:
		printField("Installed because of", "top-level package (nothing depends on it)")
	}
	printField("Direct dependencies", joinOrNone(withKinds(rep)))
	printField("All dependencies", countedList(rep.Transitive))
}

// withKinds marks direct dependencies that are not plain runtime ones,
// e.g. "pkgconf (build)".
func withKinds(rep *report.Package) []string {
	out := make([]string, 0, len(rep.Dependencies))
	for _, dep := range rep.Dependencies {
		var notes []string
		for _, k := range rep.DependencyKinds[dep] {
			if k != depgraph.EdgeRuntime {
				notes = append(notes, string(k))
			}
		}
		if len(notes) > 0 {
			dep += " " + StyleDim.Render("("+strings.Join(notes, ", ")+")")
		}
		out = append(out, dep)
	}
	return out
}

func printCaskReport(rep *report.Package) {
	printHeading("Cask: %s", StyleCask.Render(rep.Name))
	if rep.DisplayName != "" && rep.DisplayName != rep.Name {
		printField("Name", rep.DisplayName)
	}
	if rep.Description != "" {
		printField("Description", rep.Description)
	}
	printField("Version", versionLine(rep))
	if len(rep.Apps) > 0 {
		printField("Apps", strings.Join(rep.Apps, ", "))
	}
	printField("Auto-updates", yesNo(rep.AutoUpdates))
	if rep.Homepage != "" {
		printField("Homepage", StyleLink.Render(rep.Homepage))
	}
	if rep.InstalledAt != nil {
		printField("Installed", rep.InstalledAt.Format("2006-01-02 15:04")+" "+StyleDim.Render("("+formatRelativeTime(*rep.InstalledAt)+")"))
	}
	printField("Depends on", joinOrNone(rep.Dependencies))
	printField("Required by", joinOrNone(rep.Dependents))
	if len(rep.Transitive) > len(rep.Dependencies) {
		printField("All dependencies", countedList(rep.Transitive))
	}
}

// versionLine shows the installed version, and the latest one when the
// package is outdated.
func versionLine(rep *report.Package) string {
	v := rep.InstalledVersion
	if v == "" {
		v = StyleDim.Render("unknown")
	}
	if rep.Outdated && rep.LatestVersion != "" {
		return v + " " + StyleError.Render("(outdated, latest "+rep.LatestVersion+")")
	}
	return v
}

func countedList(names []string) string {
	if len(names) == 0 {
		return joinOrNone(nil)
	}
	return fmt.Sprintf("%s %s", strings.Join(names, ", "), StyleDim.Render(fmt.Sprintf("(%d)", len(names))))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// =============================================================================
// Overview
// =============================================================================

func printOverview(ov *report.Overview) {
	printHeading("Top-level formulae %s", StyleDim.Render(fmt.Sprintf("(%d)", len(ov.TopLevelFormulae))))
	printNames(ov.TopLevelFormulae, StyleFormula)

	printHeading("Installed on request %s", StyleDim.Render(fmt.Sprintf("(%d)", len(ov.ExplicitlyInstalled))))
	printNames(ov.ExplicitlyInstalled, StyleFormula)

	printHeading("Leaf formulae %s", StyleDim.Render(fmt.Sprintf("(%d)", len(ov.LeafFormulae))))
	printNames(ov.LeafFormulae, StyleFormula)

	printHeading("Top-level casks %s", StyleDim.Render(fmt.Sprintf("(%d)", len(ov.TopLevelCasks))))
	printNames(ov.TopLevelCasks, StyleCask)

	if len(ov.CaskList) > 0 {
		printHeading("Casks")
		fmt.Fprintln(stdout, caskTable(ov.CaskList))
	}
	if ov.Cyclic {
		fmt.Fprintln(stdout)
		printWarning("The dependency graph contains a cycle")
	}
}

func printNames(names []string, style lipgloss.Style) {
	if len(names) == 0 {
		printDetail("None")
		return
	}
	for _, n := range names {
		fmt.Fprintln(stdout, "  "+style.Render(n))
	}
}

// caskTable lists each cask with its version and depends_on stanza.
func caskTable(casks []report.CaskLine) string {
	rows := make([][]string, 0, len(casks))
	for _, c := range casks {
		rows = append(rows, []string{c.Token, c.Version, formatDependsOn(c.DependsOn)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Cask", "Version", "Depends on").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case col == 0:
				return base.Foreground(colorMagenta)
			case col == 2:
				return base.Foreground(colorGray)
			}
			return base
		})
	return t.Render()
}

// formatDependsOn renders a raw depends_on stanza as "key: value; ...",
// with keys sorted.
func formatDependsOn(m map[string]any) string {
	if len(m) == 0 {
		return "None"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+formatValue(m[k]))
	}
	return strings.Join(parts, "; ")
}

func formatValue(v any) string {
	switch v := v.(type) {
	case []any:
		s := make([]string, len(v))
		for i, e := range v {
			s[i] = formatValue(e)
		}
		return strings.Join(s, ", ")
	case map[string]any:
		return "{" + formatDependsOn(v) + "}"
	default:
		return fmt.Sprint(v)
	}
}

// =============================================================================
// Dependency Trees
// =============================================================================

// printDependencyTree prints t with lipgloss's tree renderer. Nodes cut
// off by the depth limit and nodes closing a cycle are marked.
func printDependencyTree(t *depgraph.Tree, depth int) {
	if t == nil {
		return
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, buildTree(t).String())

	var truncated, cycles int
	t.Walk(func(n *depgraph.Tree, _ int) bool {
		if n.Truncated {
			truncated++
		}
		if n.Cycle {
			cycles++
		}
		return true
	})
	if truncated > 0 {
		printDetail("%d branches cut at depth %d (use --depth -1 for the full tree)", truncated, depth)
	}
	if cycles > 0 {
		printDetail("%d cyclic references not expanded", cycles)
	}
}

func buildTree(t *depgraph.Tree) *tree.Tree {
	root := tree.Root(treeLabel(t)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(StyleDim)
	addChildren(root, t)
	return root
}

func addChildren(node *tree.Tree, t *depgraph.Tree) {
	for _, child := range t.Children {
		if len(child.Children) == 0 {
			node.Child(treeLabel(child))
			continue
		}
		sub := tree.Root(treeLabel(child))
		addChildren(sub, child)
		node.Child(sub)
	}
}

func treeLabel(t *depgraph.Tree) string {
	style := StyleFormula
	if t.Kind == depgraph.NodeKindCask {
		style = StyleCask
	}
	label := style.Render(t.ID)
	switch {
	case t.Cycle:
		label += " " + StyleWarning.Render("(cycle)")
	case t.Truncated:
		label += " " + StyleDim.Render("…")
	}
	return label
}
