// Package report assembles the answers brewdeps prints: why a package is
// installed, what it pulls in, and an overview of the whole installation.
//
// Reports are plain data. The CLI styles them for the terminal and the HTTP
// server encodes them as JSON.
package report

import (
	"slices"
	"time"

	"github.com/matzehuels/brewdeps/pkg/depgraph"
	"github.com/matzehuels/brewdeps/pkg/inventory"
)

// Package describes one installed formula or cask.
type Package struct {
	Name string         `json:"name"`
	Kind inventory.Kind `json:"kind"`

	DisplayName string `json:"display_name,omitempty"`
	Description string `json:"description,omitempty"`
	Homepage    string `json:"homepage,omitempty"`

	InstalledVersion string     `json:"installed_version,omitempty"`
	LatestVersion    string     `json:"latest_version,omitempty"`
	Outdated         bool       `json:"outdated"`
	AutoUpdates      bool       `json:"auto_updates,omitempty"`
	InstalledAt      *time.Time `json:"installed_at,omitempty"`
	Apps             []string   `json:"apps,omitempty"`

	// InstalledOnRequest is Homebrew's own flag; TopLevel means nothing
	// installed depends on the package. Both hint at a direct install.
	InstalledOnRequest bool `json:"installed_on_request"`
	TopLevel           bool `json:"top_level"`

	Dependents   []string `json:"dependents"`   // installed because of / required by
	Dependencies []string `json:"dependencies"` // direct
	Transitive   []string `json:"transitive"`   // everything reachable, sorted

	// DependencyKinds lists, per direct dependency, the kinds of edge that
	// lead to it. A build and a runtime dependency on the same formula
	// give two kinds.
	DependencyKinds map[string][]depgraph.EdgeKind `json:"dependency_kinds"`
}

// Reason summarizes why the package is installed.
func (p *Package) Reason() string {
	switch {
	case len(p.Dependents) > 0:
		return "dependency"
	case p.InstalledOnRequest:
		return "installed_on_request"
	default:
		return "top_level"
	}
}

// Resolve decides whether name refers to a cask: when asCask is set or name
// is an installed cask token. Otherwise it is treated as a formula.
func Resolve(snap *inventory.Snapshot, name string, asCask bool) inventory.Kind {
	if asCask {
		return inventory.KindCask
	}
	if _, ok := snap.Cask(name); ok {
		return inventory.KindCask
	}
	return inventory.KindFormula
}

// ForPackage builds the report for name, treated as the given kind. It
// returns false when name is not in the graph.
func ForPackage(snap *inventory.Snapshot, g *depgraph.Graph, name string, kind inventory.Kind) (*Package, bool) {
	if !g.Has(name) {
		return nil, false
	}

	rep := &Package{
		Name:         name,
		Kind:         kind,
		TopLevel:     g.InDegree(name) == 0,
		Dependents:   nonNil(depgraph.ReverseDependents(g, name)),
		Dependencies: nonNil(depgraph.DirectDependencies(g, name)),
		Transitive:   nonNil(depgraph.TransitiveDependencies(g, name)),
	}
	rep.DependencyKinds = make(map[string][]depgraph.EdgeKind, len(rep.Dependencies))
	for _, dep := range rep.Dependencies {
		for _, e := range g.EdgesBetween(name, dep) {
			rep.DependencyKinds[dep] = append(rep.DependencyKinds[dep], e.Kind)
		}
	}

	var pkg inventory.Package
	var found bool
	if kind == inventory.KindCask {
		pkg, found = snap.Cask(name)
	} else {
		pkg, found = snap.Formula(name)
	}
	if !found {
		return rep, true
	}

	rep.Description = pkg.Description()
	rep.Homepage = pkg.Homepage()
	rep.InstalledVersion = pkg.InstalledVersion()
	rep.LatestVersion = pkg.LatestVersion()
	rep.Outdated = pkg.Outdated()
	rep.InstalledOnRequest = pkg.InstalledOnRequest
	if kind == inventory.KindCask {
		rep.DisplayName = pkg.DisplayName()
		rep.AutoUpdates = pkg.AutoUpdates()
		rep.Apps = pkg.Apps()
		if t := pkg.InstalledTime(); !t.IsZero() {
			rep.InstalledAt = &t
		}
	}
	return rep, true
}

// CaskLine is one cask in the overview.
type CaskLine struct {
	Token     string         `json:"token"`
	Version   string         `json:"version,omitempty"`
	DependsOn map[string]any `json:"depends_on,omitempty"`
}

// Overview summarizes the installation.
type Overview struct {
	SnapshotID string    `json:"snapshot_id,omitempty"`
	FetchedAt  time.Time `json:"fetched_at"`

	Formulae int  `json:"formulae"`
	Casks    int  `json:"casks"`
	Nodes    int  `json:"nodes"`
	Edges    int  `json:"edges"`
	Cyclic   bool `json:"cyclic"`

	// The lists below are sorted. LeafFormulae depend on nothing installed.
	TopLevelFormulae    []string `json:"top_level_formulae"`
	ExplicitlyInstalled []string `json:"explicitly_installed"`
	LeafFormulae        []string `json:"leaf_formulae"`
	TopLevelCasks       []string `json:"top_level_casks"`

	CaskList []CaskLine `json:"cask_list"`
}

// Summarize builds the overview of a snapshot and its graph.
func Summarize(snap *inventory.Snapshot, g *depgraph.Graph) *Overview {
	ov := &Overview{
		SnapshotID:          snap.ID,
		FetchedAt:           snap.FetchedAt,
		Formulae:            len(snap.Formulae),
		Casks:               len(snap.Casks),
		Nodes:               g.NodeCount(),
		Edges:               g.EdgeCount(),
		Cyclic:              g.HasCycle(),
		TopLevelFormulae:    sorted(depgraph.TopLevelPackages(g, snap.FormulaNames())),
		ExplicitlyInstalled: sorted(inventory.ExplicitlyInstalled(snap.Formulae)),
		LeafFormulae:        sorted(depgraph.LeafPackages(g, snap.FormulaNames())),
		TopLevelCasks:       sorted(depgraph.TopLevelPackages(g, snap.CaskTokens())),
		CaskList:            make([]CaskLine, 0, len(snap.Casks)),
	}
	for _, c := range snap.Casks {
		ov.CaskList = append(ov.CaskList, CaskLine{
			Token:     c.Name,
			Version:   c.LatestVersion(),
			DependsOn: c.RawDependsOn(),
		})
	}
	return ov
}

func sorted(s []string) []string {
	s = nonNil(s)
	slices.Sort(s)
	return s
}

// nonNil keeps empty lists as [] rather than null in JSON.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
