package inventory

import (
	"time"
)

// Kind distinguishes formulae from casks.
type Kind string

const (
	// KindFormula is a command-line or library package.
	KindFormula Kind = "formula"
	// KindCask is an application bundle.
	KindCask Kind = "cask"
)

// Identity keys of the raw records.
const (
	formulaIDKey = "name"
	caskIDKey    = "token"
)

// DependsOn holds the structured depends_on stanza of a cask.
type DependsOn struct {
	Formula []string // required formulae
	Cask    []string // required casks
}

// Package is one installed formula or cask.
//
// The dependency lists and the install flag are extracted from the raw
// record; everything else (and the raw dependency fields themselves) stays in
// Attrs untouched. Attrs never contains the identity key, which lives in Name.
type Package struct {
	Name string
	Kind Kind

	Dependencies         []string
	BuildDependencies    []string
	OptionalDependencies []string
	DependsOn            DependsOn

	// InstalledOnRequest reports Homebrew's "installed_on_request" flag.
	InstalledOnRequest bool

	Attrs map[string]any
}

// ParseFormula converts a raw `brew info --json=v2` formula record.
// Missing or mistyped fields default to empty values.
func ParseFormula(rec map[string]any) Package {
	p := Package{
		Name:                 stringField(rec, formulaIDKey),
		Kind:                 KindFormula,
		Dependencies:         stringList(rec["dependencies"]),
		BuildDependencies:    stringList(rec["build_dependencies"]),
		OptionalDependencies: stringList(rec["optional_dependencies"]),
		Attrs:                attrs(rec, formulaIDKey),
	}
	p.InstalledOnRequest = installedOnRequest(rec)
	return p
}

// ParseCask converts a raw `brew info --json=v2 --casks` record.
func ParseCask(rec map[string]any) Package {
	p := Package{
		Name:  stringField(rec, caskIDKey),
		Kind:  KindCask,
		Attrs: attrs(rec, caskIDKey),
	}
	if deps, ok := rec["depends_on"].(map[string]any); ok {
		p.DependsOn.Formula = stringList(deps["formula"])
		p.DependsOn.Cask = stringList(deps["cask"])
	}
	return p
}

// Record returns the raw record: Attrs plus the identity key.
func (p Package) Record() map[string]any {
	rec := make(map[string]any, len(p.Attrs)+1)
	for k, v := range p.Attrs {
		rec[k] = v
	}
	if p.Kind == KindCask {
		rec[caskIDKey] = p.Name
	} else {
		rec[formulaIDKey] = p.Name
	}
	return rec
}

// String returns a string attribute, or "" when absent or not a string.
func (p Package) String(key string) string {
	return stringField(p.Attrs, key)
}

// DisplayName returns the human name of a cask ("Visual Studio Code"),
// falling back to the identity.
func (p Package) DisplayName() string {
	if names := stringList(p.Attrs["name"]); len(names) > 0 {
		return names[0]
	}
	if s := p.String("name"); s != "" {
		return s
	}
	return p.Name
}

// Description returns the "desc" attribute.
func (p Package) Description() string { return p.String("desc") }

// Homepage returns the "homepage" attribute.
func (p Package) Homepage() string { return p.String("homepage") }

// InstalledVersion returns the installed version. Casks carry it in
// "installed"; formulae in the first entry of the "installed" array.
func (p Package) InstalledVersion() string {
	if s := p.String("installed"); s != "" {
		return s
	}
	if list, ok := p.Attrs["installed"].([]any); ok && len(list) > 0 {
		if m, ok := list[0].(map[string]any); ok {
			return stringField(m, "version")
		}
	}
	return ""
}

// LatestVersion returns the newest version known to the tap.
func (p Package) LatestVersion() string {
	if s := p.String("version"); s != "" {
		return s
	}
	if v, ok := p.Attrs["versions"].(map[string]any); ok {
		return stringField(v, "stable")
	}
	return ""
}

// Outdated reports the "outdated" flag.
func (p Package) Outdated() bool {
	b, _ := p.Attrs["outdated"].(bool)
	return b
}

// AutoUpdates reports whether a cask updates itself.
func (p Package) AutoUpdates() bool {
	b, _ := p.Attrs["auto_updates"].(bool)
	return b
}

// InstalledTime returns the install timestamp, or the zero time.
func (p Package) InstalledTime() time.Time {
	switch v := p.Attrs["installed_time"].(type) {
	case float64:
		return time.Unix(int64(v), 0)
	case int64:
		return time.Unix(v, 0)
	case int:
		return time.Unix(int64(v), 0)
	}
	return time.Time{}
}

// Apps returns the app bundle names listed in the cask artifacts.
func (p Package) Apps() []string {
	artifacts, _ := p.Attrs["artifacts"].([]any)
	for _, a := range artifacts {
		m, ok := a.(map[string]any)
		if !ok {
			continue
		}
		if apps, ok := m["app"]; ok {
			return stringList(apps)
		}
	}
	return nil
}

// RawDependsOn returns the cask's depends_on stanza as stored, or nil.
func (p Package) RawDependsOn() map[string]any {
	m, _ := p.Attrs["depends_on"].(map[string]any)
	if len(m) == 0 {
		return nil
	}
	return m
}

// ExplicitlyInstalled returns the names of formulae flagged as installed on
// request, in input order. The flag is independent of graph shape and is not
// always reliable; callers combine it with top-level detection themselves.
func ExplicitlyInstalled(formulae []Package) []string {
	var names []string
	for _, f := range formulae {
		if f.InstalledOnRequest {
			names = append(names, f.Name)
		}
	}
	return names
}

func installedOnRequest(rec map[string]any) bool {
	if b, ok := rec["installed_on_request"].(bool); ok && b {
		return true
	}
	list, _ := rec["installed"].([]any)
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			if b, _ := m["installed_on_request"].(bool); b {
				return true
			}
		}
	}
	return false
}

func attrs(rec map[string]any, idKey string) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		if k != idKey {
			out[k] = v
		}
	}
	return out
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// stringList accepts []any of strings or []string; anything else is empty.
func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
