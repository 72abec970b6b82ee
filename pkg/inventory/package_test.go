package inventory

import (
	"os"
	"slices"
	"testing"
	"time"
)

func loadFixture(t *testing.T) *Snapshot {
	t.Helper()
	f, err := os.Open("testdata/brew_info.json")
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()
	snap, err := ReadSnapshot(f)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	return snap
}

func TestParseFormula(t *testing.T) {
	p := ParseFormula(map[string]any{
		"name":                  "wget",
		"desc":                  "Internet file retriever",
		"dependencies":          []any{"openssl@3", "libidn2"},
		"build_dependencies":    []any{"pkgconf"},
		"optional_dependencies": []any{},
	})

	if p.Name != "wget" || p.Kind != KindFormula {
		t.Errorf("identity = %q/%q", p.Name, p.Kind)
	}
	if !slices.Equal(p.Dependencies, []string{"openssl@3", "libidn2"}) {
		t.Errorf("Dependencies = %v", p.Dependencies)
	}
	if !slices.Equal(p.BuildDependencies, []string{"pkgconf"}) {
		t.Errorf("BuildDependencies = %v", p.BuildDependencies)
	}
	if len(p.OptionalDependencies) != 0 {
		t.Errorf("OptionalDependencies = %v, want empty", p.OptionalDependencies)
	}
	if _, ok := p.Attrs["name"]; ok {
		t.Error("identity key must not be duplicated in Attrs")
	}
	if p.Description() != "Internet file retriever" {
		t.Errorf("Description() = %q", p.Description())
	}
}

func TestParseFormulaMissingFields(t *testing.T) {
	p := ParseFormula(map[string]any{"name": "jq", "dependencies": "not-a-list"})
	if len(p.Dependencies)+len(p.BuildDependencies)+len(p.OptionalDependencies) != 0 {
		t.Errorf("malformed and missing lists should be empty: %+v", p)
	}
	if p.InstalledOnRequest {
		t.Error("InstalledOnRequest should default to false")
	}
}

func TestInstalledOnRequest(t *testing.T) {
	tests := []struct {
		name string
		rec  map[string]any
		want bool
	}{
		{"top level", map[string]any{"name": "a", "installed_on_request": true}, true},
		{"installed entry", map[string]any{"name": "a", "installed": []any{map[string]any{"installed_on_request": true}}}, true},
		{"dependency", map[string]any{"name": "a", "installed": []any{map[string]any{"installed_on_request": false}}}, false},
		{"absent", map[string]any{"name": "a"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseFormula(tt.rec).InstalledOnRequest; got != tt.want {
				t.Errorf("InstalledOnRequest = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseCask(t *testing.T) {
	p := ParseCask(map[string]any{
		"token":      "mactex-no-gui",
		"depends_on": map[string]any{"formula": []any{"ghostscript"}, "cask": []any{"tex-live-utility"}},
	})
	if p.Name != "mactex-no-gui" || p.Kind != KindCask {
		t.Errorf("identity = %q/%q", p.Name, p.Kind)
	}
	if !slices.Equal(p.DependsOn.Formula, []string{"ghostscript"}) {
		t.Errorf("DependsOn.Formula = %v", p.DependsOn.Formula)
	}
	if !slices.Equal(p.DependsOn.Cask, []string{"tex-live-utility"}) {
		t.Errorf("DependsOn.Cask = %v", p.DependsOn.Cask)
	}
	if _, ok := p.Attrs["token"]; ok {
		t.Error("identity key must not be duplicated in Attrs")
	}

	empty := ParseCask(map[string]any{"token": "firefox"})
	if empty.DependsOn.Formula != nil || empty.DependsOn.Cask != nil {
		t.Errorf("missing depends_on should yield no dependencies: %+v", empty.DependsOn)
	}
	if empty.RawDependsOn() != nil {
		t.Error("RawDependsOn should be nil when absent")
	}
}

func TestCaskDetails(t *testing.T) {
	snap := loadFixture(t)
	keka, ok := snap.Cask("keka")
	if !ok {
		t.Fatal("keka not found")
	}

	if got := keka.DisplayName(); got != "Keka" {
		t.Errorf("DisplayName() = %q", got)
	}
	if keka.InstalledVersion() != "1.4.2" || keka.LatestVersion() != "1.4.3" {
		t.Errorf("versions = %q -> %q", keka.InstalledVersion(), keka.LatestVersion())
	}
	if !keka.Outdated() || !keka.AutoUpdates() {
		t.Error("keka should be outdated and auto-updating")
	}
	if !slices.Equal(keka.Apps(), []string{"Keka.app"}) {
		t.Errorf("Apps() = %v", keka.Apps())
	}
	if !keka.InstalledTime().Equal(time.Unix(1700000000, 0)) {
		t.Errorf("InstalledTime() = %v", keka.InstalledTime())
	}
	if keka.Homepage() != "https://www.keka.io/" {
		t.Errorf("Homepage() = %q", keka.Homepage())
	}
}

func TestFormulaVersions(t *testing.T) {
	snap := loadFixture(t)
	ssl, _ := snap.Formula("openssl@3")
	if ssl.InstalledVersion() != "3.3.0" {
		t.Errorf("InstalledVersion() = %q", ssl.InstalledVersion())
	}
	if ssl.LatestVersion() != "3.3.1" {
		t.Errorf("LatestVersion() = %q", ssl.LatestVersion())
	}
	if ssl.DisplayName() != "openssl@3" {
		t.Errorf("DisplayName() = %q", ssl.DisplayName())
	}
}

func TestExplicitlyInstalled(t *testing.T) {
	snap := loadFixture(t)
	got := ExplicitlyInstalled(snap.Formulae)
	if want := []string{"wget", "pkgconf"}; !slices.Equal(got, want) {
		t.Errorf("ExplicitlyInstalled() = %v, want %v", got, want)
	}
}
