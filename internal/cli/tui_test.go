package cli

import (
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/brewdeps/pkg/depgraph"
	"github.com/matzehuels/brewdeps/pkg/inventory"
)

func fixtureGraph(t *testing.T) *depgraph.Graph {
	t.Helper()
	f, err := os.Open(fixture)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	snap, err := inventory.ReadSnapshot(f)
	if err != nil {
		t.Fatal(err)
	}
	return depgraph.Build(snap)
}

func press(m PackageListModel, key tea.KeyMsg) PackageListModel {
	next, _ := m.Update(key)
	return next.(PackageListModel)
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
)

func TestPackageListModelFilter(t *testing.T) {
	m := NewPackageListModel(fixtureGraph(t))
	if got := len(m.Visible()); got != 9 {
		t.Fatalf("all: %d entries, want 9", got)
	}

	m = press(m, keyTab)
	if got := len(m.Visible()); got != 6 {
		t.Errorf("formulae: %d entries, want 6", got)
	}
	m = press(m, keyTab)
	if got := len(m.Visible()); got != 3 {
		t.Errorf("casks: %d entries, want 3", got)
	}
	for _, e := range m.Visible() {
		if e.Kind != depgraph.NodeKindCask {
			t.Errorf("%s in cask filter", e.Name)
		}
	}
	m = press(m, keyTab)
	if m.Filter != filterAll {
		t.Errorf("filter did not wrap around: %v", m.Filter)
	}
}

func TestPackageListModelSelect(t *testing.T) {
	m := NewPackageListModel(fixtureGraph(t))

	m = press(m, keyUp)
	if m.Cursor != 0 {
		t.Errorf("cursor moved above the first row: %d", m.Cursor)
	}
	m = press(m, keyDown)
	m = press(m, keyDown)

	next, cmd := m.Update(keyEnter)
	m = next.(PackageListModel)
	if m.Selected == nil {
		t.Fatal("nothing selected")
	}
	if m.Selected.Name != m.Visible()[2].Name {
		t.Errorf("selected %s, want %s", m.Selected.Name, m.Visible()[2].Name)
	}
	if cmd == nil {
		t.Error("enter should quit the program")
	}
}

func TestPackageListModelEntries(t *testing.T) {
	m := NewPackageListModel(fixtureGraph(t))
	byName := map[string]PackageEntry{}
	for _, e := range m.Visible() {
		byName[e.Name] = e
	}

	wget := byName["wget"]
	if wget.Dependencies != 3 || wget.Dependents != 1 {
		t.Errorf("wget = %+v", wget)
	}
	if byName["keka"].Version != "1.4.2" {
		t.Errorf("keka version = %q", byName["keka"].Version)
	}
}

func TestPackageListModelScrolls(t *testing.T) {
	m := NewPackageListModel(fixtureGraph(t))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	m = next.(PackageListModel)
	if m.Height != 5 {
		t.Fatalf("Height = %d, want 5", m.Height)
	}
	for range 7 {
		m = press(m, keyDown)
	}
	if m.Cursor != 7 || m.Offset != 3 {
		t.Errorf("cursor/offset = %d/%d, want 7/3", m.Cursor, m.Offset)
	}
	if view := m.View(); !strings.Contains(view, "[8/9]") {
		t.Errorf("view footer missing position:\n%s", view)
	}
}

func TestPackageListModelView(t *testing.T) {
	view := NewPackageListModel(fixtureGraph(t)).View()
	for _, want := range []string{"Installed Packages", "Formulae", "Casks", "wget", "Used by"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
