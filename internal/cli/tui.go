package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/brewdeps/pkg/depgraph"
	"github.com/matzehuels/brewdeps/pkg/inventory"
	"github.com/matzehuels/brewdeps/pkg/report"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	listTabStyle = lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
	listTabOn    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1).Underline(true)
)

// browseCommand creates the browse command: pick an installed package from
// a table and print its report.
func (c *CLI) browseCommand() *cobra.Command {
	var src sourceOptions

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Pick an installed package interactively",
		Long: `List installed formulae and casks in an interactive table.

Use the arrow keys (or j/k) to move, tab to switch between all packages,
formulae and casks, and enter to print the selected package's report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := c.load(cmd.Context(), src)
			if err != nil {
				return err
			}

			model := NewPackageListModel(l.graph)
			final, err := tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return fmt.Errorf("browse: %w", err)
			}

			sel := final.(PackageListModel).Selected
			if sel == nil {
				return nil
			}
			kind := inventory.KindFormula
			if sel.Kind == depgraph.NodeKindCask {
				kind = inventory.KindCask
			}
			rep, _ := report.ForPackage(l.snap, l.graph, sel.Name, kind)
			printPackageReport(rep)
			return nil
		},
	}

	src.register(cmd)
	return cmd
}

// =============================================================================
// PackageListModel - Interactive package selection
// =============================================================================

// PackageEntry is one row of the package list.
type PackageEntry struct {
	Name         string
	Kind         depgraph.NodeKind
	Version      string
	Dependents   int
	Dependencies int
}

// kindFilter cycles with tab: all, formulae, casks.
type kindFilter int

const (
	filterAll kindFilter = iota
	filterFormulae
	filterCasks
)

func (f kindFilter) String() string {
	switch f {
	case filterFormulae:
		return "Formulae"
	case filterCasks:
		return "Casks"
	}
	return "All"
}

func (f kindFilter) match(k depgraph.NodeKind) bool {
	switch f {
	case filterFormulae:
		return k != depgraph.NodeKindCask
	case filterCasks:
		return k == depgraph.NodeKindCask
	}
	return true
}

// PackageListModel is the bubbletea model for interactive package selection.
type PackageListModel struct {
	All      []PackageEntry
	Filter   kindFilter
	Cursor   int
	Offset   int
	Height   int
	Selected *PackageEntry

	visible []PackageEntry
}

// NewPackageListModel lists the nodes of g in insertion order: formulae
// first, then casks.
func NewPackageListModel(g *depgraph.Graph) PackageListModel {
	entries := make([]PackageEntry, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		entries = append(entries, PackageEntry{
			Name:         n.ID,
			Kind:         n.Kind,
			Version:      nodeVersion(n.Meta),
			Dependents:   g.InDegree(n.ID),
			Dependencies: g.OutDegree(n.ID),
		})
	}
	m := PackageListModel{All: entries, Height: 15}
	m.applyFilter()
	return m
}

// nodeVersion picks the installed version out of node metadata.
func nodeVersion(meta depgraph.Metadata) string {
	p := inventory.Package{Attrs: meta}
	if v := p.InstalledVersion(); v != "" {
		return v
	}
	return p.LatestVersion()
}

func (m *PackageListModel) applyFilter() {
	m.visible = nil
	for _, e := range m.All {
		if m.Filter.match(e.Kind) {
			m.visible = append(m.visible, e)
		}
	}
	m.Cursor, m.Offset = 0, 0
}

// Visible returns the entries shown under the current filter.
func (m PackageListModel) Visible() []PackageEntry { return m.visible }

func (m PackageListModel) Init() tea.Cmd {
	return nil
}

func (m PackageListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.Filter = (m.Filter + 1) % 3
			m.applyFilter()
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.visible) == 0 {
				return m, nil
			}
			sel := m.visible[m.Cursor]
			m.Selected = &sel
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m PackageListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Installed Packages"))
	b.WriteString("\n")
	for _, f := range []kindFilter{filterAll, filterFormulae, filterCasks} {
		if f == m.Filter {
			b.WriteString(listTabOn.Render(f.String()))
		} else {
			b.WriteString(listTabStyle.Render(f.String()))
		}
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab filter  ⏎ select  q quit"))
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		b.WriteString(listDimStyle.Render("  No packages"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.visible))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.visible[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor, e.Name, string(e.Kind), e.Version,
			fmt.Sprint(e.Dependencies), fmt.Sprint(e.Dependents),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Package", "Kind", "Version", "Deps", "Used by").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.visible) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col >= 2 {
				base = base.Foreground(colorGray)
			} else if m.visible[idx].Kind == depgraph.NodeKindCask {
				base = base.Foreground(colorMagenta)
			} else {
				base = base.Foreground(colorGreen)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.visible))))

	return b.String()
}
