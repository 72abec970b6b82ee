package inventory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Snapshot is one inventory of installed formulae and casks.
//
// The JSON form is the shape printed by `brew info --json=v2 --installed`
// ({"formulae": [...], "casks": [...]}) plus optional id and fetched_at
// fields, so a raw brew dump can be read directly.
type Snapshot struct {
	ID        string
	FetchedAt time.Time
	Formulae  []Package
	Casks     []Package
}

type snapshotJSON struct {
	ID        string           `json:"id,omitempty"`
	FetchedAt *time.Time       `json:"fetched_at,omitempty"`
	Formulae  []map[string]any `json:"formulae"`
	Casks     []map[string]any `json:"casks"`
}

// MarshalJSON writes the raw records back out.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{
		ID:       s.ID,
		Formulae: make([]map[string]any, len(s.Formulae)),
		Casks:    make([]map[string]any, len(s.Casks)),
	}
	if !s.FetchedAt.IsZero() {
		t := s.FetchedAt
		out.FetchedAt = &t
	}
	for i, p := range s.Formulae {
		out.Formulae[i] = p.Record()
	}
	for i, p := range s.Casks {
		out.Casks[i] = p.Record()
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses a snapshot or a raw brew dump.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var in snapshotJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	s.ID = in.ID
	s.FetchedAt = time.Time{}
	if in.FetchedAt != nil {
		s.FetchedAt = *in.FetchedAt
	}
	s.Formulae = make([]Package, 0, len(in.Formulae))
	for _, rec := range in.Formulae {
		s.Formulae = append(s.Formulae, ParseFormula(rec))
	}
	s.Casks = make([]Package, 0, len(in.Casks))
	for _, rec := range in.Casks {
		s.Casks = append(s.Casks, ParseCask(rec))
	}
	return nil
}

// ReadSnapshot decodes a snapshot from r.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode inventory: %w", err)
	}
	return &s, nil
}

// WriteSnapshot encodes s as indented JSON.
func WriteSnapshot(s *Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}
	return nil
}

// ExportSnapshot writes s to a file at path.
func ExportSnapshot(s *Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteSnapshot(s, f)
}

// Empty reports whether the snapshot holds no packages at all.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Formulae) == 0 && len(s.Casks) == 0
}

// InstalledSet is the set of installed identities, split by kind.
type InstalledSet struct {
	Formulae map[string]bool
	Casks    map[string]bool
}

// HasFormula reports whether name is an installed formula.
func (s InstalledSet) HasFormula(name string) bool { return s.Formulae[name] }

// HasCask reports whether token is an installed cask.
func (s InstalledSet) HasCask(token string) bool { return s.Casks[token] }

// Has reports whether id is installed as either kind.
func (s InstalledSet) Has(id string) bool { return s.Formulae[id] || s.Casks[id] }

// InstalledSet computes the installed formula and cask identities.
func (s *Snapshot) InstalledSet() InstalledSet {
	set := InstalledSet{
		Formulae: make(map[string]bool, len(s.Formulae)),
		Casks:    make(map[string]bool, len(s.Casks)),
	}
	for _, f := range s.Formulae {
		set.Formulae[f.Name] = true
	}
	for _, c := range s.Casks {
		set.Casks[c.Name] = true
	}
	return set
}

// FormulaNames returns formula names in input order.
func (s *Snapshot) FormulaNames() []string {
	names := make([]string, len(s.Formulae))
	for i, f := range s.Formulae {
		names[i] = f.Name
	}
	return names
}

// CaskTokens returns cask tokens in input order.
func (s *Snapshot) CaskTokens() []string {
	tokens := make([]string, len(s.Casks))
	for i, c := range s.Casks {
		tokens[i] = c.Name
	}
	return tokens
}

// Names returns every installed identity once, formulae first.
func (s *Snapshot) Names() []string {
	seen := make(map[string]bool, len(s.Formulae)+len(s.Casks))
	var names []string
	for _, id := range append(s.FormulaNames(), s.CaskTokens()...) {
		if !seen[id] {
			seen[id] = true
			names = append(names, id)
		}
	}
	return names
}

// Formula looks up an installed formula by name.
func (s *Snapshot) Formula(name string) (Package, bool) {
	for _, f := range s.Formulae {
		if f.Name == name {
			return f, true
		}
	}
	return Package{}, false
}

// Cask looks up an installed cask by token.
func (s *Snapshot) Cask(token string) (Package, bool) {
	for _, c := range s.Casks {
		if c.Name == token {
			return c, true
		}
	}
	return Package{}, false
}
