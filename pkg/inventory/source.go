package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/brewdeps/pkg/errors"
)

// Source produces an inventory snapshot.
type Source interface {
	// Name identifies the source in logs and cache keys.
	Name() string
	// Fetch returns the current inventory.
	Fetch(ctx context.Context) (*Snapshot, error)
}

// DefaultBrewPath is the executable looked up on PATH.
const DefaultBrewPath = "brew"

// Runner executes a command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// BrewSource reads the inventory from `brew info --json=v2 --installed`.
type BrewSource struct {
	Path   string      // brew executable (default: "brew")
	Logger *log.Logger // optional
	Run    Runner      // optional; defaults to exec
}

// NewBrewSource creates a source for the given brew executable.
func NewBrewSource(path string, logger *log.Logger) *BrewSource {
	if path == "" {
		path = DefaultBrewPath
	}
	return &BrewSource{Path: path, Logger: logger}
}

// Name implements Source.
func (b *BrewSource) Name() string { return "brew:" + b.path() }

// Fetch queries formulae and casks concurrently. A failing half is logged
// and left empty; only when both halves fail is an error returned.
func (b *BrewSource) Fetch(ctx context.Context) (*Snapshot, error) {
	logger := b.logger()
	snap := &Snapshot{ID: uuid.NewString(), FetchedAt: time.Now()}

	var (
		formulae, casks []map[string]any
		ferr, cerr      error
		g               errgroup.Group
	)
	// Neither query cancels the other, so both goroutines report nil.
	g.Go(func() error {
		formulae, ferr = b.info(ctx, "formulae", "info", "--json=v2", "--installed")
		return nil
	})
	g.Go(func() error {
		casks, cerr = b.info(ctx, "casks", "info", "--json=v2", "--installed", "--casks")
		return nil
	})
	_ = g.Wait()

	if ferr != nil {
		logger.Warn("could not fetch formulae", "err", ferr)
	}
	if cerr != nil {
		logger.Warn("could not fetch casks", "err", cerr)
	}
	if ferr != nil && cerr != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSource, stderrors.Join(ferr, cerr), "brew info failed")
	}

	for _, rec := range formulae {
		snap.Formulae = append(snap.Formulae, ParseFormula(rec))
	}
	for _, rec := range casks {
		snap.Casks = append(snap.Casks, ParseCask(rec))
	}
	logger.Debug("fetched inventory", "id", snap.ID, "formulae", len(snap.Formulae), "casks", len(snap.Casks))
	return snap, nil
}

// info runs one brew query and extracts the records under key.
func (b *BrewSource) info(ctx context.Context, key string, args ...string) ([]map[string]any, error) {
	out, err := b.runner()(ctx, b.path(), args...)
	if err != nil {
		return nil, err
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(out, &payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", strings.Join(args, " "), err)
	}
	raw, ok := payload[key]
	if !ok {
		return nil, nil
	}
	var recs []map[string]any
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return recs, nil
}

func (b *BrewSource) path() string {
	if b.Path == "" {
		return DefaultBrewPath
	}
	return b.Path
}

func (b *BrewSource) runner() Runner {
	if b.Run != nil {
		return b.Run
	}
	return execRunner
}

func (b *BrewSource) logger() *log.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return log.New(io.Discard)
}

// execRunner runs name with args, capturing stderr for the error message.
func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("%s not found in PATH: is Homebrew installed?", name)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s %s: %v: %s", name, strings.Join(args, " "), err, strings.TrimSpace(errBuf.String()))
	}
	return out.Bytes(), nil
}

// FileSource reads a snapshot previously saved with ExportSnapshot or a raw
// `brew info --json=v2 --installed` dump.
type FileSource struct {
	Path string
}

// Name implements Source.
func (f *FileSource) Name() string { return "file:" + f.Path }

// Fetch implements Source.
func (f *FileSource) Fetch(ctx context.Context) (*Snapshot, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSource, err, "open inventory file")
	}
	defer file.Close()

	snap, err := ReadSnapshot(file)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSource, err, "read %s", f.Path)
	}
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.FetchedAt.IsZero() {
		if info, err := file.Stat(); err == nil {
			snap.FetchedAt = info.ModTime()
		}
	}
	return snap, nil
}

var (
	_ Source = (*BrewSource)(nil)
	_ Source = (*FileSource)(nil)
)
