// Package cli implements the brewdeps command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/brewdeps/pkg/buildinfo"
	"github.com/matzehuels/brewdeps/pkg/cache"
	"github.com/matzehuels/brewdeps/pkg/config"
	"github.com/matzehuels/brewdeps/pkg/depgraph"
	brewerrors "github.com/matzehuels/brewdeps/pkg/errors"
	"github.com/matzehuels/brewdeps/pkg/inventory"
	"github.com/matzehuels/brewdeps/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "brewdeps"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The root command itself analyzes the installation or a single package.
func (c *CLI) RootCommand() *cobra.Command {
	root := c.analyzeCommand()
	root.Version = buildinfo.Version
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/brewdeps/config.toml)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(c.configPath)
		if err != nil {
			return err
		}
		c.Config = cfg
		if cfg.Path != "" {
			c.Logger.Debug("loaded config", "path", cfg.Path)
		}
		c.installHooks()
		return nil
	}

	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// installHooks routes observability events to the debug log.
func (c *CLI) installHooks() {
	observability.SetAll(loggingHooks{logger: c.Logger})
}

// =============================================================================
// Inventory Loading
// =============================================================================

// sourceOptions selects where the inventory comes from.
type sourceOptions struct {
	input   string // saved inventory file instead of brew
	refresh bool   // ignore a cached snapshot
	noCache bool   // neither read nor write the cache
}

// useCache reports whether the inventory cache applies. A saved dump is
// read directly.
func (o sourceOptions) useCache() bool {
	return !o.noCache && o.input == ""
}

func (o *sourceOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.input, "input", "i", "", "read a saved `brew info --json=v2 --installed` dump instead of running brew")
	cmd.Flags().BoolVar(&o.refresh, "refresh-cache", false, "force refresh Homebrew data, ignoring cache")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the inventory cache")
}

// newCache builds the configured cache backend. Backend failures degrade to
// no caching with a warning; the inventory can always be fetched again.
func (c *CLI) newCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache || c.Config.Cache.Backend == config.BackendNone {
		return cache.NewNullCache()
	}

	if c.Config.Cache.Backend == config.BackendRedis {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr: c.Config.Cache.RedisAddr,
			DB:   c.Config.Cache.RedisDB,
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, continuing without cache", "err", err)
			return cache.NewNullCache()
		}
		return rc
	}

	dir, err := c.Config.CacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, continuing without cache", "err", err)
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("cannot create cache directory, continuing without cache", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

func (c *CLI) newSource(opts sourceOptions) inventory.Source {
	if opts.input != "" {
		return &inventory.FileSource{Path: opts.input}
	}
	return inventory.NewBrewSource(c.Config.Brew.Path, c.Logger)
}

// loaded is a snapshot together with its graph.
type loaded struct {
	snap   *inventory.Snapshot
	graph  *depgraph.Graph
	cached bool
}

// load fetches (or reads from cache) the inventory and builds its graph. An
// empty inventory is reported as ErrCodeNoData so the command stops early.
func (c *CLI) load(ctx context.Context, opts sourceOptions) (*loaded, error) {
	store := c.newCache(ctx, !opts.useCache())
	defer store.Close()

	loader := inventory.NewLoader(c.newSource(opts), store, c.Logger)

	spinner := newSpinnerWithContext(ctx, "Fetching Homebrew package data...")
	spinner.Start()
	res, err := loader.FetchOrLoad(ctx, c.Config.Cache.TTL.Duration, opts.refresh)
	spinner.Stop()
	if err != nil {
		if spinner.Cancelled() {
			return nil, ctx.Err()
		}
		return nil, brewerrors.Wrap(brewerrors.ErrCodeNoData, err, "failed to fetch any Homebrew package data")
	}
	if res.Snapshot.Empty() {
		return nil, brewerrors.New(brewerrors.ErrCodeNoData, "failed to fetch any Homebrew package data")
	}

	prog := newProgress(c.Logger)
	g := depgraph.BuildContext(ctx, res.Snapshot)
	prog.done(fmt.Sprintf("Built graph with %d nodes and %d edges", g.NodeCount(), g.EdgeCount()))

	return &loaded{snap: res.Snapshot, graph: g, cached: res.Cached}, nil
}

// printLoaded reports what was loaded, in the style of the fetch summary.
func printLoaded(l *loaded) {
	printSuccess("Fetched data for %d formulae and %d casks", len(l.snap.Formulae), len(l.snap.Casks))
	printStats(l.graph.NodeCount(), l.graph.EdgeCount(), l.cached, l.snap.FetchedAt)
}

// age formats how long ago t was, or "" for the zero time.
func age(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return formatRelativeTime(t)
}
