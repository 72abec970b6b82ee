package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/brewdeps/pkg/config"
	brewerrors "github.com/matzehuels/brewdeps/pkg/errors"
	"github.com/matzehuels/brewdeps/pkg/report"
)

const fixture = "../../pkg/inventory/testdata/brew_info.json"

// runCLI executes the root command against an isolated config and cache
// home and returns what was printed to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	out := captureStdout(t)
	quietSpinner(t)

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestOverview(t *testing.T) {
	out, err := runCLI(t, "--input", fixture, "--no-cache")
	require.NoError(t, err)

	assert.Contains(t, out, "Fetched data for 6 formulae and 3 casks")
	assert.Contains(t, out, "9 nodes")
	assert.Contains(t, out, "Top-level formulae")
	assert.Contains(t, out, "Installed on request")
	assert.Contains(t, out, "Leaf formulae (3)")
	assert.Contains(t, out, "libunistring")
	assert.Contains(t, out, "Top-level casks")
	assert.Contains(t, out, "keka")
	assert.Contains(t, out, "mactex-no-gui")
	assert.Contains(t, out, "cask: kekaexternalhelper")
}

func TestFormulaReport(t *testing.T) {
	out, err := runCLI(t, "openssl@3", "--input", fixture, "--no-cache")
	require.NoError(t, err)

	assert.Contains(t, out, "Formula: openssl@3")
	assert.Contains(t, out, "Installed because of: wget")
	assert.Contains(t, out, "Direct dependencies: ca-certificates")
}

func TestFormulaReportDependencyKinds(t *testing.T) {
	out, err := runCLI(t, "wget", "--input", fixture, "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Direct dependencies: libidn2, openssl@3, pkgconf (build)")
}

func TestFormulaReportReverseDependencies(t *testing.T) {
	out, err := runCLI(t, "pkgconf", "--input", fixture, "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Installed because of: wget")

	out, err = runCLI(t, "libunistring", "--input", fixture, "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Installed because of: libidn2")
}

func TestCaskReport(t *testing.T) {
	out, err := runCLI(t, "keka", "--input", fixture, "--no-cache")
	require.NoError(t, err)

	assert.Contains(t, out, "Cask: keka")
	assert.Contains(t, out, "outdated, latest 1.4.3")
	assert.Contains(t, out, "Depends on: kekaexternalhelper")
	assert.Contains(t, out, "Required by: None")
}

func TestTreeFormat(t *testing.T) {
	out, err := runCLI(t, "wget", "--format", "tree", "--depth", "1", "--input", fixture, "--no-cache")
	require.NoError(t, err)

	assert.Contains(t, out, "wget")
	assert.Contains(t, out, "libidn2 …")
	assert.Contains(t, out, "pkgconf")
	assert.NotContains(t, out, "libunistring")
	assert.Contains(t, out, "branches cut at depth 1")
}

func TestTreeFormatUnbounded(t *testing.T) {
	out, err := runCLI(t, "mactex-no-gui", "-f", "tree", "-d", "-1", "--input", fixture, "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "libunistring")
	assert.Contains(t, out, "ca-certificates")
	assert.NotContains(t, out, "branches cut")
}

func TestJSONReport(t *testing.T) {
	out, err := runCLI(t, "wget", "--format", "json", "--input", fixture, "--no-cache")
	require.NoError(t, err)

	var rep report.Package
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "wget", rep.Name)
	assert.Equal(t, []string{"mactex-no-gui"}, rep.Dependents)
	assert.Equal(t, []string{"libidn2", "openssl@3", "pkgconf"}, rep.Dependencies)
	assert.Len(t, rep.Transitive, 5)
}

func TestJSONGraph(t *testing.T) {
	out, err := runCLI(t, "--format", "json", "--input", fixture, "--no-cache")
	require.NoError(t, err)

	var doc struct {
		Nodes []map[string]any `json:"nodes"`
		Edges []map[string]any `json:"edges"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc.Nodes, 9)
	assert.Len(t, doc.Edges, 7)
}

func TestDOTExportWithoutImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wget.dot")
	out, err := runCLI(t, "wget", "--format", "dot", "--image-format", "none", "-o", path, "--input", fixture, "--no-cache")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph G {")
	assert.Contains(t, string(data), `"wget" -> "pkgconf" [style=dashed]`)
	assert.NotContains(t, string(data), "mactex-no-gui")
	assert.Contains(t, out, "dot -Tpng")
	assert.NoFileExists(t, filepath.Join(filepath.Dir(path), "wget.png"))
}

func TestDOTExportRendersSVG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "all.dot")
	_, err := runCLI(t, "--svg", "-o", path, "--input", fixture, "--no-cache")
	require.NoError(t, err)

	assert.FileExists(t, path)
	svg, err := os.ReadFile(filepath.Join(dir, "all.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
}

func TestDOTExportDefaultName(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	t.Chdir(dir)

	_, err = runCLI(t, "wget", "-f", "dot", "--image-format", "none", "--input", filepath.Join(wd, fixture), "--no-cache")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "wget_dependencies.dot"))
}

func TestUnknownPackage(t *testing.T) {
	_, err := runCLI(t, "ghostscript", "--input", fixture, "--no-cache")
	require.Error(t, err)
	assert.True(t, brewerrors.Is(err, brewerrors.ErrCodePackageNotFound))
	assert.Contains(t, brewerrors.UserMessage(err), `"ghostscript" is not installed`)
}

func TestInvalidPackageName(t *testing.T) {
	_, err := runCLI(t, "../etc", "--input", fixture, "--no-cache")
	require.Error(t, err)
	assert.True(t, brewerrors.Is(err, brewerrors.ErrCodeInvalidPackage))
}

func TestMissingInput(t *testing.T) {
	_, err := runCLI(t, "--input", filepath.Join(t.TempDir(), "missing.json"), "--no-cache")
	require.Error(t, err)
	assert.True(t, brewerrors.Is(err, brewerrors.ErrCodeNoData))
}

// stubBrew points the brew path at a script that prints the fixture for
// every query, the way `brew info --json=v2` prints both sections.
func stubBrew(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub brew is a shell script")
	}
	abs, err := filepath.Abs(fixture)
	require.NoError(t, err)
	script := filepath.Join(t.TempDir(), "brew")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nexec cat '"+abs+"'\n"), 0o755))
	t.Setenv("BREWDEPS_BREW_PATH", script)
}

func TestCachedSecondRun(t *testing.T) {
	stubBrew(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	out := captureStdout(t)
	quietSpinner(t)

	for range 2 {
		root := New(io.Discard, LogInfo).RootCommand()
		root.SetArgs([]string{})
		require.NoError(t, root.ExecuteContext(context.Background()))
	}

	lines := strings.Split(out.String(), "\n")
	var stats []string
	for _, l := range lines {
		if strings.Contains(l, "nodes") {
			stats = append(stats, l)
		}
	}
	require.Len(t, stats, 2)
	assert.Contains(t, stats[0], "fresh")
	assert.Contains(t, stats[1], "cached")

	entries, err := os.ReadDir(filepath.Join(cacheHome, appName))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestInputFileNotCached(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	out := captureStdout(t)
	quietSpinner(t)

	input := filepath.Join(t.TempDir(), "dump.json")
	run := func(name string) string {
		t.Helper()
		require.NoError(t, os.WriteFile(input, []byte(`{"formulae":[{"name":"`+name+`"}]}`), 0o644))
		out.Reset()
		root := New(io.Discard, LogInfo).RootCommand()
		root.SetArgs([]string{"--input", input})
		require.NoError(t, root.ExecuteContext(context.Background()))
		return out.String()
	}

	assert.Contains(t, run("oldpkg"), "oldpkg")
	second := run("newpkg")
	assert.Contains(t, second, "newpkg")
	assert.NotContains(t, second, "oldpkg")
	assert.NotContains(t, second, "cached")

	_, err := os.Stat(filepath.Join(cacheHome, appName))
	assert.True(t, os.IsNotExist(err), "--input should not create a cache directory")
}

func TestCachePath(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	cacheDir := filepath.Join(t.TempDir(), "brew-cache")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[cache]\ndir = \""+cacheDir+"\"\n"), 0o644))

	out, err := runCLI(t, "--config", cfgPath, "cache", "path")
	require.NoError(t, err)
	assert.Equal(t, cacheDir+"\n", out)
}

func TestCacheClear(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	cacheDir := filepath.Join(t.TempDir(), "brew-cache")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[cache]\ndir = \""+cacheDir+"\"\n"), 0o644))

	stubBrew(t)
	_, err := runCLI(t, "--config", cfgPath)
	require.NoError(t, err)

	out, err := runCLI(t, "--config", cfgPath, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 1 cached entries")

	out, err = runCLI(t, "--config", cfgPath, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache is empty")
}

func TestCompletion(t *testing.T) {
	out, err := runCLI(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "brewdeps")
}

func TestCompletePackages(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var buf bytes.Buffer
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(&buf)
	root.SetErr(io.Discard)
	root.SetArgs([]string{cobra.ShellCompRequestCmd, "--input", fixture, "--no-cache", "ke"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "keka\n")
	assert.Contains(t, out, "kekaexternalhelper\n")
	assert.NotContains(t, out, "wget")
}

func TestResolveOptions(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name      string
		args      []string
		wantFmt   string
		wantImage string
		wantDepth int
		wantErr   bool
	}{
		{name: "defaults", wantFmt: formatSummary, wantDepth: 3},
		{name: "explicit depth", args: []string{"--depth", "-1"}, wantFmt: formatSummary, wantDepth: -1},
		{name: "depth too small", args: []string{"--depth", "-2"}, wantErr: true},
		{name: "dot defaults to png", args: []string{"--format", "dot"}, wantFmt: formatDot, wantImage: "png", wantDepth: 3},
		{name: "shorthand implies dot", args: []string{"--svg"}, wantFmt: formatDot, wantImage: "svg", wantDepth: 3},
		{name: "image format implies dot", args: []string{"--image-format", "jpg"}, wantFmt: formatDot, wantImage: "jpg", wantDepth: 3},
		{name: "no image", args: []string{"--format", "dot", "--image-format", "none"}, wantFmt: formatDot, wantImage: "none", wantDepth: 3},
		{name: "image with tree", args: []string{"--format", "tree", "--png"}, wantErr: true},
		{name: "bad image format", args: []string{"--image-format", "gif"}, wantErr: true},
		{name: "bad format", args: []string{"--format", "yaml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &analyzeOptions{format: formatSummary}
			cmd := &cobra.Command{}
			cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "")
			cmd.Flags().IntVarP(&opts.depth, "depth", "d", 0, "")
			cmd.Flags().StringVar(&opts.imageFormat, "image-format", "", "")
			cmd.Flags().BoolVar(&opts.png, "png", false, "")
			cmd.Flags().BoolVar(&opts.svg, "svg", false, "")
			require.NoError(t, cmd.Flags().Parse(tt.args))

			err := opts.resolve(cmd, cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFmt, opts.format)
			assert.Equal(t, tt.wantImage, opts.imageFormat)
			assert.Equal(t, tt.wantDepth, opts.depth)
			assert.Equal(t, config.RendererBuiltin, opts.renderer)
		})
	}
}
