package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/matzehuels/brewdeps/pkg/render/dot"
)

// Renderer names accepted by Image.
const (
	RendererBuiltin = "builtin" // embedded Graphviz via go-graphviz
	RendererDot     = "dot"     // external `dot` executable
)

// DotBinary is the Graphviz executable used by RenderExternal.
var DotBinary = "dot"

// Image renders DOT source to an image with the named renderer. An empty
// renderer means RendererBuiltin.
func Image(ctx context.Context, renderer, src, format string) ([]byte, error) {
	if !dot.ValidFormat(format) {
		return nil, fmt.Errorf("unsupported image format %q (want png, svg or jpg)", format)
	}
	switch renderer {
	case "", RendererBuiltin:
		return dot.Render(ctx, src, format)
	case RendererDot:
		return RenderExternal(ctx, src, format)
	}
	return nil, fmt.Errorf("unknown renderer %q (want %s or %s)", renderer, RendererBuiltin, RendererDot)
}

// RenderExternal pipes DOT source through `dot -T<format>`.
// Requires Graphviz: brew install graphviz (macOS), apt install graphviz (Linux).
func RenderExternal(ctx context.Context, src, format string) ([]byte, error) {
	if _, err := exec.LookPath(DotBinary); err != nil {
		return nil, fmt.Errorf("'%s' command not found. Install Graphviz with:\n  macOS:  brew install graphviz\n  Linux:  apt install graphviz", DotBinary)
	}

	cmd := exec.CommandContext(ctx, DotBinary, "-T"+format)
	cmd.Stdin = strings.NewReader(src)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %v: %s", DotBinary, err, strings.TrimSpace(errBuf.String()))
	}
	return out.Bytes(), nil
}
