// Package server exposes a read-only HTTP API over one dependency graph.
//
// The graph and snapshot are built once and never mutated, so handlers share
// them without locking.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/brewdeps/pkg/depgraph"
	brewerrors "github.com/matzehuels/brewdeps/pkg/errors"
	"github.com/matzehuels/brewdeps/pkg/inventory"
	graphio "github.com/matzehuels/brewdeps/pkg/io"
	"github.com/matzehuels/brewdeps/pkg/render"
	"github.com/matzehuels/brewdeps/pkg/render/dot"
	"github.com/matzehuels/brewdeps/pkg/report"
)

// DefaultTreeDepth is used when a tree request has no depth parameter.
const DefaultTreeDepth = 3

// DefaultMaxTreeNodes caps the size of a tree response. Deeper branches are
// marked truncated.
const DefaultMaxTreeNodes = 10000

// Options configures a Server.
type Options struct {
	Logger   *log.Logger
	Renderer string // image renderer, see render.Image
	Version  string

	// MaxTreeNodes caps tree responses; <= 0 uses DefaultMaxTreeNodes.
	MaxTreeNodes int

	// Metrics, when set, is exposed at /metrics.
	Metrics prometheus.Gatherer
}

// Server serves reports for a snapshot.
type Server struct {
	snap    *inventory.Snapshot
	graph   *depgraph.Graph
	opts    Options
	logger  *log.Logger
	started time.Time
}

// New creates a server for snap and its graph.
func New(snap *inventory.Snapshot, g *depgraph.Graph, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{snap: snap, graph: g, opts: opts, logger: logger, started: time.Now()}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.opts.Metrics, promhttp.HandlerOpts{}))
	}
	r.Get("/summary", s.handleSummary)
	r.Get("/graph.json", s.handleGraphJSON)
	r.Get("/graph.dot", s.handleGraphDOT)
	r.Route("/packages", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Route("/{name}", func(r chi.Router) {
			r.Use(validName)
			r.Get("/", s.handlePackage)
			r.Get("/tree", s.handleTree)
			r.Get("/dot", s.handlePackageDOT)
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, brewerrors.New(brewerrors.ErrCodeNotFound, "no route for %s", r.URL.Path))
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func validName(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := brewerrors.ValidatePackageName(chi.URLParam(r, "name")); err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version,omitempty"`
	Uptime    string `json:"uptime"`
	Snapshot  string `json:"snapshot_id,omitempty"`
	FetchedAt string `json:"fetched_at,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:   "ok",
		Version:  s.opts.Version,
		Uptime:   time.Since(s.started).Round(time.Second).String(),
		Snapshot: s.snap.ID,
	}
	if !s.snap.FetchedAt.IsZero() {
		resp.FetchedAt = s.snap.FetchedAt.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, report.Summarize(s.snap, s.graph))
}

type listEntry struct {
	Name         string            `json:"name"`
	Kind         depgraph.NodeKind `json:"kind"`
	Dependents   int               `json:"dependents"`
	Dependencies int               `json:"dependencies"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	kind := depgraph.NodeKind(r.URL.Query().Get("kind"))
	switch kind {
	case "", depgraph.NodeKindFormula, depgraph.NodeKindCask:
	default:
		writeError(w, brewerrors.New(brewerrors.ErrCodeInvalidInput, "kind must be formula or cask, got %q", kind))
		return
	}

	entries := []listEntry{}
	for _, n := range s.graph.Nodes() {
		if kind != "" && n.Kind != kind {
			continue
		}
		entries = append(entries, listEntry{
			Name:         n.ID,
			Kind:         n.Kind,
			Dependents:   s.graph.InDegree(n.ID),
			Dependencies: s.graph.OutDegree(n.ID),
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

// lookup resolves the {name} parameter, writing a 404 when it is absent.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (string, *depgraph.Node, bool) {
	name := chi.URLParam(r, "name")
	n, ok := s.graph.Node(name)
	if !ok {
		writeError(w, brewerrors.New(brewerrors.ErrCodePackageNotFound, "%s is not installed", name))
		return name, nil, false
	}
	return name, n, true
}

func (s *Server) handlePackage(w http.ResponseWriter, r *http.Request) {
	name, n, ok := s.lookup(w, r)
	if !ok {
		return
	}
	rep, _ := report.ForPackage(s.snap, s.graph, name, inventory.Kind(n.Kind))
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	name, _, ok := s.lookup(w, r)
	if !ok {
		return
	}
	depth := DefaultTreeDepth
	if v := r.URL.Query().Get("depth"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < depgraph.Unbounded {
			writeError(w, brewerrors.New(brewerrors.ErrCodeInvalidInput, "depth must be an integer >= -1, got %q", v))
			return
		}
		depth = d
	}
	limit := s.opts.MaxTreeNodes
	if limit <= 0 {
		limit = DefaultMaxTreeNodes
	}
	writeJSON(w, http.StatusOK, depgraph.DependencyTreeLimit(s.graph, name, depth, limit))
}

func (s *Server) handlePackageDOT(w http.ResponseWriter, r *http.Request) {
	name, _, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sub := depgraph.DependencyClosure(s.graph, name)
	s.writeGraph(w, r, dot.ToDOT(sub, dot.Options{Root: name}))
}

func (s *Server) handleGraphDOT(w http.ResponseWriter, r *http.Request) {
	s.writeGraph(w, r, dot.ToDOT(s.graph, dot.Options{}))
}

// writeGraph writes DOT source, or an image when ?format= names one.
func (s *Server) writeGraph(w http.ResponseWriter, r *http.Request, src string) {
	format := r.URL.Query().Get("format")
	if format == "" || format == "dot" {
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		_, _ = io.WriteString(w, src)
		return
	}
	if err := brewerrors.ValidateImageFormat(format); err != nil {
		writeError(w, err)
		return
	}
	img, err := render.Image(r.Context(), s.opts.Renderer, src, format)
	if err != nil {
		writeError(w, brewerrors.Wrap(brewerrors.ErrCodeRender, err, "render %s", format))
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	_, _ = w.Write(img)
}

var contentTypes = map[string]string{
	dot.FormatPNG: "image/png",
	dot.FormatSVG: "image/svg+xml",
	dot.FormatJPG: "image/jpeg",
}

func (s *Server) handleGraphJSON(w http.ResponseWriter, r *http.Request) {
	meta, _ := strconv.ParseBool(r.URL.Query().Get("meta"))
	w.Header().Set("Content-Type", "application/json")
	if err := graphio.WriteJSON(s.graph, w, graphio.WriteOptions{Meta: meta}); err != nil {
		s.logger.Warn("write graph json", "err", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := brewerrors.GetCode(err)
	writeJSON(w, statusFor(code), errorResponse{Error: brewerrors.UserMessage(err), Code: string(code)})
}

func statusFor(code brewerrors.Code) int {
	switch code {
	case brewerrors.ErrCodeInvalidInput, brewerrors.ErrCodeInvalidPackage, brewerrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case brewerrors.ErrCodeNotFound, brewerrors.ErrCodePackageNotFound:
		return http.StatusNotFound
	case brewerrors.ErrCodeRender:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
