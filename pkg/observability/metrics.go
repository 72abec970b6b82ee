package observability

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "brewdeps"

// Metrics records hook events as Prometheus metrics. It implements
// InventoryHooks, GraphHooks and CacheHooks.
type Metrics struct {
	// FetchesTotal counts inventory fetches.
	// Labels: source (brew, file), status (success, error)
	FetchesTotal *prometheus.CounterVec

	// FetchDurationSeconds measures inventory fetch latency.
	// Labels: source
	FetchDurationSeconds *prometheus.HistogramVec

	// PackagesFetched holds the package counts of the last successful fetch.
	// Labels: kind (formula, cask)
	PackagesFetched *prometheus.GaugeVec

	// GraphBuildSeconds measures graph construction time.
	GraphBuildSeconds prometheus.Histogram

	// GraphSize holds the node and edge counts of the last built graph.
	// Labels: element (nodes, edges)
	GraphSize *prometheus.GaugeVec

	// CacheEventsTotal counts cache lookups and writes.
	// Labels: type, event (hit, miss, set)
	CacheEventsTotal *prometheus.CounterVec

	// CacheWriteBytes measures the size of cached payloads.
	// Labels: type
	CacheWriteBytes *prometheus.HistogramVec
}

// NewMetrics creates the metrics and registers them with reg.
// Registering twice on the same registry panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		FetchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "inventory",
			Name:      "fetches_total",
			Help:      "Total inventory fetches by source and status",
		}, []string{"source", "status"}),
		FetchDurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "inventory",
			Name:      "fetch_duration_seconds",
			Help:      "Inventory fetch latency",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"source"}),
		PackagesFetched: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "inventory",
			Name:      "packages",
			Help:      "Packages in the last fetched inventory",
		}, []string{"kind"}),
		GraphBuildSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "graph",
			Name:      "build_duration_seconds",
			Help:      "Dependency graph construction time",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		GraphSize: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "graph",
			Name:      "size",
			Help:      "Nodes and edges of the last built graph",
		}, []string{"element"}),
		CacheEventsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Cache hits, misses and writes by key type",
		}, []string{"type", "event"}),
		CacheWriteBytes: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "write_bytes",
			Help:      "Size of cached payloads",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}, []string{"type"}),
	}
}

func (m *Metrics) OnFetchStart(context.Context, string) {}

func (m *Metrics) OnFetchComplete(_ context.Context, source string, formulae, casks int, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	// "brew:/opt/homebrew/bin/brew" is labelled "brew".
	kind, _, _ := strings.Cut(source, ":")
	m.FetchesTotal.WithLabelValues(kind, status).Inc()
	m.FetchDurationSeconds.WithLabelValues(kind).Observe(d.Seconds())
	if err == nil {
		m.PackagesFetched.WithLabelValues("formula").Set(float64(formulae))
		m.PackagesFetched.WithLabelValues("cask").Set(float64(casks))
	}
}

func (m *Metrics) OnBuild(_ context.Context, nodes, edges int, d time.Duration) {
	m.GraphBuildSeconds.Observe(d.Seconds())
	m.GraphSize.WithLabelValues("nodes").Set(float64(nodes))
	m.GraphSize.WithLabelValues("edges").Set(float64(edges))
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheEventsTotal.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheEventsTotal.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheEventsTotal.WithLabelValues(keyType, "set").Inc()
	m.CacheWriteBytes.WithLabelValues(keyType).Observe(float64(size))
}

// =============================================================================
// Fan-out
// =============================================================================

// Hooks combines all hook interfaces.
type Hooks interface {
	InventoryHooks
	GraphHooks
	CacheHooks
}

// SetAll registers h for inventory, graph and cache events.
func SetAll(h Hooks) {
	SetInventoryHooks(h)
	SetGraphHooks(h)
	SetCacheHooks(h)
}

// Multi forwards every event to each of hs in order.
func Multi(hs ...Hooks) Hooks {
	return multi(hs)
}

type multi []Hooks

func (m multi) OnFetchStart(ctx context.Context, source string) {
	for _, h := range m {
		h.OnFetchStart(ctx, source)
	}
}

func (m multi) OnFetchComplete(ctx context.Context, source string, formulae, casks int, d time.Duration, err error) {
	for _, h := range m {
		h.OnFetchComplete(ctx, source, formulae, casks, d, err)
	}
}

func (m multi) OnBuild(ctx context.Context, nodes, edges int, d time.Duration) {
	for _, h := range m {
		h.OnBuild(ctx, nodes, edges, d)
	}
}

func (m multi) OnCacheHit(ctx context.Context, keyType string) {
	for _, h := range m {
		h.OnCacheHit(ctx, keyType)
	}
}

func (m multi) OnCacheMiss(ctx context.Context, keyType string) {
	for _, h := range m {
		h.OnCacheMiss(ctx, keyType)
	}
}

func (m multi) OnCacheSet(ctx context.Context, keyType string, size int) {
	for _, h := range m {
		h.OnCacheSet(ctx, keyType, size)
	}
}
