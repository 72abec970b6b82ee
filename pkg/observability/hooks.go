// Package observability provides hooks for metrics, tracing and logging.
//
// Libraries emit events through the registered hooks; the defaults are no-ops.
// The CLI registers logging hooks when --verbose is set, and other frontends
// can register their own backends at startup:
//
//	observability.SetInventoryHooks(&myHooks{})
//
// Libraries call hooks to emit events:
//
//	observability.Inventory().OnFetchStart(ctx, source)
//	// ... run brew ...
//	observability.Inventory().OnFetchComplete(ctx, source, formulae, casks, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Inventory Hooks
// =============================================================================

// InventoryHooks receives events from inventory loading.
type InventoryHooks interface {
	OnFetchStart(ctx context.Context, source string)
	OnFetchComplete(ctx context.Context, source string, formulae, casks int, duration time.Duration, err error)
}

// =============================================================================
// Graph Hooks
// =============================================================================

// GraphHooks receives events from graph construction.
type GraphHooks interface {
	// OnBuild records a completed graph build.
	OnBuild(ctx context.Context, nodes, edges int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopInventoryHooks is a no-op implementation of InventoryHooks.
type NoopInventoryHooks struct{}

func (NoopInventoryHooks) OnFetchStart(context.Context, string) {}
func (NoopInventoryHooks) OnFetchComplete(context.Context, string, int, int, time.Duration, error) {
}

// NoopGraphHooks is a no-op implementation of GraphHooks.
type NoopGraphHooks struct{}

func (NoopGraphHooks) OnBuild(context.Context, int, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	inventoryHooks InventoryHooks = NoopInventoryHooks{}
	graphHooks     GraphHooks     = NoopGraphHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	hooksMu        sync.RWMutex
)

// SetInventoryHooks registers custom inventory hooks. Nil is ignored.
func SetInventoryHooks(h InventoryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		inventoryHooks = h
	}
}

// SetGraphHooks registers custom graph hooks. Nil is ignored.
func SetGraphHooks(h GraphHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		graphHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Inventory returns the registered inventory hooks.
func Inventory() InventoryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return inventoryHooks
}

// Graph returns the registered graph hooks.
func Graph() GraphHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return graphHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	inventoryHooks = NoopInventoryHooks{}
	graphHooks = NoopGraphHooks{}
	cacheHooks = NoopCacheHooks{}
}
