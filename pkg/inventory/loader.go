package inventory

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/brewdeps/pkg/cache"
	"github.com/matzehuels/brewdeps/pkg/errors"
	"github.com/matzehuels/brewdeps/pkg/observability"
)

// DefaultMaxAge is how long a cached snapshot is considered fresh.
const DefaultMaxAge = time.Hour

const cacheKeyType = "inventory"

// Loader returns a snapshot from the cache when it is fresh enough and from
// the Source otherwise.
type Loader struct {
	Source Source
	Cache  cache.Cache
	Logger *log.Logger
	Now    func() time.Time
}

// NewLoader creates a loader. A nil cache disables caching.
func NewLoader(src Source, c cache.Cache, logger *log.Logger) *Loader {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Loader{Source: src, Cache: c, Logger: logger, Now: time.Now}
}

// Result is a loaded snapshot and where it came from.
type Result struct {
	Snapshot *Snapshot
	Cached   bool
}

// FetchOrLoad returns a cached snapshot younger than maxAge unless refresh is
// set, otherwise fetches from the source and stores the result. Snapshots
// with no packages are never cached. A maxAge <= 0 uses DefaultMaxAge.
// A FileSource is always read directly so edits to the file show up at once.
//
// Cache read and write failures are logged and otherwise ignored; only a
// source failure is returned.
func (l *Loader) FetchOrLoad(ctx context.Context, maxAge time.Duration, refresh bool) (*Result, error) {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	key := l.key()
	useCache := cacheable(l.Source)

	if useCache && !refresh {
		if snap := l.load(ctx, key, maxAge); snap != nil {
			return &Result{Snapshot: snap, Cached: true}, nil
		}
	}

	start := time.Now()
	observability.Inventory().OnFetchStart(ctx, l.Source.Name())
	snap, err := l.Source.Fetch(ctx)
	if err != nil {
		observability.Inventory().OnFetchComplete(ctx, l.Source.Name(), 0, 0, time.Since(start), err)
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeDataSource, err, "fetch inventory from %s", l.Source.Name())
		}
		return nil, err
	}
	observability.Inventory().OnFetchComplete(ctx, l.Source.Name(), len(snap.Formulae), len(snap.Casks), time.Since(start), nil)

	if snap.Empty() {
		l.Logger.Warn("no packages fetched, not saving to cache")
		return &Result{Snapshot: snap}, nil
	}
	if useCache {
		l.store(ctx, key, snap, maxAge)
	}
	return &Result{Snapshot: snap}, nil
}

// cacheable reports whether snapshots of src are worth caching. Reading a
// local file is as cheap as reading the cache.
func cacheable(src Source) bool {
	_, isFile := src.(*FileSource)
	return !isFile
}

// Invalidate drops the cached snapshot for this loader's source.
func (l *Loader) Invalidate(ctx context.Context) error {
	return l.Cache.Delete(ctx, l.key())
}

func (l *Loader) load(ctx context.Context, key string, maxAge time.Duration) *Snapshot {
	data, hit, err := l.Cache.Get(ctx, key)
	if err != nil {
		l.Logger.Warn("cache read failed", "err", err)
		return nil
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		l.Logger.Warn("cached inventory corrupted, will refresh", "err", err)
		_ = l.Cache.Delete(ctx, key)
		return nil
	}
	if !snap.FetchedAt.IsZero() && l.now().Sub(snap.FetchedAt) >= maxAge {
		l.Logger.Debug("cached inventory expired, will refresh", "age", l.now().Sub(snap.FetchedAt).Round(time.Second))
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil
	}

	observability.Cache().OnCacheHit(ctx, cacheKeyType)
	l.Logger.Debug("loaded inventory from cache", "id", snap.ID, "fetched_at", snap.FetchedAt.Format(time.RFC3339))
	return &snap
}

func (l *Loader) store(ctx context.Context, key string, snap *Snapshot, ttl time.Duration) {
	data, err := json.Marshal(snap)
	if err != nil {
		l.Logger.Warn("encode inventory for cache", "err", err)
		return
	}
	if err := l.Cache.Set(ctx, key, data, ttl); err != nil {
		l.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
	l.Logger.Debug("saved inventory to cache", "bytes", len(data))
}

func (l *Loader) key() string {
	return cache.Key(cacheKeyType, l.Source.Name())
}

func (l *Loader) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}
