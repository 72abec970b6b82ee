package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with
// elapsed duration at debug level.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Built graph (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Debugf("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// loggingHooks writes observability events to the debug log.
type loggingHooks struct {
	logger *log.Logger
}

func (h loggingHooks) OnFetchStart(_ context.Context, source string) {
	h.logger.Debug("fetching inventory", "source", source)
}

func (h loggingHooks) OnFetchComplete(_ context.Context, source string, formulae, casks int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("inventory fetch failed", "source", source, "duration", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("fetched inventory", "source", source, "formulae", formulae, "casks", casks, "duration", d.Round(time.Millisecond))
}

func (h loggingHooks) OnBuild(_ context.Context, nodes, edges int, d time.Duration) {
	h.logger.Debug("built graph", "nodes", nodes, "edges", edges, "duration", d.Round(time.Microsecond))
}

func (h loggingHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h loggingHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h loggingHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
