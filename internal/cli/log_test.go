package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))

			if gotLog := buf.Len() > 0; gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.DebugLevel))

	time.Sleep(10 * time.Millisecond)
	prog.done("Built graph")

	if !strings.Contains(buf.String(), "Built graph (") {
		t.Errorf("progress output = %q", buf.String())
	}
}

func TestProgressSilentAtInfo(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Built graph")
	if buf.Len() != 0 {
		t.Errorf("progress logged at info level: %q", buf.String())
	}
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	h := loggingHooks{logger: newLogger(&buf, log.DebugLevel)}
	ctx := context.Background()

	h.OnFetchStart(ctx, "brew")
	h.OnFetchComplete(ctx, "brew", 3, 2, time.Second, nil)
	h.OnFetchComplete(ctx, "brew", 0, 0, time.Second, errors.New("boom"))
	h.OnBuild(ctx, 5, 4, time.Millisecond)
	h.OnCacheHit(ctx, "inventory")
	h.OnCacheMiss(ctx, "inventory")
	h.OnCacheSet(ctx, "inventory", 128)

	out := buf.String()
	for _, want := range []string{
		"fetching inventory", "fetched inventory", "inventory fetch failed",
		"built graph", "cache hit", "cache miss", "cache set", "boom",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q", want)
		}
	}
}
