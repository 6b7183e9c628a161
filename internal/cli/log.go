package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps filtering at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context carrying l.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() when
// none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability Hooks
// =============================================================================

// logHooks writes pipeline, cache and HTTP events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnFetchStart(_ context.Context, source string) {
	h.logger.Debug("fetch started", "source", source)
}

func (h *logHooks) OnFetchComplete(_ context.Context, source string, records int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("fetch failed", "source", source, "error", err, "duration", d)
		return
	}
	h.logger.Debug("fetch finished", "source", source, "records", records, "duration", d)
}

func (h *logHooks) OnLayoutStart(_ context.Context, records int) {
	h.logger.Debug("layout started", "records", records)
}

func (h *logHooks) OnLayoutComplete(_ context.Context, nodes int, scale float64, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout failed", "error", err, "duration", d)
		return
	}
	h.logger.Debug("layout finished", "nodes", nodes, "scale", scale, "duration", d)
}

func (h *logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render started", "formats", formatList(formats))
}

func (h *logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "formats", formatList(formats), "error", err)
		return
	}
	h.logger.Debug("render finished", "formats", formatList(formats), "duration", d)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache stored", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Info("response", "method", method, "path", path, "status", status, "duration", d)
}
