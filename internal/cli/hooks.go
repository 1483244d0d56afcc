package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modelir/pkg/observability"
)

// logHooks reports IR and cache events at debug level.
type logHooks struct {
	logger *log.Logger
}

// RegisterHooks installs observability hooks that log through the CLI
// logger. They only produce output with --verbose.
func (c *CLI) RegisterHooks() {
	h := logHooks{logger: c.Logger}
	observability.SetIRHooks(h)
	observability.SetCacheHooks(h)
}

func (h logHooks) OnReadStart(_ context.Context, path string) {
	h.logger.Debug("read start", "path", path)
}

func (h logHooks) OnReadComplete(_ context.Context, path, format string, nodeCount int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("read failed", "path", path, "error", err)
		return
	}
	h.logger.Debug("read done", "path", path, "format", format, "nodes", nodeCount, "took", d.Round(time.Microsecond))
}

func (h logHooks) OnBuild(_ context.Context, nodeCount, inputCount, outputCount int, d time.Duration) {
	h.logger.Debug("graph built", "nodes", nodeCount, "inputs", inputCount, "outputs", outputCount, "took", d.Round(time.Microsecond))
}

func (h logHooks) OnWrite(_ context.Context, path, format string, size int, err error) {
	if err != nil {
		h.logger.Debug("write failed", "path", path, "format", format, "error", err)
		return
	}
	h.logger.Debug("write done", "path", path, "format", format, "bytes", size)
}

func (h logHooks) OnCacheHit(_ context.Context, key string) {
	h.logger.Debug("cache hit", "key", key)
}

func (h logHooks) OnCacheMiss(_ context.Context, key string) {
	h.logger.Debug("cache miss", "key", key)
}

func (h logHooks) OnCacheSet(_ context.Context, key string, size int) {
	h.logger.Debug("cache set", "key", key, "bytes", size)
}
