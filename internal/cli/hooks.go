package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/goalnet/pkg/observability"
)

// logHooks reports pipeline, persistence and cache events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnLayoutStart(_ context.Context, algorithm string, nodeCount int) {
	h.logger.Debug("layout started", "algorithm", algorithm, "nodes", nodeCount)
}

func (h logHooks) OnLayoutComplete(_ context.Context, algorithm string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout failed", "algorithm", algorithm, "took", d, "error", err)
		return
	}
	h.logger.Debug("layout finished", "algorithm", algorithm, "took", d)
}

func (h logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render started", "formats", formats)
}

func (h logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("render finished", "formats", formats, "took", d, "error", err)
}

func (h logHooks) OnSave(_ context.Context, id int64, ok bool, d time.Duration) {
	h.logger.Debug("position save", "id", id, "ok", ok, "took", d)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache write", "type", keyType, "bytes", size)
}

func registerLogHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetPipelineHooks(h)
	observability.SetPersistHooks(h)
	observability.SetCacheHooks(h)
}
