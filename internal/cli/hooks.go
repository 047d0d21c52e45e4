package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fealgraph/pkg/observability"
)

// logHooks reports pipeline and evaluation events at debug level.
type logHooks struct {
	logger *log.Logger
}

var (
	_ observability.PipelineHooks = (*logHooks)(nil)
	_ observability.EvalHooks     = (*logHooks)(nil)
)

func (h *logHooks) OnBuildStart(_ context.Context, runID string) {
	h.logger.Debug("Build started", "run", runID)
}

func (h *logHooks) OnBuildComplete(_ context.Context, runID string, nodeCount int, d time.Duration, err error) {
	h.done("Build", err, "run", runID, "nodes", nodeCount, "duration", d)
}

func (h *logHooks) OnExtractComplete(_ context.Context, runID string, nodeCount, edgeCount int, d time.Duration, err error) {
	h.done("Extract", err, "run", runID, "nodes", nodeCount, "edges", edgeCount, "duration", d)
}

func (h *logHooks) OnExportStart(_ context.Context, runID string, formats []string) {
	h.logger.Debug("Export started", "run", runID, "formats", formats)
}

func (h *logHooks) OnExportComplete(_ context.Context, runID string, formats []string, d time.Duration, err error) {
	h.done("Export", err, "run", runID, "formats", formats, "duration", d)
}

func (h *logHooks) OnEvaluate(_ context.Context, source string, d time.Duration, err error) {
	h.done("Evaluate", err, "source", source, "duration", d)
}

func (h *logHooks) OnBatchComplete(_ context.Context, workers, samples int, d time.Duration, err error) {
	h.done("Batch", err, "workers", workers, "samples", samples, "duration", d)
}

func (h *logHooks) done(event string, err error, kv ...any) {
	if err != nil {
		h.logger.Debug(event+" failed", append(kv, "err", err)...)
		return
	}
	h.logger.Debug(event+" complete", kv...)
}
