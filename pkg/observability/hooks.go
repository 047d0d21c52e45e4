// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through the registered hooks; the defaults do
// nothing. The CLI registers hooks that log each event at debug level.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetEvalHooks(&myEvalHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnBuildStart(ctx, runID)
//	// ... build the network ...
//	observability.Pipeline().OnBuildComplete(ctx, runID, nodeCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the export pipeline. Every event
// carries the run id of the export.
type PipelineHooks interface {
	// Build events
	OnBuildStart(ctx context.Context, runID string)
	OnBuildComplete(ctx context.Context, runID string, nodeCount int, duration time.Duration, err error)

	// Extract events
	OnExtractComplete(ctx context.Context, runID string, nodeCount, edgeCount int, duration time.Duration, err error)

	// Export events
	OnExportStart(ctx context.Context, runID string, formats []string)
	OnExportComplete(ctx context.Context, runID string, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Eval Hooks
// =============================================================================

// EvalHooks receives events from graph evaluation.
type EvalHooks interface {
	// OnEvaluate records one evaluation of a root. Source names what was
	// evaluated, such as "network" or the path of a replayed artifact.
	OnEvaluate(ctx context.Context, source string, duration time.Duration, err error)

	// OnBatchComplete records a batch of evaluations run by a worker pool.
	OnBatchComplete(ctx context.Context, workers, samples int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBuildStart(context.Context, string) {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnExtractComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnExportStart(context.Context, string, []string) {}
func (NoopPipelineHooks) OnExportComplete(context.Context, string, []string, time.Duration, error) {
}

// NoopEvalHooks is a no-op implementation of EvalHooks.
type NoopEvalHooks struct{}

func (NoopEvalHooks) OnEvaluate(context.Context, string, time.Duration, error)        {}
func (NoopEvalHooks) OnBatchComplete(context.Context, int, int, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	evalHooks     EvalHooks     = NoopEvalHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetEvalHooks registers custom evaluation hooks.
func SetEvalHooks(h EvalHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		evalHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Eval returns the registered evaluation hooks.
func Eval() EvalHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return evalHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	evalHooks = NoopEvalHooks{}
}
