package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/fealgraph/pkg/dag"
	"github.com/matzehuels/fealgraph/pkg/observability"
	"github.com/matzehuels/fealgraph/pkg/schema"
	"github.com/matzehuels/fealgraph/pkg/topology"
)

// Runner encapsulates pipeline execution.
//
// The Runner is stateless except for the logger - it doesn't store pipeline
// results. Every run builds its own network in its own arena, so multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the complete build → extract → export pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: uuid.NewString()}
	logger := opts.Logger.With("run", shortID(result.RunID))
	opts.Logger = logger
	hooks := observability.Pipeline()

	// Stage 1: Build
	hooks.OnBuildStart(ctx, result.RunID)
	buildStart := time.Now()
	n, values, err := r.Build(opts.Inputs)
	result.Stats.BuildTime = time.Since(buildStart)
	nodes := 0
	if n != nil {
		nodes = n.Arena.Len()
	}
	hooks.OnBuildComplete(ctx, result.RunID, nodes, result.Stats.BuildTime, err)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Network = n
	result.Values = values
	if values != nil {
		result.Ciphertext = values[n.Ciphertext]
		logger.Info("evaluated network", "ciphertext", fmt.Sprintf("%016x", result.Ciphertext))
	}

	logger.Debug("built network", "nodes", nodes, "duration", result.Stats.BuildTime)

	// Stage 2: Extract
	extractStart := time.Now()
	g, err := n.Extract()
	result.Stats.ExtractTime = time.Since(extractStart)
	if err != nil {
		hooks.OnExtractComplete(ctx, result.RunID, 0, 0, result.Stats.ExtractTime, err)
		return nil, fmt.Errorf("extract: %w", err)
	}
	hooks.OnExtractComplete(ctx, result.RunID, g.NodeCount(), g.EdgeCount(), result.Stats.ExtractTime, nil)
	result.Graph = g
	result.Schema = schema.Derive(g)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.Stats.SchemaKinds = len(result.Schema.Entries)

	logger.Info("extracted graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"kinds", result.Stats.SchemaKinds,
		"duration", result.Stats.ExtractTime)

	// Stage 3: Export
	hooks.OnExportStart(ctx, result.RunID, opts.Formats)
	exportStart := time.Now()
	paths, err := r.Export(ctx, result, opts)
	result.Stats.ExportTime = time.Since(exportStart)
	hooks.OnExportComplete(ctx, result.RunID, opts.Formats, result.Stats.ExportTime, err)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Paths = paths

	logger.Info("wrote artifacts",
		"formats", opts.Formats,
		"dir", opts.OutputDir,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// Build assembles the network and, if inputs is not nil, binds it and
// evaluates every node reachable from the ciphertext.
func (r *Runner) Build(inputs *topology.Block) (*topology.Network, map[dag.NodeID]uint64, error) {
	n, err := topology.Build()
	if err != nil {
		return nil, nil, err
	}
	if inputs == nil {
		return n, nil, nil
	}
	if err := n.Bind(*inputs); err != nil {
		return nil, nil, err
	}
	values, err := dag.EvaluateAll(n.Arena, n.Ciphertext)
	if err != nil {
		return nil, nil, err
	}
	return n, values, nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
