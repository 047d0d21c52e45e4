package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fealgraph/pkg/pipeline"
)

// exportCommand creates the export command that writes the network artifacts.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		jsonMode   string
		detailed   bool
		pngScale   float64
		in         inputFlags
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build the FEAL-8 network and write its artifacts",
		Long: `Build the FEAL-8 network and write its artifacts.

By default three files are written to the output directory:

  graph.graphml          GraphML with named data keys
  graph.json             node and edge records for graph viewers
  computation_graph.rs   a serde enum describing every node kind

Diagrams (dot, svg, png, pdf) can be added with --format. When inputs are
given, the network is evaluated and node values appear in object-mode JSON
and diagram labels.

Artifacts are staged and only appear once every format was written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("output") {
				cfg.Output.Dir = output
			}
			if flags.Changed("format") {
				cfg.Output.Formats = parseList(formatsStr)
			}
			if flags.Changed("json-mode") {
				cfg.Output.JSONMode = jsonMode
			}
			if flags.Changed("detailed") {
				cfg.Output.Detailed = detailed
			}
			if flags.Changed("png-scale") {
				cfg.Output.PNGScale = pngScale
			}
			in.apply(&cfg.Inputs)

			opts, err := cfg.PipelineOptions()
			if err != nil {
				return err
			}
			return c.runExport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", pipeline.DefaultOutputDir, "output directory")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): graphml, json, schema (default), dot, svg, png, pdf (comma-separated)")
	cmd.Flags().StringVar(&jsonMode, "json-mode", pipeline.DefaultJSONMode, "JSON layout: array or object")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show ids and widths in diagram labels")
	cmd.Flags().Float64Var(&pngScale, "png-scale", pipeline.DefaultPNGScale, "PNG scale factor")
	in.register(cmd)

	return cmd
}

// runExport runs the pipeline and prints the written artifacts.
func (c *CLI) runExport(ctx context.Context, w io.Writer, opts pipeline.Options) error {
	opts.Logger = c.Logger
	runner := pipeline.NewRunner(c.Logger)

	prog := newProgress(loggerFromContext(ctx))
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	prog.done(fmt.Sprintf("Exported %d artifacts", len(result.Paths)))

	printSuccess(w, "Exported FEAL-8 network")
	printStats(w, result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.SchemaKinds)
	for _, format := range slices.Sorted(maps.Keys(result.Paths)) {
		printFile(w, result.Paths[format])
	}
	if result.Values != nil {
		printKeyValue(w, "ciphertext", hexValue(result.Ciphertext, 64))
	}
	return nil
}
