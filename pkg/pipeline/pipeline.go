// Package pipeline provides the build → extract → export pipeline of fealgraph.
//
// This package implements the complete pipeline used by the CLI commands.
// By centralizing this logic, export, eval and replay agree on file names,
// formats and validation.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Assemble the FEAL-8 network and, if inputs are given, evaluate it
//  2. Extract: Derive the node table and edge list from the ciphertext root
//  3. Export: Write the requested artifacts (GraphML, JSON, schema, DOT, SVG)
//
// Export stages every artifact in the output directory and renames them into
// place only if all of them were written.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{
//	    OutputDir: "out",
//	    Formats:   []string{"graphml", "json", "schema"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Paths["json"])
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/fealgraph/pkg/dag"
	errs "github.com/matzehuels/fealgraph/pkg/errors"
	"github.com/matzehuels/fealgraph/pkg/schema"
	"github.com/matzehuels/fealgraph/pkg/topology"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Config
// =============================================================================

const (
	// DefaultOutputDir is the directory artifacts are written to.
	DefaultOutputDir = "."

	// DefaultJSONMode is the layout of the JSON artifact.
	DefaultJSONMode = "array"

	// DefaultPNGScale is the resolution multiplier of PNG output.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatGraphML = "graphml"
	FormatJSON    = "json"
	FormatSchema  = "schema"
	FormatDOT     = "dot"
	FormatSVG     = "svg"
	FormatPNG     = "png"
	FormatPDF     = "pdf"
)

// DefaultFormats are the artifacts written when no format is requested.
var DefaultFormats = []string{FormatGraphML, FormatJSON, FormatSchema}

// DefaultFileNames maps each format to the name of its artifact.
var DefaultFileNames = map[string]string{
	FormatGraphML: "graph.graphml",
	FormatJSON:    "graph.json",
	FormatSchema:  schema.RustFile,
	FormatDOT:     "graph.dot",
	FormatSVG:     "graph.svg",
	FormatPNG:     "graph.png",
	FormatPDF:     "graph.pdf",
}

// ValidFormats is the set of supported output formats, in export order.
var ValidFormats = []string{FormatGraphML, FormatJSON, FormatSchema, FormatDOT, FormatSVG, FormatPNG, FormatPDF}

var validate = validator.New()

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
type Options struct {
	OutputDir string            `validate:"required,max=500"`
	Formats   []string          `validate:"omitempty,unique,dive,oneof=graphml json schema dot svg png pdf"`
	FileNames map[string]string `validate:"omitempty,dive,keys,oneof=graphml json schema dot svg png pdf,endkeys,required,max=255"`
	JSONMode  string            `validate:"omitempty,oneof=array object"`
	PNGScale  float64           `validate:"omitempty,gt=0,lte=8"`

	// Detailed adds ids and widths to DOT labels.
	Detailed bool

	// Inputs, if set, are bound before export. The ciphertext is evaluated and
	// node values are added to object-mode JSON and DOT labels.
	Inputs *topology.Block

	// Runtime options
	Logger *log.Logger

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and hooks.
	RunID string

	// Network is the built network with its inputs bound if requested.
	Network *topology.Network

	// Graph is the extracted graph.
	Graph *dag.Graph

	// Schema is derived from Graph.
	Schema *schema.Schema

	// Values holds every node value when inputs were bound.
	Values map[dag.NodeID]uint64

	// Ciphertext is valid when Values is set.
	Ciphertext uint64

	// Paths maps each written format to its artifact path.
	Paths map[string]string

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	SchemaKinds int
	BuildTime   time.Duration
	ExtractTime time.Duration
	ExportTime  time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errs.New(errs.ErrCodeInvalidInput, "invalid format: %q (must be one of: %s)", format, strings.Join(ValidFormats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// formatValidationError turns the first validator failure into a coded error.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid options")
	}

	e := verrs[0]
	field, param := e.Field(), e.Param()
	switch e.Tag() {
	case "required":
		return errs.New(errs.ErrCodeInvalidInput, "%s: field is required", field)
	case "oneof":
		return errs.New(errs.ErrCodeInvalidInput, "%s: %q must be one of: %s", field, e.Value(), param)
	case "unique":
		return errs.New(errs.ErrCodeInvalidInput, "%s: must not contain duplicates", field)
	case "max", "lte":
		return errs.New(errs.ErrCodeInvalidInput, "%s: must not exceed %s", field, param)
	case "gt":
		return errs.New(errs.ErrCodeInvalidInput, "%s: must be greater than %s", field, param)
	default:
		return errs.New(errs.ErrCodeInvalidInput, "%s: validation failed (%s)", field, e.Tag())
	}
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and checks every field.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := validate.Struct(o); err != nil {
		return formatValidationError(err)
	}
	if err := errs.ValidateOutputDir(o.OutputDir); err != nil {
		return err
	}
	for _, format := range o.Formats {
		if err := errs.ValidateArtifactName(o.FileName(format)); err != nil {
			return fmt.Errorf("%s file name: %w", format, err)
		}
	}
	o.validated = true
	return nil
}

// SetDefaults fills unset fields with their defaults.
func (o *Options) SetDefaults() {
	if o.OutputDir == "" {
		o.OutputDir = DefaultOutputDir
	}
	if len(o.Formats) == 0 {
		o.Formats = slices.Clone(DefaultFormats)
	}
	if o.JSONMode == "" {
		o.JSONMode = DefaultJSONMode
	}
	if o.PNGScale == 0 {
		o.PNGScale = DefaultPNGScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// FileName returns the artifact name of format.
func (o *Options) FileName(format string) string {
	if name, ok := o.FileNames[format]; ok && name != "" {
		return name
	}
	return DefaultFileNames[format]
}

// NeedsValues reports whether node values are computed for export.
func (o *Options) NeedsValues() bool {
	return o.Inputs != nil
}
