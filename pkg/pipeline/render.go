package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"

	fio "github.com/matzehuels/fealgraph/pkg/io"
	"github.com/matzehuels/fealgraph/pkg/render/nodelink"
	"github.com/matzehuels/fealgraph/pkg/schema"
)

// Export writes the requested artifacts of result to opts.OutputDir and
// returns their paths keyed by format.
//
// Every artifact is first written to a temporary file; if any of them fails,
// none is renamed into place. The JSON artifact in array mode is re-read
// from its staged file and checked for dense ids before commit.
func (r *Runner) Export(ctx context.Context, result *Result, opts Options) (map[string]string, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	stage, err := fio.NewStage(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			stage.Abort()
		}
	}()

	var dot string
	if needsDOT(opts.Formats) {
		dot = nodelink.ToDOT(result.Graph, nodelink.Options{Detailed: opts.Detailed, Values: result.Values})
	}

	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := opts.FileName(format)
		if err := stage.Write(name, r.writer(ctx, format, result, dot, opts)); err != nil {
			return nil, fmt.Errorf("%s: %w", format, err)
		}
		if format == FormatJSON && opts.JSONMode == string(fio.ModeArray) {
			if err := checkStagedDense(stage, name); err != nil {
				return nil, err
			}
		}
		opts.Logger.Debug("staged artifact", "format", format, "file", name)
	}

	written, err := stage.Commit()
	committed = true
	if err != nil {
		return nil, err
	}

	paths := make(map[string]string, len(written))
	for i, format := range opts.Formats {
		paths[format] = written[i]
	}
	return paths, nil
}

func (r *Runner) writer(ctx context.Context, format string, result *Result, dot string, opts Options) func(io.Writer) error {
	switch format {
	case FormatGraphML:
		return func(w io.Writer) error {
			var raw bytes.Buffer
			if err := fio.WriteGraphML(result.Graph, &raw); err != nil {
				return err
			}
			return fio.TranslateKeys(&raw, w)
		}
	case FormatJSON:
		return func(w io.Writer) error {
			jo := fio.JSONOptions{Mode: fio.Mode(opts.JSONMode)}
			if jo.Mode == fio.ModeObject {
				jo.Values = result.Values
			}
			return fio.WriteJSON(result.Graph, w, jo)
		}
	case FormatSchema:
		return func(w io.Writer) error {
			return schema.WriteRust(w, result.Schema)
		}
	case FormatDOT:
		return func(w io.Writer) error {
			_, err := io.WriteString(w, dot)
			return err
		}
	case FormatSVG, FormatPNG, FormatPDF:
		return func(w io.Writer) error {
			data, err := renderDiagram(ctx, format, dot, opts.PNGScale)
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		}
	}
	return func(io.Writer) error { return ValidateFormat(format) }
}

func renderDiagram(ctx context.Context, format, dot string, scale float64) ([]byte, error) {
	switch format {
	case FormatPNG:
		return nodelink.RenderPNG(ctx, dot, scale)
	case FormatPDF:
		return nodelink.RenderPDF(ctx, dot)
	default:
		return nodelink.RenderSVG(ctx, dot)
	}
}

func needsDOT(formats []string) bool {
	for _, f := range formats {
		switch f {
		case FormatDOT, FormatSVG, FormatPNG, FormatPDF:
			return true
		}
	}
	return false
}

func checkStagedDense(stage *fio.Stage, name string) error {
	f, err := stage.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := fio.CheckDense(f); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
