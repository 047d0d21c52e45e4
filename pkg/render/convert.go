package render

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"

	errs "github.com/matzehuels/fealgraph/pkg/errors"
)

// Converter is the external tool used for SVG conversion.
const Converter = "rsvg-convert"

// ErrConverterMissing is returned when [Converter] is not on PATH.
var ErrConverterMissing = errors.New(Converter + " not found (install librsvg: brew install librsvg, apt install librsvg2-bin)")

// ToPDF converts SVG bytes to PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convert(ctx, svg, "pdf")
}

// ToPNG converts SVG bytes to PNG. A scale of 2.0 doubles the resolution.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	return convert(ctx, svg, "png", "-z", strconv.FormatFloat(scale, 'f', 2, 64))
}

func convert(ctx context.Context, svg []byte, format string, extraArgs ...string) ([]byte, error) {
	path, err := exec.LookPath(Converter)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, ErrConverterMissing, "%s export", format)
	}

	cmd := exec.CommandContext(ctx, path, append([]string{"-f", format}, extraArgs...)...)
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "%s %s: %s", Converter, format, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}
