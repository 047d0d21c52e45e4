package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/fealgraph/pkg/dag"
	"github.com/matzehuels/fealgraph/pkg/render"
	"github.com/matzehuels/fealgraph/pkg/schema"
)

// pointsPerUnit scales layout coordinates to Graphviz points.
const pointsPerUnit = 1.0 / 72

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the node id and width to each label.
	Detailed bool
	// Values, if set, adds each node's value to its label.
	Values map[dag.NodeID]uint64
}

// ToDOT converts an extracted graph to Graphviz DOT. Nodes are pinned to
// their layout positions (neato with pos="x,y!") and filled with their
// display color; edges carry their operand field.
//
// Anonymous copies are drawn as small points, since they only mark where a
// shared value branches.
func ToDOT(g *dag.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.1,0.05\"];\n")
	buf.WriteString("  edge [fontsize=10, arrowsize=0.6];\n")
	buf.WriteString("\n")

	for _, r := range g.SortedRecords() {
		fmt.Fprintf(&buf, "  %d [%s];\n", r.ID, strings.Join(fmtAttrs(r, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %d -> %d [label=%q];\n", e.From, e.To, e.Field())
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(r dag.Record, opts Options) string {
	parts := []string{schema.Normalize(r)}
	if opts.Detailed {
		parts = append(parts, fmt.Sprintf("#%d  %d bits", r.ID, r.Width))
	}
	if v, ok := opts.Values[r.ID]; ok {
		parts = append(parts, fmt.Sprintf("0x%0*x", (r.Width+3)/4, v))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(r dag.Record, opts Options) []string {
	x := strconv.FormatFloat(r.Display.X*pointsPerUnit, 'f', 3, 64)
	y := strconv.FormatFloat(r.Display.Y*pointsPerUnit, 'f', 3, 64)
	attrs := []string{
		fmt.Sprintf("pos=\"%s,%s!\"", x, y),
		fmt.Sprintf("fillcolor=%q", r.Display.Color.Hex()),
	}
	if r.IsAnonymousCopy() && !opts.Detailed {
		return append(attrs, "shape=point", "width=0.08", `xlabel=""`)
	}
	return append(attrs, fmt.Sprintf("label=%q", fmtLabel(r, opts)))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
