// Package nodelink renders an extracted computation graph as a node-link
// diagram.
//
// # Usage
//
// Convert a graph to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Nodes keep the positions and colors assigned by the topology builder, so
// the diagram reads top to bottom like the cipher: whitening, eight rounds,
// finalization. Edge labels name the operand slot they feed.
//
// [RenderPDF] and [RenderPNG] convert the SVG with rsvg-convert.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
