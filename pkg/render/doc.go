// Package render converts rendered diagrams between output formats.
//
// [ToPDF] and [ToPNG] turn an SVG produced by [nodelink.RenderSVG] into PDF
// or PNG using the external rsvg-convert tool (from librsvg).
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink.RenderSVG]: github.com/matzehuels/fealgraph/pkg/render/nodelink.RenderSVG
package render
