// Package render provides visualization rendering for organization charts.
//
// # Overview
//
// This package contains the generic parts of the rendering pipeline:
//
//   - Format conversion (SVG to PDF/PNG) via rsvg-convert
//   - The chart renderer (in [sink] subpackage)
//   - Presentation policy (in [styles] subpackage)
//   - Graphviz node-link diagrams (in [nodelink] subpackage)
//   - Plain-text trees (in [text] subpackage)
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG to other formats using the external
// rsvg-convert tool (from librsvg).
//
//	svg := sink.RenderSVG(l, cfg)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
package render
