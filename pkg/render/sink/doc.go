// Package sink provides output format renderers for organization charts.
//
// # Overview
//
// A "sink" transforms a computed [layout.Layout] plus its
// [geometry.Config] into a final output format:
//
//   - SVG: the chart itself, self-contained and viewable in any browser
//   - JSON: positioned nodes and edges for external tools
//   - PDF: print-ready output (requires rsvg-convert)
//   - PNG: raster output (requires rsvg-convert)
//
// # SVG Output
//
// [RenderSVG] writes, in order: the XML declaration and a root element sized
// to the geometry, an arrowhead marker, a centred title banner, one
// right-angle connector per edge and one rounded box with two label lines
// per node. Box fills come from a palette keyed by record depth.
//
//	svg := sink.RenderSVG(l, cfg,
//	    sink.WithTitle("Swiss Armed Forces 2025"),
//	    sink.WithMaxLabel(28),
//	)
//
// # SVG Options
//
//   - [WithTitle]: Banner text
//   - [WithPalette]: Depth-keyed fill colors
//   - [WithMaxLabel]: Name truncation threshold
//   - [WithBackground]: Document background color
//   - [WithLevelLabel]: Word shown before the depth number
//
// All renderers are pure: they return bytes and never touch the filesystem.
// Use pkg/io to persist the result.
package sink
