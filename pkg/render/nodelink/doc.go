// Package nodelink renders a hierarchy as a Graphviz node-link diagram.
//
// # Overview
//
// The native renderer in [github.com/matzehuels/organigram/pkg/render/sink]
// places every box itself. This package hands the same tree to Graphviz
// instead, which routes edges around boxes and never lets siblings overlap.
// It is useful for very wide organizations where the fixed viewport of the
// native chart gets crowded.
//
// # Usage
//
//	dot := nodelink.ToDOT(tree, nodelink.Options{Title: "Org"})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source is also a useful artifact on its own; the CLI writes it for
// the "dot" output format.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
