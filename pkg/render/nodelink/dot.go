package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/organigram/pkg/hierarchy"
	"github.com/matzehuels/organigram/pkg/render/styles"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Title is drawn as the graph label above the chart. Empty omits it.
	Title string

	// Detailed adds the record id and depth to each label.
	// When false, labels carry the name and type only.
	Detailed bool

	// Palette overrides the depth-keyed fill colors.
	Palette styles.Palette

	// MaxLabel truncates long names like the SVG renderer does.
	// Zero uses [styles.DefaultMaxLabel].
	MaxLabel int
}

// ToDOT converts a hierarchy to Graphviz DOT source. The chart grows left to
// right like the native renderer, but Graphviz chooses the coordinates.
//
// Nodes are declared in walk order and edges in the same parent-first order
// the native layout records them.
func ToDOT(t *hierarchy.Tree, opts Options) string {
	palette := opts.Palette
	if len(palette) == 0 {
		palette = styles.DefaultPalette
	}
	maxLabel := opts.MaxLabel
	if maxLabel == 0 {
		maxLabel = styles.DefaultMaxLabel
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", styles.BackgroundColor)
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n  fontsize=28;\n", opts.Title)
	}
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fontname=%q, fontcolor=white, color=%q, penwidth=2];\n",
		"Arial", styles.StrokeColor)
	fmt.Fprintf(&buf, "  edge [color=%q, penwidth=2, arrowsize=0.8];\n", styles.EdgeColor)
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("  splines=ortho;\n")
	buf.WriteString("\n")

	var edges []string
	t.Walk(func(r hierarchy.Record, _ int) bool {
		label := fmtLabel(r, maxLabel, opts.Detailed)
		fmt.Fprintf(&buf, "  %s [label=%q, fillcolor=%q];\n", nodeID(r.ID), label, palette.Fill(r.Depth))
		if pid, ok := r.Parent(); ok {
			edges = append(edges, fmt.Sprintf("  %s -> %s;\n", nodeID(pid), nodeID(r.ID)))
		}
		return true
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(id int64) string {
	return "n" + strconv.FormatInt(id, 10)
}

func fmtLabel(r hierarchy.Record, maxLabel int, detailed bool) string {
	lines := []string{styles.TruncateLabel(r.Name, maxLabel)}
	if r.Type != "" {
		lines = append(lines, r.Type)
	}
	if detailed {
		lines = append(lines, fmt.Sprintf("id: %d", r.ID), fmt.Sprintf("depth: %d", r.Depth))
	}
	return strings.Join(lines, "\n")
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz engine.
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

// normalizeViewBox replaces the Graphviz root element (pt units, offset
// viewBox) with a plain pixel-sized one anchored at the origin.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
