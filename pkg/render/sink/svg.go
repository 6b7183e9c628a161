package sink

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/matzehuels/organigram/pkg/geometry"
	"github.com/matzehuels/organigram/pkg/layout"
	"github.com/matzehuels/organigram/pkg/render/styles"
)

// Fixed drawing constants.
const (
	DefaultTitle      = "Organization Chart"
	DefaultLevelLabel = "Level"

	edgeStub      = 40 // horizontal run out of the parent before turning
	titleY        = 50
	titleFontSize = 28
	cornerRadius  = 10
	strokeWidth   = 2

	// Label baselines at base scale; both shrink with the node height.
	baseNameBaseline = 28
	baseTypeBaseline = 48
)

const arrowDefs = `  <defs>
    <marker id="arrow" markerWidth="10" markerHeight="10" refX="8" refY="3" orient="auto">
      <path d="M0,0 L0,6 L9,3 z" fill="` + styles.EdgeColor + `"/>
    </marker>
  </defs>
`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title      string
	levelLabel string
	palette    styles.Palette
	maxLabel   int
	background string
}

// WithTitle sets the banner text at the top of the chart.
func WithTitle(s string) SVGOption { return func(r *svgRenderer) { r.title = s } }

// WithPalette replaces the depth-keyed fill colors.
func WithPalette(p styles.Palette) SVGOption { return func(r *svgRenderer) { r.palette = p } }

// WithMaxLabel sets the name length beyond which labels are truncated.
func WithMaxLabel(n int) SVGOption { return func(r *svgRenderer) { r.maxLabel = n } }

// WithBackground sets the document background color.
func WithBackground(c string) SVGOption { return func(r *svgRenderer) { r.background = c } }

// WithLevelLabel sets the word printed before the depth in the second label
// line ("Level 3" by default).
func WithLevelLabel(s string) SVGOption { return func(r *svgRenderer) { r.levelLabel = s } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		title:      DefaultTitle,
		levelLabel: DefaultLevelLabel,
		palette:    styles.DefaultPalette,
		maxLabel:   styles.DefaultMaxLabel,
		background: styles.BackgroundColor,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG serializes a layout into a standalone SVG document.
//
// The document declares its pixel size from cfg, defines an arrowhead marker,
// draws a centred title banner, then every edge, then every node. Drawing
// edges first keeps connectors beneath the boxes. Edges are routed
// orthogonally: out of the parent's right edge, a short stub to the right,
// vertically to the child's centre line, then into the child's left edge.
//
// RenderSVG does not modify l and is safe to call concurrently.
func RenderSVG(l layout.Layout, cfg geometry.Config, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&buf, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" style="background:%s; font-family: %s;">`+"\n",
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, styles.EscapeXML(r.background), styles.FontFamily)
	buf.WriteString(arrowDefs)
	renderTitle(&buf, cfg, r.title)

	for _, e := range l.Edges {
		renderEdge(&buf, l, cfg, e)
	}
	for _, n := range l.Nodes {
		renderNode(&buf, cfg, &r, n)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderTitle(buf *bytes.Buffer, cfg geometry.Config, title string) {
	fmt.Fprintf(buf, `  <text x="%d" y="%d" text-anchor="middle" font-size="%d" font-weight="bold" fill="%s">%s</text>`+"\n",
		cfg.Width/2, titleY, titleFontSize, styles.TitleColor, styles.EscapeXML(title))
}

func renderEdge(buf *bytes.Buffer, l layout.Layout, cfg geometry.Config, e layout.Edge) {
	p, okP := l.Node(e.From)
	c, okC := l.Node(e.To)
	if !okP || !okC {
		return
	}
	half := float64(cfg.NodeHeight / 2)
	px := p.X + float64(cfg.NodeWidth)
	py := p.Y + half
	cx := c.X
	cy := c.Y + half

	fmt.Fprintf(buf, `  <path class="edge" d="M%s,%s H%s V%s H%s" stroke="%s" stroke-width="%d" fill="none" marker-end="url(#arrow)"/>`+"\n",
		num(px), num(py), num(px+edgeStub), num(cy), num(cx), styles.EdgeColor, strokeWidth)
}

func renderNode(buf *bytes.Buffer, cfg geometry.Config, r *svgRenderer, n layout.Node) {
	cx := n.X + float64(cfg.NodeWidth/2)
	nameY := n.Y + float64(cfg.NodeHeight*baseNameBaseline/geometry.BaseNodeHeight)
	typeY := n.Y + float64(cfg.NodeHeight*baseTypeBaseline/geometry.BaseNodeHeight)

	fmt.Fprintf(buf, `  <rect class="node" id="node-%d" x="%s" y="%s" width="%d" height="%d" rx="%d" fill="%s" stroke="%s" stroke-width="%d"/>`+"\n",
		n.ID, num(n.X), num(n.Y), cfg.NodeWidth, cfg.NodeHeight, cornerRadius, r.palette.Fill(n.Depth), styles.StrokeColor, strokeWidth)
	fmt.Fprintf(buf, `  <text x="%s" y="%s" text-anchor="middle" fill="white" font-weight="bold" font-size="%d">%s</text>`+"\n",
		num(cx), num(nameY), cfg.FontSizeName, styles.EscapeXML(styles.TruncateLabel(n.Name, r.maxLabel)))
	fmt.Fprintf(buf, `  <text x="%s" y="%s" text-anchor="middle" fill="#fff" font-size="%d">%s (%s %d)</text>`+"\n",
		num(cx), num(typeY), cfg.FontSizeType, styles.EscapeXML(n.Type), styles.EscapeXML(r.levelLabel), n.Depth)
}

// num formats a coordinate without trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
