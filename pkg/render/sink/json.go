package sink

import (
	"encoding/json"

	"github.com/matzehuels/organigram/pkg/geometry"
	"github.com/matzehuels/organigram/pkg/layout"
	"github.com/matzehuels/organigram/pkg/render/styles"
)

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	title   string
	palette styles.Palette
}

// WithJSONTitle records the chart title in the export.
func WithJSONTitle(s string) JSONOption { return func(r *jsonRenderer) { r.title = s } }

// WithJSONPalette resolves node fill colors with p instead of the default.
func WithJSONPalette(p styles.Palette) JSONOption { return func(r *jsonRenderer) { r.palette = p } }

type jsonOutput struct {
	Title    string          `json:"title,omitempty"`
	Geometry geometry.Config `json:"geometry"`
	Nodes    []jsonNode      `json:"nodes"`
	Edges    []layout.Edge   `json:"edges"`
}

type jsonNode struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type,omitempty"`
	Depth    int     `json:"depth"`
	ParentID *int64  `json:"parent_id"`
	Level    int     `json:"level"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Fill     string  `json:"fill"`
}

// RenderJSON exports the positioned chart as a pretty-printed JSON document
// for external tools. Nodes appear in layout order with their box size and
// resolved fill color.
func RenderJSON(l layout.Layout, cfg geometry.Config, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{title: DefaultTitle, palette: styles.DefaultPalette}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Title:    r.title,
		Geometry: cfg,
		Nodes:    make([]jsonNode, 0, len(l.Nodes)),
		Edges:    l.Edges,
	}
	if out.Edges == nil {
		out.Edges = []layout.Edge{}
	}
	for _, n := range l.Nodes {
		out.Nodes = append(out.Nodes, jsonNode{
			ID:       n.ID,
			Name:     n.Name,
			Type:     n.Type,
			Depth:    n.Depth,
			ParentID: n.ParentID,
			Level:    n.Level,
			X:        n.X,
			Y:        n.Y,
			Width:    cfg.NodeWidth,
			Height:   cfg.NodeHeight,
			Fill:     r.palette.Fill(n.Depth),
		})
	}
	return json.MarshalIndent(out, "", "  ")
}
