// Package geometry derives canvas and node dimensions from the shape of a
// hierarchy.
//
// [Plan] scales a fixed set of base dimensions down for deep or large trees
// and clamps the canvas to a fixed viewport, so the rendered chart fits a
// laptop screen regardless of tree size. Large trees are allowed to crowd
// (boxes may overlap) rather than grow the canvas without bound.
//
//	cfg := geometry.Plan(t.MaxDepth(), t.Len())
//	fmt.Println(cfg.Width, cfg.Height, cfg.Scale)
package geometry

import "fmt"

// Base dimensions at scale 1.0.
const (
	BaseNodeWidth    = 210
	BaseNodeHeight   = 65
	BaseHSpacing     = 260 // between depth levels
	BaseVSpacing     = 110 // between siblings
	BaseFontSizeName = 15
	BaseFontSizeType = 12
)

// Canvas sizing constants.
const (
	LeadingMargin  = 400
	TrailingMargin = 200
	MinHeight      = 1300
	HeightOffset   = 300
	MaxWidth       = 1900
	MaxHeight      = 1300
)

// Scale tiers.
const (
	ScaleDefault = 1.0
	ScaleCompact = 0.78
	ScaleDense   = 0.68

	compactMaxLevel   = 6
	compactTotalNodes = 120
	denseTotalNodes   = 180
)

// Config is the set of sizing constants for one rendering pass.
// It is a value type; copies are independent.
type Config struct {
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	NodeWidth    int     `json:"node_width"`
	NodeHeight   int     `json:"node_height"`
	HSpacing     int     `json:"horizontal_spacing"`
	VSpacing     int     `json:"vertical_spacing"`
	FontSizeName int     `json:"font_size_name"`
	FontSizeType int     `json:"font_size_type"`
	Scale        float64 `json:"scale"`
}

// String returns a compact human-readable summary.
func (c Config) String() string {
	return fmt.Sprintf("%dx%d px, node %dx%d, spacing %d/%d, scale %.2f",
		c.Width, c.Height, c.NodeWidth, c.NodeHeight, c.HSpacing, c.VSpacing, c.Scale)
}

// ScaleFactor returns the scale tier for a tree with the given maximum depth
// and node count.
func ScaleFactor(maxLevel, totalNodes int) float64 {
	factor := ScaleDefault
	if maxLevel >= compactMaxLevel || totalNodes > compactTotalNodes {
		factor = ScaleCompact
	}
	if totalNodes > denseTotalNodes {
		factor = ScaleDense
	}
	return factor
}

// Plan computes the [Config] for a tree with the given maximum depth value
// and node count. It is pure: equal inputs always yield equal output.
func Plan(maxLevel, totalNodes int) Config {
	factor := ScaleFactor(maxLevel, totalNodes)

	c := Config{
		NodeWidth:    scaled(BaseNodeWidth, factor),
		NodeHeight:   scaled(BaseNodeHeight, factor),
		HSpacing:     scaled(BaseHSpacing, factor),
		VSpacing:     scaled(BaseVSpacing, factor),
		FontSizeName: scaled(BaseFontSizeName, factor),
		FontSizeType: scaled(BaseFontSizeType, factor),
		Scale:        factor,
	}

	width := LeadingMargin + (maxLevel+1)*c.HSpacing + TrailingMargin
	height := max(MinHeight, totalNodes*c.VSpacing/4+HeightOffset)

	c.Width = min(width, MaxWidth)
	c.Height = min(height, MaxHeight)
	return c
}

// scaled applies factor to base and truncates toward zero.
func scaled(base int, factor float64) int {
	return int(float64(base) * factor)
}
