package styles

// DefaultPalette is the fill ramp indexed by depth, darkest first.
var DefaultPalette = Palette{"#1f4e79", "#2e74b5", "#5b9bd5", "#a6bce2", "#c5d5ea", "#e2f0f8"}

// Fixed stroke and text colors.
const (
	StrokeColor     = "#333"
	EdgeColor       = "#555"
	TitleColor      = "#1f4e79"
	BackgroundColor = "#f8f9fa"
	FontFamily      = "Arial, sans-serif"
)

// Palette is an ordered list of fill colors.
type Palette []string

// Fill returns the color for a record depth. Depth 1 (the top level) maps to
// the first entry; deeper levels wrap around. An empty palette yields white.
func (p Palette) Fill(depth int) string {
	if len(p) == 0 {
		return "#fff"
	}
	n := len(p)
	return p[((depth-1)%n+n)%n]
}
