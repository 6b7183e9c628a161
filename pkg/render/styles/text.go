package styles

import (
	"bytes"
	"encoding/xml"
)

// Label truncation defaults.
const (
	DefaultMaxLabel = 28
	Ellipsis        = "..."
)

// TruncateLabel shortens s to maxChars-3 runes plus [Ellipsis] when it is
// longer than maxChars runes. Shorter labels are returned unchanged.
// Limits too small to hold the ellipsis cut the name without one, so the
// result never exceeds maxChars runes. Non-positive maxChars disables
// truncation.
func TruncateLabel(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	if maxChars <= len(Ellipsis) {
		return string(runes[:maxChars])
	}
	return string(runes[:maxChars-len(Ellipsis)]) + Ellipsis
}

// EscapeXML escapes s for use in SVG text content and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
