// Package styles holds the presentation policy for organization charts:
// the depth-keyed fill palette, label truncation and text escaping.
//
// The defaults match the classic chart look: a six-step blue ramp from the
// darkest top level to the lightest, and names cut to 25 characters plus an
// ellipsis once they exceed 28 characters.
package styles
