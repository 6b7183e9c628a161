// Package layout assigns canvas positions to the records of a hierarchy.
//
// # Placement
//
// [Build] walks the tree depth-first from the root. A node at tree level L
// (root = 0) is placed at x = [MarginX] + L*HSpacing. Its vertical position is
// the canvas centre plus an offset computed within its sibling group:
//
//	offset = (index - (count-1)/2) * VSpacing   // 0 for a single child
//
// Each sibling group is centred on its own; children are not forced under
// their parent's y. Wide groups at deeper levels may therefore overlap boxes
// from other groups, which the fixed-viewport dimension planner accepts.
//
// # Edges
//
// One [Edge] is recorded each time a child is placed, so edges come out
// parent-first in depth-first order. The order carries no meaning beyond
// deterministic output.
//
// # Serialization
//
// [Layout] marshals to JSON for export and for the HTTP server:
//
//	data, err := layout.Marshal(l)
package layout
