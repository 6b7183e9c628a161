package layout

import (
	"encoding/json"
	"fmt"

	errs "github.com/matzehuels/organigram/pkg/errors"
	"github.com/matzehuels/organigram/pkg/geometry"
	"github.com/matzehuels/organigram/pkg/hierarchy"
)

// MarginX is the x coordinate of the root column.
const MarginX = 180

// Node is a record with its computed position. X and Y are the top-left
// corner of the node's box.
type Node struct {
	hierarchy.Record
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Level  int     `json:"level"`
	Offset float64 `json:"offset"`
}

// Edge connects a parent to one of its children.
type Edge struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// Layout holds the positioned nodes and edges of one tree.
type Layout struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Nodes  []Node `json:"nodes"`
	Edges  []Edge `json:"edges"`

	index map[int64]int
}

// Node returns the positioned node with the given record id.
func (l Layout) Node(id int64) (Node, bool) {
	if l.index == nil {
		for _, n := range l.Nodes {
			if n.ID == id {
				return n, true
			}
		}
		return Node{}, false
	}
	i, ok := l.index[id]
	if !ok {
		return Node{}, false
	}
	return l.Nodes[i], true
}

// Offsets returns the vertical offsets of parent's children in child order.
func (l Layout) Offsets(parent int64) []float64 {
	var out []float64
	for _, e := range l.Edges {
		if e.From != parent {
			continue
		}
		if n, ok := l.Node(e.To); ok {
			out = append(out, n.Offset)
		}
	}
	return out
}

// Build positions every record of t using the dimensions in cfg.
//
// Each record is visited exactly once; a record reached a second time is
// reported as a CYCLE data-integrity error.
func Build(t *hierarchy.Tree, cfg geometry.Config) (Layout, error) {
	b := builder{
		tree:    t,
		cfg:     cfg,
		centerY: float64(cfg.Height / 2),
		l: Layout{
			Width:  cfg.Width,
			Height: cfg.Height,
			Nodes:  make([]Node, 0, t.Len()),
			Edges:  make([]Edge, 0, max(0, t.Len()-1)),
			index:  make(map[int64]int, t.Len()),
		},
	}
	if err := b.place(t.Roots(), 0); err != nil {
		return Layout{}, err
	}
	return b.l, nil
}

type builder struct {
	tree    *hierarchy.Tree
	cfg     geometry.Config
	centerY float64
	l       Layout
}

// place positions a sibling group at level, records the edge from the
// group's parent to each member, and recurses into each member's children.
func (b *builder) place(group []hierarchy.Record, level int) error {
	count := len(group)
	for idx, r := range group {
		if _, seen := b.l.index[r.ID]; seen {
			return errs.New(errs.ErrCodeCycle, "record %d reached twice during layout", r.ID)
		}

		offset := SiblingOffset(idx, count, b.cfg.VSpacing)
		b.l.index[r.ID] = len(b.l.Nodes)
		b.l.Nodes = append(b.l.Nodes, Node{
			Record: r,
			X:      float64(MarginX + level*b.cfg.HSpacing),
			Y:      b.centerY + offset,
			Level:  level,
			Offset: offset,
		})
		if pid, ok := r.Parent(); ok && level > 0 {
			b.l.Edges = append(b.l.Edges, Edge{From: pid, To: r.ID})
		}

		if children := b.tree.Children(r.ID); len(children) > 0 {
			if err := b.place(children, level+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// SiblingOffset returns the vertical offset of the idx-th member of a
// sibling group of size count. Offsets are symmetric around zero; a group of
// one sits at zero.
func SiblingOffset(idx, count, spacing int) float64 {
	if count <= 1 {
		return 0
	}
	return (float64(idx) - float64(count-1)/2) * float64(spacing)
}

// Marshal serializes a layout to pretty-printed JSON.
func Marshal(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// Unmarshal decodes a layout produced by [Marshal].
func Unmarshal(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	l.index = make(map[int64]int, len(l.Nodes))
	for i, n := range l.Nodes {
		l.index[n.ID] = i
	}
	return l, nil
}
