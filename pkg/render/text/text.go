// Package text prints a hierarchy as an indented box-drawing tree.
//
//	HQ (Command) #1
//	├── North (Region) #2
//	│   └── Depot (Site) #4
//	└── South (Region) #3
//
// The tree is built with [github.com/ddddddO/gtree]. Each line carries the
// record id so that siblings with equal names stay distinct.
package text

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ddddddO/gtree"

	"github.com/matzehuels/organigram/pkg/hierarchy"
	"github.com/matzehuels/organigram/pkg/render/styles"
)

// Options configures the text tree.
type Options struct {
	// MaxDepth limits how many levels below the root are printed.
	// Zero prints the whole tree.
	MaxDepth int

	// MaxLabel truncates long names. Zero disables truncation.
	MaxLabel int
}

// Write prints t to w.
func Write(w io.Writer, t *hierarchy.Tree, opts Options) error {
	nodes := make(map[int64]*gtree.Node, t.Len())
	var root *gtree.Node

	t.Walk(func(r hierarchy.Record, level int) bool {
		label := Label(r, opts.MaxLabel)
		if level == 0 {
			root = gtree.NewRoot(label)
			nodes[r.ID] = root
		} else {
			pid, _ := r.Parent()
			nodes[r.ID] = nodes[pid].Add(label)
		}
		return opts.MaxDepth == 0 || level < opts.MaxDepth
	})

	if err := gtree.OutputFromRoot(w, root); err != nil {
		return fmt.Errorf("output tree: %w", err)
	}
	return nil
}

// Render returns the text tree as bytes.
func Render(t *hierarchy.Tree, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, t, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Label formats one tree line: name, type in parentheses when set, and id.
func Label(r hierarchy.Record, maxLabel int) string {
	name := styles.TruncateLabel(r.Name, maxLabel)
	if r.Type == "" {
		return fmt.Sprintf("%s #%d", name, r.ID)
	}
	return fmt.Sprintf("%s (%s) #%d", name, r.Type, r.ID)
}
