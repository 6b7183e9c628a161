package hierarchy

import (
	"errors"

	errs "github.com/matzehuels/organigram/pkg/errors"
)

// ErrEmpty is returned by [Index] when there are no records. It is not a
// data-integrity failure: callers report "nothing to render" instead.
var ErrEmpty = errors.New("no hierarchy records")

// Tree is a rooted tree over a set of records. Records live in an arena in
// input order; each node holds the arena indices of its children.
//
// A Tree is immutable once built by [Index] or [Tree.Subtree].
type Tree struct {
	records  []Record
	children [][]int
	byID     map[int64]int
	root     int
	maxDepth int
}

// Index builds a [Tree] from records.
//
// Children are grouped in input order. Index returns [ErrEmpty] for an empty
// input and a data-integrity error from pkg/errors when the records do not
// form a single rooted tree.
func Index(records []Record) (*Tree, error) {
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	t := &Tree{
		records:  make([]Record, len(records)),
		children: make([][]int, len(records)),
		byID:     make(map[int64]int, len(records)),
		root:     -1,
		maxDepth: Summarize(records).MaxDepth,
	}
	copy(t.records, records)

	var roots []int64
	for i, r := range t.records {
		if _, dup := t.byID[r.ID]; dup {
			return nil, errs.New(errs.ErrCodeDuplicateID, "record id %d appears more than once", r.ID)
		}
		t.byID[r.ID] = i
		if r.IsRoot() {
			roots = append(roots, r.ID)
			t.root = i
		}
	}

	switch len(roots) {
	case 0:
		return nil, errs.New(errs.ErrCodeNoRoot, "no record without a parent among %d records", len(records))
	case 1:
	default:
		return nil, errs.New(errs.ErrCodeMultipleRoots, "found %d records without a parent: %v", len(roots), roots)
	}

	for i, r := range t.records {
		pid, ok := r.Parent()
		if !ok {
			continue
		}
		p, found := t.byID[pid]
		if !found {
			return nil, errs.New(errs.ErrCodeDanglingParent, "record %d references missing parent %d", r.ID, pid)
		}
		t.children[p] = append(t.children[p], i)
	}

	if reached := t.countReachable(); reached != len(t.records) {
		return nil, errs.New(errs.ErrCodeCycle, "%d of %d records are not reachable from root %d",
			len(t.records)-reached, len(t.records), t.records[t.root].ID)
	}
	return t, nil
}

// countReachable walks from the root with an explicit stack so that a
// malformed input cannot recurse without bound.
func (t *Tree) countReachable() int {
	seen := make([]bool, len(t.records))
	stack := []int{t.root}
	n := 0
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[i] {
			continue
		}
		seen[i] = true
		n++
		stack = append(stack, t.children[i]...)
	}
	return n
}

// Root returns the root record.
func (t *Tree) Root() Record { return t.records[t.root] }

// Roots returns the sibling group of the root: a single-element slice. It is
// the child list stored under the null parent key.
func (t *Tree) Roots() []Record { return []Record{t.records[t.root]} }

// Len returns the number of records in the tree.
func (t *Tree) Len() int { return len(t.records) }

// MaxDepth returns the greatest Depth value across all records.
func (t *Tree) MaxDepth() int { return t.maxDepth }

// Stats returns the aggregate statistics used for dimension planning.
func (t *Tree) Stats() Stats { return Stats{MaxDepth: t.maxDepth, Total: len(t.records)} }

// Record returns the record with the given id.
func (t *Tree) Record(id int64) (Record, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Record{}, false
	}
	return t.records[i], true
}

// Children returns the direct children of id in input order.
// It returns nil for leaves and unknown ids.
func (t *Tree) Children(id int64) []Record {
	i, ok := t.byID[id]
	if !ok || len(t.children[i]) == 0 {
		return nil
	}
	out := make([]Record, len(t.children[i]))
	for k, c := range t.children[i] {
		out[k] = t.records[c]
	}
	return out
}

// ChildCount returns the number of direct children of id.
func (t *Tree) ChildCount(id int64) int {
	i, ok := t.byID[id]
	if !ok {
		return 0
	}
	return len(t.children[i])
}

// Records returns a copy of all records in arena (input) order.
func (t *Tree) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Walk visits every record depth-first, parents before children, in child
// order. level is the distance from the root (root = 0). Returning false from
// fn skips the record's descendants.
func (t *Tree) Walk(fn func(r Record, level int) bool) {
	var visit func(i, level int)
	visit = func(i, level int) {
		if !fn(t.records[i], level) {
			return
		}
		for _, c := range t.children[i] {
			visit(c, level+1)
		}
	}
	visit(t.root, 0)
}

// Subtree returns a new tree rooted at id containing id and all of its
// descendants, in the original input order. The new root's parent reference
// is cleared; depths are kept so palette colors stay stable.
func (t *Tree) Subtree(id int64) (*Tree, error) {
	start, ok := t.byID[id]
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "record %d not found", id)
	}
	if start == t.root {
		return t, nil
	}

	member := make([]bool, len(t.records))
	stack := []int{start}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		member[i] = true
		stack = append(stack, t.children[i]...)
	}

	subset := make([]Record, 0, len(t.records))
	for i, r := range t.records {
		if !member[i] {
			continue
		}
		if i == start {
			r.ParentID = nil
		}
		subset = append(subset, r)
	}
	return Index(subset)
}
