package hierarchy

import (
	"errors"
	"testing"

	errs "github.com/matzehuels/organigram/pkg/errors"
)

func rec(id int64, name string, depth int, parent ...int64) Record {
	r := Record{ID: id, Name: name, Type: "Unit", Depth: depth}
	if len(parent) > 0 {
		r.ParentID = ParentRef(parent[0])
	}
	return r
}

func sampleRecords() []Record {
	return []Record{
		rec(1, "Armee", 1),
		rec(2, "Heer", 2, 1),
		rec(3, "Luftwaffe", 2, 1),
		rec(4, "Ter Div 1", 3, 2),
		rec(5, "Ter Div 2", 3, 2),
		rec(6, "Flpl Kdo", 3, 3),
	}
}

func TestIndex(t *testing.T) {
	tree, err := Index(sampleRecords())
	if err != nil {
		t.Fatalf("Index: %v", err)
	}

	if got := tree.Root().ID; got != 1 {
		t.Errorf("Root().ID = %d, want 1", got)
	}
	if got := tree.Len(); got != 6 {
		t.Errorf("Len() = %d, want 6", got)
	}
	if got := tree.MaxDepth(); got != 3 {
		t.Errorf("MaxDepth() = %d, want 3", got)
	}

	children := tree.Children(2)
	if len(children) != 2 || children[0].ID != 4 || children[1].ID != 5 {
		t.Errorf("Children(2) = %v, want [4 5] in input order", children)
	}
	if got := tree.Children(6); got != nil {
		t.Errorf("Children(leaf) = %v, want nil", got)
	}
	if got := tree.Children(99); got != nil {
		t.Errorf("Children(unknown) = %v, want nil", got)
	}

	roots := tree.Roots()
	if len(roots) != 1 || roots[0].ID != 1 {
		t.Errorf("Roots() = %v, want [1]", roots)
	}
}

func TestIndexPartitionsAllChildren(t *testing.T) {
	records := sampleRecords()
	tree, err := Index(records)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}

	sum := 0
	for _, r := range records {
		for _, c := range tree.Children(r.ID) {
			if pid, _ := c.Parent(); pid != r.ID {
				t.Errorf("child %d listed under %d but has parent %d", c.ID, r.ID, pid)
			}
		}
		sum += tree.ChildCount(r.ID)
	}
	if sum != len(records)-1 {
		t.Errorf("sum of child counts = %d, want %d", sum, len(records)-1)
	}
}

func TestIndexKeepsInputOrder(t *testing.T) {
	records := []Record{
		rec(1, "Root", 1),
		rec(3, "Zulu", 2, 1),
		rec(2, "Alpha", 2, 1),
	}
	tree, err := Index(records)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	children := tree.Children(1)
	if children[0].Name != "Zulu" || children[1].Name != "Alpha" {
		t.Errorf("Children order = [%s %s], want [Zulu Alpha]", children[0].Name, children[1].Name)
	}
}

func TestIndexErrors(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		code    errs.Code
	}{
		{
			name:    "no root",
			records: []Record{rec(1, "a", 1, 2), rec(2, "b", 2, 1)},
			code:    errs.ErrCodeNoRoot,
		},
		{
			name:    "multiple roots",
			records: []Record{rec(1, "a", 1), rec(2, "b", 1)},
			code:    errs.ErrCodeMultipleRoots,
		},
		{
			name:    "dangling parent",
			records: []Record{rec(1, "a", 1), rec(2, "b", 2, 42)},
			code:    errs.ErrCodeDanglingParent,
		},
		{
			name:    "duplicate id",
			records: []Record{rec(1, "a", 1), rec(1, "b", 2, 1)},
			code:    errs.ErrCodeDuplicateID,
		},
		{
			name: "cycle detached from root",
			records: []Record{
				rec(1, "root", 1),
				rec(2, "x", 2, 3),
				rec(3, "y", 2, 2),
			},
			code: errs.ErrCodeCycle,
		},
		{
			name:    "self parent",
			records: []Record{rec(1, "root", 1), rec(2, "loop", 2, 2)},
			code:    errs.ErrCodeCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Index(tt.records)
			if err == nil {
				t.Fatalf("Index() = %v, want error %s", tree, tt.code)
			}
			if !errs.Is(err, tt.code) {
				t.Errorf("Index() error = %v, want code %s", err, tt.code)
			}
			if !errs.IsDataIntegrity(err) {
				t.Errorf("IsDataIntegrity(%v) = false, want true", err)
			}
		})
	}
}

func TestIndexEmpty(t *testing.T) {
	_, err := Index(nil)
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("Index(nil) error = %v, want ErrEmpty", err)
	}
	if errs.IsDataIntegrity(err) {
		t.Error("empty input must not be reported as a data-integrity error")
	}
}

func TestIndexDoesNotAliasInput(t *testing.T) {
	records := sampleRecords()
	tree, err := Index(records)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	records[0].Name = "changed"
	if tree.Root().Name != "Armee" {
		t.Errorf("Root().Name = %q, tree must copy its input", tree.Root().Name)
	}
}

func TestWalk(t *testing.T) {
	tree, err := Index(sampleRecords())
	if err != nil {
		t.Fatalf("Index: %v", err)
	}

	var order []int64
	var levels []int
	tree.Walk(func(r Record, level int) bool {
		order = append(order, r.ID)
		levels = append(levels, level)
		return true
	})

	wantOrder := []int64{1, 2, 4, 5, 3, 6}
	wantLevels := []int{0, 1, 2, 2, 1, 2}
	for i := range wantOrder {
		if order[i] != wantOrder[i] || levels[i] != wantLevels[i] {
			t.Fatalf("Walk order = %v levels %v, want %v levels %v", order, levels, wantOrder, wantLevels)
		}
	}

	var pruned []int64
	tree.Walk(func(r Record, _ int) bool {
		pruned = append(pruned, r.ID)
		return r.ID != 2
	})
	if len(pruned) != 4 {
		t.Errorf("pruned Walk visited %v, want 4 records", pruned)
	}
}

func TestSubtree(t *testing.T) {
	tree, err := Index(sampleRecords())
	if err != nil {
		t.Fatalf("Index: %v", err)
	}

	sub, err := tree.Subtree(2)
	if err != nil {
		t.Fatalf("Subtree: %v", err)
	}
	if sub.Root().ID != 2 || !sub.Root().IsRoot() {
		t.Errorf("Subtree root = %+v, want id 2 without parent", sub.Root())
	}
	if sub.Len() != 3 {
		t.Errorf("Subtree Len() = %d, want 3", sub.Len())
	}
	if sub.Root().Depth != 2 {
		t.Errorf("Subtree root depth = %d, want original depth 2", sub.Root().Depth)
	}

	// The original tree is unchanged.
	if r, _ := tree.Record(2); r.IsRoot() {
		t.Error("Subtree must not modify the source tree")
	}

	same, err := tree.Subtree(1)
	if err != nil || same != tree {
		t.Errorf("Subtree(root) = %v, %v, want the same tree", same, err)
	}

	if _, err := tree.Subtree(99); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("Subtree(99) error = %v, want NOT_FOUND", err)
	}
}

func TestSummarize(t *testing.T) {
	if got := Summarize(nil); got != (Stats{}) {
		t.Errorf("Summarize(nil) = %+v, want zero", got)
	}
	got := Summarize(sampleRecords())
	if got.MaxDepth != 3 || got.Total != 6 {
		t.Errorf("Summarize() = %+v, want {MaxDepth:3 Total:6}", got)
	}
}

func TestSortRecords(t *testing.T) {
	records := []Record{
		rec(3, "Beta", 2, 1),
		rec(1, "Root", 1),
		rec(4, "Alpha", 3, 3),
		rec(2, "Alpha", 2, 1),
	}
	SortRecords(records)

	want := []int64{1, 2, 3, 4}
	for i, id := range want {
		if records[i].ID != id {
			t.Fatalf("SortRecords order = %v, want ids %v", records, want)
		}
	}
}
