package hierarchy

import (
	"cmp"
	"slices"
)

// Record is one entry of the organizational hierarchy as delivered by a
// data source.
type Record struct {
	ID       int64  `json:"id" yaml:"id" toml:"id" bson:"id"`
	Name     string `json:"name" yaml:"name" toml:"name" bson:"name"`
	Type     string `json:"type" yaml:"type" toml:"type" bson:"type"`
	Depth    int    `json:"depth" yaml:"depth" toml:"depth" bson:"depth"`
	ParentID *int64 `json:"parent_id" yaml:"parent_id" toml:"parent_id,omitempty" bson:"parent_id"`
}

// IsRoot reports whether the record has no parent.
func (r Record) IsRoot() bool { return r.ParentID == nil }

// Parent returns the parent id and whether one is set.
func (r Record) Parent() (int64, bool) {
	if r.ParentID == nil {
		return 0, false
	}
	return *r.ParentID, true
}

// ParentRef returns a pointer suitable for [Record.ParentID].
func ParentRef(id int64) *int64 { return &id }

// Stats summarizes a record set for dimension planning.
type Stats struct {
	MaxDepth int // greatest Depth value across all records
	Total    int // number of records
}

// Summarize computes [Stats] over records. An empty slice yields the zero value.
func Summarize(records []Record) Stats {
	s := Stats{Total: len(records)}
	for i, r := range records {
		if i == 0 || r.Depth > s.MaxDepth {
			s.MaxDepth = r.Depth
		}
	}
	return s
}

// SortRecords orders records by depth, then name, then id, in place.
// This is the display order sources are expected to deliver.
func SortRecords(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		return cmp.Or(
			cmp.Compare(a.Depth, b.Depth),
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.ID, b.ID),
		)
	})
}
