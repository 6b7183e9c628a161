// Package hierarchy reconstructs an organizational tree from flat
// parent-pointer records.
//
// # Overview
//
// Hierarchy data arrives as a flat list of [Record] values, each naming its
// parent by id. [Index] turns that list into a [Tree]: an arena of records
// with ordered child lists and exactly one root.
//
//	t, err := hierarchy.Index(records)
//	if errors.Is(err, hierarchy.ErrEmpty) {
//	    // nothing to render
//	}
//	for _, child := range t.Children(t.Root().ID) {
//	    fmt.Println(child.Name)
//	}
//
// # Ordering
//
// Children keep the order in which they appear in the input. Sources are
// expected to deliver records sorted by depth and then by name; [SortRecords]
// applies that ordering for sources that cannot sort on their own.
//
// # Integrity
//
// The record set must form a single rooted tree. [Index] rejects inputs with
// no root, several roots, duplicate ids, parents that do not exist, or
// records that are unreachable from the root (which can only happen through
// a cycle). Each failure is a structured error from pkg/errors carrying a
// data-integrity code; nothing is silently dropped.
package hierarchy
