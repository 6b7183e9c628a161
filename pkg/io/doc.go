// Package io reads and writes hierarchy record files and persists rendered
// artifacts.
//
// # Record Files
//
// A record file holds the flat parent-pointer list that [hierarchy.Index]
// consumes. Three encodings are supported, chosen by file extension:
//
//	.json          [{"id": 1, "name": "HQ", "type": "Command", "depth": 1, "parent_id": null}, ...]
//	.yaml / .yml   - {id: 1, name: HQ, type: Command, depth: 1}
//	.toml          [[records]]
//	               id = 1
//	               name = "HQ"
//
// JSON and YAML accept either a top-level list or an object with a "records"
// list. TOML always uses the "records" array of tables, since a TOML
// document cannot be a bare list.
//
// Use [ImportRecords] to read a file by path, or [ReadRecords] to decode from
// any io.Reader. [ExportRecords] and [WriteRecords] do the reverse. Records
// are returned in file order; callers that need display order apply
// [hierarchy.SortRecords].
//
// # Artifacts
//
// [WriteFileAtomic] writes a finished artifact to a temporary file in the
// destination directory and renames it into place, so a reader never sees a
// partially written chart and an existing file survives a failed run.
// [WriteFilesAtomic] does the same for a batch of artifacts and rolls back
// the files it already replaced when a later one cannot be committed.
//
// [hierarchy.Index]: github.com/matzehuels/organigram/pkg/hierarchy.Index
// [hierarchy.SortRecords]: github.com/matzehuels/organigram/pkg/hierarchy.SortRecords
package io
