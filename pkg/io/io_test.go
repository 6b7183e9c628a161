package io

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	errs "github.com/matzehuels/organigram/pkg/errors"
	"github.com/matzehuels/organigram/pkg/hierarchy"
)

func sampleRecords() []hierarchy.Record {
	return []hierarchy.Record{
		{ID: 1, Name: "HQ", Type: "Command", Depth: 1},
		{ID: 2, Name: "North", Type: "Region", Depth: 2, ParentID: hierarchy.ParentRef(1)},
	}
}

func TestReadRecordsJSON(t *testing.T) {
	inputs := map[string]string{
		"list": `[
			{"id": 1, "name": "HQ", "type": "Command", "depth": 1, "parent_id": null},
			{"id": 2, "name": "North", "type": "Region", "depth": 2, "parent_id": 1}
		]`,
		"object": `{"records": [
			{"id": 1, "name": "HQ", "type": "Command", "depth": 1},
			{"id": 2, "name": "North", "type": "Region", "depth": 2, "parent_id": 1}
		]}`,
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			got, err := ReadRecords(strings.NewReader(in), FormatJSON)
			if err != nil {
				t.Fatalf("ReadRecords: %v", err)
			}
			if !reflect.DeepEqual(got, sampleRecords()) {
				t.Errorf("ReadRecords = %+v, want %+v", got, sampleRecords())
			}
		})
	}
}

func TestReadRecordsYAML(t *testing.T) {
	inputs := map[string]string{
		"list": `
- {id: 1, name: HQ, type: Command, depth: 1}
- {id: 2, name: North, type: Region, depth: 2, parent_id: 1}
`,
		"object": `
records:
  - id: 1
    name: HQ
    type: Command
    depth: 1
    parent_id: null
  - id: 2
    name: North
    type: Region
    depth: 2
    parent_id: 1
`,
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			got, err := ReadRecords(strings.NewReader(in), FormatYAML)
			if err != nil {
				t.Fatalf("ReadRecords: %v", err)
			}
			if !reflect.DeepEqual(got, sampleRecords()) {
				t.Errorf("ReadRecords = %+v, want %+v", got, sampleRecords())
			}
		})
	}
}

func TestReadRecordsTOML(t *testing.T) {
	in := `
[[records]]
id = 1
name = "HQ"
type = "Command"
depth = 1

[[records]]
id = 2
name = "North"
type = "Region"
depth = 2
parent_id = 1
`
	got, err := ReadRecords(strings.NewReader(in), FormatTOML)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if !reflect.DeepEqual(got, sampleRecords()) {
		t.Errorf("ReadRecords = %+v, want %+v", got, sampleRecords())
	}
}

func TestReadRecordsInvalid(t *testing.T) {
	_, err := ReadRecords(strings.NewReader(`{"records": [`), FormatJSON)
	if !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("malformed JSON: got %v, want INVALID_FORMAT", err)
	}
	_, err = ReadRecords(strings.NewReader(`[]`), Format("xml"))
	if !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("unknown format: got %v, want INVALID_FORMAT", err)
	}
}

func TestRecordsRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteRecords(&buf, sampleRecords(), format); err != nil {
				t.Fatalf("WriteRecords: %v", err)
			}
			got, err := ReadRecords(&buf, format)
			if err != nil {
				t.Fatalf("ReadRecords: %v", err)
			}
			if !reflect.DeepEqual(got, sampleRecords()) {
				t.Errorf("round trip = %+v, want %+v", got, sampleRecords())
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"org.json", FormatJSON, false},
		{"org.YAML", FormatYAML, false},
		{"dir/org.yml", FormatYAML, false},
		{"org.toml", FormatTOML, false},
		{"org.csv", "", true},
		{"org", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatFromPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestImportExportRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "org.yaml")
	if err := ExportRecords(path, sampleRecords()); err != nil {
		t.Fatalf("ExportRecords: %v", err)
	}
	got, err := ImportRecords(path)
	if err != nil {
		t.Fatalf("ImportRecords: %v", err)
	}
	if !reflect.DeepEqual(got, sampleRecords()) {
		t.Errorf("ImportRecords = %+v, want %+v", got, sampleRecords())
	}

	_, err = ImportRecords(filepath.Join(t.TempDir(), "missing.json"))
	if !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("missing file: got %v, want NOT_FOUND", err)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "organigram.svg")

	n, err := WriteFileAtomic(path, []byte("<svg/>"))
	if err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	if n != 6 {
		t.Errorf("bytes written = %d, want 6", n)
	}

	if _, err := WriteFileAtomic(path, []byte("<svg>new</svg>")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<svg>new</svg>" {
		t.Errorf("content = %q, want replaced document", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the artifact", len(entries))
	}
}

func TestWriteFileAtomicFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "organigram.svg")
	_, err := WriteFileAtomic(path, []byte("<svg/>"))
	if !errs.Is(err, errs.ErrCodeWrite) {
		t.Fatalf("got %v, want WRITE_FAILED", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("cause should be the OS error, got %v", err)
	}
}

func TestWriteFilesAtomic(t *testing.T) {
	dir := t.TempDir()
	svg := filepath.Join(dir, "org.svg")
	if err := os.WriteFile(svg, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	sizes, err := WriteFilesAtomic([]File{
		{Path: svg, Data: []byte("<svg/>")},
		{Path: filepath.Join(dir, "org.json"), Data: []byte("{}")},
	})
	if err != nil {
		t.Fatalf("WriteFilesAtomic: %v", err)
	}
	if !reflect.DeepEqual(sizes, []int{6, 2}) {
		t.Errorf("sizes = %v, want [6 2]", sizes)
	}
	if data, _ := os.ReadFile(svg); string(data) != "<svg/>" {
		t.Errorf("org.svg = %q, want replaced", data)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("directory has %d entries, want the two artifacts", len(entries))
	}
}

func TestWriteFilesAtomicLeavesEarlierFiles(t *testing.T) {
	dir := t.TempDir()
	svg := filepath.Join(dir, "org.svg")
	if err := os.WriteFile(svg, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	blocked := filepath.Join(dir, "org.json")
	if err := os.MkdirAll(filepath.Join(blocked, "keep"), 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := WriteFilesAtomic([]File{
		{Path: svg, Data: []byte("<svg/>")},
		{Path: blocked, Data: []byte("{}")},
	})
	if !errs.Is(err, errs.ErrCodeWrite) {
		t.Fatalf("got %v, want WRITE_FAILED", err)
	}
	if data, _ := os.ReadFile(svg); string(data) != "old" {
		t.Errorf("org.svg = %q, want untouched", data)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("directory has %d entries, want no temp files left", len(entries))
	}
}

func TestStagedFileRollback(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "org.svg")
	if err := os.WriteFile(existing, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	fresh := filepath.Join(dir, "org.txt")

	var staged []*stagedFile
	for _, path := range []string{existing, fresh} {
		s, err := stage(path, []byte("new"))
		if err != nil {
			t.Fatalf("stage %s: %v", path, err)
		}
		if err := s.commit(); err != nil {
			t.Fatalf("commit %s: %v", path, err)
		}
		staged = append(staged, s)
	}
	for _, s := range staged {
		s.rollback()
		s.cleanup()
	}

	if data, _ := os.ReadFile(existing); string(data) != "old" {
		t.Errorf("org.svg = %q, want previous content restored", data)
	}
	if _, err := os.Stat(fresh); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("org.txt should be removed on rollback, stat err = %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the restored file", len(entries))
	}
}
