package filesource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	errs "github.com/matzehuels/organigram/pkg/errors"
)

func TestFetchSortsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "org.json")
	data := `[
		{"id": 3, "name": "South", "type": "Region", "depth": 2, "parent_id": 1},
		{"id": 2, "name": "North", "type": "Region", "depth": 2, "parent_id": 1},
		{"id": 1, "name": "HQ", "type": "Command", "depth": 1}
	]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	records, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	want := []int64{1, 2, 3}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i, id := range want {
		if records[i].ID != id {
			t.Errorf("records[%d].ID = %d, want %d", i, records[i].ID, id)
		}
	}
	if src.Name() != "file" {
		t.Errorf("Name() = %q, want file", src.Name())
	}
}

func TestNewRejectsUnknownExtension(t *testing.T) {
	_, err := New("org.csv")
	if !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("New(org.csv) error = %v, want INVALID_FORMAT", err)
	}
}

func TestFetchCanceled(t *testing.T) {
	src, _ := New("org.yaml")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Fetch(ctx); err != context.Canceled {
		t.Errorf("Fetch with canceled context = %v, want context.Canceled", err)
	}
}
