// Package filesource reads hierarchy records from a JSON, YAML or TOML file.
package filesource

import (
	"context"

	"github.com/matzehuels/organigram/pkg/hierarchy"
	"github.com/matzehuels/organigram/pkg/io"
)

// Source reads one record file.
type Source struct {
	path string
}

// New returns a source for path. The format is chosen from the extension;
// an unsupported extension is reported here rather than at fetch time.
func New(path string) (*Source, error) {
	if _, err := io.FormatFromPath(path); err != nil {
		return nil, err
	}
	return &Source{path: path}, nil
}

// Name returns "file".
func (s *Source) Name() string { return "file" }

// Path returns the file path.
func (s *Source) Path() string { return s.path }

// Fetch reads the file and sorts the records by depth and name, which is
// the order a database query would deliver.
func (s *Source) Fetch(ctx context.Context) ([]hierarchy.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := io.ImportRecords(s.path)
	if err != nil {
		return nil, err
	}
	hierarchy.SortRecords(records)
	return records, nil
}

// Close is a no-op.
func (s *Source) Close() error { return nil }
