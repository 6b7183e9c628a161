package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/organigram/pkg/errors"
	"github.com/matzehuels/organigram/pkg/hierarchy"
)

type stubSource struct {
	records []hierarchy.Record
	err     error
}

func (s stubSource) Name() string { return "stub" }
func (s stubSource) Fetch(context.Context) ([]hierarchy.Record, error) {
	return s.records, s.err
}
func (s stubSource) Close() error { return nil }

func quietRunner() *Runner {
	return NewRunner(log.NewWithOptions(io.Discard, log.Options{}))
}

func threeUnits() []hierarchy.Record {
	return []hierarchy.Record{
		{ID: 1, Name: "HQ", Type: "Command", Depth: 1},
		{ID: 2, Name: "North", Type: "Region", Depth: 2, ParentID: hierarchy.ParentRef(1)},
		{ID: 3, Name: "South", Type: "Region", Depth: 2, ParentID: hierarchy.ParentRef(1)},
	}
}

// wideTree returns total records whose deepest record sits at depth maxDepth:
// a chain from the root down to maxDepth, the rest hanging off the root.
func wideTree(total, maxDepth int) []hierarchy.Record {
	records := []hierarchy.Record{{ID: 1, Name: "Root", Type: "Command", Depth: 1}}
	parent := int64(1)
	for d := 2; d <= maxDepth; d++ {
		id := int64(d)
		records = append(records, hierarchy.Record{ID: id, Name: fmt.Sprintf("Chain %d", d), Type: "Unit", Depth: d, ParentID: hierarchy.ParentRef(parent)})
		parent = id
	}
	for id := int64(len(records) + 1); len(records) < total; id++ {
		records = append(records, hierarchy.Record{ID: id, Name: fmt.Sprintf("Unit %03d", id), Type: "Unit", Depth: 2, ParentID: hierarchy.ParentRef(1)})
	}
	return records
}

func TestExecuteThreeUnits(t *testing.T) {
	result, err := quietRunner().Execute(context.Background(), stubSource{records: threeUnits()}, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Status != StatusRendered {
		t.Errorf("Status = %v, want rendered", result.Status)
	}

	g := result.Geometry
	if g.Scale != 1.0 || g.Width != 1380 || g.Height != 1300 {
		t.Errorf("Geometry = %+v, want scale 1.0, 1380x1300", g)
	}

	svg := string(result.Artifacts[FormatSVG])
	if got := strings.Count(svg, `<rect class="node"`); got != 3 {
		t.Errorf("node boxes = %d, want 3", got)
	}
	if got := strings.Count(svg, `<path class="edge"`); got != 2 {
		t.Errorf("edges = %d, want 2", got)
	}

	s := result.Stats
	if s.Records != 3 || s.Nodes != 3 || s.Edges != 2 || s.MaxDepth != 2 {
		t.Errorf("Stats = %+v", s)
	}
	if len(result.Files) != 0 {
		t.Errorf("Files = %v, want none without Output", result.Files)
	}
	if result.Source != "stub" {
		t.Errorf("Source = %q, want stub", result.Source)
	}
	if result.Summary() != "3 units, max level 2, canvas 1380x1300, scale 1.00" {
		t.Errorf("Summary() = %q", result.Summary())
	}
}

func TestExecuteLargeTreeClampsCanvas(t *testing.T) {
	result, err := quietRunner().Execute(context.Background(), stubSource{records: wideTree(200, 4)}, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	g := result.Geometry
	if g.Scale != 0.68 {
		t.Errorf("Scale = %v, want 0.68", g.Scale)
	}
	if g.Height != 1300 {
		t.Errorf("Height = %d, want clamp 1300", g.Height)
	}
	if g.Width > 1900 {
		t.Errorf("Width = %d, want <= 1900", g.Width)
	}
	if g.NodeWidth != 142 || g.HSpacing != 176 {
		t.Errorf("node width/spacing = %d/%d, want 142/176", g.NodeWidth, g.HSpacing)
	}
	if result.Stats.Nodes != 200 || result.Stats.Edges != 199 {
		t.Errorf("Stats = %+v", result.Stats)
	}
}

func TestExecuteEmpty(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "organigram.svg")
	if err := os.WriteFile(out, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := quietRunner().Execute(context.Background(), stubSource{}, Options{Output: out})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Status != StatusEmpty {
		t.Errorf("Status = %v, want empty", result.Status)
	}
	if len(result.Artifacts) != 0 || len(result.Files) != 0 {
		t.Error("empty run must not render or write")
	}
	data, _ := os.ReadFile(out)
	if string(data) != "previous" {
		t.Error("empty run must leave existing output untouched")
	}
}

func TestExecuteDataIntegrityErrors(t *testing.T) {
	twoRoots := []hierarchy.Record{
		{ID: 1, Name: "A", Depth: 1},
		{ID: 2, Name: "B", Depth: 1},
	}
	_, err := quietRunner().Execute(context.Background(), stubSource{records: twoRoots}, Options{})
	if !errs.Is(err, errs.ErrCodeMultipleRoots) {
		t.Errorf("got %v, want MULTIPLE_ROOTS", err)
	}
	if !errs.IsDataIntegrity(err) {
		t.Error("multiple roots should be a data-integrity error")
	}
}

func TestExecuteFetchError(t *testing.T) {
	boom := errors.New("db down")
	_, err := quietRunner().Execute(context.Background(), stubSource{err: boom}, Options{})
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want wrapped fetch error", err)
	}
}

// blockingSource waits for its context and reports the failure the way a
// database driver would.
type blockingSource struct{}

func (blockingSource) Name() string { return "blocking" }
func (blockingSource) Fetch(ctx context.Context) ([]hierarchy.Record, error) {
	<-ctx.Done()
	return nil, errs.Wrap(errs.ErrCodeSource, ctx.Err(), "query units")
}
func (blockingSource) Close() error { return nil }

func TestExecuteFetchTimeout(t *testing.T) {
	_, err := quietRunner().Execute(context.Background(), blockingSource{}, Options{FetchTimeout: 10 * time.Millisecond})
	if !errs.Is(err, errs.ErrCodeTimeout) {
		t.Fatalf("got %v, want TIMEOUT", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("cause should be the deadline, got %v", err)
	}
}

func TestExecuteCancelledIsNotTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := quietRunner().Execute(ctx, blockingSource{}, Options{FetchTimeout: time.Minute})
	if errs.Is(err, errs.ErrCodeTimeout) {
		t.Errorf("cancellation reported as timeout: %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	_, err := quietRunner().Execute(context.Background(), stubSource{records: threeUnits()}, Options{Formats: []string{"gif"}})
	if !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("got %v, want INVALID_FORMAT", err)
	}
}

func TestExecuteSubtree(t *testing.T) {
	records := append(threeUnits(), hierarchy.Record{ID: 4, Name: "Depot", Type: "Site", Depth: 3, ParentID: hierarchy.ParentRef(2)})
	result, err := quietRunner().Execute(context.Background(), stubSource{records: records}, Options{RootID: hierarchy.ParentRef(2)})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Stats.Records != 4 || result.Stats.Nodes != 2 || result.Stats.Edges != 1 {
		t.Errorf("Stats = %+v, want 4 records, 2 nodes, 1 edge", result.Stats)
	}
	if root := result.Layout.Nodes[0]; root.ID != 2 || root.X != 180 {
		t.Errorf("subtree root = %+v", root)
	}

	_, err = quietRunner().Execute(context.Background(), stubSource{records: records}, Options{RootID: hierarchy.ParentRef(99)})
	if !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("unknown root: got %v, want NOT_FOUND", err)
	}
}

func TestExecuteWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		Title:   "Armee",
		Formats: []string{FormatSVG, FormatJSON, FormatDOT, FormatText},
		Output:  filepath.Join(dir, "org.svg"),
	}
	result, err := quietRunner().Execute(context.Background(), stubSource{records: threeUnits()}, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := []string{"org.svg", "org.json", "org.dot", "org.txt"}
	if len(result.Files) != len(want) {
		t.Fatalf("Files = %+v", result.Files)
	}
	for i, name := range want {
		f := result.Files[i]
		if filepath.Base(f.Path) != name {
			t.Errorf("Files[%d].Path = %s, want %s", i, f.Path, name)
		}
		info, err := os.Stat(f.Path)
		if err != nil {
			t.Errorf("stat %s: %v", f.Path, err)
			continue
		}
		if int(info.Size()) != f.Size {
			t.Errorf("%s size = %d, reported %d", name, info.Size(), f.Size)
		}
	}

	svg, _ := os.ReadFile(filepath.Join(dir, "org.svg"))
	if !strings.Contains(string(svg), ">Armee</text>") {
		t.Error("title missing from written SVG")
	}
}

func TestExecuteWriteFailure(t *testing.T) {
	out := filepath.Join(t.TempDir(), "missing", "org.svg")
	_, err := quietRunner().Execute(context.Background(), stubSource{records: threeUnits()}, Options{Output: out})
	if !errs.Is(err, errs.ErrCodeWrite) {
		t.Errorf("got %v, want WRITE_FAILED", err)
	}
}

func TestExecuteWriteIsAllOrNothing(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "org.svg")
	if err := os.WriteFile(out, []byte("OLD"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "org.json", "keep"), 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := quietRunner().Execute(context.Background(), stubSource{records: threeUnits()},
		Options{Output: out, Formats: []string{FormatSVG, FormatJSON}})
	if !errs.Is(err, errs.ErrCodeWrite) {
		t.Fatalf("got %v, want WRITE_FAILED", err)
	}
	if data, _ := os.ReadFile(out); string(data) != "OLD" {
		t.Errorf("org.svg = %q, want untouched when another format fails", data)
	}
}

func TestRunIDsAreUnique(t *testing.T) {
	r := quietRunner()
	a, _ := r.Execute(context.Background(), stubSource{records: threeUnits()}, Options{})
	b, _ := r.Execute(context.Background(), stubSource{records: threeUnits()}, Options{})
	if a.RunID == b.RunID {
		t.Error("each run should get a fresh id")
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"json", false},
		{"dot", false},
		{"nodelink", false},
		{"png", false},
		{"pdf", false},
		{"txt", false},
		{"SVG", true},
		{"gif", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		base, format, want string
	}{
		{"org.svg", FormatSVG, "org.svg"},
		{"org.svg", FormatPNG, "org.png"},
		{"org.svg", FormatNodelink, "org.nodelink.svg"},
		{"org.nodelink.svg", FormatJSON, "org.json"},
		{"org.SVG", FormatSVG, "org.SVG"},
		{"charts/org", FormatJSON, "charts/org.json"},
		{"org.json", FormatText, "org.txt"},
	}
	for _, tt := range tests {
		if got := OutputPath(tt.base, tt.format); got != tt.want {
			t.Errorf("OutputPath(%q, %q) = %q, want %q", tt.base, tt.format, got, tt.want)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if len(o.Formats) != 1 || o.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", o.Formats)
	}
	if o.PNGScale != DefaultPNGScale || o.Logger == nil {
		t.Errorf("defaults not applied: %+v", o)
	}

	bad := Options{Output: "org\x01.svg"}
	if err := bad.ValidateAndSetDefaults(); !errs.Is(err, errs.ErrCodeInvalidPath) {
		t.Errorf("control character in output: got %v, want INVALID_PATH", err)
	}

	neg := Options{MaxLabel: -1}
	if err := neg.ValidateAndSetDefaults(); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("negative max label: got %v, want INVALID_INPUT", err)
	}

	slow := Options{FetchTimeout: -time.Second}
	if err := slow.ValidateAndSetDefaults(); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("negative fetch timeout: got %v, want INVALID_INPUT", err)
	}
}
