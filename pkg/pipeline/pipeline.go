// Package pipeline drives a complete organigram run.
//
// A run has four stages:
//
//  1. Fetch: read records from a [source.Source] (optionally cached)
//  2. Layout: index the records into a tree, plan the canvas, position nodes
//  3. Render: serialize the positioned chart in each requested format
//  4. Write: persist each artifact atomically next to the output path
//
// The CLI, the chart server and tests all go through [Runner.Execute], so
// the stages behave identically everywhere.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Execute(ctx, src, pipeline.Options{
//	    Title:   "Organization Chart",
//	    Formats: []string{"svg", "json"},
//	    Output:  "organigram.svg",
//	})
//	if err != nil {
//	    return err
//	}
//	if result.Status == pipeline.StatusEmpty {
//	    // nothing to render, no file written
//	}
//
// # Empty input
//
// A source that returns no records is not an error. The run ends after the
// fetch stage with [StatusEmpty]; no artifact is rendered or written and any
// existing output file is left in place.
package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	errs "github.com/matzehuels/organigram/pkg/errors"
	"github.com/matzehuels/organigram/pkg/geometry"
	"github.com/matzehuels/organigram/pkg/hierarchy"
	"github.com/matzehuels/organigram/pkg/layout"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultOutput is the artifact path used when none is given.
	DefaultOutput = "organigram.svg"

	// DefaultPNGScale renders PNGs at twice the SVG pixel size.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG      = "svg"
	FormatJSON     = "json"
	FormatDOT      = "dot"
	FormatNodelink = "nodelink"
	FormatPNG      = "png"
	FormatPDF      = "pdf"
	FormatText     = "txt"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:      true,
	FormatJSON:     true,
	FormatDOT:      true,
	FormatNodelink: true,
	FormatPNG:      true,
	FormatPDF:      true,
	FormatText:     true,
}

// formatSuffix is the file suffix each format is written with.
var formatSuffix = map[string]string{
	FormatSVG:      ".svg",
	FormatJSON:     ".json",
	FormatDOT:      ".dot",
	FormatNodelink: ".nodelink.svg",
	FormatPNG:      ".png",
	FormatPDF:      ".pdf",
	FormatText:     ".txt",
}

// suffixOrder lists formats longest suffix first so ".nodelink.svg" is
// stripped whole.
var suffixOrder = []string{FormatNodelink, FormatSVG, FormatJSON, FormatDOT, FormatPNG, FormatPDF, FormatText}

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run.
type Options struct {
	// Title is drawn in the chart banner.
	Title string `json:"title,omitempty"`

	// RootID restricts the chart to the subtree below this record.
	RootID *int64 `json:"root_id,omitempty"`

	// Formats lists the artifacts to render. Defaults to svg.
	Formats []string `json:"formats,omitempty"`

	// Output is the artifact path. Other formats are written next to it
	// with their own suffix. Empty skips the write stage.
	Output string `json:"output,omitempty"`

	// MaxLabel is the name length beyond which labels are truncated.
	MaxLabel int `json:"max_label,omitempty"`

	// LevelLabel is the word printed before the depth ("Level").
	LevelLabel string `json:"level_label,omitempty"`

	// PNGScale is the rasterization factor for png output.
	PNGScale float64 `json:"png_scale,omitempty"`

	// FetchTimeout bounds the fetch stage. Zero means no limit beyond ctx.
	FetchTimeout time.Duration `json:"fetch_timeout,omitempty"`

	// Logger receives progress messages. Defaults to the runner's logger.
	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks the options and fills defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.MaxLabel < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "max label must not be negative, got %d", o.MaxLabel)
	}
	if o.PNGScale == 0 {
		o.PNGScale = DefaultPNGScale
	}
	if o.PNGScale < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "png scale must be positive, got %g", o.PNGScale)
	}
	if o.FetchTimeout < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "fetch timeout must not be negative, got %s", o.FetchTimeout)
	}
	if o.Output != "" {
		for _, f := range o.Formats {
			if err := errs.ValidateOutputPath(OutputPath(o.Output, f)); err != nil {
				return err
			}
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks every format in formats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// FormatNames returns the supported formats in a fixed order.
func FormatNames() []string {
	return []string{FormatSVG, FormatJSON, FormatDOT, FormatNodelink, FormatPNG, FormatPDF, FormatText}
}

// OutputPath derives the file path for format from the base output path.
// A base that already carries the format's suffix is returned unchanged;
// otherwise a known suffix is replaced.
//
//	OutputPath("org.svg", "svg")      -> org.svg
//	OutputPath("org.svg", "png")      -> org.png
//	OutputPath("org.svg", "nodelink") -> org.nodelink.svg
//	OutputPath("charts/org", "json")  -> charts/org.json
func OutputPath(base, format string) string {
	suffix := formatSuffix[format]
	if strings.HasSuffix(strings.ToLower(base), suffix) {
		return base
	}
	stem := base
	for _, f := range suffixOrder {
		s := formatSuffix[f]
		if strings.HasSuffix(strings.ToLower(stem), s) {
			stem = stem[:len(stem)-len(s)]
			break
		}
	}
	if stem == "" || strings.HasSuffix(stem, string(filepath.Separator)) {
		stem += "organigram"
	}
	return stem + suffix
}

// =============================================================================
// Results
// =============================================================================

// Status is the outcome of a run.
type Status int

const (
	// StatusRendered means every requested artifact was produced.
	StatusRendered Status = iota
	// StatusEmpty means the source returned no records; nothing was rendered.
	StatusEmpty
)

// String returns "rendered" or "empty".
func (s Status) String() string {
	if s == StatusEmpty {
		return "empty"
	}
	return "rendered"
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and server responses.
	RunID uuid.UUID

	Status Status

	// Source is the name of the source the records came from.
	Source string

	// Tree is the indexed hierarchy (nil for empty runs).
	Tree *hierarchy.Tree

	// Geometry holds the planned canvas and node dimensions.
	Geometry geometry.Config

	// Layout holds the positioned nodes and edges.
	Layout layout.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Files lists the artifacts written to disk, in format order.
	Files []File

	Stats     Stats
	CacheInfo CacheInfo
}

// File describes one persisted artifact.
type File struct {
	Format string
	Path   string
	Size   int
}

// Stats contains run statistics.
type Stats struct {
	Records    int // records delivered by the source
	Nodes      int // nodes placed (fewer than Records for subtree charts)
	Edges      int
	MaxDepth   int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
	WriteTime  time.Duration
}

// CacheInfo tracks which stages were served from cache.
type CacheInfo struct {
	FetchHit bool
}

// Summary returns a one-line description of the run for logs.
func (r *Result) Summary() string {
	if r.Status == StatusEmpty {
		return "no records, nothing rendered"
	}
	return fmt.Sprintf("%d units, max level %d, canvas %dx%d, scale %.2f",
		r.Stats.Nodes, r.Stats.MaxDepth, r.Geometry.Width, r.Geometry.Height, r.Geometry.Scale)
}
