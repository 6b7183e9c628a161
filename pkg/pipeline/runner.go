package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	errs "github.com/matzehuels/organigram/pkg/errors"
	"github.com/matzehuels/organigram/pkg/geometry"
	"github.com/matzehuels/organigram/pkg/hierarchy"
	"github.com/matzehuels/organigram/pkg/io"
	"github.com/matzehuels/organigram/pkg/layout"
	"github.com/matzehuels/organigram/pkg/observability"
	"github.com/matzehuels/organigram/pkg/source"
)

// Runner executes pipeline runs.
//
// A Runner holds no per-run state; multiple goroutines can use the same
// Runner with different options and sources.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger uses the default logger.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// cacheAware is implemented by sources that can report cache hits.
type cacheAware interface {
	FetchWithCacheInfo(ctx context.Context) ([]hierarchy.Record, bool, error)
}

// Execute runs fetch → layout → render → write.
func (r *Runner) Execute(ctx context.Context, src source.Source, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger

	result := &Result{
		RunID:     uuid.New(),
		Source:    src.Name(),
		Artifacts: make(map[string][]byte),
	}
	logger = logger.With("run", result.RunID.String()[:8])

	// Stage 1: Fetch
	records, hit, err := r.fetch(ctx, src, opts, result)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.CacheInfo.FetchHit = hit
	result.Stats.Records = len(records)
	logger.Info("fetched records",
		"source", src.Name(),
		"records", len(records),
		"cached", hit,
		"duration", result.Stats.FetchTime)

	if len(records) == 0 {
		result.Status = StatusEmpty
		logger.Warn("source returned no records, nothing to render")
		return result, nil
	}

	// Stage 2: Layout
	if err := r.layout(ctx, records, opts, result); err != nil {
		if errors.Is(err, hierarchy.ErrEmpty) {
			result.Status = StatusEmpty
			return result, nil
		}
		return nil, fmt.Errorf("layout: %w", err)
	}
	logger.Info("computed layout",
		"nodes", result.Stats.Nodes,
		"max_level", result.Stats.MaxDepth,
		"canvas", fmt.Sprintf("%dx%d", result.Geometry.Width, result.Geometry.Height),
		"scale", result.Geometry.Scale,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	if err := r.render(ctx, opts, result); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	// Stage 4: Write
	if opts.Output != "" {
		if err := r.write(opts, result); err != nil {
			return nil, err
		}
		for _, f := range result.Files {
			logger.Info("wrote artifact", "path", f.Path, "bytes", f.Size)
		}
	}

	result.Status = StatusRendered
	return result, nil
}

// fetch reads the records, bounded by opts.FetchTimeout. A fetch that runs
// out of time surfaces as [errs.ErrCodeTimeout] whatever the source wrapped
// it in.
func (r *Runner) fetch(ctx context.Context, src source.Source, opts Options, result *Result) ([]hierarchy.Record, bool, error) {
	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, src.Name())
	start := time.Now()

	if opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.FetchTimeout)
		defer cancel()
	}

	var (
		records []hierarchy.Record
		hit     bool
		err     error
	)
	if ca, ok := src.(cacheAware); ok {
		records, hit, err = ca.FetchWithCacheInfo(ctx)
	} else {
		records, err = src.Fetch(ctx)
	}

	result.Stats.FetchTime = time.Since(start)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		err = errs.Wrap(errs.ErrCodeTimeout, err, "fetch from %s timed out", src.Name())
	}
	hooks.OnFetchComplete(ctx, src.Name(), len(records), result.Stats.FetchTime, err)
	return records, hit, err
}

func (r *Runner) layout(ctx context.Context, records []hierarchy.Record, opts Options, result *Result) (err error) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(records))
	start := time.Now()
	defer func() {
		result.Stats.LayoutTime = time.Since(start)
		hooks.OnLayoutComplete(ctx, result.Stats.Nodes, result.Geometry.Scale, result.Stats.LayoutTime, err)
	}()

	tree, cfg, l, err := BuildLayout(records, opts.RootID)
	if err != nil {
		return err
	}
	result.Tree = tree
	result.Geometry = cfg
	result.Layout = l
	result.Stats.Nodes = len(l.Nodes)
	result.Stats.Edges = len(l.Edges)
	result.Stats.MaxDepth = tree.MaxDepth()
	return nil
}

func (r *Runner) render(ctx context.Context, opts Options, result *Result) (err error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() {
		result.Stats.RenderTime = time.Since(start)
		hooks.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	}()

	artifacts, err := Render(ctx, result.Tree, result.Layout, result.Geometry, opts)
	if err != nil {
		return err
	}
	result.Artifacts = artifacts
	return nil
}

// write persists artifacts only after every format rendered, and commits
// them as one batch: either every output file is replaced or none is.
func (r *Runner) write(opts Options, result *Result) error {
	start := time.Now()
	defer func() { result.Stats.WriteTime = time.Since(start) }()

	files := make([]io.File, len(opts.Formats))
	for i, format := range opts.Formats {
		files[i] = io.File{Path: OutputPath(opts.Output, format), Data: result.Artifacts[format]}
	}
	sizes, err := io.WriteFilesAtomic(files)
	if err != nil {
		return err
	}
	for i, format := range opts.Formats {
		result.Files = append(result.Files, File{Format: format, Path: files[i].Path, Size: sizes[i]})
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// BuildLayout indexes records, optionally cuts the subtree below rootID,
// plans the canvas from the tree's shape and positions every node.
// Zero records yield [hierarchy.ErrEmpty].
func BuildLayout(records []hierarchy.Record, rootID *int64) (*hierarchy.Tree, geometry.Config, layout.Layout, error) {
	tree, err := hierarchy.Index(records)
	if err != nil {
		return nil, geometry.Config{}, layout.Layout{}, err
	}
	if rootID != nil {
		tree, err = tree.Subtree(*rootID)
		if err != nil {
			return nil, geometry.Config{}, layout.Layout{}, err
		}
	}

	cfg := geometry.Plan(tree.MaxDepth(), tree.Len())
	l, err := layout.Build(tree, cfg)
	if err != nil {
		return nil, geometry.Config{}, layout.Layout{}, err
	}
	return tree, cfg, l, nil
}
