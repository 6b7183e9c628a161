package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/organigram/pkg/cache"
	"github.com/matzehuels/organigram/pkg/config"
	errs "github.com/matzehuels/organigram/pkg/errors"
	"github.com/matzehuels/organigram/pkg/hierarchy"
	"github.com/matzehuels/organigram/pkg/source"
)

// sourceFlags are shared by every command that reads the hierarchy.
type sourceFlags struct {
	configPath string
	url        string
	table      string
	flat       bool
	refresh    bool
	noCache    bool
	root       int64
	pick       bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/organigram/config.toml)")
	cmd.Flags().StringVarP(&f.url, "source", "s", "", "hierarchy source: sqlite:FILE, postgres://..., mysql://..., mongodb://... or a .json/.yaml/.toml file")
	cmd.Flags().StringVar(&f.table, "table", "", "table holding the units (SQL sources)")
	cmd.Flags().BoolVar(&f.flat, "flat", false, "read every row instead of walking the tree from the root (SQL sources)")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "refetch records even when cached")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the record cache")
	cmd.Flags().Int64Var(&f.root, "root", 0, "chart only the subtree below this unit id")
	cmd.Flags().BoolVar(&f.pick, "pick", false, "choose the subtree root interactively")
}

// load reads the config file and applies the source flags over it. A
// positional argument takes precedence over --source.
func (f *sourceFlags) load(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}

	switch {
	case len(args) > 0:
		cfg.Source = args[0]
	case f.url != "":
		cfg.Source = f.url
	}
	if cfg.Source == "" {
		return cfg, errs.New(errs.ErrCodeInvalidSource, "no source given: pass --source or set source in the config file")
	}

	if f.table != "" {
		cfg.Schema.Table = f.table
	}
	if cmd.Flags().Changed("flat") {
		cfg.Schema.Flat = f.flat
	}
	if f.noCache {
		cfg.Cache.Disabled = true
	}
	return cfg, cfg.Schema.Validate()
}

// rootID returns the --root value, or nil when the flag was not given.
func (f *sourceFlags) rootID(cmd *cobra.Command) *int64 {
	if !cmd.Flags().Changed("root") {
		return nil
	}
	id := f.root
	return &id
}

// openSource opens the configured source, wrapped in the record cache unless
// caching is disabled or the source is a local file.
func (c *CLI) openSource(ctx context.Context, cfg config.Config, refresh bool) (source.Source, error) {
	src, err := source.Open(ctx, cfg.Source, source.Options{Schema: cfg.Schema})
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("opened source", "kind", source.Kind(cfg.Source), "url", source.Redact(cfg.Source))

	if cfg.Cache.Disabled || source.Kind(cfg.Source) == source.KindFile {
		return src, nil
	}

	store, err := newCache(ctx, cfg.Cache)
	if err != nil {
		c.Logger.Warn("record cache unavailable, fetching directly", "error", err)
		return src, nil
	}

	key := cache.SourceKey(fmt.Sprintf("%s|%+v", cfg.Source, cfg.Schema))
	opts := []source.CachedOption{source.WithRefresh(refresh), source.WithLogger(c.Logger)}
	if cfg.Cache.TTL > 0 {
		opts = append(opts, source.WithTTL(cfg.Cache.TTL))
	}
	return &cachedSource{Cached: source.NewCached(src, store, key, opts...), store: store}, nil
}

// cachedSource owns the cache it reads through and closes it with the source.
type cachedSource struct {
	*source.Cached
	store cache.Cache
}

func (s *cachedSource) Close() error {
	return errors.Join(s.Cached.Close(), s.store.Close())
}

// staticSource replays records that were already fetched.
type staticSource struct {
	name    string
	records []hierarchy.Record
}

func (s staticSource) Name() string { return s.name }
func (s staticSource) Fetch(context.Context) ([]hierarchy.Record, error) {
	return s.records, nil
}
func (s staticSource) Close() error { return nil }

// resolveRoot returns the subtree root for a run and the source to run on.
// With --pick the records are fetched up front and the user chooses a unit;
// the returned source then replays those records.
func (c *CLI) resolveRoot(ctx context.Context, cmd *cobra.Command, f *sourceFlags, src source.Source) (*int64, source.Source, error) {
	if !f.pick {
		return f.rootID(cmd), src, nil
	}

	records, err := src.Fetch(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch: %w", err)
	}
	replay := staticSource{name: src.Name(), records: records}
	if len(records) == 0 {
		return nil, replay, nil
	}

	tree, err := hierarchy.Index(records)
	if err != nil {
		return nil, nil, err
	}
	id, err := pickUnit(tree)
	if err != nil {
		return nil, nil, err
	}
	if id == nil {
		return nil, nil, context.Canceled
	}
	return id, replay, nil
}
