package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/organigram/pkg/config"
	"github.com/matzehuels/organigram/pkg/pipeline"
	"github.com/matzehuels/organigram/pkg/render"
)

// renderFlags holds the chart flags of the render command.
type renderFlags struct {
	output     string
	formats    string
	title      string
	maxLabel   int
	levelLabel string
	pngScale   float64
	timeout    time.Duration
}

// renderCommand creates the render command, the main entry point: fetch the
// hierarchy, lay it out and write the chart.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		src   sourceFlags
		flags renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [source]",
		Short: "Render the organization chart",
		Long: `Render the organization chart.

The hierarchy is read from the source, reconstructed into a single rooted
tree and laid out left to right: one column per level, siblings centred on
their parent. Canvas size and node scale follow the tree's depth and size.

Formats:
  svg       the chart (default)
  json      node positions and canvas geometry
  dot       Graphviz source of the hierarchy
  nodelink  the hierarchy drawn by Graphviz as SVG
  png, pdf  the chart converted with rsvg-convert

Additional formats are written next to --output with their own extension.

Examples:
  organigram render -s sqlite:org.db
  organigram render -s "mysql://org:secret@db:3306/armee" -f svg,json -o charts/armee.svg
  organigram render -s units.yaml --root 17 --title "Nord"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := src.load(cmd, args)
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, cfg)
			if err != nil {
				return err
			}
			return c.runRender(cmd, cfg, &src, opts)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default "+pipeline.DefaultOutput+")")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s), comma-separated: "+strings.Join(pipeline.FormatNames(), ", "))
	cmd.Flags().StringVarP(&flags.title, "title", "t", "", "chart title")
	cmd.Flags().IntVar(&flags.maxLabel, "max-label", 0, "truncate names longer than this many characters (default 28)")
	cmd.Flags().StringVar(&flags.levelLabel, "level-label", "", `word used in the "Type (Level N)" line`)
	cmd.Flags().Float64Var(&flags.pngScale, "png-scale", pipeline.DefaultPNGScale, "PNG pixel density")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "give up fetching records after this long (0 = no limit)")

	return cmd
}

// options merges the config file with the flags that were set explicitly.
func (f *renderFlags) options(cmd *cobra.Command, cfg config.Config) (pipeline.Options, error) {
	opts := cfg.PipelineOptions()
	fs := cmd.Flags()

	if fs.Changed("output") {
		opts.Output = f.output
	}
	if opts.Output == "" {
		opts.Output = pipeline.DefaultOutput
	}
	if fs.Changed("format") {
		opts.Formats = parseFormats(f.formats)
	}
	if fs.Changed("title") {
		opts.Title = f.title
	}
	if fs.Changed("max-label") {
		opts.MaxLabel = f.maxLabel
	}
	if fs.Changed("level-label") {
		opts.LevelLabel = f.levelLabel
	}
	if fs.Changed("timeout") {
		opts.FetchTimeout = f.timeout
	}
	opts.PNGScale = f.pngScale

	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return opts, err
	}
	for _, format := range opts.Formats {
		if (format == pipeline.FormatPNG || format == pipeline.FormatPDF) && !render.Available() {
			return opts, fmt.Errorf("%s output needs rsvg-convert on PATH (install librsvg)", format)
		}
	}
	return opts, nil
}

func (c *CLI) runRender(cmd *cobra.Command, cfg config.Config, f *sourceFlags, opts pipeline.Options) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	src, err := c.openSource(ctx, cfg, f.refresh)
	if err != nil {
		return err
	}
	defer src.Close()

	rootID, runSrc, err := c.resolveRoot(ctx, cmd, f, src)
	if err != nil {
		return err
	}
	opts.RootID = rootID
	opts.Logger = logger

	spinner := newSpinner(ctx, "Rendering organization chart...")
	spinner.Start()
	result, err := c.newRunner().Execute(ctx, runSrc, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return reportRender(ctx, result)
}

func reportRender(ctx context.Context, result *pipeline.Result) error {
	if result.Status == pipeline.StatusEmpty {
		printWarning("Source returned no records, nothing rendered")
		return nil
	}

	printSuccess("Chart rendered")
	for _, f := range result.Files {
		printFile(f.Path, f.Size)
	}
	printSummary(result)
	loggerFromContext(ctx).Debug("run finished", "run", result.RunID, "summary", result.Summary())
	return nil
}
