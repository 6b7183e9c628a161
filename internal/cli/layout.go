package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/organigram/pkg/pipeline"
	"github.com/matzehuels/organigram/pkg/render/styles"
)

// layoutCommand creates the layout command, which prints the planned canvas
// and every node position without writing a chart.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		src    sourceFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "layout [source]",
		Short: "Print the computed canvas and node positions",
		Long: `Print the computed canvas and node positions.

The table lists units in drawing order with their level, top-left position
and fill color. Use --json for the same export that 'render -f json' writes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := src.load(cmd, args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			s, err := c.openSource(ctx, cfg, src.refresh)
			if err != nil {
				return err
			}
			defer s.Close()

			rootID, runSrc, err := c.resolveRoot(ctx, cmd, &src, s)
			if err != nil {
				return err
			}

			opts := cfg.PipelineOptions()
			opts.Output = ""
			opts.Formats = []string{pipeline.FormatJSON}
			opts.RootID = rootID
			opts.Logger = loggerFromContext(ctx)

			result, err := c.newRunner().Execute(ctx, runSrc, opts)
			if err != nil {
				return err
			}
			if result.Status == pipeline.StatusEmpty {
				printWarning("Source returned no records")
				return nil
			}

			if asJSON {
				_, err := cmd.OutOrStdout().Write(append(result.Artifacts[pipeline.FormatJSON], '\n'))
				return err
			}
			printGeometry(result)
			return writeLayoutTable(cmd.OutOrStdout(), result)
		},
	}

	src.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")

	return cmd
}

func printGeometry(r *pipeline.Result) {
	g := r.Geometry
	printKeyValue("Canvas", fmt.Sprintf("%d x %d", g.Width, g.Height))
	printKeyValue("Scale", fmt.Sprintf("%.2f", g.Scale))
	printKeyValue("Node", fmt.Sprintf("%d x %d", g.NodeWidth, g.NodeHeight))
	printKeyValue("Spacing", fmt.Sprintf("%d h, %d v", g.HSpacing, g.VSpacing))
	printKeyValue("Fonts", fmt.Sprintf("%d / %d", g.FontSizeName, g.FontSizeType))
	printKeyValue("Units", strconv.Itoa(r.Stats.Nodes))
	fmt.Fprintln(stdout)
}

// writeLayoutTable renders the node positions as a bordered table.
func writeLayoutTable(w io.Writer, r *pipeline.Result) error {
	rows := make([][]string, 0, len(r.Layout.Nodes))
	for _, n := range r.Layout.Nodes {
		rows = append(rows, []string{
			strconv.FormatInt(n.ID, 10),
			n.Name,
			n.Type,
			strconv.Itoa(n.Level),
			strconv.FormatFloat(n.X, 'f', -1, 64),
			strconv.FormatFloat(n.Y, 'f', -1, 64),
			styles.DefaultPalette.Fill(n.Depth),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Type", "Level", "X", "Y", "Fill").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 0 || col >= 3 {
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle()
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
