package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/organigram/pkg/hierarchy"
	"github.com/matzehuels/organigram/pkg/render/text"
)

// treeCommand creates the tree command, which prints the hierarchy as an
// indented text tree.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		src      sourceFlags
		depth    int
		maxLabel int
	)

	cmd := &cobra.Command{
		Use:   "tree [source]",
		Short: "Print the hierarchy as a text tree",
		Args:  cobra.MaximumNArgs(1),
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
			records, err := runSrc.Fetch(ctx)
			if err != nil {
				return fmt.Errorf("fetch: %w", err)
			}
			if len(records) == 0 {
				printWarning("Source returned no records")
				return nil
			}

			t, err := hierarchy.Index(records)
			if err != nil {
				return err
			}
			if rootID != nil {
				if t, err = t.Subtree(*rootID); err != nil {
					return err
				}
			}
			return text.Write(cmd.OutOrStdout(), t, text.Options{MaxDepth: depth, MaxLabel: maxLabel})
		},
	}

	src.register(cmd)
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "levels below the root to print (0 = all)")
	cmd.Flags().IntVar(&maxLabel, "max-label", 0, "truncate names longer than this many characters")

	return cmd
}
