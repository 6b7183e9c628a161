package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/organigram/pkg/errors"
	"github.com/matzehuels/organigram/pkg/hierarchy"
	"github.com/matzehuels/organigram/pkg/io"
)

// exportCommand creates the export command, which snapshots a source into a
// record file that can later be rendered offline.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		src    sourceFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "export [source]",
		Short: "Write the hierarchy records to a JSON, YAML or TOML file",
		Long: `Export fetches the records of a source and writes them to a record file.
The file format follows the extension of --output. Records are validated
before anything is written.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return errs.New(errs.ErrCodeInvalidPath, "--output is required")
			}
			if err := errs.ValidateRecordPath(output); err != nil {
				return err
			}

			cfg, err := src.load(cmd, args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

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
				printWarning("Source returned no records, nothing exported")
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
				records = t.Records()
			}

			if err := io.ExportRecords(output, records); err != nil {
				return err
			}
			logger.Debug("exported records", "path", output, "units", len(records))
			printSuccess("Exported %d units to %s", len(records), output)
			return nil
		},
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "record file to write (.json, .yaml, .yml or .toml)")

	return cmd
}
