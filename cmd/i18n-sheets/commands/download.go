package commands

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/i18n-sheets/display"
	"github.com/teranos/i18n-sheets/i18nsync"
)

func newDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the sheet into local translation files",
		Long: `Fetch the sheet and write <sourceDir>/<locale>/<domain>.json for every
domain in the sheet and every locale with a column.

Existing files for those domains are overwritten. Domains that are not in the
sheet are left alone.

Examples:
  i18n-sheets download               # Overwrite local files from the sheet
  i18n-sheets download --dry-run     # Fetch and check without writing
  i18n-sheets download --csv in.csv  # Read the table from a CSV file`,
		RunE: runDownload,
	}

	cmd.Flags().Bool("dry-run", false, "Fetch and convert but do not write files")
	return cmd
}

func runDownload(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	syncer, target, err := newSyncer(cmd, i18nsync.WithDryRun(dryRun))
	if err != nil {
		return err
	}

	if dryRun && !display.ShouldOutputJSON(cmd) {
		pterm.Warning.Println("DRY RUN MODE: no files will be written")
	}

	sp := startSpinner(cmd, fmt.Sprintf("Downloading from %s...", target))
	res, err := syncer.Download(cmd.Context())
	if err != nil {
		sp.Fail("Download failed")
		return err
	}

	sp.Success(fmt.Sprintf("Wrote %d files for %d domains (%d rows) in %s",
		res.Files, res.Domains, res.Rows, res.Duration.Round(time.Millisecond)))
	return nil
}
