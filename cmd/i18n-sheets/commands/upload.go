package commands

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/i18n-sheets/display"
	"github.com/teranos/i18n-sheets/i18nsync"
)

func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload local translation files to the sheet",
		Long: `Read <sourceDir>/<locale>/<domain>.json for every configured domain and
locale and replace the sheet content with the resulting table.

The sheet is replaced as a whole. If any file is missing or invalid, nothing
is sent and the sheet stays as it was.

Examples:
  i18n-sheets upload                 # Replace the sheet with the local files
  i18n-sheets upload --dry-run       # Build the table without sending it
  i18n-sheets upload --watch         # Upload again whenever a file changes
  i18n-sheets upload --csv out.csv   # Write the table to a CSV file instead`,
		RunE: runUpload,
	}

	cmd.Flags().Bool("dry-run", false, "Build the table but do not send it")
	cmd.Flags().Bool("watch", false, "Keep running and upload after every change to a translation file")
	cmd.Flags().Duration("debounce", i18nsync.DefaultDebounce, "Quiet period before a watched change is uploaded")
	return cmd
}

func runUpload(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	watch, _ := cmd.Flags().GetBool("watch")
	debounce, _ := cmd.Flags().GetDuration("debounce")

	syncer, target, err := newSyncer(cmd, i18nsync.WithDryRun(dryRun))
	if err != nil {
		return err
	}

	if dryRun && !display.ShouldOutputJSON(cmd) {
		pterm.Warning.Println("DRY RUN MODE: the sheet will not be modified")
	}

	sp := startSpinner(cmd, fmt.Sprintf("Uploading to %s...", target))
	res, err := syncer.Upload(cmd.Context())
	if err != nil {
		sp.Fail("Upload failed")
		return err
	}

	if dryRun {
		sp.Success(fmt.Sprintf("Dry run: %d rows from %d domains would be uploaded", res.Rows, res.Domains))
	} else {
		sp.Success(fmt.Sprintf("Uploaded %d rows from %d domains in %s",
			res.Rows, res.Domains, res.Duration.Round(time.Millisecond)))
	}

	if !watch {
		return nil
	}
	return syncer.Watch(cmd.Context(), debounce)
}
