package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/i18n-sheets/display"
	"github.com/teranos/i18n-sheets/errors"
	"github.com/teranos/i18n-sheets/i18nsync"
	"github.com/teranos/i18n-sheets/progress"
)

// ErrOutOfSync is returned by `status --exit-code` when the files and the sheet differ
var ErrOutOfSync = errors.New("local files and sheet are out of sync")

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Compare local translation files with the sheet",
		Long: `Build the table the local files would upload, fetch the sheet and compare
them domain by domain. Nothing is modified.

Examples:
  i18n-sheets status                 # Show which domains differ
  i18n-sheets status --exit-code     # Fail when anything differs (for CI)
  i18n-sheets status --json          # Machine-readable report`,
		RunE: runStatus,
	}

	cmd.Flags().Bool("exit-code", false, "Exit with an error when the files and the sheet differ")
	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	exitCode, _ := cmd.Flags().GetBool("exit-code")

	// The report is the only output, even with --json
	syncer, target, err := newSyncer(cmd, i18nsync.WithEmitter(progress.Nop{}))
	if err != nil {
		return err
	}

	sp := startSpinner(cmd, fmt.Sprintf("Comparing with %s...", target))
	report, err := syncer.Status(cmd.Context())
	if err != nil {
		sp.Fail("Status failed")
		return err
	}
	sp.Stop()

	if display.ShouldOutputJSON(cmd) {
		out := struct {
			*i18nsync.StatusReport
			InSync bool `json:"in_sync"`
		}{report, report.InSync()}
		if err := display.OutputJSON(out); err != nil {
			return err
		}
	} else {
		printStatus(display.Out, target, report)
	}

	if exitCode && !report.InSync() {
		return ErrOutOfSync
	}
	return nil
}

func printStatus(w io.Writer, target string, r *i18nsync.StatusReport) {
	fmt.Fprintf(w, "Local files: %d rows (digest %s)\n", r.LocalRows, r.LocalRoot)
	fmt.Fprintf(w, "%s: %d rows (digest %s)\n", target, r.RemoteRows, r.RemoteRoot)
	fmt.Fprintln(w)

	if r.InSync() {
		fmt.Fprintln(w, pterm.Green("✓ In sync"))
		return
	}

	section := func(title string, domains []string, hint string) {
		if len(domains) == 0 {
			return
		}
		fmt.Fprintf(w, "%s (%d): %s\n", title, len(domains), strings.Join(domains, ", "))
		fmt.Fprintf(w, "  %s\n", pterm.Gray(hint))
	}
	section("Changed", r.Divergent, "upload or download to resolve")
	section("Only local", r.LocalOnly, "upload to add them to the sheet")
	section("Only in sheet", r.RemoteOnly, "download to create the files, or add them to domains")
}
