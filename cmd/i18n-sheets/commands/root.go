// Package commands implements the i18n-sheets command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/i18n-sheets/errors"
	"github.com/teranos/i18n-sheets/logger"
)

// NewRootCmd builds the i18n-sheets command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "i18n-sheets",
		Short: "Sync i18n JSON files with a Google Sheet",
		Long: `i18n-sheets - Sync translation files with a Google Sheet.

Translations live in <sourceDir>/<locale>/<domain>.json. The sheet holds one
row per key: Domain, Key, then one column per locale, in configured order.

Available commands:
  init     - Create a default config file
  upload   - Replace the sheet with the local files
  download - Overwrite the local files from the sheet
  status   - Show where files and sheet differ
  config   - Show or validate the configuration
  version  - Show version information

Examples:
  i18n-sheets init                   # Create i18n-sheets.config.json
  i18n-sheets upload                 # Push local translations to the sheet
  i18n-sheets download               # Pull translators' edits back
  i18n-sheets status --exit-code     # Fail CI when files and sheet differ`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput, _ := cmd.Flags().GetBool(FlagJSON)
			if err := logger.Initialize(jsonOutput, verbosity(cmd)); err != nil {
				return errors.Wrap(err, "failed to initialize logger")
			}
			return nil
		},
	}

	AddGlobalFlags(root)

	root.AddCommand(newInitCmd())
	root.AddCommand(newUploadCmd())
	root.AddCommand(newDownloadCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}
