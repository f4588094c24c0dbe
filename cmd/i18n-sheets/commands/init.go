package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/i18n-sheets/config"
	"github.com/teranos/i18n-sheets/display"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default config file",
		Long: `Write a default config file (i18n-sheets.config.json, or the --config path).

Credentials are not stored in the config file; set GOOGLE_SHEETS_* in the
environment or a .env file.

Examples:
  i18n-sheets init                   # Create i18n-sheets.config.json
  i18n-sheets init --force           # Overwrite it, keeping a .back1 copy`,
		RunE: runInit,
	}

	cmd.Flags().Bool("force", false, "Overwrite an existing config file")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	path := configPath(cmd)

	if err := config.Init(path, force); err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(map[string]string{"path": path})
	}

	pterm.Success.Printf("Created %s\n", path)
	fmt.Fprintln(display.Out, "Next steps:")
	fmt.Fprintln(display.Out, "  1. List your locales and domains in", path)
	fmt.Fprintf(display.Out, "  2. Set %s, %s and %s (or %s)\n",
		config.EnvSpreadsheetID, config.EnvClientEmail, config.EnvPrivateKey, config.EnvCredentialsFile)
	fmt.Fprintln(display.Out, "  3. Run `i18n-sheets upload`")
	return nil
}
