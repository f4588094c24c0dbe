package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/i18n-sheets/display"
	"github.com/teranos/i18n-sheets/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show i18n-sheets version information",
		Long:  `Display version, build time, commit hash, and platform information for the i18n-sheets binary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()

			if display.ShouldOutputJSON(cmd) {
				return display.OutputJSON(info)
			}
			fmt.Fprintln(display.Out, info.String())
			fmt.Fprintf(display.Out, "Platform: %s\n", info.Platform)
			fmt.Fprintf(display.Out, "Go: %s\n", info.GoVersion)
			return nil
		},
	}
}
