package commands

import (
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/i18n-sheets/config"
	"github.com/teranos/i18n-sheets/display"
	"github.com/teranos/i18n-sheets/errors"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or validate the configuration",
		Long: `Display and check the i18n-sheets configuration.

Configuration sources (in order of precedence):
1. Environment variables (GOOGLE_SHEETS_*), including a .env file
2. The config file (--config, default i18n-sheets.config.json)
3. Default values

Examples:
  i18n-sheets config show                  # Show the effective configuration
  i18n-sheets config show --format yaml    # ... as YAML
  i18n-sheets config validate              # Check config and sheet credentials`,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long:  "Display the configuration after defaults and environment variables are applied. The private key is never shown.",
		RunE:  runConfigShow,
	}
	showCmd.Flags().String("format", "json", "Output format: json, toml, yaml")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Long:  "Check the sync settings and, unless --csv is given, the spreadsheet id and credentials",
		RunE:  runConfigValidate,
	}

	cmd.AddCommand(showCmd, validateCmd)
	return cmd
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return err
	}

	data, err := marshalConfig(cfg, format)
	if err != nil {
		return err
	}
	fmt.Fprint(display.Out, string(data))
	return nil
}

func marshalConfig(cfg *config.Config, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal config to JSON")
		}
		return append(data, '\n'), nil

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal config to YAML")
		}
		return append([]byte("# i18n-sheets configuration\n"), data...), nil

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal config to TOML")
		}
		return append([]byte("# i18n-sheets configuration\n"), data...), nil

	default:
		return nil, errors.Newf("unsupported format: %s (supported: json, toml, yaml)", format)
	}
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return err
	}

	csvPath, _ := cmd.Flags().GetString(FlagCSV)
	if csvPath == "" {
		if err := cfg.ValidateSheet(); err != nil {
			return err
		}
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(map[string]interface{}{
			"valid":   true,
			"locales": cfg.Locales,
			"domains": cfg.Domains,
		})
	}

	pterm.Success.Println("Configuration is valid")
	fmt.Fprintf(display.Out, "  locales: %v\n  domains: %v\n", cfg.Locales, cfg.Domains)
	return nil
}
