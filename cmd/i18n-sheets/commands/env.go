package commands

import (
	"context"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/teranos/i18n-sheets/config"
	"github.com/teranos/i18n-sheets/csvstore"
	"github.com/teranos/i18n-sheets/display"
	"github.com/teranos/i18n-sheets/i18nsync"
	"github.com/teranos/i18n-sheets/logger"
	"github.com/teranos/i18n-sheets/progress"
	"github.com/teranos/i18n-sheets/sheets"
	"github.com/teranos/i18n-sheets/table"
	"github.com/teranos/i18n-sheets/version"
)

// Global flag names, registered on the root command
const (
	FlagConfig  = "config"
	FlagCSV     = "csv"
	FlagJSON    = "json"
	FlagVerbose = "verbose"
)

// AddGlobalFlags registers the flags every command understands
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP(FlagConfig, "c", config.DefaultPath, "Config file path")
	cmd.PersistentFlags().String(FlagCSV, "", "Sync with a local CSV file instead of the Google Sheet")
	cmd.PersistentFlags().Bool(FlagJSON, false, "Output JSON instead of human-readable text")
	cmd.PersistentFlags().CountP(FlagVerbose, "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString(FlagConfig)
	if path == "" {
		return config.DefaultPath
	}
	return path
}

func verbosity(cmd *cobra.Command) int {
	v, _ := cmd.Flags().GetCount(FlagVerbose)
	return v
}

// openStore returns the table store the command syncs with: the CSV file
// given by --csv, or the configured spreadsheet.
func openStore(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (table.TableStore, string, error) {
	if path, _ := cmd.Flags().GetString(FlagCSV); path != "" {
		return csvstore.New(path), path, nil
	}

	if err := cfg.ValidateSheet(); err != nil {
		return nil, "", err
	}

	opts, err := sheets.CredentialOptions(ctx, cfg.Sheet)
	if err != nil {
		return nil, "", err
	}
	opts = append(opts, option.WithUserAgent(version.Get().UserAgent()))

	client, err := sheets.New(ctx, cfg.Sheet, len(cfg.Locales), opts...)
	if err != nil {
		return nil, "", err
	}
	return client, "sheet " + cfg.Sheet.SpreadsheetID + " (" + client.Range() + ")", nil
}

// newEmitter picks the progress output for the command's flags
func newEmitter(cmd *cobra.Command) progress.Emitter {
	if display.ShouldOutputJSON(cmd) {
		return progress.NewJSONEmitterTo(display.Out)
	}
	if verbosity(cmd) > 0 {
		return progress.NewCLIEmitter(verbosity(cmd))
	}
	return progress.Nop{}
}

// newSyncer loads the config, opens the store and builds a Syncer for cmd.
func newSyncer(cmd *cobra.Command, opts ...i18nsync.Option) (*i18nsync.Syncer, string, error) {
	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return nil, "", err
	}

	store, target, err := openStore(cmd.Context(), cmd, cfg)
	if err != nil {
		return nil, "", err
	}

	opts = append([]i18nsync.Option{
		i18nsync.WithLogger(logger.ComponentLogger("sync")),
		i18nsync.WithEmitter(newEmitter(cmd)),
	}, opts...)
	return i18nsync.New(cfg.Sync(), store, opts...), target, nil
}
