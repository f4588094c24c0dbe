// Package config loads the i18n-sheets configuration: which translation files
// to sync (Sync) and which spreadsheet to sync them with (SheetConfig).
//
// Configuration sources (in order of precedence):
//  1. Environment variables (GOOGLE_SHEETS_*), including a .env file
//  2. The JSON config file (default i18n-sheets.config.json)
//  3. Default values
package config

// DefaultPath is the config file used when --config is not given
const DefaultPath = "i18n-sheets.config.json"

// Config represents the full i18n-sheets configuration
type Config struct {
	SourceDir string      `mapstructure:"sourceDir" json:"sourceDir" toml:"sourceDir" yaml:"sourceDir"`
	Locales   []string    `mapstructure:"locales" json:"locales" toml:"locales" yaml:"locales"`
	Domains   []string    `mapstructure:"domains" json:"domains" toml:"domains" yaml:"domains"`
	Sheet     SheetConfig `mapstructure:"sheet" json:"sheet" toml:"sheet" yaml:"sheet"`
}

// SheetConfig identifies the target spreadsheet and how to authenticate.
// Credentials normally come from the environment, not the config file.
type SheetConfig struct {
	SpreadsheetID   string `mapstructure:"spreadsheetId" json:"spreadsheetId,omitempty" toml:"spreadsheetId,omitempty" yaml:"spreadsheetId,omitempty"`
	Range           string `mapstructure:"range" json:"range,omitempty" toml:"range,omitempty" yaml:"range,omitempty"` // A1 range, e.g. "Translations!A1:D1000" (empty = derived from locales)
	ClientEmail     string `mapstructure:"clientEmail" json:"clientEmail,omitempty" toml:"clientEmail,omitempty" yaml:"clientEmail,omitempty"`
	PrivateKey      string `mapstructure:"privateKey" json:"-" toml:"-" yaml:"-"`
	CredentialsFile string `mapstructure:"credentialsFile" json:"credentialsFile,omitempty" toml:"credentialsFile,omitempty" yaml:"credentialsFile,omitempty"`
}

// Sync is the immutable input of one sync run: where the files live, which
// locales map to which columns, and which domains to upload.
type Sync struct {
	SourceDir string
	Locales   []string
	Domains   []string
}

// Sync returns a copy of the sync settings; later changes to c do not leak in.
func (c *Config) Sync() Sync {
	return Sync{
		SourceDir: c.SourceDir,
		Locales:   append([]string(nil), c.Locales...),
		Domains:   append([]string(nil), c.Domains...),
	}
}

// HasServiceAccount reports whether inline service account credentials are set
func (s SheetConfig) HasServiceAccount() bool {
	return s.ClientEmail != "" && s.PrivateKey != ""
}

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
