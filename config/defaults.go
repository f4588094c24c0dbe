package config

import (
	"github.com/spf13/viper"
)

// Environment variables read for sheet access
const (
	EnvSpreadsheetID   = "GOOGLE_SHEETS_SPREADSHEET_ID"
	EnvClientEmail     = "GOOGLE_SHEETS_CLIENT_EMAIL"
	EnvPrivateKey      = "GOOGLE_SHEETS_PRIVATE_KEY"
	EnvRange           = "GOOGLE_SHEETS_RANGE"
	EnvRangeLegacy     = "SHEET_RANGE"
	EnvCredentialsFile = "GOOGLE_APPLICATION_CREDENTIALS"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("sourceDir", "./i18n")
	v.SetDefault("locales", []string{"ko", "en"})
	v.SetDefault("domains", []string{})
}

// BindSensitiveEnvVars binds sheet identity and credentials to environment variables
func BindSensitiveEnvVars(v *viper.Viper) {
	_ = v.BindEnv("sheet.spreadsheetId", EnvSpreadsheetID)
	_ = v.BindEnv("sheet.clientEmail", EnvClientEmail)
	_ = v.BindEnv("sheet.privateKey", EnvPrivateKey)
	_ = v.BindEnv("sheet.range", EnvRange, EnvRangeLegacy)
	_ = v.BindEnv("sheet.credentialsFile", EnvCredentialsFile)
}

// Template is the config written by `i18n-sheets init`
func Template() *Config {
	return &Config{
		SourceDir: "./i18n",
		Locales:   []string{"ko", "en"},
		Domains:   []string{},
	}
}
