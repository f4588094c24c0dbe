package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/teranos/i18n-sheets/errors"
)

// Load reads the config file at path, overlays environment variables (and a
// .env file in the working directory, if present) and validates the sync
// settings. Sheet settings are validated separately by ValidateSheet, since
// not every command talks to a spreadsheet.
func Load(path string) (*Config, error) {
	// A missing .env file is not an error
	_ = godotenv.Load()

	if _, err := os.Stat(path); err != nil {
		return nil, errors.WithHint(
			errors.WrapConfig(err, "failed to read config file "+path),
			"run `i18n-sheets init` to create one, or pass --config")
	}

	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.WrapConfig(err, "failed to parse config file "+path)
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapConfig(err, "failed to unmarshal config")
	}
	cfg.Sheet.PrivateKey = normalizePrivateKey(cfg.Sheet.PrivateKey)
	return &cfg, nil
}

// newViper creates a Viper instance with defaults and env bindings applied
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	SetDefaults(v)
	BindSensitiveEnvVars(v)
	return v
}

// normalizePrivateKey expands literal "\n" sequences. Keys pasted into .env
// files usually arrive on one line.
func normalizePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}
