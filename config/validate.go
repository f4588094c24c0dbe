package config

import (
	"strings"

	"github.com/teranos/i18n-sheets/errors"
)

// Validate checks the sync settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SourceDir) == "" {
		return errors.Config("sourceDir cannot be empty")
	}

	if len(c.Locales) == 0 {
		return errors.WithHint(errors.Config("locales cannot be empty"),
			`list the locale directories under sourceDir, e.g. "locales": ["ko", "en"]`)
	}
	if err := validateNames("locales", c.Locales); err != nil {
		return err
	}

	return validateNames("domains", c.Domains)
}

// validateNames rejects empty, duplicate, or path-like entries. Locale and
// domain names become path components under sourceDir.
func validateNames(field string, names []string) error {
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		if err := CheckName(name); err != nil {
			return errors.Config("%s[%d]: %v", field, i, err)
		}
		if seen[name] {
			return errors.Config("%s contains %q more than once", field, name)
		}
		seen[name] = true
	}
	return nil
}

// CheckName reports whether name can be used as a single path component
// under sourceDir.
func CheckName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("name cannot be empty")
	case strings.ContainsAny(name, `/\`) || name == "." || name == "..":
		return errors.Newf("%q must not contain path separators", name)
	}
	return nil
}

// ValidateSheet checks that a spreadsheet and credentials are configured.
func (c *Config) ValidateSheet() error {
	s := c.Sheet

	if s.SpreadsheetID == "" {
		return errors.WithHintf(errors.Config("spreadsheet id is not set"),
			"set %s in the environment or .env file", EnvSpreadsheetID)
	}

	if s.CredentialsFile == "" && !s.HasServiceAccount() {
		var missing []string
		if s.ClientEmail == "" {
			missing = append(missing, EnvClientEmail)
		}
		if s.PrivateKey == "" {
			missing = append(missing, EnvPrivateKey)
		}
		return errors.WithHintf(errors.Config("missing sheet credentials: %s", strings.Join(missing, ", ")),
			"set them in the environment or .env file, or point %s at a service account JSON file", EnvCredentialsFile)
	}

	return nil
}
