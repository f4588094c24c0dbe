package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/teranos/i18n-sheets/errors"
	"github.com/teranos/i18n-sheets/logger"
)

// backupCount is how many rotated copies Init keeps when overwriting
const backupCount = 3

// Init writes the default config template to path.
// An existing file is only replaced when force is set, after being rotated
// into path.back1 (.back2, .back3 for older copies).
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil {
		if !force {
			return errors.WithHint(errors.Config("config file %s already exists", path),
				"pass --force to overwrite it (the old file is kept as .back1)")
		}
		if err := createBackup(path); err != nil {
			return errors.WrapConfig(err, "failed to back up existing config")
		}
	}

	return Save(path, Template())
}

// Save writes cfg as indented JSON. Credentials are never written.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.WrapConfig(err, "failed to marshal config")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
			return errors.WrapConfig(err, "failed to create config directory")
		}
	}

	if err := os.WriteFile(path, append(data, '\n'), DefaultFilePermissions); err != nil {
		return errors.WrapConfig(err, "failed to write config file "+path)
	}
	return nil
}

// createBackup rotates path.backN files and copies the current file to path.back1
func createBackup(path string) error {
	oldest := backupName(path, backupCount)
	if err := os.Remove(oldest); err != nil && !os.IsNotExist(err) {
		// Log deletion failures (but don't fail the write)
		logger.Warnw("Failed to delete old config backup", logger.FieldPath, oldest, logger.FieldError, err)
	}

	for n := backupCount - 1; n >= 1; n-- {
		from := backupName(path, n)
		if _, err := os.Stat(from); err != nil {
			continue
		}
		if err := os.Rename(from, backupName(path, n+1)); err != nil {
			return errors.Wrapf(err, "failed to rotate %s", from)
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}
	if err := os.WriteFile(backupName(path, 1), content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}
	return nil
}

func backupName(path string, n int) string {
	return path + ".back" + strconv.Itoa(n)
}
