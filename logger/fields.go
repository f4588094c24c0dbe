package logger

import (
	"go.uber.org/zap"
)

// Standard field names for structured logging.
// Use these constants instead of raw strings to keep log output queryable.
const (
	FieldComponent = "component"
	FieldStage     = "stage"

	FieldDomain = "domain"
	FieldLocale = "locale"
	FieldKey    = "key"
	FieldPath   = "path"

	FieldRows       = "rows"
	FieldFiles      = "files"
	FieldCount      = "count"
	FieldDurationMS = "duration_ms"

	FieldSpreadsheet = "spreadsheet"
	FieldRange       = "range"

	FieldError = "error"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	s := i18nsync.New(cfg, store, i18nsync.WithLogger(logger.ComponentLogger("sync")))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
// Example:
//
//	domainLog := logger.ChildLogger(base, logger.FieldDomain, "account")
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
