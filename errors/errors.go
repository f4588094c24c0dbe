// Package errors provides error handling for i18n-sheets.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// On top of that it defines the four error kinds a sync run can fail with
// (ErrConfig, ErrFileRead, ErrTransport, ErrWrite) and the stage a failure
// happened in, so the CLI can tell the user where a run stopped.
//
// Usage:
//
//	// Classify a failure and name the stage
//	if err := store.Replace(ctx, t); err != nil {
//	    return errors.Transport(errors.StageUpload, err, "failed to replace table")
//	}
//
//	// Check the kind later
//	if errors.Is(err, errors.ErrTransport) {
//	    // ...
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Error kinds of a sync run. Use errors.Is to classify.
var (
	// ErrConfig indicates missing or invalid configuration or credentials
	ErrConfig = New("configuration error")

	// ErrFileRead indicates a locale file is missing or unparsable
	ErrFileRead = New("file read error")

	// ErrTransport indicates the table store fetch or replace call failed
	ErrTransport = New("transport error")

	// ErrWrite indicates a local file or directory write failed
	ErrWrite = New("write error")
)

// Stage names the part of a sync run an error surfaced in.
type Stage string

const (
	StageConfig   Stage = "config"
	StageRead     Stage = "read"
	StageUpload   Stage = "upload"
	StageDownload Stage = "download"
	StageWrite    Stage = "write"
	StageStatus   Stage = "status"
)

type stageError struct {
	stage Stage
	cause error
}

func (e *stageError) Error() string { return string(e.stage) + ": " + e.cause.Error() }
func (e *stageError) Unwrap() error { return e.cause }

// WithStage tags err with the stage it happened in.
// The outermost stage wins when an error is tagged twice.
func WithStage(err error, stage Stage) error {
	if err == nil {
		return nil
	}
	return &stageError{stage: stage, cause: err}
}

// StageOf returns the outermost stage err was tagged with, or "" if none.
func StageOf(err error) Stage {
	var se *stageError
	if As(err, &se) {
		return se.stage
	}
	return ""
}

// Config creates a configuration error with a formatted message
func Config(format string, args ...interface{}) error {
	return WithStage(Mark(Newf(format, args...), ErrConfig), StageConfig)
}

// WrapConfig marks err as a configuration error
func WrapConfig(err error, msg string) error {
	if err == nil {
		return nil
	}
	return WithStage(Mark(Wrap(err, msg), ErrConfig), StageConfig)
}

// FileRead marks err as a failure to read the locale file at path
func FileRead(err error, path string) error {
	if err == nil {
		return nil
	}
	return WithStage(Mark(Wrapf(err, "failed to read %s", path), ErrFileRead), StageRead)
}

// Transport marks err as a table store failure in the given stage
func Transport(stage Stage, err error, msg string) error {
	if err == nil {
		return nil
	}
	return WithStage(Mark(Wrap(err, msg), ErrTransport), stage)
}

// Write marks err as a failure to write the local file at path
func Write(err error, path string) error {
	if err == nil {
		return nil
	}
	return WithStage(Mark(Wrapf(err, "failed to write %s", path), ErrWrite), StageWrite)
}

// Kind returns the sync error kind err belongs to, or nil if it is none of them.
func Kind(err error) error {
	for _, kind := range []error{ErrConfig, ErrFileRead, ErrTransport, ErrWrite} {
		if Is(err, kind) {
			return kind
		}
	}
	return nil
}
