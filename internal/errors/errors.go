// Package errors provides standardized error handling for twinpane.
// It defines the error kinds file operations report, the error types that
// carry them, and helpers for classifying raw filesystem errors.
package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
	// Join joins errors into one
	Join = errors.Join
)

// Common error constants for frequently occurring errors
var (
	ErrNothingToUndo = NewFileError("nothing to undo", "", UndoUnavailable, nil)
	ErrCancelled     = NewFileError("operation cancelled", "", Cancelled, nil)
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// File operation error kinds
	NotADirectory
	NameConflict
	PermissionDenied
	DiskFull
	SourceVanished
	DestinationUnreachable
	Cancelled
	UndoUnavailable
	InvalidPath
	InvalidOperation
	FileOperationFailed
	// Config error kinds
	InvalidConfig
)

var kindNames = map[ErrorKind]string{
	Unknown:                "unknown",
	NotADirectory:          "not a directory",
	NameConflict:           "name conflict",
	PermissionDenied:       "permission denied",
	DiskFull:               "disk full",
	SourceVanished:         "source vanished",
	DestinationUnreachable: "destination unreachable",
	Cancelled:              "cancelled",
	UndoUnavailable:        "undo unavailable",
	InvalidPath:            "invalid path",
	InvalidOperation:       "invalid operation",
	FileOperationFailed:    "operation failed",
	InvalidConfig:          "invalid config",
}

// String returns a short human-readable name for the kind
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Fatal reports whether an error of this kind stops the remaining batch
func (k ErrorKind) Fatal() bool {
	return k == DestinationUnreachable || k == DiskFull || k == Cancelled
}

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// FileError represents errors related to file operations
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// Is matches sentinel file errors by kind, so errors.Is(err, ErrCancelled)
// holds for any cancellation regardless of path.
func (e *FileError) Is(target error) bool {
	var t *FileError
	if !errors.As(target, &t) {
		return false
	}
	return t.path == "" && t.err == nil && t.kind == e.kind
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: KindOf(err),
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: KindOf(err),
	}
}

// kinded is implemented by every error type in this package
type kinded interface {
	Kind() ErrorKind
}

// KindOf returns the kind of the first classified error in err's chain.
// For joined errors the first classified member wins.
func KindOf(err error) ErrorKind {
	for err != nil {
		if k, ok := err.(kinded); ok && k.Kind() != Unknown {
			return k.Kind()
		}
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				if k := KindOf(e); k != Unknown {
					return k
				}
			}
			return Unknown
		}
		err = errors.Unwrap(err)
	}
	return Unknown
}

// Classify converts a raw filesystem error into a FileError with a kind
// derived from the underlying cause. Errors that already carry a kind are
// returned unchanged.
func Classify(msg, path string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != Unknown {
		return err
	}
	return NewFileError(msg, path, kindFromOS(err), err)
}

func kindFromOS(err error) ErrorKind {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Cancelled
	case errors.Is(err, fs.ErrNotExist):
		return SourceVanished
	case errors.Is(err, fs.ErrExist):
		return NameConflict
	case errors.Is(err, fs.ErrPermission):
		return PermissionDenied
	}
	if k := platformKind(err); k != Unknown {
		return k
	}
	return FileOperationFailed
}

// IsFatal reports whether the error must abort the remaining batch
func IsFatal(err error) bool {
	return KindOf(err).Fatal()
}

// IsCancelled checks if the error is a cancellation
func IsCancelled(err error) bool {
	return KindOf(err) == Cancelled
}

// IsNameConflict checks if the error is a name conflict
func IsNameConflict(err error) bool {
	return KindOf(err) == NameConflict
}

// IsNotADirectory checks if the error is a not-a-directory error
func IsNotADirectory(err error) bool {
	return KindOf(err) == NotADirectory
}

// IsSourceVanished checks if the error reports a missing source
func IsSourceVanished(err error) bool {
	return KindOf(err) == SourceVanished
}

// IsPermissionDenied checks if the error is a permission error
func IsPermissionDenied(err error) bool {
	return KindOf(err) == PermissionDenied
}

// IsUndoUnavailable checks if the error reports that nothing can be undone
func IsUndoUnavailable(err error) bool {
	return KindOf(err) == UndoUnavailable
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}
