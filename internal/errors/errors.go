// Package errors provides standardized error handling for scenefuse.
// It defines the error kinds raised while loading import definitions,
// compiling TagString patterns and grouping files into scenes, together
// with helpers for creating, wrapping and inspecting them.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// File error kinds
	FileNotFound
	FileAccessDenied
	InvalidPath
	FileOperationFailed
	// Config error kinds
	InvalidConfig
	ConfigNotFound
	// Definition error kinds
	MalformedPattern
	InvalidDefinition
	DefinitionNotFound
	// Grouping error kinds
	AmbiguousLayer
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case FileNotFound:
		return "file not found"
	case FileAccessDenied:
		return "file access denied"
	case InvalidPath:
		return "invalid path"
	case FileOperationFailed:
		return "file operation failed"
	case InvalidConfig:
		return "invalid config"
	case ConfigNotFound:
		return "config not found"
	case MalformedPattern:
		return "malformed pattern"
	case InvalidDefinition:
		return "invalid definition"
	case DefinitionNotFound:
		return "definition not found"
	case AmbiguousLayer:
		return "ambiguous layer"
	default:
		return "unknown"
	}
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

// PatternError is raised when a TagString cannot be compiled or does not
// carry the captures an import definition requires.
type PatternError struct {
	ApplicationError
	pattern string
}

// NewPatternError creates a new MalformedPattern error for the given TagString.
func NewPatternError(msg string, pattern string, err error) *PatternError {
	return &PatternError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: MalformedPattern,
		},
		pattern: pattern,
	}
}

// Error returns the pattern error message
func (e *PatternError) Error() string {
	if e.pattern != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %q: %v", e.msg, e.pattern, e.err)
		}
		return fmt.Sprintf("%s: %q", e.msg, e.pattern)
	}
	return e.ApplicationError.Error()
}

// Pattern returns the offending TagString
func (e *PatternError) Pattern() string {
	return e.pattern
}

// DefinitionError represents errors in an import definition document
type DefinitionError struct {
	ApplicationError
	name string
}

// NewDefinitionError creates a new definition error
func NewDefinitionError(msg string, name string, kind ErrorKind, err error) *DefinitionError {
	return &DefinitionError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		name: name,
	}
}

// Error returns the definition error message
func (e *DefinitionError) Error() string {
	if e.name != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.name, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.name)
	}
	return e.ApplicationError.Error()
}

// Name returns the import definition name associated with the error
func (e *DefinitionError) Name() string {
	return e.name
}

// AmbiguityError reports two or more files resolving to the same scene and
// layer.
type AmbiguityError struct {
	ApplicationError
	scene string
	layer string
	paths []string
}

// NewAmbiguityError creates a new ambiguous layer error
func NewAmbiguityError(scene, layer string, paths ...string) *AmbiguityError {
	return &AmbiguityError{
		ApplicationError: ApplicationError{
			msg:  "ambiguous layer assignment",
			kind: AmbiguousLayer,
		},
		scene: scene,
		layer: layer,
		paths: paths,
	}
}

// Error returns the ambiguity error message
func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("%s: scene=%s layer=%s: %s",
		e.msg, e.scene, e.layer, strings.Join(e.paths, ", "))
}

// Scene returns the scene name
func (e *AmbiguityError) Scene() string {
	return e.scene
}

// Layer returns the layer name
func (e *AmbiguityError) Layer() string {
	return e.layer
}

// Paths returns the conflicting file paths
func (e *AmbiguityError) Paths() []string {
	out := make([]string, len(e.paths))
	copy(out, e.paths)
	return out
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
		kind: Unknown,
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
		kind: Unknown,
	}
}

// KindOf returns the kind of the first application error in err's chain.
func KindOf(err error) ErrorKind {
	type kinded interface{ Kind() ErrorKind }
	for err != nil {
		if k, ok := err.(kinded); ok && k.Kind() != Unknown {
			return k.Kind()
		}
		err = errors.Unwrap(err)
	}
	return Unknown
}

// IsFileNotFound checks if the error is a file not found error
func IsFileNotFound(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == FileNotFound
	}
	return false
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}

// IsConfigNotFound checks if the error reports a missing config file
func IsConfigNotFound(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == ConfigNotFound
	}
	return false
}

// IsMalformedPattern checks if the error is a MalformedPattern error
func IsMalformedPattern(err error) bool {
	var patternErr *PatternError
	return errors.As(err, &patternErr)
}

// IsInvalidDefinition checks if the error is an invalid definition error
func IsInvalidDefinition(err error) bool {
	var defErr *DefinitionError
	if errors.As(err, &defErr) {
		return defErr.Kind() == InvalidDefinition
	}
	return false
}

// IsDefinitionNotFound checks if the error reports a missing import definition
func IsDefinitionNotFound(err error) bool {
	var defErr *DefinitionError
	if errors.As(err, &defErr) {
		return defErr.Kind() == DefinitionNotFound
	}
	return false
}

// IsAmbiguousLayer checks if the error is an ambiguous layer error
func IsAmbiguousLayer(err error) bool {
	var ambErr *AmbiguityError
	return errors.As(err, &ambErr)
}
