package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Generator failures. A declaration that does not compile fails with the
// error types of package modelc instead.
var (
	// ErrInvalidConfig is matched by every ConfigError.
	ErrInvalidConfig = errors.New("modelc/gen: invalid configuration")
	// ErrMissingConfig is matched by a ConfigError for an option left unset.
	ErrMissingConfig = errors.New("modelc/gen: missing configuration")
	// ErrGenerationFailed is matched by every GenerationError.
	ErrGenerationFailed = errors.New("modelc/gen: generation failed")
)

// ConfigError reports a generator option that is unset or rejected.
type ConfigError struct {
	// Option is the option name, such as "target" or "workers".
	Option string
	// Value is the rejected value, nil when the option is unset.
	Value  any
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("modelc/gen: %s: %s", e.Option, e.Reason)
	}
	return fmt.Sprintf("modelc/gen: invalid %s %v: %s", e.Option, e.Value, e.Reason)
}

// Is matches ErrInvalidConfig, and ErrMissingConfig when no value was given.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig || target == ErrMissingConfig && e.Value == nil
}

// NewConfigError creates a ConfigError. A nil value reports an unset option.
func NewConfigError(option string, value any, reason string) *ConfigError {
	return &ConfigError{
		Option: option,
		Value:  value,
		Reason: reason,
	}
}

// Generation stages reported by GenerationError.
const (
	StageFingerprint = "fingerprint"
	StageLayout      = "layout"
	StageRender      = "render"
	StageFormat      = "format"
	StageWrite       = "write"
)

// GenerationError reports a failure while producing one generated file or
// the metadata it embeds.
type GenerationError struct {
	Model string // qualified model name; empty for package level files
	File  string
	Stage string
	Cause error
}

// Error formats the failure as "modelc/gen: <stage> <file> (<model>): <cause>".
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("modelc/gen: ")
	b.WriteString(e.Stage)
	switch {
	case e.File != "" && e.Model != "":
		fmt.Fprintf(&b, " %s (%s)", e.File, e.Model)
	case e.File != "":
		b.WriteString(" " + e.File)
	case e.Model != "":
		b.WriteString(" " + e.Model)
	}
	if e.Cause != nil {
		b.WriteString(": " + e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the cause.
func (e *GenerationError) Unwrap() error { return e.Cause }

// Is matches ErrGenerationFailed.
func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

// NewGenerationError creates a GenerationError.
func NewGenerationError(model, file, stage string, cause error) *GenerationError {
	return &GenerationError{
		Model: model,
		File:  file,
		Stage: stage,
		Cause: cause,
	}
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
