package kaleido

import (
	"errors"
	"fmt"
)

// Configuration errors. They are wrapped in a *ConfigurationError naming the
// offending field.
var (
	// ErrNoMirrors is returned when the mirror list is empty.
	ErrNoMirrors = errors.New("kaleido: at least one mirror is required")

	// ErrTooManyMirrors is returned for more than MaxMirrors mirrors.
	ErrTooManyMirrors = errors.New("kaleido: too many mirrors")

	// ErrDegenerateMirrorCount is returned for a single mirror. With one
	// mirror every extension repeats the previous reflection, so there is
	// no path beyond depth 1 to enumerate.
	ErrDegenerateMirrorCount = errors.New("kaleido: a single mirror has no non-repeating paths")

	// ErrInvalidMirror is returned for a mirror with a non-finite slope or offset.
	ErrInvalidMirror = errors.New("kaleido: mirror parameters must be finite")

	// ErrInvalidDepth is returned for a negative depth.
	ErrInvalidDepth = errors.New("kaleido: depth must not be negative")

	// ErrIndexOverflow is returned when the path table or its codes would
	// not fit the 32-bit index width of the compute kernels.
	ErrIndexOverflow = errors.New("kaleido: path table exceeds index width")

	// ErrInvalidDimensions is returned for non-positive display dimensions.
	ErrInvalidDimensions = errors.New("kaleido: display dimensions must be positive")

	// ErrInvalidMode is returned for an unknown display mode.
	ErrInvalidMode = errors.New("kaleido: unknown display mode")

	// ErrInvalidParameter is returned for out-of-range shading parameters.
	ErrInvalidParameter = errors.New("kaleido: parameter out of range")
)

// ErrSubstrateUnavailable is returned when the requested compute substrate
// is not registered or cannot be opened.
var ErrSubstrateUnavailable = errors.New("kaleido: compute substrate unavailable")

// ErrClosed is returned by Pipeline methods after Close.
var ErrClosed = errors.New("kaleido: pipeline closed")

// ConfigurationError reports an invalid configuration value. It is fatal at
// startup: no pipeline can be built from the configuration.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func configErr(field string, err error) error {
	return &ConfigurationError{Field: field, Err: err}
}

// configErrf wraps err with extra detail.
func configErrf(field string, err error, format string, args ...any) error {
	return &ConfigurationError{Field: field, Err: fmt.Errorf("%w: "+format, append([]any{err}, args...)...)}
}
