package resilience

import (
	"errors"
	"fmt"
)

// ConfigError reports configuration that was rejected before any geometric
// work started (bad scalar, unknown thinning method, wrong reference frame).
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "config: " + e.Err.Error()
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Err.Error())
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError wraps err as a configuration error for field.
func NewConfigError(field string, err error) *ConfigError {
	return &ConfigError{Field: field, Err: err}
}

// ConfigErrorf builds a ConfigError from a format string.
func ConfigErrorf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Err: fmt.Errorf(format, args...)}
}

// IsConfig returns true if err (or any error in its chain) is a ConfigError.
func IsConfig(err error) bool {
	if err == nil {
		return false
	}
	var ce *ConfigError
	return errors.As(err, &ce)
}

// GeometryError wraps a failed planar operation (union, difference, buffer).
// Repaired is true when the failure happened on the retry after both operands
// were repaired, which makes it fatal for the run.
type GeometryError struct {
	Op       string
	Repaired bool
	Err      error
}

func (e *GeometryError) Error() string {
	if e.Repaired {
		return fmt.Sprintf("geometry: %s failed after repair: %s", e.Op, e.Err.Error())
	}
	return fmt.Sprintf("geometry: %s failed: %s", e.Op, e.Err.Error())
}

func (e *GeometryError) Unwrap() error {
	return e.Err
}

// NewGeometryError wraps err as a geometry error for op.
func NewGeometryError(op string, err error) *GeometryError {
	return &GeometryError{Op: op, Err: err}
}

// IsGeometry returns true if err (or any error in its chain) is a GeometryError.
func IsGeometry(err error) bool {
	if err == nil {
		return false
	}
	var ge *GeometryError
	return errors.As(err, &ge)
}

// IsFatalGeometry returns true if err is a GeometryError raised after the
// repair retry.
func IsFatalGeometry(err error) bool {
	var ge *GeometryError
	if !errors.As(err, &ge) {
		return false
	}
	return ge.Repaired
}
