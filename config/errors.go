// Package config holds the settings shared by the projection packages:
// the configuration error kind and the environment defaults.
package config

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every *Error with errors.Is.
var ErrConfiguration = errors.New("configuration error")

// Error is returned when a projection input violates a precondition.
// Such errors are always reported before any random number is drawn.
type Error struct {
	// Param names the offending input.
	Param string
	// Msg describes the violation.
	Msg string
}

// Errorf creates a new *Error for the parameter.
func Errorf(param, format string, args ...interface{}) error {
	return &Error{Param: param, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Param, e.Msg)
}

// Is reports whether target is ErrConfiguration.
func (e *Error) Is(target error) bool {
	return target == ErrConfiguration
}
