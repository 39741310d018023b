package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrEmptyCorpus      = errors.New("empty corpus")
	ErrEmptyVocabulary  = errors.New("empty vocabulary")
	ErrMissingColumn    = errors.New("missing required column")
	ErrCorruptArtifact  = errors.New("corrupt artifact")
)

// ParamError attributes a configuration failure to a single parameter.
type ParamError struct {
	Param  string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s=%v: %s", e.Param, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidConfig.
func (e *ParamError) Unwrap() error { return ErrInvalidConfig }

// Param is shorthand for building a ParamError.
func Param(name string, value any, reason string) error {
	return &ParamError{Param: name, Value: value, Reason: reason}
}
