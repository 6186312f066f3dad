package table

import (
	"errors"
	"fmt"
)

var (
	// ErrPageOutOfRange is returned when a page request falls outside the
	// valid range. It is not fatal: the current page stays as it was.
	ErrPageOutOfRange = errors.New("page out of range")
	// ErrUnknownColumn is returned when an operation names a column that is
	// not part of the schema.
	ErrUnknownColumn = errors.New("unknown column")
)

// ConfigurationError reports an invalid setup detected at construction time.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// ParseError reports an input that a strict parser could not convert.
type ParseError struct {
	Kind  Kind
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s %q: %v", e.Kind, e.Input, e.Err)
	}
	return fmt.Sprintf("parse %s %q", e.Kind, e.Input)
}

func (e *ParseError) Unwrap() error { return e.Err }
