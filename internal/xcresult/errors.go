package xcresult

import (
	"errors"
	"fmt"
)

// ErrToolNotFound is returned when xcrun cannot be located.
var ErrToolNotFound = errors.New("xcresulttool not available")

// SchemaMismatchError reports a field whose type tag is not the expected one.
// Actual is empty when the field is missing altogether, and NullTypeName when
// it is present with a null value.
type SchemaMismatchError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *SchemaMismatchError) Error() string {
	if e.Actual == "" {
		return fmt.Sprintf("cannot get %s: expected type %s but field is missing", e.Field, e.Expected)
	}
	return fmt.Sprintf("cannot get %s: expected type %s but got %s", e.Field, e.Expected, e.Actual)
}

// InvalidValueError reports a correctly tagged field whose value cannot be decoded.
type InvalidValueError struct {
	Field string
	Type  string
	Value string
	Err   error
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("cannot get %s: invalid %s value %q: %v", e.Field, e.Type, e.Value, e.Err)
}

func (e *InvalidValueError) Unwrap() error {
	return e.Err
}

// UnsupportedFormatError reports a bundle descriptor value this package does not handle.
type UnsupportedFormatError struct {
	Field string // "storage backend", "storage compression" or "major version"
	Value any
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("cannot parse result bundle: unsupported %s %v", e.Field, e.Value)
}

// UnexpectedRootTypeError reports a root node that is not an ActionsInvocationRecord.
type UnexpectedRootTypeError struct {
	Actual string
}

func (e *UnexpectedRootTypeError) Error() string {
	return fmt.Sprintf("cannot parse result bundle: unexpected root type %s", e.Actual)
}
