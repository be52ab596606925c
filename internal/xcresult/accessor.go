package xcresult

import (
	"errors"
	"strconv"
	"time"
)

// Primitive type tags used by xcresulttool.
const (
	TypeInt    = "Int"
	TypeString = "String"
	TypeDate   = "Date"
	TypeArray  = "Array"
)

// NullTypeName is reported as the actual type of a field whose value is null.
const NullTypeName = "null"

// dateLayouts are tried in order. xcresulttool writes the first one.
var dateLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
}

// lookup returns the named field after checking its type tag.
func lookup(n *Node, field, expected string) (*Node, error) {
	child, ok := n.Field(field)
	if !ok {
		return nil, &SchemaMismatchError{Field: field, Expected: expected}
	}
	if child == nil {
		return nil, &SchemaMismatchError{Field: field, Expected: expected, Actual: NullTypeName}
	}
	if child.Type.Name != expected {
		return nil, &SchemaMismatchError{Field: field, Expected: expected, Actual: child.Type.Name}
	}
	return child, nil
}

// Int returns the base-10 integer value of an Int field.
func Int(n *Node, field string) (int, error) {
	child, err := lookup(n, field, TypeInt)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(child.Value, 10, 0)
	if err != nil {
		return 0, &InvalidValueError{Field: field, Type: TypeInt, Value: child.Value, Err: err}
	}
	return int(v), nil
}

// String returns the value of a String field.
func String(n *Node, field string) (string, error) {
	child, err := lookup(n, field, TypeString)
	if err != nil {
		return "", err
	}
	return child.Value, nil
}

// Date returns the value of a Date field.
func Date(n *Node, field string) (time.Time, error) {
	child, err := lookup(n, field, TypeDate)
	if err != nil {
		return time.Time{}, err
	}
	t, err := parseDate(child.Value)
	if err != nil {
		return time.Time{}, &InvalidValueError{Field: field, Type: TypeDate, Value: child.Value, Err: err}
	}
	return t, nil
}

// Array returns the unconverted elements of an Array field.
func Array(n *Node, field string) ([]*Node, error) {
	child, err := lookup(n, field, TypeArray)
	if err != nil {
		return nil, err
	}
	return child.Values, nil
}

// OptionalInt is Int for a field that may be absent; absence yields nil.
func OptionalInt(n *Node, field string) (*int, error) {
	return optional(n, field, Int)
}

// optional checks presence first, treating null as absent; a present field is decoded with get and its
// errors are returned as is.
func optional[T any](n *Node, field string, get func(*Node, string) (T, error)) (*T, error) {
	if !n.Has(field) {
		return nil, nil
	}
	v, err := get(n, field)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseDate(value string) (time.Time, error) {
	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = errors.New("no date layout")
	}
	return time.Time{}, firstErr
}
