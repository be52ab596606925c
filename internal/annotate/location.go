// Package annotate turns the issues of a parsed result bundle into source
// annotations for a GitHub check run.
package annotate

import (
	"fmt"
	"net/url"
	"strconv"
)

// Location is the source range encoded in a document location URL.
// Column fields are zero when the URL carries none.
type Location struct {
	Path        string
	StartLine   int
	EndLine     int
	StartColumn int
	EndColumn   int
}

// ParseLocation decodes a document location URL such as
//
//	file:///src/HelloTests.swift#EndingLineNumber=23&StartingLineNumber=23
//
// The range parameters are read from the fragment, or from the query when the
// URL has no fragment. A missing end line defaults to the start line.
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("failed to parse location url %q: %w", raw, err)
	}

	encoded := u.RawQuery
	if u.Fragment != "" {
		encoded = u.Fragment
	}
	params, err := url.ParseQuery(encoded)
	if err != nil {
		return Location{}, fmt.Errorf("failed to parse location parameters %q: %w", encoded, err)
	}

	loc := Location{Path: u.Path}
	if loc.StartLine, err = intParam(params, "StartingLineNumber"); err != nil {
		return Location{}, err
	}
	if loc.EndLine, err = intParam(params, "EndingLineNumber"); err != nil {
		return Location{}, err
	}
	if loc.StartColumn, err = intParam(params, "StartingColumnNumber"); err != nil {
		return Location{}, err
	}
	if loc.EndColumn, err = intParam(params, "EndingColumnNumber"); err != nil {
		return Location{}, err
	}
	if loc.EndLine == 0 {
		loc.EndLine = loc.StartLine
	}
	return loc, nil
}

// HasLine reports whether the location names a line.
func (l Location) HasLine() bool {
	return l.StartLine > 0
}

// intParam returns 0 for an absent parameter.
func intParam(params url.Values, name string) (int, error) {
	v := params.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return n, nil
}
