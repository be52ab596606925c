package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Location
	}{
		{
			name: "xcresulttool fragment",
			url:  "file:///Users/runner/work/Hello/Hello/HelloTests/HelloTests.swift#CharacterRangeLen=0&CharacterRangeLoc=853&EndingColumnNumber=13&EndingLineNumber=23&LocationEncoding=1&StartingColumnNumber=13&StartingLineNumber=23",
			want: Location{
				Path:        "/Users/runner/work/Hello/Hello/HelloTests/HelloTests.swift",
				StartLine:   23,
				EndLine:     23,
				StartColumn: 13,
				EndColumn:   13,
			},
		},
		{
			name: "query string",
			url:  "file:///src/App.swift?StartingLineNumber=23&EndingLineNumber=23",
			want: Location{Path: "/src/App.swift", StartLine: 23, EndLine: 23},
		},
		{
			name: "multi line range",
			url:  "file:///src/App.swift#StartingLineNumber=4&EndingLineNumber=9&StartingColumnNumber=2&EndingColumnNumber=7",
			want: Location{Path: "/src/App.swift", StartLine: 4, EndLine: 9, StartColumn: 2, EndColumn: 7},
		},
		{
			name: "end line defaults to start",
			url:  "file:///src/App.swift#StartingLineNumber=12",
			want: Location{Path: "/src/App.swift", StartLine: 12, EndLine: 12},
		},
		{
			name: "no range",
			url:  "file:///src/App.swift",
			want: Location{Path: "/src/App.swift"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocation(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLocation_LineRange(t *testing.T) {
	loc, err := ParseLocation("file:///a.swift#StartingLineNumber=23&EndingLineNumber=23")
	require.NoError(t, err)
	assert.Equal(t, [2]int{23, 23}, [2]int{loc.StartLine, loc.EndLine})
	assert.True(t, loc.HasLine())
}

func TestParseLocation_Invalid(t *testing.T) {
	_, err := ParseLocation("file:///a.swift#StartingLineNumber=abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "StartingLineNumber")

	_, err = ParseLocation("://bad")
	require.Error(t, err)
}
