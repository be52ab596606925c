package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"howett.net/plist"
)

// BundleInfo describes the Info.plist written by WriteBundle.
type BundleInfo struct {
	Backend     string
	Compression string
	Major       int
	Minor       int
	RootHash    string
}

// DefaultBundleInfo returns a descriptor for a supported bundle format.
func DefaultBundleInfo() BundleInfo {
	return BundleInfo{
		Backend:     "fileBacked2",
		Compression: "standard",
		Major:       3,
		Minor:       24,
		RootHash:    "0~root",
	}
}

// WriteBundle creates an .xcresult directory under t.TempDir() containing an
// Info.plist built from info, and returns its path.
func WriteBundle(t *testing.T, info BundleInfo) string {
	t.Helper()

	bundle := filepath.Join(t.TempDir(), "Test.xcresult")
	require.NoError(t, os.MkdirAll(bundle, 0755), "failed to create bundle dir")

	descriptor := map[string]any{
		"dateCreated":       time.Date(2020, 11, 24, 18, 44, 38, 0, time.UTC),
		"externalLocations": []any{},
		"rootId": map[string]any{
			"hash": info.RootHash,
		},
		"storage": map[string]any{
			"backend":     info.Backend,
			"compression": info.Compression,
		},
		"version": map[string]any{
			"major": info.Major,
			"minor": info.Minor,
		},
	}
	data, err := plist.MarshalIndent(descriptor, plist.XMLFormat, "\t")
	require.NoError(t, err, "failed to encode Info.plist")
	require.NoError(t, os.WriteFile(filepath.Join(bundle, "Info.plist"), data, 0644), "failed to write Info.plist")

	return bundle
}

// Typed returns an object node of the given concrete type.
func Typed(name string, fields map[string]any) map[string]any {
	node := map[string]any{"_type": map[string]any{"_name": name}}
	for k, v := range fields {
		node[k] = v
	}
	return node
}

// Subtyped returns an object node whose concrete type has a supertype.
func Subtyped(name, supertype string, fields map[string]any) map[string]any {
	node := Typed(name, fields)
	node["_type"] = map[string]any{
		"_name":      name,
		"_supertype": map[string]any{"_name": supertype},
	}
	return node
}

// Primitive returns a primitive node with an explicit type tag.
func Primitive(typeName, value string) map[string]any {
	return map[string]any{
		"_type":  map[string]any{"_name": typeName},
		"_value": value,
	}
}

// StringValue returns a String node.
func StringValue(v string) map[string]any {
	return Primitive("String", v)
}

// IntValue returns an Int node.
func IntValue(v int) map[string]any {
	return Primitive("Int", strconv.Itoa(v))
}

// DateValue returns a Date node in xcresulttool's format.
func DateValue(v string) map[string]any {
	return Primitive("Date", v)
}

// ArrayOf returns an Array node.
func ArrayOf(values ...any) map[string]any {
	if values == nil {
		values = []any{}
	}
	return map[string]any{
		"_type":   map[string]any{"_name": "Array"},
		"_values": values,
	}
}

// ActionRecord returns a complete ActionRecord node.
func ActionRecord(title string) map[string]any {
	return Typed("ActionRecord", map[string]any{
		"startedTime":       DateValue("2020-11-24T19:44:21.000+0100"),
		"endedTime":         DateValue("2020-11-24T19:44:38.000+0100"),
		"title":             StringValue(title),
		"schemeCommandName": StringValue("Test"),
		"schemeTaskName":    StringValue("BuildAndAction"),
	})
}

// IssueSummary returns an IssueSummary node; an empty url omits the location.
func IssueSummary(issueType, message, url string) map[string]any {
	fields := map[string]any{
		"issueType": StringValue(issueType),
		"message":   StringValue(message),
	}
	if url != "" {
		fields["documentLocationInCreatingWorkspace"] = Typed("DocumentLocation", map[string]any{
			"concreteTypeName": StringValue("DVTTextDocumentLocation"),
			"url":              StringValue(url),
		})
	}
	return Typed("IssueSummary", fields)
}

// MarshalNode encodes a node built with the helpers above as JSON.
func MarshalNode(t *testing.T, node any) []byte {
	t.Helper()
	data, err := json.Marshal(node)
	require.NoError(t, err, "failed to marshal node")
	return data
}

// ReadFixture reads a file from the calling package's testdata directory.
func ReadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err, "failed to read fixture %s", name)
	return data
}
