package xcresult

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devbotsxyz/xcresult-annotate/internal/testutil"
)

// fixtureLoader serves testdata/root.json for every node id.
func fixtureLoader(t *testing.T) *NodeLoaderMock {
	data := testutil.ReadFixture(t, "root.json")
	return &NodeLoaderMock{
		LoadNodeFunc: func(ctx context.Context, bundlePath, id string) (*Node, error) {
			return DecodeNode(data)
		},
	}
}

func TestParse_FixtureBundle(t *testing.T) {
	loader := fixtureLoader(t)
	parser := NewParser(loader)

	record, err := parser.Parse(context.Background(), filepath.Join("testdata", "Test.xcresult"))
	require.NoError(t, err)
	require.NotNil(t, record)
	require.NotNil(t, record.Issues)
	assert.Len(t, record.Issues.WarningSummaries, 2)

	calls := loader.LoadNodeCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, filepath.Join("testdata", "Test.xcresult"), calls[0].BundlePath)
	assert.Equal(t, "0~K2hBKlZ_ivdrD1v7dJKeTw8ZyxBQTf0XKpL5GgRZ6ebk2lYKdLNm6EHtBmDd3cXOZnmUNt3cVAg_lYVjjzImaw==", calls[0].ID)
}

func TestParseBundle_KeepsInfo(t *testing.T) {
	parser := NewParser(fixtureLoader(t))

	bundle, err := parser.ParseBundle(context.Background(), filepath.Join("testdata", "Test.xcresult"))
	require.NoError(t, err)
	assert.Equal(t, SupportedStorageBackend, bundle.Info.Storage.Backend)
	assert.Equal(t, 3, bundle.Info.Version.Major)
	assert.Equal(t, 24, bundle.Info.Version.Minor)
	assert.Equal(t, 2020, bundle.Info.DateCreated.Year())
}

func TestParse_UnsupportedFormat(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*testutil.BundleInfo)
		wantField string
		wantValue any
	}{
		{
			name:      "storage backend",
			modify:    func(i *testutil.BundleInfo) { i.Backend = "fileBacked3" },
			wantField: "storage backend",
			wantValue: "fileBacked3",
		},
		{
			name:      "storage compression",
			modify:    func(i *testutil.BundleInfo) { i.Compression = "zstd" },
			wantField: "storage compression",
			wantValue: "zstd",
		},
		{
			name:      "newer major version",
			modify:    func(i *testutil.BundleInfo) { i.Major = 4 },
			wantField: "major version",
			wantValue: 4,
		},
		{
			name:      "older major version",
			modify:    func(i *testutil.BundleInfo) { i.Major = 2 },
			wantField: "major version",
			wantValue: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := testutil.DefaultBundleInfo()
			tt.modify(&info)
			bundle := testutil.WriteBundle(t, info)

			loader := &NodeLoaderMock{}
			_, err := NewParser(loader).Parse(context.Background(), bundle)

			var unsupported *UnsupportedFormatError
			require.ErrorAs(t, err, &unsupported)
			assert.Equal(t, tt.wantField, unsupported.Field)
			assert.Equal(t, tt.wantValue, unsupported.Value)
			assert.Empty(t, loader.LoadNodeCalls(), "the root node must not be requested")
		})
	}
}

func TestParse_UnexpectedRootType(t *testing.T) {
	bundle := testutil.WriteBundle(t, testutil.DefaultBundleInfo())
	root := testutil.MarshalNode(t, testutil.Typed("SomethingElse", map[string]any{
		// Would fail the builder if it were reached.
		"actions": testutil.StringValue("not an array"),
	}))
	loader := &NodeLoaderMock{
		LoadNodeFunc: func(ctx context.Context, bundlePath, id string) (*Node, error) {
			return DecodeNode(root)
		},
	}

	_, err := NewParser(loader).Parse(context.Background(), bundle)

	var unexpected *UnexpectedRootTypeError
	require.ErrorAs(t, err, &unexpected)
	assert.Equal(t, "SomethingElse", unexpected.Actual)
	var mismatch *SchemaMismatchError
	assert.False(t, errors.As(err, &mismatch))
}

func TestParse_MissingInfo(t *testing.T) {
	loader := &NodeLoaderMock{}
	_, err := NewParser(loader).Parse(context.Background(), t.TempDir())

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, loader.LoadNodeCalls())
}

func TestParse_CorruptInfo(t *testing.T) {
	bundle := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bundle, InfoFileName), []byte("<plist><dict><key>"), 0644))

	_, err := NewParser(&NodeLoaderMock{}).Parse(context.Background(), bundle)
	assert.Error(t, err)
}

func TestParse_LoaderError(t *testing.T) {
	bundle := testutil.WriteBundle(t, testutil.DefaultBundleInfo())
	loaderErr := errors.New("xcresulttool exploded")
	loader := &NodeLoaderMock{
		LoadNodeFunc: func(ctx context.Context, bundlePath, id string) (*Node, error) {
			return nil, loaderErr
		},
	}

	_, err := NewParser(loader).Parse(context.Background(), bundle)
	assert.ErrorIs(t, err, loaderErr)
}

func TestParse_BuilderErrorPropagates(t *testing.T) {
	bundle := testutil.WriteBundle(t, testutil.DefaultBundleInfo())
	root := testutil.MarshalNode(t, testutil.Typed(RootTypeName, map[string]any{
		"metrics": testutil.Typed("ResultMetrics", map[string]any{
			"testsCount": testutil.StringValue("4"),
		}),
	}))
	loader := &NodeLoaderMock{
		LoadNodeFunc: func(ctx context.Context, bundlePath, id string) (*Node, error) {
			return DecodeNode(root)
		},
	}

	record, err := NewParser(loader).Parse(context.Background(), bundle)
	assert.Nil(t, record)
	mismatch, ok := err.(*SchemaMismatchError)
	require.True(t, ok, "got %T", err)
	assert.Equal(t, "testsCount", mismatch.Field)
}

func TestParse_Idempotent(t *testing.T) {
	loader := fixtureLoader(t)
	parser := NewParser(loader)
	path := filepath.Join("testdata", "Test.xcresult")

	first, err := parser.Parse(context.Background(), path)
	require.NoError(t, err)
	second, err := parser.Parse(context.Background(), path)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("records differ between parses (-first +second):\n%s", diff)
	}
	assert.Len(t, loader.LoadNodeCalls(), 2, "root node must be materialized on every parse")
}

func TestParseAll(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = map[string]bool{}
	)
	bundles := make([]string, 3)
	for i := range bundles {
		info := testutil.DefaultBundleInfo()
		info.RootHash = "0~" + string(rune('a'+i))
		bundles[i] = testutil.WriteBundle(t, info)
	}

	loader := &NodeLoaderMock{
		LoadNodeFunc: func(ctx context.Context, bundlePath, id string) (*Node, error) {
			mu.Lock()
			seen[id] = true
			mu.Unlock()
			return DecodeNode(testutil.MarshalNode(t, testutil.Typed(RootTypeName, map[string]any{
				"actions": testutil.ArrayOf(testutil.ActionRecord(id)),
			})))
		},
	}

	results, err := NewParser(loader).ParseAll(context.Background(), bundles)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, b := range results {
		assert.Equal(t, bundles[i], b.Path)
		require.Len(t, b.Record.Actions, 1)
		assert.Equal(t, b.Info.RootID.Hash, b.Record.Actions[0].Title)
	}
	assert.Len(t, seen, 3)
}

func TestParseAll_FirstErrorWins(t *testing.T) {
	good := testutil.WriteBundle(t, testutil.DefaultBundleInfo())
	bad := t.TempDir()

	loader := &NodeLoaderMock{
		LoadNodeFunc: func(ctx context.Context, bundlePath, id string) (*Node, error) {
			return DecodeNode(testutil.MarshalNode(t, testutil.Typed(RootTypeName, nil)))
		},
	}

	results, err := NewParser(loader).ParseAll(context.Background(), []string{good, bad})
	require.Error(t, err)
	assert.Nil(t, results)
	assert.Contains(t, err.Error(), bad)
}
