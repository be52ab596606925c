// Package testutil provides shared test fixtures for result bundles.
//
// Bundles are written to t.TempDir() with a real Info.plist, and xcresulttool
// nodes are built as JSON-compatible maps:
//
//	root := testutil.Typed("ActionsInvocationRecord", map[string]any{
//	    "metrics": testutil.Typed("ResultMetrics", map[string]any{
//	        "testsCount": testutil.IntValue(4),
//	    }),
//	})
//	data := testutil.MarshalNode(t, root)
//
// Mocks for package interfaces are generated next to the interfaces with moq
// (github.com/matryer/moq):
//
//	go generate ./...
package testutil
