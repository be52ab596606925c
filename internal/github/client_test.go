package github

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devbotsxyz/xcresult-annotate/internal/annotate"
)

func TestCreateCheckRun(t *testing.T) {
	runner := &RunnerMock{
		RunFunc: func(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
			return []byte(`{"id": 42, "name": "xcresult", "head_sha": "abc", "status": "in_progress"}`), nil
		},
	}
	client := NewClient(runner)

	run, err := client.CreateCheckRun(context.Background(), "devbotsxyz/hello", CreateCheckRunRequest{
		Name:       "xcresult",
		HeadSHA:    "abc",
		Status:     StatusInProgress,
		ExternalID: "ext",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), run.ID)
	assert.Equal(t, StatusInProgress, run.Status)

	calls := runner.RunCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"api", "--method", "POST", "repos/devbotsxyz/hello/check-runs", "--input", "-"}, calls[0].Args)

	var body map[string]any
	require.NoError(t, json.Unmarshal(calls[0].Stdin, &body))
	assert.Equal(t, "xcresult", body["name"])
	assert.Equal(t, "abc", body["head_sha"])
	assert.Equal(t, "ext", body["external_id"])
	assert.NotContains(t, body, "output")
}

func TestUpdateCheckRun(t *testing.T) {
	runner := &RunnerMock{
		RunFunc: func(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
			return []byte(`{"id": 42, "status": "completed", "conclusion": "neutral"}`), nil
		},
	}
	client := NewClient(runner)

	run, err := client.UpdateCheckRun(context.Background(), "devbotsxyz/hello", 42, UpdateCheckRunRequest{
		Status:     StatusCompleted,
		Conclusion: ConclusionNeutral,
		Output: &CheckRunOutput{
			Title:   "xcresult",
			Summary: "1 warning.",
			Annotations: []annotate.Annotation{{
				Path: "HelloTests/HelloTests.swift", StartLine: 23, EndLine: 23,
				Level: annotate.LevelWarning, Message: "unused",
			}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, ConclusionNeutral, run.Conclusion)

	calls := runner.RunCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "PATCH", calls[0].Args[2])
	assert.Equal(t, "repos/devbotsxyz/hello/check-runs/42", calls[0].Args[3])

	var body struct {
		Output struct {
			Annotations []map[string]any `json:"annotations"`
		} `json:"output"`
	}
	require.NoError(t, json.Unmarshal(calls[0].Stdin, &body))
	require.Len(t, body.Output.Annotations, 1)
	a := body.Output.Annotations[0]
	assert.Equal(t, "HelloTests/HelloTests.swift", a["path"])
	assert.EqualValues(t, 23, a["start_line"])
	assert.EqualValues(t, 23, a["end_line"])
	assert.Equal(t, "warning", a["annotation_level"])
	assert.NotContains(t, a, "start_column")
}

func TestClient_RunnerError(t *testing.T) {
	boom := errors.New("HTTP 403")
	client := NewClient(&RunnerMock{
		RunFunc: func(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
			return nil, boom
		},
	})

	_, err := client.CreateCheckRun(context.Background(), "o/r", CreateCheckRunRequest{Name: "n", HeadSHA: "s"})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to create check run")
}

func TestClient_BadResponse(t *testing.T) {
	client := NewClient(&RunnerMock{
		RunFunc: func(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
			return []byte("not json"), nil
		},
	})

	_, err := client.UpdateCheckRun(context.Background(), "o/r", 1, UpdateCheckRunRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
}

func TestGHRunner_NotFound(t *testing.T) {
	r := &GHRunner{Binary: filepath.Join(t.TempDir(), "missing-gh")}
	_, err := r.Run(context.Background(), nil, "api")
	assert.ErrorIs(t, err, ErrGHNotFound)
}

func TestGHRunner_PassesTokenAndStdin(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script")
	}
	script := filepath.Join(t.TempDir(), "gh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nprintf '%s:' \"$GH_TOKEN\"\ncat\n"), 0755))

	r := &GHRunner{Binary: script, Token: "secret"}
	out, err := r.Run(context.Background(), []byte(`{"a":1}`), "api")
	require.NoError(t, err)
	assert.Equal(t, `secret:{"a":1}`, string(out))
}

func TestGHRunner_Failure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script")
	}
	script := filepath.Join(t.TempDir(), "gh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho 'HTTP 422: Validation Failed' >&2\nexit 1\n"), 0755))

	r := &GHRunner{Binary: script}
	_, err := r.Run(context.Background(), nil, "api", "repos/o/r/check-runs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Validation Failed")
}
