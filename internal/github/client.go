// Package github publishes annotations to GitHub, either through the checks
// API (driven by the gh CLI) or as workflow commands on stdout.
package github

//go:generate moq -stub -out runner_mock.go . Runner:RunnerMock

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/devbotsxyz/xcresult-annotate/internal/logging"
)

// Runner executes gh with the given arguments, feeding stdin to the process.
type Runner interface {
	Run(ctx context.Context, stdin []byte, args ...string) ([]byte, error)
}

// ErrGHNotFound is returned when the gh binary cannot be found.
var ErrGHNotFound = errors.New("gh not found")

// GHRunner runs the gh CLI.
type GHRunner struct {
	// Binary defaults to "gh".
	Binary string
	// Token is passed as GH_TOKEN when set.
	Token string
}

// Run implements Runner.
func (r *GHRunner) Run(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
	binary := r.Binary
	if binary == "" {
		binary = "gh"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrGHNotFound, binary)
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	if r.Token != "" {
		cmd.Env = append(os.Environ(), "GH_TOKEN="+r.Token)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("gh cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("gh %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}

// Client wraps the gh CLI for GitHub API operations.
type Client struct {
	runner Runner
}

// NewClient creates a new GitHub client.
func NewClient(runner Runner) *Client {
	return &Client{runner: runner}
}

// api sends body as JSON to a REST endpoint and decodes the response into out.
func (c *Client) api(ctx context.Context, method, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	logging.Debug("gh api request", "method", method, "endpoint", endpoint, "bytes", len(payload))

	output, err := c.runner.Run(ctx, payload, "api", "--method", method, endpoint, "--input", "-")
	if err != nil {
		logging.Error("gh api failed", "error", err, "method", method, "endpoint", endpoint)
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(output, out); err != nil {
		logging.Error("failed to parse gh api response", "error", err, "output", string(output))
		return fmt.Errorf("failed to parse response from %s: %w", endpoint, err)
	}
	return nil
}
