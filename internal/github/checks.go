package github

import (
	"context"
	"fmt"

	"github.com/devbotsxyz/xcresult-annotate/internal/annotate"
	"github.com/devbotsxyz/xcresult-annotate/internal/logging"
)

// Check run statuses and conclusions.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"

	ConclusionNeutral = "neutral"
	ConclusionFailure = "failure"
)

// CheckRun is the part of the checks API response this package reads.
type CheckRun struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	HeadSHA    string `json:"head_sha"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
	HTMLURL    string `json:"html_url,omitempty"`
}

// CheckRunOutput is the output block of a check run. Annotations are appended
// to those already on the run.
type CheckRunOutput struct {
	Title       string                `json:"title"`
	Summary     string                `json:"summary"`
	Text        string                `json:"text,omitempty"`
	Annotations []annotate.Annotation `json:"annotations,omitempty"`
}

// CreateCheckRunRequest is the body of POST /repos/{repo}/check-runs.
type CreateCheckRunRequest struct {
	Name       string          `json:"name"`
	HeadSHA    string          `json:"head_sha"`
	Status     string          `json:"status,omitempty"`
	ExternalID string          `json:"external_id,omitempty"`
	Output     *CheckRunOutput `json:"output,omitempty"`
}

// UpdateCheckRunRequest is the body of PATCH /repos/{repo}/check-runs/{id}.
type UpdateCheckRunRequest struct {
	Status     string          `json:"status,omitempty"`
	Conclusion string          `json:"conclusion,omitempty"`
	Output     *CheckRunOutput `json:"output,omitempty"`
}

// CreateCheckRun creates a check run on repo ("owner/name").
func (c *Client) CreateCheckRun(ctx context.Context, repo string, req CreateCheckRunRequest) (*CheckRun, error) {
	logging.Info("creating check run", "repo", repo, "name", req.Name, "headSHA", req.HeadSHA)

	var run CheckRun
	if err := c.api(ctx, "POST", fmt.Sprintf("repos/%s/check-runs", repo), req, &run); err != nil {
		return nil, fmt.Errorf("failed to create check run: %w", err)
	}

	logging.Debug("created check run", "id", run.ID, "url", run.HTMLURL)
	return &run, nil
}

// UpdateCheckRun updates check run id on repo.
func (c *Client) UpdateCheckRun(ctx context.Context, repo string, id int64, req UpdateCheckRunRequest) (*CheckRun, error) {
	var numAnnotations int
	if req.Output != nil {
		numAnnotations = len(req.Output.Annotations)
	}
	logging.Debug("updating check run", "repo", repo, "id", id, "status", req.Status, "numAnnotations", numAnnotations)

	var run CheckRun
	if err := c.api(ctx, "PATCH", fmt.Sprintf("repos/%s/check-runs/%d", repo, id), req, &run); err != nil {
		return nil, fmt.Errorf("failed to update check run %d: %w", id, err)
	}
	return &run, nil
}
