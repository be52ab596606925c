package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/devbotsxyz/xcresult-annotate/internal/annotate"
	"github.com/devbotsxyz/xcresult-annotate/internal/logging"
	"github.com/devbotsxyz/xcresult-annotate/internal/signal"
)

// PublishRequest describes one check run to publish.
type PublishRequest struct {
	Repo        string
	HeadSHA     string
	Name        string
	Title       string
	Annotations []annotate.Annotation
	// BatchSize bounds annotations per request; see annotate.Batch.
	BatchSize int
	// AlwaysCreate creates a check run even when there is nothing to annotate.
	AlwaysCreate bool
}

// PublishResult reports what Publish did.
type PublishResult struct {
	// CheckRun is nil when nothing was published.
	CheckRun   *CheckRun
	ExternalID string
	Conclusion string
	Posted     int
	Requests   int
}

// Publisher posts annotations to a check run in batches.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher on top of client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish creates a check run for req.HeadSHA and attaches req.Annotations to it,
// one update per batch. The last update completes the run with a conclusion of
// failure when any annotation is a failure, and neutral otherwise.
func (p *Publisher) Publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	if req.Repo == "" {
		return nil, fmt.Errorf("repository is required")
	}
	if req.HeadSHA == "" {
		return nil, fmt.Errorf("head sha is required")
	}

	if req.Title == "" {
		req.Title = req.Name
	}

	summary := annotate.Summarize(req.Annotations)
	result := &PublishResult{Conclusion: Conclusion(summary)}

	if summary.Total() == 0 && !req.AlwaysCreate {
		logging.Info("no annotations to publish, skipping check run", "repo", req.Repo)
		return result, nil
	}

	result.ExternalID = uuid.NewString()
	run, err := p.client.CreateCheckRun(ctx, req.Repo, CreateCheckRunRequest{
		Name:       req.Name,
		HeadSHA:    req.HeadSHA,
		Status:     StatusInProgress,
		ExternalID: result.ExternalID,
	})
	if err != nil {
		return nil, err
	}
	result.CheckRun = run
	result.Requests++

	batches := annotate.Batch(req.Annotations, req.BatchSize)
	if len(batches) == 0 {
		batches = [][]annotate.Annotation{nil}
	}

	// Once the run exists, updates continue to completion even after a signal.
	updateCtx := context.WithoutCancel(ctx)
	err = signal.Critical(func() error {
		for i, batch := range batches {
			update := UpdateCheckRunRequest{
				Output: &CheckRunOutput{
					Title:       req.Title,
					Summary:     Summary(summary),
					Annotations: batch,
				},
			}
			if i == len(batches)-1 {
				update.Status = StatusCompleted
				update.Conclusion = result.Conclusion
			}

			updated, err := p.client.UpdateCheckRun(updateCtx, req.Repo, run.ID, update)
			if err != nil {
				return err
			}
			result.CheckRun = updated
			result.Posted += len(batch)
			result.Requests++
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	logging.Info("published check run",
		"repo", req.Repo,
		"id", run.ID,
		"posted", result.Posted,
		"requests", result.Requests,
		"conclusion", result.Conclusion)
	return result, nil
}

// Conclusion returns the check run conclusion for s.
func Conclusion(s annotate.Summary) string {
	if s.Failures > 0 {
		return ConclusionFailure
	}
	return ConclusionNeutral
}

// Summary renders the check run summary line for s.
func Summary(s annotate.Summary) string {
	if s.Total() == 0 {
		return "No issues found."
	}
	var parts []string
	if s.Failures > 0 {
		parts = append(parts, plural(s.Failures, "error"))
	}
	if s.Warnings > 0 {
		parts = append(parts, plural(s.Warnings, "warning"))
	}
	if s.Notices > 0 {
		parts = append(parts, plural(s.Notices, "notice"))
	}
	return strings.Join(parts, ", ") + "."
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
