package github

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/devbotsxyz/xcresult-annotate/internal/git"
)

// Environment variables set by GitHub Actions.
const (
	EnvRepository = "GITHUB_REPOSITORY"
	EnvSHA        = "GITHUB_SHA"
	EnvToken      = "GITHUB_TOKEN"
)

// ErrNoRepository is returned when the target repository cannot be determined.
var ErrNoRepository = errors.New("repository not set")

// ResolveRepository returns repo when set, else GITHUB_REPOSITORY.
func ResolveRepository(repo string) (string, error) {
	if repo == "" {
		repo = os.Getenv(EnvRepository)
	}
	if repo == "" {
		return "", fmt.Errorf("%w: pass --repo or set %s", ErrNoRepository, EnvRepository)
	}
	if owner, name, ok := strings.Cut(repo, "/"); !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("invalid repository %q: expected owner/name", repo)
	}
	return repo, nil
}

// ResolveHeadSHA returns sha when set, else GITHUB_SHA, else the HEAD commit of
// the repository enclosing dir.
func ResolveHeadSHA(sha, dir string) (string, error) {
	if sha != "" {
		return sha, nil
	}
	if env := os.Getenv(EnvSHA); env != "" {
		return env, nil
	}
	head, err := git.HeadSHA(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve head sha: %w", err)
	}
	return head, nil
}
