package git_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devbotsxyz/xcresult-annotate/internal/git"
)

// initRepo creates a repository with one commit and a nested directory.
func initRepo(t *testing.T) (root, nested, sha string) {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	repo, err := gogit.PlainInit(root, false)
	require.NoError(t, err, "failed to init repository")

	nested = filepath.Join(root, "HelloTests")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "HelloTests.swift"), []byte("import XCTest\n"), 0644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("HelloTests/HelloTests.swift")
	require.NoError(t, err)

	hash, err := wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err, "failed to commit")

	return root, nested, hash.String()
}

func TestRoot(t *testing.T) {
	root, nested, _ := initRepo(t)

	got, err := git.Root(nested)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestHeadSHA(t *testing.T) {
	_, nested, sha := initRepo(t)

	got, err := git.HeadSHA(nested)
	require.NoError(t, err)
	assert.Equal(t, sha, got)
	assert.Len(t, got, 40)
}

func TestRoot_NotRepository(t *testing.T) {
	_, err := git.Root(t.TempDir())
	assert.ErrorIs(t, err, git.ErrNotRepository)
}
