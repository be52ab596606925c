package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBundlePaths(t *testing.T) {
	t.Setenv("INPUT_RESULT-BUNDLE-PATH", "Test.xcresult\n\n  UITest.xcresult \n")

	assert.Equal(t, []string{"Given.xcresult"}, bundlePaths([]string{"Given.xcresult"}))
	assert.Equal(t, []string{"Test.xcresult", "UITest.xcresult"}, bundlePaths(nil))

	t.Setenv("INPUT_RESULT-BUNDLE-PATH", "")
	assert.Empty(t, bundlePaths(nil))
}

func TestGithubToken(t *testing.T) {
	t.Setenv("INPUT_GITHUB-TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")
	assert.Empty(t, githubToken(""))

	t.Setenv("GITHUB_TOKEN", "env")
	assert.Equal(t, "env", githubToken(""))

	t.Setenv("INPUT_GITHUB-TOKEN", "input")
	assert.Equal(t, "input", githubToken(""))
	assert.Equal(t, "flag", githubToken("flag"))
}
