package cmd

import (
	"os"
	"strings"
)

// actionInput returns a GitHub Action input, which the runner exposes as
// INPUT_<NAME> with the name upper-cased and spaces replaced by underscores.
func actionInput(name string) string {
	key := "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
	return strings.TrimSpace(os.Getenv(key))
}

// bundlePaths returns args, or the bundle paths from the result-bundle-path
// action input, one per line.
func bundlePaths(args []string) []string {
	if len(args) > 0 {
		return args
	}
	var paths []string
	for _, line := range strings.Split(actionInput("result-bundle-path"), "\n") {
		if p := strings.TrimSpace(line); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// githubToken returns the first token found in flag, the github-token action
// input, or GITHUB_TOKEN.
func githubToken(flag string) string {
	if flag != "" {
		return flag
	}
	if v := actionInput("github-token"); v != "" {
		return v
	}
	return os.Getenv("GITHUB_TOKEN")
}
