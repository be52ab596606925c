package annotate

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/devbotsxyz/xcresult-annotate/internal/git"
	"github.com/devbotsxyz/xcresult-annotate/internal/logging"
)

// PathMapper turns the absolute paths recorded by Xcode into repository-relative
// paths GitHub can attach annotations to.
type PathMapper struct {
	// StripComponents, when set, drops that many leading path components.
	StripComponents *int
	// Root is the work tree root paths are made relative to when
	// StripComponents is unset. Empty leaves paths unchanged.
	Root string
}

// NewPathMapper returns a mapper that strips strip components, or when strip is
// nil, resolves paths against the git work tree enclosing dir.
func NewPathMapper(strip *int, dir string) *PathMapper {
	m := &PathMapper{StripComponents: strip}
	if strip != nil {
		return m
	}
	root, err := git.Root(dir)
	if err != nil {
		logging.Debug("no work tree for path mapping, keeping paths as recorded", "dir", dir, "error", err)
		return m
	}
	m.Root = root
	return m
}

// Map returns the normalized form of p.
func (m *PathMapper) Map(p string) string {
	if m.StripComponents != nil {
		return strip(p, *m.StripComponents)
	}
	if m.Root != "" {
		rel, err := filepath.Rel(m.Root, filepath.FromSlash(p))
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return filepath.ToSlash(rel)
		}
	}
	return p
}

// strip drops n leading components. The file name is always kept.
func strip(p string, n int) string {
	parts := strings.Split(strings.TrimPrefix(path.Clean(p), "/"), "/")
	if n >= len(parts) {
		n = len(parts) - 1
	}
	if n < 0 {
		n = 0
	}
	return strings.Join(parts[n:], "/")
}
