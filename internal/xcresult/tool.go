package xcresult

//go:generate moq -stub -out nodeloader_mock.go . NodeLoader:NodeLoaderMock

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/devbotsxyz/xcresult-annotate/internal/logging"
)

// NodeLoader materializes a node of a result bundle by its content identifier.
type NodeLoader interface {
	LoadNode(ctx context.Context, bundlePath, id string) (*Node, error)
}

// LegacyMode controls whether "get object --legacy" is used. Xcode 16 moved the
// JSON node format behind that flag.
type LegacyMode string

const (
	LegacyAuto   LegacyMode = "auto"
	LegacyAlways LegacyMode = "always"
	LegacyNever  LegacyMode = "never"
)

const (
	// DefaultXcrun is the launcher used to find xcresulttool.
	DefaultXcrun = "xcrun"

	// legacyMinimumVersion is the first xcresulttool version that requires --legacy.
	legacyMinimumVersion = 23021

	probeExpiration      = 30 * time.Minute
	probeCleanupInterval = time.Hour
)

var toolVersionPattern = regexp.MustCompile(`xcresulttool version (\d+)`)

// ToolLoader loads nodes by running "xcrun xcresulttool get".
// Nodes are never cached; only the tool version probe is.
type ToolLoader struct {
	xcrun  string
	legacy LegacyMode
	probes *cache.Cache
}

// Compile-time check that ToolLoader implements NodeLoader.
var _ NodeLoader = (*ToolLoader)(nil)

// NewToolLoader creates a ToolLoader. An empty xcrun uses DefaultXcrun and an
// empty mode uses LegacyAuto.
func NewToolLoader(xcrun string, legacy LegacyMode) *ToolLoader {
	if xcrun == "" {
		xcrun = DefaultXcrun
	}
	if legacy == "" {
		legacy = LegacyAuto
	}
	return &ToolLoader{
		xcrun:  xcrun,
		legacy: legacy,
		probes: cache.New(probeExpiration, probeCleanupInterval),
	}
}

// LoadNode implements NodeLoader.
func (l *ToolLoader) LoadNode(ctx context.Context, bundlePath, id string) (*Node, error) {
	xcrunPath, err := exec.LookPath(l.xcrun)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, l.xcrun)
	}

	legacy := l.useLegacy(ctx, xcrunPath)
	args := getArgs(legacy, bundlePath, id)
	logging.Debug("running xcresulttool", "xcrun", xcrunPath, "args", args)

	cmd := exec.CommandContext(ctx, xcrunPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("xcresulttool get cancelled: %w", ctxErr)
		}
		logging.Error("xcresulttool get failed", "error", err, "stderr", stderr.String())
		return nil, fmt.Errorf("xcresulttool get failed: %s: %w", strings.TrimSpace(stderr.String()), err)
	}

	node, err := DecodeNode(output)
	if err != nil {
		return nil, fmt.Errorf("failed to parse xcresulttool output: %w", err)
	}
	return node, nil
}

// useLegacy resolves the legacy mode, probing the tool version in auto mode.
// A failed probe falls back to the pre-Xcode 16 invocation.
func (l *ToolLoader) useLegacy(ctx context.Context, xcrunPath string) bool {
	switch l.legacy {
	case LegacyAlways:
		return true
	case LegacyNever:
		return false
	}

	if cached, found := l.probes.Get(xcrunPath); found {
		if legacy, ok := cached.(bool); ok {
			return legacy
		}
	}

	cmd := exec.CommandContext(ctx, xcrunPath, "xcresulttool", "version")
	output, err := cmd.Output()
	if err != nil {
		logging.Warn("xcresulttool version probe failed", "error", err)
		return false
	}
	version, err := parseToolVersion(string(output))
	if err != nil {
		logging.Warn("unrecognized xcresulttool version", "error", err, "output", string(output))
		return false
	}

	legacy := version >= legacyMinimumVersion
	logging.Debug("probed xcresulttool", "version", version, "legacy", legacy)
	l.probes.Set(xcrunPath, legacy, cache.DefaultExpiration)
	return legacy
}

// getArgs returns the xcrun arguments for fetching node id as JSON.
// An empty id fetches the root record.
func getArgs(legacy bool, bundlePath, id string) []string {
	args := []string{"xcresulttool", "get"}
	if legacy {
		args = append(args, "object", "--legacy")
	}
	args = append(args, "--format", "json", "--path", bundlePath)
	if id != "" {
		args = append(args, "--id", id)
	}
	return args
}

// parseToolVersion extracts the build number from "xcresulttool version 23021, format version 3.53 (current)".
func parseToolVersion(output string) (int, error) {
	m := toolVersionPattern.FindStringSubmatch(output)
	if len(m) != 2 {
		return 0, errors.New("no version in xcresulttool output")
	}
	return strconv.Atoi(m[1])
}
