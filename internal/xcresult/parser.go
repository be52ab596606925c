package xcresult

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/devbotsxyz/xcresult-annotate/internal/logging"
)

// Bundle is a parsed result bundle together with its descriptor.
type Bundle struct {
	Path   string            `json:"path" yaml:"path"`
	Info   *Info             `json:"info" yaml:"info"`
	Record *InvocationRecord `json:"record" yaml:"record"`
}

// Parser reads result bundles. It holds no state between calls, so one Parser
// can serve concurrent parses of different bundles.
type Parser struct {
	loader NodeLoader
}

// NewParser creates a Parser that materializes nodes with loader.
func NewParser(loader NodeLoader) *Parser {
	return &Parser{loader: loader}
}

// Parse parses the bundle at bundlePath and returns its invocation record.
func (p *Parser) Parse(ctx context.Context, bundlePath string) (*InvocationRecord, error) {
	bundle, err := p.ParseBundle(ctx, bundlePath)
	if err != nil {
		return nil, err
	}
	return bundle.Record, nil
}

// ParseBundle parses the bundle at bundlePath. The descriptor is re-read and the
// root node re-materialized on every call.
func (p *Parser) ParseBundle(ctx context.Context, bundlePath string) (*Bundle, error) {
	logging.Debug("parsing result bundle", "path", bundlePath)

	info, err := ReadInfo(bundlePath)
	if err != nil {
		logging.Error("failed to read bundle info", "error", err, "path", bundlePath)
		return nil, err
	}

	if err := info.Validate(); err != nil {
		logging.Error("unsupported result bundle", "error", err, "path", bundlePath,
			"backend", info.Storage.Backend,
			"compression", info.Storage.Compression,
			"major", info.Version.Major)
		return nil, err
	}

	root, err := p.loader.LoadNode(ctx, bundlePath, info.RootID.Hash)
	if err != nil {
		logging.Error("failed to load root node", "error", err, "path", bundlePath, "id", info.RootID.Hash)
		return nil, fmt.Errorf("failed to load root node %s: %w", info.RootID.Hash, err)
	}

	if root.TypeName() != RootTypeName {
		logging.Error("unexpected root type", "path", bundlePath, "type", root.TypeName())
		return nil, &UnexpectedRootTypeError{Actual: root.TypeName()}
	}

	record, err := BuildRecord(root)
	if err != nil {
		logging.Error("failed to build invocation record", "error", err, "path", bundlePath)
		return nil, err
	}

	logging.Info("parsed result bundle",
		"path", bundlePath,
		"rootId", info.RootID.Hash,
		"numActions", len(record.Actions),
		"numWarnings", len(record.Warnings()),
		"numErrors", len(record.Errors()))

	return &Bundle{Path: bundlePath, Info: info, Record: record}, nil
}

// ParseAll parses several bundles concurrently. Results are in the order of
// paths. The first failure cancels the remaining parses and is returned.
func (p *Parser) ParseAll(ctx context.Context, paths []string) ([]*Bundle, error) {
	bundles := make([]*Bundle, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			b, err := p.ParseBundle(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			bundles[i] = b
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bundles, nil
}
