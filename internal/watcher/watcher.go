// Package watcher waits for Xcode to finish writing a result bundle.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/devbotsxyz/xcresult-annotate/internal/logging"
)

// InfoFileName is written last when Xcode finalizes a bundle.
const InfoFileName = "Info.plist"

// Config configures a Watcher.
type Config struct {
	// BundlePath is the .xcresult directory to wait for. Its parent must exist.
	BundlePath string
	// DebounceDur is how long Info.plist must stay unchanged before the bundle
	// counts as complete.
	DebounceDur time.Duration
}

// DefaultConfig returns a config with a 200ms debounce.
func DefaultConfig(bundlePath string) Config {
	return Config{
		BundlePath:  bundlePath,
		DebounceDur: 200 * time.Millisecond,
	}
}

// Watcher observes a bundle directory and its parent.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	infoPath string
	watching bool
}

// New creates a watcher and starts observing the bundle's parent directory.
func New(cfg Config) (*Watcher, error) {
	bundle, err := filepath.Abs(cfg.BundlePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	cfg.BundlePath = bundle

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(bundle)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(bundle), err)
	}

	return &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		infoPath: filepath.Join(bundle, InfoFileName),
	}, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Wait blocks until the bundle's Info.plist exists and has been quiet for the
// debounce duration, or ctx is done.
func (w *Watcher) Wait(ctx context.Context) error {
	timer := time.NewTimer(w.cfg.DebounceDur)
	timer.Stop()
	defer timer.Stop()

	if w.poll() {
		timer.Reset(w.cfg.DebounceDur)
	}

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for %s: %w", w.infoPath, ctx.Err())

		case event, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("file watcher closed")
			}
			if event.Name != w.cfg.BundlePath && event.Name != w.infoPath {
				continue
			}
			logging.Debug("bundle event", "name", event.Name, "op", event.Op.String())
			if w.poll() {
				timer.Reset(w.cfg.DebounceDur)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("file watcher closed")
			}
			return fmt.Errorf("file watcher error: %w", err)

		case <-timer.C:
			if _, err := os.Stat(w.infoPath); err == nil {
				logging.Info("result bundle is complete", "path", w.cfg.BundlePath)
				return nil
			}
		}
	}
}

// poll starts watching the bundle directory once it exists and reports
// whether Info.plist is present.
func (w *Watcher) poll() bool {
	if !w.watching {
		if fi, err := os.Stat(w.cfg.BundlePath); err == nil && fi.IsDir() {
			if err := w.fsw.Add(w.cfg.BundlePath); err != nil {
				logging.Warn("failed to watch bundle directory", "path", w.cfg.BundlePath, "error", err)
			} else {
				w.watching = true
			}
		}
	}
	_, err := os.Stat(w.infoPath)
	return err == nil
}

// WaitForBundle waits up to timeout for the bundle at path to be complete.
func WaitForBundle(ctx context.Context, path string, timeout time.Duration) error {
	w, err := New(DefaultConfig(path))
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return w.Wait(ctx)
}
