package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// StateDir is the directory holding configuration, logs and history.
	StateDir = ".xcresult-annotate"
	// ConfigFile is the name of the config file inside StateDir.
	ConfigFile = "config.toml"
)

// Workspace is a directory with an optional .xcresult-annotate/ state directory.
type Workspace struct {
	Root   string
	Config *Config
	// Found is false when no config file exists and defaults are in use.
	Found bool
}

// StatePath returns the path of the state directory.
func (w *Workspace) StatePath() string {
	return filepath.Join(w.Root, StateDir)
}

// ConfigPath returns the path of the config file.
func (w *Workspace) ConfigPath() string {
	return filepath.Join(w.StatePath(), ConfigFile)
}

// HistoryPath returns the path of the history database.
func (w *Workspace) HistoryPath() string {
	p := w.Config.History.GetPath()
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(w.StatePath(), p)
}

// Find walks up from startDir looking for .xcresult-annotate/config.toml.
// When none is found, the workspace is rooted at startDir with a default config.
func Find(startDir string) (*Workspace, error) {
	start, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	for dir := start; ; {
		configPath := filepath.Join(dir, StateDir, ConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}
			return &Workspace{Root: dir, Config: cfg, Found: true}, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return &Workspace{Root: start, Config: &Config{}}, nil
		}
		dir = parent
	}
}

// Load opens the workspace for an explicit config file. The workspace root is
// the directory containing the state directory.
func Load(configPath string) (*Workspace, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	cfg, err := LoadConfig(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", abs, err)
	}
	root := filepath.Dir(abs)
	if filepath.Base(root) == StateDir {
		root = filepath.Dir(root)
	}
	return &Workspace{Root: root, Config: cfg, Found: true}, nil
}

// Init creates the state directory under dir and writes a documented default
// config. An existing config is left untouched unless force is set.
func Init(dir string, force bool) (*Workspace, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	ws := &Workspace{Root: root, Config: &Config{}, Found: true}

	if _, err := os.Stat(ws.ConfigPath()); err == nil && !force {
		return nil, fmt.Errorf("config already exists at %s", ws.ConfigPath())
	}
	if err := os.MkdirAll(ws.StatePath(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := ws.Config.SaveDocumentedConfig(ws.ConfigPath()); err != nil {
		return nil, err
	}
	return ws, nil
}
