// Package config loads the .xcresult-annotate/config.toml configuration.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/BurntSushi/toml"
)

//go:embed templates/config.tmpl
var configTemplateText string

// Config represents the configuration stored in .xcresult-annotate/config.toml.
type Config struct {
	Annotate     AnnotateConfig     `toml:"annotate"`
	Check        CheckConfig        `toml:"check"`
	Xcresulttool XcresulttoolConfig `toml:"xcresulttool"`
	History      HistoryConfig      `toml:"history"`
}

// AnnotateConfig selects which issues are annotated and how paths are mapped.
type AnnotateConfig struct {
	// WarningIssueTypes lists the warning issue types to annotate.
	// Unset means "Swift Compiler Warning"; an empty list means every type.
	WarningIssueTypes []string `toml:"warning_issue_types"`

	// ErrorIssueTypes lists the error issue types to annotate when
	// IncludeErrors is set. Unset or empty means every type.
	ErrorIssueTypes []string `toml:"error_issue_types"`

	// IncludeErrors also annotates error summaries as failures.
	IncludeErrors bool `toml:"include_errors"`

	// StripComponents drops this many leading components from source paths.
	// When unset, paths are made relative to the git work tree.
	StripComponents *int `toml:"strip_components"`

	// BatchSize is the number of annotations sent per request.
	// Defaults to 50, the most the checks API accepts.
	BatchSize *int `toml:"batch_size"`
}

// GetBatchSize returns the configured batch size, or 50 when unset or out of range.
func (a *AnnotateConfig) GetBatchSize() int {
	if a.BatchSize == nil || *a.BatchSize <= 0 || *a.BatchSize > maxBatchSize {
		return maxBatchSize
	}
	return *a.BatchSize
}

const maxBatchSize = 50

// CheckConfig describes the check run created on GitHub.
type CheckConfig struct {
	// Name is the check run name. Defaults to "Xcode".
	Name string `toml:"name"`

	// Title is the output title. Defaults to the name.
	Title string `toml:"title"`

	// AlwaysCreate creates a check run even when nothing is annotated.
	AlwaysCreate bool `toml:"always_create"`
}

// GetName returns the check run name or "Xcode" if not set.
func (c *CheckConfig) GetName() string {
	if c.Name == "" {
		return "Xcode"
	}
	return c.Name
}

// GetTitle returns the output title, falling back to the name.
func (c *CheckConfig) GetTitle() string {
	if c.Title == "" {
		return c.GetName()
	}
	return c.Title
}

// XcresulttoolConfig configures how result bundles are read.
type XcresulttoolConfig struct {
	// Xcrun is the launcher used to run xcresulttool. Defaults to "xcrun".
	Xcrun string `toml:"xcrun"`

	// Legacy is "auto", "always" or "never". Defaults to "auto".
	Legacy string `toml:"legacy"`
}

// GetXcrun returns the xcrun binary or "xcrun" if not set.
func (x *XcresulttoolConfig) GetXcrun() string {
	if x.Xcrun == "" {
		return "xcrun"
	}
	return x.Xcrun
}

// GetLegacy returns the legacy mode, "auto" when unset or invalid.
func (x *XcresulttoolConfig) GetLegacy() string {
	switch x.Legacy {
	case "auto", "always", "never":
		return x.Legacy
	default:
		return "auto"
	}
}

// HistoryConfig controls the local run history database.
type HistoryConfig struct {
	// Enabled records every annotate run. Defaults to true.
	Enabled *bool `toml:"enabled"`

	// Path is the database file, relative to the state directory.
	// Defaults to "history.db".
	Path string `toml:"path"`
}

// IsEnabled returns true unless history is explicitly disabled.
func (h *HistoryConfig) IsEnabled() bool {
	if h.Enabled == nil {
		return true
	}
	return *h.Enabled
}

// GetPath returns the database path or "history.db" if not set.
func (h *HistoryConfig) GetPath() string {
	if h.Path == "" {
		return "history.db"
	}
	return h.Path
}

// Validate reports configuration values that cannot be used.
func (c *Config) Validate() error {
	if c.Annotate.StripComponents != nil && *c.Annotate.StripComponents < 0 {
		return fmt.Errorf("annotate.strip_components must not be negative, got %d", *c.Annotate.StripComponents)
	}
	switch c.Xcresulttool.Legacy {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("xcresulttool.legacy must be auto, always or never, got %q", c.Xcresulttool.Legacy)
	}
	return nil
}

// LoadConfig reads and parses a config.toml file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// SaveDocumentedConfig writes a fully documented config to the specified path.
func (c *Config) SaveDocumentedConfig(path string) error {
	content, err := c.GenerateDocumentedConfig()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// configTemplateData holds the data used to render the config template.
type configTemplateData struct {
	CheckName    string
	CheckTitle   string
	Xcrun        string
	Legacy       string
	HistoryPath  string
	BatchSize    int
	IssueTypes   []string
	AlwaysCreate bool
	Include      bool
}

// tomlString formats a string for TOML output with proper escaping.
func tomlString(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}

// tomlStrings formats a string list as a TOML array.
func tomlStrings(list []string) string {
	quoted := make([]string, len(list))
	for i, s := range list {
		quoted[i] = tomlString(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// configTemplate is the parsed template for generating documented config files.
var configTemplate = template.Must(template.New("config").Funcs(template.FuncMap{
	"tomlString":  tomlString,
	"tomlStrings": tomlStrings,
}).Parse(configTemplateText))

// GenerateDocumentedConfig renders c as config.toml with comments on every option.
func (c *Config) GenerateDocumentedConfig() (string, error) {
	issueTypes := c.Annotate.WarningIssueTypes
	if issueTypes == nil {
		issueTypes = []string{"Swift Compiler Warning"}
	}
	data := configTemplateData{
		CheckName:    c.Check.GetName(),
		CheckTitle:   c.Check.GetTitle(),
		Xcrun:        c.Xcresulttool.GetXcrun(),
		Legacy:       c.Xcresulttool.GetLegacy(),
		HistoryPath:  c.History.GetPath(),
		BatchSize:    c.Annotate.GetBatchSize(),
		IssueTypes:   issueTypes,
		AlwaysCreate: c.Check.AlwaysCreate,
		Include:      c.Annotate.IncludeErrors,
	}

	var buf bytes.Buffer
	if err := configTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render config template: %w", err)
	}
	return buf.String(), nil
}
