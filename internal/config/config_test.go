package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	var cfg Config

	assert.Nil(t, cfg.Annotate.WarningIssueTypes)
	assert.Nil(t, cfg.Annotate.StripComponents)
	assert.Equal(t, 50, cfg.Annotate.GetBatchSize())
	assert.Equal(t, "Xcode", cfg.Check.GetName())
	assert.Equal(t, "Xcode", cfg.Check.GetTitle())
	assert.Equal(t, "xcrun", cfg.Xcresulttool.GetXcrun())
	assert.Equal(t, "auto", cfg.Xcresulttool.GetLegacy())
	assert.True(t, cfg.History.IsEnabled())
	assert.Equal(t, "history.db", cfg.History.GetPath())
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[annotate]
warning_issue_types = []
include_errors = true
strip_components = 5
batch_size = 20

[check]
name = "Xcode Warnings"
always_create = true

[xcresulttool]
legacy = "never"

[history]
enabled = false
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.NotNil(t, cfg.Annotate.WarningIssueTypes, "an empty list is kept distinct from unset")
	assert.Empty(t, cfg.Annotate.WarningIssueTypes)
	assert.True(t, cfg.Annotate.IncludeErrors)
	require.NotNil(t, cfg.Annotate.StripComponents)
	assert.Equal(t, 5, *cfg.Annotate.StripComponents)
	assert.Equal(t, 20, cfg.Annotate.GetBatchSize())
	assert.Equal(t, "Xcode Warnings", cfg.Check.GetName())
	assert.Equal(t, "Xcode Warnings", cfg.Check.GetTitle())
	assert.True(t, cfg.Check.AlwaysCreate)
	assert.Equal(t, "never", cfg.Xcresulttool.GetLegacy())
	assert.False(t, cfg.History.IsEnabled())
}

func TestGetBatchSize_Clamped(t *testing.T) {
	for _, n := range []int{0, -1, 51, 1000} {
		a := AnnotateConfig{BatchSize: &n}
		assert.Equal(t, 50, a.GetBatchSize(), "batch size %d", n)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"syntax", "[annotate\n", "failed to parse config"},
		{"unknown key", "[annotate]\nstrip = 3\n", "unknown config keys: annotate.strip"},
		{"negative strip", "[annotate]\nstrip_components = -1\n", "strip_components"},
		{"bad legacy", "[xcresulttool]\nlegacy = \"sometimes\"\n", "xcresulttool.legacy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGeneratedConfigIsValidTOML(t *testing.T) {
	content, err := (&Config{}).GenerateDocumentedConfig()
	require.NoError(t, err)

	var parsed map[string]any
	_, err = toml.Decode(content, &parsed)
	require.NoError(t, err, "Generated config is not valid TOML:\n%s", content)

	annotate := parsed["annotate"].(map[string]any)
	assert.Equal(t, []any{"Swift Compiler Warning"}, annotate["warning_issue_types"])
	assert.EqualValues(t, 50, annotate["batch_size"])

	check := parsed["check"].(map[string]any)
	assert.Equal(t, "Xcode", check["name"])
}

func TestGeneratedConfigRoundTrip(t *testing.T) {
	original := &Config{
		Annotate: AnnotateConfig{
			WarningIssueTypes: []string{"Swift Compiler Warning", `Quoted "Type"`},
			IncludeErrors:     true,
		},
		Check:        CheckConfig{Name: "Lint", Title: "Lint\tResults", AlwaysCreate: true},
		Xcresulttool: XcresulttoolConfig{Xcrun: `C:\xcrun`, Legacy: "always"},
	}

	content, err := original.GenerateDocumentedConfig()
	require.NoError(t, err)

	path := writeConfig(t, content)
	loaded, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, original.Annotate.WarningIssueTypes, loaded.Annotate.WarningIssueTypes)
	assert.True(t, loaded.Annotate.IncludeErrors)
	assert.Equal(t, "Lint", loaded.Check.Name)
	assert.Equal(t, "Lint\tResults", loaded.Check.Title)
	assert.True(t, loaded.Check.AlwaysCreate)
	assert.Equal(t, `C:\xcrun`, loaded.Xcresulttool.Xcrun)
	assert.Equal(t, "always", loaded.Xcresulttool.Legacy)
	assert.Nil(t, loaded.Annotate.StripComponents)
}
