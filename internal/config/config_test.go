package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/mgfmerge/internal/model"
)

// writeFile creates dir/name with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// requireExitCode asserts that err is a CLIError carrying code.
func requireExitCode(t *testing.T, err error, code model.ExitCode) {
	t.Helper()
	require.Error(t, err)
	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr), "expected *model.CLIError, got %T", err)
	assert.Equal(t, code, cliErr.Code)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "merged.mgf", cfg.Output)
	assert.Equal(t, ".mgf", cfg.Suffix)
	assert.False(t, cfg.ExcludeOutput)
	assert.False(t, cfg.Stream)
	assert.Empty(t, cfg.Report)
	assert.NoError(t, cfg.Validate())
}

// TestLoad_YAML verifies that YAML values override defaults and unset
// keys keep their default.
func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), ".mgfmerge.yaml", `
# merge settings
output: combined.mgf
exclude_output: true
report: out/report.yaml
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "combined.mgf", cfg.Output)
	assert.Equal(t, ".mgf", cfg.Suffix)
	assert.True(t, cfg.ExcludeOutput)
	assert.False(t, cfg.Stream)
	assert.Equal(t, "out/report.yaml", cfg.Report)
}

// TestLoad_JSONC verifies comment and trailing comma stripping.
func TestLoad_JSONC(t *testing.T) {
	path := writeFile(t, t.TempDir(), ".mgfmerge.json", `{
	// write as we go
	"stream": true,
	/* custom input suffix */
	"suffix": ".MGF",
}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Stream)
	assert.Equal(t, ".MGF", cfg.Suffix)
	assert.Equal(t, "merged.mgf", cfg.Output)
}

// TestLoad_EmptyFiles verifies that empty documents yield the defaults.
func TestLoad_EmptyFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"empty.yaml", "empty.json"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, dir, name, "\n"))
			require.NoError(t, err)
			assert.Equal(t, Default(), cfg)
		})
	}

	t.Run("comment-only jsonc", func(t *testing.T) {
		cfg, err := Load(writeFile(t, dir, "c.jsonc", "// nothing\n"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})
}

// TestLoad_Errors covers every config failure path.
func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantMsg string
	}{
		{
			name:    "missing file",
			path:    filepath.Join(dir, "nope.yaml"),
			wantMsg: "cannot read config file",
		},
		{
			name:    "unknown extension",
			path:    writeFile(t, dir, "cfg.toml", "output = 'x'"),
			wantMsg: "unsupported config file extension",
		},
		{
			name:    "unknown yaml key",
			path:    writeFile(t, dir, "typo.yaml", "ouptut: x.mgf\n"),
			wantMsg: "failed to parse",
		},
		{
			name:    "unknown json key",
			path:    writeFile(t, dir, "typo.json", `{"ouptut": "x.mgf"}`),
			wantMsg: "failed to parse",
		},
		{
			name:    "malformed json",
			path:    writeFile(t, dir, "bad.json", `{"output": `),
			wantMsg: "failed to parse",
		},
		{
			name:    "output is a path",
			path:    writeFile(t, dir, "path.yaml", "output: sub/merged.mgf\n"),
			wantMsg: "plain file name",
		},
		{
			name:    "empty suffix",
			path:    writeFile(t, dir, "suffix.yaml", "suffix: \"\"\n"),
			wantMsg: "suffix must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.path)
			assert.Nil(t, cfg)
			requireExitCode(t, err, model.ExitConfigError)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

// TestFind verifies the candidate priority order and that directories
// with a candidate name are skipped.
func TestFind(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, Find(dir))

	require.NoError(t, os.Mkdir(filepath.Join(dir, ".mgfmerge.yaml"), 0755))
	assert.Empty(t, Find(dir))

	jsonPath := writeFile(t, dir, ".mgfmerge.json", "{}")
	assert.Equal(t, jsonPath, Find(dir))

	ymlPath := writeFile(t, dir, ".mgfmerge.yml", "stream: true\n")
	assert.Equal(t, ymlPath, Find(dir))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", *Default(), false},
		{"custom names", Config{Output: "all.mgf", Suffix: ".txt"}, false},
		{"empty output", Config{Suffix: ".mgf"}, true},
		{"dot output", Config{Output: ".", Suffix: ".mgf"}, true},
		{"parent output", Config{Output: "..", Suffix: ".mgf"}, true},
		{"backslash output", Config{Output: `a\b.mgf`, Suffix: ".mgf"}, true},
		{"empty suffix", Config{Output: "merged.mgf"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
