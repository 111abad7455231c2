// Package config loads the optional mgfmerge configuration file.
//
// A config file lives in the input directory (or anywhere, via --config)
// and supplies defaults for the command-line flags. Both YAML and JSON
// with comments are accepted:
//
//	# .mgfmerge.yaml
//	output: combined.mgf
//	exclude_output: true
//
//	// .mgfmerge.json
//	{ "output": "combined.mgf", "stream": true, }
//
// JSONC comments and trailing commas are stripped with
// github.com/tidwall/jsonc before decoding with encoding/json.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/mgfmerge/internal/model"
)

// Candidate file names searched by Find, in priority order.
var candidates = []string{".mgfmerge.yaml", ".mgfmerge.yml", ".mgfmerge.json"}

// Config holds the settings a merge run can take from a file.
type Config struct {
	// Output is the merged file name, written inside the input directory.
	Output string `yaml:"output" json:"output"`

	// Suffix selects input files by literal, case-sensitive name suffix.
	Suffix string `yaml:"suffix" json:"suffix"`

	// ExcludeOutput skips a file named Output when listing inputs.
	ExcludeOutput bool `yaml:"exclude_output" json:"exclude_output"`

	// Stream writes spectra as they are read instead of after the last input.
	Stream bool `yaml:"stream" json:"stream"`

	// Report is an optional path for a YAML merge report. Empty disables it.
	Report string `yaml:"report" json:"report"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Output: "merged.mgf",
		Suffix: ".mgf",
	}
}

// Find returns the first config file present in dir, or "" if none is.
func Find(dir string) string {
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

// Load reads path over Default and validates the result. The format is
// chosen by extension: .yaml/.yml for YAML, .json/.jsonc for JSONC.
// Unknown keys are rejected so typos do not pass silently.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("cannot read config file %s", path), err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, cfg)
	case ".json", ".jsonc":
		err = decodeJSONC(data, cfg)
	default:
		return nil, model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("unsupported config file extension %q (valid: .yaml, .yml, .json, .jsonc)", ext))
	}
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to parse config file %s", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("invalid config file %s", path), err)
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeJSONC(data []byte, cfg *Config) error {
	clean := jsonc.ToJSON(data)
	if len(bytes.TrimSpace(clean)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(clean))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

// Validate checks that the settings describe a usable merge.
func (c *Config) Validate() error {
	if c.Output == "" {
		return fmt.Errorf("output name must not be empty")
	}
	if c.Output == "." || c.Output == ".." || strings.ContainsAny(c.Output, `/\`) {
		return fmt.Errorf("output %q must be a plain file name, not a path", c.Output)
	}
	if c.Suffix == "" {
		return fmt.Errorf("suffix must not be empty")
	}
	return nil
}
