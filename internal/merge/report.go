package merge

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/mgfmerge/internal/model"
)

// report is the YAML form of a Result. Scan ranges are spelled out so the
// file answers "which input did scan N come from" without arithmetic.
type report struct {
	Output string        `yaml:"output"`
	Total  int           `yaml:"total"`
	Files  []reportEntry `yaml:"files"`
}

type reportEntry struct {
	Name      string `yaml:"name"`
	Count     int    `yaml:"count"`
	FirstScan int    `yaml:"first_scan,omitempty"`
	LastScan  int    `yaml:"last_scan,omitempty"`
}

// MarshalReport renders res as a YAML document with a header comment.
// Files that contributed no spectra are listed without a scan range.
func MarshalReport(res *Result) ([]byte, error) {
	rep := report{
		Output: res.Output,
		Total:  res.Total,
		Files:  make([]reportEntry, 0, len(res.Files)),
	}
	for _, f := range res.Files {
		e := reportEntry{Name: f.Name, Count: f.Count}
		if f.Count > 0 {
			e.FirstScan = f.FirstScan
			e.LastScan = f.LastScan()
		}
		rep.Files = append(rep.Files, e)
	}

	data, err := yaml.Marshal(&rep)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize merge report: %w", err)
	}

	header := fmt.Sprintf("# Generated by mgfmerge for %s\n", res.Dir)
	return append([]byte(header), data...), nil
}

// WriteReport writes the YAML report for res to path, creating parent
// directories as needed.
func WriteReport(path string, res *Result) error {
	data, err := MarshalReport(res)
	if err != nil {
		return model.WrapCLIError(model.ExitWriteError, "cannot build merge report", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return model.WrapCLIError(model.ExitWriteError,
			fmt.Sprintf("cannot create report directory for %s", path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return model.WrapCLIError(model.ExitWriteError,
			fmt.Sprintf("cannot write report %s", path), err)
	}
	return nil
}
