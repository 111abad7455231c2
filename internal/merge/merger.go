package merge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/mgfmerge/internal/mgf"
	"github.com/shinji-kodama/mgfmerge/internal/model"
)

const (
	// DefaultOutput is the name of the merged file written into the input directory.
	DefaultOutput = "merged.mgf"

	// DefaultSuffix selects input files. The match is case-sensitive.
	DefaultSuffix = ".mgf"

	// firstScan is the scan number given to the first merged spectrum.
	firstScan = 1
)

// Options controls a Merger. The zero value merges "*.mgf" into merged.mgf
// in accumulate mode with no progress output.
type Options struct {
	// Output is the file name (not path) of the merged file.
	Output string

	// Suffix is the literal, case-sensitive name suffix of input files.
	Suffix string

	// ExcludeOutput drops a file named Output from the inputs. Off by
	// default, so a rerun in the same directory ingests the previous
	// merged file like any other input.
	ExcludeOutput bool

	// Stream writes each spectrum as soon as it is renumbered instead of
	// collecting every spectrum before writing.
	Stream bool

	// Progress receives one "<filename>\t<first scan>" line per input file.
	Progress io.Writer

	// Logf receives diagnostic messages. May be nil.
	Logf func(format string, args ...interface{})
}

// FileSummary records what one input file contributed to the merge.
type FileSummary struct {
	// Name is the file name relative to the input directory.
	Name string `json:"name" yaml:"name"`

	// FirstScan is the scan number assigned to the file's first spectrum,
	// which is also the number that was next when the file was opened.
	FirstScan int `json:"firstScan" yaml:"first_scan"`

	// Count is the number of spectra read from the file.
	Count int `json:"count" yaml:"count"`
}

// LastScan returns the scan number of the file's final spectrum, or
// FirstScan-1 when the file had no spectra.
func (f FileSummary) LastScan() int {
	return f.FirstScan + f.Count - 1
}

// Result describes a completed merge.
type Result struct {
	// Dir is the input directory as given.
	Dir string `json:"dir" yaml:"dir"`

	// Output is the path of the merged file.
	Output string `json:"output" yaml:"output"`

	// Files lists input files in processing order.
	Files []FileSummary `json:"files" yaml:"files"`

	// Total is the number of spectra written.
	Total int `json:"total" yaml:"total"`
}

// Merger combines the MGF files of a directory into one file with
// sequential scan numbers.
type Merger struct {
	opts Options
}

// New returns a Merger with defaults applied to any unset option.
func New(opts Options) *Merger {
	if opts.Output == "" {
		opts.Output = DefaultOutput
	}
	if opts.Suffix == "" {
		opts.Suffix = DefaultSuffix
	}
	if opts.Progress == nil {
		opts.Progress = io.Discard
	}
	if opts.Logf == nil {
		opts.Logf = func(string, ...interface{}) {}
	}
	return &Merger{opts: opts}
}

// Discover lists the input files of dir in natural order. The listing is
// not recursive and subdirectories are never inputs.
func (m *Merger) Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitDirectoryError,
			fmt.Sprintf("cannot read input directory %s", dir), err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, m.opts.Suffix) {
			continue
		}
		if m.opts.ExcludeOutput && name == m.opts.Output {
			m.opts.Logf("Skipping previous output %s", name)
			continue
		}
		names = append(names, name)
	}

	SortNatural(names)
	return names, nil
}

// Merge reads every input file of dir in natural order, renumbers the
// "scans" parameter of each spectrum from 1, and writes the result to
// <dir>/<Output>. The output file is only replaced once every input has
// been read; on failure any existing output is left untouched.
//
// ctx is checked before each input file is opened.
func (m *Merger) Merge(ctx context.Context, dir string) (*Result, error) {
	names, err := m.Discover(dir)
	if err != nil {
		return nil, err
	}
	m.opts.Logf("Found %d input files in %s", len(names), dir)

	res := &Result{
		Dir:    dir,
		Output: filepath.Join(dir, m.opts.Output),
		Files:  make([]FileSummary, 0, len(names)),
	}

	if m.opts.Stream {
		err = m.mergeStreaming(ctx, res, names)
	} else {
		err = m.mergeAccumulated(ctx, res, names)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// mergeAccumulated collects every spectrum in memory and opens the output
// only after the last input is read.
func (m *Merger) mergeAccumulated(ctx context.Context, res *Result, names []string) error {
	var spectra []*model.Spectrum
	collect := func(s *model.Spectrum) error {
		spectra = append(spectra, s)
		return nil
	}

	if err := m.mergeFiles(ctx, res, names, collect); err != nil {
		return err
	}
	m.opts.Logf("Writing %d spectra to %s", len(spectra), res.Output)

	out, err := createOutput(res.Output)
	if err != nil {
		return err
	}
	for _, s := range spectra {
		if err := out.write(s); err != nil {
			out.abort()
			return err
		}
	}
	return out.commit()
}

// mergeStreaming writes each spectrum to a temporary file as soon as it is
// renumbered and renames the file into place at the end.
func (m *Merger) mergeStreaming(ctx context.Context, res *Result, names []string) error {
	out, err := createOutput(res.Output)
	if err != nil {
		return err
	}

	if err := m.mergeFiles(ctx, res, names, out.write); err != nil {
		out.abort()
		return err
	}
	m.opts.Logf("Wrote %d spectra to %s", res.Total, res.Output)
	return out.commit()
}

// mergeFiles threads the scan counter through every input file and hands
// each renumbered spectrum to emit.
func (m *Merger) mergeFiles(ctx context.Context, res *Result, names []string, emit func(*model.Spectrum) error) error {
	next := firstScan
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "merge cancelled", err)
		}

		fmt.Fprintf(m.opts.Progress, "%s\t%d\n", name, next)

		after, err := m.mergeFile(filepath.Join(res.Dir, name), next, emit)
		if err != nil {
			return err
		}
		res.Files = append(res.Files, FileSummary{Name: name, FirstScan: next, Count: after - next})
		m.opts.Logf("%s: %d spectra", name, after-next)
		next = after
	}
	res.Total = next - firstScan
	return nil
}

// mergeFile renumbers the spectra of one file starting at next and returns
// the counter value after the file's last spectrum.
func (m *Merger) mergeFile(path string, next int, emit func(*model.Spectrum) error) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, model.WrapCLIError(model.ExitDirectoryError,
			fmt.Sprintf("cannot open input file %s", path), err)
	}
	defer func() { _ = f.Close() }()

	r := mgf.NewReader(f)
	for {
		s, err := r.Next()
		if err == io.EOF {
			return next, nil
		}
		if err != nil {
			var pe *mgf.ParseError
			if errors.As(err, &pe) {
				return 0, model.WrapCLIError(model.ExitParseError,
					fmt.Sprintf("invalid MGF in %s", path), err)
			}
			return 0, model.WrapCLIError(model.ExitDirectoryError,
				fmt.Sprintf("cannot read input file %s", path), err)
		}

		s.SetScans(next)
		next++
		if err := emit(s); err != nil {
			return 0, err
		}
	}
}
