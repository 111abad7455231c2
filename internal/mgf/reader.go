package mgf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shinji-kodama/mgfmerge/internal/model"
)

const (
	beginIons = "BEGIN IONS"
	endIons   = "END IONS"

	// maxLineSize bounds a single line. Peak lines are short, but some
	// exporters write very long TITLE values.
	maxLineSize = 1 << 20
)

// ParseError reports a line that does not conform to the MGF grammar.
type ParseError struct {
	// Line is the 1-based line number where the problem was detected.
	Line int

	// Msg describes the problem.
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Reader decodes spectra from an MGF stream one at a time.
//
// Usage:
//
//	r := mgf.NewReader(f)
//	for {
//		s, err := r.Next()
//		if err == io.EOF { break }
//		if err != nil { /* handle */ }
//		...
//	}
type Reader struct {
	sc     *bufio.Scanner
	line   int
	header model.Params

	// inBody is set by the first BEGIN IONS. From then on, lines outside
	// a block are ignored instead of extending the header.
	inBody bool

	// err is sticky: once set, every later Next call returns it.
	err error
}

// NewReader returns a Reader that consumes r sequentially.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{sc: sc}
}

// Header returns the global parameters, i.e. the KEY=VALUE lines found
// before the first BEGIN IONS.
func (r *Reader) Header() model.Params {
	return r.header.Clone()
}

// Next returns the next spectrum. It returns io.EOF when the stream ends
// cleanly and a *ParseError when the content is malformed.
func (r *Reader) Next() (*model.Spectrum, error) {
	if r.err != nil {
		return nil, r.err
	}
	s, err := r.next()
	if err != nil {
		r.err = err
	}
	return s, err
}

func (r *Reader) next() (*model.Spectrum, error) {
	var current *model.Spectrum

	for r.sc.Scan() {
		r.line++
		line := strings.TrimSpace(r.sc.Text())
		if line == "" || isComment(line) {
			continue
		}

		upper := strings.ToUpper(line)
		switch {
		case upper == beginIons:
			if current != nil {
				return nil, r.errorf("BEGIN IONS inside an open spectrum")
			}
			// Header parameters act as defaults; spectrum-local lines
			// overwrite them in place.
			current = &model.Spectrum{Params: r.header.Clone()}
			r.inBody = true

		case upper == endIons:
			if current == nil {
				return nil, r.errorf("END IONS without matching BEGIN IONS")
			}
			return current, nil

		case current == nil && r.inBody:
			// Text between blocks belongs to no spectrum.
			continue

		case strings.Contains(line, "="):
			key, value, _ := strings.Cut(line, "=")
			key = strings.TrimSpace(key)
			if key == "" {
				return nil, r.errorf("parameter with empty key: %q", line)
			}
			if current == nil {
				r.header.Set(key, strings.TrimSpace(value))
			} else {
				current.Params.Set(key, strings.TrimSpace(value))
			}

		default:
			if current == nil {
				// Free text in the header is not a parameter.
				continue
			}
			peak, err := parsePeak(line)
			if err != nil {
				return nil, r.errorf("%v", err)
			}
			current.Peaks = append(current.Peaks, peak)
		}
	}

	if err := r.sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &ParseError{Line: r.line + 1, Msg: "line exceeds maximum length"}
		}
		return nil, fmt.Errorf("read mgf: %w", err)
	}
	if current != nil {
		return nil, r.errorf("unterminated spectrum at end of file (missing END IONS)")
	}
	return nil, io.EOF
}

func (r *Reader) errorf(format string, args ...interface{}) *ParseError {
	return &ParseError{Line: r.line, Msg: fmt.Sprintf(format, args...)}
}

// isComment reports whether line is an MGF comment. The format allows
// '#', ';', '!' and '/' as comment markers.
func isComment(line string) bool {
	switch line[0] {
	case '#', ';', '!', '/':
		return true
	}
	return false
}

// parsePeak parses "m/z intensity [charge]". Fields may be separated by
// any run of spaces or tabs.
func parsePeak(line string) (model.Peak, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || len(fields) > 3 {
		return model.Peak{}, fmt.Errorf("malformed peak line %q: want \"m/z intensity [charge]\"", line)
	}

	mz, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return model.Peak{}, fmt.Errorf("malformed peak m/z %q", fields[0])
	}
	intensity, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return model.Peak{}, fmt.Errorf("malformed peak intensity %q", fields[1])
	}

	p := model.Peak{MZ: mz, Intensity: intensity}
	if len(fields) == 3 {
		p.Charge = fields[2]
	}
	return p, nil
}

// ReadAll decodes every spectrum in r.
func ReadAll(r io.Reader) ([]*model.Spectrum, error) {
	mr := NewReader(r)
	var out []*model.Spectrum
	for {
		s, err := mr.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
}
