package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ParamScans is the parameter key the merger rewrites on every spectrum.
const ParamScans = "scans"

// Param is a single KEY=VALUE entry from an MGF parameter block.
// Keys are stored lowercased; values are kept verbatim.
type Param struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Params is an ordered, case-insensitive parameter mapping.
//
// MGF files are read and written line by line, so insertion order is kept
// to make the merged output resemble its inputs as closely as possible.
// Lookups are linear; a spectrum rarely carries more than a dozen keys.
type Params []Param

// normalizeKey maps a parameter key to its stored form.
func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Get returns the value stored under key and whether it was present.
func (p Params) Get(key string) (string, bool) {
	key = normalizeKey(key)
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Set stores value under key. An existing entry is overwritten in place so
// it keeps its position; a new key is appended.
func (p *Params) Set(key, value string) {
	key = normalizeKey(key)
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Param{Key: key, Value: value})
}

// Delete removes key if present.
func (p *Params) Delete(key string) {
	key = normalizeKey(key)
	for i := range *p {
		if (*p)[i].Key == key {
			*p = append((*p)[:i], (*p)[i+1:]...)
			return
		}
	}
}

// Clone returns an independent copy of the mapping.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	copy(out, p)
	return out
}

// Peak is a single fragment ion: m/z, intensity and an optional charge.
// The charge is kept as written in the source file (e.g. "2+").
type Peak struct {
	MZ        float64 `json:"mz"`
	Intensity float64 `json:"intensity"`
	Charge    string  `json:"charge,omitempty"`
}

// Spectrum is one BEGIN IONS ... END IONS block.
type Spectrum struct {
	// Params holds the spectrum-local parameters, with any global header
	// parameters of the source file already folded in.
	Params Params `json:"params"`

	// Peaks is the mass/intensity payload in file order.
	Peaks []Peak `json:"peaks,omitempty"`
}

// Scans returns the current value of the "scans" parameter, or "" if unset.
func (s *Spectrum) Scans() string {
	v, _ := s.Params.Get(ParamScans)
	return v
}

// SetScans overwrites the "scans" parameter with the decimal scan number.
func (s *Spectrum) SetScans(scan int) {
	s.Params.Set(ParamScans, strconv.Itoa(scan))
}

// Title returns the TITLE parameter, used in diagnostics.
func (s *Spectrum) Title() string {
	v, _ := s.Params.Get("title")
	return v
}

// ExitCode defines the process exit codes of the mgfmerge CLI.
type ExitCode int

const (
	// ExitSuccess indicates the merge completed and merged.mgf was written.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error (bad flags, cancellation).
	ExitGeneralError ExitCode = 1

	// ExitDirectoryError indicates the input directory is missing or unreadable.
	ExitDirectoryError ExitCode = 2

	// ExitParseError indicates an input file does not conform to the MGF grammar.
	ExitParseError ExitCode = 3

	// ExitWriteError indicates the merged output or the report could not be written.
	ExitWriteError ExitCode = 4

	// ExitConfigError indicates the config file is unreadable or invalid.
	ExitConfigError ExitCode = 5
)

// String returns a short name for the exit code, used in JSON error output.
func (c ExitCode) String() string {
	switch c {
	case ExitSuccess:
		return "success"
	case ExitGeneralError:
		return "general"
	case ExitDirectoryError:
		return "directory"
	case ExitParseError:
		return "parse"
	case ExitWriteError:
		return "write"
	case ExitConfigError:
		return "config"
	default:
		return fmt.Sprintf("exit(%d)", int(c))
	}
}

// CLIError is an error that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error returns the message, followed by the underlying error if present.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
