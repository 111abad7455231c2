package mgf

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/shinji-kodama/mgfmerge/internal/model"
)

// leadingKeys are written before all other parameters, in this order.
var leadingKeys = []string{"title", "pepmass", "rtinseconds", "charge"}

// Writer encodes spectra as MGF. Output is buffered; call Flush when done.
type Writer struct {
	w     *bufio.Writer
	count int
}

// NewWriter returns a Writer that encodes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Count returns the number of spectra written so far.
func (w *Writer) Count() int {
	return w.count
}

// Write encodes a single spectrum. Spectra are separated by a blank line.
func (w *Writer) Write(s *model.Spectrum) error {
	var b strings.Builder

	if w.count > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(beginIons)
	b.WriteByte('\n')

	for _, key := range leadingKeys {
		if v, ok := s.Params.Get(key); ok {
			writeParam(&b, key, v)
		}
	}
	for _, kv := range s.Params {
		if isLeadingKey(kv.Key) {
			continue
		}
		writeParam(&b, kv.Key, kv.Value)
	}

	for _, p := range s.Peaks {
		b.WriteString(formatFloat(p.MZ))
		b.WriteByte(' ')
		b.WriteString(formatFloat(p.Intensity))
		if p.Charge != "" {
			b.WriteByte(' ')
			b.WriteString(p.Charge)
		}
		b.WriteByte('\n')
	}

	b.WriteString(endIons)
	b.WriteByte('\n')

	if _, err := w.w.WriteString(b.String()); err != nil {
		return err
	}
	w.count++
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// WriteAll encodes every spectrum and flushes.
func WriteAll(w io.Writer, spectra []*model.Spectrum) error {
	mw := NewWriter(w)
	for _, s := range spectra {
		if err := mw.Write(s); err != nil {
			return err
		}
	}
	return mw.Flush()
}

func writeParam(b *strings.Builder, key, value string) {
	b.WriteString(strings.ToUpper(key))
	b.WriteByte('=')
	b.WriteString(value)
	b.WriteByte('\n')
}

func isLeadingKey(key string) bool {
	for _, k := range leadingKeys {
		if k == key {
			return true
		}
	}
	return false
}

// formatFloat uses the shortest decimal form that round-trips, without
// an exponent.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
