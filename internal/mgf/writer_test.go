package mgf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/mgfmerge/internal/model"
)

// TestWriteAll_Format pins down the exact serialized form: leading keys
// first, upper-case keys, shortest float formatting, blank separator.
func TestWriteAll_Format(t *testing.T) {
	spectra := []*model.Spectrum{
		{
			Params: model.Params{
				{Key: "scans", Value: "1"},
				{Key: "charge", Value: "2+"},
				{Key: "title", Value: "first"},
				{Key: "rtinseconds", Value: "12.5"},
				{Key: "pepmass", Value: "445.12"},
			},
			Peaks: []model.Peak{
				{MZ: 100.5, Intensity: 20},
				{MZ: 200.25, Intensity: 30.125, Charge: "1+"},
			},
		},
		{
			Params: model.Params{{Key: "title", Value: "second"}, {Key: "scans", Value: "2"}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAll(&buf, spectra))

	want := strings.Join([]string{
		"BEGIN IONS",
		"TITLE=first",
		"PEPMASS=445.12",
		"RTINSECONDS=12.5",
		"CHARGE=2+",
		"SCANS=1",
		"100.5 20",
		"200.25 30.125 1+",
		"END IONS",
		"",
		"BEGIN IONS",
		"TITLE=second",
		"SCANS=2",
		"END IONS",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

// TestWriteAll_Empty verifies that zero spectra produce zero bytes.
func TestWriteAll_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAll(&buf, nil))
	assert.Zero(t, buf.Len())
}

// TestWriter_Count checks the running spectrum count.
func TestWriter_Count(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	assert.Equal(t, 0, w.Count())

	require.NoError(t, w.Write(&model.Spectrum{}))
	require.NoError(t, w.Write(&model.Spectrum{}))
	require.NoError(t, w.Flush())
	assert.Equal(t, 2, w.Count())
}

// TestRoundTrip verifies that reading back written output yields the same
// spectra, modulo parameter reordering of the leading keys.
func TestRoundTrip(t *testing.T) {
	in, err := ReadAll(strings.NewReader(twoSpectra))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteAll(&buf, in))

	out, err := ReadAll(&buf)
	require.NoError(t, err)
	require.Len(t, out, len(in))

	for i := range in {
		assert.Equal(t, in[i].Peaks, out[i].Peaks)
		for _, kv := range in[i].Params {
			v, ok := out[i].Params.Get(kv.Key)
			require.True(t, ok, "missing key %s", kv.Key)
			assert.Equal(t, kv.Value, v)
		}
	}
}
