package merge

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shinji-kodama/mgfmerge/internal/mgf"
	"github.com/shinji-kodama/mgfmerge/internal/model"
)

const (
	// createPerm is filtered by the umask, as with a plain create.
	createPerm = 0666

	tempAttempts = 10
)

// output is the merged file while it is being written. Spectra go to a
// hidden temporary file in the destination directory; commit renames it
// over the destination, abort removes it.
type output struct {
	dest string
	tmp  *os.File
	w    *mgf.Writer
}

// createOutput opens the temporary file for dest. The temporary name does
// not carry the input suffix, so a concurrent listing never picks it up.
func createOutput(dest string) (*output, error) {
	dir := filepath.Dir(dest)
	tmp, err := createTemp(dir, "."+filepath.Base(dest)+"-")
	if err != nil {
		return nil, model.WrapCLIError(model.ExitWriteError,
			fmt.Sprintf("cannot create output in %s", dir), err)
	}
	return &output{dest: dest, tmp: tmp, w: mgf.NewWriter(tmp)}, nil
}

// createTemp is os.CreateTemp without the fixed 0600 mode.
func createTemp(dir, prefix string) (*os.File, error) {
	var err error
	for i := 0; i < tempAttempts; i++ {
		name := filepath.Join(dir, prefix+strconv.FormatUint(rand.Uint64(), 36)+".tmp")
		var f *os.File
		f, err = os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, createPerm)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, err
		}
	}
	return nil, err
}

func (o *output) write(s *model.Spectrum) error {
	if err := o.w.Write(s); err != nil {
		return model.WrapCLIError(model.ExitWriteError,
			fmt.Sprintf("cannot write %s", o.dest), err)
	}
	return nil
}

// commit flushes, syncs and renames the temporary file into place.
func (o *output) commit() error {
	fail := func(err error) error {
		o.abort()
		return model.WrapCLIError(model.ExitWriteError,
			fmt.Sprintf("cannot write %s", o.dest), err)
	}

	if err := o.w.Flush(); err != nil {
		return fail(err)
	}
	if err := o.tmp.Sync(); err != nil {
		return fail(err)
	}
	// A replaced file keeps its permissions.
	if info, err := os.Stat(o.dest); err == nil && info.Mode().IsRegular() {
		if err := o.tmp.Chmod(info.Mode().Perm()); err != nil {
			return fail(err)
		}
	}
	if err := o.tmp.Close(); err != nil {
		_ = os.Remove(o.tmp.Name())
		return model.WrapCLIError(model.ExitWriteError,
			fmt.Sprintf("cannot write %s", o.dest), err)
	}
	if err := os.Rename(o.tmp.Name(), o.dest); err != nil {
		_ = os.Remove(o.tmp.Name())
		return model.WrapCLIError(model.ExitWriteError,
			fmt.Sprintf("cannot replace %s", o.dest), err)
	}
	return nil
}

// abort discards the temporary file. Safe to call after a failed commit.
func (o *output) abort() {
	_ = o.tmp.Close()
	_ = os.Remove(o.tmp.Name())
}
