package storage

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// WriteAtomic writes the destination file from some writer function.
//
// Content is written to a hidden temporary file in the destination directory, then renamed into place:
// a failed download never leaves a truncated object under its final name.
func WriteAtomic(fs afero.Fs, dest string, fill func(io.Writer) error) error {
	dir := filepath.Dir(dest)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := afero.TempFile(fs, dir, ".download-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if err = fill(tmp); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpName)
		return err
	}
	if err = tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return err
	}
	if err = fs.Rename(tmpName, dest); err != nil {
		_ = fs.Remove(tmpName)
		return err
	}
	return nil
}

// FileSize returns the size of a local file
func FileSize(fs afero.Fs, pth string) (int64, error) {
	fi, err := fs.Stat(pth)
	if err != nil {
		return 0, err
	}
	if !fi.Mode().IsRegular() {
		return 0, &os.PathError{Op: "stat", Path: pth, Err: os.ErrInvalid}
	}
	return fi.Size(), nil
}
