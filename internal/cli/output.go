package cli

import (
	"os"
	"path/filepath"

	"github.com/mmlkg/mizgra/pkg/errors"
)

// atomicFile writes to a temporary file next to path and renames it into
// place on Commit, so a failed run never leaves a partial output behind.
type atomicFile struct {
	*os.File
	path string
	done bool
}

func createAtomic(path string) (*atomicFile, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create output %s", path)
	}
	return &atomicFile{File: f, path: path}, nil
}

// Commit closes the file and moves it to its final path.
func (f *atomicFile) Commit() error {
	if f.done {
		return nil
	}
	f.done = true
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return errors.Wrap(errors.ErrCodeInternal, err, "write output %s", f.path)
	}
	if err := os.Rename(f.Name(), f.path); err != nil {
		os.Remove(f.Name())
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write output %s", f.path)
	}
	return nil
}

// Abort discards the temporary file. It is a no-op after Commit.
func (f *atomicFile) Abort() {
	if f.done {
		return
	}
	f.done = true
	f.Close()
	os.Remove(f.Name())
}
