package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Writer persists the generated artifact. It reports whether the destination
// changed; a destination already holding data is left untouched.
type Writer interface {
	WriteFile(path string, data []byte) (bool, error)
}

// WriteError wraps failures encountered while writing the artifact.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// FileWriter writes artifacts to the local filesystem. Content is staged in a
// hidden sibling of the artifact and renamed over it, so a reader sees either
// the previous artifact or the new one.
type FileWriter struct {
	// Perm is the mode of a written artifact. Zero means 0o644.
	Perm fs.FileMode
	// DirPerm is the mode of created parent directories. Zero means 0o750.
	DirPerm fs.FileMode
}

// WriteFile implements Writer.
func (w FileWriter) WriteFile(path string, data []byte) (bool, error) {
	if path == "" {
		return false, errors.New("empty artifact path")
	}
	current, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(current, data):
		return false, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return false, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, orMode(w.DirPerm, 0o750)); err != nil {
		return false, err
	}
	staged, err := stage(dir, filepath.Base(path), data, orMode(w.Perm, 0o644))
	if err != nil {
		return false, err
	}
	if err := os.Rename(staged, path); err != nil {
		_ = os.Remove(staged)
		return false, err
	}
	return true, nil
}

// stage writes data to a synced temporary file in dir and returns its name.
// The file is removed again on any failure.
func stage(dir, base string, data []byte, perm fs.FileMode) (name string, err error) {
	f, err := os.CreateTemp(dir, "."+base+".*")
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()

	if err = f.Chmod(perm); err != nil {
		return "", err
	}
	if _, err = f.Write(data); err != nil {
		return "", err
	}
	return f.Name(), f.Sync()
}

func orMode(m, fallback fs.FileMode) fs.FileMode {
	if m == 0 {
		return fallback
	}
	return m
}
