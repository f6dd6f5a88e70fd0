// Package atomicfile provides the temp-file-then-rename write discipline
// used everywhere a reader must never observe a partially written file:
// loose objects, refs, the staging index, and the bridge's digest map.
package atomicfile

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Write creates dir if needed, writes data to a temp file alongside the
// final path, then renames it into place. On any failure the temp file
// is removed and never left visible at the final path.
func Write(fs afero.Fs, path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err = fs.MkdirAll(dir, 0o755); err != nil {
		return xerrors.Errorf("could not create directory %s: %w", dir, err)
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".tmp-%s-%d", filepath.Base(path), rand.Int63())) //nolint:gosec // not security sensitive, just avoiding collisions
	defer func() {
		if err != nil {
			_ = fs.Remove(tmp)
		}
	}()
	if err = afero.WriteFile(fs, tmp, data, perm); err != nil {
		return xerrors.Errorf("could not write temp file %s: %w", tmp, err)
	}

	if err = fs.Rename(tmp, path); err != nil {
		return xerrors.Errorf("could not rename %s to %s: %w", tmp, path, err)
	}
	return nil
}

// WriteIfAbsent behaves like Write but is a no-op (returning created=false)
// if the target already exists. This is what makes object writes
// idempotent: content-addressed storage means a pre-existing file at path
// is guaranteed to hold the exact same bytes.
func WriteIfAbsent(fs afero.Fs, path string, data []byte, perm os.FileMode) (created bool, err error) {
	if _, statErr := fs.Stat(path); statErr == nil {
		return false, nil
	}
	if err = Write(fs, path, data, perm); err != nil {
		return false, err
	}
	return true, nil
}
