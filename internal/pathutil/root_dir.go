package pathutil

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/assembler-0/avc/internal/repopath"
	"golang.org/x/xerrors"
)

// ErrNoRepo is returned when no repository is found.
var ErrNoRepo = errors.New("not an avc repository (or any of the parent directories)")

// RepoRoot returns the absolute path to the root of the repo containing
// the current working directory.
func RepoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", xerrors.Errorf("could not get current working directory: %w", err)
	}
	return RepoRootFromPath(wd)
}

// RepoRootFromPath returns the absolute path to the root of the repo
// containing the provided directory, walking up until .avc/ is found
// or the filesystem root is reached.
func RepoRootFromPath(p string) (string, error) {
	prev := ""
	for p != prev {
		info, err := os.Stat(filepath.Join(p, repopath.DotDirName))
		if err == nil && info.IsDir() {
			return p, nil
		}

		prev = p
		p = filepath.Dir(p)
	}
	return "", ErrNoRepo
}

// WorkingTree returns the absolute path to the working tree containing
// the current working directory. Alias of RepoRoot kept for readability
// at call sites that care about the tree rather than the metadata dir.
func WorkingTree() (string, error) {
	return RepoRoot()
}

// WorkingTreeFromPath is the RepoRootFromPath equivalent for WorkingTree.
func WorkingTreeFromPath(p string) (string, error) {
	return RepoRootFromPath(p)
}
