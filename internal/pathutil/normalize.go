package pathutil

import (
	"errors"
	"path"
	"strings"

	"github.com/assembler-0/avc/internal/repopath"
)

// ErrPathInvalid is returned when a path given by the user cannot be
// tracked: absolute paths, paths escaping the working tree, and paths
// reaching into the metadata directories are all rejected.
var ErrPathInvalid = errors.New("path is not valid")

// NormalizeTrackedPath cleans a user-supplied path and validates it is
// safe to store in the index: no leading "./", no absolute path, no ".."
// component, and no path whose first segment is a metadata directory.
func NormalizeTrackedPath(p string) (string, error) {
	if p == "" {
		return "", ErrPathInvalid
	}
	if path.IsAbs(p) {
		return "", ErrPathInvalid
	}

	clean := path.Clean(p)
	clean = strings.TrimPrefix(clean, "./")

	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrPathInvalid
	}

	first := clean
	if idx := strings.IndexByte(clean, '/'); idx >= 0 {
		first = clean[:idx]
	}
	if first == repopath.DotDirName || first == repopath.GitMirrorDirName {
		return "", ErrPathInvalid
	}

	return clean, nil
}
