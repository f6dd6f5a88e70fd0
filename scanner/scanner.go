// Package scanner walks a working tree to discover the files a command
// like "add" should stage, applying the path-safety and exclusion rules
// the core requires of every tracked path.
package scanner

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/assembler-0/avc/internal/pathutil"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// File is one discovered regular file, with its path normalized and
// made relative to the working tree root.
type File struct {
	// RelPath is the repo-relative, "/"-separated path as it should be
	// stored in the index.
	RelPath string
	// AbsPath is the path to read the file's content from.
	AbsPath string
	Mode    os.FileMode
}

// Warning records a path that was skipped rather than failing the whole
// scan, per the path-invalid recoverable-error policy.
type Warning struct {
	Path string
	Err  error
}

// Options controls what Walk includes in its result.
type Options struct {
	// Excludes is a set of additional path prefixes (relative to the
	// working tree root) to skip, on top of the always-excluded
	// metadata directories.
	Excludes map[string]struct{}
	// KeepEmptyDirs causes empty directories to be represented by a
	// zero-byte placeholder blob, since the AVC tree format has no
	// native notion of an empty directory.
	KeepEmptyDirs bool
}

// EmptyDirPlaceholder is the reserved name used inside an otherwise-empty
// directory to keep it present in a commit, when Options.KeepEmptyDirs
// is set.
const EmptyDirPlaceholder = ".avckeep"

// Walk traverses root (the working tree, or a subtree of it named by
// one of the user-supplied paths) and returns every regular file found,
// sorted by RelPath for deterministic downstream processing. Paths that
// fail NormalizeTrackedPath are reported as Warnings and skipped rather
// than aborting the whole walk.
func Walk(fs afero.Fs, root, start string, opts Options) ([]File, []Warning, error) {
	var files []File
	var warnings []Warning
	dirHasEntry := map[string]bool{}

	err := afero.Walk(fs, start, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return xerrors.Errorf("could not walk %s: %w", p, err)
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return xerrors.Errorf("could not make %s relative to %s: %w", p, root, relErr)
		}
		if rel == "." {
			return nil
		}
		slashRel := filepath.ToSlash(rel)

		normalized, normErr := pathutil.NormalizeTrackedPath(slashRel)
		if normErr != nil {
			warnings = append(warnings, Warning{Path: slashRel, Err: normErr})
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if _, excluded := opts.Excludes[normalized]; excluded {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			dirHasEntry[normalized] = dirHasEntry[normalized] // touch the key
			dirHasEntry[parentDir(normalized)] = true
			return nil
		}

		dir := parentDir(normalized)
		dirHasEntry[dir] = true

		files = append(files, File{
			RelPath: normalized,
			AbsPath: p,
			Mode:    info.Mode(),
		})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if opts.KeepEmptyDirs {
		for dir, hasEntry := range dirHasEntry {
			if hasEntry || dir == "" {
				continue
			}
			files = append(files, File{
				RelPath: dir + "/" + EmptyDirPlaceholder,
				AbsPath: "",
				Mode:    0o100644,
			})
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, warnings, nil
}

func parentDir(relPath string) string {
	idx := -1
	for i := len(relPath) - 1; i >= 0; i-- {
		if relPath[i] == '/' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ""
	}
	return relPath[:idx]
}
