package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/assembler-0/avc/ginternals"
	"github.com/assembler-0/avc/ginternals/digest"
	"github.com/assembler-0/avc/ginternals/object"
	"github.com/assembler-0/avc/index"
	"github.com/assembler-0/avc/refstore"
	"github.com/assembler-0/avc/store"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// Mode selects how much of the repository a Restore touches, in
// increasing order of reach.
type Mode int

const (
	// Soft rewrites only the staging index to match the target commit.
	Soft Mode = iota
	// Hard additionally rewrites the working tree.
	Hard
	// Clean additionally wipes untracked paths from the working tree
	// before writing the target commit's files.
	Clean
)

// KeepAllowList is the set of top-level entries a Clean restore never
// deletes, since they hold the repository's own metadata.
var KeepAllowList = map[string]struct{}{
	".avc": {},
	".git": {},
}

// ResolveRevision resolves rev to a commit digest. rev may be "HEAD",
// "HEAD~1" (the current tip's sole first parent), or a hex digest
// string understood directly by algo.
func ResolveRevision(s *store.Store, refs *refstore.Store, rev string) (digest.Oid, error) {
	switch {
	case rev == ginternals.Head:
		ref, err := refs.ResolveHead()
		if err != nil {
			return s.Algo().NullOid(), xerrors.Errorf("could not resolve HEAD: %w", err)
		}
		return ref.Target(), nil

	case rev == "HEAD~1":
		tip, err := ResolveRevision(s, refs, ginternals.Head)
		if err != nil {
			return s.Algo().NullOid(), err
		}
		o, err := s.LoadObject(tip)
		if err != nil {
			return s.Algo().NullOid(), xerrors.Errorf("could not load HEAD commit: %w", err)
		}
		commit, err := object.NewCommitFromObject(o)
		if err != nil {
			return s.Algo().NullOid(), xerrors.Errorf("HEAD is not a commit: %w", err)
		}
		parents := commit.ParentIDs()
		if len(parents) == 0 {
			return s.Algo().NullOid(), ginternals.ErrNoParentCommit
		}
		return parents[0], nil

	default:
		oid, err := s.Algo().NewOidFromHex(rev)
		if err != nil {
			return s.Algo().NullOid(), xerrors.Errorf("%q is not HEAD, HEAD~1, or a valid digest: %w", rev, err)
		}
		return oid, nil
	}
}

// Restore rebuilds repository state from the commit rev resolves to, at
// the given mode. workingDir is the root regular files are written
// under (and, for Clean, the root untracked paths are removed from);
// it is ignored for Soft restores.
func Restore(ctx context.Context, fs afero.Fs, s *store.Store, refs *refstore.Store, idx *index.Index, workingDir, rev string, mode Mode) (digest.Oid, error) {
	target, err := ResolveRevision(s, refs, rev)
	if err != nil {
		return s.Algo().NullOid(), err
	}

	o, err := s.LoadObject(target)
	if err != nil {
		return s.Algo().NullOid(), xerrors.Errorf("could not load commit %s: %w", target.String(), err)
	}
	commit, err := object.NewCommitFromObject(o)
	if err != nil {
		return s.Algo().NullOid(), xerrors.Errorf("%s is not a commit: %w", target.String(), err)
	}

	entries, err := FlattenTree(s, commit.TreeID())
	if err != nil {
		return s.Algo().NullOid(), xerrors.Errorf("could not flatten tree: %w", err)
	}

	if mode == Clean {
		if err := wipeWorkingTree(fs, workingDir); err != nil {
			return s.Algo().NullOid(), xerrors.Errorf("could not wipe working tree: %w", err)
		}
	}

	idx.Reset(entries)

	if mode >= Hard {
		if err := writeEntries(ctx, fs, s, workingDir, entries); err != nil {
			return s.Algo().NullOid(), err
		}
	}

	if err := idx.Commit(); err != nil {
		return s.Algo().NullOid(), xerrors.Errorf("could not commit index: %w", err)
	}

	if err := advanceHead(refs, target); err != nil {
		return s.Algo().NullOid(), err
	}
	return target, nil
}

// writeEntries writes every entry's blob contents to its working-tree
// path. Entries are independent (the tree structure guarantees distinct
// destinations), so writes run concurrently.
func writeEntries(ctx context.Context, fs afero.Fs, s *store.Store, workingDir string, entries []index.Entry) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, e := range entries {
		e := e
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return writeEntry(fs, s, workingDir, e)
		})
	}
	return g.Wait()
}

func writeEntry(fs afero.Fs, s *store.Store, workingDir string, e index.Entry) error {
	o, err := s.LoadObject(e.Digest)
	if err != nil {
		return xerrors.Errorf("could not load blob for %s: %w", e.Path, err)
	}

	dest := filepath.Join(workingDir, filepath.FromSlash(e.Path))
	if err := fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return xerrors.Errorf("could not create parent directory for %s: %w", e.Path, err)
	}
	if err := afero.WriteFile(fs, dest, o.Bytes(), os.FileMode(e.Mode&0o777)); err != nil {
		return xerrors.Errorf("could not write %s: %w", e.Path, err)
	}
	return nil
}

// wipeWorkingTree removes every top-level entry of workingDir except
// those in KeepAllowList.
func wipeWorkingTree(fs afero.Fs, workingDir string) error {
	entries, err := afero.ReadDir(fs, workingDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if _, keep := KeepAllowList[e.Name()]; keep {
			continue
		}
		if err := fs.RemoveAll(filepath.Join(workingDir, e.Name())); err != nil {
			return xerrors.Errorf("could not remove %s: %w", e.Name(), err)
		}
	}
	return nil
}
