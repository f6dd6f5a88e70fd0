package snapshot

import (
	"errors"

	"github.com/assembler-0/avc/ginternals"
	"github.com/assembler-0/avc/ginternals/digest"
	"github.com/assembler-0/avc/ginternals/object"
	"github.com/assembler-0/avc/index"
	"github.com/assembler-0/avc/refstore"
	"github.com/assembler-0/avc/store"
	"golang.org/x/xerrors"
)

// Commit builds the tree for entries, wraps it in a commit object
// authored by author, persists both into s, and advances whatever HEAD
// currently points at (a branch, or directly when detached) to the new
// commit. If opts.ParentIDs is nil, the current HEAD tip is resolved
// and used as the sole parent; a repository with no commits yet gets an
// orphan commit instead of an error.
func Commit(s *store.Store, refs *refstore.Store, entries []index.Entry, author object.Signature, opts *object.CommitOptions) (*object.Commit, error) {
	if opts == nil {
		opts = &object.CommitOptions{}
	}

	treeID, err := BuildTree(s, entries)
	if err != nil {
		return nil, xerrors.Errorf("could not build tree: %w", err)
	}

	if opts.ParentIDs == nil {
		head, err := refs.ResolveHead()
		switch {
		case err == nil:
			opts.ParentIDs = []digest.Oid{head.Target()}
		case errors.Is(err, ginternals.ErrRefNotFound):
			// orphan commit: no parent yet.
		default:
			return nil, xerrors.Errorf("could not resolve HEAD: %w", err)
		}
	}

	commit := object.NewCommit(s.Algo(), treeID, author, opts)
	if _, err := s.StoreObject(commit.ToObject()); err != nil {
		return nil, xerrors.Errorf("could not store commit: %w", err)
	}

	if err := advanceHead(refs, commit.ID()); err != nil {
		return nil, err
	}
	return commit, nil
}

// advanceHead writes commit at whatever HEAD currently resolves to: the
// branch it symbolically points at, or HEAD itself when detached.
func advanceHead(refs *refstore.Store, commit digest.Oid) error {
	branch, symbolic, err := refs.ReadHeadRefName()
	if err != nil {
		return xerrors.Errorf("could not read HEAD: %w", err)
	}
	target := ginternals.Head
	if symbolic {
		target = branch
	}
	if err := refs.WriteRef(target, commit); err != nil {
		return xerrors.Errorf("could not advance %s: %w", target, err)
	}
	return nil
}
