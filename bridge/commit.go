package bridge

import (
	"github.com/assembler-0/avc/ginternals/digest"
	"github.com/assembler-0/avc/ginternals/object"
	"golang.org/x/xerrors"
)

// defaultEmail is injected for a signature with no email, so a commit
// stays round-trippable with Git (which requires one).
const defaultEmail = "user@example.com"

// translateCommit translates a commit's tree and every parent, then
// rebuilds the header block with the destination-store digests. Author
// and committer signatures are normalized (see normalizeSignature)
// rather than copied verbatim.
func (b *Bridge) translateCommit(o *object.Object, dir Direction) (digest.Oid, error) {
	_, dst := b.stores(dir)

	commit, err := object.NewCommitFromObject(o)
	if err != nil {
		return dst.Algo().NullOid(), xerrors.Errorf("could not parse commit %s: %w", o.ID().String(), err)
	}

	dstTreeID, err := b.TranslateObject(commit.TreeID(), dir)
	if err != nil {
		return dst.Algo().NullOid(), xerrors.Errorf("commit %s: tree: %w", o.ID().String(), err)
	}

	parents := commit.ParentIDs()
	dstParents := make([]digest.Oid, len(parents))
	for i, p := range parents {
		dstParents[i], err = b.TranslateObject(p, dir)
		if err != nil {
			return dst.Algo().NullOid(), xerrors.Errorf("commit %s: parent %d: %w", o.ID().String(), i, err)
		}
	}

	opts := &object.CommitOptions{
		Message:   commit.Message(),
		Committer: normalizeSignature(commit.Committer()),
		ParentIDs: dstParents,
	}
	dstCommit := object.NewCommit(dst.Algo(), dstTreeID, normalizeSignature(commit.Author()), opts)

	dstOid, err := dst.StoreObject(dstCommit.ToObject())
	if err != nil {
		return dst.Algo().NullOid(), xerrors.Errorf("could not store translated commit: %w", err)
	}

	b.record(dir, o.ID().String(), dstOid.String())
	return dstOid, nil
}

// normalizeSignature injects defaultEmail when a signature was recorded
// without one, and otherwise passes the signature through unchanged:
// the timestamp is already a time.Time regardless of which store it
// came from, so no epoch/ISO-8601 conversion is needed at this layer.
func normalizeSignature(s object.Signature) object.Signature {
	if s.Email == "" {
		s.Email = defaultEmail
	}
	return s
}
