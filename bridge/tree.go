package bridge

import (
	"sort"

	"github.com/assembler-0/avc/ginternals/digest"
	"github.com/assembler-0/avc/ginternals/object"
	"golang.org/x/xerrors"
)

// ErrDuplicateEntry is returned when a tree being translated has two
// entries with the same name, which the source store should never have
// produced but which the Bridge defensively refuses to carry forward.
var ErrDuplicateEntry = object.ErrTreeInvalid

// translateTree recursively translates every entry (blob or nested
// tree) of a source tree, then re-encodes the result in the
// destination store's native framing (binary for Git, text for AVC).
func (b *Bridge) translateTree(o *object.Object, dir Direction) (digest.Oid, error) {
	_, dst := b.stores(dir)

	tree, err := object.NewTreeFromObject(o)
	if err != nil {
		return dst.Algo().NullOid(), xerrors.Errorf("could not parse tree %s: %w", o.ID().String(), err)
	}

	srcEntries := tree.Entries()
	seen := make(map[string]struct{}, len(srcEntries))
	dstEntries := make([]object.TreeEntry, 0, len(srcEntries))

	for _, e := range srcEntries {
		if _, dup := seen[e.Path]; dup {
			return dst.Algo().NullOid(), xerrors.Errorf("tree %s: duplicate entry %q: %w", o.ID().String(), e.Path, ErrDuplicateEntry)
		}
		seen[e.Path] = struct{}{}

		childDstID, err := b.TranslateObject(e.ID, dir)
		if err != nil {
			return dst.Algo().NullOid(), xerrors.Errorf("tree %s: entry %q: %w", o.ID().String(), e.Path, err)
		}
		dstEntries = append(dstEntries, object.TreeEntry{Path: e.Path, Mode: e.Mode, ID: childDstID})
	}

	sort.Slice(dstEntries, func(i, j int) bool { return dstEntries[i].Path < dstEntries[j].Path })

	dstTree := object.NewTree(dst.Algo(), dstEntries)
	dstOid, err := dst.StoreObject(dstTree.ToObject())
	if err != nil {
		return dst.Algo().NullOid(), xerrors.Errorf("could not store translated tree: %w", err)
	}

	b.record(dir, o.ID().String(), dstOid.String())
	return dstOid, nil
}
