package bridge

import (
	"github.com/assembler-0/avc/ginternals/digest"
	"github.com/assembler-0/avc/ginternals/object"
	"github.com/assembler-0/avc/store"
	"golang.org/x/xerrors"
)

// Direction selects which way a translation goes. The two stores always
// play the same roles (avc is BLAKE3/Zstandard, git is SHA-1/zlib); only
// the source/destination roles swap.
type Direction int

const (
	// AVCToGit translates an object native to the AVC store into its
	// Git-compatible equivalent.
	AVCToGit Direction = iota
	// GitToAVC translates the other way.
	GitToAVC
)

// Bridge translates the object graph between an AVC store and a Git
// store, memoized by a DigestMap so a (sub)tree or blob already
// translated in a prior run is never re-walked.
type Bridge struct {
	avc *store.Store
	git *store.Store
	m   *DigestMap
}

// New returns a Bridge translating between avcStore and gitStore,
// memoized by m. m.Load must already have been called.
func New(avcStore, gitStore *store.Store, m *DigestMap) *Bridge {
	return &Bridge{avc: avcStore, git: gitStore, m: m}
}

// Commit flushes the digest map accumulated by this Bridge's
// translations to disk.
func (b *Bridge) Commit() error {
	return b.m.Commit()
}

func (b *Bridge) stores(dir Direction) (src, dst *store.Store) {
	if dir == AVCToGit {
		return b.avc, b.git
	}
	return b.git, b.avc
}

func (b *Bridge) lookup(dir Direction, srcHex string) (dstHex string, ok bool) {
	if dir == AVCToGit {
		return b.m.LookupByAVC(srcHex)
	}
	return b.m.LookupByGit(srcHex)
}

func (b *Bridge) record(dir Direction, srcHex, dstHex string) {
	if dir == AVCToGit {
		b.m.Record(srcHex, dstHex)
		return
	}
	b.m.Record(dstHex, srcHex)
}

// TranslateObject translates the object at oid (in the store named by
// dir's source role) and returns its digest in the destination store,
// persisting every object it creates along the way. A digest map hit
// whose target object is already on disk short-circuits without
// re-reading the source object at all.
func (b *Bridge) TranslateObject(oid digest.Oid, dir Direction) (digest.Oid, error) {
	src, dst := b.stores(dir)
	srcHex := oid.String()

	if dstHex, ok := b.lookup(dir, srcHex); ok {
		dstOid, err := dst.Algo().NewOidFromHex(dstHex)
		if err == nil {
			if has, err := dst.HasObject(dstOid); err == nil && has {
				return dstOid, nil
			}
		}
	}

	o, err := src.LoadObject(oid)
	if err != nil {
		return dst.Algo().NullOid(), xerrors.Errorf("could not load %s for translation: %w", srcHex, err)
	}

	switch o.Type() {
	case object.TypeBlob:
		return b.translateBlob(o, dir)
	case object.TypeTree:
		return b.translateTree(o, dir)
	case object.TypeCommit:
		return b.translateCommit(o, dir)
	default:
		return dst.Algo().NullOid(), xerrors.Errorf("object %s has unknown type %s", srcHex, o.Type())
	}
}
