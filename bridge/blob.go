package bridge

import (
	"github.com/assembler-0/avc/ginternals/digest"
	"github.com/assembler-0/avc/ginternals/object"
	"golang.org/x/xerrors"
)

// translateBlob re-frames a blob's raw content under the destination
// store's hash algorithm and persists it there. Blob translation never
// recurses: a blob has no children.
func (b *Bridge) translateBlob(o *object.Object, dir Direction) (digest.Oid, error) {
	_, dst := b.stores(dir)

	blob := object.NewBlob(o)
	dstObj := object.New(dst.Algo(), object.TypeBlob, blob.BytesCopy())

	dstOid, err := dst.StoreObject(dstObj)
	if err != nil {
		return dst.Algo().NullOid(), xerrors.Errorf("could not store translated blob: %w", err)
	}

	b.record(dir, o.ID().String(), dstOid.String())
	return dstOid, nil
}
