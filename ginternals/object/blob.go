package object

import "github.com/assembler-0/avc/ginternals/digest"

// Blob represents a blob object: the raw content of a single file.
type Blob struct {
	rawObject *Object
}

// NewBlob returns a new Blob from a raw Object.
func NewBlob(o *Object) *Blob {
	return &Blob{rawObject: o}
}

// IsPersisted reports whether the blob's object has a digest. Objects
// built with New compute it at construction, so this does not tell
// whether the blob was written to a store.
func (b *Blob) IsPersisted() bool {
	return !b.rawObject.id.IsZero()
}

// ID returns the blob's digest.
func (b *Blob) ID() digest.Oid {
	return b.rawObject.id
}

// Bytes returns the blob's contents.
func (b *Blob) Bytes() []byte {
	return b.rawObject.content
}

// BytesCopy returns a copy of the blob's contents.
func (b *Blob) BytesCopy() []byte {
	out := make([]byte, len(b.rawObject.content))
	copy(out, b.rawObject.content)
	return out
}

// Size returns the size of the blob.
func (b *Blob) Size() int {
	return len(b.rawObject.content)
}

// ToObject returns the Blob's underlying Object.
func (b *Blob) ToObject() *Object {
	return b.rawObject
}
