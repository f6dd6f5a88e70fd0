// Package digest contains the hash algorithms used by the object stores.
//
// AVC objects are addressed by BLAKE3; objects mirrored into a Git store
// are addressed by SHA-1. Both share the same Algo/Oid shape so the rest
// of the codebase (store, snapshot, bridge) never has to special-case the
// algorithm in use.
package digest

import "errors"

// ErrInvalidOid is returned when a given value isn't a valid Oid for the
// algorithm being used.
var ErrInvalidOid = errors.New("invalid oid")

// Algo represents a hash algorithm usable by an object store.
type Algo interface {
	// Name returns the short name of the algorithm ("blake3", "sha1").
	Name() string
	// Size returns the size, in raw bytes, of an Oid produced by this
	// algorithm.
	Size() int
	// Sum returns the Oid of the given bytes. Callers are expected to
	// pass the full framed representation (type SP size NUL payload),
	// not the bare payload.
	Sum(content []byte) Oid
	// NewOidFromHex parses the hex representation of an Oid.
	NewOidFromHex(s string) (Oid, error)
	// NewOidFromBytes casts a raw byte slice (as found in a Git binary
	// tree entry, for example) into an Oid.
	NewOidFromBytes(b []byte) (Oid, error)
	// NullOid returns the zero-value Oid for this algorithm.
	NullOid() Oid
}

// Oid represents an object id: the digest of an object's framed
// representation.
type Oid interface {
	// Bytes returns the raw digest bytes.
	Bytes() []byte
	// String returns the lowercase hex representation of the digest.
	String() string
	// IsZero returns whether this is the null Oid.
	IsZero() bool
}
