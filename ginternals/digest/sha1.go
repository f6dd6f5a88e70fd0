package digest

import (
	"crypto/sha1" //nolint:gosec // required for Git object-store interop
	"encoding/hex"

	"golang.org/x/xerrors"
)

const sha1Size = 20

var sha1Null = sha1Oid{}

// sha1Algo is the Git-compatible hash algorithm.
type sha1Algo struct{}

// SHA1 returns the Algo used by the Git side of the Bridge.
func SHA1() Algo {
	return sha1Algo{}
}

func (sha1Algo) Name() string { return "sha1" }
func (sha1Algo) Size() int    { return sha1Size }

func (sha1Algo) Sum(content []byte) Oid {
	var o sha1Oid = sha1.Sum(content) //nolint:gosec // Git object format requires SHA-1
	return o
}

func (sha1Algo) NewOidFromHex(s string) (Oid, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return sha1Null, xerrors.Errorf("could not decode oid %q: %w", s, ErrInvalidOid)
	}
	return sha1Algo{}.NewOidFromBytes(b)
}

func (sha1Algo) NewOidFromBytes(b []byte) (Oid, error) {
	if len(b) != sha1Size {
		return sha1Null, ErrInvalidOid
	}
	var o sha1Oid
	copy(o[:], b)
	return o, nil
}

func (sha1Algo) NullOid() Oid {
	return sha1Null
}

// sha1Oid is a SHA-1 digest, stored raw (20 bytes).
type sha1Oid [sha1Size]byte

func (o sha1Oid) Bytes() []byte  { return o[:] }
func (o sha1Oid) String() string { return hex.EncodeToString(o[:]) }
func (o sha1Oid) IsZero() bool   { return o == sha1Null }
