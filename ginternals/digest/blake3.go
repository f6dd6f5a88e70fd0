package digest

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
	"golang.org/x/xerrors"
)

const blake3Size = 32

var blake3Null = blake3Oid{}

// blake3Algo is the native AVC hash algorithm.
type blake3Algo struct{}

// BLAKE3 returns the Algo used by the AVC object store.
func BLAKE3() Algo {
	return blake3Algo{}
}

func (blake3Algo) Name() string { return "blake3" }
func (blake3Algo) Size() int    { return blake3Size }

func (blake3Algo) Sum(content []byte) Oid {
	var o blake3Oid = blake3.Sum256(content)
	return o
}

func (blake3Algo) NewOidFromHex(s string) (Oid, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return blake3Null, xerrors.Errorf("could not decode oid %q: %w", s, ErrInvalidOid)
	}
	return blake3Algo{}.NewOidFromBytes(b)
}

func (blake3Algo) NewOidFromBytes(b []byte) (Oid, error) {
	if len(b) != blake3Size {
		return blake3Null, ErrInvalidOid
	}
	var o blake3Oid
	copy(o[:], b)
	return o, nil
}

func (blake3Algo) NullOid() Oid {
	return blake3Null
}

// blake3Oid is a BLAKE3 digest, stored raw (32 bytes, 64 hex chars).
type blake3Oid [blake3Size]byte

func (o blake3Oid) Bytes() []byte  { return o[:] }
func (o blake3Oid) String() string { return hex.EncodeToString(o[:]) }
func (o blake3Oid) IsZero() bool   { return o == blake3Null }
