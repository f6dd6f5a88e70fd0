package digest_test

import (
	"testing"

	"github.com/assembler-0/avc/ginternals/digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSHA1KnownVector(t *testing.T) {
	t.Parallel()

	// "blob 3\0abc" must hash to the well-known Git blob SHA for "abc".
	framed := []byte("blob 3\x00abc")
	oid := digest.SHA1().Sum(framed)
	assert.Equal(t, "f2ba8f84ab5c1bce84a7b441cb1959cfc7093b7f", oid.String())
}

func TestBLAKE3RoundTrip(t *testing.T) {
	t.Parallel()

	framed := []byte("blob 3\x00abc")
	oid := digest.BLAKE3().Sum(framed)
	require.Len(t, oid.Bytes(), 32)
	require.Len(t, oid.String(), 64)

	reparsed, err := digest.BLAKE3().NewOidFromHex(oid.String())
	require.NoError(t, err)
	assert.Equal(t, oid.Bytes(), reparsed.Bytes())
}

func TestNullOid(t *testing.T) {
	t.Parallel()

	assert.True(t, digest.BLAKE3().NullOid().IsZero())
	assert.True(t, digest.SHA1().NullOid().IsZero())
}

func TestInvalidOid(t *testing.T) {
	t.Parallel()

	_, err := digest.SHA1().NewOidFromHex("not-hex")
	assert.ErrorIs(t, err, digest.ErrInvalidOid)

	_, err = digest.BLAKE3().NewOidFromBytes([]byte{0x01, 0x02})
	assert.ErrorIs(t, err, digest.ErrInvalidOid)
}
