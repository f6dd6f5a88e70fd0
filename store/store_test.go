package store_test

import (
	"testing"

	"github.com/assembler-0/avc/ginternals"
	"github.com/assembler-0/avc/ginternals/digest"
	"github.com/assembler-0/avc/ginternals/object"
	"github.com/assembler-0/avc/store"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(algo digest.Algo, format store.Format) *store.Store {
	fs := afero.NewMemMapFs()
	return store.New(fs, "/repo/objects", algo, store.Options{Format: format})
}

func TestStoreObjectAndLoadObject(t *testing.T) {
	t.Parallel()

	t.Run("blake3 roundtrip", func(t *testing.T) {
		t.Parallel()

		s := newStore(digest.BLAKE3(), store.FormatZstd)
		o := object.New(digest.BLAKE3(), object.TypeBlob, []byte("hello"))

		oid, err := s.StoreObject(o)
		require.NoError(t, err)
		assert.Equal(t, o.ID().String(), oid.String())

		has, err := s.HasObject(oid)
		require.NoError(t, err)
		assert.True(t, has)

		loaded, err := s.LoadObject(oid)
		require.NoError(t, err)
		assert.Equal(t, object.TypeBlob, loaded.Type())
		assert.Equal(t, []byte("hello"), loaded.Bytes())
	})

	t.Run("sha1 roundtrip with zlib framing", func(t *testing.T) {
		t.Parallel()

		s := newStore(digest.SHA1(), store.FormatZlib)
		o := object.New(digest.SHA1(), object.TypeBlob, []byte("abc"))

		oid, err := s.StoreObject(o)
		require.NoError(t, err)
		assert.Equal(t, "f2ba8f84ab5c1bce84a7b441cb1959cfc7093b7f", oid.String())

		loaded, err := s.LoadObject(oid)
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), loaded.Bytes())
	})

	t.Run("idempotent store leaves one file and same digest", func(t *testing.T) {
		t.Parallel()

		s := newStore(digest.BLAKE3(), store.FormatZstd)
		o := object.New(digest.BLAKE3(), object.TypeBlob, []byte("same content"))

		oid1, err := s.StoreObject(o)
		require.NoError(t, err)
		oid2, err := s.StoreObject(object.New(digest.BLAKE3(), object.TypeBlob, []byte("same content")))
		require.NoError(t, err)

		assert.Equal(t, oid1.String(), oid2.String())
	})

	t.Run("unknown object fails with ErrObjectNotFound", func(t *testing.T) {
		t.Parallel()

		s := newStore(digest.BLAKE3(), store.FormatZstd)
		oid, err := digest.BLAKE3().NewOidFromHex("0000000000000000000000000000000000000000000000000000000000000000"[:64])
		require.NoError(t, err)

		_, err = s.LoadObject(oid)
		require.Error(t, err)
		assert.ErrorIs(t, err, ginternals.ErrObjectNotFound)
	})
}

func TestStoreMixedFormats(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	zstdStore := store.New(fs, "/repo/objects", digest.BLAKE3(), store.Options{Format: store.FormatZstd})
	zlibStore := store.New(fs, "/repo/objects", digest.BLAKE3(), store.Options{Format: store.FormatZlib})

	zOid, err := zstdStore.StoreObject(object.New(digest.BLAKE3(), object.TypeBlob, []byte("zstd-one")))
	require.NoError(t, err)
	lOid, err := zlibStore.StoreObject(object.New(digest.BLAKE3(), object.TypeBlob, []byte("zlib-one")))
	require.NoError(t, err)

	// A single store instance must read both formats back transparently.
	reader := store.New(fs, "/repo/objects", digest.BLAKE3(), store.Options{})
	o1, err := reader.LoadObject(zOid)
	require.NoError(t, err)
	assert.Equal(t, []byte("zstd-one"), o1.Bytes())

	o2, err := reader.LoadObject(lOid)
	require.NoError(t, err)
	assert.Equal(t, []byte("zlib-one"), o2.Bytes())
}

func TestStoreBlobFromFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/a/b.txt", []byte("hello"), 0o644))

	s := store.New(fs, "/repo/objects", digest.BLAKE3(), store.Options{})
	oid, err := s.StoreBlobFromFile("/work/a/b.txt")
	require.NoError(t, err)

	loaded, err := s.LoadObject(oid)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), loaded.Bytes())
}

func TestStoreFastRoundTrips(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	s := store.New(fs, "/repo/objects", digest.BLAKE3(), store.Options{Format: store.FormatZstd})
	fast := s.Fast()

	oid, err := fast.StoreObject(object.New(digest.BLAKE3(), object.TypeBlob, []byte("fast content")))
	require.NoError(t, err)

	loaded, err := s.LoadObject(oid)
	require.NoError(t, err)
	assert.Equal(t, []byte("fast content"), loaded.Bytes())
}
