package store_test

import (
	"testing"

	"github.com/assembler-0/avc/ginternals"
	"github.com/assembler-0/avc/store"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFormatMissingFileMeansV1Zlib(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	f, err := store.LoadFormat(fs, "/repo")
	require.NoError(t, err)
	assert.Equal(t, 1, f.Version)
	assert.Equal(t, store.FormatZlib, f.Compression)
}

func TestSaveAndLoadFormatRoundTrip(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	want := store.DefaultRepoFormat()
	require.NoError(t, store.SaveFormat(fs, "/repo", want))

	got, err := store.LoadFormat(fs, "/repo")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadFormatRejectsUnsupportedVersion(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/format", []byte("99 1\n"), 0o644))

	_, err := store.LoadFormat(fs, "/repo")
	require.Error(t, err)
	assert.ErrorIs(t, err, ginternals.ErrFormatUnsupported)
}
