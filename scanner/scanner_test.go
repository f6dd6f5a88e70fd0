package scanner_test

import (
	"testing"

	"github.com/assembler-0/avc/scanner"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkDiscoversFilesSorted(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/x/w.txt", []byte("bye"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/work/x/y/z.txt", []byte("hi"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/work/.avc/index", []byte("ignored"), 0o644))

	files, warnings, err := scanner.Walk(fs, "/work", "/work", scanner.Options{})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, ".avc", warnings[0].Path)

	require.Len(t, files, 2)
	assert.Equal(t, "x/w.txt", files[0].RelPath)
	assert.Equal(t, "x/y/z.txt", files[1].RelPath)
}

func TestWalkSkipsMetadataDirectories(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/a.txt", []byte("a"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/work/.avc/objects/ab/cdef", []byte("obj"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/work/.git/objects/ab/cdef", []byte("obj"), 0o644))

	files, _, err := scanner.Walk(fs, "/work", "/work", scanner.Options{})
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, "a.txt", files[0].RelPath)
}

func TestWalkHonorsExcludes(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/keep.txt", []byte("k"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/work/build/out.bin", []byte("b"), 0o644))

	files, _, err := scanner.Walk(fs, "/work", "/work", scanner.Options{
		Excludes: map[string]struct{}{"build": {}},
	})
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, "keep.txt", files[0].RelPath)
}

func TestWalkKeepEmptyDirs(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/work/empty", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/work/a.txt", []byte("a"), 0o644))

	files, _, err := scanner.Walk(fs, "/work", "/work", scanner.Options{KeepEmptyDirs: true})
	require.NoError(t, err)

	var sawPlaceholder bool
	for _, f := range files {
		if f.RelPath == "empty/"+scanner.EmptyDirPlaceholder {
			sawPlaceholder = true
		}
	}
	assert.True(t, sawPlaceholder)
}
