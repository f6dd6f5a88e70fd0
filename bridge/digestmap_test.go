package bridge_test

import (
	"testing"

	"github.com/assembler-0/avc/bridge"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestMapRecordAndLookupBothDirections(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	m := bridge.NewDigestMap(fs, "/repo/.avc/agcl-map")
	require.NoError(t, m.Load())

	m.Record("avc1", "git1")

	gitHex, ok := m.LookupByAVC("avc1")
	require.True(t, ok)
	assert.Equal(t, "git1", gitHex)

	avcHex, ok := m.LookupByGit("git1")
	require.True(t, ok)
	assert.Equal(t, "avc1", avcHex)

	_, ok = m.LookupByAVC("missing")
	assert.False(t, ok)
}

func TestDigestMapCommitPersistsAcrossLoads(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	m := bridge.NewDigestMap(fs, "/repo/.avc/agcl-map")
	require.NoError(t, m.Load())
	m.Record("avc1", "git1")
	m.Record("avc2", "git2")
	require.NoError(t, m.Commit())

	reloaded := bridge.NewDigestMap(fs, "/repo/.avc/agcl-map")
	require.NoError(t, reloaded.Load())

	gitHex, ok := reloaded.LookupByAVC("avc2")
	require.True(t, ok)
	assert.Equal(t, "git2", gitHex)
}

func TestDigestMapLoadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	m := bridge.NewDigestMap(fs, "/repo/.avc/agcl-map")
	require.NoError(t, m.Load())

	_, ok := m.LookupByAVC("anything")
	assert.False(t, ok)
}

func TestDigestMapLoadRejectsCorruptLine(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/.avc/agcl-map", []byte("not-valid\n"), 0o644))

	m := bridge.NewDigestMap(fs, "/repo/.avc/agcl-map")
	err := m.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, bridge.ErrMapCorrupt)
}
