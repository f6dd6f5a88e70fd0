package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/assembler-0/avc/internal/env"
	"github.com/assembler-0/avc/internal/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, cwd, dirPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(cwd, env.NewFromOs())
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs(append(args, "-C", dirPath))
	err := cmd.Execute()
	return buf.String(), err
}

func TestAddCommitLogEndToEnd(t *testing.T) {
	t.Parallel()

	dirPath, cleanup := testhelper.TempDir(t)
	t.Cleanup(cleanup)

	cwd, err := os.Getwd()
	require.NoError(t, err)

	_, err = run(t, cwd, dirPath, "init")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dirPath, "a.txt"), []byte("hello"), 0o644))

	out, err := run(t, cwd, dirPath, "add")
	require.NoError(t, err)
	assert.Contains(t, out, "a.txt")

	out, err = run(t, cwd, dirPath, "commit", "-m", "first commit")
	require.NoError(t, err)
	assert.Contains(t, out, "first commit")

	out, err = run(t, cwd, dirPath, "log")
	require.NoError(t, err)
	assert.Contains(t, out, "first commit")

	out, err = run(t, cwd, dirPath, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "clean")
}

func TestAddCmdPrintsWarningForReservedPrefixPath(t *testing.T) {
	t.Parallel()

	dirPath, cleanup := testhelper.TempDir(t)
	t.Cleanup(cleanup)

	cwd, err := os.Getwd()
	require.NoError(t, err)

	_, err = run(t, cwd, dirPath, "init")
	require.NoError(t, err)

	out, err := run(t, cwd, dirPath, "add")
	require.NoError(t, err)
	assert.Contains(t, out, "warning: skipped .avc")
}

func TestCommitWithoutMessageFails(t *testing.T) {
	t.Parallel()

	dirPath, cleanup := testhelper.TempDir(t)
	t.Cleanup(cleanup)

	cwd, err := os.Getwd()
	require.NoError(t, err)

	_, err = run(t, cwd, dirPath, "init")
	require.NoError(t, err)

	_, err = run(t, cwd, dirPath, "commit")
	require.Error(t, err)
}
