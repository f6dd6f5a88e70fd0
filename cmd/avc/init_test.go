package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/assembler-0/avc/internal/env"
	"github.com/assembler-0/avc/internal/testhelper"
	"github.com/stretchr/testify/require"
)

func TestInitCmd(t *testing.T) {
	t.Parallel()

	dirPath, cleanup := testhelper.TempDir(t)
	t.Cleanup(cleanup)

	cwd, err := os.Getwd()
	require.NoError(t, err)

	cmd := newRootCmd(cwd, env.NewFromOs())
	cmd.SetArgs([]string{"init", "-C", dirPath})

	require.NotPanics(t, func() {
		err = cmd.Execute()
	})
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dirPath, ".avc"))
	require.NoError(t, statErr)
}

func TestVersionCmdPrintsSomething(t *testing.T) {
	t.Parallel()

	cwd, err := os.Getwd()
	require.NoError(t, err)

	cmd := newRootCmd(cwd, env.NewFromOs())
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	require.Contains(t, buf.String(), "avc")
}

func TestInitCmdFailsIfRepoAlreadyExists(t *testing.T) {
	t.Parallel()

	dirPath, cleanup := testhelper.TempDir(t)
	t.Cleanup(cleanup)

	cwd, err := os.Getwd()
	require.NoError(t, err)

	cmd := newRootCmd(cwd, env.NewFromOs())
	cmd.SetArgs([]string{"init", "-C", dirPath})
	require.NoError(t, cmd.Execute())

	cmd2 := newRootCmd(cwd, env.NewFromOs())
	cmd2.SetArgs([]string{"init", "-C", dirPath})
	require.Error(t, cmd2.Execute())
}
