//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris
// +build darwin dragonfly freebsd linux netbsd openbsd solaris

package bridge_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/assembler-0/avc/bridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGit installs a shell script named "git" on PATH that echoes its
// arguments, so Exec's argument wiring (--git-dir first, verb and
// operands after) can be checked without a real repository or network.
func fakeGit(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	script := filepath.Join(dir, "git")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"$@\"\n"), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestExecPushWiresArguments(t *testing.T) {
	fakeGit(t)

	e := bridge.NewExec("/repo/.git")
	out, err := e.Push(context.Background(), "origin", "refs/heads/main")
	require.NoError(t, err)
	assert.Equal(t, "--git-dir /repo/.git push origin refs/heads/main", out)
}

func TestExecPullUsesFetch(t *testing.T) {
	fakeGit(t)

	e := bridge.NewExec("/repo/.git")
	out, err := e.Pull(context.Background(), "origin", "refs/heads/main")
	require.NoError(t, err)
	assert.Equal(t, "--git-dir /repo/.git fetch origin refs/heads/main", out)
}

func TestExecReturnsStderrOnFailure(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "git")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"boom\" 1>&2\nexit 1\n"), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	e := bridge.NewExec("/repo/.git")
	_, err := e.Push(context.Background(), "origin", "refs/heads/main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
