package bridge

import (
	"context"
	"io"
	"os/exec"
	"strings"

	"golang.org/x/xerrors"
)

// Exec delegates push/pull to the system git binary. The Bridge never
// reimplements the Git wire protocol; once it has produced a valid
// .git/objects + .git/refs directory, moving that data over the network
// is exactly what git itself already does well.
type Exec struct {
	// GitDir is the ".git" directory the translated objects and refs
	// live under; passed to git via --git-dir so it need not be the
	// process's current directory.
	GitDir string
}

// NewExec returns an Exec rooted at gitDir.
func NewExec(gitDir string) *Exec {
	return &Exec{GitDir: gitDir}
}

// Push runs "git push <remote> <refspec>" against GitDir.
func (e *Exec) Push(ctx context.Context, remote, refspec string) (string, error) {
	return e.run(ctx, "push", remote, refspec)
}

// Pull runs "git fetch <remote> <refspec>" against GitDir. Fetch rather
// than pull: the Bridge owns merging translated history back into AVC
// form itself, via Migrate, rather than delegating a merge to git.
func (e *Exec) Pull(ctx context.Context, remote, refspec string) (string, error) {
	return e.run(ctx, "fetch", remote, refspec)
}

func (e *Exec) run(ctx context.Context, args ...string) (string, error) {
	fullArgs := append([]string{"--git-dir", e.GitDir}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)

	stdout, stderr, err := execCmd(cmd)
	if err != nil && stderr != "" {
		return stdout, xerrors.Errorf("git %s: %s: %w", strings.Join(args, " "), stderr, err)
	}
	if err != nil {
		return stdout, xerrors.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return stdout, nil
}

func execCmd(cmd *exec.Cmd) (stdout, stderr string, err error) {
	stderrReader, err := cmd.StderrPipe()
	if err != nil {
		return "", "", xerrors.Errorf("could not pipe stderr: %w", err)
	}
	stdoutReader, err := cmd.StdoutPipe()
	if err != nil {
		return "", "", xerrors.Errorf("could not pipe stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", "", err
	}

	stderrByte, err := io.ReadAll(stderrReader)
	if err != nil {
		return "", "", xerrors.Errorf("could not read stderr: %w", err)
	}
	stdoutByte, err := io.ReadAll(stdoutReader)
	if err != nil {
		return "", "", xerrors.Errorf("could not read stdout: %w", err)
	}

	stdout = strings.TrimSuffix(string(stdoutByte), "\n")
	stderr = strings.TrimSuffix(string(stderrByte), "\n")

	return stdout, stderr, cmd.Wait()
}
