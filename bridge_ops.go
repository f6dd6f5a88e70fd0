package avc

import (
	"context"
	"path/filepath"

	"github.com/assembler-0/avc/bridge"
	"github.com/assembler-0/avc/ginternals"
	"github.com/assembler-0/avc/ginternals/digest"
	"github.com/assembler-0/avc/internal/repopath"
	"github.com/assembler-0/avc/refstore"
	"golang.org/x/xerrors"
)

// GitInit creates the .git mirror directory skeleton alongside .avc and
// attaches it to the Repository, so the bridge verbs below become
// available. A no-op if the mirror already exists.
func (r *Repository) GitInit() error {
	if r.GitObjects != nil {
		return nil
	}

	dirs := []string{
		filepath.Join(r.gitDir, repopath.ObjectsPath),
		filepath.Join(r.gitDir, repopath.RefsHeadsPath),
		filepath.Join(r.gitDir, repopath.RefsTagsPath),
	}
	for _, d := range dirs {
		if err := r.fs.MkdirAll(d, 0o755); err != nil {
			return xerrors.Errorf("could not create %s: %w", d, err)
		}
	}

	gitRefs := refstore.New(r.fs, r.gitDir, digest.SHA1())
	if err := gitRefs.InitializeHead(ginternals.DefaultBranch); err != nil {
		return xerrors.Errorf("could not initialize git HEAD: %w", err)
	}

	return r.attachGitMirror()
}

func (r *Repository) requireGitMirror() (*bridge.Bridge, error) {
	if r.GitObjects == nil {
		return nil, ErrGitMirrorMissing
	}
	return bridge.New(r.AVCObjects, r.GitObjects, r.DigestMap), nil
}

// SyncToGit translates every commit reachable from AVC's HEAD into the
// Git mirror and advances the mirror's matching branch ref.
func (r *Repository) SyncToGit() (digest.Oid, error) {
	br, err := r.requireGitMirror()
	if err != nil {
		return nil, err
	}

	head, err := r.AVCRefs.ResolveHead()
	if err != nil {
		return nil, xerrors.Errorf("could not resolve AVC HEAD: %w", err)
	}

	gitHead, err := br.TranslateObject(head.Target(), bridge.AVCToGit)
	if err != nil {
		return nil, xerrors.Errorf("could not translate HEAD to git: %w", err)
	}

	if err := br.Commit(); err != nil {
		return nil, xerrors.Errorf("could not flush digest map: %w", err)
	}

	branch, symbolic, err := r.AVCRefs.ReadHeadRefName()
	if err != nil {
		return nil, xerrors.Errorf("could not read AVC HEAD: %w", err)
	}
	target := ginternals.Head
	if symbolic {
		target = branch
	}
	if err := r.GitRefs.WriteRef(target, gitHead); err != nil {
		return nil, xerrors.Errorf("could not advance git ref %s: %w", target, err)
	}

	return gitHead, nil
}

// VerifyGit reports whether AVC's HEAD and the Git mirror's matching
// ref agree, by re-translating HEAD (a no-op when already mapped) and
// comparing digests rather than trusting a stale ref.
func (r *Repository) VerifyGit() (bool, error) {
	br, err := r.requireGitMirror()
	if err != nil {
		return false, err
	}

	head, err := r.AVCRefs.ResolveHead()
	if err != nil {
		return false, xerrors.Errorf("could not resolve AVC HEAD: %w", err)
	}
	wantGit, err := br.TranslateObject(head.Target(), bridge.AVCToGit)
	if err != nil {
		return false, xerrors.Errorf("could not translate HEAD to git: %w", err)
	}

	gitHead, err := r.GitRefs.ResolveHead()
	if err != nil {
		return false, nil
	}
	return gitHead.Target().String() == wantGit.String(), nil
}

// Migrate imports the Git mirror's HEAD history into the AVC store,
// translating every object GitToAVC and advancing AVC's matching
// branch ref, the reverse of SyncToGit.
func (r *Repository) Migrate() (digest.Oid, error) {
	br, err := r.requireGitMirror()
	if err != nil {
		return nil, err
	}

	gitHead, err := r.GitRefs.ResolveHead()
	if err != nil {
		return nil, xerrors.Errorf("could not resolve git HEAD: %w", err)
	}

	avcHead, err := br.TranslateObject(gitHead.Target(), bridge.GitToAVC)
	if err != nil {
		return nil, xerrors.Errorf("could not translate HEAD to avc: %w", err)
	}

	if err := br.Commit(); err != nil {
		return nil, xerrors.Errorf("could not flush digest map: %w", err)
	}

	branch, symbolic, err := r.GitRefs.ReadHeadRefName()
	if err != nil {
		return nil, xerrors.Errorf("could not read git HEAD: %w", err)
	}
	target := ginternals.Head
	if symbolic {
		target = branch
	}
	if err := r.AVCRefs.WriteRef(target, avcHead); err != nil {
		return nil, xerrors.Errorf("could not advance avc ref %s: %w", target, err)
	}

	return avcHead, nil
}

// Push synchronizes AVC's HEAD into the Git mirror and hands the
// resulting ref off to a real git client for delivery to remote,
// per refspec.
func (r *Repository) Push(ctx context.Context, remote, refspec string) (string, error) {
	if r.GitObjects == nil {
		return "", ErrGitMirrorMissing
	}
	if _, err := r.SyncToGit(); err != nil {
		return "", err
	}
	return bridge.NewExec(r.gitDir).Push(ctx, remote, refspec)
}

// Pull fetches refspec from remote into the Git mirror via a real git
// client, without merging; call Migrate afterward to bring the fetched
// history into the AVC store.
func (r *Repository) Pull(ctx context.Context, remote, refspec string) (string, error) {
	if r.GitObjects == nil {
		return "", ErrGitMirrorMissing
	}
	return bridge.NewExec(r.gitDir).Pull(ctx, remote, refspec)
}
