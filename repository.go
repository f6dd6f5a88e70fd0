package avc

import (
	"os"
	"path/filepath"

	"github.com/assembler-0/avc/bridge"
	"github.com/assembler-0/avc/ginternals"
	"github.com/assembler-0/avc/ginternals/config"
	"github.com/assembler-0/avc/ginternals/digest"
	"github.com/assembler-0/avc/ginternals/object"
	"github.com/assembler-0/avc/index"
	"github.com/assembler-0/avc/internal/env"
	"github.com/assembler-0/avc/internal/repopath"
	"github.com/assembler-0/avc/refstore"
	"github.com/assembler-0/avc/store"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// defaultAuthorName/Email are used when the environment carries no
// author identity, per spec.
const (
	defaultAuthorName  = "unknown"
	defaultAuthorEmail = "user@example.com"
)

// Repository is a handle on one working tree plus its .avc metadata
// directory, and optionally a bridged .git mirror.
type Repository struct {
	fs  afero.Fs
	env *env.Env

	workTree string
	repoDir  string // <workTree>/.avc
	gitDir   string // <workTree>/.git

	AVCObjects *store.Store
	AVCRefs    *refstore.Store
	Index      *index.Index

	// GitObjects/GitRefs/DigestMap are lazily populated by GitInit or
	// Open (when a .git mirror already exists).
	GitObjects *store.Store
	GitRefs    *refstore.Store
	DigestMap  *bridge.DigestMap
}

// Init creates a brand-new repository rooted at workTree: the .avc
// directory skeleton (objects/, refs/heads/, refs/tags/, HEAD, empty
// index, a format file recording the object compression scheme, and an
// INI config file recording core.bare) described in spec §4.5/§6.
func Init(fs afero.Fs, workTree string) (*Repository, error) {
	repoDir := filepath.Join(workTree, repopath.DotDirName)

	if _, err := fs.Stat(repoDir); err == nil {
		return nil, xerrors.Errorf("%s: %w", repoDir, ErrRepoExists)
	}

	dirs := []string{
		filepath.Join(repoDir, repopath.ObjectsPath),
		filepath.Join(repoDir, repopath.RefsHeadsPath),
		filepath.Join(repoDir, repopath.RefsTagsPath),
	}
	for _, d := range dirs {
		if err := fs.MkdirAll(d, 0o755); err != nil {
			return nil, xerrors.Errorf("could not create %s: %w", d, err)
		}
	}

	algo := digest.BLAKE3()
	refs := refstore.New(fs, repoDir, algo)
	if err := refs.InitializeHead(ginternals.DefaultBranch); err != nil {
		return nil, xerrors.Errorf("could not initialize HEAD: %w", err)
	}

	idx := index.New(fs, filepath.Join(repoDir, repopath.IndexPath), algo)
	if err := idx.Commit(); err != nil {
		return nil, xerrors.Errorf("could not create empty index: %w", err)
	}

	if err := store.SaveFormat(fs, repoDir, store.DefaultRepoFormat()); err != nil {
		return nil, xerrors.Errorf("could not write repository format: %w", err)
	}

	cfgFile, err := config.NewFileAggregate(&config.Config{
		FS:          fs,
		LocalConfig: filepath.Join(repoDir, repopath.ConfigPath),
	})
	if err != nil {
		return nil, xerrors.Errorf("could not build repository config: %w", err)
	}
	cfgFile.UpdateIsBare(false)
	if err := cfgFile.Save(); err != nil {
		return nil, xerrors.Errorf("could not write repository config: %w", err)
	}

	return open(fs, workTree, repoDir)
}

// Open locates an existing repository starting at (or above) startDir
// and returns a handle on it.
func Open(fs afero.Fs, startDir string) (*Repository, error) {
	workTree, err := findWorkTree(fs, startDir)
	if err != nil {
		return nil, xerrors.Errorf("%w", ErrRepoMissing)
	}
	repoDir := filepath.Join(workTree, repopath.DotDirName)
	return open(fs, workTree, repoDir)
}

func open(fs afero.Fs, workTree, repoDir string) (*Repository, error) {
	algo := digest.BLAKE3()

	format, err := store.LoadFormat(fs, repoDir)
	if err != nil {
		return nil, xerrors.Errorf("could not load repository format: %w", err)
	}

	r := &Repository{
		fs:         fs,
		env:        env.NewFromOs(),
		workTree:   workTree,
		repoDir:    repoDir,
		gitDir:     filepath.Join(workTree, repopath.GitMirrorDirName),
		AVCObjects: store.New(fs, filepath.Join(repoDir, repopath.ObjectsPath), algo, store.Options{Format: format.Compression}),
		AVCRefs:    refstore.New(fs, repoDir, algo),
		Index:      index.New(fs, filepath.Join(repoDir, repopath.IndexPath), algo),
	}
	if err := r.Index.Load(); err != nil {
		return nil, xerrors.Errorf("could not load index: %w", err)
	}

	if _, err := fs.Stat(r.gitDir); err == nil {
		if err := r.attachGitMirror(); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *Repository) attachGitMirror() error {
	gitAlgo := digest.SHA1()
	r.GitObjects = store.New(r.fs, filepath.Join(r.gitDir, repopath.ObjectsPath), gitAlgo, store.Options{Format: store.FormatZlib})
	r.GitRefs = refstore.New(r.fs, r.gitDir, gitAlgo)
	r.DigestMap = bridge.NewDigestMap(r.fs, filepath.Join(r.gitDir, "avc-map"))
	if err := r.DigestMap.Load(); err != nil {
		return err
	}

	cfgFile, err := config.NewFileAggregate(&config.Config{
		FS:          r.fs,
		LocalConfig: filepath.Join(r.repoDir, repopath.ConfigPath),
	})
	if err != nil {
		return xerrors.Errorf("could not load repository config: %w", err)
	}
	cfgFile.UpdateGitMirrorPath(r.gitDir)
	return cfgFile.Save()
}

func findWorkTree(fs afero.Fs, startDir string) (string, error) {
	dir := startDir
	for {
		if _, err := fs.Stat(filepath.Join(dir, repopath.DotDirName)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// WorkTree returns the absolute path to the repository's working tree.
func (r *Repository) WorkTree() string {
	return r.workTree
}

// Author builds the commit author signature from the environment,
// falling back to spec's defaults when unset.
func (r *Repository) Author() object.Signature {
	name := r.env.Get("AVC_AUTHOR_NAME")
	if name == "" {
		name = defaultAuthorName
	}
	email := r.env.Get("AVC_AUTHOR_EMAIL")
	if email == "" {
		email = defaultAuthorEmail
	}
	return object.NewSignature(name, email)
}
