// Package refstore implements the Ref Store: resolving and atomically
// updating HEAD and the branch/tag refs it may point at, symbolically
// or directly.
package refstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/assembler-0/avc/ginternals"
	"github.com/assembler-0/avc/ginternals/digest"
	"github.com/assembler-0/avc/internal/atomicfile"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Store resolves and persists references under a repository's metadata
// directory (".avc" for the AVC side, ".git" for the bridged mirror).
type Store struct {
	fs      afero.Fs
	repoDir string
	algo    digest.Algo
}

// New returns a Store rooted at repoDir (e.g. ".avc"), resolving digests
// with algo.
func New(fs afero.Fs, repoDir string, algo digest.Algo) *Store {
	return &Store{fs: fs, repoDir: repoDir, algo: algo}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.repoDir, filepath.FromSlash(name))
}

func (s *Store) find(name string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, xerrors.Errorf("ref %q: %w", name, ginternals.ErrRefNotFound)
		}
		return nil, xerrors.Errorf("could not read ref %q: %w", name, err)
	}
	return data, nil
}

// ResolveHead follows HEAD down to the commit digest it ultimately
// points at, returning the fully resolved Reference. Reference.Name()
// stays "HEAD"; the branch it resolved through is available from
// ReadHeadRefName.
func (s *Store) ResolveHead() (*ginternals.Reference, error) {
	return ginternals.ResolveReference(s.algo, ginternals.Head, s.find)
}

// ReadHeadRefName returns the branch name HEAD currently points at
// symbolically (e.g. "refs/heads/main"), or ok=false if HEAD is
// detached (points directly at a commit digest).
func (s *Store) ReadHeadRefName() (name string, ok bool, err error) {
	raw, err := s.find(ginternals.Head)
	if err != nil {
		return "", false, err
	}
	ref, err := parseRefContent(s.algo, ginternals.Head, raw)
	if err != nil {
		return "", false, err
	}
	if ref.Type() != ginternals.SymbolicReference {
		return "", false, nil
	}
	return ref.SymbolicTarget(), true, nil
}

// ReadRef resolves name (e.g. "refs/heads/main") down to the commit
// digest it points at. ginternals.ErrRefNotFound is returned if the ref
// does not exist on disk.
func (s *Store) ReadRef(name string) (digest.Oid, error) {
	ref, err := ginternals.ResolveReference(s.algo, name, s.find)
	if err != nil {
		return s.algo.NullOid(), err
	}
	return ref.Target(), nil
}

// WriteRef atomically points name at target, creating intermediate
// directories as needed.
func (s *Store) WriteRef(name string, target digest.Oid) error {
	if !ginternals.IsRefNameValid(name) {
		return ginternals.ErrRefNameInvalid
	}
	content := []byte(fmt.Sprintf("%s\n", target.String()))
	return atomicfile.Write(s.fs, s.path(name), content, 0o644)
}

// InitializeHead points HEAD symbolically at refs/heads/<branch>,
// without requiring the branch file itself to exist yet (a ref-missing
// branch reads as empty until the first commit creates it).
func (s *Store) InitializeHead(branch string) error {
	return s.WriteSymbolicRef(ginternals.Head, ginternals.LocalBranchFullName(branch))
}

// WriteSymbolicRef atomically points name at another reference by name,
// e.g. WriteSymbolicRef("HEAD", "refs/heads/main").
func (s *Store) WriteSymbolicRef(name, targetName string) error {
	if !ginternals.IsRefNameValid(name) {
		return ginternals.ErrRefNameInvalid
	}
	content := []byte(fmt.Sprintf("ref: %s\n", targetName))
	return atomicfile.Write(s.fs, s.path(name), content, 0o644)
}

func parseRefContent(algo digest.Algo, name string, raw []byte) (*ginternals.Reference, error) {
	trimmed := trimNewline(raw)
	if len(trimmed) > 5 && string(trimmed[:5]) == "ref: " {
		return ginternals.NewSymbolicReference(name, string(trimmed[5:])), nil
	}
	oid, err := algo.NewOidFromHex(string(trimmed))
	if err != nil {
		return nil, xerrors.Errorf("ref %q holds invalid digest: %w", name, ginternals.ErrRefInvalid)
	}
	return ginternals.NewReference(name, oid), nil
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r' || b[len(b)-1] == ' ') {
		b = b[:len(b)-1]
	}
	return b
}
