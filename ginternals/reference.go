package ginternals

import (
	"bytes"
	"errors"
	"strings"

	"github.com/assembler-0/avc/ginternals/digest"
	"golang.org/x/xerrors"
)

// Well-known reference names.
const (
	// Head points at the branch currently checked out, or directly at
	// a commit when the repository is in detached-HEAD state.
	Head = "HEAD"
	// DefaultBranch is the branch name a freshly initialized repository
	// points HEAD at.
	DefaultBranch = "main"
)

// Sentinel errors for the reference subsystem.
var (
	ErrRefNotFound    = errors.New("reference not found")
	ErrRefExists      = errors.New("reference already exists")
	ErrRefNameInvalid = errors.New("reference name is not valid")
	ErrRefInvalid     = errors.New("reference is not valid")
	ErrUnknownRefType = errors.New("unknown reference type")
	ErrNoParentCommit = errors.New("commit has no parent")
)

// Type represents the kind of target a Reference points at.
type Type int8

const (
	// OidReference is a reference that points directly at a commit digest.
	OidReference Type = 1
	// SymbolicReference is a reference that points at another reference
	// by name (e.g. HEAD -> refs/heads/main).
	SymbolicReference Type = 2
)

// Reference represents a named pointer, either directly at a commit
// digest or symbolically at another reference.
type Reference struct {
	name   string
	target string
	id     digest.Oid
	typ    Type
}

// NewReference returns a Reference that targets a commit digest directly.
func NewReference(name string, target digest.Oid) *Reference {
	return &Reference{typ: OidReference, name: name, id: target}
}

// NewSymbolicReference returns a Reference that targets another reference
// by name.
func NewSymbolicReference(name, target string) *Reference {
	return &Reference{typ: SymbolicReference, name: name, target: target}
}

// Name returns the full name of the reference, e.g. "refs/heads/main".
func (r *Reference) Name() string { return r.name }

// Target returns the digest this reference (transitively) points at. It
// is only meaningful once the reference has been resolved.
func (r *Reference) Target() digest.Oid { return r.id }

// Type returns whether the reference is symbolic or direct.
func (r *Reference) Type() Type { return r.typ }

// SymbolicTarget returns the name of the reference this one points at.
// Only meaningful for symbolic references.
func (r *Reference) SymbolicTarget() string { return r.target }

// Finder returns the raw content stored at the given reference name, or
// ErrRefNotFound / a wrapped error. It lets ResolveReference work without
// depending on a concrete store implementation.
type Finder func(name string) ([]byte, error)

// ResolveReference follows a chain of symbolic references down to the
// commit digest they ultimately point at.
func ResolveReference(algo digest.Algo, name string, find Finder) (*Reference, error) {
	return resolve(algo, name, find, map[string]struct{}{})
}

func resolve(algo digest.Algo, name string, find Finder, seen map[string]struct{}) (*Reference, error) {
	if _, ok := seen[name]; ok {
		return nil, xerrors.Errorf("circular symbolic reference at %q: %w", name, ErrRefInvalid)
	}
	seen[name] = struct{}{}

	if !IsRefNameValid(name) {
		return nil, xerrors.Errorf("ref %q: %w", name, ErrRefNameInvalid)
	}

	data, err := find(name)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	if bytes.HasPrefix(data, []byte("ref: ")) {
		target := string(data[5:])
		resolved, err := resolve(algo, target, find, seen)
		if err != nil {
			return nil, err
		}
		return &Reference{
			typ:    SymbolicReference,
			name:   name,
			target: target,
			id:     resolved.id,
		}, nil
	}

	oid, err := algo.NewOidFromHex(string(data))
	if err != nil {
		return nil, xerrors.Errorf("ref %q holds invalid digest: %w", name, ErrRefInvalid)
	}
	return &Reference{typ: OidReference, name: name, id: oid}, nil
}

// IsRefNameValid reports whether name is usable as a reference name.
// Rules are a deliberate subset of git's check-ref-format: no empty
// segments, no segment starting or ending with a dot, no ".lock" suffix,
// no control characters, no "..", and a handful of shell-hostile
// characters are rejected outright.
func IsRefNameValid(name string) bool {
	if name == "" || name == "/" || name[len(name)-1] == '/' || name[len(name)-1] == '.' {
		return false
	}

	for i, c := range name {
		if c < 32 || c == 127 {
			return false
		}
		switch c {
		case '*', '?', '!', '^', ' ', '[', '\\', ':', '~':
			return false
		}
		if i < len(name)-1 && name[i:i+2] == ".." {
			return false
		}
	}

	for _, seg := range strings.Split(name, "/") {
		if seg == "" || seg[0] == '.' || seg[len(seg)-1] == '.' || strings.HasSuffix(seg, ".lock") {
			return false
		}
	}

	return true
}
