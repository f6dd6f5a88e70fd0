package object

import (
	"bytes"
	"strconv"

	"github.com/assembler-0/avc/ginternals/digest"
	"golang.org/x/xerrors"
)

// TreeObjectMode represents the mode of an entry inside a tree.
// Non-standard modes (e.g. 0o100664) are not supported.
type TreeObjectMode int32

const (
	// ModeFile is the mode used for a regular file.
	ModeFile TreeObjectMode = 0o100644
	// ModeExecutable is the mode used for an executable file.
	ModeExecutable TreeObjectMode = 0o100755
	// ModeDirectory is the mode used for a directory (nested tree).
	ModeDirectory TreeObjectMode = 0o040000
	// ModeSymLink is the mode used for a symbolic link.
	ModeSymLink TreeObjectMode = 0o120000
)

// IsValid returns whether the mode is a supported mode.
func (m TreeObjectMode) IsValid() bool {
	switch m {
	case ModeFile, ModeExecutable, ModeDirectory, ModeSymLink:
		return true
	default:
		return false
	}
}

// ObjectType returns the object type associated with a mode.
func (m TreeObjectMode) ObjectType() Type {
	switch m {
	case ModeDirectory:
		return TypeTree
	case ModeExecutable, ModeFile, ModeSymLink:
		return TypeBlob
	default:
		return TypeBlob
	}
}

// Tree represents a directory snapshot: an ordered list of named
// entries, each pointing at a blob (file) or a nested tree (directory).
type Tree struct {
	rawObject *Object
	// entries is kept unexported and only exposed through a copy so the
	// byte-wise sorted order can never be mutated after construction.
	entries []TreeEntry
}

// TreeEntry represents one entry inside a tree.
type TreeEntry struct {
	Path string
	ID   digest.Oid
	Mode TreeObjectMode
}

// NewTree builds a tree object out of entries, using algo to compute the
// resulting object's digest. Entries must already be sorted by Path
// (byte-wise); the builder package is responsible for that ordering.
func NewTree(algo digest.Algo, entries []TreeEntry) *Tree {
	t := &Tree{entries: entries}
	t.rawObject = t.toObject(algo)
	return t
}

// NewTreeFromObject parses a tree from a raw Object.
func NewTreeFromObject(o *Object) (*Tree, error) {
	if o.Type() != TypeTree {
		return nil, xerrors.Errorf("type %s is not a tree: %w", o.typ, ErrObjectInvalid)
	}
	return treeFromContent(o, o.algo)
}

// Entries returns a copy of the tree's entries.
func (t *Tree) Entries() []TreeEntry {
	out := make([]TreeEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// ID returns the tree's digest.
func (t *Tree) ID() digest.Oid {
	return t.rawObject.ID()
}

// ToObject returns an Object representing the tree, using the algo the
// tree was built or parsed with.
func (t *Tree) ToObject() *Object {
	return t.rawObject
}

func (t *Tree) toObject(algo digest.Algo) *Object {
	// Quick reminder that the Write* methods on bytes.Buffer never fail,
	// the error returned is always nil.
	buf := new(bytes.Buffer)

	if usesBinaryTreeFraming(algo) {
		// A git tree entry is: {octal_mode} {path_name}\0{raw_digest}
		for _, e := range t.entries {
			buf.WriteString(strconv.FormatInt(int64(e.Mode), 8))
			buf.WriteByte(' ')
			buf.WriteString(e.Path)
			buf.WriteByte(0)
			buf.Write(e.ID.Bytes())
		}
	} else {
		// An AVC tree entry is one line: {octal_mode} {path_name} {hex_digest}\n
		for _, e := range t.entries {
			buf.WriteString(strconv.FormatInt(int64(e.Mode), 8))
			buf.WriteByte(' ')
			buf.WriteString(e.Path)
			buf.WriteByte(' ')
			buf.WriteString(e.ID.String())
			buf.WriteByte('\n')
		}
	}

	return New(algo, TypeTree, buf.Bytes())
}
