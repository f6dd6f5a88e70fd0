// Package object contains the framed object types shared by every object
// store: blobs, trees and commits. Objects are hash-agnostic: the same
// Blob/Tree/Commit types serve the BLAKE3-addressed AVC store and the
// SHA-1-addressed Git store, the digest algorithm is supplied by the
// caller through a digest.Algo.
package object

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/assembler-0/avc/ginternals/digest"
	"github.com/assembler-0/avc/internal/errutil"
	"github.com/assembler-0/avc/internal/readutil"
	"golang.org/x/xerrors"
)

var (
	// ErrObjectUnknown represents an error thrown when encountering an
	// unknown object type.
	ErrObjectUnknown = errors.New("invalid object type")

	// ErrObjectInvalid represents an error thrown when an object contains
	// unexpected data or when the wrong object is provided to a method.
	ErrObjectInvalid = errors.New("invalid object")

	// ErrTreeInvalid represents an error thrown when parsing an invalid
	// tree object.
	ErrTreeInvalid = errors.New("invalid tree")

	// ErrCommitInvalid represents an error thrown when parsing an invalid
	// commit object.
	ErrCommitInvalid = errors.New("invalid commit")
)

// Type represents the type of an object.
type Type int8

// List of all the possible object types.
const (
	TypeCommit Type = 1
	TypeTree   Type = 2
	TypeBlob   Type = 3
)

func (t Type) String() string {
	switch t {
	case TypeCommit:
		return "commit"
	case TypeTree:
		return "tree"
	case TypeBlob:
		return "blob"
	default:
		panic(fmt.Sprintf("unknown object type %d", t))
	}
}

// IsValid checks that the object type is one of the known types.
func (t Type) IsValid() bool {
	switch t {
	case TypeCommit, TypeTree, TypeBlob:
		return true
	default:
		return false
	}
}

// NewTypeFromString returns a Type from its string representation.
func NewTypeFromString(t string) (Type, error) {
	switch t {
	case "commit":
		return TypeCommit, nil
	case "tree":
		return TypeTree, nil
	case "blob":
		return TypeBlob, nil
	default:
		return 0, ErrObjectUnknown
	}
}

// Object represents a framed, content-addressed object. Every object
// store (AVC, Git) persists the same frame shape:
//
//	{type} {size}\0{content}
//
// hashed in full with the store's digest algorithm.
type Object struct {
	algo    digest.Algo
	id      digest.Oid
	typ     Type
	content []byte

	idProcessing sync.Once
}

// New creates a new object of the given type, addressed with algo.
func New(algo digest.Algo, typ Type, content []byte) *Object {
	o := &Object{
		algo:    algo,
		typ:     typ,
		content: content,
	}
	o.id, _ = o.build()
	return o
}

// ID returns the digest of the object.
func (o *Object) ID() digest.Oid {
	o.idProcessing.Do(func() {
		o.id, _ = o.build()
	})
	return o.id
}

// Size returns the size of the object's content.
func (o *Object) Size() int {
	return len(o.content)
}

// Type returns the Type for this object.
func (o *Object) Type() Type {
	return o.typ
}

// Bytes returns the object's contents (without the frame header).
func (o *Object) Bytes() []byte {
	return o.content
}

// Algo returns the digest algorithm this object is addressed with.
func (o *Object) Algo() digest.Algo {
	return o.algo
}

func (o *Object) build() (oid digest.Oid, data []byte) {
	// Quick reminder that the Write* methods on bytes.Buffer never fail,
	// the error returned is always nil.
	w := new(bytes.Buffer)
	w.WriteString(o.Type().String())
	w.WriteRune(' ')
	w.WriteString(strconv.Itoa(o.Size()))
	w.WriteByte(0)
	w.Write(o.Bytes())

	data = w.Bytes()
	oid = o.algo.Sum(data)
	return oid, data
}

// Compress returns the object's framed content compressed with zlib.
// zlib is the legacy, Git-compatible on-disk format (format v1); the
// AVC store defaults to zstd instead, see codec.go in the store package.
func (o *Object) Compress() (data []byte, err error) {
	_, fileContent := o.build()

	compressedContent := new(bytes.Buffer)
	zw := zlib.NewWriter(compressedContent)
	defer errutil.Close(zw, &err)

	if _, err = zw.Write(fileContent); err != nil {
		return nil, xerrors.Errorf("could not zlib the object: %w", err)
	}
	return compressedContent.Bytes(), nil
}

// Frame returns the exact bytes that get hashed and compressed: "type SP
// size NUL payload". This is what a Store persists (after compression)
// and what the Bridge rehashes under the other store's algorithm.
func (o *Object) Frame() []byte {
	_, data := o.build()
	return data
}

// NewFromFrame parses raw framed bytes (as produced by Frame, once
// decompressed) back into an Object addressed with algo. It is the
// inverse of Frame and is how a Store reconstructs an Object after
// reading and decompressing a loose object file.
func NewFromFrame(algo digest.Algo, raw []byte) (*Object, error) {
	typData := readutil.ReadTo(raw, ' ')
	if typData == nil {
		return nil, xerrors.Errorf("could not find object type: %w", ErrObjectInvalid)
	}
	typ, err := NewTypeFromString(string(typData))
	if err != nil {
		return nil, xerrors.Errorf("unsupported object type %q: %w", string(typData), err)
	}

	offset := len(typData) + 1 // +1 for the space
	sizeData := readutil.ReadTo(raw[offset:], 0)
	if sizeData == nil {
		return nil, xerrors.Errorf("could not find object size: %w", ErrObjectInvalid)
	}
	size, err := strconv.Atoi(string(sizeData))
	if err != nil {
		return nil, xerrors.Errorf("invalid object size %q: %w", string(sizeData), err)
	}
	offset += len(sizeData) + 1 // +1 for the NUL

	content := raw[offset:]
	if len(content) != size {
		return nil, xerrors.Errorf("object declares size %d but has %d: %w", size, len(content), ErrObjectInvalid)
	}

	return New(algo, typ, content), nil
}

// AsBlob parses the object as a Blob.
func (o *Object) AsBlob() *Blob {
	return NewBlob(o)
}

// AsTree parses the object as a Tree. It fails with ErrObjectInvalid if
// the object is not a tree.
//
// The entry format depends on the object's digest algorithm. A SHA-1
// (Git) tree is zero or more entries back to back, each:
//
//	{octal_mode} {path_name}\0{raw_digest}
//
// Any other tree is text, one entry per line:
//
//	{octal_mode} {path_name} {hex_digest}
func (o *Object) AsTree() (*Tree, error) {
	return NewTreeFromObject(o)
}

// AsCommit parses the object as a Commit.
//
// A commit has the following format:
//
//	tree {digest}
//	parent {digest}
//	author {name} <{email}> {seconds} {timezone}
//	committer {name} <{email}> {seconds} {timezone}
//	{blank line}
//	{message}
//
// A commit has 0, 1 (regular commit or fast-forward) or 2+ (merge)
// parent lines.
func (o *Object) AsCommit() (*Commit, error) {
	if o.typ != TypeCommit {
		return nil, xerrors.Errorf("type %s is not a commit", o.typ)
	}
	return commitFromContent(o, o.algo)
}

// usesBinaryTreeFraming reports whether algo's store encodes trees the
// git way (binary, NUL-delimited, raw digest bytes) rather than AVC's
// own way (text, space-delimited, hex digest). The two hash algorithms
// in use map 1:1 to the two stores, so the algorithm identifies the
// framing.
func usesBinaryTreeFraming(algo digest.Algo) bool {
	return algo.Name() == "sha1"
}

func treeFromContent(o *Object, algo digest.Algo) (*Tree, error) {
	if usesBinaryTreeFraming(algo) {
		return binaryTreeFromContent(o, algo)
	}
	return textTreeFromContent(o, algo)
}

// binaryTreeFromContent parses git's tree body: zero or more entries of
// "{octal_mode} {path_name}\0{raw_digest}" back to back.
func binaryTreeFromContent(o *Object, algo digest.Algo) (*Tree, error) {
	entries := []TreeEntry{}

	objData := o.Bytes()
	size := algo.Size()
	if len(objData) > 0 {
		offset := 0
		for i := 1; ; i++ {
			entry := TreeEntry{}
			data := readutil.ReadTo(objData[offset:], ' ')
			if len(data) == 0 {
				return nil, xerrors.Errorf("could not retrieve the mode of entry %d: %w", i, ErrTreeInvalid)
			}
			offset += len(data) + 1 // +1 for the space
			mode, err := strconv.ParseInt(string(data), 8, 32)
			if err != nil {
				return nil, xerrors.Errorf("could not parse mode of entry %d: %w", i, err)
			}
			entry.Mode = TreeObjectMode(mode)

			data = readutil.ReadTo(objData[offset:], 0)
			if len(data) == 0 {
				return nil, xerrors.Errorf("could not retrieve the path of entry %d: %w", i, ErrTreeInvalid)
			}
			offset += len(data) + 1 // +1 for the \0
			entry.Path = string(data)

			if offset+size > len(objData) {
				return nil, xerrors.Errorf("not enough space to retrieve the ID of entry %d: %w", i, ErrTreeInvalid)
			}
			entry.ID, err = algo.NewOidFromBytes(objData[offset : offset+size])
			if err != nil {
				return nil, xerrors.Errorf("invalid digest for entry %d: %w", i, ErrTreeInvalid)
			}
			offset += size

			entries = append(entries, entry)
			if len(objData) == offset {
				break
			}
		}
	}

	return &Tree{rawObject: o, entries: entries}, nil
}

// textTreeFromContent parses AVC's tree body: one line per entry,
// "octal-mode SP name SP child-digest LF".
func textTreeFromContent(o *Object, algo digest.Algo) (*Tree, error) {
	entries := []TreeEntry{}

	objData := o.Bytes()
	offset := 0
	for i := 1; offset < len(objData); i++ {
		line := readutil.ReadTo(objData[offset:], '\n')
		if line == nil {
			return nil, xerrors.Errorf("entry %d: unterminated line: %w", i, ErrTreeInvalid)
		}
		offset += len(line) + 1 // +1 for the \n

		fields := bytes.SplitN(line, []byte{' '}, 3)
		if len(fields) != 3 {
			return nil, xerrors.Errorf("entry %d: expected 3 fields, got %d: %w", i, len(fields), ErrTreeInvalid)
		}

		mode, err := strconv.ParseInt(string(fields[0]), 8, 32)
		if err != nil {
			return nil, xerrors.Errorf("entry %d: could not parse mode: %w", i, err)
		}

		oid, err := algo.NewOidFromHex(string(fields[2]))
		if err != nil {
			return nil, xerrors.Errorf("entry %d: invalid digest: %w", i, ErrTreeInvalid)
		}

		entries = append(entries, TreeEntry{
			Mode: TreeObjectMode(mode),
			Path: string(fields[1]),
			ID:   oid,
		})
	}

	return &Tree{rawObject: o, entries: entries}, nil
}

func commitFromContent(o *Object, algo digest.Algo) (*Commit, error) {
	ci := &Commit{rawObject: o}
	offset := 0
	objData := o.Bytes()
	for {
		line := readutil.ReadTo(objData[offset:], '\n')
		offset += len(line) + 1 // +1 to count the \n

		if len(line) == 0 && offset == 1 {
			return nil, xerrors.Errorf("could not find commit first line: %w", ErrCommitInvalid)
		}

		if len(line) == 0 {
			if offset < len(objData) {
				ci.message = string(objData[offset:])
			}
			break
		}

		kv := bytes.SplitN(line, []byte{' '}, 2)
		var err error
		switch string(kv[0]) {
		case "tree":
			ci.treeID, err = algo.NewOidFromHex(string(kv[1]))
			if err != nil {
				return nil, xerrors.Errorf("could not parse tree id %#v: %w", string(kv[1]), err)
			}
		case "parent":
			oid, err := algo.NewOidFromHex(string(kv[1]))
			if err != nil {
				return nil, xerrors.Errorf("could not parse parent id %#v: %w", string(kv[1]), err)
			}
			ci.parentIDs = append(ci.parentIDs, oid)
		case "author":
			ci.author, err = NewSignatureFromBytes(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("could not parse author signature [%s]: %w", string(kv[1]), err)
			}
		case "committer":
			ci.committer, err = NewSignatureFromBytes(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("could not parse committer signature [%s]: %w", string(kv[1]), err)
			}
		}
	}

	if ci.author.IsZero() {
		return nil, xerrors.Errorf("commit has no author: %w", ErrCommitInvalid)
	}
	if ci.treeID == nil || ci.treeID.IsZero() {
		return nil, xerrors.Errorf("commit has no tree: %w", ErrCommitInvalid)
	}

	return ci, nil
}
