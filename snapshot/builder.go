// Package snapshot turns the staging index into a tree of objects and
// back again: building the hierarchical tree+commit for a commit
// operation, and flattening a commit's tree for a restore operation.
package snapshot

import (
	"errors"
	"sort"
	"strings"

	"github.com/assembler-0/avc/ginternals/digest"
	"github.com/assembler-0/avc/ginternals/object"
	"github.com/assembler-0/avc/index"
	"github.com/assembler-0/avc/store"
	"golang.org/x/xerrors"
)

// ErrDuplicateEntry is returned when two index entries would collide
// inside the same directory once built into a tree.
var ErrDuplicateEntry = errors.New("snapshot: duplicate entry in directory")

// dirNode is an in-progress directory while the tree is being built: a
// mix of files (leaves) and nested directories, keyed by their
// immediate path segment.
type dirNode struct {
	files map[string]index.Entry
	dirs  map[string]*dirNode
}

func newDirNode() *dirNode {
	return &dirNode{files: map[string]index.Entry{}, dirs: map[string]*dirNode{}}
}

// BuildTree builds the hierarchical tree described by entries (in any
// order; each directory's children are sorted by name) and persists
// every interior and leaf tree object it creates into s, bottom-up.
// Leaf blobs are assumed to already be present in s; BuildTree only
// creates tree objects. It returns the root tree's digest.
//
// An empty entries slice produces the digest of the empty tree.
func BuildTree(s *store.Store, entries []index.Entry) (digest.Oid, error) {
	root := newDirNode()
	for _, e := range entries {
		if err := insert(root, strings.Split(e.Path, "/"), e); err != nil {
			return s.Algo().NullOid(), err
		}
	}
	return persist(s, root)
}

func insert(node *dirNode, segments []string, e index.Entry) error {
	name := segments[0]
	if len(segments) == 1 {
		if _, exists := node.dirs[name]; exists {
			return xerrors.Errorf("%q: %w", e.Path, ErrDuplicateEntry)
		}
		if _, exists := node.files[name]; exists {
			return xerrors.Errorf("%q: %w", e.Path, ErrDuplicateEntry)
		}
		node.files[name] = e
		return nil
	}

	if _, isFile := node.files[name]; isFile {
		return xerrors.Errorf("%q: %w", e.Path, ErrDuplicateEntry)
	}
	child, ok := node.dirs[name]
	if !ok {
		child = newDirNode()
		node.dirs[name] = child
	}
	return insert(child, segments[1:], e)
}

// persist recurses bottom-up: children (files and subdirectories) are
// resolved to concrete digests before the parent tree object is built,
// so every tree's body only ever references already-known digests.
func persist(s *store.Store, node *dirNode) (digest.Oid, error) {
	type named struct {
		name string
		mode object.TreeObjectMode
		id   digest.Oid
	}
	all := make([]named, 0, len(node.files)+len(node.dirs))

	for name, e := range node.files {
		all = append(all, named{name: name, mode: object.TreeObjectMode(e.Mode), id: e.Digest})
	}
	for name, child := range node.dirs {
		childID, err := persist(s, child)
		if err != nil {
			return s.Algo().NullOid(), err
		}
		all = append(all, named{name: name, mode: object.ModeDirectory, id: childID})
	}

	sort.Slice(all, func(i, j int) bool { return all[i].name < all[j].name })

	entries := make([]object.TreeEntry, len(all))
	for i, n := range all {
		entries[i] = object.TreeEntry{Path: n.name, Mode: n.mode, ID: n.id}
	}

	tree := object.NewTree(s.Algo(), entries)
	oid, err := s.StoreObject(tree.ToObject())
	if err != nil {
		return s.Algo().NullOid(), xerrors.Errorf("could not store tree: %w", err)
	}
	return oid, nil
}

// FlattenTree performs the inverse of BuildTree: a depth-first walk of
// the tree rooted at rootID, accumulating (path, digest, mode) tuples
// for every blob reachable from it. Directory entries are walked, not
// recorded as entries themselves.
func FlattenTree(s *store.Store, rootID digest.Oid) ([]index.Entry, error) {
	var out []index.Entry
	if err := flatten(s, rootID, "", &out); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func flatten(s *store.Store, treeID digest.Oid, prefix string, out *[]index.Entry) error {
	o, err := s.LoadObject(treeID)
	if err != nil {
		return xerrors.Errorf("could not load tree %s: %w", treeID.String(), err)
	}
	tree, err := object.NewTreeFromObject(o)
	if err != nil {
		return xerrors.Errorf("tree %s: %w", treeID.String(), err)
	}

	for _, e := range tree.Entries() {
		path := e.Path
		if prefix != "" {
			path = prefix + "/" + e.Path
		}
		if e.Mode == object.ModeDirectory {
			if err := flatten(s, e.ID, path, out); err != nil {
				return err
			}
			continue
		}
		*out = append(*out, index.Entry{Path: path, Digest: e.ID, Mode: uint32(e.Mode)})
	}
	return nil
}
