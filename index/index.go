// Package index implements the Staging Index: a transactional map of
// repo-relative path to (digest, mode), persisted as a line-oriented
// text file, one entry per line.
package index

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/assembler-0/avc/ginternals/digest"
	"github.com/assembler-0/avc/internal/atomicfile"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// ErrCorrupt is returned when an index file's line does not parse as
// "<digest> <path> <octal-mode>".
var ErrCorrupt = errors.New("index: corrupt entry")

// Entry is one staged path.
type Entry struct {
	Path   string
	Digest digest.Oid
	Mode   uint32
}

// Index is a transactional, in-memory view of the staging area backed
// by a single file on disk. Index mutation is single-writer within a
// process; Load/Commit form the transaction boundary.
type Index struct {
	fs   afero.Fs
	path string
	algo digest.Algo

	loaded  bool
	entries map[string]Entry
}

// New returns an Index backed by path (typically ".avc/index"),
// resolving digests with algo. Load must be called before the index is
// queried or mutated.
func New(fs afero.Fs, path string, algo digest.Algo) *Index {
	return &Index{fs: fs, path: path, algo: algo, entries: map[string]Entry{}}
}

// Load populates the in-memory map from disk. It is idempotent: once an
// Index has been loaded, subsequent calls are no-ops until Commit resets
// the loaded flag.
func (idx *Index) Load() error {
	if idx.loaded {
		return nil
	}

	f, err := idx.fs.Open(idx.path)
	if err != nil {
		if os.IsNotExist(err) {
			idx.loaded = true
			return nil
		}
		return xerrors.Errorf("could not open index %s: %w", idx.path, err)
	}
	defer f.Close()

	entries := map[string]Entry{}
	sc := bufio.NewScanner(f)
	for lineNum := 1; sc.Scan(); lineNum++ {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, err := parseLine(idx.algo, line)
		if err != nil {
			return xerrors.Errorf("index %s, line %d: %w", idx.path, lineNum, err)
		}
		entries[e.Path] = e
	}
	if err := sc.Err(); err != nil {
		return xerrors.Errorf("could not read index %s: %w", idx.path, err)
	}

	idx.entries = entries
	idx.loaded = true
	return nil
}

func parseLine(algo digest.Algo, line string) (Entry, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return Entry{}, xerrors.Errorf("expected 3 fields, got %d: %w", len(fields), ErrCorrupt)
	}
	oid, err := algo.NewOidFromHex(fields[0])
	if err != nil {
		return Entry{}, xerrors.Errorf("invalid digest %q: %w", fields[0], ErrCorrupt)
	}
	mode, err := strconv.ParseUint(fields[2], 8, 32)
	if err != nil {
		return Entry{}, xerrors.Errorf("invalid mode %q: %w", fields[2], ErrCorrupt)
	}
	return Entry{Path: fields[1], Digest: oid, Mode: uint32(mode)}, nil
}

// Upsert updates or inserts the entry for path, returning whether the
// (digest, mode) tuple changed from what was previously stored (used by
// callers to skip redundant work and report "unchanged" paths).
func (idx *Index) Upsert(path string, oid digest.Oid, mode uint32) (changed bool) {
	prev, existed := idx.entries[path]
	if existed && prev.Digest.String() == oid.String() && prev.Mode == mode {
		return false
	}
	idx.entries[path] = Entry{Path: path, Digest: oid, Mode: mode}
	return true
}

// Remove deletes the entry for path, if any.
func (idx *Index) Remove(path string) {
	delete(idx.entries, path)
}

// Get returns the entry stored for path, if any.
func (idx *Index) Get(path string) (Entry, bool) {
	e, ok := idx.entries[path]
	return e, ok
}

// Len returns the number of staged entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Entries returns every staged entry, sorted by path for deterministic
// iteration.
func (idx *Index) Entries() []Entry {
	out := make([]Entry, 0, len(idx.entries))
	for _, e := range idx.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Clear empties the in-memory index. The change is only visible on disk
// once Commit is called.
func (idx *Index) Clear() {
	idx.entries = map[string]Entry{}
}

// Reset replaces the in-memory index wholesale with entries, used by the
// restore path to repopulate the index from a target commit's tree.
func (idx *Index) Reset(entries []Entry) {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.Path] = e
	}
	idx.entries = m
}

// Commit writes the entire current state to a temp file and renames it
// over the index file atomically. On success the in-memory copy is
// dropped so the next mutator reloads from the freshly written file.
func (idx *Index) Commit() error {
	entries := idx.Entries()

	buf := new(bytes.Buffer)
	for _, e := range entries {
		buf.WriteString(e.Digest.String())
		buf.WriteByte(' ')
		buf.WriteString(e.Path)
		buf.WriteByte(' ')
		buf.WriteString(strconv.FormatUint(uint64(e.Mode), 8))
		buf.WriteByte('\n')
	}

	if err := atomicfile.Write(idx.fs, idx.path, buf.Bytes(), 0o644); err != nil {
		return xerrors.Errorf("could not commit index %s: %w", idx.path, err)
	}

	idx.loaded = false
	idx.entries = map[string]Entry{}
	return nil
}
