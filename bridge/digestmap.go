// Package bridge implements the Dual-Store Bridge (AGCL): translating
// the object graph between AVC's native form and a Git-compatible
// mirror, in either direction, memoized by a persistent digest map.
package bridge

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/assembler-0/avc/internal/atomicfile"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// ErrMapCorrupt is returned when a digest map line does not parse as
// "<avc-digest> <git-digest>".
var ErrMapCorrupt = errors.New("bridge: corrupt digest map entry")

// DigestMap is the persistent AVC-digest -> Git-digest table the Bridge
// consults before translating any object, so repeated translation of an
// already-mapped (sub)tree is a single lookup instead of a re-walk.
type DigestMap struct {
	fs   afero.Fs
	path string

	mu       sync.Mutex
	loaded   bool
	forward  map[string]string // avc hex -> git hex
	backward map[string]string // git hex -> avc hex
}

// NewDigestMap returns a DigestMap backed by path. Load must be called
// before the map is queried.
func NewDigestMap(fs afero.Fs, path string) *DigestMap {
	return &DigestMap{fs: fs, path: path, forward: map[string]string{}, backward: map[string]string{}}
}

// Load populates the in-memory table from disk. Idempotent.
func (m *DigestMap) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded {
		return nil
	}

	f, err := m.fs.Open(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			m.loaded = true
			return nil
		}
		return xerrors.Errorf("could not open digest map %s: %w", m.path, err)
	}
	defer f.Close()

	forward := map[string]string{}
	backward := map[string]string{}
	sc := bufio.NewScanner(f)
	for lineNum := 1; sc.Scan(); lineNum++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return xerrors.Errorf("digest map %s, line %d: expected 2 fields, got %d: %w", m.path, lineNum, len(fields), ErrMapCorrupt)
		}
		forward[fields[0]] = fields[1]
		backward[fields[1]] = fields[0]
	}
	if err := sc.Err(); err != nil {
		return xerrors.Errorf("could not read digest map %s: %w", m.path, err)
	}

	m.forward = forward
	m.backward = backward
	m.loaded = true
	return nil
}

// LookupByAVC returns the Git digest mapped to an AVC digest, if any.
func (m *DigestMap) LookupByAVC(avcHex string) (gitHex string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gitHex, ok = m.forward[avcHex]
	return gitHex, ok
}

// LookupByGit returns the AVC digest mapped to a Git digest, if any.
func (m *DigestMap) LookupByGit(gitHex string) (avcHex string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	avcHex, ok = m.backward[gitHex]
	return avcHex, ok
}

// Record adds or overwrites the (avcHex, gitHex) pair in the in-memory
// table. The change is only durable once Commit is called.
func (m *DigestMap) Record(avcHex, gitHex string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forward[avcHex] = gitHex
	m.backward[gitHex] = avcHex
}

// Commit rewrites the whole map file from the in-memory table, sorted
// by AVC digest for a deterministic file across runs.
func (m *DigestMap) Commit() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.forward))
	for k := range m.forward {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := new(bytes.Buffer)
	for _, avcHex := range keys {
		buf.WriteString(avcHex)
		buf.WriteByte(' ')
		buf.WriteString(m.forward[avcHex])
		buf.WriteByte('\n')
	}

	if err := atomicfile.Write(m.fs, m.path, buf.Bytes(), 0o644); err != nil {
		return xerrors.Errorf("could not commit digest map %s: %w", m.path, err)
	}
	return nil
}
