package avc

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/assembler-0/avc/ginternals/digest"
	"github.com/assembler-0/avc/ginternals/object"
	"github.com/assembler-0/avc/index"
	"github.com/assembler-0/avc/scanner"
	"github.com/assembler-0/avc/snapshot"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// AddOptions controls how Add stages files.
type AddOptions struct {
	// Fast writes newly stored blobs at compression level 0 (spec's "add
	// --fast"): uncompressed under zlib, zstd's fastest preset under zstd.
	Fast bool
	// KeepEmptyDirs stages a placeholder entry for otherwise-empty
	// directories (spec's "add --empty-dirs").
	KeepEmptyDirs bool
}

// Add discovers files under paths (relative to the working tree; a nil
// or empty slice scans the whole tree), hashes and stores each as a
// blob, and upserts the staging index. Hashing/storage for the
// discovered files is fanned out across workers, per spec's staging
// concurrency model; the final index upsert is single-threaded.
// It returns the staged paths plus any warnings the scanner raised
// (e.g. paths it refused to normalize) so the caller can put them on
// the single user-visible diagnostics channel spec.md:273 calls for.
func (r *Repository) Add(paths []string, opts AddOptions) ([]string, []scanner.Warning, error) {
	files, warnings, err := discover(r, paths, opts)
	if err != nil {
		return nil, nil, err
	}

	objStore := r.AVCObjects
	if opts.Fast {
		objStore = objStore.Fast()
	}

	type result struct {
		path    string
		oid     digest.Oid
		mode    uint32
		changed bool
	}
	results := make([]result, len(files))

	g := new(errgroup.Group)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			var oid digest.Oid
			var err error
			if f.AbsPath == "" {
				// empty-dir placeholder: an empty blob, nothing to read.
				oid, err = objStore.StoreObject(object.New(objStore.Algo(), object.TypeBlob, nil))
			} else {
				oid, err = objStore.StoreBlobFromFile(f.AbsPath)
			}
			if err != nil {
				return xerrors.Errorf("could not stage %s: %w", f.RelPath, err)
			}
			results[i] = result{path: f.RelPath, oid: oid, mode: uint32(fileMode(f))}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	staged := make([]string, 0, len(results))
	for _, res := range results {
		if r.Index.Upsert(res.path, res.oid, res.mode) {
			staged = append(staged, res.path)
		}
	}
	if err := r.Index.Commit(); err != nil {
		return nil, nil, xerrors.Errorf("could not commit index: %w", err)
	}
	if err := r.Index.Load(); err != nil {
		return nil, nil, xerrors.Errorf("could not reload index: %w", err)
	}

	sort.Strings(staged)
	return staged, warnings, nil
}

func fileMode(f scanner.File) object.TreeObjectMode {
	if f.Mode&0o111 != 0 {
		return object.ModeExecutable
	}
	return object.ModeFile
}

func discover(r *Repository, paths []string, opts AddOptions) ([]scanner.File, []scanner.Warning, error) {
	scanOpts := scanner.Options{KeepEmptyDirs: opts.KeepEmptyDirs}
	if len(paths) == 0 {
		return scanner.Walk(r.fs, r.workTree, r.workTree, scanOpts)
	}

	var files []scanner.File
	var warnings []scanner.Warning
	seen := map[string]struct{}{}
	for _, p := range paths {
		start := p
		if !filepath.IsAbs(start) {
			start = filepath.Join(r.workTree, start)
		}
		found, warns, err := scanner.Walk(r.fs, r.workTree, start, scanOpts)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, warns...)
		for _, f := range found {
			if _, dup := seen[f.RelPath]; dup {
				continue
			}
			seen[f.RelPath] = struct{}{}
			files = append(files, f)
		}
	}
	return files, warnings, nil
}

// Commit builds a commit from the current staging index and advances
// HEAD. Returns ErrNothingToCommit if the index is empty.
func (r *Repository) Commit(message string) (*object.Commit, error) {
	if r.Index.Len() == 0 {
		return nil, ErrNothingToCommit
	}

	entries := r.Index.Entries()
	commit, err := snapshot.Commit(r.AVCObjects, r.AVCRefs, entries, r.Author(), &object.CommitOptions{Message: message})
	if err != nil {
		return nil, xerrors.Errorf("could not commit: %w", err)
	}

	r.Index.Clear()
	if err := r.Index.Commit(); err != nil {
		return nil, xerrors.Errorf("could not clear index after commit: %w", err)
	}
	if err := r.Index.Load(); err != nil {
		return nil, xerrors.Errorf("could not reload index: %w", err)
	}
	return commit, nil
}

// ChangeKind classifies one path's difference between two snapshots.
type ChangeKind int

const (
	Added ChangeKind = iota
	Modified
	Deleted
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// StatusEntry is one path's status relative to a comparison baseline.
type StatusEntry struct {
	Path string
	Kind ChangeKind
}

// StatusReport separates staged changes (index vs HEAD) from unstaged
// changes (working tree vs index), per spec's supplemented `status`.
type StatusReport struct {
	Staged   []StatusEntry
	Unstaged []StatusEntry
}

// Status compares HEAD's tree against the staging index, and the
// staging index against a fresh scan of the working tree.
func (r *Repository) Status() (*StatusReport, error) {
	report := &StatusReport{}

	headEntries, err := r.headEntries()
	if err != nil {
		return nil, err
	}
	report.Staged = diffEntries(headEntries, entriesMap(r.Index.Entries()))

	files, _, err := scanner.Walk(r.fs, r.workTree, r.workTree, scanner.Options{})
	if err != nil {
		return nil, err
	}
	working := make(map[string]index.Entry, len(files))
	for _, f := range files {
		oid, err := r.AVCObjects.HashFile(f.AbsPath)
		if err != nil {
			return nil, xerrors.Errorf("could not hash %s: %w", f.RelPath, err)
		}
		working[f.RelPath] = index.Entry{Path: f.RelPath, Digest: oid, Mode: uint32(fileMode(f))}
	}
	report.Unstaged = diffEntries(entriesMap(r.Index.Entries()), working)

	return report, nil
}

func (r *Repository) headEntries() (map[string]index.Entry, error) {
	head, err := r.AVCRefs.ResolveHead()
	if err != nil {
		return map[string]index.Entry{}, nil
	}
	o, err := r.AVCObjects.LoadObject(head.Target())
	if err != nil {
		return nil, xerrors.Errorf("could not load HEAD commit: %w", err)
	}
	commit, err := object.NewCommitFromObject(o)
	if err != nil {
		return nil, xerrors.Errorf("HEAD is not a commit: %w", err)
	}
	entries, err := snapshot.FlattenTree(r.AVCObjects, commit.TreeID())
	if err != nil {
		return nil, xerrors.Errorf("could not flatten HEAD tree: %w", err)
	}
	return entriesMap(entries), nil
}

func entriesMap(entries []index.Entry) map[string]index.Entry {
	m := make(map[string]index.Entry, len(entries))
	for _, e := range entries {
		m[e.Path] = e
	}
	return m
}

func diffEntries(base, target map[string]index.Entry) []StatusEntry {
	var out []StatusEntry
	for path, t := range target {
		b, existed := base[path]
		switch {
		case !existed:
			out = append(out, StatusEntry{Path: path, Kind: Added})
		case b.Digest.String() != t.Digest.String() || b.Mode != t.Mode:
			out = append(out, StatusEntry{Path: path, Kind: Modified})
		}
	}
	for path := range base {
		if _, stillPresent := target[path]; !stillPresent {
			out = append(out, StatusEntry{Path: path, Kind: Deleted})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Log walks the commit ancestry from HEAD, returning at most n commits
// (n <= 0 means unbounded).
func (r *Repository) Log(n int) ([]*object.Commit, error) {
	head, err := r.AVCRefs.ResolveHead()
	if err != nil {
		return nil, nil
	}

	var out []*object.Commit
	cur := head.Target()
	for {
		if n > 0 && len(out) >= n {
			break
		}
		o, err := r.AVCObjects.LoadObject(cur)
		if err != nil {
			return nil, xerrors.Errorf("could not load commit %s: %w", cur.String(), err)
		}
		commit, err := object.NewCommitFromObject(o)
		if err != nil {
			return nil, xerrors.Errorf("%s is not a commit: %w", cur.String(), err)
		}
		out = append(out, commit)

		parents := commit.ParentIDs()
		if len(parents) == 0 {
			break
		}
		cur = parents[0]
	}
	return out, nil
}

// RmOptions controls Rm's behavior.
type RmOptions struct {
	// Cached removes only the index entry, leaving the working copy.
	Cached bool
	// Recursive allows removing every entry under a directory prefix.
	Recursive bool
}

// Rm removes paths from the staging index and, unless Cached is set,
// from the working tree.
func (r *Repository) Rm(paths []string, opts RmOptions) error {
	toRemove := make([]string, 0, len(paths))
	for _, p := range paths {
		if opts.Recursive {
			prefix := p + "/"
			for _, e := range r.Index.Entries() {
				if e.Path == p || hasPrefix(e.Path, prefix) {
					toRemove = append(toRemove, e.Path)
				}
			}
			continue
		}
		if _, ok := r.Index.Get(p); ok {
			toRemove = append(toRemove, p)
		}
	}

	for _, p := range toRemove {
		r.Index.Remove(p)
		if !opts.Cached {
			abs := filepath.Join(r.workTree, filepath.FromSlash(p))
			if err := r.fs.Remove(abs); err != nil {
				return xerrors.Errorf("could not remove %s: %w", p, err)
			}
		}
	}

	if err := r.Index.Commit(); err != nil {
		return xerrors.Errorf("could not commit index: %w", err)
	}
	return r.Index.Load()
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// ResetMode selects how much of the repository Reset touches.
type ResetMode int

const (
	// ResetSoft rewrites only the staging index to match rev.
	ResetSoft ResetMode = iota
	// ResetHard additionally rewrites the working tree.
	ResetHard
	// ResetClean additionally wipes untracked working-tree paths first,
	// and requires Confirmed to be set since it can destroy un-staged
	// work.
	ResetClean
)

// ResetOptions controls Reset's behavior.
type ResetOptions struct {
	Mode ResetMode
	// Confirmed must be true to perform a ResetClean reset.
	Confirmed bool
}

// Reset moves HEAD's branch (or HEAD itself, if detached) to rev and
// rewrites the staging index and, depending on opts.Mode, the working
// tree.
func (r *Repository) Reset(ctx context.Context, rev string, opts ResetOptions) (digest.Oid, error) {
	mode := snapshot.Soft
	switch opts.Mode {
	case ResetHard:
		mode = snapshot.Hard
	case ResetClean:
		if !opts.Confirmed {
			return nil, ErrConfirmationRequired
		}
		mode = snapshot.Clean
	}
	return snapshot.Restore(ctx, r.fs, r.AVCObjects, r.AVCRefs, r.Index, r.workTree, rev, mode)
}
