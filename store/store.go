// Package store implements the Object Store: a content-addressed,
// sharded directory of framed, compressed objects, shared by both the
// AVC side (BLAKE3, Zstandard) and the Git side (SHA-1, zlib) of the
// repository.
package store

import (
	"io"
	"os"
	"path/filepath"

	"github.com/assembler-0/avc/ginternals"
	"github.com/assembler-0/avc/ginternals/digest"
	"github.com/assembler-0/avc/ginternals/object"
	"github.com/assembler-0/avc/internal/atomicfile"
	"github.com/assembler-0/avc/internal/cache"
	"github.com/assembler-0/avc/internal/errutil"
	"github.com/assembler-0/avc/internal/syncutil"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// objectFileMode matches the teacher's convention of persisting objects
// read-only, since content-addressed objects are never edited in place.
const objectFileMode = 0o444

// cacheSize bounds the number of decoded objects kept hot in memory.
const cacheSize = 256

// Store persists and retrieves typed, immutable objects addressed by a
// digest.Algo. One Store handles exactly one object directory: a
// repository opens two (one for .avc/objects, one for .git/objects).
type Store struct {
	fs     afero.Fs
	dir    string
	algo   digest.Algo
	cache  *cache.LRU
	mu     *syncutil.NamedMutex
	format Format
	level  int
}

// Options configures a Store.
type Options struct {
	// Format is the compression format new objects are written with.
	// Existing objects are always read with auto-detection regardless
	// of this setting.
	Format Format
	// Level is the compression level passed to the codec. The zero
	// value selects the default level, 3; level 0 ("fast") is reached
	// only through Store.Fast.
	Level int
}

// New creates a Store rooted at dir (typically ".avc/objects" or
// ".git/objects"), addressed with algo.
func New(fs afero.Fs, dir string, algo digest.Algo, opts Options) *Store {
	mu := syncutil.NewNamedMutex(64)
	c, _ := cache.NewLRU(cacheSize) // cacheSize is a positive constant, NewLRU cannot fail here
	format := opts.Format
	if format == 0 {
		format = FormatZstd
	}
	level := opts.Level
	if level == 0 {
		level = 3
	}
	return &Store{
		fs:     fs,
		dir:    dir,
		algo:   algo,
		cache:  c,
		mu:     mu,
		format: format,
		level:  level,
	}
}

// Fast returns a copy of the Store that writes with compression level 0
// for the lifetime of the returned value: zlib objects are stored
// uncompressed, zstd objects use zstd's fastest preset. The
// persisted repository default (the `format` file) is untouched; this
// only affects objects written through the returned Store.
func (s *Store) Fast() *Store {
	clone := *s
	clone.level = 0
	return &clone
}

// Algo returns the digest algorithm this Store is addressed with.
func (s *Store) Algo() digest.Algo {
	return s.algo
}

// Dir returns the object directory this Store is rooted at.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) looseObjectPath(hexDigest string) string {
	return filepath.Join(s.dir, hexDigest[:2], hexDigest[2:])
}

// StoreObject persists o, returning its digest. The write is idempotent:
// if an object already exists at the computed path the write is skipped
// (content-addressing guarantees the existing bytes are identical).
func (s *Store) StoreObject(o *object.Object) (digest.Oid, error) {
	oid := o.ID()
	key := oid.Bytes()
	s.mu.Lock(key)
	defer s.mu.Unlock(key)

	return oid, s.storeUnsafe(o)
}

func (s *Store) storeUnsafe(o *object.Object) error {
	oid := o.ID()
	hex := oid.String()
	p := s.looseObjectPath(hex)

	if _, err := s.fs.Stat(p); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return xerrors.Errorf("could not check for existing object %s: %w", hex, err)
	}

	data, err := compress(o.Frame(), s.format, s.level)
	if err != nil {
		return xerrors.Errorf("could not compress object %s: %w", hex, err)
	}

	created, err := atomicfile.WriteIfAbsent(s.fs, p, data, objectFileMode)
	if err != nil {
		return xerrors.Errorf("could not persist object %s: %w", hex, err)
	}
	if created {
		s.cache.Add(oid.String(), o)
	}
	return nil
}

// StoreBlobFromFile reads path's contents and persists them as a blob.
func (s *Store) StoreBlobFromFile(path string) (digest.Oid, error) {
	content, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return s.algo.NullOid(), xerrors.Errorf("could not read %s: %w", path, err)
	}
	o := object.New(s.algo, object.TypeBlob, content)
	return s.StoreObject(o)
}

// HashFile returns the digest a blob built from path's contents would
// have, without persisting anything.
func (s *Store) HashFile(path string) (digest.Oid, error) {
	content, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return s.algo.NullOid(), xerrors.Errorf("could not read %s: %w", path, err)
	}
	return object.New(s.algo, object.TypeBlob, content).ID(), nil
}

// HasObject reports whether oid is present in the store.
func (s *Store) HasObject(oid digest.Oid) (bool, error) {
	if _, found := s.cache.Get(oid.String()); found {
		return true, nil
	}
	_, err := s.fs.Stat(s.looseObjectPath(oid.String()))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, xerrors.Errorf("could not check object %s: %w", oid.String(), err)
}

// LoadObject retrieves and parses the object stored at oid.
func (s *Store) LoadObject(oid digest.Oid) (o *object.Object, err error) {
	key := oid.Bytes()
	s.mu.RLock(key)
	defer s.mu.RUnlock(key)

	if cached, found := s.cache.Get(oid.String()); found {
		if cachedObj, ok := cached.(*object.Object); ok {
			return cachedObj, nil
		}
	}

	hex := oid.String()
	p := s.looseObjectPath(hex)
	f, err := s.fs.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, xerrors.Errorf("object %s: %w", hex, ginternals.ErrObjectNotFound)
		}
		return nil, xerrors.Errorf("could not open object %s: %w", hex, err)
	}
	defer errutil.Close(f, &err)

	o, err = s.parseLooseObject(hex, f)
	if err != nil {
		return nil, err
	}
	s.cache.Add(oid.String(), o)
	return o, nil
}

func (s *Store) parseLooseObject(hex string, r io.Reader) (*object.Object, error) {
	raw, err := decompress(r)
	if err != nil {
		return nil, xerrors.Errorf("object %s is corrupt: %w: %v", hex, ginternals.ErrObjectCorrupt, err)
	}

	o, err := object.NewFromFrame(s.algo, raw)
	if err != nil {
		return nil, xerrors.Errorf("object %s is corrupt: %w: %v", hex, ginternals.ErrObjectCorrupt, err)
	}
	if o.ID().String() != hex {
		return nil, xerrors.Errorf("object %s has mismatched digest %s: %w", hex, o.ID().String(), ginternals.ErrObjectCorrupt)
	}
	return o, nil
}
