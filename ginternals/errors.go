// Package ginternals contains the core data model shared by every
// component of the core: object framing, tree/commit parsing, and
// reference resolution. It mirrors git's internal object model (hence the
// name, inherited from the teacher this module grew out of) but is kept
// hash-agnostic so the same types serve both the AVC store (BLAKE3) and
// the Git store (SHA-1).
package ginternals

import "errors"

// Sentinel errors shared by every component of the core for three rows
// of the error-kind table: object-not-found, object-corrupt and
// format-unsupported. Other error kinds use sentinels declared elsewhere
// (such as ErrRefNotFound) or have none.
var (
	// ErrObjectNotFound is returned when a referenced digest has no
	// corresponding object file.
	ErrObjectNotFound = errors.New("object not found")
	// ErrObjectCorrupt is returned when a frame fails to parse or a
	// compressed object fails to decompress.
	ErrObjectCorrupt = errors.New("object is corrupt")
	// ErrFormatUnsupported is returned when a repository's on-disk
	// format version is not one this build knows how to read.
	ErrFormatUnsupported = errors.New("unsupported repository format")
)
