// Package avc ties the Object Store, Staging Index, Snapshot Engine,
// Ref Store, and Dual-Store Bridge into a single repository handle, and
// exposes the porcelain and bridge verbs described in the command
// surface.
package avc

import "errors"

// Sentinel errors for conditions the porcelain and bridge surfaces can
// hit that aren't already covered by ginternals/store/bridge's own
// sentinels.
var (
	// ErrRepoMissing is returned when an operation requires an existing
	// repository and .avc could not be found.
	ErrRepoMissing = errors.New("avc: repository not found")
	// ErrRepoExists is returned by Init when .avc already exists.
	ErrRepoExists = errors.New("avc: repository already exists")
	// ErrNothingToCommit is returned by Commit when the staging index
	// is empty.
	ErrNothingToCommit = errors.New("avc: nothing to commit")
	// ErrGitMirrorMissing is returned by a bridge verb run before
	// GitInit has ever been called.
	ErrGitMirrorMissing = errors.New("avc: git mirror not initialized, run git-init first")
	// ErrConfirmationRequired is returned by Reset in Clean mode when
	// the caller did not opt in to a destructive wipe.
	ErrConfirmationRequired = errors.New("avc: clean reset requires explicit confirmation")
)
