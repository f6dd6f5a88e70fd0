package ginternals

import (
	"path"
	"strings"
)

// Ref paths are kept in unix format since that's how they're stored on
// disk; the store is responsible for converting to the host's
// separator when needed.
const (
	refsDirName      = "refs"
	refsTagsRelPath  = refsDirName + "/tags"
	refsHeadsRelPath = refsDirName + "/heads"
)

// LocalTagFullName returns the full name of a tag, e.g. for "v1" returns
// "refs/tags/v1".
func LocalTagFullName(shortName string) string {
	return path.Join(refsTagsRelPath, shortName)
}

// LocalTagShortName returns the short name of a tag, e.g. for
// "refs/tags/v1" returns "v1".
func LocalTagShortName(fullName string) string {
	return strings.TrimPrefix(fullName, refsTagsRelPath+"/")
}

// LocalBranchFullName returns the full name of a branch, e.g. for "main"
// returns "refs/heads/main".
func LocalBranchFullName(shortName string) string {
	return path.Join(refsHeadsRelPath, shortName)
}

// LocalBranchShortName returns the short name of a branch, e.g. for
// "refs/heads/main" returns "main".
func LocalBranchShortName(fullName string) string {
	return strings.TrimPrefix(fullName, refsHeadsRelPath+"/")
}

// RefFullName returns the UNIX path of a ref given its short name.
func RefFullName(shortName string) string {
	return path.Join("refs", shortName)
}
