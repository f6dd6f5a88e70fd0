// Package repopath contains the constants used to locate
// files inside an AVC repository's metadata directory.
package repopath

import "os"

// Metadata directory layout, rooted at .avc/.
const (
	DotDirName      = ".avc"
	ConfigPath      = "config"
	DescriptionPath = "description"
	HEADPath        = "HEAD"
	IndexPath       = "index"
	ObjectsPath     = "objects"
	ObjectsInfoPath = ObjectsPath + string(os.PathSeparator) + "info"
	RefsPath        = "refs"
	RefsTagsPath    = RefsPath + "/tags"
	RefsHeadsPath   = RefsPath + "/heads"
)

// GitMirrorDirName is the metadata directory of the bridged Git-compatible
// store, kept alongside .avc/ when a repository has been linked to Git.
const GitMirrorDirName = ".git"
