package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

// loadOptions is treated as a const: never mutate it from a method, even
// for testing.
var loadOptions = ini.LoadOptions{ //nolint:gochecknoglobals
	SkipUnrecognizableLines: true,
}

func defaultConfig() (*ini.File, error) {
	cfg := ini.Empty(loadOptions)

	core := cfg.Section("core")
	coreCfg := map[string]string{
		"repositoryformatversion": "0",
		"filemode":                "true",
	}
	for k, v := range coreCfg {
		if _, err := core.NewKey(k, v); err != nil {
			return nil, fmt.Errorf("could not set core.%s: %w", k, err)
		}
	}

	return cfg, nil
}

// FileAggregate wraps the parsed local config file.
type FileAggregate struct {
	cfg   *Config
	local *ini.File
}

// Save persists the changes made to the config file.
func (f *FileAggregate) Save() error {
	buf := new(bytes.Buffer)
	if _, err := f.local.WriteTo(buf); err != nil {
		return fmt.Errorf("could not serialize config: %w", err)
	}
	return afero.WriteFile(f.cfg.FS, f.cfg.LocalConfig, buf.Bytes(), 0o644)
}

// RepoFormatVersion returns the on-disk format version of the repo.
func (f *FileAggregate) RepoFormatVersion() (version int, ok bool) {
	v, err := f.local.Section("core").Key("repositoryformatversion").Int()
	if err != nil {
		return 0, false
	}
	return v, true
}

// UpdateRepoFormatVersion updates the version of the on-disk format.
func (f *FileAggregate) UpdateRepoFormatVersion(ver string) {
	f.local.Section("core").Key("repositoryformatversion").SetValue(ver)
}

// DefaultBranch returns the branch name to use when creating a new
// repository, if the user configured one.
func (f *FileAggregate) DefaultBranch() (name string, ok bool) {
	v := f.local.Section("init").Key("defaultBranch").String()
	return v, v != ""
}

// WorkTree returns the configured path of the work tree, if any.
func (f *FileAggregate) WorkTree() (workTree string, ok bool) {
	v := f.local.Section("core").Key("worktree").String()
	return v, v != ""
}

// IsBare returns whether the repository is configured as bare.
func (f *FileAggregate) IsBare() (isBare, ok bool) {
	v, err := f.local.Section("core").Key("bare").Bool()
	if err != nil {
		return false, false
	}
	return v, true
}

// UpdateIsBare updates the core.bare option.
func (f *FileAggregate) UpdateIsBare(isBare bool) {
	f.local.Section("core").Key("bare").SetValue(strconv.FormatBool(isBare))
}

// GitMirrorPath returns the path of the linked Git mirror directory, if
// this repository has been bridged to one.
func (f *FileAggregate) GitMirrorPath() (path string, ok bool) {
	v := f.local.Section("bridge").Key("gitdir").String()
	return v, v != ""
}

// UpdateGitMirrorPath sets the path of the linked Git mirror directory.
func (f *FileAggregate) UpdateGitMirrorPath(path string) {
	f.local.Section("bridge").Key("gitdir").SetValue(path)
}

// NewFileAggregate loads the local config file for cfg, or generates a
// default in-memory one if the file doesn't exist yet.
func NewFileAggregate(cfg *Config) (confFile *FileAggregate, err error) {
	confFile = &FileAggregate{cfg: cfg}

	_, sErr := cfg.FS.Stat(cfg.LocalConfig)
	switch {
	case sErr == nil:
		f, fErr := cfg.FS.Open(cfg.LocalConfig)
		if fErr != nil {
			return nil, fmt.Errorf("could not open file %s: %w", cfg.LocalConfig, fErr)
		}
		defer f.Close() //nolint:errcheck // read-only handle

		confFile.local, err = ini.LoadSources(loadOptions, f)
		if err != nil {
			return nil, fmt.Errorf("could not load config file: %w", err)
		}
	case errors.Is(sErr, os.ErrNotExist):
		confFile.local, err = defaultConfig()
		if err != nil {
			return nil, fmt.Errorf("could not create default config: %w", err)
		}
	default:
		return nil, fmt.Errorf("could not check file %s: %w", cfg.LocalConfig, sErr)
	}

	return confFile, nil
}
