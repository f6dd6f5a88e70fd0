// Package config contains the structs used to locate and interact with
// a repository's configuration, mirroring the env-var driven discovery
// rules of git (GIT_DIR, GIT_WORK_TREE, ...) under their AVC_ equivalent.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/assembler-0/avc/internal/env"
	"github.com/assembler-0/avc/internal/pathutil"
	"github.com/assembler-0/avc/internal/repopath"
	"github.com/spf13/afero"
)

// ErrNoWorkTreeAlone is returned when a work tree path is given without
// a repository dir.
var ErrNoWorkTreeAlone = errors.New("cannot specify a work tree without also specifying a repo dir")

// Config represents the configuration of a repository, gathered from
// its config file and from environment variables.
// https://git-scm.com/book/en/v2/Git-Internals-Environment-Variables
type Config struct {
	// FS is the filesystem implementation used to look for files and
	// directories. Defaults to the real filesystem.
	FS afero.Fs

	fromFile *FileAggregate

	// RepoDirPath is the path to the .avc directory.
	// Maps to $AVC_DIR if set.
	RepoDirPath string
	// WorkTreePath is the path to the working tree.
	// Maps to $AVC_WORK_TREE.
	WorkTreePath string
	// ObjectDirPath is the path to the .avc/objects directory.
	// Maps to $AVC_OBJECT_DIRECTORY.
	ObjectDirPath string
	// LocalConfig is the path to the local config file.
	// Defaults to $(RepoDirPath)/config.
	LocalConfig string
}

// LoadConfigOptions holds the params used to set the default values of
// a Config.
type LoadConfigOptions struct {
	// FS is the filesystem implementation to use. Defaults to the real
	// filesystem.
	FS afero.Fs
	// WorkingDirectory is the current working directory. Defaults to
	// the process's working directory.
	WorkingDirectory string
	// WorkTreePath overrides $AVC_WORK_TREE.
	WorkTreePath string
	// RepoDirPath overrides $AVC_DIR.
	RepoDirPath string
	// IsBare marks the repo as having no working tree.
	IsBare bool
	// SkipRepoDirLookup disables walking up the tree looking for .avc.
	// Should only be set to true when initializing a new repository.
	SkipRepoDirLookup bool
}

// LoadConfig returns a new Config built from the environment and opts.
func LoadConfig(e *env.Env, p LoadConfigOptions) (*Config, error) {
	cfg := &Config{
		RepoDirPath:   e.Get("AVC_DIR"),
		WorkTreePath:  e.Get("AVC_WORK_TREE"),
		ObjectDirPath: e.Get("AVC_OBJECT_DIRECTORY"),
		LocalConfig:   e.Get("AVC_CONFIG"),
	}
	if err := setConfig(cfg, p); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigSkipEnv returns a new Config that ignores the environment.
func LoadConfigSkipEnv(p LoadConfigOptions) (*Config, error) {
	return LoadConfig(env.NewFromKVList(nil), p)
}

func setConfig(p *Config, opts LoadConfigOptions) (err error) {
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	p.FS = opts.FS

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("could not get the current directory: %w", err)
	}
	if opts.WorkingDirectory == "" {
		opts.WorkingDirectory = wd
	}
	if !filepath.IsAbs(opts.WorkingDirectory) {
		opts.WorkingDirectory = filepath.Join(wd, opts.WorkingDirectory)
	}

	if opts.RepoDirPath == "" && p.RepoDirPath == "" && (opts.WorkTreePath != "" || p.WorkTreePath != "") {
		return ErrNoWorkTreeAlone
	}

	if opts.RepoDirPath != "" {
		p.RepoDirPath = opts.RepoDirPath
	}
	guessedWorkingTree := opts.WorkingDirectory
	switch p.RepoDirPath {
	default:
		if !filepath.IsAbs(p.RepoDirPath) {
			p.RepoDirPath = filepath.Join(opts.WorkingDirectory, p.RepoDirPath)
		}
	case "":
		if !opts.SkipRepoDirLookup {
			guessedWorkingTree, err = pathutil.WorkingTreeFromPath(opts.WorkingDirectory)
			if err != nil {
				return fmt.Errorf("could not find working tree: %w", err)
			}
		}
		p.RepoDirPath = filepath.Join(guessedWorkingTree, repopath.DotDirName)
	}

	if p.LocalConfig == "" {
		p.LocalConfig = filepath.Join(p.RepoDirPath, repopath.ConfigPath)
	}
	if !filepath.IsAbs(p.LocalConfig) {
		p.LocalConfig = filepath.Join(opts.WorkingDirectory, p.LocalConfig)
	}

	if p.ObjectDirPath == "" {
		p.ObjectDirPath = filepath.Join(p.RepoDirPath, repopath.ObjectsPath)
	}
	if !filepath.IsAbs(p.ObjectDirPath) {
		p.ObjectDirPath = filepath.Join(opts.WorkingDirectory, p.ObjectDirPath)
	}

	p.fromFile, err = NewFileAggregate(p)
	if err != nil {
		return fmt.Errorf("could not load config file: %w", err)
	}

	if path, ok := p.fromFile.WorkTree(); ok {
		p.WorkTreePath = path
	}
	if opts.WorkTreePath != "" {
		p.WorkTreePath = opts.WorkTreePath
	}
	if p.WorkTreePath == "" && !opts.IsBare {
		p.WorkTreePath = guessedWorkingTree
	}
	if p.WorkTreePath != "" && !filepath.IsAbs(p.WorkTreePath) {
		p.WorkTreePath = filepath.Join(opts.WorkingDirectory, p.WorkTreePath)
	}

	return nil
}

// Values returns the parsed contents of the local config file.
func (c *Config) Values() *FileAggregate {
	return c.fromFile
}
