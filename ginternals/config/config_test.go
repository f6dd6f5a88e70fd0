package config_test

import (
	"path/filepath"
	"testing"

	"github.com/assembler-0/avc/ginternals/config"
	"github.com/assembler-0/avc/internal/env"
	"github.com/assembler-0/avc/internal/testhelper"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigSkipEnv(t *testing.T) {
	t.Parallel()

	t.Run("explicit repo dir", func(t *testing.T) {
		t.Parallel()

		dir, cleanup := testhelper.TempDir(t)
		t.Cleanup(cleanup)

		repoDir := filepath.Join(dir, ".avc")
		cfg, err := config.LoadConfigSkipEnv(config.LoadConfigOptions{
			FS:                afero.NewMemMapFs(),
			WorkingDirectory:  dir,
			RepoDirPath:       repoDir,
			SkipRepoDirLookup: true,
		})
		require.NoError(t, err)
		assert.Equal(t, repoDir, cfg.RepoDirPath)
		assert.Equal(t, filepath.Join(repoDir, "config"), cfg.LocalConfig)
		assert.Equal(t, filepath.Join(repoDir, "objects"), cfg.ObjectDirPath)
		assert.Equal(t, dir, cfg.WorkTreePath)
	})

	t.Run("bare repo has no default work tree", func(t *testing.T) {
		t.Parallel()

		dir, cleanup := testhelper.TempDir(t)
		t.Cleanup(cleanup)

		cfg, err := config.LoadConfigSkipEnv(config.LoadConfigOptions{
			FS:                afero.NewMemMapFs(),
			WorkingDirectory:  dir,
			RepoDirPath:       dir,
			IsBare:            true,
			SkipRepoDirLookup: true,
		})
		require.NoError(t, err)
		assert.Empty(t, cfg.WorkTreePath)
	})

	t.Run("work tree without repo dir fails", func(t *testing.T) {
		t.Parallel()

		dir, cleanup := testhelper.TempDir(t)
		t.Cleanup(cleanup)

		_, err := config.LoadConfigSkipEnv(config.LoadConfigOptions{
			FS:               afero.NewMemMapFs(),
			WorkingDirectory: dir,
			WorkTreePath:     dir,
		})
		assert.ErrorIs(t, err, config.ErrNoWorkTreeAlone)
	})
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Parallel()

	dir, cleanup := testhelper.TempDir(t)
	t.Cleanup(cleanup)

	repoDir := filepath.Join(dir, "custom.avc")
	e := env.NewFromKVList([]string{"AVC_DIR=" + repoDir})

	cfg, err := config.LoadConfig(e, config.LoadConfigOptions{
		FS:               afero.NewMemMapFs(),
		WorkingDirectory: dir,
	})
	require.NoError(t, err)
	assert.Equal(t, repoDir, cfg.RepoDirPath)
}
