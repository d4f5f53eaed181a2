package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"scenefuse/internal/config"
	serr "scenefuse/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a temporary YAML config file
func createTestYAML(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	require.NoError(t, err)
	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	err = tmpFile.Close()
	require.NoError(t, err)
	return tmpFile.Name()
}

const (
	validYAML = `
definition_name: "IMC"
include:
  - "*.tif"
  - "*.ome.tiff"
output: "/tmp/afi"
settings:
  duplicates: last
  dry_run: false
  backup: true
  collision: skip
  imc_channel_names: true
watch_mode:
  interval: 10
`
	invalidSyntaxYAML = `
include:
  - "*.tif
settings: # Missing closing quote
  dry_run: yes
`
	invalidDuplicatesYAML = `
settings:
  duplicates: "first"
`
	invalidGlobYAML = `
include:
  - "*.[tif"
`
)

func TestLoadConfigFile(t *testing.T) {
	t.Run("load valid config", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(createTestYAML(t, validYAML))
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "IMC", cfg.DefinitionName)
		assert.Equal(t, []string{"*.tif", "*.ome.tiff"}, cfg.Include)
		assert.Equal(t, "/tmp/afi", cfg.Output)
		assert.Equal(t, config.DuplicatesLast, cfg.Settings.Duplicates)
		assert.False(t, cfg.Settings.DryRun)
		assert.True(t, cfg.Settings.Backup)
		assert.True(t, cfg.Settings.CreateDirs, "unset keys keep their defaults")
		assert.Equal(t, "skip", cfg.Settings.Collision)
		assert.True(t, cfg.Settings.IMCChannelNames)
		assert.Equal(t, 10, cfg.WatchMode.Interval)
	})

	t.Run("load non-existent file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "does_not_exist.yaml")
		cfg, err := config.LoadConfigFile(path)
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.True(t, serr.IsConfigNotFound(err))
		assert.Equal(t, serr.ConfigNotFound, serr.KindOf(err))
		assert.Contains(t, err.Error(), path)
	})

	t.Run("empty file keeps defaults", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(createTestYAML(t, ""))
		require.NoError(t, err)

		assert.Equal(t, config.New(), cfg)
		assert.Equal(t, config.DuplicatesReject, cfg.Settings.Duplicates)
		assert.True(t, cfg.Settings.DryRun)
		assert.Equal(t, []string{"*.{tif,tiff,TIF,TIFF}"}, cfg.Include)
	})

	t.Run("load file with invalid YAML syntax", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestYAML(t, invalidSyntaxYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error parsing config file")
	})

	t.Run("load file with invalid duplicates policy", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestYAML(t, invalidDuplicatesYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "invalid duplicates setting")
		assert.True(t, serr.IsInvalidConfig(err))
	})

	t.Run("load file with invalid include glob", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestYAML(t, invalidGlobYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad glob")
	})

	t.Run("missing definition file", func(t *testing.T) {
		content := "definition: " + filepath.Join(t.TempDir(), "nope.xml") + "\n"
		_, err := config.LoadConfigFile(createTestYAML(t, content))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error accessing definition file")
	})
}

func TestValidate(t *testing.T) {
	var nilCfg *config.Config
	assert.Error(t, nilCfg.Validate())

	cfg := config.New()
	require.NoError(t, cfg.Validate())

	cfg.Settings.Collision = "ask"
	assert.Error(t, cfg.Validate())

	cfg = config.New()
	cfg.WatchMode.Interval = 0
	assert.Error(t, cfg.Validate())

	cfg = config.New()
	cfg.Include = nil
	assert.Error(t, cfg.Validate())

	cfg = config.New()
	cfg.Include = []string{""}
	assert.Error(t, cfg.Validate())
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := config.NewTestConfig()
	cfg.Output = "/out"
	cfg.Settings.Duplicates = config.DuplicatesLast

	require.NoError(t, config.SaveConfig(cfg, path))

	loaded, err := config.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
