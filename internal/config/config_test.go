package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"twinpane/internal/config"
	"twinpane/internal/errors"
	"twinpane/pkg/types"

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
	require.NoError(t, tmpFile.Close())
	return tmpFile.Name()
}

const (
	validYAML = `
panels:
  left: "/home/test"
  right: "/tmp"
  show_hidden: true
  sort_key: "size"
  sort_descending: true
operations:
  collision: "rename"
  recoverable_delete: true
  undo_limit: 5
programs:
  editor: "nano"
theme:
  name: "dark"
`
	invalidSyntaxYAML = `
panels:
  left: "/home/test
operations: [
`
	invalidCollisionYAML = `
operations:
  collision: "delete"
`
	invalidSortYAML = `
panels:
  sort_key: "color"
`
	invalidUndoYAML = `
operations:
  undo_limit: 0
`
)

func TestLoadConfigFile(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(createTestYAML(t, validYAML))
		require.NoError(t, err)

		assert.Equal(t, "/home/test", cfg.Panels.Left)
		assert.Equal(t, "/tmp", cfg.Panels.Right)
		assert.True(t, cfg.Panels.ShowHidden)
		assert.Equal(t, types.SortBySize, cfg.SortKey())
		assert.True(t, cfg.Panels.SortDescending)
		assert.Equal(t, config.CollisionRename, cfg.Operations.Collision)
		assert.True(t, cfg.Operations.RecoverableDelete)
		assert.Equal(t, 5, cfg.Operations.UndoLimit)
		assert.Equal(t, "nano", cfg.Editor())

		// Unset keys keep their defaults
		assert.True(t, cfg.Operations.ConfirmDelete)
		assert.Equal(t, 256*1024, cfg.BufferSize())

		// Theme name without colors selects the palette
		assert.Equal(t, "dark", cfg.Theme.Name)
		assert.Equal(t, config.GetTheme("dark")["primary"], cfg.Theme.Primary)
	})

	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, config.CollisionAsk, cfg.Operations.Collision)
		assert.False(t, cfg.Operations.RecoverableDelete, "delete is permanent by default")
		assert.Equal(t, 20, cfg.Operations.UndoLimit)
	})

	t.Run("invalid syntax", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestYAML(t, invalidSyntaxYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error parsing config file")
	})

	invalid := map[string]string{
		"invalid collision": invalidCollisionYAML,
		"invalid sort key":  invalidSortYAML,
		"invalid undo":      invalidUndoYAML,
	}
	for name, content := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := config.LoadConfigFile(createTestYAML(t, content))
			require.Error(t, err)
			assert.True(t, errors.IsInvalidConfig(err))
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := config.New()
	cfg.Panels.Left = "/srv"
	cfg.Panels.SortKey = "date"
	require.NoError(t, config.SaveConfig(cfg, path))

	loaded, err := config.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv", loaded.Panels.Left)
	assert.Equal(t, types.SortByDate, loaded.SortKey())
}

func TestValidate(t *testing.T) {
	var nilCfg *config.Config
	assert.Error(t, nilCfg.Validate())

	cfg := config.New()
	require.NoError(t, cfg.Validate())

	cfg.Operations.HoldingDir = "relative/dir"
	assert.Error(t, cfg.Validate())

	cfg = config.New()
	cfg.Log.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = config.New()
	cfg.Operations.BufferSizeKB = 1
	assert.Error(t, cfg.Validate())
}

func TestProgramsFallback(t *testing.T) {
	t.Setenv("EDITOR", "ed")
	t.Setenv("PAGER", "")

	cfg := config.New()
	assert.Equal(t, "ed", cfg.Editor())
	assert.Equal(t, "less", cfg.Viewer())

	cfg.Programs.Viewer = "bat"
	assert.Equal(t, "bat", cfg.Viewer())
}

func TestHoldingDir(t *testing.T) {
	cfg := config.New()
	assert.True(t, filepath.IsAbs(cfg.HoldingDir()) || cfg.HoldingDir() != "")

	cfg.Operations.HoldingDir = "/var/tmp/held"
	assert.Equal(t, "/var/tmp/held", cfg.HoldingDir())
}

func TestThemes(t *testing.T) {
	for _, name := range config.ListThemes() {
		theme := config.GetTheme(name)
		assert.NotEmpty(t, theme["primary"], name)
		assert.NotEmpty(t, theme["directory"], name)
	}

	assert.Equal(t, config.GetTheme("default"), config.GetTheme("missing"))

	cfg := config.New()
	cfg.ApplyTheme("commander")
	assert.Equal(t, "commander", cfg.Theme.Name)
	assert.Equal(t, config.GetTheme("commander")["selected"], cfg.Theme.Selected)
}
