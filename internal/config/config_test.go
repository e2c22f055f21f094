package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()

	assert.Equal(t, DefaultTheme, cfg.Theme)
	assert.Equal(t, DefaultLookahead, cfg.Lookahead)
	assert.Equal(t, DefaultLogDir, cfg.LogDir)
	assert.NotEmpty(t, cfg.SourceExts)
	assert.NotEmpty(t, cfg.Patterns.Error)
}

func TestLoad_When_FileMissing(t *testing.T) {
	t.Parallel()

	cfg := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))

	assert.Equal(t, Default(), cfg)
}

func TestLoad_When_PartialFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ConfigFileName)
	body := `
theme: mono
lookahead: 20
max_line_width: 100
derived_data: /tmp/DerivedData
patterns:
  warning:
    - "custom warning pattern"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg := Load(path)

	assert.Equal(t, "mono", cfg.Theme)
	assert.Equal(t, 20, cfg.Lookahead)
	assert.Equal(t, 100, cfg.MaxLineWidth)
	assert.Equal(t, "/tmp/DerivedData", cfg.DerivedData)
	assert.Equal(t, []string{"custom warning pattern"}, cfg.Patterns.Warning)

	// Unset fields keep their defaults.
	assert.Equal(t, DefaultLogDir, cfg.LogDir)
	assert.NotEmpty(t, cfg.Patterns.Error)
	assert.NotEmpty(t, cfg.SourceExts)
}

func TestLoad_When_MalformedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("theme: [unclosed"), 0o644))

	cfg := Load(path)

	assert.Equal(t, Default(), cfg, "malformed config falls back to defaults")
}
