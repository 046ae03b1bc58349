package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
}

func TestLoad_YAMLAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	const doc = `
server:
  port: 9000
catalog:
  path: data/components.json
  watch: true
layout:
  engine: grid
  options:
    gridColumn: 400
geometry:
  nodeWidth: 240
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nodegraph.yaml"), []byte(doc), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 60, cfg.Server.FrameRate)
	assert.Equal(t, "data/components.json", cfg.Catalog.Path)
	assert.True(t, cfg.Catalog.Watch)
	assert.Equal(t, "grid", cfg.Layout.Engine)
	require.NotNil(t, cfg.Layout.Options)
	assert.Equal(t, 400.0, cfg.Layout.Options.GridColumn)
	require.NotNil(t, cfg.Geometry)
	assert.Equal(t, 240.0, cfg.Geometry.NodeWidth)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_PrefersYAMLOverJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nodegraph.json"), []byte(`{"server":{"port":1}}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nodegraph.yml"), []byte("server:\n  port: 2\n"), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Server.Port)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{`), 0644))
	_, err := LoadFile(bad)
	assert.ErrorContains(t, err, "failed to parse")

	engine := filepath.Join(dir, "engine.yaml")
	require.NoError(t, os.WriteFile(engine, []byte("layout:\n  engine: spring\n"), 0644))
	_, err = LoadFile(engine)
	assert.ErrorContains(t, err, `unknown layout engine "spring"`)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSave_RoundTrips(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := DefaultConfig()
			cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
			cfg.Log.Development = true

			require.NoError(t, Save(cfg, path))
			got, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, got)
		})
	}
}
