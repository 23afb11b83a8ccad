package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestDefaultsMatchCargoTauriProject(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "Cargo.toml", cfg.Manifest)
	assert.Equal(t, "Cargo.lock", cfg.Lock)
	assert.Equal(t, []string{"cargo", "update", "-p", "{package}"}, cfg.LockRefresh)
	assert.True(t, cfg.RequireClean)
	require.Len(t, cfg.Steps, 5)
	assert.Equal(t, "webapp", cfg.Steps[0].Dir)
	assert.Equal(t, []string{"cargo", "tauri", "build"}, cfg.Steps[4].Run)
	assert.Equal(t, []string{"TAURI_APP_PATH", "TAURI_FRONTEND_PATH"}, cfg.EnvKeys())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
manifest: app/Cargo.toml
trunk: trunk
stable_prefix: release/
require_clean: false
constraint: ">= 1.0.0, < 2.0.0"
bump_files:
  - package.json
steps:
  - name: test
    run: [make, test]
env:
  EXTRA: "1"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "app/Cargo.toml", cfg.Manifest)
	assert.Equal(t, "Cargo.lock", cfg.Lock)
	assert.Equal(t, "origin", cfg.Remote)
	assert.Equal(t, "trunk", cfg.Trunk)
	assert.Equal(t, "release/", cfg.StablePrefix)
	assert.False(t, cfg.RequireClean)
	assert.Equal(t, []string{"package.json"}, cfg.BumpFiles)
	require.Len(t, cfg.Steps, 1)
	assert.Equal(t, []string{"make", "test"}, cfg.Steps[0].Run)
	assert.Equal(t, map[string]string{"EXTRA": "1"}, cfg.Env)

	cs, err := cfg.ParseConstraint()
	require.NoError(t, err)
	require.NotNil(t, cs)
}

func TestLoadEnv(t *testing.T) {
	cfg, err := Load(writeConfig(t, "remote: upstream\n"))
	require.NoError(t, err)
	assert.Equal(t, Default().Env, cfg.Env)

	cfg, err = Load(writeConfig(t, "env: {}\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Env)

	cfg, err = Load(writeConfig(t, "env:\n  TAURI_APP_PATH: \"{root}/app\"\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"TAURI_APP_PATH": "{root}/app"}, cfg.Env)
	assert.NotContains(t, cfg.Env, "TAURI_FRONTEND_PATH")
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	_, err := Load(writeConfig(t, "manifset: Cargo.toml\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no manifest", func(c *Config) { c.Manifest = "" }, "manifest is required"},
		{"no remote", func(c *Config) { c.Remote = "" }, "remote is required"},
		{"no trunk", func(c *Config) { c.Trunk = "" }, "trunk is required"},
		{"no prefix", func(c *Config) { c.StablePrefix = "" }, "stable_prefix is required"},
		{"empty step", func(c *Config) { c.Steps[1].Run = nil }, `steps[1] "frontend tests" has no command`},
		{"bad constraint", func(c *Config) { c.Constraint = ">= banana" }, "invalid constraint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestResolve(t *testing.T) {
	root := filepath.Join(t.TempDir(), "project")
	cfg := Default()
	cfg.BumpFiles = []string{"package.json", "/abs/VERSION"}

	r := cfg.Resolve(root)
	assert.Equal(t, filepath.Join(root, "Cargo.toml"), r.Manifest)
	assert.Equal(t, filepath.Join(root, "Cargo.lock"), r.Lock)
	assert.Equal(t, []string{filepath.Join(root, "package.json"), "/abs/VERSION"}, r.BumpFiles)
	assert.Equal(t, filepath.ToSlash(root), r.Env["TAURI_APP_PATH"])
	assert.Equal(t, filepath.ToSlash(root)+"/webapp", r.Env["TAURI_FRONTEND_PATH"])

	// The receiver is untouched.
	assert.Equal(t, "Cargo.toml", cfg.Manifest)
	assert.Equal(t, RootPlaceholder, cfg.Env["TAURI_APP_PATH"])
}
