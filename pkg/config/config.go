// Package config loads the project's .relman.yaml. A missing file yields
// the defaults, which describe a Cargo project with a pnpm web frontend
// packaged by Tauri.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/bcomnes/relman/pkg/pipeline"
)

// FileName is the config file looked up in the project root.
const FileName = ".relman.yaml"

// RootPlaceholder in an env value is replaced with the project root.
const RootPlaceholder = "{root}"

// Config describes one project.
type Config struct {
	// Manifest holds the canonical version in its [package] table.
	Manifest string `yaml:"manifest"`
	// Lock is staged with the manifest when it exists.
	Lock string `yaml:"lock"`
	// LockRefresh regenerates Lock after the manifest changes. "{package}"
	// and "{version}" are substituted.
	LockRefresh []string `yaml:"lock_refresh"`
	// BumpFiles are secondary files whose version field follows the manifest.
	BumpFiles []string `yaml:"bump_files"`

	Remote       string `yaml:"remote"`
	Trunk        string `yaml:"trunk"`
	StablePrefix string `yaml:"stable_prefix"`
	RequireClean bool   `yaml:"require_clean"`
	// Constraint is an optional semver range every release must satisfy,
	// e.g. ">= 1.0.0, < 2.0.0".
	Constraint string `yaml:"constraint"`

	Clean []string        `yaml:"clean"`
	Steps []pipeline.Step `yaml:"steps"`
	// Env replaces the default environment when the file sets it, like every
	// other field. Repeat the defaults to extend them.
	Env map[string]string `yaml:"env"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Manifest:     "Cargo.toml",
		Lock:         "Cargo.lock",
		LockRefresh:  []string{"cargo", "update", "-p", "{package}"},
		Remote:       "origin",
		Trunk:        "main",
		StablePrefix: "stable/",
		RequireClean: true,
		Clean:        []string{"webapp/node_modules", "webapp/dist", "target"},
		Steps: []pipeline.Step{
			{Name: "install frontend dependencies", Dir: "webapp", Run: []string{"pnpm", "install", "--frozen-lockfile"}},
			{Name: "frontend tests", Dir: "webapp", Run: []string{"pnpm", "test", "run", "--passWithNoTests"}},
			{Name: "build frontend", Dir: "webapp", Run: []string{"pnpm", "build:ui"}},
			{Name: "backend tests", Run: []string{"cargo", "test", "--all-targets", "--all-features"}},
			{Name: "package", Run: []string{"cargo", "tauri", "build"}},
		},
		Env: map[string]string{
			"TAURI_APP_PATH":      RootPlaceholder,
			"TAURI_FRONTEND_PATH": RootPlaceholder + "/webapp",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	// yaml.v3 merges into a non-nil map, so drop the defaults first.
	var top map[string]yaml.Node
	if yaml.Unmarshal(data, &top) == nil {
		if _, ok := top["env"]; ok {
			cfg.Env = nil
		}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first problem found.
func (c Config) Validate() error {
	switch {
	case c.Manifest == "":
		return errors.New("manifest is required")
	case c.Remote == "":
		return errors.New("remote is required")
	case c.Trunk == "":
		return errors.New("trunk is required")
	case c.StablePrefix == "":
		return errors.New("stable_prefix is required")
	}
	for i, s := range c.Steps {
		if len(s.Run) == 0 || s.Run[0] == "" {
			return fmt.Errorf("steps[%d] %q has no command", i, s.Name)
		}
	}
	if _, err := c.ParseConstraint(); err != nil {
		return err
	}
	return nil
}

// ParseConstraint returns the release constraint, or nil when none is set.
func (c Config) ParseConstraint() (*semver.Constraints, error) {
	if c.Constraint == "" {
		return nil, nil
	}
	cs, err := semver.NewConstraint(c.Constraint)
	if err != nil {
		return nil, fmt.Errorf("invalid constraint %q: %w", c.Constraint, err)
	}
	return cs, nil
}

// Resolve makes the file paths absolute against root and expands
// RootPlaceholder in env values.
func (c Config) Resolve(root string) Config {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, p)
	}

	c.Manifest = abs(c.Manifest)
	c.Lock = abs(c.Lock)
	bump := make([]string, len(c.BumpFiles))
	for i, p := range c.BumpFiles {
		bump[i] = abs(p)
	}
	c.BumpFiles = bump

	env := make(map[string]string, len(c.Env))
	for k, v := range c.Env {
		env[k] = strings.ReplaceAll(v, RootPlaceholder, filepath.ToSlash(root))
	}
	c.Env = env
	return c
}

// EnvKeys returns the configured environment variable names, sorted.
func (c Config) EnvKeys() []string {
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
