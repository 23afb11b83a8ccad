package manifest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/bcomnes/relman/pkg/shell"
	"github.com/bcomnes/relman/pkg/version"
)

// File is the manifest on disk together with its lock file and any
// secondary files that mirror the version.
type File struct {
	Path     string
	LockPath string
	// BumpFiles get their primary version field set alongside the manifest.
	BumpFiles []string
	// Refresh is the lock refresh command. "{package}" and "{version}" are
	// substituted with the manifest package name and the new version.
	// An empty Refresh skips the lock refresh.
	Refresh []string

	Runner *shell.Runner
	Logger *slog.Logger
}

// Info reads and parses the manifest.
func (f *File) Info() (Info, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	info, err := Read(string(data))
	if err != nil {
		return Info{}, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	return info, nil
}

// Version returns the version recorded in the manifest.
func (f *File) Version() (version.Version, error) {
	info, err := f.Info()
	if err != nil {
		return version.Version{}, err
	}
	return info.Version, nil
}

// SetVersion rewrites the manifest version, refreshes the lock file and bumps
// the secondary files.
func (f *File) SetVersion(ctx context.Context, v version.Version) error {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}
	info, err := Read(string(data))
	if err != nil {
		return fmt.Errorf("reading %s: %w", f.Path, err)
	}

	out, err := RewriteVersion(string(data), v)
	if err != nil {
		return fmt.Errorf("updating %s: %w", f.Path, err)
	}
	if err := writePreservingMode(f.Path, []byte(out)); err != nil {
		return err
	}
	f.logger().Info("Updated manifest", "file", f.Path, "from", info.Version.String(), "to", v.String())

	if err := f.refreshLock(ctx, info.Name, v); err != nil {
		return err
	}

	for _, bf := range f.BumpFiles {
		bumped, err := BumpFile(bf, v)
		if err != nil {
			return fmt.Errorf("bumping %s: %w", bf, err)
		}
		if !bumped {
			f.logger().Warn("No version field found", "file", bf)
			continue
		}
		f.logger().Debug("Bumped version file", "file", bf, "version", v.String())
	}

	return nil
}

func (f *File) refreshLock(ctx context.Context, pkg string, v version.Version) error {
	if len(f.Refresh) == 0 {
		return nil
	}
	repl := strings.NewReplacer("{package}", pkg, "{version}", v.String())
	argv := make([]string, len(f.Refresh))
	for i, a := range f.Refresh {
		argv[i] = repl.Replace(a)
	}
	runner := f.Runner
	if runner == nil {
		runner = &shell.Runner{}
	}
	if err := runner.Run(ctx, "", argv...); err != nil {
		return fmt.Errorf("refreshing lock file: %w", err)
	}
	return nil
}

// Files returns the paths a release commit stages: the manifest, the lock
// file when it exists, and the bump files.
func (f *File) Files() []string {
	files := []string{f.Path}
	if f.LockPath != "" {
		if _, err := os.Stat(f.LockPath); err == nil {
			files = append(files, f.LockPath)
		}
	}
	return append(files, f.BumpFiles...)
}

// Snapshot captures the current content of every file SetVersion may touch
// and returns a function that writes it back. Files that did not exist are
// removed on restore.
func (f *File) Snapshot() (func() error, error) {
	type saved struct {
		path   string
		data   []byte
		exists bool
	}

	paths := append([]string{f.Path}, f.BumpFiles...)
	if f.LockPath != "" {
		paths = append(paths, f.LockPath)
	}

	var state []saved
	for _, p := range paths {
		data, err := os.ReadFile(p)
		switch {
		case err == nil:
			state = append(state, saved{path: p, data: data, exists: true})
		case errors.Is(err, fs.ErrNotExist):
			state = append(state, saved{path: p})
		default:
			return nil, fmt.Errorf("snapshotting %s: %w", p, err)
		}
	}

	return func() error {
		var errs []error
		for _, s := range state {
			if !s.exists {
				if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
					errs = append(errs, err)
				}
				continue
			}
			if err := writePreservingMode(s.path, s.data); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}, nil
}

func (f *File) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

func writePreservingMode(path string, data []byte) error {
	mode := fs.FileMode(0644)
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode().Perm()
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
