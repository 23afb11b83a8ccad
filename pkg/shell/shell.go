// Package shell runs external commands with a fixed set of extra environment
// variables and a working directory relative to the project root.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Runner executes commands. The zero value runs in the current directory,
// inherits the process environment and streams output to os.Stdout/os.Stderr.
type Runner struct {
	// Dir is the project root; relative command directories resolve against it.
	Dir string
	// Env entries are added to (and override) the process environment.
	Env map[string]string

	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// ExitError is returned when a command ran but did not succeed.
type ExitError struct {
	Args   []string
	Err    error
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s failed: %v", strings.Join(e.Args, " "), e.Err)
	if detail := strings.TrimSpace(e.Stderr); detail != "" {
		msg += ", detail: " + detail
	}
	return msg
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Run executes argv in dir and streams its output. There is no timeout;
// cancelling ctx kills the child.
func (r *Runner) Run(ctx context.Context, dir string, argv ...string) error {
	cmd, err := r.command(ctx, dir, argv)
	if err != nil {
		return err
	}
	cmd.Stdout = r.stdout()

	var stderr bytes.Buffer
	cmd.Stderr = io.MultiWriter(r.stderr(), &stderr)

	if err := cmd.Run(); err != nil {
		return &ExitError{Args: argv, Err: err, Stderr: stderr.String()}
	}
	return nil
}

// Output executes argv in dir and returns its standard output without the
// trailing line break. Leading whitespace is significant and kept.
func (r *Runner) Output(ctx context.Context, dir string, argv ...string) (string, error) {
	cmd, err := r.command(ctx, dir, argv)
	if err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &ExitError{Args: argv, Err: err, Stderr: stderr.String()}
	}
	return strings.TrimRight(stdout.String(), "\r\n"), nil
}

// Resolve returns dir made absolute against the runner's root.
func (r *Runner) Resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	root := r.Dir
	if root == "" {
		root = "."
	}
	return filepath.Join(root, dir)
}

func (r *Runner) command(ctx context.Context, dir string, argv []string) (*exec.Cmd, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, fmt.Errorf("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Resolve(dir)
	cmd.Env = r.environ()

	r.logger().Debug("Running command", "cmd", strings.Join(argv, " "), "dir", cmd.Dir)

	return cmd, nil
}

func (r *Runner) environ() []string {
	env := os.Environ()
	keys := make([]string, 0, len(r.Env))
	for k := range r.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+r.Env[k])
	}
	return env
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
