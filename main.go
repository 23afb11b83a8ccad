package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/bcomnes/relman/pkg/config"
	"github.com/bcomnes/relman/pkg/gitutil"
	"github.com/bcomnes/relman/pkg/logging"
	"github.com/bcomnes/relman/pkg/manifest"
	"github.com/bcomnes/relman/pkg/pipeline"
	"github.com/bcomnes/relman/pkg/prompt"
	"github.com/bcomnes/relman/pkg/release"
	"github.com/bcomnes/relman/pkg/shell"
	"github.com/bcomnes/relman/pkg/version"
)

const flagCatGlobal = "Global options:"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, os.Args, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// app carries the state shared by all commands once Before has run.
type app struct {
	stdout io.Writer
	stderr io.Writer

	workDir    string
	configPath string
	logFile    string
	verbose    bool
	brief      bool

	logger   *slog.Logger
	closeLog func() error
	cfg      config.Config
}

// Run executes the CLI with args (including the program name).
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, stderr: stderr}
	return a.command().Run(ctx, args)
}

func (a *app) command() *cli.Command {
	defaultWorkDir, _ := os.Getwd()

	return &cli.Command{
		Name:                  "relman",
		Usage:                 "cut releases of a Cargo project on a main + stable/X.Y.x branch model",
		Version:               Version,
		EnableShellCompletion: true,
		Writer:                a.stdout,
		ErrWriter:             a.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "workdir",
				Usage:       "run as if relman was started in `PATH` instead of the current working directory",
				Sources:     cli.EnvVars("RELMAN_WORK_DIR"),
				Value:       defaultWorkDir,
				Destination: &a.workDir,
				Category:    flagCatGlobal,
			},
			&cli.StringFlag{
				Name:        "config",
				Usage:       "config `FILE` (default: <workdir>/" + config.FileName + ")",
				Sources:     cli.EnvVars("RELMAN_CONFIG"),
				Destination: &a.configPath,
				Category:    flagCatGlobal,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "verbose output (includes debug)",
				Sources:     cli.EnvVars("RELMAN_VERBOSE"),
				Destination: &a.verbose,
				Category:    flagCatGlobal,
			},
			&cli.BoolFlag{
				Name:        "brief",
				Aliases:     []string{"b"},
				Usage:       "brief output (only warn and error)",
				Sources:     cli.EnvVars("RELMAN_BRIEF"),
				Destination: &a.brief,
				Category:    flagCatGlobal,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "also write a debug log to `FILE`",
				Sources:     cli.EnvVars("RELMAN_LOG_FILE"),
				Destination: &a.logFile,
				Category:    flagCatGlobal,
			},
		},
		Before: a.before,
		After: func(context.Context, *cli.Command) error {
			if a.closeLog != nil {
				return a.closeLog()
			}
			return nil
		},
		Commands: []*cli.Command{
			a.releaseCommand(),
			a.setVersionCommand(),
			a.currentCommand(),
			a.nextCommand(),
		},
	}
}

func (a *app) before(ctx context.Context, _ *cli.Command) (context.Context, error) {
	logger, closeLog, err := logging.Setup(logging.Options{
		Verbose: a.verbose,
		Brief:   a.brief,
		File:    a.logFile,
		Writer:  a.stderr,
	})
	if err != nil {
		return ctx, err
	}
	a.logger, a.closeLog = logger, closeLog
	slog.SetDefault(logger)

	root, err := filepath.Abs(a.workDir)
	if err != nil {
		return ctx, fmt.Errorf("resolving workdir: %w", err)
	}
	a.workDir = root

	path := a.configPath
	if path == "" {
		path = filepath.Join(root, config.FileName)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return ctx, err
	}
	a.cfg = cfg.Resolve(root)

	logger.Debug("relman", "version", Version, "workdir", root, "config", path, "env", a.cfg.EnvKeys())
	return ctx, nil
}

func (a *app) runner() *shell.Runner {
	return &shell.Runner{
		Dir:    a.workDir,
		Env:    a.cfg.Env,
		Stdout: a.stderr,
		Stderr: a.stderr,
		Logger: a.logger,
	}
}

func (a *app) manifest(runner *shell.Runner) *manifest.File {
	return &manifest.File{
		Path:      a.cfg.Manifest,
		LockPath:  a.cfg.Lock,
		BumpFiles: a.cfg.BumpFiles,
		Refresh:   a.cfg.LockRefresh,
		Runner:    runner,
		Logger:    a.logger,
	}
}

// singleArg returns the only positional argument. Flags after it are
// rejected because they would be taken as arguments.
func singleArg(cmd *cli.Command, name string) (string, error) {
	args := cmd.Args().Slice()
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			return "", errors.New("flags must be specified before the " + name + " argument, please reorder your arguments")
		}
	}
	if len(args) != 1 {
		return "", fmt.Errorf("<%s> positional argument is required", name)
	}
	return args[0], nil
}

func (a *app) releaseCommand() *cli.Command {
	var preRelease, dryRun, yes bool

	return &cli.Command{
		Name:      "release",
		Usage:     "validate, build, commit, tag and push a new version",
		ArgsUsage: "<version|" + strings.Join(version.Keywords(), "|") + ">",
		Description: `Major and minor versions are released from the trunk, patch versions from
their stable/X.Y.x branch. Afterwards the affected branches are bumped to
their next alpha version.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "prerelease",
				Aliases:     []string{"p"},
				Usage:       "confirm that the version is a pre-release (alpha, beta, rc)",
				Destination: &preRelease,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "run all checks and print the plan without changing anything",
				Destination: &dryRun,
			},
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "assume yes for the confirmation prompt",
				Sources:     cli.EnvVars("RELMAN_YES"),
				Destination: &yes,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			target, err := singleArg(cmd, "version")
			if err != nil {
				return err
			}

			runner := a.runner()
			repo := gitutil.New(a.workDir, runner)
			if err := repo.Available(ctx); err != nil {
				return err
			}
			constraint, err := a.cfg.ParseConstraint()
			if err != nil {
				return err
			}

			var confirm release.Confirmer = &prompt.Terminal{}
			if yes {
				confirm = prompt.Always(true)
			}

			p := &pipeline.Pipeline{
				Clean:  a.cfg.Clean,
				Steps:  a.cfg.Steps,
				Runner: runner,
				Logger: a.logger,
			}
			a.logger.Debug("Pipeline", "clean", a.cfg.Clean, "steps", p.Names())

			o := &release.Orchestrator{
				Repo:         repo,
				Manifest:     a.manifest(runner),
				Pipeline:     p,
				Confirm:      confirm,
				Policy:       release.Policy{Trunk: a.cfg.Trunk, StablePrefix: a.cfg.StablePrefix},
				Remote:       a.cfg.Remote,
				RequireClean: a.cfg.RequireClean,
				Constraint:   constraint,
				Logger:       a.logger,
			}

			res, err := o.Run(ctx, release.Request{Target: target, PreRelease: preRelease, DryRun: dryRun})
			if err != nil {
				if kind := release.KindOf(err); kind != 0 {
					a.logger.Debug("Release failed", "kind", kind.String(), "err", err)
				}
				return err
			}
			a.printResult(res)
			return nil
		},
	}
}

func (a *app) printResult(res release.Result) {
	w := a.stdout
	if res.DryRun {
		fmt.Fprintln(w, "Dry run complete, no files were modified.")
	} else {
		fmt.Fprintln(w, "Release successful!")
	}
	fmt.Fprintf(w, "Old Version: %s\n", res.OldVersion)
	fmt.Fprintf(w, "New Version: %s\n", res.NewVersion)
	fmt.Fprintf(w, "Branch:      %s\n", res.Branch)
	fmt.Fprintf(w, "Tag:         %s\n", res.Tag)

	if len(res.FollowUps) > 0 {
		if res.DryRun {
			fmt.Fprintln(w, "Follow-ups that would run:")
		} else {
			fmt.Fprintln(w, "Follow-ups:")
		}
		for _, fu := range res.FollowUps {
			fmt.Fprintf(w, "  %s\n", fu)
		}
	}

	if len(res.UpdatedFiles) > 0 {
		if res.DryRun {
			fmt.Fprintln(w, "Files that would be updated:")
		} else {
			fmt.Fprintln(w, "Files updated:")
		}
		for _, f := range res.UpdatedFiles {
			fmt.Fprintf(w, "  %s\n", a.rel(f))
		}
	}
}

func (a *app) rel(path string) string {
	if r, err := filepath.Rel(a.workDir, path); err == nil {
		return r
	}
	return path
}

func (a *app) setVersionCommand() *cli.Command {
	return &cli.Command{
		Name:      "set-version",
		Usage:     "write a version to the manifest and refresh the lock file, without committing",
		ArgsUsage: "<version|" + version.FromGit + ">",
		Description: version.FromGit + ` takes the version of the most recent version tag, which syncs the
manifest with the repository after a release made elsewhere.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			arg, err := singleArg(cmd, "version")
			if err != nil {
				return err
			}
			var v version.Version
			if arg == version.FromGit {
				v, err = a.latestTagged(ctx)
			} else {
				v, err = version.Parse(arg)
			}
			if err != nil {
				return err
			}

			m := a.manifest(a.runner())
			old, err := m.Version()
			if err != nil {
				return err
			}
			if err := m.SetVersion(ctx, v); err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "Old Version: %s\n", old)
			fmt.Fprintf(a.stdout, "New Version: %s\n", v)
			return nil
		},
	}
}

func (a *app) currentCommand() *cli.Command {
	return &cli.Command{
		Name:  "current",
		Usage: "print the manifest version",
		Action: func(ctx context.Context, _ *cli.Command) error {
			v, err := a.manifest(nil).Version()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, v)

			if latest, err := a.latestTagged(ctx); err == nil && !latest.Equal(v) {
				a.logger.Debug("Manifest differs from the latest version tag", "tag", latest)
			}
			return nil
		},
	}
}

// latestTagged returns the version named by the most recent version tag.
func (a *app) latestTagged(ctx context.Context) (version.Version, error) {
	tags, err := gitutil.New(a.workDir, a.runner()).Tags(ctx)
	if err != nil {
		return version.Version{}, err
	}
	v, ok := gitutil.LatestVersion(tags)
	if !ok {
		return version.Version{}, release.ErrNoVersionTag
	}
	return v, nil
}

func (a *app) nextCommand() *cli.Command {
	return &cli.Command{
		Name:      "next",
		Usage:     "print the version a bump keyword resolves to",
		ArgsUsage: "<" + strings.Join(version.Keywords(), "|") + "|" + version.FromGit + ">",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			keyword, err := singleArg(cmd, "keyword")
			if err != nil {
				return err
			}
			if keyword == version.FromGit {
				v, err := a.latestTagged(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, v)
				return nil
			}
			if !version.IsKeyword(keyword) {
				return fmt.Errorf("unknown bump keyword %q, expected one of: %s", keyword, strings.Join(version.Keywords(), ", "))
			}

			current, err := a.manifest(nil).Version()
			if err != nil {
				return err
			}
			next, err := current.Bump(keyword)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, next)
			return nil
		},
	}
}
