// Package gitutil drives the git command line for the release workflow.
package gitutil

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/mod/semver"

	"github.com/bcomnes/relman/pkg/shell"
	"github.com/bcomnes/relman/pkg/version"
)

// Repo is a git working tree rooted at Dir.
type Repo struct {
	Dir    string
	Runner *shell.Runner
}

// New returns a Repo for dir that runs git through runner.
func New(dir string, runner *shell.Runner) *Repo {
	if runner == nil {
		runner = &shell.Runner{Dir: dir}
	}
	return &Repo{Dir: dir, Runner: runner}
}

// Available verifies that git is available on the system.
func (r *Repo) Available(ctx context.Context) error {
	if _, err := r.Runner.Output(ctx, r.Dir, "git", "--version"); err != nil {
		return errors.New("git is not available on the system")
	}
	return nil
}

// CurrentBranch returns the abbreviated name of HEAD.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.Runner.Output(ctx, r.Dir, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("reading current branch: %w", err)
	}
	return out, nil
}

// Tags lists every tag in the repository.
func (r *Repo) Tags(ctx context.Context) ([]string, error) {
	out, err := r.Runner.Output(ctx, r.Dir, "git", "tag")
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return splitLines(out), nil
}

// IsClean reports whether `git status --porcelain` shows no changes.
func (r *Repo) IsClean(ctx context.Context) (bool, error) {
	dirty, err := r.DirtyFiles(ctx)
	if err != nil {
		return false, err
	}
	return len(dirty) == 0, nil
}

// DirtyFiles returns the paths reported by `git status --porcelain`.
func (r *Repo) DirtyFiles(ctx context.Context) ([]string, error) {
	out, err := r.Runner.Output(ctx, r.Dir, "git", "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to check git status: %w", err)
	}
	var files []string
	for _, line := range splitLines(out) {
		// XY status columns, a space, then the path.
		if len(line) > 3 {
			files = append(files, line[3:])
		}
	}
	return files, nil
}

// Add stages paths.
func (r *Repo) Add(ctx context.Context, paths ...string) error {
	if err := r.Runner.Run(ctx, r.Dir, append([]string{"git", "add", "--"}, paths...)...); err != nil {
		return fmt.Errorf("git add failed: %w", err)
	}
	return nil
}

// Commit records the staged changes with message.
func (r *Repo) Commit(ctx context.Context, message string) error {
	if err := r.Runner.Run(ctx, r.Dir, "git", "commit", "-m", message); err != nil {
		return fmt.Errorf("git commit failed: %w", err)
	}
	return nil
}

// Tag creates an annotated tag on HEAD.
func (r *Repo) Tag(ctx context.Context, name, message string) error {
	if err := r.Runner.Run(ctx, r.Dir, "git", "tag", "-a", name, "-m", message); err != nil {
		return fmt.Errorf("git tag failed: %w", err)
	}
	return nil
}

// PushOptions tune Push.
type PushOptions struct {
	Tags        bool
	SetUpstream bool
}

// Push pushes branch to remote.
func (r *Repo) Push(ctx context.Context, remote, branch string, opts PushOptions) error {
	args := []string{"git", "push"}
	if opts.SetUpstream {
		args = append(args, "-u")
	}
	args = append(args, remote, branch)
	if opts.Tags {
		args = append(args, "--tags")
	}
	if err := r.Runner.Run(ctx, r.Dir, args...); err != nil {
		return fmt.Errorf("git push failed: %w", err)
	}
	return nil
}

// CreateBranch creates branch at HEAD, resetting it if it already exists, and
// switches to it.
func (r *Repo) CreateBranch(ctx context.Context, branch string) error {
	if err := r.Runner.Run(ctx, r.Dir, "git", "checkout", "-B", branch); err != nil {
		return fmt.Errorf("creating branch %s: %w", branch, err)
	}
	return nil
}

// Checkout switches to an existing branch.
func (r *Repo) Checkout(ctx context.Context, branch string) error {
	if err := r.Runner.Run(ctx, r.Dir, "git", "checkout", branch); err != nil {
		return fmt.Errorf("checking out %s: %w", branch, err)
	}
	return nil
}

// LatestVersionTag returns the highest tag that is a valid semantic version
// (with or without a "v" prefix), or "" when there is none.
func LatestVersionTag(tags []string) string {
	latest, latestCanon := "", ""
	for _, tag := range tags {
		canon := semverTag(tag)
		if canon == "" {
			continue
		}
		if latestCanon == "" || semver.Compare(canon, latestCanon) > 0 {
			latest, latestCanon = tag, canon
		}
	}
	return latest
}

// LatestVersion returns the version named by the highest tag that Parse
// accepts once a leading "v" is dropped. ok is false when no tag qualifies.
func LatestVersion(tags []string) (v version.Version, ok bool) {
	var candidates []string
	for _, tag := range tags {
		if _, err := version.Parse(strings.TrimPrefix(tag, "v")); err == nil {
			candidates = append(candidates, tag)
		}
	}
	latest := LatestVersionTag(candidates)
	if latest == "" {
		return version.Version{}, false
	}
	return version.MustParse(strings.TrimPrefix(latest, "v")), true
}

// HasVersionTag reports whether tags already hold version v, verbatim or as
// a tag of the same precedence with or without a "v" prefix. Build metadata
// does not tell two version tags apart.
func HasVersionTag(tags []string, v string) bool {
	want := semverTag(v)
	return lo.ContainsBy(tags, func(tag string) bool {
		if tag == v {
			return true
		}
		canon := semverTag(tag)
		return want != "" && canon != "" && semver.Compare(canon, want) == 0
	})
}

// semverTag returns tag in the "v"-prefixed form golang.org/x/mod/semver
// expects, or "" when tag is not a semantic version.
func semverTag(tag string) string {
	if !strings.HasPrefix(tag, "v") {
		tag = "v" + tag
	}
	if !semver.IsValid(tag) {
		return ""
	}
	return tag
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
