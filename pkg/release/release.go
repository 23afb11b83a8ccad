package release

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/semver/v3"

	"github.com/bcomnes/relman/pkg/gitutil"
	"github.com/bcomnes/relman/pkg/version"
)

// Repository is the source-control view the orchestrator needs.
// *gitutil.Repo implements it.
type Repository interface {
	CurrentBranch(ctx context.Context) (string, error)
	Tags(ctx context.Context) ([]string, error)
	IsClean(ctx context.Context) (bool, error)
	Add(ctx context.Context, paths ...string) error
	Commit(ctx context.Context, message string) error
	Tag(ctx context.Context, name, message string) error
	Push(ctx context.Context, remote, branch string, opts gitutil.PushOptions) error
	CreateBranch(ctx context.Context, branch string) error
	Checkout(ctx context.Context, branch string) error
}

// Manifest holds the canonical version. *manifest.File implements it.
type Manifest interface {
	Version() (version.Version, error)
	SetVersion(ctx context.Context, v version.Version) error
	Files() []string
	Snapshot() (func() error, error)
}

// Pipeline builds and tests the project. *pipeline.Pipeline implements it.
type Pipeline interface {
	CleanArtifacts(ctx context.Context) error
	Run(ctx context.Context) error
}

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// Orchestrator runs one release at a time. Steps run strictly in order and
// the first failure ends the run.
type Orchestrator struct {
	Repo     Repository
	Manifest Manifest
	Pipeline Pipeline
	// Confirm is asked once all checks pass. Nil means no prompt.
	Confirm Confirmer

	Policy Policy
	Remote string
	// RequireClean rejects releases from a working tree with uncommitted changes.
	RequireClean bool
	// Constraint, when set, must be satisfied by the target's major.minor.patch.
	Constraint *semver.Constraints

	Logger *slog.Logger
}

// Request is one invocation.
type Request struct {
	// Target is an explicit version or a bump keyword (see version.IsKeyword).
	Target string
	// PreRelease confirms that Target is a pre-release.
	PreRelease bool
	// DryRun stops after validation and reports the plan.
	DryRun bool
}

// Result describes what a run did, or would do for a dry run.
type Result struct {
	OldVersion   version.Version
	NewVersion   version.Version
	Branch       string
	Tag          string
	FollowUps    []FollowUp
	UpdatedFiles []string
	DryRun       bool
}

// Run validates req against the repository and, unless it is a dry run,
// builds, commits, tags, pushes and primes the follow-up branches.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	var res Result
	log := o.logger()

	// 1. Parse and classify the target.
	target, err := o.resolveTarget(ctx, req.Target)
	if err != nil {
		return res, err
	}
	res.NewVersion = target
	res.Tag = target.String()

	if target.IsPreRelease() && !req.PreRelease {
		return res, fail(KindInput, "classify", fmt.Errorf("%w: %s is a pre-release version, use --prerelease to confirm", ErrPreReleaseUnconfirmed, target))
	}
	if !target.IsPreRelease() && req.PreRelease {
		return res, fail(KindInput, "classify", fmt.Errorf("%w: %s is not a pre-release version, remove --prerelease", ErrNotPreRelease, target))
	}

	intent := Intent{Target: target, PreRelease: req.PreRelease}

	// 2. Branch policy.
	log.Info("Checking current git branch...")
	if intent.Branch, err = o.Repo.CurrentBranch(ctx); err != nil {
		return res, fail(KindPrecondition, "branch", err)
	}
	res.Branch = intent.Branch
	if required := o.Policy.RequiredBranch(target); intent.Branch != required {
		kind := "major/minor"
		if target.Patch() != 0 {
			kind = "patch"
		}
		return res, fail(KindPrecondition, "branch", fmt.Errorf("%w: you must be on branch %q to release %s versions but current branch is %q", ErrWrongBranch, required, kind, intent.Branch))
	}
	log.Info("Current git branch", "branch", intent.Branch)

	// 3. Tag uniqueness.
	log.Info("Checking version tag uniqueness...")
	if intent.Tags, err = o.Repo.Tags(ctx); err != nil {
		return res, fail(KindPrecondition, "tags", err)
	}
	if gitutil.HasVersionTag(intent.Tags, res.Tag) {
		return res, fail(KindPrecondition, "tags", fmt.Errorf("%w: %s, choose a different version", ErrTagExists, res.Tag))
	}
	if latest := gitutil.LatestVersionTag(intent.Tags); latest != "" {
		log.Debug("Latest version tag", "tag", latest)
	}
	log.Info("Version tag is unique", "tag", res.Tag)

	// 4. Monotonicity, clean tree and the optional range.
	log.Info("Checking manifest current version...")
	if intent.Current, err = o.Manifest.Version(); err != nil {
		return res, fail(KindPrecondition, "monotonicity", err)
	}
	res.OldVersion = intent.Current
	if target.Compare(intent.Current) != version.Greater {
		return res, fail(KindPrecondition, "monotonicity", fmt.Errorf("%w: new version %s must be greater than current version %s", ErrNotGreater, target, intent.Current))
	}

	if o.RequireClean {
		log.Info("Checking working directory status...")
		clean, err := o.Repo.IsClean(ctx)
		if err != nil {
			return res, fail(KindPrecondition, "status", err)
		}
		if !clean {
			return res, fail(KindPrecondition, "status", fmt.Errorf("%w: commit or stash your changes before releasing", ErrDirtyTree))
		}
	}

	if o.Constraint != nil {
		sv, err := semver.NewVersion(target.Core().String())
		if err != nil {
			return res, fail(KindPrecondition, "constraint", err)
		}
		if !o.Constraint.Check(sv) {
			return res, fail(KindPrecondition, "constraint", fmt.Errorf("%w: %s does not satisfy %q", ErrConstraint, target, o.Constraint.String()))
		}
	}

	res.FollowUps = Plan(intent, o.Policy)
	res.UpdatedFiles = o.Manifest.Files()

	if req.DryRun {
		res.DryRun = true
		log.Info("Dry run, nothing was changed", "from", intent.Current.String(), "to", target.String(), "branch", intent.Branch)
		for _, fu := range res.FollowUps {
			log.Info("Would follow up", "action", fu.String())
		}
		return res, nil
	}

	// 5. Confirmation.
	if o.Confirm != nil {
		ok, err := o.Confirm.Confirm(fmt.Sprintf("Are you sure you want to release version '%s'?", target))
		if err != nil {
			return res, fail(KindInput, "confirm", err)
		}
		if !ok {
			return res, fail(KindInput, "confirm", ErrCancelled)
		}
	}

	// 6. Build pipeline.
	if err := o.build(ctx, target); err != nil {
		return res, err
	}

	// 7. Commit, tag and push.
	log.Info("Committing changes...")
	if err := o.commitAndPush(ctx, intent.Branch, fmt.Sprintf("chore: release version %s", target), gitutil.PushOptions{Tags: true}, func() error {
		return o.Repo.Tag(ctx, res.Tag, res.Tag)
	}); err != nil {
		return res, fail(KindPublish, "publish", err)
	}
	log.Info("Released", "version", target.String(), "branch", intent.Branch)

	// 8. Fan out.
	if err := o.fanOut(ctx, intent.Branch, res.FollowUps); err != nil {
		return res, fail(KindPublish, "fan-out", err)
	}

	return res, nil
}

// resolveTarget turns the requested target into a version. Keywords bump the
// manifest version. from-git always names a released tag, so it is refused
// with a pointer to set-version.
func (o *Orchestrator) resolveTarget(ctx context.Context, arg string) (version.Version, error) {
	switch {
	case arg == version.FromGit:
		tags, err := o.Repo.Tags(ctx)
		if err != nil {
			return version.Version{}, fail(KindPrecondition, "parse", err)
		}
		latest, ok := gitutil.LatestVersion(tags)
		if !ok {
			return version.Version{}, fail(KindPrecondition, "parse", ErrNoVersionTag)
		}
		return version.Version{}, fail(KindInput, "parse", fmt.Errorf("%w: %s resolves to %s, use set-version %s to sync the manifest", ErrTagExists, arg, latest, arg))
	case version.IsKeyword(arg):
		current, err := o.Manifest.Version()
		if err != nil {
			return version.Version{}, fail(KindPrecondition, "parse", err)
		}
		v, err := current.Bump(arg)
		if err != nil {
			return version.Version{}, fail(KindInput, "parse", err)
		}
		return v, nil
	default:
		v, err := version.Parse(arg)
		if err != nil {
			return version.Version{}, fail(KindInput, "parse", err)
		}
		return v, nil
	}
}

// build writes the target version and runs the pipeline. If any step fails
// the manifest files are restored to their previous content.
func (o *Orchestrator) build(ctx context.Context, target version.Version) error {
	restore, err := o.Manifest.Snapshot()
	if err != nil {
		return fail(KindPipeline, "snapshot", err)
	}

	err = o.Manifest.SetVersion(ctx, target)
	if err == nil {
		err = o.Pipeline.CleanArtifacts(ctx)
	}
	if err == nil {
		err = o.Pipeline.Run(ctx)
	}
	if err == nil {
		return nil
	}

	if rerr := restore(); rerr != nil {
		err = errors.Join(err, fmt.Errorf("restoring manifest: %w", rerr))
	} else {
		o.logger().Warn("Restored manifest after failed build")
	}
	return fail(KindPipeline, "build", err)
}

// commitAndPush stages the manifest files, commits with message, runs
// beforePush (if any) and pushes branch.
func (o *Orchestrator) commitAndPush(ctx context.Context, branch, message string, opts gitutil.PushOptions, beforePush func() error) error {
	if err := o.Repo.Add(ctx, o.Manifest.Files()...); err != nil {
		return err
	}
	if err := o.Repo.Commit(ctx, message); err != nil {
		return err
	}
	if beforePush != nil {
		if err := beforePush(); err != nil {
			return err
		}
	}
	return o.Repo.Push(ctx, o.Remote, branch, opts)
}

func (o *Orchestrator) fanOut(ctx context.Context, branch string, followUps []FollowUp) error {
	current := branch
	for _, fu := range followUps {
		switch {
		case fu.Create:
			o.logger().Info("Creating branch", "branch", fu.Branch)
			if err := o.Repo.CreateBranch(ctx, fu.Branch); err != nil {
				return err
			}
			if err := o.Repo.Push(ctx, o.Remote, fu.Branch, gitutil.PushOptions{SetUpstream: true}); err != nil {
				return err
			}
		case fu.Branch != current:
			if err := o.Repo.Checkout(ctx, fu.Branch); err != nil {
				return err
			}
		}
		current = fu.Branch

		o.logger().Info("Bumping version", "branch", fu.Branch, "version", fu.Version.String())
		if err := o.Manifest.SetVersion(ctx, fu.Version); err != nil {
			return err
		}
		msg := fmt.Sprintf("chore: bump version to %s", fu.Version)
		if err := o.commitAndPush(ctx, fu.Branch, msg, gitutil.PushOptions{SetUpstream: true}, nil); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
