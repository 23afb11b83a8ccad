package release

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bcomnes/relman/pkg/gitutil"
	"github.com/bcomnes/relman/pkg/version"
)

var errInjected = errors.New("injected failure")

type commit struct {
	Branch  string
	Message string
	Version string
}

// world is an in-memory repository whose only tracked file is the manifest.
// It implements both Repository and Manifest.
type world struct {
	branch  string
	heads   map[string]version.Version
	working version.Version
	dirty   bool
	tags    []string

	commits []commit
	pushes  []string
	calls   []string

	failOn   string
	restored bool
}

func newWorld(branch, manifestVersion string) *world {
	v := version.MustParse(manifestVersion)
	return &world{
		branch:  branch,
		heads:   map[string]version.Version{branch: v},
		working: v,
	}
}

func (w *world) record(call string) error {
	w.calls = append(w.calls, call)
	if w.failOn != "" && strings.HasPrefix(call, w.failOn) {
		return fmt.Errorf("%s: %w", call, errInjected)
	}
	return nil
}

func (w *world) CurrentBranch(context.Context) (string, error) {
	return w.branch, w.record("branch")
}

func (w *world) Tags(context.Context) ([]string, error) {
	return w.tags, w.record("tags")
}

func (w *world) IsClean(context.Context) (bool, error) {
	return !w.dirty, w.record("status")
}

func (w *world) Add(_ context.Context, paths ...string) error {
	return w.record("add " + strings.Join(paths, " "))
}

func (w *world) Commit(_ context.Context, message string) error {
	if err := w.record("commit " + message); err != nil {
		return err
	}
	w.heads[w.branch] = w.working
	w.commits = append(w.commits, commit{Branch: w.branch, Message: message, Version: w.working.String()})
	return nil
}

func (w *world) Tag(_ context.Context, name, message string) error {
	if err := w.record("tag " + name + " " + message); err != nil {
		return err
	}
	w.tags = append(w.tags, name)
	return nil
}

func (w *world) Push(_ context.Context, remote, branch string, opts gitutil.PushOptions) error {
	push := remote + " " + branch
	if opts.SetUpstream {
		push = "-u " + push
	}
	if opts.Tags {
		push += " --tags"
	}
	if err := w.record("push " + push); err != nil {
		return err
	}
	w.pushes = append(w.pushes, push)
	return nil
}

func (w *world) CreateBranch(_ context.Context, branch string) error {
	if err := w.record("create " + branch); err != nil {
		return err
	}
	w.heads[branch] = w.heads[w.branch]
	w.branch = branch
	return nil
}

func (w *world) Checkout(_ context.Context, branch string) error {
	if err := w.record("checkout " + branch); err != nil {
		return err
	}
	head, ok := w.heads[branch]
	if !ok {
		return fmt.Errorf("no branch %s", branch)
	}
	w.branch = branch
	w.working = head
	return nil
}

func (w *world) Version() (version.Version, error) {
	return w.working, w.record("read manifest")
}

func (w *world) SetVersion(_ context.Context, v version.Version) error {
	if err := w.record("set " + v.String()); err != nil {
		return err
	}
	w.working = v
	return nil
}

func (w *world) Files() []string {
	return []string{"Cargo.toml", "Cargo.lock"}
}

func (w *world) Snapshot() (func() error, error) {
	saved := w.working
	return func() error {
		w.working = saved
		w.restored = true
		return nil
	}, nil
}

func (w *world) mutations() []string {
	var out []string
	for _, c := range w.calls {
		switch strings.SplitN(c, " ", 2)[0] {
		case "set", "add", "commit", "tag", "push", "create", "checkout":
			out = append(out, c)
		}
	}
	return out
}

type fakePipeline struct {
	cleaned bool
	ran     bool
	err     error
}

func (p *fakePipeline) CleanArtifacts(context.Context) error {
	p.cleaned = true
	return nil
}

func (p *fakePipeline) Run(context.Context) error {
	p.ran = true
	return p.err
}

type fakeConfirmer struct {
	answer bool
	asked  []string
}

func (c *fakeConfirmer) Confirm(question string) (bool, error) {
	c.asked = append(c.asked, question)
	return c.answer, nil
}
