// Package pipeline runs the build and test steps that gate a release.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/lo"

	"github.com/bcomnes/relman/pkg/shell"
)

// Step is one external command. Its only contract is its exit status.
type Step struct {
	Name string   `yaml:"name"`
	Dir  string   `yaml:"dir,omitempty"`
	Run  []string `yaml:"run"`
}

func (s Step) String() string {
	if s.Name != "" {
		return s.Name
	}
	return strings.Join(s.Run, " ")
}

// StepError reports the step that failed.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step.String(), e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Pipeline removes previous build artifacts and runs Steps in order.
type Pipeline struct {
	// Clean lists artifact paths, relative to the runner root, removed before
	// the steps run.
	Clean  []string
	Steps  []Step
	Runner *shell.Runner
	Logger *slog.Logger
}

// Names returns the display name of every step.
func (p *Pipeline) Names() []string {
	return lo.Map(p.Steps, func(s Step, _ int) string { return s.String() })
}

// CleanArtifacts removes the artifact paths. Missing paths are ignored.
func (p *Pipeline) CleanArtifacts(_ context.Context) error {
	p.logger().Info("Cleaning up previous build artifacts...")
	for _, path := range p.Clean {
		abs := p.runner().Resolve(path)
		if err := os.RemoveAll(abs); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
		p.logger().Debug("Removed", "path", abs)
	}
	return nil
}

// Run executes the steps in order and stops at the first failure.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger().Info("Running tests and building project...", "steps", len(p.Steps))
	for i, step := range p.Steps {
		p.logger().Info("Running step", "step", step.String(), "n", i+1, "of", len(p.Steps))
		if err := p.runner().Run(ctx, step.Dir, step.Run...); err != nil {
			return &StepError{Step: step, Err: err}
		}
	}
	return nil
}

func (p *Pipeline) runner() *shell.Runner {
	if p.Runner != nil {
		return p.Runner
	}
	return &shell.Runner{}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
