package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcomnes/relman/pkg/shell"
)

func TestCleanArtifacts(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "webapp", "dist", "assets"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "webapp", "dist", "assets", "x.js"), []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "webapp", "src"), 0755))

	p := &Pipeline{
		Clean:  []string{"webapp/dist", "target"},
		Runner: &shell.Runner{Dir: root},
	}
	require.NoError(t, p.CleanArtifacts(context.Background()))

	_, err := os.Stat(filepath.Join(root, "webapp", "dist"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "webapp", "src"))
	assert.NoError(t, err)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not available on system")
	}

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "webapp"), 0755))

	p := &Pipeline{
		Steps: []Step{
			{Name: "install dependencies", Dir: "webapp", Run: []string{"sh", "-c", "touch installed"}},
			{Name: "frontend tests", Dir: "webapp", Run: []string{"sh", "-c", "exit 2"}},
			{Name: "package", Run: []string{"sh", "-c", "touch packaged"}},
		},
		Runner: &shell.Runner{Dir: root, Stdout: io.Discard, Stderr: io.Discard},
	}

	err := p.Run(context.Background())
	require.Error(t, err)

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, "frontend tests", stepErr.Step.Name)
	assert.Contains(t, err.Error(), `step "frontend tests" failed`)

	_, err = os.Stat(filepath.Join(root, "webapp", "installed"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "packaged"))
	assert.True(t, os.IsNotExist(err))
}

func TestNames(t *testing.T) {
	p := &Pipeline{Steps: []Step{
		{Name: "build", Run: []string{"make"}},
		{Run: []string{"cargo", "test"}},
	}}
	assert.Equal(t, []string{"build", "cargo test"}, p.Names())
}
