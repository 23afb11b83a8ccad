package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcomnes/relman/pkg/version"
)

func TestBumpText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		found   bool
	}{
		{
			name:    "package.json",
			content: "{\n  \"name\": \"app\",\n  \"version\": \"1.2.3\",\n  \"devDependencies\": {\n    \"version\": \"0.0.1\"\n  }\n}\n",
			want:    "{\n  \"name\": \"app\",\n  \"version\": \"2.0.0-beta.1\",\n  \"devDependencies\": {\n    \"version\": \"0.0.1\"\n  }\n}\n",
			found:   true,
		},
		{
			name:    "tauri.conf.toml",
			content: "productName = \"x\"\nversion = \"1.2.3\"\n",
			want:    "productName = \"x\"\nversion = \"2.0.0-beta.1\"\n",
			found:   true,
		},
		{
			name:    "VERSION assignment keeps v prefix",
			content: "export VERSION=v1.2.3\n",
			want:    "export VERSION=v2.0.0-beta.1\n",
			found:   true,
		},
		{
			name:    "nothing to bump",
			content: "# Project\n\nNo versions here.\n",
			want:    "# Project\n\nNo versions here.\n",
			found:   false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, found := bumpText(tc.content, version.MustParse("2.0.0-beta.1"))
			assert.Equal(t, tc.found, found)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestBumpFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "package.json")
	require.NoError(t, os.WriteFile(path, []byte("{\n  \"version\": \"0.1.0\"\n}\n"), 0600))

	ok, err := BumpFile(path, version.MustParse("0.2.0"))
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"version\": \"0.2.0\"\n}\n", string(data))

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), st.Mode().Perm())

	_, err = BumpFile(filepath.Join(dir, "missing.json"), version.MustParse("0.2.0"))
	assert.Error(t, err)
}
