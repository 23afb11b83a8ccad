package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBump tests Bump for every directive.
func TestBump(t *testing.T) {
	tests := []struct {
		version  string
		bump     string
		expected string
	}{
		{"1.2.3", "major", "2.0.0"},
		{"1.2.3", "minor", "1.3.0"},
		{"1.2.3", "patch", "1.2.4"},
		{"1.2.3", "premajor", "2.0.0-alpha.0"},
		{"1.2.3", "preminor", "1.3.0-alpha.0"},
		{"1.2.3", "prepatch", "1.2.4-alpha.0"},
		{"1.2.3", "prerelease", "1.2.4-alpha.0"},
		{"1.2.3-beta.1", "prerelease", "1.2.3-beta.2"},
		{"1.2.4-alpha.0", "patch", "1.2.4"},
		{"1.3.0-alpha.0", "minor", "1.3.0"},
		{"1.3.1-alpha.0", "minor", "1.4.0"},
		{"2.0.0-rc.0", "major", "2.0.0"},
		{"1.2.3+meta", "patch", "1.2.4"},
	}
	for _, tc := range tests {
		res, err := MustParse(tc.version).Bump(tc.bump)
		require.NoError(t, err, "%s %s", tc.version, tc.bump)
		assert.Equal(t, tc.expected, res.String(), "%s %s", tc.version, tc.bump)
	}

	_, err := MustParse("1.2.3").Bump("unknown")
	assert.Error(t, err)
}

func TestIsKeyword(t *testing.T) {
	assert.True(t, IsKeyword("minor"))
	assert.True(t, IsKeyword("prerelease"))
	assert.False(t, IsKeyword("1.2.3"))
	assert.False(t, IsKeyword("from-git"))

	kw := Keywords()
	assert.Len(t, kw, 7)
	kw[0] = "changed"
	assert.Equal(t, "major", Keywords()[0])
}
