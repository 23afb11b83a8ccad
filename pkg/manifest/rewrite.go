package manifest

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/bcomnes/relman/pkg/version"
)

// PackageSection is the table holding the canonical version.
const PackageSection = "package"

// ErrVersionNotFound is returned when the [package] table has no version line.
var ErrVersionNotFound = errors.New("version not found in [package] section")

// versionLine matches `version = "1.2.3"` with either quote style and keeps
// everything around the value (indentation, spacing, trailing comment).
var versionLine = regexp.MustCompile(`^(\s*version\s*=\s*)(["'])([^"']*)(["'])(.*)$`)

// Info is what the release workflow needs from the manifest.
type Info struct {
	Name    string
	Version version.Version
}

type document struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
}

// Read decodes the manifest and parses its [package] version.
func Read(text string) (Info, error) {
	var doc document
	if _, err := toml.Decode(text, &doc); err != nil {
		return Info{}, fmt.Errorf("decoding manifest: %w", err)
	}
	if doc.Package.Version == "" {
		return Info{}, ErrVersionNotFound
	}
	v, err := version.Parse(doc.Package.Version)
	if err != nil {
		return Info{}, err
	}
	return Info{Name: doc.Package.Name, Version: v}, nil
}

// RewriteVersion returns text with the version value of the [package] section
// replaced by v. Every other byte is kept as is, including comments,
// indentation, line endings and version keys of other sections.
func RewriteVersion(text string, v version.Version) (string, error) {
	lines := strings.Split(text, "\n")
	inPackage := false
	replaced := false

	for i, line := range lines {
		body, cr := strings.CutSuffix(line, "\r")

		if name, ok := sectionHeader(body); ok {
			inPackage = name == PackageSection
			continue
		}
		if !inPackage || replaced {
			continue
		}

		m := versionLine.FindStringSubmatch(body)
		if m == nil || m[2] != m[4] {
			continue
		}
		body = m[1] + m[2] + v.String() + m[4] + m[5]
		if cr {
			body += "\r"
		}
		lines[i] = body
		replaced = true
	}

	if !replaced {
		return "", ErrVersionNotFound
	}
	return strings.Join(lines, "\n"), nil
}

// sectionHeader reports whether line opens a table and returns the table
// name. Array tables ([[bin]]) are reported with their brackets so they never
// equal a plain table name.
func sectionHeader(line string) (string, bool) {
	s := line
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return "", false
	}
	if strings.HasPrefix(s, "[[") {
		return s, true
	}
	return strings.TrimSpace(s[1 : len(s)-1]), true
}
