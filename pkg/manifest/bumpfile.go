package manifest

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/bcomnes/relman/pkg/version"
)

// versionPattern finds a primary version declaration in a secondary file.
// Group 1 is everything before the value, group 2 the value, group 3 the rest.
type versionPattern struct {
	Name    string
	Pattern *regexp.Regexp
}

// mainVersionPatterns match declarations that are likely the file's own
// version rather than a dependency version. The first pattern that matches
// any line wins.
var mainVersionPatterns = []versionPattern{
	{
		Name:    "root JSON version field",
		Pattern: regexp.MustCompile(`^(\s{0,2}"version"\s*:\s*")v?([0-9A-Za-z.+-]+)(".*)$`),
	},
	{
		Name:    "root TOML version field",
		Pattern: regexp.MustCompile(`^(version\s*=\s*["'])v?([0-9A-Za-z.+-]+)(["'].*)$`),
	},
	{
		Name:    "VERSION assignment",
		Pattern: regexp.MustCompile(`^((?:export\s+)?VERSION\s*[:=]\s*["']?)v?([0-9][0-9A-Za-z.+-]*)(["']?.*)$`),
	},
}

// BumpFile sets the primary version field of path to v. The "v" prefix of the
// old value is kept when present. It reports false when no field was found.
func BumpFile(path string, v version.Version) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading file %s: %w", path, err)
	}

	out, ok := bumpText(string(data), v)
	if !ok {
		return false, nil
	}
	if err := writePreservingMode(path, []byte(out)); err != nil {
		return false, err
	}
	return true, nil
}

func bumpText(text string, v version.Version) (string, bool) {
	lines := strings.Split(text, "\n")
	for _, vp := range mainVersionPatterns {
		for i, line := range lines {
			body, cr := strings.CutSuffix(line, "\r")
			m := vp.Pattern.FindStringSubmatchIndex(body)
			if m == nil {
				continue
			}
			// The optional "v" sits between group 1 and group 2.
			prefix, vee, rest := body[m[2]:m[3]], body[m[3]:m[4]], body[m[6]:m[7]]
			body = prefix + vee + v.String() + rest
			if cr {
				body += "\r"
			}
			lines[i] = body
			return strings.Join(lines, "\n"), true
		}
	}
	return text, false
}
