package version

import (
	"fmt"
	"slices"
)

// FromGit asks for the version of the most recent version tag instead of a
// bump of the manifest version. Bump does not handle it.
const FromGit = "from-git"

var keywords = []string{"major", "minor", "patch", "premajor", "preminor", "prepatch", "prerelease"}

// Keywords returns the bump directives understood by Bump.
func Keywords() []string {
	return slices.Clone(keywords)
}

// IsKeyword reports whether s is a bump directive understood by Bump.
func IsKeyword(s string) bool {
	return slices.Contains(keywords, s)
}

// Bump derives a new version from v using a bump directive.
// Supported directives are: "major", "minor", "patch", "premajor", "preminor",
// "prepatch" and "prerelease". The pre-variants start at alpha.0.
//
// "prerelease" increments the number of an existing pre-release, or starts
// alpha.0 on the next patch when v is a final release. "patch" on a
// pre-release finalizes it instead of skipping a patch, and "minor"/"major"
// do the same when the lower components are already zero.
// Build metadata is always dropped.
func (v Version) Bump(directive string) (Version, error) {
	switch directive {
	case "major":
		if v.hasPre && v.minor == 0 && v.patch == 0 {
			return v.Core(), nil
		}
		return New(v.major+1, 0, 0), nil
	case "minor":
		if v.hasPre && v.patch == 0 {
			return v.Core(), nil
		}
		return New(v.major, v.minor+1, 0), nil
	case "patch":
		if v.hasPre {
			return v.Core(), nil
		}
		return New(v.major, v.minor, v.patch+1), nil
	case "premajor":
		return New(v.major+1, 0, 0).WithPreRelease(Alpha, 0), nil
	case "preminor":
		return New(v.major, v.minor+1, 0).WithPreRelease(Alpha, 0), nil
	case "prepatch":
		return v.NextPatchAlpha(), nil
	case "prerelease":
		if v.hasPre {
			return v.Core().WithPreRelease(v.pre.Label, v.pre.Number+1), nil
		}
		return v.NextPatchAlpha(), nil
	default:
		return Version{}, fmt.Errorf("unknown bump argument: %s", directive)
	}
}
