package release

import (
	"fmt"
	"strings"

	"github.com/bcomnes/relman/pkg/version"
)

// Policy names the trunk and the maintenance branch family.
type Policy struct {
	Trunk        string
	StablePrefix string
}

// DefaultPolicy is main plus stable/X.Y.x maintenance branches.
var DefaultPolicy = Policy{Trunk: "main", StablePrefix: "stable/"}

// MaintenanceBranch returns the maintenance branch of v's minor line,
// e.g. stable/1.3.x.
func (p Policy) MaintenanceBranch(v version.Version) string {
	return fmt.Sprintf("%s%d.%d.x", p.StablePrefix, v.Major(), v.Minor())
}

// RequiredBranch returns the only branch v may be released from: the
// maintenance branch for patch releases, trunk otherwise.
func (p Policy) RequiredBranch(v version.Version) string {
	if v.Patch() != 0 {
		return p.MaintenanceBranch(v)
	}
	return p.Trunk
}

// IsMaintenance reports whether branch belongs to the maintenance family.
func (p Policy) IsMaintenance(branch string) bool {
	return strings.HasPrefix(branch, p.StablePrefix)
}

// Intent is what one invocation asks for plus what it observed.
type Intent struct {
	Target     version.Version
	PreRelease bool
	Branch     string
	Tags       []string
	Current    version.Version
}

// FollowUp moves Branch to the working version Version after a release.
// Create means the branch is cut from the release commit first.
type FollowUp struct {
	Branch  string
	Version version.Version
	Create  bool
}

func (f FollowUp) String() string {
	if f.Create {
		return fmt.Sprintf("create %s, bump to %s", f.Branch, f.Version)
	}
	return fmt.Sprintf("bump %s to %s", f.Branch, f.Version)
}

type fanOutRule struct {
	name    string
	matches func(in Intent, p Policy) bool
	actions func(in Intent, p Policy) []FollowUp
}

// fanOutRules is evaluated top to bottom; the first match decides.
var fanOutRules = []fanOutRule{
	{
		name:    "pre-release",
		matches: func(in Intent, _ Policy) bool { return in.Target.IsPreRelease() },
		actions: func(Intent, Policy) []FollowUp { return nil },
	},
	{
		name: "minor or major release on trunk",
		matches: func(in Intent, p Policy) bool {
			return in.Target.Patch() == 0 && in.Branch == p.Trunk
		},
		actions: func(in Intent, p Policy) []FollowUp {
			return []FollowUp{
				{Branch: p.MaintenanceBranch(in.Target), Version: in.Target.NextPatchAlpha(), Create: true},
				{Branch: p.Trunk, Version: in.Target.NextMinorAlpha()},
			}
		},
	},
	{
		name: "patch release on maintenance branch",
		matches: func(in Intent, p Policy) bool {
			return in.Target.Patch() != 0 && p.IsMaintenance(in.Branch)
		},
		actions: func(in Intent, _ Policy) []FollowUp {
			return []FollowUp{{Branch: in.Branch, Version: in.Target.NextPatchAlpha()}}
		},
	},
}

// Plan returns the follow-up bumps a successful release of in triggers.
func Plan(in Intent, p Policy) []FollowUp {
	for _, r := range fanOutRules {
		if r.matches(in, p) {
			return r.actions(in, p)
		}
	}
	return nil
}
